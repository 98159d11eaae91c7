// Package publisher turns library mutations into DocumentEvents and ships
// them to Kafka in batches.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/resilience"
)

// Sink is where batches go. *kafka.Producer satisfies it.
type Sink interface {
	PublishBatch(ctx context.Context, msgs []kafka.Message) error
}

type Options struct {
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	Retry         resilience.RetryConfig
	Metrics       *metrics.Metrics
}

// Publisher is a library observer. Observer callbacks only enqueue; Run does
// the network work, so a slow broker never holds up a mutation.
type Publisher struct {
	sink   Sink
	queue  chan ingestion.DocumentEvent
	opts   Options
	now    func() time.Time
	logger *slog.Logger
}

func New(sink Sink, opts Options) *Publisher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = time.Second
	}
	return &Publisher{
		sink:   sink,
		queue:  make(chan ingestion.DocumentEvent, opts.QueueSize),
		opts:   opts,
		now:    time.Now,
		logger: slog.Default().With("component", "event-publisher"),
	}
}

func (p *Publisher) DocumentInserted(id document.ID, doc document.Document) {
	p.enqueue(ingestion.EventInserted, id, doc)
}

func (p *Publisher) DocumentRemoved(id document.ID, doc document.Document) {
	p.enqueue(ingestion.EventRemoved, id, doc)
}

func (p *Publisher) enqueue(typ ingestion.EventType, id document.ID, doc document.Document) {
	event := ingestion.DocumentEvent{Type: typ, ID: id, Document: doc, OccurredAt: p.now().UTC()}
	select {
	case p.queue <- event:
	default:
		p.logger.Warn("event queue full, dropping event", "type", typ, "id", id)
		p.count(typ, "dropped")
	}
}

// Run publishes queued events until ctx is cancelled, then drains what is
// left with a short deadline.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.opts.FlushInterval)
	defer ticker.Stop()
	p.logger.Info("event publisher started",
		"batch_size", p.opts.BatchSize,
		"flush_interval", p.opts.FlushInterval,
	)

	batch := make([]ingestion.DocumentEvent, 0, p.opts.BatchSize)
	for {
		select {
		case event := <-p.queue:
			batch = append(batch, event)
			if len(batch) >= p.opts.BatchSize {
				p.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			p.flush(ctx, batch)
			batch = batch[:0]
		case <-ctx.Done():
			for drained := false; !drained; {
				select {
				case event := <-p.queue:
					batch = append(batch, event)
				default:
					drained = true
				}
			}
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			p.flush(flushCtx, batch)
			cancel()
			return nil
		}
	}
}

func (p *Publisher) flush(ctx context.Context, batch []ingestion.DocumentEvent) {
	if len(batch) == 0 {
		return
	}
	msgs := make([]kafka.Message, len(batch))
	for i, event := range batch {
		msgs[i] = kafka.Message{Key: event.ID.String(), Value: event}
	}
	err := resilience.Retry(ctx, "publish-document-events", p.opts.Retry, func() error {
		err := p.sink.PublishBatch(ctx, msgs)
		if errors.Is(err, apperrors.ErrInvalidInput) {
			return resilience.Permanent(err)
		}
		return err
	})
	status := "published"
	if err != nil {
		status = "failed"
		p.logger.Error("dropping event batch", "events", len(batch), "error", err)
	}
	for _, event := range batch {
		p.count(event.Type, status)
	}
}

func (p *Publisher) count(typ ingestion.EventType, status string) {
	if p.opts.Metrics != nil {
		p.opts.Metrics.EventsPublishedTotal.WithLabelValues(string(typ), status).Inc()
	}
}
