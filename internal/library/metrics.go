package library

import (
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/metrics"
)

// WithMetrics keeps the library counters and size gauges of m current.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Library) {
		l.metrics = m
		l.observers = append(l.observers, &metricsObserver{lib: l, m: m})
	}
}

type metricsObserver struct {
	lib *Library
	m   *metrics.Metrics
}

func (o *metricsObserver) DocumentInserted(document.ID, document.Document) {
	o.m.DocumentsInsertedTotal.Inc()
	o.lib.publishSize()
}

func (o *metricsObserver) DocumentRemoved(document.ID, document.Document) {
	o.m.DocumentsRemovedTotal.Inc()
	o.lib.publishSize()
}

func (l *Library) publishSize() {
	if l.metrics == nil {
		return
	}
	stats := l.Stats()
	l.metrics.LibraryDocuments.Set(float64(stats.Documents))
	l.metrics.IndexGrams.Set(float64(stats.Grams))
}
