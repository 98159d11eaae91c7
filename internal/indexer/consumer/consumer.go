// Package consumer takes AddRequests off the ingest topic and adds the named
// files to the library, which indexes them on insert.
package consumer

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/library"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/metrics"
)

type Adder interface {
	AddFile(path string, meta library.Metadata) (document.ID, error)
}

// HandleMessage returns a kafka.MessageHandler for the ingest topic.
// Malformed, invalid and duplicate requests are acknowledged and counted;
// only storage failures are returned so the message is redelivered.
func HandleMessage(lib Adder, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "ingest-consumer")
	count := func(status string) {
		if m != nil {
			m.IngestMessagesTotal.WithLabelValues(status).Inc()
		}
	}
	return func(ctx context.Context, key, value []byte) error {
		req, err := kafka.DecodeJSON[ingestion.AddRequest](value)
		if err != nil {
			logger.Error("discarding undecodable ingest message", "key", string(key), "error", err)
			count("invalid")
			return nil
		}
		if err := validator.ValidateAddRequest(&req); err != nil {
			logger.Warn("discarding invalid ingest request", "path", req.Path, "error", err)
			count("invalid")
			return nil
		}

		id, err := lib.AddFile(req.Path, library.Metadata{
			Title:    req.Title,
			Authors:  req.Authors,
			Keywords: req.Keywords,
		})
		switch {
		case errors.Is(err, apperrors.ErrDuplicateContent):
			logger.Info("file already in library", "path", req.Path)
			count("duplicate")
			return nil
		case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, fs.ErrNotExist):
			logger.Warn("ingest request rejected", "path", req.Path, "error", err)
			count("invalid")
			return nil
		case err != nil:
			count("error")
			return err
		}
		logger.Info("document ingested", "id", id, "path", req.Path)
		count("inserted")
		return nil
	}
}
