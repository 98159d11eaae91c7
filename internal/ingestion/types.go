// Package ingestion defines the request/response types for adding documents
// to the library and the lifecycle events published after every change.
package ingestion

import (
	"time"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
)

// AddRequest asks the library to take in the file at Path. It is the JSON
// body of POST /api/v1/documents and the payload of ingest messages.
type AddRequest struct {
	Path     string   `json:"path"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Keywords []string `json:"keywords"`
}

type AddResponse struct {
	ID     document.ID `json:"id"`
	Status string      `json:"status"`
}

type EventType string

const (
	EventInserted EventType = "inserted"
	EventRemoved  EventType = "removed"
)

// DocumentEvent is published for every committed insert or removal.
type DocumentEvent struct {
	Type       EventType         `json:"type"`
	ID         document.ID       `json:"id"`
	Document   document.Document `json:"document"`
	OccurredAt time.Time         `json:"occurred_at"`
}
