// Package library is the composition root of the document collection. It owns
// one store and one in-memory index, rebuilds the index from the store when it
// opens, and routes every call to both so they stay in step.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/metrics"
)

// Observer is told about every committed change. Callbacks run after the
// library lock is released and must not call back into mutating methods.
type Observer interface {
	DocumentInserted(id document.ID, doc document.Document)
	DocumentRemoved(id document.ID, doc document.Document)
}

type Option func(*Library)

func WithObserver(o Observer) Option {
	return func(l *Library) {
		l.observers = append(l.observers, o)
	}
}

// Library guards the store and the index with one RWMutex: inserts and
// removals are writers, lookups and searches are readers.
type Library struct {
	mu        sync.RWMutex
	store     *store.Store
	index     *index.MemoryIndex
	basePath  string
	topK      int
	observers []Observer
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

type Stats struct {
	Documents int `json:"documents"`
	Grams     int `json:"grams"`
}

// Open opens the store under libCfg and replays every stored document into a
// fresh index. A record that fails to decode aborts the open.
func Open(libCfg config.LibraryConfig, searchCfg config.SearchConfig, opts ...Option) (*Library, error) {
	if searchCfg.TopK < 1 {
		return nil, fmt.Errorf("%w: top-k must be at least 1, got %d", apperrors.ErrInvalidInput, searchCfg.TopK)
	}
	if err := os.MkdirAll(libCfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("creating library directory %s: %w: %w", libCfg.Path, apperrors.ErrIO, err)
	}
	st, err := store.Open(libCfg.StorePath())
	if err != nil {
		return nil, fmt.Errorf("opening library store: %w", err)
	}

	l := &Library{
		store:    st,
		index:    index.NewMemoryIndex(),
		basePath: libCfg.Path,
		topK:     searchCfg.TopK,
		logger:   slog.Default().With("component", "library"),
	}
	for _, opt := range opts {
		opt(l)
	}

	start := time.Now()
	if err := l.rebuild(); err != nil {
		st.Close()
		return nil, err
	}
	l.logger.Info("index rebuilt from store",
		"documents", l.index.DocCount(),
		"grams", l.index.Grams(),
		"duration", time.Since(start),
	)
	l.publishSize()
	return l, nil
}

func (l *Library) rebuild() error {
	it := l.store.Iter()
	defer it.Close()
	for it.Next() {
		doc := it.Document()
		l.index.AddDocument(it.ID(), &doc)
	}
	if err := it.Err(); err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}
	return nil
}

// Get returns the document stored under id.
func (l *Library) Get(id document.ID) (document.Document, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	doc, err := l.store.Get(id)
	if err != nil {
		return doc, fmt.Errorf("document %s: %w", id, err)
	}
	return doc, nil
}

// Search returns the ids of the top-K matches for query in rank order.
func (l *Library) Search(query string) []document.ID {
	results := l.SearchScored(query, l.topK)
	ids := make([]document.ID, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

// SearchScored returns up to k ranked matches with their scores. k < 1
// panics.
func (l *Library) SearchScored(query string, k int) []ranker.ScoredDoc {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.index.Search(query, k)
}

// Insert stores doc and, only if that succeeds, indexes it. Nil author and
// keyword lists are replaced with empty ones first.
func (l *Library) Insert(doc *document.Document) (document.ID, error) {
	l.mu.Lock()
	id, err := l.insertLocked(doc)
	l.mu.Unlock()
	if err != nil {
		return id, err
	}
	l.notifyInserted(id, *doc)
	return id, nil
}

func (l *Library) insertLocked(doc *document.Document) (document.ID, error) {
	doc.Normalize()
	id, err := l.store.Insert(doc)
	if err != nil {
		return id, fmt.Errorf("inserting %q (hash %s): %w", doc.Title, doc.Hash, err)
	}
	l.index.AddDocument(id, doc)
	l.logger.Info("document inserted", "doc_id", id.String(), "title", doc.Title)
	return id, nil
}

// Remove deletes id from the store and then from the index. Removing an
// unknown id succeeds, and so does removing a record that fails to decode;
// observers then see a zero Document.
func (l *Library) Remove(id document.ID) error {
	l.mu.Lock()
	doc, removed, err := l.removeLocked(id)
	l.mu.Unlock()
	if err != nil {
		return err
	}
	if removed {
		l.notifyRemoved(id, doc)
	}
	return nil
}

func (l *Library) removeLocked(id document.ID) (document.Document, bool, error) {
	doc, err := l.store.Get(id)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return doc, false, nil
	case errors.Is(err, apperrors.ErrDecode):
		l.logger.Warn("removing corrupt document", "doc_id", id.String(), "error", err)
		doc = document.Document{}
	case err != nil:
		return doc, false, fmt.Errorf("removing document %s: %w", id, err)
	}
	if err := l.store.Remove(id); err != nil {
		return doc, false, fmt.Errorf("removing document %s: %w", id, err)
	}
	l.index.RemoveDocument(id)
	l.logger.Info("document removed", "doc_id", id.String(), "title", doc.Title)
	return doc, true, nil
}

// Path is where the file of document id lives: basePath/hex(hash).extension.
func (l *Library) Path(id document.ID) (string, error) {
	doc, err := l.Get(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.basePath, doc.Filename()), nil
}

// Documents returns every stored document in id order.
func (l *Library) Documents() ([]document.Document, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	docs := make([]document.Document, 0, l.index.DocCount())
	err := l.store.ForEach(func(_ document.ID, doc document.Document) error {
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

func (l *Library) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Stats{
		Documents: l.index.DocCount(),
		Grams:     l.index.Grams(),
	}
}

// Check verifies that the store answers and agrees with the index on the
// number of documents. It backs the readiness probe.
func (l *Library) Check(context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n, err := l.store.Len()
	if err != nil {
		return err
	}
	if indexed := l.index.DocCount(); n != indexed {
		return fmt.Errorf("store holds %d documents but index has %d", n, indexed)
	}
	return nil
}

func (l *Library) BasePath() string {
	return l.basePath
}

func (l *Library) TopK() int {
	return l.topK
}

func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Close()
}

// Subscribe registers an observer after the library is open.
func (l *Library) Subscribe(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, o)
}

func (l *Library) notifyInserted(id document.ID, doc document.Document) {
	for _, o := range l.snapshotObservers() {
		o.DocumentInserted(id, doc)
	}
}

func (l *Library) notifyRemoved(id document.ID, doc document.Document) {
	for _, o := range l.snapshotObservers() {
		o.DocumentRemoved(id, doc)
	}
}

func (l *Library) snapshotObservers() []Observer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Observer(nil), l.observers...)
}
