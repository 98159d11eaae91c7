// Package executor runs searches and document actions on behalf of every
// provider binding (HTTP, D-Bus, CLI), so caching and metrics behave the same
// whichever way a query arrives.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/skratchdot/open-golang/open"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/metrics"
)

// Library is the part of *library.Library the executor needs.
type Library interface {
	SearchScored(query string, k int) []ranker.ScoredDoc
	Get(id document.ID) (document.Document, error)
	Path(id document.ID) (string, error)
	TopK() int
}

// Opener hands a file to the desktop.
type Opener interface {
	Open(path string) error
}

type OpenerFunc func(path string) error

func (f OpenerFunc) Open(path string) error { return f(path) }

// SystemOpener opens paths with the user's default application.
var SystemOpener Opener = OpenerFunc(open.Start)

type SearchResult struct {
	Query    string             `json:"query"`
	Results  []ranker.ScoredDoc `json:"results"`
	CacheHit bool               `json:"cache_hit"`
}

// IDs drops the scores.
func (r *SearchResult) IDs() []document.ID {
	ids := make([]document.ID, len(r.Results))
	for i, res := range r.Results {
		ids[i] = res.ID
	}
	return ids
}

// Meta is the summary a search UI shows for a result.
type Meta struct {
	ID          document.ID `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
}

type Option func(*Executor)

func WithCache(c *cache.QueryCache) Option {
	return func(e *Executor) { e.cache = c }
}

func WithOpener(o Opener) Option {
	return func(e *Executor) { e.opener = o }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// WithMaxTopK caps the k a caller may ask for.
func WithMaxTopK(n int) Option {
	return func(e *Executor) { e.maxTopK = n }
}

type Executor struct {
	lib     Library
	cache   *cache.QueryCache
	opener  Opener
	metrics *metrics.Metrics
	maxTopK int
	logger  *slog.Logger
}

func New(lib Library, opts ...Option) *Executor {
	e := &Executor{
		lib:     lib,
		opener:  SystemOpener,
		maxTopK: 100,
		logger:  slog.Default().With("component", "query-executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search ranks the library against query. k < 1 selects the configured
// default; k above the cap is clamped.
func (e *Executor) Search(ctx context.Context, provider, query string, k int) *SearchResult {
	start := time.Now()
	if k < 1 {
		k = e.lib.TopK()
	}
	if k > e.maxTopK {
		k = e.maxTopK
	}

	compute := func() []ranker.ScoredDoc { return e.lib.SearchScored(query, k) }
	result := &SearchResult{Query: query}
	if e.cache != nil {
		result.Results, result.CacheHit = e.cache.GetOrCompute(ctx, query, k, compute)
	} else {
		result.Results = compute()
	}

	elapsed := time.Since(start)
	if e.metrics != nil {
		status := "miss"
		if result.CacheHit {
			status = "hit"
		}
		e.metrics.SearchQueriesTotal.WithLabelValues(provider).Inc()
		e.metrics.SearchLatency.WithLabelValues(status).Observe(elapsed.Seconds())
		e.metrics.SearchResultsCount.Observe(float64(len(result.Results)))
	}
	logger.FromContext(ctx).Debug("search completed",
		"provider", provider,
		"query", query,
		"k", k,
		"returned", len(result.Results),
		"cache_hit", result.CacheHit,
		"latency", elapsed,
	)
	return result
}

// Meta describes document id: its title as name and its authors, comma
// separated, as description.
func (e *Executor) Meta(id document.ID) (Meta, error) {
	doc, err := e.lib.Get(id)
	if err != nil {
		return Meta{}, err
	}
	return Meta{
		ID:          id,
		Name:        doc.Title,
		Description: strings.Join(doc.Authors, ", "),
	}, nil
}

// Metas resolves every id or fails on the first one that cannot be.
func (e *Executor) Metas(ids []document.ID) ([]Meta, error) {
	metas := make([]Meta, 0, len(ids))
	for _, id := range ids {
		meta, err := e.Meta(id)
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

// Activate opens the file of document id and returns its path.
func (e *Executor) Activate(ctx context.Context, id document.ID) (string, error) {
	path, err := e.lib.Path(id)
	if err != nil {
		return "", err
	}
	logger.FromContext(ctx).Info("opening document", "doc_id", id.String(), "path", path)
	if err := e.opener.Open(path); err != nil {
		return path, fmt.Errorf("opening %s: %w: %w", path, apperrors.ErrIO, err)
	}
	return path, nil
}
