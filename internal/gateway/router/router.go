// Package router wires the HTTP API routes of the library service and
// applies the middleware chain.
package router

import (
	"net/http"
	"time"

	ingesthandler "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/ingestion/handler"
	searchhandler "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/middleware"
)

type Handlers struct {
	Search  *searchhandler.Handler
	Ingest  *ingesthandler.Handler
	Health  *health.Checker
	Metrics *metrics.Metrics
	Timeout time.Duration

	// AllowedOrigins enables CORS for the listed origins.
	AllowedOrigins []string
}

// New builds the API handler.
//
// Route table:
//
//	GET    /api/v1/search?q=&k=               ranked document ids
//	POST   /api/v1/documents                  add a file to the library
//	GET    /api/v1/documents/{id}             result metadata
//	DELETE /api/v1/documents/{id}             remove a document
//	POST   /api/v1/documents/{id}/activate    open the document's file
//	GET    /api/v1/cache/stats                search cache counters
//	POST   /api/v1/cache/invalidate           drop cached results
//	GET    /health/live, /health/ready        probes
//	GET    /metrics                           Prometheus scrape
//
// Middleware chain (outermost first): CORS, RequestID, Timeout, Metrics.
// Metrics sits next to the mux so it sees the matched route pattern.
func New(h Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/search", h.Search.Search)
	mux.HandleFunc("GET /api/v1/documents/{id}", h.Search.Document)
	mux.HandleFunc("POST /api/v1/documents/{id}/activate", h.Search.Activate)
	mux.HandleFunc("GET /api/v1/cache/stats", h.Search.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.Search.CacheInvalidate)

	mux.HandleFunc("POST /api/v1/documents", h.Ingest.Add)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", h.Ingest.Remove)

	if h.Health != nil {
		mux.HandleFunc("GET /health/live", h.Health.LiveHandler())
		mux.HandleFunc("GET /health/ready", h.Health.ReadyHandler())
	}
	mux.Handle("GET /metrics", metrics.Handler())

	var mws []func(http.Handler) http.Handler
	if len(h.AllowedOrigins) > 0 {
		mws = append(mws, middleware.CORS(h.AllowedOrigins))
	}
	mws = append(mws, middleware.RequestID)
	if h.Timeout > 0 {
		mws = append(mws, middleware.Timeout(h.Timeout))
	}
	if h.Metrics != nil {
		mws = append(mws, middleware.Metrics(h.Metrics))
	}
	return middleware.Chain(mux, mws...)
}
