package executor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/metrics"
)

type fakeLibrary struct {
	docs     map[document.ID]document.Document
	searches int
	lastK    int
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{docs: map[document.ID]document.Document{
		document.IDFromUint64(1): {Title: "Rust Programming", Authors: []string{"Steve", "Carol"}, Extension: "pdf"},
		document.IDFromUint64(2): {Title: "The Rust Book", Extension: "epub"},
	}}
}

func (f *fakeLibrary) SearchScored(_ string, k int) []ranker.ScoredDoc {
	f.searches++
	f.lastK = k
	return []ranker.ScoredDoc{{ID: document.IDFromUint64(2), Score: 1}, {ID: document.IDFromUint64(1), Score: 0.5}}
}

func (f *fakeLibrary) Get(id document.ID) (document.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return doc, fmt.Errorf("document %s: %w", id, apperrors.ErrNotFound)
	}
	return doc, nil
}

func (f *fakeLibrary) Path(id document.ID) (string, error) {
	doc, err := f.Get(id)
	if err != nil {
		return "", err
	}
	return "/library/" + doc.Filename(), nil
}

func (f *fakeLibrary) TopK() int { return 5 }

func TestExecutor_SearchDefaultsAndClampsK(t *testing.T) {
	lib := newFakeLibrary()
	e := New(lib, WithMaxTopK(10))

	res := e.Search(context.Background(), "http", "rust", 0)
	assert.Equal(t, 5, lib.lastK)
	assert.Equal(t, []document.ID{document.IDFromUint64(2), document.IDFromUint64(1)}, res.IDs())

	e.Search(context.Background(), "http", "rust", 500)
	assert.Equal(t, 10, lib.lastK)
}

func TestExecutor_SearchUsesCacheAndMetrics(t *testing.T) {
	lib := newFakeLibrary()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	qc, err := cache.New(cache.Options{LocalSize: 4, Metrics: m})
	require.NoError(t, err)
	e := New(lib, WithCache(qc), WithMetrics(m))

	first := e.Search(context.Background(), "dbus", "rust", 3)
	second := e.Search(context.Background(), "dbus", "RUST", 3)

	assert.False(t, first.CacheHit)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, 1, lib.searches)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("dbus")))
}

func TestExecutor_Meta(t *testing.T) {
	e := New(newFakeLibrary())

	meta, err := e.Meta(document.IDFromUint64(1))
	require.NoError(t, err)
	assert.Equal(t, Meta{ID: document.IDFromUint64(1), Name: "Rust Programming", Description: "Steve, Carol"}, meta)

	_, err = e.Metas([]document.ID{document.IDFromUint64(1), document.IDFromUint64(9)})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestExecutor_Activate(t *testing.T) {
	var opened []string
	e := New(newFakeLibrary(), WithOpener(OpenerFunc(func(path string) error {
		opened = append(opened, path)
		return nil
	})))

	path, err := e.Activate(context.Background(), document.IDFromUint64(2))
	require.NoError(t, err)
	assert.Equal(t, []string{path}, opened)
	assert.Contains(t, path, ".epub")

	_, err = e.Activate(context.Background(), document.IDFromUint64(7))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	failing := New(newFakeLibrary(), WithOpener(OpenerFunc(func(string) error { return errors.New("no handler") })))
	_, err = failing.Activate(context.Background(), document.IDFromUint64(1))
	assert.ErrorIs(t, err, apperrors.ErrIO)
}
