package searchprovider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/library"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/metrics"
)

type fixture struct {
	provider *Provider
	lib      *library.Library
	metrics  *metrics.Metrics
	opened   []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	lib, err := library.Open(
		config.LibraryConfig{Path: t.TempDir(), DBDir: "db"},
		config.SearchConfig{TopK: 5, MaxTopK: 100},
	)
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })

	f := &fixture{lib: lib, metrics: metrics.NewWithRegistry(prometheus.NewRegistry())}
	exec := executor.New(lib, executor.WithOpener(executor.OpenerFunc(func(path string) error {
		f.opened = append(f.opened, path)
		return nil
	})))
	f.provider = New(exec, lib, f.metrics)
	return f
}

func (f *fixture) add(t *testing.T, name, content, title string, authors ...string) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))
	require.Nil(t, f.provider.AddDocument(src, title, authors, []string{"books"}))
	ids, dbusErr := f.provider.GetInitialResultSet([]string{title})
	require.Nil(t, dbusErr)
	require.NotEmpty(t, ids)
	return ids[0]
}

func TestProvider_SearchAndMetas(t *testing.T) {
	f := newFixture(t)
	rust := f.add(t, "rust.pdf", "r", "Rust Programming", "Steve Klabnik", "Carol Nichols")
	f.add(t, "book.pdf", "b", "The Rust Book")
	f.add(t, "misc.pdf", "m", "Unrelated Topic")

	ids, dbusErr := f.provider.GetInitialResultSet([]string{"rust", "programming"})
	require.Nil(t, dbusErr)
	assert.Equal(t, rust, ids[0])

	sub, dbusErr := f.provider.GetSubsearchResultSet(ids, []string{"rust", "programming"})
	require.Nil(t, dbusErr)
	assert.Equal(t, ids, sub)

	metas, dbusErr := f.provider.GetResultMetas([]string{rust})
	require.Nil(t, dbusErr)
	require.Len(t, metas, 1)
	assert.Equal(t, rust, metas[0]["id"].Value())
	assert.Equal(t, "Rust Programming", metas[0]["name"].Value())
	assert.Equal(t, "Steve Klabnik, Carol Nichols", metas[0]["description"].Value())

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DBusCallsTotal.WithLabelValues("GetResultMetas", "ok")))
}

func TestProvider_FailuresBecomeBusErrors(t *testing.T) {
	f := newFixture(t)

	_, dbusErr := f.provider.GetResultMetas([]string{"zz"})
	require.NotNil(t, dbusErr)
	assert.Equal(t, "org.freedesktop.DBus.Error.Failed", dbusErr.Name)

	_, dbusErr = f.provider.GetResultMetas([]string{document.IDFromUint64(42).String()})
	require.NotNil(t, dbusErr)

	assert.NotNil(t, f.provider.ActivateResult(document.IDFromUint64(42).String(), nil, 0))
	assert.NotNil(t, f.provider.AddDocument("relative.pdf", "Title", nil, nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DBusCallsTotal.WithLabelValues("AddDocument", "error")))
}

func TestProvider_ActivateOpensLibraryCopy(t *testing.T) {
	f := newFixture(t)
	id := f.add(t, "paper.djvu", "paper", "A Paper")

	require.Nil(t, f.provider.ActivateResult(id, []string{"paper"}, 0))
	require.Len(t, f.opened, 1)
	assert.Equal(t, f.lib.BasePath(), filepath.Dir(f.opened[0]))
	assert.Equal(t, ".djvu", filepath.Ext(f.opened[0]))

	assert.Nil(t, f.provider.LaunchSearch([]string{"paper"}, 0))
}
