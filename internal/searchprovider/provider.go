// Package searchprovider exposes the library to GNOME Shell as an
// org.gnome.Shell.SearchProvider2 object on the session bus, plus an
// AddDocument method used by the CLI to add files to a running server.
package searchprovider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/library"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/metrics"
)

const Interface = "org.gnome.Shell.SearchProvider2"

type Adder interface {
	AddFile(path string, meta library.Metadata) (document.ID, error)
}

// Provider implements the SearchProvider2 methods. godbus exports every
// exported method whose last result is *dbus.Error.
type Provider struct {
	exec    *executor.Executor
	adder   Adder
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(exec *executor.Executor, adder Adder, m *metrics.Metrics) *Provider {
	return &Provider{
		exec:    exec,
		adder:   adder,
		metrics: m,
		logger:  slog.Default().With("component", "search-provider"),
	}
}

// GetInitialResultSet joins terms with spaces and returns the top-K ids in
// hex.
func (p *Provider) GetInitialResultSet(terms []string) ([]string, *dbus.Error) {
	query := strings.Join(terms, " ")
	result := p.exec.Search(context.Background(), "dbus", query, 0)
	ids := make([]string, len(result.Results))
	for i, r := range result.Results {
		ids[i] = r.ID.String()
	}
	p.logger.Info("query answered", "query", query, "results", len(ids))
	p.observe("GetInitialResultSet", nil)
	return ids, nil
}

// GetSubsearchResultSet searches afresh; the previous results are ignored.
func (p *Provider) GetSubsearchResultSet(_ []string, terms []string) ([]string, *dbus.Error) {
	return p.GetInitialResultSet(terms)
}

// GetResultMetas returns id, name and description for each id. One bad id
// fails the whole call.
func (p *Provider) GetResultMetas(identifiers []string) ([]map[string]dbus.Variant, *dbus.Error) {
	metas := make([]map[string]dbus.Variant, 0, len(identifiers))
	for _, identifier := range identifiers {
		id, err := document.ParseID(identifier)
		if err != nil {
			return nil, p.fail("GetResultMetas", err)
		}
		meta, err := p.exec.Meta(id)
		if err != nil {
			return nil, p.fail("GetResultMetas", err)
		}
		metas = append(metas, map[string]dbus.Variant{
			"id":          dbus.MakeVariant(identifier),
			"name":        dbus.MakeVariant(meta.Name),
			"description": dbus.MakeVariant(meta.Description),
		})
	}
	p.observe("GetResultMetas", nil)
	return metas, nil
}

// ActivateResult opens the document's file with the default application.
func (p *Provider) ActivateResult(identifier string, _ []string, _ uint32) *dbus.Error {
	id, err := document.ParseID(identifier)
	if err != nil {
		return p.fail("ActivateResult", err)
	}
	if _, err := p.exec.Activate(context.Background(), id); err != nil {
		return p.fail("ActivateResult", err)
	}
	p.observe("ActivateResult", nil)
	return nil
}

// LaunchSearch is a no-op: there is no application window to show.
func (p *Provider) LaunchSearch(_ []string, _ uint32) *dbus.Error {
	p.observe("LaunchSearch", nil)
	return nil
}

// AddDocument copies the file at path into the library.
func (p *Provider) AddDocument(path, title string, authors, keywords []string) *dbus.Error {
	req := ingestion.AddRequest{Path: path, Title: title, Authors: authors, Keywords: keywords}
	if err := validator.ValidateAddRequest(&req); err != nil {
		return p.fail("AddDocument", err)
	}
	id, err := p.adder.AddFile(path, library.Metadata{Title: title, Authors: authors, Keywords: keywords})
	if err != nil {
		return p.fail("AddDocument", err)
	}
	p.logger.Info("document added over bus", "doc_id", id.String(), "path", path)
	p.observe("AddDocument", nil)
	return nil
}

func (p *Provider) fail(method string, err error) *dbus.Error {
	p.logger.Error("bus call failed", "method", method, "error", err)
	p.observe(method, err)
	return dbus.MakeFailedError(err)
}

func (p *Provider) observe(method string, err error) {
	if p.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.metrics.DBusCallsTotal.WithLabelValues(method, status).Inc()
}

// Serve exports p on the session bus under cfg's name and object path and
// blocks until ctx is done.
func Serve(ctx context.Context, cfg config.DBusConfig, p *Provider) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("connecting to session bus: %w", err)
	}
	defer conn.Close()

	path := dbus.ObjectPath(cfg.ObjectPath)
	if err := conn.Export(p, path, Interface); err != nil {
		return fmt.Errorf("exporting search provider at %s: %w", path, err)
	}
	node := &introspect.Node{
		Name: cfg.ObjectPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{Name: Interface, Methods: introspect.Methods(p)},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), path, "org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("exporting introspection data: %w", err)
	}

	reply, err := conn.RequestName(cfg.ServerName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("requesting bus name %s: %w", cfg.ServerName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %q is already taken", cfg.ServerName)
	}
	p.logger.Info("search provider serving", "name", cfg.ServerName, "path", cfg.ObjectPath)

	<-ctx.Done()
	if _, err := conn.ReleaseName(cfg.ServerName); err != nil {
		p.logger.Warn("releasing bus name failed", "error", err)
	}
	return nil
}

// AddRemote asks a running server to add a file through its AddDocument
// method.
func AddRemote(ctx context.Context, cfg config.DBusConfig, req ingestion.AddRequest) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("connecting to session bus: %w", err)
	}
	defer conn.Close()

	call := conn.Object(cfg.ServerName, dbus.ObjectPath(cfg.ObjectPath)).
		CallWithContext(ctx, Interface+".AddDocument", 0, req.Path, req.Title, req.Authors, req.Keywords)
	if call.Err != nil {
		return fmt.Errorf("calling AddDocument on %s: %w", cfg.ServerName, call.Err)
	}
	return nil
}
