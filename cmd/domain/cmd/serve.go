package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/gateway/router"
	indexconsumer "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/indexer/consumer"
	ingesthandler "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/library"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/executor"
	searchhandler "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searchprovider"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/redis"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the library server",
		Long: `Run the library server. Depending on configuration it serves the
HTTP API, registers the GNOME Shell search provider on the session bus,
publishes document events to Kafka and consumes ingest requests from it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts.cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if !cfg.Server.Enabled && !cfg.DBus.Enabled && !cfg.Kafka.Enabled {
		return errors.New("nothing to serve: enable at least one of server, dbus or kafka")
	}
	m := metrics.New()

	lib, err := library.Open(cfg.Library, cfg.Search, library.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("opening library: %w", err)
	}
	defer lib.Close()

	checker := health.NewChecker()
	checker.Register("library", health.Ping(true, lib.Check))

	cacheOpts := cache.Options{LocalSize: cfg.Search.CacheLRU, TTL: cfg.Redis.CacheTTL, Metrics: m}
	if cfg.Redis.Enabled {
		rc, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search cache is local only", "error", err)
		} else {
			defer rc.Close()
			cacheOpts.Remote = rc
			checker.Register("redis", health.Ping(false, rc.Ping))
		}
	}
	queryCache, err := cache.New(cacheOpts)
	if err != nil {
		return err
	}
	lib.Subscribe(queryCache)

	exec := executor.New(lib,
		executor.WithCache(queryCache),
		executor.WithMetrics(m),
		executor.WithMaxTopK(cfg.Search.MaxTopK),
	)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DocumentEvents)
		defer producer.Close()
		events := publisher.New(producer, publisher.Options{Metrics: m})
		lib.Subscribe(events)
		g.Go(func() error { return events.Run(ctx) })

		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest, indexconsumer.HandleMessage(lib, m))
		g.Go(func() error { return consumer.Run(ctx) })
	}

	if cfg.DBus.Enabled {
		provider := searchprovider.New(exec, lib, m)
		g.Go(func() error { return searchprovider.Serve(ctx, cfg.DBus, provider) })
	}

	if cfg.Metrics.Enabled {
		g.Go(func() error { return metrics.Serve(ctx, cfg.Metrics.Port) })
	}

	if cfg.Server.Enabled {
		server := &http.Server{
			Addr: fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: router.New(router.Handlers{
				Search:  searchhandler.New(exec, queryCache),
				Ingest:  ingesthandler.New(lib),
				Health:  checker,
				Metrics: m,
				Timeout: cfg.Server.WriteTimeout,

				AllowedOrigins: cfg.Server.AllowedOrigins,
			}),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
		g.Go(func() error {
			slog.Info("http server listening", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	slog.Info("library server stopped", "error", err)
	return err
}
