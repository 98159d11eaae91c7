// Package cmd implements the domain command line: the long-running server
// plus one-shot commands that work on the library directly.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/library"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/logger"
)

// rootOptions is shared by every subcommand; cfg is filled in before any of
// them runs.
type rootOptions struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "domain",
		Short: "A personal document library with fuzzy search",
		Long: `Domain keeps your documents in one directory, remembers their
title, authors and keywords, and finds them again from a few typed letters.

Run 'domain serve' to expose the library over HTTP and as a GNOME Shell
search provider.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file (default $XDG_CONFIG_HOME/domain/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newAddCmd(opts))
	cmd.AddCommand(newRemoveCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newBackupCmd(opts))
	return cmd
}

func (o *rootOptions) load(cmd *cobra.Command) error {
	// A .env file is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	path := o.configPath
	if path == "" {
		def, err := config.DefaultPath()
		if err == nil {
			if _, statErr := os.Stat(def); statErr == nil {
				path = def
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	logger.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("config loaded", "path", path, "library", cfg.Library.Path)
	o.cfg = cfg
	return nil
}

func (o *rootOptions) openLibrary(opts ...library.Option) (*library.Library, error) {
	lib, err := library.Open(o.cfg.Library, o.cfg.Search, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening library at %s: %w", o.cfg.Library.Path, err)
	}
	return lib, nil
}
