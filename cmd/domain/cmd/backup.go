package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/backup"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/postgres"
)

type backupOptions struct {
	usePostgres bool
}

func newBackupCmd(root *rootOptions) *cobra.Command {
	var opts backupOptions
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Save or restore document metadata",
		Long: `Save every document record to a JSON file or the configured
PostgreSQL database, or load such a backup into the library. Only metadata
is saved; the files themselves stay in the library directory.`,
	}
	cmd.PersistentFlags().BoolVar(&opts.usePostgres, "postgres", false, "Use the configured PostgreSQL database instead of a file")

	cmd.AddCommand(&cobra.Command{
		Use:   "save [path]",
		Short: "Write a backup of the library",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, closeTarget, err := openTarget(cmd.Context(), root, opts, args)
			if err != nil {
				return err
			}
			defer closeTarget()

			lib, err := root.openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()
			docs, err := lib.Documents()
			if err != nil {
				return err
			}
			if err := target.Save(cmd.Context(), docs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d documents\n", len(docs))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "load [path]",
		Short: "Insert every document of a backup into the library",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, closeTarget, err := openTarget(cmd.Context(), root, opts, args)
			if err != nil {
				return err
			}
			defer closeTarget()

			docs, err := target.Load(cmd.Context())
			if err != nil {
				return err
			}
			lib, err := root.openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()
			inserted, skipped, err := lib.Import(docs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d documents, skipped %d already present\n", inserted, skipped)
			return nil
		},
	})
	return cmd
}

func openTarget(ctx context.Context, root *rootOptions, opts backupOptions, args []string) (backup.Target, func(), error) {
	if opts.usePostgres {
		if len(args) > 0 {
			return nil, nil, errors.New("a path cannot be combined with --postgres")
		}
		client, err := postgres.New(ctx, root.cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return backup.NewPostgres(client), func() { client.Close() }, nil
	}
	if len(args) == 0 {
		return nil, nil, errors.New("a backup path is required without --postgres")
	}
	return backup.File{Path: args[0]}, func() {}, nil
}
