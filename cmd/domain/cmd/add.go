package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/library"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searchprovider"
)

type addOptions struct {
	title    string
	authors  []string
	keywords []string
	viaDBus  bool
}

func newAddCmd(root *rootOptions) *cobra.Command {
	var opts addOptions
	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Add a document to the library",
		Long: `Copy the file at <path> into the library and index its metadata.

With --dbus the request goes to a running 'domain serve' instead, which is
required while a server holds the library open.

Examples:
  domain add ~/Downloads/book.pdf -t "The Rust Book" -a Steve -a Carol -k rust
  domain add paper.pdf -t "Paxos Made Simple" -a Lamport --dbus`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			req := ingestion.AddRequest{Path: path, Title: opts.title, Authors: opts.authors, Keywords: opts.keywords}
			if err := validator.ValidateAddRequest(&req); err != nil {
				return err
			}
			if opts.viaDBus {
				if err := searchprovider.AddRemote(cmd.Context(), root.cfg.DBus, req); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "sent %s to %s\n", path, root.cfg.DBus.ServerName)
				return nil
			}
			id, err := addLocal(root, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Title of the document")
	cmd.Flags().StringSliceVarP(&opts.authors, "authors", "a", nil, "Authors of the document")
	cmd.Flags().StringSliceVarP(&opts.keywords, "keywords", "k", nil, "Keywords of the document")
	cmd.Flags().BoolVar(&opts.viaDBus, "dbus", false, "Send the request to a running server over D-Bus")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func addLocal(root *rootOptions, req ingestion.AddRequest) (document.ID, error) {
	lib, err := root.openLibrary()
	if err != nil {
		return document.ID{}, err
	}
	defer lib.Close()
	return lib.AddFile(req.Path, library.Metadata{Title: req.Title, Authors: req.Authors, Keywords: req.Keywords})
}

func newRemoveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a document from the library",
		Long:  "Remove a document's record and index entries. The copied file is left in place.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := document.ParseID(args[0])
			if err != nil {
				return err
			}
			lib, err := root.openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()
			return lib.Remove(id)
		},
	}
}
