package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/executor"
)

type searchOptions struct {
	k      int
	format string
}

type searchHit struct {
	executor.Meta
	Score float64 `json:"score"`
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	var opts searchOptions
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the library",
		Long: `Rank documents by how many letter triples of the query appear in
their title, authors, keywords and extension.

Examples:
  domain search rust
  domain search "lamport paxos" -k 10 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "text" && opts.format != "json" {
				return fmt.Errorf("unknown format %q: want text or json", opts.format)
			}
			lib, err := root.openLibrary()
			if err != nil {
				return err
			}
			defer lib.Close()

			exec := executor.New(lib, executor.WithMaxTopK(root.cfg.Search.MaxTopK))
			result := exec.Search(cmd.Context(), "cli", strings.Join(args, " "), opts.k)
			hits := make([]searchHit, 0, len(result.Results))
			for _, r := range result.Results {
				meta, err := exec.Meta(r.ID)
				if err != nil {
					return err
				}
				hits = append(hits, searchHit{Meta: meta, Score: r.Score})
			}
			return writeHits(cmd.OutOrStdout(), opts.format, hits)
		},
	}
	cmd.Flags().IntVarP(&opts.k, "top", "k", 0, "Number of results (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func writeHits(w io.Writer, format string, hits []searchHit) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCORE\tTITLE\tAUTHORS")
	for _, h := range hits {
		fmt.Fprintf(tw, "%s\t%.3f\t%s\t%s\n", h.ID, h.Score, h.Name, h.Description)
	}
	return tw.Flush()
}
