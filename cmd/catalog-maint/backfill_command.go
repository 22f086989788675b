package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/belovedzguard/beloved-api/internal/asset"
	"github.com/belovedzguard/beloved-api/internal/maintenance"
	"github.com/belovedzguard/beloved-api/internal/repository"
)

func newBackfillCommand(ctx *commandContext) *cobra.Command {
	var (
		dryRun      bool
		kinds       []string
		concurrency int
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "backfill-assets",
		Short: "Point song asset URLs at their canonical media location",
		Long: "Rewrites the selected asset URLs of every song, drafts included, to\n" +
			"<media base>/<folder>/<slug>.<ext>. Defaults to animated thumbnails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			selected, err := parseKinds(kinds)
			if err != nil {
				return err
			}
			if concurrency <= 0 {
				concurrency = cfg.Maintenance.Concurrency
			}

			pool, err := ctx.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			b := maintenance.NewBackfiller(repository.NewSongRepository(pool), cfg.Media.BaseURL, ctx.logger())
			report, err := b.Run(cmd.Context(), maintenance.BackfillOptions{
				Kinds:       selected,
				DryRun:      dryRun,
				Concurrency: concurrency,
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printBackfillReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the changes without writing them")
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Asset kinds to rewrite (mp3, songThumbnail, animatedThumbnail, videoThumbnail, lyrics)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Concurrent song writes (defaults to maintenance.concurrency)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

func parseKinds(names []string) ([]asset.Kind, error) {
	out := make([]asset.Kind, 0, len(names))
	for _, name := range names {
		k, err := asset.ParseKind(name)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

func printBackfillReport(w io.Writer, r *maintenance.Report) {
	rows := make([][]string, 0, len(r.Changes))
	for _, c := range r.Changes {
		if !c.Pending() {
			continue
		}
		rows = append(rows, []string{c.SongID, c.Title, string(c.Kind), c.Current, c.Target})
	}
	if len(rows) > 0 {
		fmt.Fprintln(w, renderTable(
			[]string{"Song", "Title", "Kind", "Current", "Target"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
		))
	}

	summary := [][]string{
		{"Songs", strconv.Itoa(r.Songs)},
		{"Will set", strconv.Itoa(r.WillSet)},
		{"Unchanged", strconv.Itoa(r.Unchanged)},
	}
	if !r.DryRun {
		summary = append(summary,
			[]string{"Updated", strconv.Itoa(r.Updated)},
			[]string{"Failed", strconv.Itoa(r.Failed)},
		)
	}
	summary = append(summary, []string{"Duration", r.Duration.String()})
	fmt.Fprintln(w, renderTable([]string{"Backfill", ""}, summary, []columnAlignment{alignLeft, alignRight}))
}
