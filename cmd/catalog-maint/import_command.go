package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/belovedzguard/beloved-api/internal/legacy"
	"github.com/belovedzguard/beloved-api/internal/repository"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var (
		mongoURL string
		database string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "import-legacy",
		Short: "Copy songs, users, albums and playlists from the legacy document store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if mongoURL == "" {
				mongoURL = cfg.Legacy.MongoURL
			}
			if mongoURL == "" {
				return fmt.Errorf("no legacy store configured: set legacy.mongo_url or pass --mongo-url")
			}
			if database == "" {
				database = cfg.Legacy.Database
			}

			source, err := legacy.NewMongoSource(cmd.Context(), mongoURL, database)
			if err != nil {
				return err
			}
			defer func() {
				if err := source.Close(cmd.Context()); err != nil {
					ctx.logger().Warn("failed to disconnect legacy store", logger.Error(err))
				}
			}()

			pool, err := ctx.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			importer := legacy.NewImporter(source, legacy.Sinks{
				Songs:     repository.NewSongRepository(pool),
				Albums:    repository.NewAlbumRepository(pool),
				Playlists: repository.NewPlaylistRepository(pool),
				Users:     repository.NewUserRepository(pool),
			}, ctx.logger())

			report, err := importer.Run(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printImportReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&mongoURL, "mongo-url", "", "Legacy connection string (defaults to legacy.mongo_url)")
	cmd.Flags().StringVar(&database, "database", "", "Legacy database name (defaults to legacy.database)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

func printImportReport(w io.Writer, r *legacy.Report) {
	row := func(name string, c legacy.Counts) []string {
		return []string{name, strconv.Itoa(c.Read), strconv.Itoa(c.Inserted), strconv.Itoa(c.Existing), strconv.Itoa(c.Rejected)}
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Collection", "Read", "Inserted", "Existing", "Rejected"},
		[][]string{
			row("songs", r.Songs),
			row("users", r.Users),
			row("albums", r.Albums),
			row("playlists", r.Playlists),
		},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
	fmt.Fprintf(w, "dangling song references: %d\n", r.DanglingRefs)
	if len(r.OrphanPlaylists) > 0 {
		fmt.Fprintf(w, "playlists without an owner: %s\n", strings.Join(r.OrphanPlaylists, ", "))
	}
	fmt.Fprintf(w, "took %s\n", r.Duration)
}
