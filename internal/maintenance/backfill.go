// Package maintenance holds the offline jobs run by catalog-maint: the
// canonical asset URL backfill and the scheduler that repeats it.
package maintenance

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/belovedzguard/beloved-api/internal/asset"
	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

// DefaultConcurrency bounds concurrent song writes when none is configured.
const DefaultConcurrency = 4

// SongStore is the song persistence the backfill needs.
type SongStore interface {
	List(ctx context.Context, f domain.SongFilter) ([]*domain.Song, error)
	Update(ctx context.Context, s *domain.Song) error
}

// Change is the planned value of one asset URL on one song.
type Change struct {
	SongID  string     `json:"songId"`
	Title   string     `json:"title"`
	Kind    asset.Kind `json:"kind"`
	Current string     `json:"current"`
	Target  string     `json:"target"`
}

// Pending reports whether the song's stored URL differs from the target.
func (c Change) Pending() bool {
	return c.Current != c.Target
}

// Report summarizes a backfill run.
type Report struct {
	DryRun    bool          `json:"dryRun"`
	Songs     int           `json:"songs"`
	WillSet   int           `json:"willSet"`
	Unchanged int           `json:"unchanged"`
	Updated   int           `json:"updated"`
	Failed    int           `json:"failed"`
	Changes   []Change      `json:"changes"`
	Duration  time.Duration `json:"duration"`
}

// BackfillOptions selects what a run touches.
type BackfillOptions struct {
	Kinds       []asset.Kind
	DryRun      bool
	Concurrency int
}

// Backfiller rewrites song asset URLs to their canonical location under
// the media base URL.
type Backfiller struct {
	songs     SongStore
	mediaBase string
	log       logger.Logger
}

// NewBackfiller creates a backfiller writing through songs.
func NewBackfiller(songs SongStore, mediaBase string, log logger.Logger) *Backfiller {
	return &Backfiller{songs: songs, mediaBase: mediaBase, log: log}
}

// Plan computes the canonical URL of every selected kind for each song.
// Unknown kinds are skipped.
func (b *Backfiller) Plan(songs []*domain.Song, kinds []asset.Kind) []Change {
	changes := make([]Change, 0, len(songs)*len(kinds))
	for _, s := range songs {
		for _, k := range kinds {
			spec, ok := asset.Lookup(k)
			if !ok {
				continue
			}
			url, _ := s.AssetRefs(spec.Field)
			if url == nil {
				continue
			}
			changes = append(changes, Change{
				SongID:  s.ID,
				Title:   s.Title,
				Kind:    k,
				Current: *url,
				Target:  asset.CanonicalURL(b.mediaBase, k, s.Title),
			})
		}
	}
	return changes
}

// Run plans the backfill over every song, drafts included, and writes the
// pending changes unless opts.DryRun is set. A failed song write is logged
// and counted; the run carries on with the rest.
func (b *Backfiller) Run(ctx context.Context, opts BackfillOptions) (*Report, error) {
	start := time.Now()
	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = []asset.Kind{asset.KindAnimatedThumbnail}
	}

	songs, err := b.songs.List(ctx, domain.SongFilter{IncludeDrafts: true})
	if err != nil {
		return nil, err
	}

	report := &Report{DryRun: opts.DryRun, Songs: len(songs)}
	report.Changes = b.Plan(songs, kinds)

	pending := make(map[string][]Change)
	for _, c := range report.Changes {
		if c.Pending() {
			report.WillSet++
			pending[c.SongID] = append(pending[c.SongID], c)
		} else {
			report.Unchanged++
		}
	}

	b.log.Info("Asset backfill planned",
		logger.Int("songs", report.Songs),
		logger.Int("will_set", report.WillSet),
		logger.Int("unchanged", report.Unchanged),
		logger.Bool("dry_run", opts.DryRun),
	)

	if opts.DryRun || len(pending) == 0 {
		report.Duration = time.Since(start)
		return report, nil
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, s := range songs {
		changes, ok := pending[s.ID]
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := b.apply(gctx, s, changes)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				b.log.Error("Asset backfill write failed",
					logger.String("song_id", s.ID),
					logger.String("title", s.Title),
					logger.Error(err),
				)
				return nil
			}
			report.Updated++
			return nil
		})
	}

	err = g.Wait()
	report.Duration = time.Since(start)

	b.log.Info("Asset backfill finished",
		logger.Int("updated", report.Updated),
		logger.Int("failed", report.Failed),
		logger.Duration("duration", report.Duration),
	)
	return report, err
}

func (b *Backfiller) apply(ctx context.Context, s *domain.Song, changes []Change) error {
	updated := *s
	for _, c := range changes {
		spec, _ := asset.Lookup(c.Kind)
		url, _ := updated.AssetRefs(spec.Field)
		*url = c.Target
	}
	return b.songs.Update(ctx, &updated)
}
