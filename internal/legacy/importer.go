package legacy

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/errors"
	"github.com/belovedzguard/beloved-api/pkg/logger"
	"github.com/belovedzguard/beloved-api/pkg/redact"
)

// SongSink stores imported songs. InsertLegacy sets the song's id, also
// when the song was imported by an earlier run.
type SongSink interface {
	InsertLegacy(ctx context.Context, s *domain.Song) (bool, error)
}

// AlbumSink stores imported albums.
type AlbumSink interface {
	InsertLegacy(ctx context.Context, a *domain.Album) (bool, error)
}

// PlaylistSink stores imported playlists.
type PlaylistSink interface {
	InsertLegacy(ctx context.Context, p *domain.Playlist) (bool, error)
}

// UserSink stores imported users and resolves their subjects.
type UserSink interface {
	InsertLegacy(ctx context.Context, u *domain.User) (bool, error)
	SubjectsByLegacyID(ctx context.Context) (map[string]string, error)
}

// Sinks are the stores an import writes to.
type Sinks struct {
	Songs     SongSink
	Albums    AlbumSink
	Playlists PlaylistSink
	Users     UserSink
}

// Counts tallies one collection.
type Counts struct {
	Read     int `json:"read"`
	Inserted int `json:"inserted"`
	Existing int `json:"existing"`
	Rejected int `json:"rejected"`
}

// Report summarizes an import.
type Report struct {
	Songs     Counts `json:"songs"`
	Users     Counts `json:"users"`
	Albums    Counts `json:"albums"`
	Playlists Counts `json:"playlists"`
	// DanglingRefs counts song references that matched no imported song.
	DanglingRefs int `json:"danglingRefs"`
	// OrphanPlaylists lists the legacy ids of playlists skipped because
	// their owner has no subject identifier.
	OrphanPlaylists []string      `json:"orphanPlaylists"`
	Duration        time.Duration `json:"duration"`
}

// Importer copies the legacy collections into the catalog stores. Running
// it again only inserts documents not imported before.
type Importer struct {
	source Source
	sinks  Sinks
	log    logger.Logger
	now    func() time.Time
}

// NewImporter creates an importer reading from source.
func NewImporter(source Source, sinks Sinks, log logger.Logger) *Importer {
	return &Importer{source: source, sinks: sinks, log: log, now: time.Now}
}

// Run imports songs, users, albums and playlists in that order so that
// references can be remapped to the new ids.
func (im *Importer) Run(ctx context.Context) (*Report, error) {
	start := im.now()
	report := &Report{OrphanPlaylists: []string{}}

	songIDs, err := im.importSongs(ctx, report)
	if err != nil {
		return nil, err
	}
	if err := im.importUsers(ctx, report, songIDs); err != nil {
		return nil, err
	}
	if err := im.importAlbums(ctx, report, songIDs); err != nil {
		return nil, err
	}
	if err := im.importPlaylists(ctx, report, songIDs); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	im.log.Info("Legacy import finished",
		logger.Int("songs", report.Songs.Inserted),
		logger.Int("users", report.Users.Inserted),
		logger.Int("albums", report.Albums.Inserted),
		logger.Int("playlists", report.Playlists.Inserted),
		logger.Int("orphan_playlists", len(report.OrphanPlaylists)),
		logger.Int("dangling_refs", report.DanglingRefs),
	)
	return report, nil
}

func (im *Importer) importSongs(ctx context.Context, report *Report) (map[string]string, error) {
	docs, err := im.source.Songs(ctx)
	if err != nil {
		return nil, err
	}
	report.Songs.Read = len(docs)

	ids := make(map[string]string, len(docs))
	for i := range docs {
		s := im.song(&docs[i])
		inserted, err := im.sinks.Songs.InsertLegacy(ctx, s)
		if err != nil {
			return nil, err
		}
		tally(&report.Songs, inserted)
		ids[s.LegacyID] = s.ID
	}
	return ids, nil
}

func (im *Importer) importUsers(ctx context.Context, report *Report, songIDs map[string]string) error {
	docs, err := im.source.Users(ctx)
	if err != nil {
		return err
	}
	report.Users.Read = len(docs)

	for i := range docs {
		d := &docs[i]
		created, updated := im.timestamps(d.CreatedAt, d.UpdatedAt)
		u := &domain.User{
			Auth0ID:       strings.TrimSpace(d.Auth0ID),
			Email:         strings.ToLower(strings.TrimSpace(d.Email)),
			DisplayName:   d.DisplayName,
			PasswordHash:  d.Password,
			FavoriteSongs: remap(d.FavoriteSongs, songIDs, report),
			LegacyID:      d.ID.Hex(),
			CreatedAt:     created,
			UpdatedAt:     updated,
		}

		inserted, err := im.sinks.Users.InsertLegacy(ctx, u)
		if err != nil {
			if errors.GetHTTPStatus(err) == http.StatusConflict {
				report.Users.Rejected++
				im.log.Warn("Legacy user conflicts with an existing user",
					logger.String("legacy_id", u.LegacyID),
					logger.String("email", redact.Email(u.Email)),
					logger.Error(err),
				)
				continue
			}
			return err
		}
		tally(&report.Users, inserted)
	}
	return nil
}

func (im *Importer) importAlbums(ctx context.Context, report *Report, songIDs map[string]string) error {
	docs, err := im.source.Albums(ctx)
	if err != nil {
		return err
	}
	report.Albums.Read = len(docs)

	for i := range docs {
		d := &docs[i]
		title := d.Title
		if strings.TrimSpace(title) == "" {
			title = d.Name
		}
		created, updated := im.timestamps(d.CreatedAt, d.UpdatedAt)
		a := &domain.Album{
			Title:          title,
			Description:    d.Description,
			AlbumThumbnail: d.AlbumThumbnail,
			SongIDs:        remap(d.Songs, songIDs, report),
			IsDraft:        d.IsDraft,
			LegacyID:       d.ID.Hex(),
			CreatedAt:      created,
			UpdatedAt:      updated,
		}

		inserted, err := im.sinks.Albums.InsertLegacy(ctx, a)
		if err != nil {
			return err
		}
		tally(&report.Albums, inserted)
	}
	return nil
}

func (im *Importer) importPlaylists(ctx context.Context, report *Report, songIDs map[string]string) error {
	docs, err := im.source.Playlists(ctx)
	if err != nil {
		return err
	}
	report.Playlists.Read = len(docs)

	subjects, err := im.sinks.Users.SubjectsByLegacyID(ctx)
	if err != nil {
		return err
	}

	for i := range docs {
		d := &docs[i]
		legacyOwner, owner := d.OwnerRef()
		if owner == "" && legacyOwner != "" {
			owner = subjects[legacyOwner]
		}
		if owner == "" {
			report.Playlists.Rejected++
			report.OrphanPlaylists = append(report.OrphanPlaylists, d.ID.Hex())
			im.log.Warn("Skipping legacy playlist without an owner subject",
				logger.String("legacy_id", d.ID.Hex()),
				logger.String("legacy_owner", legacyOwner),
			)
			continue
		}

		created, updated := im.timestamps(d.CreatedAt, d.UpdatedAt)
		p := &domain.Playlist{
			Name:        d.Name,
			Owner:       owner,
			Description: d.Description,
			CoverImage:  d.CoverImage,
			SongIDs:     remap(d.Songs, songIDs, report),
			LegacyID:    d.ID.Hex(),
			CreatedAt:   created,
			UpdatedAt:   updated,
		}

		inserted, err := im.sinks.Playlists.InsertLegacy(ctx, p)
		if err != nil {
			return err
		}
		tally(&report.Playlists, inserted)
	}
	return nil
}

func (im *Importer) song(d *SongDoc) *domain.Song {
	animated := d.AnimatedSongThumbnail
	if animated == "" {
		animated = d.AnimatedThumbnail
	}
	created, updated := im.timestamps(d.CreatedAt, d.UpdatedAt)
	return &domain.Song{
		Title:                    d.Title,
		Genre:                    d.Genre,
		MP3:                      d.MP3,
		SongThumbnail:            d.SongThumbnail,
		AnimatedSongThumbnail:    animated,
		VideoThumbnail:           d.VideoThumbnail,
		Lyrics:                   d.Lyrics,
		YouTube:                  d.YouTube,
		Bandcamp:                 d.Bandcamp,
		MP3Key:                   d.MP3Key,
		SongThumbnailKey:         d.SongThumbnailKey,
		AnimatedSongThumbnailKey: d.AnimatedSongThumbnailKey,
		VideoThumbnailKey:        d.VideoThumbnailKey,
		LyricsKey:                d.LyricsKey,
		Description:              d.Description,
		Verse:                    d.Verse,
		IsDraft:                  d.IsDraft,
		LegacyID:                 d.ID.Hex(),
		CreatedAt:                created,
		UpdatedAt:                updated,
	}
}

// timestamps defaults missing times to now. A missing update time takes
// the creation time.
func (im *Importer) timestamps(created, updated time.Time) (time.Time, time.Time) {
	if created.IsZero() {
		created = im.now()
	}
	if updated.IsZero() {
		updated = created
	}
	return created, updated
}

func remap(refs []primitive.ObjectID, ids map[string]string, report *Report) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, ok := ids[ref.Hex()]
		if !ok {
			report.DanglingRefs++
			continue
		}
		out = append(out, id)
	}
	return out
}

func tally(c *Counts, inserted bool) {
	if inserted {
		c.Inserted++
	} else {
		c.Existing++
	}
}
