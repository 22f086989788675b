package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/db"
	"github.com/belovedzguard/beloved-api/pkg/errors"
)

const songColumns = `id::text, title, genre, mp3, song_thumbnail, animated_song_thumbnail,
	video_thumbnail, lyrics, you_tube, bandcamp, mp3_key, song_thumbnail_key,
	animated_song_thumbnail_key, video_thumbnail_key, lyrics_key, description, verse,
	is_draft, COALESCE(legacy_id, ''), created_at, updated_at`

const insertSong = `
	INSERT INTO songs (title, genre, mp3, song_thumbnail, animated_song_thumbnail,
		video_thumbnail, lyrics, you_tube, bandcamp, mp3_key, song_thumbnail_key,
		animated_song_thumbnail_key, video_thumbnail_key, lyrics_key, description, verse, is_draft)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	RETURNING id::text, created_at, updated_at
`

// SongRepository stores songs.
type SongRepository struct {
	db db.DBTX
	tx db.Transaction
}

// NewSongRepository creates a song repository on pool.
func NewSongRepository(pool *pgxpool.Pool) *SongRepository {
	return &SongRepository{db: pool, tx: db.NewTransaction(pool)}
}

func scanSong(row pgx.Row) (*domain.Song, error) {
	var s domain.Song
	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.Genre,
		&s.MP3,
		&s.SongThumbnail,
		&s.AnimatedSongThumbnail,
		&s.VideoThumbnail,
		&s.Lyrics,
		&s.YouTube,
		&s.Bandcamp,
		&s.MP3Key,
		&s.SongThumbnailKey,
		&s.AnimatedSongThumbnailKey,
		&s.VideoThumbnailKey,
		&s.LyricsKey,
		&s.Description,
		&s.Verse,
		&s.IsDraft,
		&s.LegacyID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func songArgs(s *domain.Song) []any {
	return []any{
		s.Title,
		s.Genre,
		s.MP3,
		s.SongThumbnail,
		s.AnimatedSongThumbnail,
		s.VideoThumbnail,
		s.Lyrics,
		s.YouTube,
		s.Bandcamp,
		s.MP3Key,
		s.SongThumbnailKey,
		s.AnimatedSongThumbnailKey,
		s.VideoThumbnailKey,
		s.LyricsKey,
		s.Description,
		s.Verse,
		s.IsDraft,
	}
}

func collectSongs(rows pgx.Rows) ([]*domain.Song, error) {
	defer rows.Close()

	songs := make([]*domain.Song, 0)
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return songs, nil
}

// List returns songs newest first. Drafts are left out unless the filter
// includes them.
func (r *SongRepository) List(ctx context.Context, f domain.SongFilter) ([]*domain.Song, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+songColumns+` FROM songs WHERE ($1 OR NOT is_draft) ORDER BY created_at DESC, id`,
		f.IncludeDrafts,
	)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return collectSongs(rows)
}

// FindByID returns the song with the given id, draft or not.
func (r *SongRepository) FindByID(ctx context.Context, id string) (*domain.Song, error) {
	if !validID(id) {
		return nil, domain.ErrSongNotFound
	}
	s, err := scanSong(r.db.QueryRow(ctx, `SELECT `+songColumns+` FROM songs WHERE id = $1::uuid`, id))
	if err != nil {
		return nil, dbError(err, domain.ErrSongNotFound)
	}
	return s, nil
}

// FindByIDs returns the songs named by ids, keyed by id. Unknown and
// filtered ids are absent from the map.
func (r *SongRepository) FindByIDs(ctx context.Context, ids []string, f domain.SongFilter) (map[string]*domain.Song, error) {
	ids = validIDs(ids)
	out := make(map[string]*domain.Song, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+songColumns+` FROM songs WHERE id = ANY($1::uuid[]) AND ($2 OR NOT is_draft)`,
		ids, f.IncludeDrafts,
	)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	songs, err := collectSongs(rows)
	if err != nil {
		return nil, err
	}
	for _, s := range songs {
		out[s.ID] = s
	}
	return out, nil
}

// Create inserts s and fills its id and timestamps.
func (r *SongRepository) Create(ctx context.Context, s *domain.Song) error {
	err := r.db.QueryRow(ctx, insertSong, songArgs(s)...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// BulkCreate inserts all songs in one transaction. Either every song is
// stored or none is.
func (r *SongRepository) BulkCreate(ctx context.Context, songs []*domain.Song) error {
	if len(songs) == 0 {
		return nil
	}

	return r.tx.ExecTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, s := range songs {
			batch.Queue(insertSong, songArgs(s)...)
		}

		results := tx.SendBatch(ctx, batch)
		for _, s := range songs {
			if err := results.QueryRow().Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
				results.Close()
				return errors.ErrDatabaseError.WithError(err)
			}
		}
		if err := results.Close(); err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		return nil
	})
}

// Update saves every field of s.
func (r *SongRepository) Update(ctx context.Context, s *domain.Song) error {
	if !validID(s.ID) {
		return domain.ErrSongNotFound
	}
	query := `
		UPDATE songs SET title = $2, genre = $3, mp3 = $4, song_thumbnail = $5,
			animated_song_thumbnail = $6, video_thumbnail = $7, lyrics = $8, you_tube = $9,
			bandcamp = $10, mp3_key = $11, song_thumbnail_key = $12,
			animated_song_thumbnail_key = $13, video_thumbnail_key = $14, lyrics_key = $15,
			description = $16, verse = $17, is_draft = $18, updated_at = now()
		WHERE id = $1::uuid
		RETURNING updated_at
	`
	args := append([]any{s.ID}, songArgs(s)...)
	err := r.db.QueryRow(ctx, query, args...).Scan(&s.UpdatedAt)
	return dbError(err, domain.ErrSongNotFound)
}

// Delete removes the song with the given id.
func (r *SongRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrSongNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM songs WHERE id = $1::uuid`, id)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSongNotFound
	}
	return nil
}

// InsertLegacy stores a song imported from the legacy store and returns
// its id. inserted is false when the legacy record was imported before, in
// which case the existing id is returned.
func (r *SongRepository) InsertLegacy(ctx context.Context, s *domain.Song) (inserted bool, err error) {
	query := `
		INSERT INTO songs (title, genre, mp3, song_thumbnail, animated_song_thumbnail,
			video_thumbnail, lyrics, you_tube, bandcamp, mp3_key, song_thumbnail_key,
			animated_song_thumbnail_key, video_thumbnail_key, lyrics_key, description, verse, is_draft,
			legacy_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (legacy_id) DO NOTHING
		RETURNING id::text
	`
	args := append(songArgs(s), s.LegacyID, s.CreatedAt, s.UpdatedAt)
	err = r.db.QueryRow(ctx, query, args...).Scan(&s.ID)
	if err == nil {
		return true, nil
	}
	if !db.IsNoRows(err) {
		return false, errors.ErrDatabaseError.WithError(err)
	}

	err = r.db.QueryRow(ctx, `SELECT id::text FROM songs WHERE legacy_id = $1`, s.LegacyID).Scan(&s.ID)
	if err != nil {
		return false, errors.ErrDatabaseError.WithError(err)
	}
	return false, nil
}
