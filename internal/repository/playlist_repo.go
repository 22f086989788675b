package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/db"
	"github.com/belovedzguard/beloved-api/pkg/errors"
)

const playlistColumns = `id::text, name, owner, description, cover_image, song_ids,
	COALESCE(legacy_id, ''), created_at, updated_at`

// PlaylistRepository stores playlists.
type PlaylistRepository struct {
	db db.DBTX
}

// NewPlaylistRepository creates a playlist repository on pool.
func NewPlaylistRepository(pool *pgxpool.Pool) *PlaylistRepository {
	return &PlaylistRepository{db: pool}
}

func scanPlaylist(row pgx.Row) (*domain.Playlist, error) {
	var p domain.Playlist
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Owner,
		&p.Description,
		&p.CoverImage,
		&p.SongIDs,
		&p.LegacyID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.SongIDs = nonNil(p.SongIDs)
	return &p, nil
}

// ListByOwner returns the playlists owned by subject, newest first.
func (r *PlaylistRepository) ListByOwner(ctx context.Context, owner string) ([]*domain.Playlist, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+playlistColumns+` FROM playlists WHERE owner = $1 ORDER BY created_at DESC, id`,
		owner,
	)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	defer rows.Close()

	playlists := make([]*domain.Playlist, 0)
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return playlists, nil
}

// FindByID returns the playlist with the given id.
func (r *PlaylistRepository) FindByID(ctx context.Context, id string) (*domain.Playlist, error) {
	if !validID(id) {
		return nil, domain.ErrPlaylistNotFound
	}
	p, err := scanPlaylist(r.db.QueryRow(ctx, `SELECT `+playlistColumns+` FROM playlists WHERE id = $1::uuid`, id))
	if err != nil {
		return nil, dbError(err, domain.ErrPlaylistNotFound)
	}
	return p, nil
}

// Create inserts p and fills its id and timestamps.
func (r *PlaylistRepository) Create(ctx context.Context, p *domain.Playlist) error {
	query := `
		INSERT INTO playlists (name, owner, description, cover_image, song_ids)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.Name,
		p.Owner,
		p.Description,
		p.CoverImage,
		nonNil(p.SongIDs),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// Update saves the mutable fields of p. The owner column is never written.
func (r *PlaylistRepository) Update(ctx context.Context, p *domain.Playlist) error {
	if !validID(p.ID) {
		return domain.ErrPlaylistNotFound
	}
	query := `
		UPDATE playlists SET name = $2, description = $3, cover_image = $4, song_ids = $5,
			updated_at = now()
		WHERE id = $1::uuid
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.CoverImage,
		nonNil(p.SongIDs),
	).Scan(&p.UpdatedAt)
	return dbError(err, domain.ErrPlaylistNotFound)
}

// AppendSong adds songID to the end of the playlist's song list. The same
// song may appear more than once.
func (r *PlaylistRepository) AppendSong(ctx context.Context, id, songID string) (*domain.Playlist, error) {
	if !validID(id) {
		return nil, domain.ErrPlaylistNotFound
	}
	query := `
		UPDATE playlists SET song_ids = array_append(song_ids, $2), updated_at = now()
		WHERE id = $1::uuid
		RETURNING ` + playlistColumns
	p, err := scanPlaylist(r.db.QueryRow(ctx, query, id, songID))
	if err != nil {
		return nil, dbError(err, domain.ErrPlaylistNotFound)
	}
	return p, nil
}

// Delete removes the playlist with the given id.
func (r *PlaylistRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrPlaylistNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM playlists WHERE id = $1::uuid`, id)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlaylistNotFound
	}
	return nil
}

// InsertLegacy stores a playlist imported from the legacy store. It reports
// false when the legacy record was imported before.
func (r *PlaylistRepository) InsertLegacy(ctx context.Context, p *domain.Playlist) (bool, error) {
	query := `
		INSERT INTO playlists (name, owner, description, cover_image, song_ids, legacy_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (legacy_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		p.Name,
		p.Owner,
		p.Description,
		p.CoverImage,
		nonNil(p.SongIDs),
		p.LegacyID,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return false, errors.ErrDatabaseError.WithError(err)
	}
	return tag.RowsAffected() == 1, nil
}
