package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/db"
	"github.com/belovedzguard/beloved-api/pkg/errors"
)

const albumColumns = `id::text, title, description, album_thumbnail, song_ids, is_draft,
	COALESCE(legacy_id, ''), created_at, updated_at`

// AlbumRepository stores albums.
type AlbumRepository struct {
	db db.DBTX
}

// NewAlbumRepository creates an album repository on pool.
func NewAlbumRepository(pool *pgxpool.Pool) *AlbumRepository {
	return &AlbumRepository{db: pool}
}

func scanAlbum(row pgx.Row) (*domain.Album, error) {
	var a domain.Album
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Description,
		&a.AlbumThumbnail,
		&a.SongIDs,
		&a.IsDraft,
		&a.LegacyID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.SongIDs = nonNil(a.SongIDs)
	return &a, nil
}

// List returns albums oldest first. Drafts are left out unless the filter
// includes them.
func (r *AlbumRepository) List(ctx context.Context, f domain.SongFilter) ([]*domain.Album, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+albumColumns+` FROM albums WHERE ($1 OR NOT is_draft) ORDER BY created_at ASC, id`,
		f.IncludeDrafts,
	)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	defer rows.Close()

	albums := make([]*domain.Album, 0)
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		albums = append(albums, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return albums, nil
}

// FindByID returns the album with the given id, draft or not.
func (r *AlbumRepository) FindByID(ctx context.Context, id string) (*domain.Album, error) {
	if !validID(id) {
		return nil, domain.ErrAlbumNotFound
	}
	a, err := scanAlbum(r.db.QueryRow(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = $1::uuid`, id))
	if err != nil {
		return nil, dbError(err, domain.ErrAlbumNotFound)
	}
	return a, nil
}

// Create inserts a and fills its id and timestamps.
func (r *AlbumRepository) Create(ctx context.Context, a *domain.Album) error {
	query := `
		INSERT INTO albums (title, description, album_thumbnail, song_ids, is_draft)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		a.Title,
		a.Description,
		a.AlbumThumbnail,
		nonNil(a.SongIDs),
		a.IsDraft,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// Update saves every field of a.
func (r *AlbumRepository) Update(ctx context.Context, a *domain.Album) error {
	if !validID(a.ID) {
		return domain.ErrAlbumNotFound
	}
	query := `
		UPDATE albums SET title = $2, description = $3, album_thumbnail = $4, song_ids = $5,
			is_draft = $6, updated_at = now()
		WHERE id = $1::uuid
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		a.ID,
		a.Title,
		a.Description,
		a.AlbumThumbnail,
		nonNil(a.SongIDs),
		a.IsDraft,
	).Scan(&a.UpdatedAt)
	return dbError(err, domain.ErrAlbumNotFound)
}

// Delete removes the album with the given id.
func (r *AlbumRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrAlbumNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM albums WHERE id = $1::uuid`, id)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlbumNotFound
	}
	return nil
}

// InsertLegacy stores an album imported from the legacy store. It reports
// false when the legacy record was imported before.
func (r *AlbumRepository) InsertLegacy(ctx context.Context, a *domain.Album) (bool, error) {
	query := `
		INSERT INTO albums (title, description, album_thumbnail, song_ids, is_draft, legacy_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (legacy_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		a.Title,
		a.Description,
		a.AlbumThumbnail,
		nonNil(a.SongIDs),
		a.IsDraft,
		a.LegacyID,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return false, errors.ErrDatabaseError.WithError(err)
	}
	return tag.RowsAffected() == 1, nil
}
