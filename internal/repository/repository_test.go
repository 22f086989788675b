package repository

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/errors"
)

func TestValidIDs(t *testing.T) {
	ids := []string{
		"6f1c2a1e-3b7d-4c55-9d3e-2f7a9b0c1d2e",
		"64b7f0c2e4b0a1a2b3c4d5e6",
		"",
		"../etc",
		"0b9d7c3e-1a2b-4c5d-8e9f-a0b1c2d3e4f5",
	}

	assert.Equal(t, []string{
		"6f1c2a1e-3b7d-4c55-9d3e-2f7a9b0c1d2e",
		"0b9d7c3e-1a2b-4c5d-8e9f-a0b1c2d3e4f5",
	}, validIDs(ids))
	assert.Empty(t, validIDs(nil))
}

func TestDBError(t *testing.T) {
	assert.NoError(t, dbError(nil, domain.ErrSongNotFound))
	assert.Equal(t, domain.ErrSongNotFound, dbError(pgx.ErrNoRows, domain.ErrSongNotFound))

	err := dbError(stderrors.New("connection reset"), domain.ErrSongNotFound)
	assert.True(t, errors.IsError(err, errors.ErrDatabaseError))
	assert.Equal(t, 500, errors.GetHTTPStatus(err))
}

func TestNonNil(t *testing.T) {
	assert.Equal(t, []string{}, nonNil(nil))
	assert.Equal(t, []string{"a", "a"}, nonNil([]string{"a", "a"}))
}

// Malformed ids must never reach the database.
func TestMalformedIDsAreNotFound(t *testing.T) {
	ctx := context.Background()
	songs := &SongRepository{db: panicDB{}}
	albums := &AlbumRepository{db: panicDB{}}
	playlists := &PlaylistRepository{db: panicDB{}}
	users := &UserRepository{db: panicDB{}}

	_, err := songs.FindByID(ctx, "not-a-uuid")
	assert.Equal(t, domain.ErrSongNotFound, err)
	assert.Equal(t, domain.ErrSongNotFound, songs.Delete(ctx, "x"))

	_, err = albums.FindByID(ctx, "x")
	assert.Equal(t, domain.ErrAlbumNotFound, err)

	_, err = playlists.AppendSong(ctx, "x", "song")
	assert.Equal(t, domain.ErrPlaylistNotFound, err)

	_, err = users.FindByID(ctx, "x")
	assert.Equal(t, domain.ErrUserNotFound, err)

	ok, err := users.LinkSubject(ctx, "x", "auth0|abc")
	assert.NoError(t, err)
	assert.False(t, ok)

	found, err := songs.FindByIDs(ctx, []string{"x", "y"}, domain.SongFilter{})
	assert.NoError(t, err)
	assert.Empty(t, found)
}

func TestDraftFilterReachesQuery(t *testing.T) {
	ctx := context.Background()
	ids := []string{"6f1c2a1e-3b7d-4c55-9d3e-2f7a9b0c1d2e"}

	for _, include := range []bool{false, true} {
		f := domain.SongFilter{IncludeDrafts: include}

		rec := &recordingDB{}
		_, err := (&SongRepository{db: rec}).List(ctx, f)
		assert.Error(t, err)
		assert.Contains(t, rec.sql, "WHERE ($1 OR NOT is_draft)")
		assert.Equal(t, []any{include}, rec.args)

		rec = &recordingDB{}
		_, err = (&SongRepository{db: rec}).FindByIDs(ctx, ids, f)
		assert.Error(t, err)
		assert.Contains(t, rec.sql, "AND ($2 OR NOT is_draft)")
		assert.Equal(t, []any{ids, include}, rec.args)

		rec = &recordingDB{}
		_, err = (&AlbumRepository{db: rec}).List(ctx, f)
		assert.Error(t, err)
		assert.Contains(t, rec.sql, "WHERE ($1 OR NOT is_draft)")
		assert.Equal(t, []any{include}, rec.args)
	}
}

// recordingDB keeps the last query it was sent and fails it.
type recordingDB struct {
	panicDB
	sql  string
	args []any
}

func (r *recordingDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	r.sql, r.args = sql, args
	return nil, stderrors.New("recorded")
}

type panicDB struct{}

func (panicDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	panic("unexpected Exec")
}

func (panicDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("unexpected Query")
}

func (panicDB) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("unexpected QueryRow")
}
