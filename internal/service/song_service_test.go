package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/belovedzguard/beloved-api/internal/auth"
	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/errors"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

var testMedia = Media{
	BaseURL:       "https://media.belovedzguard.com",
	PublicBaseURL: "https://uploads.belovedzguard.com",
}

func newSongService(store *MockSongStore) *SongService {
	return NewSongService(store, testPolicy, testMedia, logger.NewNop())
}

func TestSongService_ListDraftVisibility(t *testing.T) {
	tests := []struct {
		name   string
		rc     *auth.RequestContext
		drafts bool
	}{
		{"admin sees drafts", asAdmin(), true},
		{"user does not", asUser(), false},
		{"anonymous does not", auth.Anonymous, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockSongStore)
			store.On("List", mock.Anything, domain.SongFilter{IncludeDrafts: tt.drafts}).
				Return([]*domain.Song{{ID: "s1"}}, nil)

			songs, err := newSongService(store).List(context.Background(), tt.rc)
			require.NoError(t, err)
			assert.Len(t, songs, 1)
			store.AssertExpectations(t)
		})
	}
}

func TestSongService_GetDraft(t *testing.T) {
	store := new(MockSongStore)
	store.On("FindByID", mock.Anything, "s1").Return(&domain.Song{ID: "s1", IsDraft: true}, nil)
	svc := newSongService(store)

	_, err := svc.Get(context.Background(), asUser(), "s1")
	assert.Equal(t, 404, errors.GetHTTPStatus(err))
	assert.Equal(t, domain.ErrSongNotFound, err)

	_, err = svc.Get(context.Background(), auth.Anonymous, "s1")
	assert.Equal(t, 404, errors.GetHTTPStatus(err))

	song, err := svc.Get(context.Background(), asAdmin(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", song.ID)
}

func TestSongService_CreateRequiresAdmin(t *testing.T) {
	store := new(MockSongStore)
	svc := newSongService(store)
	in := &domain.SongInput{Title: strPtr("Grace"), Genre: strPtr("Hymn")}

	_, err := svc.Create(context.Background(), auth.Anonymous, in)
	assert.Equal(t, 401, errors.GetHTTPStatus(err))

	_, err = svc.Create(context.Background(), asUser(), in)
	assert.Equal(t, 403, errors.GetHTTPStatus(err))

	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSongService_CreateDerivesAssets(t *testing.T) {
	store := new(MockSongStore)
	store.On("Create", mock.Anything, mock.AnythingOfType("*domain.Song")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Song).ID = "new-id" }).
		Return(nil)

	var in domain.SongInput
	require.NoError(t, json.Unmarshal([]byte(`{
		"title": "Rock & Roll's Light",
		"genre": "Worship",
		"mp3": "https://cdn.example.com/custom.mp3",
		"songThumbnailKey": "song-thumbnails/rock-v2.jpg",
		"isDraft": "true"
	}`), &in))

	song, err := newSongService(store).Create(context.Background(), asAdmin(), &in)
	require.NoError(t, err)

	assert.Equal(t, "new-id", song.ID)
	assert.True(t, song.IsDraft)
	assert.Equal(t, "https://cdn.example.com/custom.mp3", song.MP3)
	assert.Equal(t, "https://uploads.belovedzguard.com/song-thumbnails/rock-v2.jpg", song.SongThumbnail)
	assert.Equal(t, "https://media.belovedzguard.com/animated-song-thumbnails/rock-and-rolls-light.mp4", song.AnimatedSongThumbnail)
	assert.Equal(t, "https://media.belovedzguard.com/video-thumbnails/rock-and-rolls-light.jpg", song.VideoThumbnail)
	assert.Equal(t, "https://media.belovedzguard.com/lyrics/rock-and-rolls-light.md", song.Lyrics)
	store.AssertExpectations(t)
}

func TestSongService_CreateValidation(t *testing.T) {
	store := new(MockSongStore)

	_, err := newSongService(store).Create(context.Background(), asAdmin(), &domain.SongInput{Title: strPtr("Only title")})
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPStatus)
	assert.Equal(t, "Title and genre are required", appErr.Message)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSongService_BulkCreate(t *testing.T) {
	t.Run("all or nothing validation", func(t *testing.T) {
		store := new(MockSongStore)
		_, err := newSongService(store).BulkCreate(context.Background(), asAdmin(), []*domain.SongInput{
			{Title: strPtr("One"), Genre: strPtr("Hymn")},
			{Title: strPtr("Two")},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "songs[1]")
		store.AssertNotCalled(t, "BulkCreate", mock.Anything, mock.Anything)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := newSongService(new(MockSongStore)).BulkCreate(context.Background(), asAdmin(), nil)
		assert.Equal(t, 400, errors.GetHTTPStatus(err))
	})

	t.Run("stores every song", func(t *testing.T) {
		store := new(MockSongStore)
		store.On("BulkCreate", mock.Anything, mock.MatchedBy(func(songs []*domain.Song) bool {
			return len(songs) == 2 && songs[1].MP3 == "https://media.belovedzguard.com/music-files/two.mp3"
		})).Return(nil)

		songs, err := newSongService(store).BulkCreate(context.Background(), asAdmin(), []*domain.SongInput{
			{Title: strPtr("One"), Genre: strPtr("Hymn")},
			{Title: strPtr("Two"), Genre: strPtr("Hymn")},
		})
		require.NoError(t, err)
		assert.Len(t, songs, 2)
		store.AssertExpectations(t)
	})

	t.Run("non admin", func(t *testing.T) {
		_, err := newSongService(new(MockSongStore)).BulkCreate(context.Background(), asUser(), nil)
		assert.Equal(t, 403, errors.GetHTTPStatus(err))
	})
}

func TestSongService_Update(t *testing.T) {
	store := new(MockSongStore)
	store.On("FindByID", mock.Anything, "s1").
		Return(&domain.Song{ID: "s1", Title: "Old", Genre: "Hymn", IsDraft: true}, nil)
	store.On("Update", mock.Anything, mock.AnythingOfType("*domain.Song")).Return(nil)

	draft := domain.DraftFlag(false)
	song, err := newSongService(store).Update(context.Background(), asAdmin(), "s1", &domain.SongInput{
		Title:   strPtr("New"),
		IsDraft: &draft,
	})
	require.NoError(t, err)
	assert.Equal(t, "New", song.Title)
	assert.Equal(t, "Hymn", song.Genre)
	assert.False(t, song.IsDraft)
}

func TestSongService_Delete(t *testing.T) {
	store := new(MockSongStore)
	store.On("Delete", mock.Anything, "missing").Return(domain.ErrSongNotFound)

	err := newSongService(store).Delete(context.Background(), asAdmin(), "missing")
	assert.Equal(t, domain.ErrSongNotFound, err)

	err = newSongService(store).Delete(context.Background(), asUser(), "missing")
	assert.Equal(t, 403, errors.GetHTTPStatus(err))
}

func TestSongService_AuthorizeWrite(t *testing.T) {
	svc := newSongService(new(MockSongStore))
	ctx := context.Background()

	assert.Equal(t, 401, errors.GetHTTPStatus(svc.AuthorizeWrite(ctx, auth.Anonymous, "")))
	assert.Equal(t, 403, errors.GetHTTPStatus(svc.AuthorizeWrite(ctx, asUser(), "s1")))
	assert.NoError(t, svc.AuthorizeWrite(ctx, asAdmin(), "s1"))
}
