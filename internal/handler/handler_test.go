package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/belovedzguard/beloved-api/internal/auth"
	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/internal/middleware"
	"github.com/belovedzguard/beloved-api/internal/service"
	"github.com/belovedzguard/beloved-api/pkg/errors"
	"github.com/belovedzguard/beloved-api/pkg/limiter"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

func subject(s string) interface{} {
	return mock.MatchedBy(func(rc *auth.RequestContext) bool { return rc.Subject() == s })
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(nil)
	w := do(router, "GET", "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	h := NewHealthHandler(map[string]Pinger{"postgres": failingPinger{}})
	w = httptest.NewRecorder()
	c, _ := ginContext(w, "GET", "/health")
	h.Health(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestSongRoutes(t *testing.T) {
	t.Run("list honours optional token", func(t *testing.T) {
		router, m := newTestRouter(nil)
		m.songs.On("List", mock.Anything, subject("auth0|admin")).Return([]*domain.Song{{ID: "s1", IsDraft: true}}, nil)
		m.songs.On("List", mock.Anything, subject("")).Return([]*domain.Song{}, nil)

		w := do(router, "GET", "/api/songs", "auth0|admin", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"isDraft":true`)

		w = do(router, "GET", "/api/songs", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("hidden draft is 404", func(t *testing.T) {
		router, m := newTestRouter(nil)
		m.songs.On("Get", mock.Anything, mock.Anything, "s1").Return(nil, domain.ErrSongNotFound)

		w := do(router, "GET", "/api/songs/s1", "auth0|fan", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Song not found", errorOf(t, w))
	})

	t.Run("create", func(t *testing.T) {
		router, m := newTestRouter(nil)
		m.songs.On("Create", mock.Anything, subject("auth0|admin"), mock.MatchedBy(func(in *domain.SongInput) bool {
			return in.Title != nil && *in.Title == "Grace" && in.IsDraft != nil && in.IsDraft.Bool()
		})).Return(&domain.Song{ID: "s1", Title: "Grace"}, nil)

		w := do(router, "POST", "/api/songs", "auth0|admin", `{"title":"Grace","genre":"Hymn","isDraft":"true"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"_id":"s1"`)
	})

	t.Run("create requires a token", func(t *testing.T) {
		router, m := newTestRouter(nil)
		w := do(router, "POST", "/api/songs", "", `{}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Missing Auth0 user ID", errorOf(t, w))
		m.songs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		router, m := newTestRouter(nil)
		m.songs.On("AuthorizeWrite", mock.Anything, subject("auth0|admin"), "").Return(nil)

		w := do(router, "POST", "/api/songs", "auth0|admin", `{"title":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request body", errorOf(t, w))
	})

	t.Run("bad draft flag", func(t *testing.T) {
		router, m := newTestRouter(nil)
		m.songs.On("AuthorizeWrite", mock.Anything, subject("auth0|admin"), "").Return(nil)

		w := do(router, "POST", "/api/songs", "auth0|admin", `{"title":"x","genre":"y","isDraft":"maybe"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non-admin with a bad body is forbidden", func(t *testing.T) {
		router, m := newTestRouter(nil)
		m.songs.On("AuthorizeWrite", mock.Anything, subject("auth0|fan"), mock.Anything).Return(auth.ErrAdminRequired)

		for _, tc := range []struct{ method, path, body string }{
			{"POST", "/api/songs", `{"title":`},
			{"POST", "/api/songs", `{"title":"x","genre":"y","isDraft":"maybe"}`},
			{"POST", "/api/songs/bulk", `{"not":"an array"}`},
			{"PUT", "/api/songs/s1", `{"isDraft":"maybe"}`},
		} {
			w := do(router, tc.method, tc.path, "auth0|fan", tc.body)
			assert.Equal(t, http.StatusForbidden, w.Code, "%s %s %s", tc.method, tc.path, tc.body)
		}
		m.songs.AssertCalled(t, "AuthorizeWrite", mock.Anything, mock.Anything, "s1")
		m.songs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		m.songs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("anonymous with a bad body is unauthorized", func(t *testing.T) {
		router, m := newTestRouter(nil)
		w := do(router, "PUT", "/api/songs/s1", "", `{"isDraft":"maybe"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		m.songs.AssertNotCalled(t, "AuthorizeWrite", mock.Anything, mock.Anything, mock.Anything)
	})

	for _, path := range []string{"/api/songs/bulk", "/api/songs/bulk-add"} {
		t.Run("bulk via "+path, func(t *testing.T) {
			router, m := newTestRouter(nil)
			m.songs.On("BulkCreate", mock.Anything, mock.Anything, mock.MatchedBy(func(ins []*domain.SongInput) bool {
				return len(ins) == 2
			})).Return([]*domain.Song{{ID: "a"}, {ID: "b"}}, nil)

			w := do(router, "POST", path, "auth0|admin", `[{"title":"A","genre":"g"},{"title":"B","genre":"g"}]`)
			assert.Equal(t, http.StatusCreated, w.Code)
		})
	}

	t.Run("update and delete", func(t *testing.T) {
		router, m := newTestRouter(nil)
		m.songs.On("Update", mock.Anything, mock.Anything, "s1", mock.Anything).Return(&domain.Song{ID: "s1", Title: "New"}, nil)
		m.songs.On("Delete", mock.Anything, mock.Anything, "s1").Return(nil)

		w := do(router, "PUT", "/api/songs/s1", "auth0|admin", `{"title":"New"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		w = do(router, "DELETE", "/api/songs/s1", "auth0|admin", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Song deleted"}`, w.Body.String())
	})
}

func TestAlbumRoutes(t *testing.T) {
	router, m := newTestRouter(nil)
	m.albums.On("List", mock.Anything, mock.Anything).Return([]*domain.Album{{ID: "a1", Songs: []domain.Song{{ID: "s1"}}}}, nil)
	m.albums.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, auth.ErrAdminRequired)
	m.albums.On("Delete", mock.Anything, mock.Anything, "a1").Return(nil)

	w := do(router, "GET", "/api/albums", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"songs":[{"_id":"s1"`)

	w = do(router, "POST", "/api/albums", "auth0|fan", `{"title":"x","songs":["s1"]}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", errorOf(t, w))

	w = do(router, "DELETE", "/api/albums/a1", "auth0|admin", "")
	assert.JSONEq(t, `{"message":"Album deleted"}`, w.Body.String())
}

func TestAlbumWritesAuthorizeBeforeDecoding(t *testing.T) {
	router, m := newTestRouter(nil)
	m.albums.On("AuthorizeWrite", mock.Anything, subject("auth0|fan"), mock.Anything).Return(auth.ErrAdminRequired)
	m.albums.On("AuthorizeWrite", mock.Anything, subject("auth0|admin"), mock.Anything).Return(nil)

	w := do(router, "POST", "/api/albums", "auth0|fan", `{"title":`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(router, "PUT", "/api/albums/a1", "auth0|fan", `{"isDraft":"maybe"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(router, "PUT", "/api/albums/a1", "", `{"isDraft":"maybe"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, "PUT", "/api/albums/a1", "auth0|admin", `{"isDraft":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	m.albums.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	m.albums.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUserRoutes(t *testing.T) {
	router, m := newTestRouter(nil)
	m.users.On("Me", mock.Anything, subject("auth0|fan")).Return(&domain.User{ID: "u-1", Auth0ID: "auth0|fan", FavoriteSongs: []string{}}, nil)
	m.users.On("Delete", mock.Anything, subject("auth0|fan")).Return("u-1", nil)

	w := do(router, "GET", "/api/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, "GET", "/api/users", "auth0|fan", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"auth0Id":"auth0|fan"`)

	w = do(router, "DELETE", "/api/users", "auth0|fan", "")
	assert.JSONEq(t, `{"message":"User u-1 deleted"}`, w.Body.String())
}

func TestPlaylistRoutes(t *testing.T) {
	t.Run("foreign playlist is forbidden", func(t *testing.T) {
		router, m := newTestRouter(nil)
		m.playlists.On("Update", mock.Anything, subject("auth0|stranger"), "p1", mock.Anything).Return(nil, auth.ErrNotOwner)

		w := do(router, "PUT", "/api/users/playlists/p1", "auth0|stranger", `{"name":"mine now"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("foreign playlist with a bad body is forbidden", func(t *testing.T) {
		router, m := newTestRouter(nil)
		m.playlists.On("AuthorizeWrite", mock.Anything, subject("auth0|stranger"), "p1").Return(auth.ErrNotOwner)

		w := do(router, "PUT", "/api/users/playlists/p1", "auth0|stranger", `{"name":`)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = do(router, "PATCH", "/api/users/playlists/p1/addSong", "auth0|stranger", `["s1"]`)
		assert.Equal(t, http.StatusForbidden, w.Code)
		m.playlists.AssertNotCalled(t, "AddSong", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("add song", func(t *testing.T) {
		router, m := newTestRouter(nil)
		m.playlists.On("AddSong", mock.Anything, mock.Anything, "p1", &domain.AddSongInput{SongID: "s1"}).
			Return(&domain.Playlist{ID: "p1", Songs: []domain.Song{{ID: "s1"}, {ID: "s1"}}}, nil)

		w := do(router, "PATCH", "/api/users/playlists/p1/addSong", "auth0|fan", `{"songId":"s1"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("create and delete", func(t *testing.T) {
		router, m := newTestRouter(nil)
		m.playlists.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(&domain.Playlist{ID: "p1", Owner: "auth0|fan"}, nil)
		m.playlists.On("Delete", mock.Anything, mock.Anything, "p1").Return(nil)

		w := do(router, "POST", "/api/users/playlists", "auth0|fan", `{"name":"Road","songs":[]}`)
		assert.Equal(t, http.StatusCreated, w.Code)

		w = do(router, "DELETE", "/api/users/playlists/p1", "auth0|fan", "")
		assert.JSONEq(t, `{"message":"Playlist deleted"}`, w.Body.String())
	})

	t.Run("public read hides owner", func(t *testing.T) {
		router, m := newTestRouter(nil)
		m.playlists.On("PublicGet", mock.Anything, "p1").Return(&domain.Playlist{ID: "p1", Name: "Road", Songs: []domain.Song{}}, nil)

		w := do(router, "GET", "/api/public/playlists/p1", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "owner")
	})
}

func TestPublicReadsAreAnonymous(t *testing.T) {
	router, m := newTestRouter(nil)
	m.songs.On("List", mock.Anything, subject("")).Return([]*domain.Song{}, nil)
	m.albums.On("Get", mock.Anything, subject(""), "a1").Return(nil, domain.ErrAlbumNotFound)

	// A token on a public route does not reveal drafts.
	w := do(router, "GET", "/api/public/songs", "auth0|admin", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, "GET", "/api/public/albums/a1", "auth0|admin", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	m.songs.AssertExpectations(t)
}

func TestUploadRoute(t *testing.T) {
	router, m := newTestRouter(nil)
	m.uploads.On("Issue", mock.Anything, subject("auth0|admin"), &service.UploadRequest{AssetType: "mp3", FileName: "grace"}).
		Return(&service.UploadTicket{UploadURL: "https://signed", Key: "music-files/grace.mp3", Field: "mp3", ExpiresIn: 300}, nil)
	m.uploads.On("Issue", mock.Anything, subject("auth0|admin"), &service.UploadRequest{}).
		Return(nil, errors.ErrMissingField.WithMessage("assetType and fileName are required"))

	w := do(router, "POST", "/api/uploads", "", `{"assetType":"mp3","fileName":"grace"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, "POST", "/api/uploads", "auth0|admin", `{"assetType":"mp3","fileName":"grace"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var ticket service.UploadTicket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))
	assert.Equal(t, 300, ticket.ExpiresIn)
	assert.Equal(t, "music-files/grace.mp3", ticket.Key)

	// A broken body still reaches the service as an empty request.
	w = do(router, "POST", "/api/uploads", "auth0|admin", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContactRoute(t *testing.T) {
	limit := middleware.ContactLimit(limiter.NewLocalLimiter(3, time.Hour), time.Hour, logger.NewNop())
	router, m := newTestRouter(limit)
	m.contact.On("Submit", mock.Anything, mock.Anything).
		Return(&service.ContactResult{Success: true, Message: "Your message has been sent successfully!"}, nil)

	body := `{"name":"Ada","email":"ada@example.com","subject":"Hi","message":"Hello"}`
	for i := 0; i < 3; i++ {
		w := do(router, "POST", "/api/public/contact", "", body)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"message":"Your message has been sent successfully!"}`, w.Body.String())
	}

	w := do(router, "POST", "/api/public/contact", "", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many contact form submissions. Please try again in an hour.", errorOf(t, w))
	m.contact.AssertNumberOfCalls(t, "Submit", 3)
}

func TestNoRoute(t *testing.T) {
	router, _ := newTestRouter(nil)
	w := do(router, "GET", "/api/nothing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", errorOf(t, w))
}
