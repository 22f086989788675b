package handler

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/belovedzguard/beloved-api/internal/auth"
	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/internal/service"
	"github.com/belovedzguard/beloved-api/pkg/httputil"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// subjectHeader stands in for a verified bearer token in tests.
const subjectHeader = "X-Test-Subject"

type fakeAuth struct{}

func (fakeAuth) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		sub := c.GetHeader(subjectHeader)
		if sub == "" {
			httputil.ErrorResponse(c, auth.ErrMissingToken)
			return
		}
		rc := &auth.RequestContext{
			Identity: &domain.Identity{Subject: sub},
			User:     &domain.User{ID: "u-" + sub, Auth0ID: sub},
		}
		c.Request = c.Request.WithContext(auth.WithRequestContext(c.Request.Context(), rc))
		c.Next()
	}
}

func (fakeAuth) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sub := c.GetHeader(subjectHeader); sub != "" {
			rc := &auth.RequestContext{Identity: &domain.Identity{Subject: sub}}
			c.Request = c.Request.WithContext(auth.WithRequestContext(c.Request.Context(), rc))
		}
		c.Next()
	}
}

type mocks struct {
	songs     *MockSongAPI
	albums    *MockAlbumAPI
	playlists *MockPlaylistAPI
	users     *MockUserAPI
	uploads   *MockUploadAPI
	contact   *MockContactAPI
}

func newTestRouter(limit gin.HandlerFunc) (*gin.Engine, *mocks) {
	m := &mocks{
		songs:     new(MockSongAPI),
		albums:    new(MockAlbumAPI),
		playlists: new(MockPlaylistAPI),
		users:     new(MockUserAPI),
		uploads:   new(MockUploadAPI),
		contact:   new(MockContactAPI),
	}
	router, err := NewRouter(RouterConfig{
		Songs:        NewSongHandler(m.songs),
		Albums:       NewAlbumHandler(m.albums),
		Playlists:    NewPlaylistHandler(m.playlists),
		Users:        NewUserHandler(m.users),
		Uploads:      NewUploadHandler(m.uploads),
		Contact:      NewContactHandler(m.contact),
		Health:       NewHealthHandler(nil),
		Auth:         fakeAuth{},
		ContactLimit: limit,
		Log:          logger.NewNop(),
	})
	if err != nil {
		panic(err)
	}
	return router, m
}

func do(router *gin.Engine, method, path, subject, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set(subjectHeader, subject)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// MockSongAPI is a testify mock of SongAPI.
type MockSongAPI struct {
	mock.Mock
}

func (m *MockSongAPI) List(ctx context.Context, rc *auth.RequestContext) ([]*domain.Song, error) {
	args := m.Called(ctx, rc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Song), args.Error(1)
}

func (m *MockSongAPI) Get(ctx context.Context, rc *auth.RequestContext, id string) (*domain.Song, error) {
	args := m.Called(ctx, rc, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Song), args.Error(1)
}

func (m *MockSongAPI) Create(ctx context.Context, rc *auth.RequestContext, in *domain.SongInput) (*domain.Song, error) {
	args := m.Called(ctx, rc, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Song), args.Error(1)
}

func (m *MockSongAPI) BulkCreate(ctx context.Context, rc *auth.RequestContext, ins []*domain.SongInput) ([]*domain.Song, error) {
	args := m.Called(ctx, rc, ins)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Song), args.Error(1)
}

func (m *MockSongAPI) Update(ctx context.Context, rc *auth.RequestContext, id string, in *domain.SongInput) (*domain.Song, error) {
	args := m.Called(ctx, rc, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Song), args.Error(1)
}

func (m *MockSongAPI) Delete(ctx context.Context, rc *auth.RequestContext, id string) error {
	return m.Called(ctx, rc, id).Error(0)
}

func (m *MockSongAPI) AuthorizeWrite(ctx context.Context, rc *auth.RequestContext, id string) error {
	return m.Called(ctx, rc, id).Error(0)
}

// MockAlbumAPI is a testify mock of AlbumAPI.
type MockAlbumAPI struct {
	mock.Mock
}

func (m *MockAlbumAPI) List(ctx context.Context, rc *auth.RequestContext) ([]*domain.Album, error) {
	args := m.Called(ctx, rc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Album), args.Error(1)
}

func (m *MockAlbumAPI) Get(ctx context.Context, rc *auth.RequestContext, id string) (*domain.Album, error) {
	args := m.Called(ctx, rc, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Album), args.Error(1)
}

func (m *MockAlbumAPI) Create(ctx context.Context, rc *auth.RequestContext, in *domain.AlbumInput) (*domain.Album, error) {
	args := m.Called(ctx, rc, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Album), args.Error(1)
}

func (m *MockAlbumAPI) Update(ctx context.Context, rc *auth.RequestContext, id string, in *domain.AlbumInput) (*domain.Album, error) {
	args := m.Called(ctx, rc, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Album), args.Error(1)
}

func (m *MockAlbumAPI) Delete(ctx context.Context, rc *auth.RequestContext, id string) error {
	return m.Called(ctx, rc, id).Error(0)
}

func (m *MockAlbumAPI) AuthorizeWrite(ctx context.Context, rc *auth.RequestContext, id string) error {
	return m.Called(ctx, rc, id).Error(0)
}

// MockPlaylistAPI is a testify mock of PlaylistAPI.
type MockPlaylistAPI struct {
	mock.Mock
}

func (m *MockPlaylistAPI) playlist(args mock.Arguments) (*domain.Playlist, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Playlist), args.Error(1)
}

func (m *MockPlaylistAPI) Create(ctx context.Context, rc *auth.RequestContext, in *domain.PlaylistInput) (*domain.Playlist, error) {
	return m.playlist(m.Called(ctx, rc, in))
}

func (m *MockPlaylistAPI) List(ctx context.Context, rc *auth.RequestContext) ([]*domain.Playlist, error) {
	args := m.Called(ctx, rc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Playlist), args.Error(1)
}

func (m *MockPlaylistAPI) Get(ctx context.Context, rc *auth.RequestContext, id string) (*domain.Playlist, error) {
	return m.playlist(m.Called(ctx, rc, id))
}

func (m *MockPlaylistAPI) Update(ctx context.Context, rc *auth.RequestContext, id string, in *domain.PlaylistInput) (*domain.Playlist, error) {
	return m.playlist(m.Called(ctx, rc, id, in))
}

func (m *MockPlaylistAPI) Delete(ctx context.Context, rc *auth.RequestContext, id string) error {
	return m.Called(ctx, rc, id).Error(0)
}

func (m *MockPlaylistAPI) AddSong(ctx context.Context, rc *auth.RequestContext, id string, in *domain.AddSongInput) (*domain.Playlist, error) {
	return m.playlist(m.Called(ctx, rc, id, in))
}

func (m *MockPlaylistAPI) PublicGet(ctx context.Context, id string) (*domain.Playlist, error) {
	return m.playlist(m.Called(ctx, id))
}

func (m *MockPlaylistAPI) AuthorizeWrite(ctx context.Context, rc *auth.RequestContext, id string) error {
	return m.Called(ctx, rc, id).Error(0)
}

// MockUserAPI is a testify mock of UserAPI.
type MockUserAPI struct {
	mock.Mock
}

func (m *MockUserAPI) Me(ctx context.Context, rc *auth.RequestContext) (*domain.User, error) {
	args := m.Called(ctx, rc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserAPI) Update(ctx context.Context, rc *auth.RequestContext, in *domain.UserInput) (*domain.User, error) {
	args := m.Called(ctx, rc, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserAPI) Delete(ctx context.Context, rc *auth.RequestContext) (string, error) {
	args := m.Called(ctx, rc)
	return args.String(0), args.Error(1)
}

// MockUploadAPI is a testify mock of UploadAPI.
type MockUploadAPI struct {
	mock.Mock
}

func (m *MockUploadAPI) Issue(ctx context.Context, rc *auth.RequestContext, req *service.UploadRequest) (*service.UploadTicket, error) {
	args := m.Called(ctx, rc, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadTicket), args.Error(1)
}

// MockContactAPI is a testify mock of ContactAPI.
type MockContactAPI struct {
	mock.Mock
}

func (m *MockContactAPI) Submit(ctx context.Context, form *service.ContactForm) (*service.ContactResult, error) {
	args := m.Called(ctx, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ContactResult), args.Error(1)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func ginContext(w *httptest.ResponseRecorder, method, path string) (*gin.Context, *gin.Engine) {
	c, r := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	return c, r
}
