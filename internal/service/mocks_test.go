package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/belovedzguard/beloved-api/internal/auth"
	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/internal/mail"
)

const (
	adminSubject = "auth0|admin"
	userSubject  = "auth0|user"
)

var testPolicy = auth.NewPolicy(auth.NewAdminSet(adminSubject))

func asAdmin() *auth.RequestContext {
	return &auth.RequestContext{Identity: &domain.Identity{Subject: adminSubject}}
}

func asUser() *auth.RequestContext {
	return &auth.RequestContext{
		Identity: &domain.Identity{Subject: userSubject},
		User:     &domain.User{ID: "u-1", Auth0ID: userSubject},
	}
}

func strPtr(s string) *string { return &s }

// MockSongStore is a testify mock of SongStore.
type MockSongStore struct {
	mock.Mock
}

func (m *MockSongStore) List(ctx context.Context, f domain.SongFilter) ([]*domain.Song, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Song), args.Error(1)
}

func (m *MockSongStore) FindByID(ctx context.Context, id string) (*domain.Song, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Song), args.Error(1)
}

func (m *MockSongStore) FindByIDs(ctx context.Context, ids []string, f domain.SongFilter) (map[string]*domain.Song, error) {
	args := m.Called(ctx, ids, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.Song), args.Error(1)
}

func (m *MockSongStore) Create(ctx context.Context, s *domain.Song) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSongStore) BulkCreate(ctx context.Context, songs []*domain.Song) error {
	args := m.Called(ctx, songs)
	return args.Error(0)
}

func (m *MockSongStore) Update(ctx context.Context, s *domain.Song) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSongStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAlbumStore is a testify mock of AlbumStore.
type MockAlbumStore struct {
	mock.Mock
}

func (m *MockAlbumStore) List(ctx context.Context, f domain.SongFilter) ([]*domain.Album, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Album), args.Error(1)
}

func (m *MockAlbumStore) FindByID(ctx context.Context, id string) (*domain.Album, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Album), args.Error(1)
}

func (m *MockAlbumStore) Create(ctx context.Context, a *domain.Album) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAlbumStore) Update(ctx context.Context, a *domain.Album) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAlbumStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPlaylistStore is a testify mock of PlaylistStore.
type MockPlaylistStore struct {
	mock.Mock
}

func (m *MockPlaylistStore) ListByOwner(ctx context.Context, owner string) ([]*domain.Playlist, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Playlist), args.Error(1)
}

func (m *MockPlaylistStore) FindByID(ctx context.Context, id string) (*domain.Playlist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Playlist), args.Error(1)
}

func (m *MockPlaylistStore) Create(ctx context.Context, p *domain.Playlist) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPlaylistStore) Update(ctx context.Context, p *domain.Playlist) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPlaylistStore) AppendSong(ctx context.Context, id, songID string) (*domain.Playlist, error) {
	args := m.Called(ctx, id, songID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Playlist), args.Error(1)
}

func (m *MockPlaylistStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserStore is a testify mock of UserStore.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) FindBySubject(ctx context.Context, subject string) (*domain.User, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserStore) DeleteWithPlaylists(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// MockPresigner is a testify mock of storage.Presigner.
type MockPresigner struct {
	mock.Mock
}

func (m *MockPresigner) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, ttl)
	return args.String(0), args.Error(1)
}

// MockMailer is a testify mock of mail.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg *mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
