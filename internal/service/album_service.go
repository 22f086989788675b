package service

import (
	"context"

	"github.com/belovedzguard/beloved-api/internal/auth"
	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

// AlbumService manages albums. Albums are returned with their songs
// embedded, filtered the same way song reads are.
type AlbumService struct {
	albums AlbumStore
	songs  SongStore
	policy *auth.Policy
	log    logger.Logger
}

// NewAlbumService creates an album service.
func NewAlbumService(albums AlbumStore, songs SongStore, policy *auth.Policy, log logger.Logger) *AlbumService {
	return &AlbumService{
		albums: albums,
		songs:  songs,
		policy: policy,
		log:    log,
	}
}

// List returns the albums visible to rc, oldest first.
func (s *AlbumService) List(ctx context.Context, rc *auth.RequestContext) ([]*domain.Album, error) {
	if err := s.policy.Authorize(rc, auth.ResourceAlbum, auth.OpReadList, ""); err != nil {
		return nil, err
	}
	f := s.filter(rc)
	albums, err := s.albums.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.embed(ctx, f, albums...); err != nil {
		return nil, err
	}
	return albums, nil
}

// Get returns one album. Drafts look absent to callers who may not see them.
func (s *AlbumService) Get(ctx context.Context, rc *auth.RequestContext, id string) (*domain.Album, error) {
	if err := s.policy.Authorize(rc, auth.ResourceAlbum, auth.OpReadOne, ""); err != nil {
		return nil, err
	}
	album, err := s.albums.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckDraft(rc, album.IsDraft, domain.ErrAlbumNotFound); err != nil {
		return nil, err
	}
	if err := s.embed(ctx, s.filter(rc), album); err != nil {
		return nil, err
	}
	return album, nil
}

// Create adds an album.
func (s *AlbumService) Create(ctx context.Context, rc *auth.RequestContext, in *domain.AlbumInput) (*domain.Album, error) {
	if err := s.policy.Authorize(rc, auth.ResourceAlbum, auth.OpCreate, ""); err != nil {
		return nil, err
	}
	if err := in.ValidateCreate(); err != nil {
		return nil, err
	}

	album := &domain.Album{}
	in.Apply(album)
	if err := s.albums.Create(ctx, album); err != nil {
		return nil, err
	}

	s.log.Info("album created",
		logger.String("album_id", album.ID),
		logger.String("title", album.Title),
		logger.Int("songs", len(album.SongIDs)),
	)
	if err := s.embed(ctx, s.filter(rc), album); err != nil {
		return nil, err
	}
	return album, nil
}

// Update applies a partial update to an album.
func (s *AlbumService) Update(ctx context.Context, rc *auth.RequestContext, id string, in *domain.AlbumInput) (*domain.Album, error) {
	if err := s.policy.Authorize(rc, auth.ResourceAlbum, auth.OpUpdate, ""); err != nil {
		return nil, err
	}
	album, err := s.albums.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in.Apply(album)
	if err := s.albums.Update(ctx, album); err != nil {
		return nil, err
	}
	if err := s.embed(ctx, s.filter(rc), album); err != nil {
		return nil, err
	}
	return album, nil
}

// Delete removes an album. Its songs are kept.
func (s *AlbumService) Delete(ctx context.Context, rc *auth.RequestContext, id string) error {
	if err := s.policy.Authorize(rc, auth.ResourceAlbum, auth.OpDelete, ""); err != nil {
		return err
	}
	if err := s.albums.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("album deleted", logger.String("album_id", id))
	return nil
}

// AuthorizeWrite reports whether rc may create or change albums.
func (s *AlbumService) AuthorizeWrite(_ context.Context, rc *auth.RequestContext, _ string) error {
	return s.policy.Authorize(rc, auth.ResourceAlbum, auth.OpUpdate, "")
}

func (s *AlbumService) filter(rc *auth.RequestContext) domain.SongFilter {
	return domain.SongFilter{IncludeDrafts: s.policy.DraftsVisible(rc)}
}

func (s *AlbumService) embed(ctx context.Context, f domain.SongFilter, albums ...*domain.Album) error {
	lists := make([][]string, len(albums))
	for i, a := range albums {
		lists[i] = a.SongIDs
	}
	resolved, err := embedSongs(ctx, s.songs, f, lists...)
	if err != nil {
		return err
	}
	for i, a := range albums {
		a.Songs = resolved[i]
	}
	return nil
}
