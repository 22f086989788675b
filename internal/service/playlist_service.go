package service

import (
	"context"
	"strings"

	"github.com/belovedzguard/beloved-api/internal/auth"
	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/errors"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

// PlaylistService manages user playlists. A playlist belongs to the subject
// that created it and only that subject may read or change it.
type PlaylistService struct {
	playlists PlaylistStore
	songs     SongStore
	policy    *auth.Policy
	log       logger.Logger
}

// NewPlaylistService creates a playlist service.
func NewPlaylistService(playlists PlaylistStore, songs SongStore, policy *auth.Policy, log logger.Logger) *PlaylistService {
	return &PlaylistService{
		playlists: playlists,
		songs:     songs,
		policy:    policy,
		log:       log,
	}
}

// Create adds a playlist owned by the caller.
func (s *PlaylistService) Create(ctx context.Context, rc *auth.RequestContext, in *domain.PlaylistInput) (*domain.Playlist, error) {
	if err := s.policy.Authorize(rc, auth.ResourcePlaylist, auth.OpCreate, ""); err != nil {
		return nil, err
	}
	if err := in.ValidateCreate(); err != nil {
		return nil, err
	}

	p := &domain.Playlist{Owner: rc.Subject()}
	in.Apply(p)
	if err := s.playlists.Create(ctx, p); err != nil {
		return nil, err
	}

	s.log.Info("playlist created",
		logger.String("playlist_id", p.ID),
		logger.String("owner", p.Owner),
	)
	if err := s.embed(ctx, rc, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns the caller's playlists, newest first.
func (s *PlaylistService) List(ctx context.Context, rc *auth.RequestContext) ([]*domain.Playlist, error) {
	if err := s.policy.Authorize(rc, auth.ResourcePlaylist, auth.OpReadList, ""); err != nil {
		return nil, err
	}
	playlists, err := s.playlists.ListByOwner(ctx, rc.Subject())
	if err != nil {
		return nil, err
	}
	if err := s.embed(ctx, rc, playlists...); err != nil {
		return nil, err
	}
	return playlists, nil
}

// Get returns one of the caller's playlists.
func (s *PlaylistService) Get(ctx context.Context, rc *auth.RequestContext, id string) (*domain.Playlist, error) {
	p, err := s.owned(ctx, rc, id, auth.OpReadOne)
	if err != nil {
		return nil, err
	}
	if err := s.embed(ctx, rc, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies a partial update. The owner can not be changed.
func (s *PlaylistService) Update(ctx context.Context, rc *auth.RequestContext, id string, in *domain.PlaylistInput) (*domain.Playlist, error) {
	p, err := s.owned(ctx, rc, id, auth.OpUpdate)
	if err != nil {
		return nil, err
	}
	if err := in.ValidateUpdate(p); err != nil {
		return nil, err
	}

	in.Apply(p)
	if err := s.playlists.Update(ctx, p); err != nil {
		return nil, err
	}
	if err := s.embed(ctx, rc, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes one of the caller's playlists.
func (s *PlaylistService) Delete(ctx context.Context, rc *auth.RequestContext, id string) error {
	if _, err := s.owned(ctx, rc, id, auth.OpDelete); err != nil {
		return err
	}
	if err := s.playlists.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("playlist deleted",
		logger.String("playlist_id", id),
		logger.String("owner", rc.Subject()),
	)
	return nil
}

// AddSong appends a song to one of the caller's playlists. The song must
// be visible to the caller; adding it twice lists it twice.
func (s *PlaylistService) AddSong(ctx context.Context, rc *auth.RequestContext, id string, in *domain.AddSongInput) (*domain.Playlist, error) {
	if err := s.policy.RequireAuthenticated(rc); err != nil {
		return nil, err
	}
	songID := strings.TrimSpace(in.SongID)
	if songID == "" {
		return nil, errors.ErrMissingField.WithMessage("songId is required")
	}

	if _, err := s.owned(ctx, rc, id, auth.OpUpdate); err != nil {
		return nil, err
	}

	song, err := s.songs.FindByID(ctx, songID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckDraft(rc, song.IsDraft, domain.ErrSongNotFound); err != nil {
		return nil, err
	}

	p, err := s.playlists.AppendSong(ctx, id, song.ID)
	if err != nil {
		return nil, err
	}
	if err := s.embed(ctx, rc, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PublicGet returns any playlist by id for anonymous viewing. The owner is
// left out and draft songs are hidden.
func (s *PlaylistService) PublicGet(ctx context.Context, id string) (*domain.Playlist, error) {
	p, err := s.playlists.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.embed(ctx, auth.Anonymous, p); err != nil {
		return nil, err
	}
	p.Owner = ""
	return p, nil
}

// AuthorizeWrite reports whether rc may change playlist id. An empty id
// asks about creating one.
func (s *PlaylistService) AuthorizeWrite(ctx context.Context, rc *auth.RequestContext, id string) error {
	if id == "" {
		return s.policy.Authorize(rc, auth.ResourcePlaylist, auth.OpCreate, "")
	}
	_, err := s.owned(ctx, rc, id, auth.OpUpdate)
	return err
}

// owned loads a playlist and checks that rc may perform op on it.
// Anonymous callers are rejected before the lookup.
func (s *PlaylistService) owned(ctx context.Context, rc *auth.RequestContext, id string, op auth.Operation) (*domain.Playlist, error) {
	if err := s.policy.RequireAuthenticated(rc); err != nil {
		return nil, err
	}
	p, err := s.playlists.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(rc, auth.ResourcePlaylist, op, p.Owner); err != nil {
		s.log.Warn("playlist access denied",
			logger.String("playlist_id", id),
			logger.String("subject", rc.Subject()),
		)
		return nil, err
	}
	return p, nil
}

func (s *PlaylistService) embed(ctx context.Context, rc *auth.RequestContext, playlists ...*domain.Playlist) error {
	lists := make([][]string, len(playlists))
	for i, p := range playlists {
		lists[i] = p.SongIDs
	}
	f := domain.SongFilter{IncludeDrafts: s.policy.DraftsVisible(rc)}
	resolved, err := embedSongs(ctx, s.songs, f, lists...)
	if err != nil {
		return err
	}
	for i, p := range playlists {
		p.Songs = resolved[i]
	}
	return nil
}
