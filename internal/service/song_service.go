package service

import (
	"context"

	"github.com/belovedzguard/beloved-api/internal/auth"
	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/errors"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

// SongService manages the song catalog.
type SongService struct {
	songs  SongStore
	policy *auth.Policy
	media  Media
	log    logger.Logger
}

// NewSongService creates a song service.
func NewSongService(songs SongStore, policy *auth.Policy, media Media, log logger.Logger) *SongService {
	return &SongService{
		songs:  songs,
		policy: policy,
		media:  media,
		log:    log,
	}
}

// List returns the songs visible to rc, newest first.
func (s *SongService) List(ctx context.Context, rc *auth.RequestContext) ([]*domain.Song, error) {
	if err := s.policy.Authorize(rc, auth.ResourceSong, auth.OpReadList, ""); err != nil {
		return nil, err
	}
	return s.songs.List(ctx, domain.SongFilter{IncludeDrafts: s.policy.DraftsVisible(rc)})
}

// Get returns one song. Drafts look absent to callers who may not see them.
func (s *SongService) Get(ctx context.Context, rc *auth.RequestContext, id string) (*domain.Song, error) {
	if err := s.policy.Authorize(rc, auth.ResourceSong, auth.OpReadOne, ""); err != nil {
		return nil, err
	}
	song, err := s.songs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CheckDraft(rc, song.IsDraft, domain.ErrSongNotFound); err != nil {
		return nil, err
	}
	return song, nil
}

// Create adds a song. Asset URLs the input leaves empty are derived.
func (s *SongService) Create(ctx context.Context, rc *auth.RequestContext, in *domain.SongInput) (*domain.Song, error) {
	if err := s.policy.Authorize(rc, auth.ResourceSong, auth.OpCreate, ""); err != nil {
		return nil, err
	}
	if err := in.ValidateCreate(); err != nil {
		return nil, err
	}

	song := s.newSong(in)
	if err := s.songs.Create(ctx, song); err != nil {
		return nil, err
	}

	s.log.Info("song created",
		logger.String("song_id", song.ID),
		logger.String("title", song.Title),
		logger.Bool("draft", song.IsDraft),
	)
	return song, nil
}

// BulkCreate adds several songs at once. Nothing is stored unless every
// entry is valid.
func (s *SongService) BulkCreate(ctx context.Context, rc *auth.RequestContext, ins []*domain.SongInput) ([]*domain.Song, error) {
	if err := s.policy.Authorize(rc, auth.ResourceSong, auth.OpCreate, ""); err != nil {
		return nil, err
	}
	if len(ins) == 0 {
		return nil, errors.ErrValidationFailed.WithMessage("Songs must be a non-empty array")
	}

	songs := make([]*domain.Song, 0, len(ins))
	for i, in := range ins {
		if in == nil {
			return nil, errors.ErrMissingField.WithMessage("songs[%d]: Title and genre are required", i)
		}
		if err := in.ValidateCreate(); err != nil {
			return nil, errors.ErrMissingField.WithMessage("songs[%d]: Title and genre are required", i)
		}
		songs = append(songs, s.newSong(in))
	}

	if err := s.songs.BulkCreate(ctx, songs); err != nil {
		return nil, err
	}

	s.log.Info("songs created in bulk", logger.Int("count", len(songs)))
	return songs, nil
}

// Update applies a partial update to a song.
func (s *SongService) Update(ctx context.Context, rc *auth.RequestContext, id string, in *domain.SongInput) (*domain.Song, error) {
	if err := s.policy.Authorize(rc, auth.ResourceSong, auth.OpUpdate, ""); err != nil {
		return nil, err
	}
	song, err := s.songs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in.Apply(song)
	if err := s.songs.Update(ctx, song); err != nil {
		return nil, err
	}
	return song, nil
}

// Delete removes a song.
func (s *SongService) Delete(ctx context.Context, rc *auth.RequestContext, id string) error {
	if err := s.policy.Authorize(rc, auth.ResourceSong, auth.OpDelete, ""); err != nil {
		return err
	}
	if err := s.songs.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("song deleted", logger.String("song_id", id))
	return nil
}

// AuthorizeWrite reports whether rc may create or change songs.
func (s *SongService) AuthorizeWrite(_ context.Context, rc *auth.RequestContext, _ string) error {
	return s.policy.Authorize(rc, auth.ResourceSong, auth.OpUpdate, "")
}

func (s *SongService) newSong(in *domain.SongInput) *domain.Song {
	song := &domain.Song{}
	in.Apply(song)
	s.media.FillAssets(song)
	return song
}
