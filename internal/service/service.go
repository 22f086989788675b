// Package service implements the catalog operations. Every operation asks
// the authorization policy first and then delegates to a store.
package service

import (
	"context"

	"github.com/belovedzguard/beloved-api/internal/asset"
	"github.com/belovedzguard/beloved-api/internal/domain"
)

// SongStore persists songs.
type SongStore interface {
	List(ctx context.Context, f domain.SongFilter) ([]*domain.Song, error)
	FindByID(ctx context.Context, id string) (*domain.Song, error)
	FindByIDs(ctx context.Context, ids []string, f domain.SongFilter) (map[string]*domain.Song, error)
	Create(ctx context.Context, s *domain.Song) error
	BulkCreate(ctx context.Context, songs []*domain.Song) error
	Update(ctx context.Context, s *domain.Song) error
	Delete(ctx context.Context, id string) error
}

// AlbumStore persists albums.
type AlbumStore interface {
	List(ctx context.Context, f domain.SongFilter) ([]*domain.Album, error)
	FindByID(ctx context.Context, id string) (*domain.Album, error)
	Create(ctx context.Context, a *domain.Album) error
	Update(ctx context.Context, a *domain.Album) error
	Delete(ctx context.Context, id string) error
}

// PlaylistStore persists playlists.
type PlaylistStore interface {
	ListByOwner(ctx context.Context, owner string) ([]*domain.Playlist, error)
	FindByID(ctx context.Context, id string) (*domain.Playlist, error)
	Create(ctx context.Context, p *domain.Playlist) error
	Update(ctx context.Context, p *domain.Playlist) error
	AppendSong(ctx context.Context, id, songID string) (*domain.Playlist, error)
	Delete(ctx context.Context, id string) error
}

// UserStore persists user profiles.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindBySubject(ctx context.Context, subject string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	DeleteWithPlaylists(ctx context.Context, u *domain.User) error
}

// Media holds the base URLs derived asset URLs are built from.
type Media struct {
	// BaseURL serves canonical, title-derived asset paths.
	BaseURL string
	// PublicBaseURL serves uploaded objects by key. BaseURL is used when
	// it is empty.
	PublicBaseURL string
}

func (m Media) publicBase() string {
	if m.PublicBaseURL != "" {
		return m.PublicBaseURL
	}
	return m.BaseURL
}

// FillAssets sets every empty asset URL of s: from its storage key when one
// was given, otherwise from the canonical title-derived path.
func (m Media) FillAssets(s *domain.Song) {
	for _, k := range asset.Kinds() {
		spec, _ := asset.Lookup(k)
		url, key := s.AssetRefs(spec.Field)
		if url == nil || *url != "" {
			continue
		}
		if *key != "" {
			*url = asset.JoinURL(m.publicBase(), *key)
			continue
		}
		*url = asset.CanonicalURL(m.BaseURL, k, s.Title)
	}
}

// resolveSongs returns the songs named by ids in order. Ids that are
// missing or hidden by f are dropped; repeated ids repeat the song.
func resolveSongs(ids []string, found map[string]*domain.Song) []domain.Song {
	out := make([]domain.Song, 0, len(ids))
	for _, id := range ids {
		if s, ok := found[id]; ok {
			out = append(out, *s)
		}
	}
	return out
}

// embedSongs loads the songs referenced by every list in one query and
// returns them per list.
func embedSongs(ctx context.Context, songs SongStore, f domain.SongFilter, lists ...[]string) ([][]domain.Song, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, list := range lists {
		for _, id := range list {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	found := map[string]*domain.Song{}
	if len(ids) > 0 {
		var err error
		found, err = songs.FindByIDs(ctx, ids, f)
		if err != nil {
			return nil, err
		}
	}

	out := make([][]domain.Song, len(lists))
	for i, list := range lists {
		out[i] = resolveSongs(list, found)
	}
	return out, nil
}
