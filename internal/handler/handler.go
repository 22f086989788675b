// Package handler exposes the catalog over HTTP with gin.
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/belovedzguard/beloved-api/internal/auth"
	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/internal/middleware"
	"github.com/belovedzguard/beloved-api/internal/service"
	"github.com/belovedzguard/beloved-api/pkg/httputil"
)

// SongAPI is the song service as seen by the handlers.
type SongAPI interface {
	List(ctx context.Context, rc *auth.RequestContext) ([]*domain.Song, error)
	Get(ctx context.Context, rc *auth.RequestContext, id string) (*domain.Song, error)
	Create(ctx context.Context, rc *auth.RequestContext, in *domain.SongInput) (*domain.Song, error)
	BulkCreate(ctx context.Context, rc *auth.RequestContext, ins []*domain.SongInput) ([]*domain.Song, error)
	Update(ctx context.Context, rc *auth.RequestContext, id string, in *domain.SongInput) (*domain.Song, error)
	Delete(ctx context.Context, rc *auth.RequestContext, id string) error
	AuthorizeWrite(ctx context.Context, rc *auth.RequestContext, id string) error
}

// AlbumAPI is the album service as seen by the handlers.
type AlbumAPI interface {
	List(ctx context.Context, rc *auth.RequestContext) ([]*domain.Album, error)
	Get(ctx context.Context, rc *auth.RequestContext, id string) (*domain.Album, error)
	Create(ctx context.Context, rc *auth.RequestContext, in *domain.AlbumInput) (*domain.Album, error)
	Update(ctx context.Context, rc *auth.RequestContext, id string, in *domain.AlbumInput) (*domain.Album, error)
	Delete(ctx context.Context, rc *auth.RequestContext, id string) error
	AuthorizeWrite(ctx context.Context, rc *auth.RequestContext, id string) error
}

// PlaylistAPI is the playlist service as seen by the handlers.
type PlaylistAPI interface {
	Create(ctx context.Context, rc *auth.RequestContext, in *domain.PlaylistInput) (*domain.Playlist, error)
	List(ctx context.Context, rc *auth.RequestContext) ([]*domain.Playlist, error)
	Get(ctx context.Context, rc *auth.RequestContext, id string) (*domain.Playlist, error)
	Update(ctx context.Context, rc *auth.RequestContext, id string, in *domain.PlaylistInput) (*domain.Playlist, error)
	Delete(ctx context.Context, rc *auth.RequestContext, id string) error
	AddSong(ctx context.Context, rc *auth.RequestContext, id string, in *domain.AddSongInput) (*domain.Playlist, error)
	PublicGet(ctx context.Context, id string) (*domain.Playlist, error)
	AuthorizeWrite(ctx context.Context, rc *auth.RequestContext, id string) error
}

// UserAPI is the profile service as seen by the handlers.
type UserAPI interface {
	Me(ctx context.Context, rc *auth.RequestContext) (*domain.User, error)
	Update(ctx context.Context, rc *auth.RequestContext, in *domain.UserInput) (*domain.User, error)
	Delete(ctx context.Context, rc *auth.RequestContext) (string, error)
}

// UploadAPI issues upload URLs.
type UploadAPI interface {
	Issue(ctx context.Context, rc *auth.RequestContext, req *service.UploadRequest) (*service.UploadTicket, error)
}

// ContactAPI relays contact form messages.
type ContactAPI interface {
	Submit(ctx context.Context, form *service.ContactForm) (*service.ContactResult, error)
}

func caller(c *gin.Context) *auth.RequestContext {
	return middleware.RequestContext(c)
}

// writeGate is the authorization half of a mutating call.
type writeGate interface {
	AuthorizeWrite(ctx context.Context, rc *auth.RequestContext, id string) error
}

// bindWrite decodes the body of a mutating request into obj. A body that
// does not decode is reported only once the caller is allowed to write id,
// so a 401 or 403 always comes before a 400.
func bindWrite(c *gin.Context, gate writeGate, id string, obj interface{}) error {
	err := httputil.BindJSON(c, obj)
	if err == nil {
		return nil
	}
	if authErr := gate.AuthorizeWrite(c.Request.Context(), caller(c), id); authErr != nil {
		return authErr
	}
	return err
}
