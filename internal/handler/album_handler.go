package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/belovedzguard/beloved-api/internal/auth"
	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/httputil"
)

// AlbumHandler serves /api/albums and the public album reads.
type AlbumHandler struct {
	albums AlbumAPI
}

// NewAlbumHandler creates an album handler.
func NewAlbumHandler(albums AlbumAPI) *AlbumHandler {
	return &AlbumHandler{albums: albums}
}

func (h *AlbumHandler) List(c *gin.Context)       { h.list(c, caller(c)) }
func (h *AlbumHandler) PublicList(c *gin.Context) { h.list(c, auth.Anonymous) }
func (h *AlbumHandler) Get(c *gin.Context)        { h.get(c, caller(c)) }
func (h *AlbumHandler) PublicGet(c *gin.Context)  { h.get(c, auth.Anonymous) }

func (h *AlbumHandler) list(c *gin.Context, rc *auth.RequestContext) {
	albums, err := h.albums.List(c.Request.Context(), rc)
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.OK(c, albums)
}

func (h *AlbumHandler) get(c *gin.Context, rc *auth.RequestContext) {
	album, err := h.albums.Get(c.Request.Context(), rc, c.Param("id"))
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.OK(c, album)
}

// Create adds an album.
func (h *AlbumHandler) Create(c *gin.Context) {
	var in domain.AlbumInput
	if err := bindWrite(c, h.albums, "", &in); err != nil {
		httputil.ErrorResponse(c, err)
		return
	}

	album, err := h.albums.Create(c.Request.Context(), caller(c), &in)
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.Created(c, album)
}

// Update applies a partial update.
func (h *AlbumHandler) Update(c *gin.Context) {
	var in domain.AlbumInput
	if err := bindWrite(c, h.albums, c.Param("id"), &in); err != nil {
		httputil.ErrorResponse(c, err)
		return
	}

	album, err := h.albums.Update(c.Request.Context(), caller(c), c.Param("id"), &in)
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.OK(c, album)
}

// Delete removes an album.
func (h *AlbumHandler) Delete(c *gin.Context) {
	if err := h.albums.Delete(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.Message(c, "Album deleted")
}
