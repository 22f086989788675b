package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/httputil"
)

// PlaylistHandler serves /api/users/playlists and the public playlist read.
type PlaylistHandler struct {
	playlists PlaylistAPI
}

// NewPlaylistHandler creates a playlist handler.
func NewPlaylistHandler(playlists PlaylistAPI) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists}
}

// Create adds a playlist owned by the caller.
func (h *PlaylistHandler) Create(c *gin.Context) {
	var in domain.PlaylistInput
	if err := httputil.BindJSON(c, &in); err != nil {
		httputil.ErrorResponse(c, err)
		return
	}

	p, err := h.playlists.Create(c.Request.Context(), caller(c), &in)
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.Created(c, p)
}

// List returns the caller's playlists.
func (h *PlaylistHandler) List(c *gin.Context) {
	playlists, err := h.playlists.List(c.Request.Context(), caller(c))
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.OK(c, playlists)
}

// Get returns one of the caller's playlists.
func (h *PlaylistHandler) Get(c *gin.Context) {
	p, err := h.playlists.Get(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.OK(c, p)
}

// Update applies a partial update.
func (h *PlaylistHandler) Update(c *gin.Context) {
	var in domain.PlaylistInput
	if err := bindWrite(c, h.playlists, c.Param("id"), &in); err != nil {
		httputil.ErrorResponse(c, err)
		return
	}

	p, err := h.playlists.Update(c.Request.Context(), caller(c), c.Param("id"), &in)
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.OK(c, p)
}

// Delete removes one of the caller's playlists.
func (h *PlaylistHandler) Delete(c *gin.Context) {
	if err := h.playlists.Delete(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.Message(c, "Playlist deleted")
}

// AddSong appends a song.
func (h *PlaylistHandler) AddSong(c *gin.Context) {
	var in domain.AddSongInput
	if err := bindWrite(c, h.playlists, c.Param("id"), &in); err != nil {
		httputil.ErrorResponse(c, err)
		return
	}

	p, err := h.playlists.AddSong(c.Request.Context(), caller(c), c.Param("id"), &in)
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.OK(c, p)
}

// PublicGet returns any playlist without its owner.
func (h *PlaylistHandler) PublicGet(c *gin.Context) {
	p, err := h.playlists.PublicGet(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.OK(c, p)
}
