package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/belovedzguard/beloved-api/internal/auth"
	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/httputil"
)

// SongHandler serves /api/songs and the public song reads.
type SongHandler struct {
	songs SongAPI
}

// NewSongHandler creates a song handler.
func NewSongHandler(songs SongAPI) *SongHandler {
	return &SongHandler{songs: songs}
}

// List returns every song the caller may see, newest first.
func (h *SongHandler) List(c *gin.Context) {
	h.list(c, caller(c))
}

// PublicList returns the released songs.
func (h *SongHandler) PublicList(c *gin.Context) {
	h.list(c, auth.Anonymous)
}

func (h *SongHandler) list(c *gin.Context, rc *auth.RequestContext) {
	songs, err := h.songs.List(c.Request.Context(), rc)
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.OK(c, songs)
}

// Get returns one song.
func (h *SongHandler) Get(c *gin.Context) {
	h.get(c, caller(c))
}

// PublicGet returns one released song.
func (h *SongHandler) PublicGet(c *gin.Context) {
	h.get(c, auth.Anonymous)
}

func (h *SongHandler) get(c *gin.Context, rc *auth.RequestContext) {
	song, err := h.songs.Get(c.Request.Context(), rc, c.Param("id"))
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.OK(c, song)
}

// Create adds a song.
func (h *SongHandler) Create(c *gin.Context) {
	var in domain.SongInput
	if err := bindWrite(c, h.songs, "", &in); err != nil {
		httputil.ErrorResponse(c, err)
		return
	}

	song, err := h.songs.Create(c.Request.Context(), caller(c), &in)
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.Created(c, song)
}

// BulkCreate adds an array of songs in one go.
func (h *SongHandler) BulkCreate(c *gin.Context) {
	var ins []*domain.SongInput
	if err := bindWrite(c, h.songs, "", &ins); err != nil {
		httputil.ErrorResponse(c, err)
		return
	}

	songs, err := h.songs.BulkCreate(c.Request.Context(), caller(c), ins)
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.Created(c, songs)
}

// Update applies a partial update.
func (h *SongHandler) Update(c *gin.Context) {
	var in domain.SongInput
	if err := bindWrite(c, h.songs, c.Param("id"), &in); err != nil {
		httputil.ErrorResponse(c, err)
		return
	}

	song, err := h.songs.Update(c.Request.Context(), caller(c), c.Param("id"), &in)
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.OK(c, song)
}

// Delete removes a song.
func (h *SongHandler) Delete(c *gin.Context) {
	if err := h.songs.Delete(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.Message(c, "Song deleted")
}
