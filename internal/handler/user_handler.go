package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/belovedzguard/beloved-api/internal/domain"
	"github.com/belovedzguard/beloved-api/pkg/httputil"
)

// UserHandler serves the caller's own profile under /api/users.
type UserHandler struct {
	users UserAPI
}

// NewUserHandler creates a user handler.
func NewUserHandler(users UserAPI) *UserHandler {
	return &UserHandler{users: users}
}

// Me returns the caller's profile.
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.users.Me(c.Request.Context(), caller(c))
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.OK(c, u)
}

// Update changes the caller's profile.
func (h *UserHandler) Update(c *gin.Context) {
	var in domain.UserInput
	if err := httputil.BindJSON(c, &in); err != nil {
		httputil.ErrorResponse(c, err)
		return
	}

	u, err := h.users.Update(c.Request.Context(), caller(c), &in)
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.OK(c, u)
}

// Delete removes the caller's account and playlists.
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := h.users.Delete(c.Request.Context(), caller(c))
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.Message(c, fmt.Sprintf("User %s deleted", id))
}
