package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/belovedzguard/beloved-api/internal/service"
	"github.com/belovedzguard/beloved-api/pkg/httputil"
)

// UploadHandler serves POST /api/uploads.
type UploadHandler struct {
	uploads UploadAPI
}

// NewUploadHandler creates an upload handler.
func NewUploadHandler(uploads UploadAPI) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Issue returns a pre-signed upload URL. An unreadable body counts as an
// empty request so that authorization is still answered first.
func (h *UploadHandler) Issue(c *gin.Context) {
	var req service.UploadRequest
	_ = c.ShouldBindJSON(&req)

	ticket, err := h.uploads.Issue(c.Request.Context(), caller(c), &req)
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.OK(c, ticket)
}
