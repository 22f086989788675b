package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/belovedzguard/beloved-api/internal/service"
	"github.com/belovedzguard/beloved-api/pkg/httputil"
)

// ContactHandler serves POST /api/public/contact.
type ContactHandler struct {
	contact ContactAPI
}

// NewContactHandler creates a contact handler.
func NewContactHandler(contact ContactAPI) *ContactHandler {
	return &ContactHandler{contact: contact}
}

// Submit relays the form. A body that is not a JSON object is treated as an
// empty form.
func (h *ContactHandler) Submit(c *gin.Context) {
	var form service.ContactForm
	_ = c.ShouldBindJSON(&form)

	res, err := h.contact.Submit(c.Request.Context(), &form)
	if err != nil {
		httputil.ErrorResponse(c, err)
		return
	}
	httputil.OK(c, res)
}
