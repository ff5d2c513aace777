// Gallery upload request endpoints:
//   - POST /uploads  (submit)
//   - GET  /uploads  (list, cached)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medunit/go-medic-portal/internal/services"
)

// SubmitUpload accepts a gallery upload request and returns the stored
// record.
func (h *Handlers) SubmitUpload(c *gin.Context) {
	var req services.UploadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid upload payload")
		return
	}

	up, err := h.portal.SubmitUpload(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUploadInvalid):
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, "upload name and description are required")
		case errors.Is(err, services.ErrStorageFailed):
			fail(c, http.StatusServiceUnavailable, ErrCodeStorageFailed, "upload could not be saved")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusCreated, gin.H{
		"success": true,
		"data":    up,
	})
}

// ListUploads returns the upload collection through the cache.
func (h *Handlers) ListUploads(c *gin.Context) {
	uploads, err := h.portal.Uploads(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, uploads)
}
