// Membership application endpoints:
//   - POST /applications        (submit)
//   - GET  /applications        (list; ?refresh=1 bypasses the cache)
//
// Handlers are transport-thin: they bind input, delegate to the portal
// service, and translate service errors into HTTP results.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medunit/go-medic-portal/internal/services"
)

// SubmitApplication accepts a membership application and returns the stored
// record together with its human-readable request number.
func (h *Handlers) SubmitApplication(c *gin.Context) {
	var req services.ApplicationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid application payload")
		return
	}

	app, err := h.portal.SubmitApplication(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameRequired):
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, "game username is required")
		case errors.Is(err, services.ErrInvalidUsername):
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, "game username is invalid")
		case errors.Is(err, services.ErrStorageFailed):
			fail(c, http.StatusServiceUnavailable, ErrCodeStorageFailed, "application could not be saved")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusCreated, gin.H{
		"success":       true,
		"requestNumber": app.RequestNumber,
		"data":          app,
	})
}

// ListApplications returns the application collection. Pass refresh=1 to
// bypass the 5-minute cache and read the authoritative collection.
func (h *Handlers) ListApplications(c *gin.Context) {
	force := c.Query("refresh") == "1" || c.Query("refresh") == "true"
	apps, err := h.portal.Applications(c.Request.Context(), force)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, apps)
}
