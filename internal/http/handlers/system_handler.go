// Cross-collection endpoints:
//   - GET /stats             (per-status counts + system counters)
//   - GET /search            (case-folded substring search)
//   - GET /filter            (exact-match AND filtering)
//   - GET /activity          (newest-first activity log)
//   - GET /theme, PUT /theme (persisted theme preference)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medunit/go-medic-portal/internal/services"
	"github.com/medunit/go-medic-portal/internal/utils"
)

// maxActivityLimit caps the page size for activity reads.
const maxActivityLimit = 1000

// Stats returns aggregate counts across applications, uploads, and the
// activity log.
func (h *Handlers) Stats(c *gin.Context) {
	stats, err := h.portal.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}

// Search matches q as a case-folded substring over the fixed field set of
// each record type. type is one of applications|uploads|all (default all).
// An empty q matches every record.
func (h *Handlers) Search(c *gin.Context) {
	typ := c.DefaultQuery("type", services.TypeAll)
	switch typ {
	case services.TypeApplications, services.TypeUploads, services.TypeAll:
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "type must be applications, uploads, or all")
		return
	}

	results, err := h.portal.Search(c.Request.Context(), c.Query("q"), typ)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, results)
}

// Filter applies exact-match AND filtering over the query parameters
// (except type), e.g. /filter?type=applications&status=pending. Empty
// values are ignored.
func (h *Handlers) Filter(c *gin.Context) {
	typ := c.DefaultQuery("type", services.TypeApplications)

	filters := map[string]string{}
	for key, vals := range c.Request.URL.Query() {
		if key == "type" || len(vals) == 0 {
			continue
		}
		filters[key] = vals[0]
	}

	switch typ {
	case services.TypeApplications:
		apps, err := h.portal.FilterApplications(c.Request.Context(), filters)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
			return
		}
		ok(c, http.StatusOK, apps)
	case services.TypeUploads:
		uploads, err := h.portal.FilterUploads(c.Request.Context(), filters)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
			return
		}
		ok(c, http.StatusOK, uploads)
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "type must be applications or uploads")
	}
}

// Activity returns the newest-first prefix of the activity log
// (?limit=N, default 50, capped at 1000).
func (h *Handlers) Activity(c *gin.Context) {
	limit := utils.ClampLimit(
		utils.AtoiDefault(c.Query("limit"), services.DefaultActivityLimit),
		services.DefaultActivityLimit,
		maxActivityLimit,
	)
	ok(c, http.StatusOK, h.portal.ActivityLogs(limit))
}

// GetTheme returns the persisted theme preference.
func (h *Handlers) GetTheme(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"theme": h.portal.Theme()})
}

// ThemeRequest is the JSON payload for changing the theme.
type ThemeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

// SetTheme persists the theme preference (dark or light).
func (h *Handlers) SetTheme(c *gin.Context) {
	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "theme is required")
		return
	}
	if err := h.portal.SetTheme(req.Theme); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTheme):
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, "theme must be dark or light")
		case errors.Is(err, services.ErrStorageFailed):
			fail(c, http.StatusServiceUnavailable, ErrCodeStorageFailed, "theme could not be saved")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}
