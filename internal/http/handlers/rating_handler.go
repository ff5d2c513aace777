// Rating endpoints:
//   - POST /ratings                    (rate or re-rate a target)
//   - GET  /ratings?target=<id>        (list, optionally per target)
//   - GET  /ratings/:target/stats      (aggregate for one target)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RateRequest is the JSON payload for leaving a rating. Rating the same
// target twice as the same rater replaces the earlier score.
type RateRequest struct {
	TargetID string `json:"targetId" binding:"required"`
	Rating   int    `json:"rating" binding:"required"`
	Comment  string `json:"comment"`
	Rater    string `json:"rater"`
}

// RateTarget stores a 1..5 star rating for a target.
func (h *Handlers) RateTarget(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "targetId and rating are required")
		return
	}

	if !h.ratings.Rate(req.TargetID, req.Rating, req.Comment, req.Rater) {
		// The service reports false both for out-of-range ratings and for
		// rejected writes; the range case is by far the common one.
		fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, "rating must be between 1 and 5")
		return
	}

	ok(c, http.StatusCreated, gin.H{
		"success": true,
		"average": h.ratings.Average(req.TargetID),
	})
}

// ListRatings returns ratings, filtered to one target when the target query
// parameter is present.
func (h *Handlers) ListRatings(c *gin.Context) {
	if target := c.Query("target"); target != "" {
		ok(c, http.StatusOK, h.ratings.ForTarget(target))
		return
	}
	ok(c, http.StatusOK, h.ratings.All())
}

// RatingStats returns the aggregate (average, total, distribution, latest)
// for one target, or 404 when the target has no ratings.
func (h *Handlers) RatingStats(c *gin.Context) {
	stats := h.ratings.StatsFor(c.Param("target"))
	if stats == nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no ratings for target")
		return
	}
	ok(c, http.StatusOK, stats)
}
