// Package services – RatingService
//
// This file implements the rating subsystem: star scores (1..5) keyed by the
// composite identity (targetId, rater). A second rating for the same pair
// replaces the first in place, preserving collection order except for the
// replaced element, which keeps "one voice per rater" without growing the
// collection. Aggregates (average, distribution) are derived on read; the
// upsert-by-linear-scan is fine at the data sizes involved (hundreds of
// records).
package services

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medunit/go-medic-portal/internal/domain"
	"github.com/medunit/go-medic-portal/internal/repo"
	"github.com/medunit/go-medic-portal/internal/store"
)

// Rating bounds (inclusive).
const (
	MinRating = 1
	MaxRating = 5
)

// RatingService manages the rating collection.
type RatingService struct {
	Backend store.Backend

	// now is a clock seam for tests; defaults to time.Now.
	now func() time.Time
}

// NewRatingService constructs a RatingService over backend.
func NewRatingService(backend store.Backend) *RatingService {
	return &RatingService{Backend: backend, now: time.Now}
}

func (s *RatingService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Rate records a rating for targetId by rater, replacing any earlier rating
// from the same rater for the same target. It reports false, without
// raising, when rating is outside [1,5] or the write is rejected; rating is
// a best-effort convenience feature and failures must never break the page
// flow that triggered them.
func (s *RatingService) Rate(targetID string, rating int, comment, rater string) bool {
	if rating < MinRating || rating > MaxRating {
		log.Warn().Int("rating", rating).Msg("rating outside 1..5 rejected")
		return false
	}
	if rater == "" {
		rater = "anonymous"
	}

	ratings := repo.LoadRatings(s.Backend)
	record := domain.Rating{
		ID:        domain.NewRecordID(s.clock()),
		TargetID:  targetID,
		Rating:    rating,
		Comment:   comment,
		Rater:     rater,
		Timestamp: s.clock().UTC(),
	}

	replaced := false
	for i := range ratings {
		if ratings[i].TargetID == targetID && ratings[i].Rater == rater {
			ratings[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		ratings = append(ratings, record)
	}

	if err := repo.SaveRatings(s.Backend, ratings); err != nil {
		log.Error().Err(err).Str("target", targetID).Msg("rating not persisted")
		return false
	}
	return true
}

// All returns every rating in stored order.
func (s *RatingService) All() []domain.Rating {
	return repo.LoadRatings(s.Backend)
}

// ForTarget returns the ratings for targetId in stored order.
func (s *RatingService) ForTarget(targetID string) []domain.Rating {
	out := []domain.Rating{}
	for _, r := range repo.LoadRatings(s.Backend) {
		if r.TargetID == targetID {
			out = append(out, r)
		}
	}
	return out
}

// Average returns the mean rating for targetId rounded to one decimal
// place, or 0 when the target has no ratings.
func (s *RatingService) Average(targetID string) float64 {
	ratings := s.ForTarget(targetID)
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(ratings))*10) / 10
}

// RatingStats aggregates the ratings of one target.
type RatingStats struct {
	Average float64 `json:"average"`
	Total   int     `json:"total"`
	// Distribution maps each star value 1..5 to its count; every bucket is
	// present even when zero.
	Distribution map[int]int `json:"distribution"`
	// Latest is the first stored rating for the target, which the upsert
	// discipline keeps pointing at the most recent voice per rater slot.
	Latest domain.Rating `json:"latest"`
}

// StatsFor returns the aggregate for targetId, or nil when the target has
// no ratings.
func (s *RatingService) StatsFor(targetID string) *RatingStats {
	ratings := s.ForTarget(targetID)
	if len(ratings) == 0 {
		return nil
	}

	dist := make(map[int]int, MaxRating)
	for v := MinRating; v <= MaxRating; v++ {
		dist[v] = 0
	}
	for _, r := range ratings {
		dist[r.Rating]++
	}

	return &RatingStats{
		Average:      s.Average(targetID),
		Total:        len(ratings),
		Distribution: dist,
		Latest:       ratings[0],
	}
}
