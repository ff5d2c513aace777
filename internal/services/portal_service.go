// Package services – PortalService
//
// This file implements the data-access façade over the expiring key-value
// store: membership applications and gallery uploads (submit, cached reads,
// search, filter, aggregate statistics), the capped activity log, and the
// theme preference. The façade is the only writer of the application and
// upload collections and owns their cache invalidation: every successful
// write removes the shadowing cache entry before returning, so the next read
// reflects the write without a force refresh.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medunit/go-medic-portal/internal/domain"
	"github.com/medunit/go-medic-portal/internal/repo"
	"github.com/medunit/go-medic-portal/internal/search"
	"github.com/medunit/go-medic-portal/internal/store"
)

// Store-owned keys used by the façade. The cache entries shadow the
// authoritative collections in internal/repo and carry a short TTL.
const (
	cacheKeyApplications = "applications"
	cacheKeyUploads      = "uploads"
	keyActivityLog       = "activity_logs"
)

// Defaults applied when the corresponding PortalService field is zero.
const (
	DefaultCacheTTL      = 5 * time.Minute
	DefaultActivityTTL   = 30 * 24 * time.Hour
	DefaultActivityCap   = 1000
	DefaultActivityLimit = 50
)

// Themes supported by the UI collaborator. Only the preference is persisted
// here; applying CSS is the caller's concern.
var Themes = []string{"dark", "light"}

// PortalService is the domain data-access façade. Collection reads go
// through the expiring store's cache; on a miss the authoritative collection
// is loaded and the cache repopulated with CacheTTL.
//
// All collection operations accept a context: today they resolve from local
// storage, but the signatures already model the network boundary a remote
// data source would introduce.
type PortalService struct {
	// Backend holds the authoritative collections (raw JSON arrays).
	Backend store.Backend
	// Store holds the envelope-wrapped cache and log entries.
	Store *store.Store

	// CacheTTL bounds the staleness of the applications/uploads caches.
	CacheTTL time.Duration
	// ActivityTTL is the expiry of the activity log entry as a whole.
	ActivityTTL time.Duration
	// ActivityCap bounds the number of retained log entries.
	ActivityCap int

	// UsernamePattern optionally restricts GameUsername beyond "non-empty";
	// wired from settings (forms.validation.gameUsername.pattern).
	UsernamePattern *regexp.Regexp

	// now is a clock seam for tests; defaults to time.Now.
	now func() time.Time
}

// NewPortalService constructs a façade over backend and st with default
// cache and activity-log policies.
func NewPortalService(backend store.Backend, st *store.Store) *PortalService {
	return &PortalService{
		Backend:     backend,
		Store:       st,
		CacheTTL:    DefaultCacheTTL,
		ActivityTTL: DefaultActivityTTL,
		ActivityCap: DefaultActivityCap,
		now:         time.Now,
	}
}

func (s *PortalService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *PortalService) cacheTTL() time.Duration {
	if s.CacheTTL > 0 {
		return s.CacheTTL
	}
	return DefaultCacheTTL
}

// Applications returns the application collection, serving the cached copy
// unless forceRefresh is set or the cache has expired. A corrupt or missing
// authoritative payload degrades to the empty collection.
func (s *PortalService) Applications(ctx context.Context, forceRefresh bool) ([]domain.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var cached []domain.Application
	if !forceRefresh && s.Store.Get(cacheKeyApplications, &cached) {
		return cached, nil
	}
	apps := repo.LoadApplications(s.Backend)
	s.Store.Set(cacheKeyApplications, apps, s.cacheTTL())
	return apps, nil
}

// Uploads returns the upload collection through the same caching pattern as
// Applications; no force-refresh variant is exposed.
func (s *PortalService) Uploads(ctx context.Context) ([]domain.Upload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var cached []domain.Upload
	if s.Store.Get(cacheKeyUploads, &cached) {
		return cached, nil
	}
	uploads := repo.LoadUploads(s.Backend)
	s.Store.Set(cacheKeyUploads, uploads, s.cacheTTL())
	return uploads, nil
}

// ApplicationInput is the caller-supplied portion of a membership request.
type ApplicationInput struct {
	GameUsername string `json:"gameUsername"`
	DiscordID    string `json:"discordId"`
	Experience   string `json:"experience"`
	PlayTime     string `json:"playTime"`
	WhyJoin      string `json:"whyJoin"`
}

// SubmitApplication validates and appends a membership application to the
// authoritative collection, invalidates the applications cache, and records
// one activity-log entry.
//
// Errors:
//   - ErrUsernameRequired when GameUsername is empty after trimming.
//   - ErrInvalidUsername when a configured pattern rejects the username.
//   - ErrStorageFailed when the collection write is rejected; in that case
//     nothing is appended, the cache is untouched, and no activity is logged.
func (s *PortalService) SubmitApplication(ctx context.Context, in ApplicationInput) (*domain.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(in.GameUsername)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if s.UsernamePattern != nil && !s.UsernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}

	now := s.clock()
	app := domain.Application{
		ID:            domain.NewRecordID(now),
		RequestNumber: domain.NewReferenceNumber("MED", now),
		GameUsername:  username,
		DiscordID:     strings.TrimSpace(in.DiscordID),
		Experience:    in.Experience,
		PlayTime:      in.PlayTime,
		WhyJoin:       in.WhyJoin,
		Timestamp:     now.UTC(),
		Status:        domain.StatusPending,
	}

	apps := repo.LoadApplications(s.Backend)
	apps = append(apps, app)
	if err := repo.SaveApplications(s.Backend, apps); err != nil {
		log.Error().Err(err).Msg("application submission not persisted")
		return nil, ErrStorageFailed
	}

	s.Store.Remove(cacheKeyApplications)
	s.LogActivity("application_submit", map[string]any{
		"id":            app.ID,
		"requestNumber": app.RequestNumber,
		"gameUsername":  app.GameUsername,
	})
	return &app, nil
}

// UploadInput is the caller-supplied portion of a gallery upload request.
type UploadInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// SubmitUpload validates and appends an upload request, invalidates the
// uploads cache, and records one activity-log entry. Name and description
// are both required (ErrUploadInvalid).
func (s *PortalService) SubmitUpload(ctx context.Context, in UploadInput) (*domain.Upload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, ErrUploadInvalid
	}

	now := s.clock()
	up := domain.Upload{
		ID:           domain.NewRecordID(now),
		UploadNumber: domain.NewReferenceNumber("UPL", now),
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Category:     in.Category,
		Date:         now.UTC(),
		Status:       domain.StatusPending,
	}

	uploads := repo.LoadUploads(s.Backend)
	uploads = append(uploads, up)
	if err := repo.SaveUploads(s.Backend, uploads); err != nil {
		log.Error().Err(err).Msg("upload submission not persisted")
		return nil, ErrStorageFailed
	}

	s.Store.Remove(cacheKeyUploads)
	s.LogActivity("upload_submit", map[string]any{
		"id":           up.ID,
		"uploadNumber": up.UploadNumber,
		"name":         up.Name,
	})
	return &up, nil
}

// LogActivity prepends one entry to the activity log, drops the oldest entry
// beyond the cap, and rewrites the log with its fixed 30-day TTL. Logging is
// best-effort: a rejected write is noted and swallowed.
func (s *PortalService) LogActivity(action string, data map[string]any) {
	max := s.ActivityCap
	if max <= 0 {
		max = DefaultActivityCap
	}
	ttl := s.ActivityTTL
	if ttl <= 0 {
		ttl = DefaultActivityTTL
	}

	logs := []domain.ActivityEntry{}
	s.Store.Get(keyActivityLog, &logs)

	now := s.clock()
	entry := domain.ActivityEntry{
		ID:        domain.NewRecordID(now),
		Timestamp: now.UTC(),
		Action:    action,
		Data:      data,
	}
	logs = append([]domain.ActivityEntry{entry}, logs...)
	if len(logs) > max {
		logs = logs[:max]
	}
	if !s.Store.Set(keyActivityLog, logs, ttl) {
		log.Warn().Str("action", action).Msg("activity entry not persisted")
	}
}

// ActivityLogs returns the newest-first prefix of the activity log. A
// non-positive limit selects the default of 50.
func (s *PortalService) ActivityLogs(limit int) []domain.ActivityEntry {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	logs := []domain.ActivityEntry{}
	s.Store.Get(keyActivityLog, &logs)
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs
}

// StatusCounts partitions a collection by review status.
type StatusCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// SystemCounts summarizes the data layer itself.
type SystemCounts struct {
	LogsCount    int         `json:"logsCount"`
	Storage      store.Stats `json:"storage"`
	LastActivity *time.Time  `json:"lastActivity,omitempty"`
}

// PortalStats is the aggregate returned by Stats.
type PortalStats struct {
	Applications StatusCounts `json:"applications"`
	Uploads      StatusCounts `json:"uploads"`
	System       SystemCounts `json:"system"`
}

// Stats computes per-status counts over both collections plus system-level
// counters. It reads the authoritative collections directly so that a stats
// call never mutates or repopulates a cache.
func (s *PortalService) Stats(ctx context.Context) (*PortalStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stats := &PortalStats{}

	for _, app := range repo.LoadApplications(s.Backend) {
		countStatus(&stats.Applications, app.Status)
	}
	for _, up := range repo.LoadUploads(s.Backend) {
		countStatus(&stats.Uploads, up.Status)
	}

	logs := s.ActivityLogs(DefaultActivityLimit)
	stats.System.LogsCount = len(logs)
	stats.System.Storage = s.Store.StorageStats()
	if len(logs) > 0 {
		ts := logs[0].Timestamp
		stats.System.LastActivity = &ts
	}
	return stats, nil
}

func countStatus(c *StatusCounts, status string) {
	c.Total++
	switch status {
	case domain.StatusPending:
		c.Pending++
	case domain.StatusApproved:
		c.Approved++
	case domain.StatusRejected:
		c.Rejected++
	}
}

// SearchResult pairs a matched record with its collection type
// ("application" or "upload").
type SearchResult struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Search types accepted by Search and Filter.
const (
	TypeApplications = "applications"
	TypeUploads      = "uploads"
	TypeAll          = "all"
)

// Search performs a case-folded substring match over a fixed field set per
// record type: gameUsername/discordId/whyJoin/status for applications,
// name/description/category for uploads. An empty query matches every
// record. Reads go through the caches like any other collection read.
func (s *PortalService) Search(ctx context.Context, query, typ string) ([]SearchResult, error) {
	results := []SearchResult{}

	if typ == TypeApplications || typ == TypeAll || typ == "" {
		apps, err := s.Applications(ctx, false)
		if err != nil {
			return nil, err
		}
		for _, app := range apps {
			if search.ContainsAny(query, app.GameUsername, app.DiscordID, app.WhyJoin, app.Status) {
				results = append(results, SearchResult{Type: "application", Data: app})
			}
		}
	}

	if typ == TypeUploads || typ == TypeAll || typ == "" {
		uploads, err := s.Uploads(ctx)
		if err != nil {
			return nil, err
		}
		for _, up := range uploads {
			if search.ContainsAny(query, up.Name, up.Description, up.Category) {
				results = append(results, SearchResult{Type: "upload", Data: up})
			}
		}
	}

	return results, nil
}

// FilterApplications returns the applications whose JSON fields exactly
// match every non-empty filter value (AND semantics). Empty filter values
// are ignored, mirroring the behavior of unset form controls.
func (s *PortalService) FilterApplications(ctx context.Context, filters map[string]string) ([]domain.Application, error) {
	apps, err := s.Applications(ctx, false)
	if err != nil {
		return nil, err
	}
	out := []domain.Application{}
	for _, app := range apps {
		if matchesFilters(app, filters) {
			out = append(out, app)
		}
	}
	return out, nil
}

// FilterUploads is the upload-collection counterpart of FilterApplications.
func (s *PortalService) FilterUploads(ctx context.Context, filters map[string]string) ([]domain.Upload, error) {
	uploads, err := s.Uploads(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Upload{}
	for _, up := range uploads {
		if matchesFilters(up, filters) {
			out = append(out, up)
		}
	}
	return out, nil
}

// matchesFilters compares filter values against the record's JSON view, so
// filter keys use the same field names the API exposes ("status",
// "gameUsername", "category", ...).
func matchesFilters(record any, filters map[string]string) bool {
	raw, err := json.Marshal(record)
	if err != nil {
		return false
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}
	for key, want := range filters {
		if want == "" {
			continue
		}
		got, ok := fields[key]
		if !ok || fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

// Theme returns the persisted theme preference, defaulting to "dark" when
// none has been chosen yet.
func (s *PortalService) Theme() string {
	if t := repo.LoadTheme(s.Backend); t != "" {
		return t
	}
	return Themes[0]
}

// SetTheme persists the theme preference. Values outside the fixed set are
// rejected with ErrInvalidTheme.
func (s *PortalService) SetTheme(theme string) error {
	valid := false
	for _, t := range Themes {
		if t == theme {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidTheme
	}
	if err := repo.SaveTheme(s.Backend, theme); err != nil {
		return ErrStorageFailed
	}
	return nil
}
