package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/medunit/go-medic-portal/internal/domain"
	"github.com/medunit/go-medic-portal/internal/repo"
	"github.com/medunit/go-medic-portal/internal/store"
)

func newTestPortal(t *testing.T) (*PortalService, *store.MemoryBackend) {
	t.Helper()
	b := store.NewMemoryBackend()
	s := NewPortalService(b, store.New(b))
	return s, b
}

func TestSubmitApplicationRequiresUsername(t *testing.T) {
	s, _ := newTestPortal(t)

	_, err := s.SubmitApplication(context.Background(), ApplicationInput{GameUsername: "   "})
	if !errors.Is(err, ErrUsernameRequired) {
		t.Fatalf("err = %v, want ErrUsernameRequired", err)
	}
}

func TestSubmitApplicationPatternRejectsUsername(t *testing.T) {
	s, _ := newTestPortal(t)
	s.UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

	if _, err := s.SubmitApplication(context.Background(), ApplicationInput{GameUsername: "bad name!"}); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("err = %v, want ErrInvalidUsername", err)
	}
	if _, err := s.SubmitApplication(context.Background(), ApplicationInput{GameUsername: "good_name1"}); err != nil {
		t.Fatalf("valid username rejected: %v", err)
	}
}

func TestSubmitApplicationPersistsAndDefaults(t *testing.T) {
	s, b := newTestPortal(t)

	app, err := s.SubmitApplication(context.Background(), ApplicationInput{
		GameUsername: "  medic_one  ",
		DiscordID:    " medic#1234 ",
		WhyJoin:      "want to help",
	})
	if err != nil {
		t.Fatalf("SubmitApplication: %v", err)
	}
	if app.GameUsername != "medic_one" {
		t.Fatalf("username not trimmed: %q", app.GameUsername)
	}
	if app.DiscordID != "medic#1234" {
		t.Fatalf("discord id not trimmed: %q", app.DiscordID)
	}
	if app.Status != domain.StatusPending {
		t.Fatalf("status = %q, want pending", app.Status)
	}
	if app.ID == "" || app.RequestNumber == "" {
		t.Fatalf("identifiers not assigned: %+v", app)
	}

	stored := repo.LoadApplications(b)
	if len(stored) != 1 || stored[0].ID != app.ID {
		t.Fatalf("collection = %+v, want the one submitted application", stored)
	}
}

func TestSubmitApplicationStorageFailureLeavesNoTrace(t *testing.T) {
	s, b := newTestPortal(t)
	b.FailWrites = true

	_, err := s.SubmitApplication(context.Background(), ApplicationInput{GameUsername: "medic"})
	if !errors.Is(err, ErrStorageFailed) {
		t.Fatalf("err = %v, want ErrStorageFailed", err)
	}
	b.FailWrites = false
	if got := repo.LoadApplications(b); len(got) != 0 {
		t.Fatalf("failed submission appended anyway: %+v", got)
	}
	if got := s.ActivityLogs(10); len(got) != 0 {
		t.Fatalf("failed submission logged activity: %+v", got)
	}
}

func TestApplicationsCachePopulatedAndInvalidatedOnWrite(t *testing.T) {
	s, b := newTestPortal(t)

	// First read caches the (empty) collection.
	if _, err := s.Applications(context.Background(), false); err != nil {
		t.Fatalf("Applications: %v", err)
	}
	// A write behind the cache is invisible until the cache is invalidated.
	repo.SaveApplications(b, []domain.Application{{ID: "ghost", Status: domain.StatusPending}})
	apps, _ := s.Applications(context.Background(), false)
	if len(apps) != 0 {
		t.Fatalf("cached read saw a write that bypassed the façade")
	}

	// A façade write invalidates the cache, so the next read is fresh.
	if _, err := s.SubmitApplication(context.Background(), ApplicationInput{GameUsername: "medic"}); err != nil {
		t.Fatalf("SubmitApplication: %v", err)
	}
	apps, _ = s.Applications(context.Background(), false)
	if len(apps) != 2 {
		t.Fatalf("post-write read returned %d applications, want 2", len(apps))
	}
}

func TestApplicationsForceRefreshBypassesCache(t *testing.T) {
	s, b := newTestPortal(t)

	s.Applications(context.Background(), false) // warms the cache
	repo.SaveApplications(b, []domain.Application{{ID: "direct"}})

	apps, _ := s.Applications(context.Background(), true)
	if len(apps) != 1 || apps[0].ID != "direct" {
		t.Fatalf("force refresh served stale data: %+v", apps)
	}
}

func TestApplicationsContextCancelled(t *testing.T) {
	s, _ := newTestPortal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Applications(ctx, false); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSubmitUploadValidation(t *testing.T) {
	s, _ := newTestPortal(t)

	cases := []UploadInput{
		{Name: "", Description: "d"},
		{Name: "n", Description: ""},
		{Name: "  ", Description: "  "},
	}
	for _, in := range cases {
		if _, err := s.SubmitUpload(context.Background(), in); !errors.Is(err, ErrUploadInvalid) {
			t.Fatalf("input %+v: err = %v, want ErrUploadInvalid", in, err)
		}
	}
}

func TestSubmitUploadPersists(t *testing.T) {
	s, b := newTestPortal(t)

	up, err := s.SubmitUpload(context.Background(), UploadInput{
		Name:        "  clinic photo ",
		Description: "entrance",
		Category:    "gallery",
	})
	if err != nil {
		t.Fatalf("SubmitUpload: %v", err)
	}
	if up.Name != "clinic photo" {
		t.Fatalf("name not trimmed: %q", up.Name)
	}
	if up.Status != domain.StatusPending {
		t.Fatalf("status = %q, want pending", up.Status)
	}
	if got := repo.LoadUploads(b); len(got) != 1 {
		t.Fatalf("collection = %+v, want one upload", got)
	}
}

func TestLogActivityNewestFirstAndCapped(t *testing.T) {
	s, _ := newTestPortal(t)
	s.ActivityCap = 5

	for i := 0; i < 7; i++ {
		s.LogActivity("tick", map[string]any{"i": i})
	}
	logs := s.ActivityLogs(10)
	if len(logs) != 5 {
		t.Fatalf("log length = %d, want cap of 5", len(logs))
	}
	// Newest first: the last write (i=6) leads, i=2 is the oldest survivor.
	if got := logs[0].Data["i"]; got != float64(6) && got != 6 {
		t.Fatalf("head entry = %v, want i=6", got)
	}
	if got := logs[4].Data["i"]; got != float64(2) && got != 2 {
		t.Fatalf("tail entry = %v, want i=2", got)
	}
}

func TestActivityLogsDefaultLimit(t *testing.T) {
	s, _ := newTestPortal(t)

	for i := 0; i < 60; i++ {
		s.LogActivity("tick", nil)
	}
	if got := len(s.ActivityLogs(0)); got != DefaultActivityLimit {
		t.Fatalf("default-limit read returned %d entries, want %d", got, DefaultActivityLimit)
	}
	if got := len(s.ActivityLogs(10)); got != 10 {
		t.Fatalf("limited read returned %d entries, want 10", got)
	}
}

func TestStatsCountsWithoutTouchingCaches(t *testing.T) {
	s, b := newTestPortal(t)

	repo.SaveApplications(b, []domain.Application{
		{ID: "1", Status: domain.StatusPending},
		{ID: "2", Status: domain.StatusApproved},
		{ID: "3", Status: domain.StatusApproved},
	})
	repo.SaveUploads(b, []domain.Upload{
		{ID: "4", Status: domain.StatusRejected},
	})

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Applications.Total != 3 || stats.Applications.Approved != 2 || stats.Applications.Pending != 1 {
		t.Fatalf("application counts = %+v", stats.Applications)
	}
	if stats.Uploads.Total != 1 || stats.Uploads.Rejected != 1 {
		t.Fatalf("upload counts = %+v", stats.Uploads)
	}

	// Stats must not have primed either cache.
	var cached []domain.Application
	if s.Store.Get("applications", &cached) {
		t.Fatalf("Stats populated the applications cache")
	}
}

func TestSearchMatchesAcrossCollections(t *testing.T) {
	s, b := newTestPortal(t)

	repo.SaveApplications(b, []domain.Application{
		{ID: "a1", GameUsername: "NightMedic", WhyJoin: "triage"},
		{ID: "a2", GameUsername: "other"},
	})
	repo.SaveUploads(b, []domain.Upload{
		{ID: "u1", Name: "medic bay", Description: "photo"},
	})

	results, err := s.Search(context.Background(), "MEDIC", TypeAll)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v, want the application and the upload", results)
	}
	if results[0].Type != "application" || results[1].Type != "upload" {
		t.Fatalf("result types = %q, %q", results[0].Type, results[1].Type)
	}
}

func TestSearchEmptyQueryMatchesEverything(t *testing.T) {
	s, b := newTestPortal(t)

	repo.SaveApplications(b, []domain.Application{{ID: "a"}, {ID: "b"}})
	results, err := s.Search(context.Background(), "", TypeApplications)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("empty query returned %d results, want 2", len(results))
	}
}

func TestFilterApplicationsANDSemantics(t *testing.T) {
	s, b := newTestPortal(t)

	repo.SaveApplications(b, []domain.Application{
		{ID: "1", GameUsername: "alpha", Status: domain.StatusPending},
		{ID: "2", GameUsername: "alpha", Status: domain.StatusApproved},
		{ID: "3", GameUsername: "beta", Status: domain.StatusPending},
	})

	got, err := s.FilterApplications(context.Background(), map[string]string{
		"gameUsername": "alpha",
		"status":       domain.StatusPending,
		"discordId":    "", // empty values are ignored
	})
	if err != nil {
		t.Fatalf("FilterApplications: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("filtered = %+v, want only id 1", got)
	}
}

func TestFilterUnknownKeyMatchesNothing(t *testing.T) {
	s, b := newTestPortal(t)

	repo.SaveUploads(b, []domain.Upload{{ID: "1", Category: "gallery"}})
	got, err := s.FilterUploads(context.Background(), map[string]string{"nosuchfield": "x"})
	if err != nil {
		t.Fatalf("FilterUploads: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("unknown filter key matched records: %+v", got)
	}
}

func TestThemeDefaultAndRoundTrip(t *testing.T) {
	s, _ := newTestPortal(t)

	if got := s.Theme(); got != "dark" {
		t.Fatalf("default theme = %q, want dark", got)
	}
	if err := s.SetTheme("light"); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	if got := s.Theme(); got != "light" {
		t.Fatalf("theme after SetTheme = %q, want light", got)
	}
	if err := s.SetTheme("neon"); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("err = %v, want ErrInvalidTheme", err)
	}
	if got := s.Theme(); got != "light" {
		t.Fatalf("rejected SetTheme changed the stored theme to %q", got)
	}
}

func TestCorruptCollectionDegradesToEmpty(t *testing.T) {
	s, b := newTestPortal(t)

	b.Set(repo.KeyApplications, "{broken")
	apps, err := s.Applications(context.Background(), true)
	if err != nil {
		t.Fatalf("Applications: %v", err)
	}
	if len(apps) != 0 {
		t.Fatalf("corrupt collection decoded to %+v", apps)
	}
}

func TestCacheExpiryFallsBackToCollection(t *testing.T) {
	b := store.NewMemoryBackend()
	base := time.Unix(1_700_000_000, 0)
	current := base
	st := store.New(b, store.WithClock(func() time.Time { return current }))
	s := NewPortalService(b, st)
	s.now = func() time.Time { return current }

	s.Applications(context.Background(), false) // cache the empty state
	repo.SaveApplications(b, []domain.Application{{ID: "late"}})

	current = base.Add(DefaultCacheTTL + time.Second)
	apps, _ := s.Applications(context.Background(), false)
	if len(apps) != 1 || apps[0].ID != "late" {
		t.Fatalf("expired cache still served: %+v", apps)
	}
}
