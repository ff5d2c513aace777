// Package app wires the portal subsystems into a single Registry: one
// backend, one expiring store, and one instance of each service. The
// Registry is constructed once at process start and passed by reference to
// every collaborator, so nothing looks anything up ambiently.
package app

import (
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medunit/go-medic-portal/internal/config"
	"github.com/medunit/go-medic-portal/internal/services"
	"github.com/medunit/go-medic-portal/internal/store"
)

// keySettings is the store key holding the persisted settings tree
// (backend key "medic_config").
const keySettings = "config"

// settingsTTL keeps persisted settings effectively non-expiring without a
// raw-key special case.
const settingsTTL = 365 * 24 * time.Hour

// Registry is the process-wide wiring of the data layer.
type Registry struct {
	Config   config.Config
	Settings *config.Settings

	Backend store.Backend
	Store   *store.Store

	Portal  *services.PortalService
	Tickets *services.TicketService
	Ratings *services.RatingService
}

// New assembles a Registry over backend. It loads persisted settings (or
// installs defaults), applies configured TTLs, and sweeps expired entries
// once so a long-dormant database starts clean.
func New(cfg config.Config, backend store.Backend) *Registry {
	st := store.New(backend, store.WithDefaultTTL(cfg.DefaultTTL))

	settings := loadSettings(st)

	portal := services.NewPortalService(backend, st)
	if cfg.CacheTTL > 0 {
		portal.CacheTTL = cfg.CacheTTL
	}
	if cfg.ActivityTTL > 0 {
		portal.ActivityTTL = cfg.ActivityTTL
	}
	portal.ActivityCap = settings.GetInt("storage.maxItems.logs", services.DefaultActivityCap)
	if pat := settings.GetString("forms.validation.gameUsername.pattern", ""); pat != "" {
		re, err := regexp.Compile(pat)
		if err != nil {
			log.Warn().Err(err).Str("pattern", pat).Msg("ignoring invalid username pattern")
		} else {
			portal.UsernamePattern = re
		}
	}

	r := &Registry{
		Config:   cfg,
		Settings: settings,
		Backend:  backend,
		Store:    st,
		Portal:   portal,
		Tickets:  services.NewTicketService(backend, portal),
		Ratings:  services.NewRatingService(backend),
	}

	// Best-effort sweep; lazy expiry on read is the real enforcement.
	st.Cleanup()

	return r
}

// loadSettings returns the persisted settings tree, falling back to the
// built-in defaults when absent or expired.
func loadSettings(st *store.Store) *config.Settings {
	var tree map[string]any
	if st.Get(keySettings, &tree) && tree != nil {
		return config.NewSettings(tree)
	}
	return config.DefaultSettings()
}

// SaveSettings persists the current settings tree. Reports false when the
// write was rejected.
func (r *Registry) SaveSettings() bool {
	return r.Store.Set(keySettings, r.Settings.Tree(), settingsTTL)
}
