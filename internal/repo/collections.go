// Package repo implements raw persistence for the authoritative record
// collections. Each collection is one flat JSON array stored at a fixed
// backend key, deliberately outside the expiring store's envelope: the
// primary record sets never expire.
//
// Error semantics follow the availability-first rule of the data layer:
//   - an absent or unparseable payload decodes to the empty collection,
//     never an error to the caller;
//   - a rejected write is surfaced as store.ErrWriteRejected so services can
//     degrade (report failure) without crashing.
//
// These functions are the only writers of their collections. Services own
// the business rules; nothing else mutates these keys directly.
package repo

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/medunit/go-medic-portal/internal/domain"
	"github.com/medunit/go-medic-portal/internal/store"
)

// Backend keys of the authoritative collections. KeyApplications and
// KeyUploads predate the "medic_" namespace and are kept verbatim for
// compatibility with data written by earlier releases.
const (
	KeyApplications = "medicApplications"
	KeyUploads      = "galleryUploads"
	KeyTickets      = "medic_tickets"
	KeyRatings      = "medic_ratings"
	KeyTheme        = "medic_theme"
)

// loadSlice decodes the JSON array at key into out (a pointer to a slice).
// Absent and corrupt payloads leave out untouched.
func loadSlice(b store.Backend, key string, out any) {
	payload, ok := b.Get(key)
	if !ok {
		return
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("corrupt collection payload, treating as empty")
	}
}

// saveSlice encodes v as a JSON array at key.
func saveSlice(b store.Backend, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("collection not serializable")
		return store.ErrWriteRejected
	}
	return b.Set(key, string(payload))
}

// LoadApplications returns every stored membership application, oldest
// first. Missing or corrupt data yields an empty slice.
func LoadApplications(b store.Backend) []domain.Application {
	out := []domain.Application{}
	loadSlice(b, KeyApplications, &out)
	return out
}

// SaveApplications replaces the stored application collection.
func SaveApplications(b store.Backend, apps []domain.Application) error {
	return saveSlice(b, KeyApplications, apps)
}

// LoadUploads returns every stored gallery upload request, oldest first.
func LoadUploads(b store.Backend) []domain.Upload {
	out := []domain.Upload{}
	loadSlice(b, KeyUploads, &out)
	return out
}

// SaveUploads replaces the stored upload collection.
func SaveUploads(b store.Backend, uploads []domain.Upload) error {
	return saveSlice(b, KeyUploads, uploads)
}

// LoadTickets returns every stored support ticket, oldest first.
func LoadTickets(b store.Backend) []domain.Ticket {
	out := []domain.Ticket{}
	loadSlice(b, KeyTickets, &out)
	return out
}

// SaveTickets replaces the stored ticket collection.
func SaveTickets(b store.Backend, tickets []domain.Ticket) error {
	return saveSlice(b, KeyTickets, tickets)
}

// LoadRatings returns every stored rating in insertion order.
func LoadRatings(b store.Backend) []domain.Rating {
	out := []domain.Rating{}
	loadSlice(b, KeyRatings, &out)
	return out
}

// SaveRatings replaces the stored rating collection.
func SaveRatings(b store.Backend, ratings []domain.Rating) error {
	return saveSlice(b, KeyRatings, ratings)
}

// LoadTheme returns the persisted theme name ("dark"/"light"), or "" when
// none has been chosen. The theme is a bare string, not JSON.
func LoadTheme(b store.Backend) string {
	v, _ := b.Get(KeyTheme)
	return v
}

// SaveTheme persists the theme name.
func SaveTheme(b store.Backend, theme string) error {
	return b.Set(KeyTheme, theme)
}
