// Expiring Store: envelope-wrapped values with lazy time-to-live enforcement.
package store

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultPrefix namespaces every Store-owned key so unrelated data in
	// the same physical backend is never touched.
	DefaultPrefix = "medic_"

	// DefaultTTL applies when Set is called with a non-positive TTL.
	DefaultTTL = 24 * time.Hour

	// envelopeVersion is recorded in every envelope; kept for forward
	// compatibility with payload migrations.
	envelopeVersion = "2.2"
)

// envelope is the persisted wrapper around every Store-owned value.
// Expiry is a unix-millisecond deadline; the entry is logically absent once
// the clock passes it, enforced on every read rather than by sweeping.
type envelope struct {
	Value   json.RawMessage `json:"value"`
	Expiry  int64           `json:"expiry"`
	Version string          `json:"version"`
}

// Store layers per-entry expiry on a Backend. Reads delete expired entries
// as a side effect; Cleanup forces that pass over the whole namespace, but
// lazy deletion on read is the real enforcement mechanism.
type Store struct {
	backend    Backend
	prefix     string
	defaultTTL time.Duration

	// now is a clock seam for tests; defaults to time.Now.
	now func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithPrefix overrides the key namespace prefix.
func WithPrefix(p string) Option { return func(s *Store) { s.prefix = p } }

// WithDefaultTTL overrides the TTL applied when Set receives ttl <= 0.
func WithDefaultTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.defaultTTL = d
		}
	}
}

// WithClock overrides the time source; tests use it to simulate expiry.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// New constructs a Store over backend with the default prefix and TTL.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:    backend,
		prefix:     DefaultPrefix,
		defaultTTL: DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set serializes value inside an expiry envelope and writes it under the
// namespaced key. A non-positive ttl selects the store default. Set reports
// false when serialization or the backend write fails; it never panics or
// returns an error, since persistence here is best-effort.
func (s *Store) Set(key string, value any, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("store: value not serializable")
		return false
	}
	env := envelope{
		Value:   raw,
		Expiry:  s.now().Add(ttl).UnixMilli(),
		Version: envelopeVersion,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("store: envelope not serializable")
		return false
	}
	if err := s.backend.Set(s.prefix+key, string(payload)); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("store: write rejected")
		return false
	}
	return true
}

// Get decodes the live value at key into out and reports whether a value was
// found. Expired entries are deleted as a side effect and reported as
// absent. Corrupt payloads are reported as absent without deletion, so a
// later version that understands them could still recover the bytes.
func (s *Store) Get(key string, out any) bool {
	raw, ok := s.getRaw(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("store: stored value has unexpected shape")
		return false
	}
	return true
}

// getRaw returns the live envelope payload at key, enforcing expiry.
func (s *Store) getRaw(key string) (json.RawMessage, bool) {
	payload, ok := s.backend.Get(s.prefix + key)
	if !ok {
		return nil, false
	}
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("store: corrupt envelope")
		return nil, false
	}
	if s.now().UnixMilli() > env.Expiry {
		s.Remove(key)
		return nil, false
	}
	return env.Value, true
}

// Remove deletes the entry at key. Removing an absent key is a no-op.
func (s *Store) Remove(key string) {
	s.backend.Delete(s.prefix + key)
}

// Cleanup walks every key in the store namespace and forces an expiry check
// on each, deleting entries whose deadline has passed. Not transactional: a
// crash mid-iteration leaves some expired entries behind, which is fine
// because every read re-checks expiry anyway.
func (s *Store) Cleanup() {
	for _, k := range s.backend.Keys() {
		if strings.HasPrefix(k, s.prefix) {
			s.getRaw(strings.TrimPrefix(k, s.prefix))
		}
	}
}

// GetAll returns the raw JSON of every live value whose key starts with the
// given group prefix (e.g. "ratings_" when ratings were stored per-target).
// Expired and corrupt entries are skipped.
func (s *Store) GetAll(group string) []json.RawMessage {
	var out []json.RawMessage
	keys := s.backend.Keys()
	sort.Strings(keys) // deterministic order for callers and tests
	for _, k := range keys {
		if !strings.HasPrefix(k, s.prefix+group) {
			continue
		}
		if v, ok := s.getRaw(strings.TrimPrefix(k, s.prefix)); ok {
			out = append(out, v)
		}
	}
	return out
}

// Stats summarizes the store namespace for diagnostics.
type Stats struct {
	// Total is the number of Store-owned keys, live or expired.
	Total int `json:"total"`
	// Size is the byte size of Store-owned payloads.
	Size int64 `json:"size"`
	// Groups lists the distinct first key segments (e.g. "applications").
	Groups []string `json:"groups"`
}

// StorageStats reports key count, payload bytes, and the distinct key groups
// under the store prefix. It does not trigger expiry.
func (s *Store) StorageStats() Stats {
	st := Stats{}
	seen := map[string]struct{}{}
	for _, k := range s.backend.Keys() {
		if !strings.HasPrefix(k, s.prefix) {
			continue
		}
		st.Total++
		if v, ok := s.backend.Get(k); ok {
			st.Size += int64(len(v))
		}
		group, _, _ := strings.Cut(strings.TrimPrefix(k, s.prefix), "_")
		if _, dup := seen[group]; !dup && group != "" {
			seen[group] = struct{}{}
			st.Groups = append(st.Groups, group)
		}
	}
	sort.Strings(st.Groups)
	return st
}
