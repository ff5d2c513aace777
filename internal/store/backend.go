// Package store implements the portal's persistence primitives: a flat
// string key-value backend and an expiring Store layered on top of it.
//
// Two kinds of entries coexist in the same backend namespace:
//
//   - authoritative collections (applications, uploads, tickets, ratings)
//     written as raw JSON arrays with no expiry, accessed via internal/repo;
//   - derived entries (caches, the activity log, idempotency markers) wrapped
//     in a {value, expiry, version} envelope and owned by Store.
//
// Implementers must preserve this distinction: only Store-owned entries are
// envelope-wrapped.
package store

import "sync"

// Backend is a flat string key-value surface. Implementations must tolerate
// concurrent callers within the process; cross-process coordination is out of
// scope (last write wins).
type Backend interface {
	// Get returns the payload stored at key, or ok=false when absent.
	Get(key string) (value string, ok bool)

	// Set stores payload at key, overwriting any previous value. A non-nil
	// error means the write was rejected (e.g. disk full); callers treat
	// that as a degraded, non-fatal condition.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string)

	// Keys returns every key currently present, in no particular order.
	Keys() []string
}

// MemoryBackend is a map-backed Backend for tests and ephemeral runs.
type MemoryBackend struct {
	mu sync.RWMutex
	m  map[string]string

	// FailWrites forces Set to report a storage failure; used by tests to
	// exercise quota-exceeded handling.
	FailWrites bool
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{m: make(map[string]string)}
}

// Get implements Backend.
func (b *MemoryBackend) Get(key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.m[key]
	return v, ok
}

// Set implements Backend.
func (b *MemoryBackend) Set(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailWrites {
		return ErrWriteRejected
	}
	b.m[key] = value
	return nil
}

// Delete implements Backend.
func (b *MemoryBackend) Delete(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.m, key)
}

// Keys implements Backend.
func (b *MemoryBackend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.m))
	for k := range b.m {
		out = append(out, k)
	}
	return out
}
