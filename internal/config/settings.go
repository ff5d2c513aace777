// Nested runtime settings with dot-path access.
//
// Settings is the Go rendering of the portal's configuration object: a small
// tree of defaults (storage limits, form validation rules, notification
// knobs) that collaborators read by dot path, e.g.
// "forms.validation.gameUsername.pattern". The data layer must tolerate an
// absent or partially-populated tree by falling back to hard-coded defaults,
// so Get never fails, it just reports a miss.
package config

import "strings"

// Settings is a nested string-keyed settings tree. Leaves are any JSON-like
// scalar; interior nodes are map[string]any. The zero value is usable and
// empty.
type Settings struct {
	root map[string]any
}

// DefaultSettings returns the built-in settings tree.
func DefaultSettings() *Settings {
	return &Settings{root: map[string]any{
		"version": "2.2.0",
		"storage": map[string]any{
			"prefix":     "medic_",
			"defaultTTL": "24h",
			"maxItems": map[string]any{
				"applications": 1000,
				"uploads":      500,
				"logs":         1000,
			},
		},
		"forms": map[string]any{
			"validation": map[string]any{
				"gameUsername": map[string]any{
					"required":  true,
					"minLength": 3,
					"maxLength": 20,
					"pattern":   "^[a-zA-Z0-9_]+$",
				},
				"discordId": map[string]any{
					"required": false,
				},
			},
		},
		"notifications": map[string]any{
			"maxVisible": 5,
		},
	}}
}

// NewSettings wraps an existing tree (e.g. decoded from a persisted
// medic_config entry). A nil tree yields an empty Settings.
func NewSettings(root map[string]any) *Settings {
	return &Settings{root: root}
}

// Get returns the value at the dot-separated path, or ok=false when any
// segment is missing or a non-map is traversed.
func (s *Settings) Get(path string) (any, bool) {
	if s == nil || s.root == nil {
		return nil, false
	}
	node := any(s.root)
	for _, seg := range strings.Split(path, ".") {
		m, isMap := node.(map[string]any)
		if !isMap {
			return nil, false
		}
		next, found := m[seg]
		if !found {
			return nil, false
		}
		node = next
	}
	return node, true
}

// GetString returns the string at path, or def on miss or type mismatch.
func (s *Settings) GetString(path, def string) string {
	if v, ok := s.Get(path); ok {
		if str, isStr := v.(string); isStr {
			return str
		}
	}
	return def
}

// GetInt returns the integer at path, or def on miss. JSON decoding yields
// float64 for numbers, so both int and float64 leaves are accepted.
func (s *Settings) GetInt(path string, def int) int {
	v, ok := s.Get(path)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return def
	}
}

// GetBool returns the boolean at path, or def on miss or type mismatch.
func (s *Settings) GetBool(path string, def bool) bool {
	if v, ok := s.Get(path); ok {
		if b, isBool := v.(bool); isBool {
			return b
		}
	}
	return def
}

// Set writes value at the dot-separated path, creating interior maps as
// needed. Setting through an existing non-map leaf replaces the leaf.
func (s *Settings) Set(path string, value any) {
	if s.root == nil {
		s.root = map[string]any{}
	}
	segs := strings.Split(path, ".")
	node := s.root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := node[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[seg] = next
		}
		node = next
	}
	node[segs[len(segs)-1]] = value
}

// Tree exposes the underlying map for persistence.
func (s *Settings) Tree() map[string]any {
	if s == nil {
		return nil
	}
	return s.root
}
