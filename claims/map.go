package claims

import (
	"encoding/json"
	"fmt"
)

const (
	SubjectClaim = "sub"
	EmailClaim   = "email"
	RolesClaim   = "roles"
)

// Map is a provider claim map.
type Map map[string]Value

// Parse decodes a user-info JSON document. The document must be an object.
func Parse(data []byte) (Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode claims: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("failed to decode claims: not an object")
	}
	return m, nil
}

// FromRecord converts a plain map into a claim map.
func FromRecord(r map[string]any) Map {
	m := make(Map, len(r))
	for k, v := range r {
		m[k] = Of(v)
	}
	return m
}

// String returns the claim as a string, or "" when absent or not a string.
func (m Map) String(key string) string {
	s, _ := m[key].Str()
	return s
}

// Clone is a shallow copy.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Record flattens the map into plain Go values.
func (m Map) Record() map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Interface()
	}
	return out
}
