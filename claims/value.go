// Package claims models the claim map returned by an OIDC user-info endpoint
// and remaps provider claim names onto local user-record fields.
package claims

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Kind tags the shape held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindList
	KindMap
	// KindOther covers numbers, booleans and heterogeneous lists, kept as
	// decoded by encoding/json.
	KindOther
)

// Value is a single claim value: a string, a list of strings, a nested claim
// map, or any other JSON scalar.
type Value struct {
	kind Kind
	str  string
	list []string
	m    Map
	raw  any
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func List(items ...string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{kind: KindList, list: items}
}

func Nested(m Map) Value {
	if m == nil {
		m = Map{}
	}
	return Value{kind: KindMap, m: m}
}

// Of converts a decoded JSON value (or a plain Go value of the same shapes)
// into a Value.
func Of(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case string:
		return String(t)
	case []string:
		return List(t...)
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return Value{kind: KindOther, raw: t}
			}
			items = append(items, s)
		}
		return List(items...)
	case map[string]any:
		return Nested(FromRecord(t))
	case Map:
		return Nested(t)
	default:
		return Value{kind: KindOther, raw: t}
	}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

func (v Value) List() ([]string, bool) {
	return v.list, v.kind == KindList
}

func (v Value) Map() (Map, bool) {
	return v.m, v.kind == KindMap
}

// Truthy follows JavaScript truthiness. Empty strings, null, false and zero
// are falsy; lists and maps are always truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindString:
		return v.str != ""
	case KindList, KindMap:
		return true
	}
	switch t := v.raw.(type) {
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	}
	return true
}

// Interface returns the plain Go representation used in user records.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindList:
		return append([]string(nil), v.list...)
	case KindMap:
		return v.m.Record()
	case KindOther:
		return v.raw
	}
	return nil
}

func (v Value) String() string {
	if v.kind == KindString {
		return v.str
	}
	return fmt.Sprint(v.Interface())
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = Of(raw)
	return nil
}
