// Package plantinfo implements the loosely typed plant metadata container
// exchanged with the backend. The backend returns one JSON object per plant
// whose values may be strings, lists of strings, nested string-to-string
// objects, or null; this package models that as a tagged variant and keeps
// the key order exactly as it appeared on the wire.
package plantinfo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// KindNull marks a category with no information available.
	KindNull Kind = iota
	// KindScalar holds a single string.
	KindScalar
	// KindList holds an ordered sequence of strings.
	KindList
	// KindPairs holds an ordered sequence of key/value string pairs.
	KindPairs
)

// Pair is one key/value entry of a KindPairs value.
type Pair struct {
	Key   string
	Value string
}

// Value is one category's payload.
type Value struct {
	kind   Kind
	scalar string
	list   []string
	pairs  []Pair
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Scalar wraps a single string.
func Scalar(s string) Value { return Value{kind: KindScalar, scalar: s} }

// List wraps an ordered sequence of strings.
func List(items ...string) Value { return Value{kind: KindList, list: items} }

// Pairs wraps an ordered sequence of key/value pairs.
func Pairs(pairs ...Pair) Value { return Value{kind: KindPairs, pairs: pairs} }

// Kind reports which variant the value holds.
func (v Value) Kind() Kind { return v.kind }

// Scalar returns the string payload of a KindScalar value.
func (v Value) Scalar() string { return v.scalar }

// List returns the items of a KindList value.
func (v Value) List() []string { return v.list }

// Pairs returns the entries of a KindPairs value.
func (v Value) Pairs() []Pair { return v.pairs }

// Flatten renders the value as one line the way exported reports expect:
// lists are comma-joined, pairs become "key: value" joined with ", ".
// Downstream consumers of exported files rely on this exact shape.
func (v Value) Flatten() string {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindList:
		return strings.Join(v.list, ", ")
	case KindPairs:
		parts := make([]string, 0, len(v.pairs))
		for _, p := range v.pairs {
			parts = append(parts, p.Key+": "+p.Value)
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// Equal reports whether two values hold the same variant and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindScalar:
		return v.scalar == other.scalar
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != other.list[i] {
				return false
			}
		}
	case KindPairs:
		if len(v.pairs) != len(other.pairs) {
			return false
		}
		for i := range v.pairs {
			if v.pairs[i] != other.pairs[i] {
				return false
			}
		}
	}
	return true
}

// clone returns a deep copy so canonical data cannot be mutated through
// a derived copy.
func (v Value) clone() Value {
	out := Value{kind: v.kind, scalar: v.scalar}
	if v.list != nil {
		out.list = append([]string(nil), v.list...)
	}
	if v.pairs != nil {
		out.pairs = append([]Pair(nil), v.pairs...)
	}
	return out
}

// MarshalJSON renders the value in its wire shape: null, string, array of
// strings, or an object with pair order preserved.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindScalar:
		return json.Marshal(v.scalar)
	case KindList:
		items := v.list
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	case KindPairs:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, p := range v.pairs {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(p.Key)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(p.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

// InfoMap is an insertion-ordered mapping from category name
// (e.g. "medicinal_uses") to Value.
type InfoMap struct {
	keys   []string
	values map[string]Value
}

// Set stores v under key, appending the key on first use.
func (m *InfoMap) Set(key string, v Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value stored under key.
func (m *InfoMap) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the category names in insertion order.
func (m *InfoMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of categories.
func (m *InfoMap) Len() int { return len(m.keys) }

// Clone returns a deep copy of the map.
func (m *InfoMap) Clone() InfoMap {
	var out InfoMap
	for _, k := range m.keys {
		out.Set(k, m.values[k].clone())
	}
	return out
}

// Equal reports whether both maps hold the same keys in the same order with
// equal values.
func (m *InfoMap) Equal(other *InfoMap) bool {
	if len(m.keys) != len(other.keys) {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k {
			return false
		}
		if !m.values[k].Equal(other.values[k]) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the map as a JSON object with keys in insertion order.
func (m InfoMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a JSON object, preserving key order. Scalar tokens of
// any JSON type are coerced to strings so that the occasional numeric or
// boolean field from the backend does not break decoding.
func (m *InfoMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read info: %w", err)
	}
	if tok == nil {
		m.keys = nil
		m.values = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("info: expected object, got %v", tok)
	}

	m.keys = nil
	m.values = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read info key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("info: non-string key %v", keyTok)
		}
		v, err := readValue(dec)
		if err != nil {
			return fmt.Errorf("read info value for %q: %w", key, err)
		}
		m.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("read info: %w", err)
	}
	return nil
}

// readValue consumes one complete JSON value from dec and converts it into a
// Value. Nested containers are flattened to strings one level down.
func readValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case string:
		return Scalar(t), nil
	case json.Number:
		return Scalar(t.String()), nil
	case bool:
		return Scalar(strconv.FormatBool(t)), nil
	case json.Delim:
		switch t {
		case '[':
			var items []string
			for dec.More() {
				item, err := readValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item.Flatten())
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return List(items...), nil
		case '{':
			var pairs []Pair
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("non-string key %v", keyTok)
				}
				val, err := readValue(dec)
				if err != nil {
					return Value{}, err
				}
				pairs = append(pairs, Pair{Key: key, Value: val.Flatten()})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Pairs(pairs...), nil
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}
