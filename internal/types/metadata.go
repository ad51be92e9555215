package types

import (
	"bytes"
	"encoding/json"
	"iter"
	"math"

	"gopkg.in/yaml.v3"
)

// Metadata is an insertion-ordered mapping from string keys to JSON-shaped
// values.
//
// Values are nil (an explicitly absent field), string, bool, integers,
// float64, *Metadata, or []any holding any of these. A nil key in the
// mapping is different from a missing key: extractors always set every
// documented key, using nil when the value could not be derived.
//
// The zero value is ready to use.
type Metadata struct {
	keys   []string
	values map[string]any
}

// NewMetadata returns an empty Metadata.
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]any)}
}

// Set stores value under key. Replacing an existing key keeps its position.
func (m *Metadata) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Metadata) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present, even if its value is nil.
func (m *Metadata) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// All iterates over key/value pairs in insertion order.
//
//	for key, value := range md.All() {
//		fmt.Printf("%s = %v\n", key, value)
//	}
func (m *Metadata) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Map converts m into plain Go maps and slices, recursively.
// Key order is lost.
func (m *Metadata) Map() map[string]any {
	out := make(map[string]any, m.Len())
	for k, v := range m.All() {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch val := v.(type) {
	case *Metadata:
		return val.Map()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON encodes m as a JSON object preserving key order.
//
// Non-finite floats, which JSON cannot represent, are written as the
// strings "NaN", "+Inf" and "-Inf".
func (m *Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(jsonSafe(m.values[k]))
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func jsonSafe(v any) any {
	switch val := v.(type) {
	case float64:
		return finiteOrString(val)
	case float32:
		return finiteOrString(float64(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = jsonSafe(item)
		}
		return out
	default:
		return v
	}
}

func finiteOrString(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return f
}

// MarshalYAML encodes m as a YAML mapping preserving key order.
func (m *Metadata) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for k, v := range m.All() {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}

		valNode := &yaml.Node{}
		if err := valNode.Encode(v); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}
