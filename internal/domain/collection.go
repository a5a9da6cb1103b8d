package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Collection is the unified keyed-by-period set of station records. Keys keep
// their source order, which decides the default period and selection fallback.
type Collection struct {
	keys    []string
	periods map[string][]StationRecord
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{periods: make(map[string][]StationRecord)}
}

// Keys returns the period keys in order.
func (c *Collection) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Stations returns the records stored under key, or nil.
func (c *Collection) Stations(key string) []StationRecord {
	return c.periods[key]
}

// Len is the number of period keys.
func (c *Collection) Len() int {
	return len(c.keys)
}

// With returns a copy of c with records stored under key. A new key is
// appended; an existing key keeps its position.
func (c *Collection) With(key string, records []StationRecord) *Collection {
	out := &Collection{
		keys:    make([]string, len(c.keys), len(c.keys)+1),
		periods: make(map[string][]StationRecord, len(c.periods)+1),
	}
	copy(out.keys, c.keys)
	for k, v := range c.periods {
		out.periods[k] = v
	}
	if _, exists := out.periods[key]; !exists {
		out.keys = append(out.keys, key)
	}
	out.periods[key] = records
	return out
}

// DecodeCollection reads a native dataset: a JSON object mapping period keys
// to arrays of station records. Key order is preserved.
func DecodeCollection(r io.Reader) (*Collection, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("decode dataset: expected top-level object")
	}

	c := NewCollection()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode dataset key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("decode dataset: unexpected token %v", tok)
		}

		var records []StationRecord
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("decode period %q: %w", key, err)
		}
		if _, exists := c.periods[key]; !exists {
			c.keys = append(c.keys, key)
		}
		c.periods[key] = records
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return c, nil
}

// MarshalJSON writes the collection as an ordered JSON object.
func (c *Collection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteByte(':')
		records := c.periods[k]
		if records == nil {
			records = []StationRecord{}
		}
		vb, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("encode period %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
