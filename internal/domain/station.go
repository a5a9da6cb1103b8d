package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// MonthlyCells maps a 3-letter month label ("Jan") to a cell.
type MonthlyCells map[string]Cell

// StationRecord is one station's readings for one reporting period.
// Records are treated as immutable once merged into a Collection.
type StationRecord struct {
	Station  string
	Location string
	// Readings holds per-month cells keyed by metric.
	Readings map[string]MonthlyCells
	// Constants holds metric fields that were scalars rather than month maps.
	Constants map[string]Cell
}

// Label is the display label used by station pickers: "<code> - <location>".
func (r StationRecord) Label() string {
	return r.Station + " - " + r.Location
}

// Cell returns the raw cell for metric in month.
func (r StationRecord) Cell(metric, month string) Cell {
	return r.Readings[metric][month]
}

// Value returns the normalized reading for metric in month.
func (r StationRecord) Value(metric, month string) (float64, bool) {
	return r.Cell(metric, month).Float()
}

// valueOrConstant is Value, falling back to a scalar field when the month has
// no cell. Used by cross-station aggregations only.
func (r StationRecord) valueOrConstant(metric, month string) (float64, bool) {
	if c, ok := r.Readings[metric][month]; ok {
		return c.Float()
	}
	return r.Constants[metric].Float()
}

// UnmarshalJSON decodes the dataset shape: Station, Location, and one
// month-keyed object per metric.
func (r *StationRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode station record: %w", err)
	}

	rec := StationRecord{
		Readings:  make(map[string]MonthlyCells),
		Constants: make(map[string]Cell),
	}
	for key, raw := range fields {
		switch key {
		case "Station":
			rec.Station = decodeIdentity(raw)
			continue
		case "Location":
			rec.Location = decodeIdentity(raw)
			continue
		}

		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			var months MonthlyCells
			if err := json.Unmarshal(trimmed, &months); err != nil {
				return fmt.Errorf("decode metric %s: %w", key, err)
			}
			rec.Readings[key] = months
			continue
		}

		var c Cell
		if err := json.Unmarshal(trimmed, &c); err != nil {
			return fmt.Errorf("decode metric %s: %w", key, err)
		}
		rec.Constants[key] = c
	}

	*r = rec
	return nil
}

// decodeIdentity accepts a string or number station identity field.
func decodeIdentity(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// MarshalJSON writes the record back in the dataset shape with stable key order.
func (r StationRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeField := func(key string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}

	if err := writeField("Station", r.Station); err != nil {
		return nil, err
	}
	if err := writeField("Location", r.Location); err != nil {
		return nil, err
	}
	for _, metric := range sortedKeys(r.Readings) {
		if err := writeField(metric, orderedMonths(r.Readings[metric])); err != nil {
			return nil, err
		}
	}
	for _, metric := range sortedKeys(r.Constants) {
		if err := writeField(metric, r.Constants[metric]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// orderedMonths marshals month cells in calendar order.
type orderedMonths MonthlyCells

func (m orderedMonths) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return monthIndex(keys[i]) < monthIndex(keys[j])
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FindStation returns the record whose Station code matches code.
func FindStation(stations []StationRecord, code string) (StationRecord, bool) {
	for _, s := range stations {
		if s.Station == code {
			return s, true
		}
	}
	return StationRecord{}, false
}

// StationOptions lists the picker labels for a period's stations.
func StationOptions(stations []StationRecord) []string {
	out := make([]string, len(stations))
	for i, s := range stations {
		out[i] = s.Label()
	}
	return out
}

// stationCodeFromLabel extracts the code from "<code> - <location>".
func stationCodeFromLabel(label string) string {
	code, _, _ := strings.Cut(label, " - ")
	return strings.TrimSpace(code)
}
