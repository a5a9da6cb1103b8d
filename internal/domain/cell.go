package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CellKind classifies a raw monitoring cell after ingestion.
type CellKind uint8

const (
	// CellMissing is an absent, null, or unparsable reading.
	CellMissing CellKind = iota
	// CellNumber is a finite numeric reading.
	CellNumber
	// CellCensored is a below-detection-limit reading ("<threshold").
	CellCensored
)

func (k CellKind) String() string {
	switch k {
	case CellNumber:
		return "number"
	case CellCensored:
		return "censored"
	default:
		return "missing"
	}
}

// Cell is the closed variant every raw cell is converted into at the ingestion
// boundary. Value holds the reading for CellNumber and the detection threshold
// for CellCensored. Raw keeps the original text when the source was a string.
type Cell struct {
	Kind  CellKind
	Value float64
	Raw   string
}

// Missing is the zero Cell.
var Missing = Cell{}

// NumberCell returns a numeric cell, or Missing when v is not finite.
func NumberCell(v float64) Cell {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return Cell{Kind: CellNumber, Value: v}
}

// CensoredCell returns a below-detection-limit cell for the given threshold.
func CensoredCell(threshold float64) Cell {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return Missing
	}
	return Cell{
		Kind:  CellCensored,
		Value: threshold,
		Raw:   "<" + strconv.FormatFloat(threshold, 'f', -1, 64),
	}
}

// Float returns the normalized numeric value of the cell. Censored readings
// are reported at half their detection threshold. The boolean is false when
// the cell carries no value.
func (c Cell) Float() (float64, bool) {
	switch c.Kind {
	case CellNumber:
		return c.Value, true
	case CellCensored:
		return c.Value / 2, true
	default:
		return 0, false
	}
}

// Present reports whether the cell normalizes to a value.
func (c Cell) Present() bool {
	return c.Kind != CellMissing
}

// Normalize converts a raw cell (number, numeric string, censored string,
// nil, or a Cell) into a finite number. It is the single parse rule for the
// whole engine; every reader of raw data goes through ParseCell.
func Normalize(raw any) (float64, bool) {
	return ParseCell(raw).Float()
}

// ParseCell converts an arbitrary raw value into a Cell. Unsupported types
// and unparsable strings become Missing.
func ParseCell(raw any) Cell {
	switch v := raw.(type) {
	case nil:
		return Missing
	case Cell:
		return v
	case float64:
		return NumberCell(v)
	case float32:
		return NumberCell(float64(v))
	case int:
		return NumberCell(float64(v))
	case int64:
		return NumberCell(float64(v))
	case json.Number:
		return ParseCellString(v.String())
	case string:
		return ParseCellString(v)
	default:
		return Missing
	}
}

// ParseCellString parses a textual cell. A '<' marker makes the reading
// censored at the numeric remainder, e.g. "<0.1".
func ParseCellString(s string) Cell {
	t := strings.TrimSpace(s)
	if t == "" {
		return Missing
	}

	if strings.Contains(t, "<") {
		rest := strings.TrimSpace(strings.Replace(t, "<", "", 1))
		v, ok := parseFinite(rest)
		if !ok {
			return Cell{Raw: s}
		}
		return Cell{Kind: CellCensored, Value: v, Raw: s}
	}

	v, ok := parseFinite(t)
	if !ok {
		return Cell{Raw: s}
	}
	return Cell{Kind: CellNumber, Value: v, Raw: s}
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// UnmarshalJSON accepts a number, a string, or null.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Missing
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode cell: %w", err)
		}
		*c = ParseCellString(s)
	case '{', '[':
		*c = Missing
	case 't', 'f':
		*c = Missing
	default:
		*c = ParseCellString(string(data))
		c.Raw = ""
	}
	return nil
}

// MarshalJSON writes the cell back in its source shape: numbers as numbers,
// strings (censored or unparsable) as their original text, missing as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch {
	case c.Kind == CellNumber && c.Raw == "":
		return json.Marshal(c.Value)
	case c.Raw != "":
		return json.Marshal(c.Raw)
	case c.Kind == CellCensored:
		return json.Marshal("<" + strconv.FormatFloat(c.Value, 'f', -1, 64))
	default:
		return []byte("null"), nil
	}
}
