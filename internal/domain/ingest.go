package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var lineSplitRe = regexp.MustCompile(`\r?\n`)

// Alignment decides how secondary-format rows are attached to stations.
type Alignment string

const (
	// AlignPositional attaches the i-th data row to the i-th base station.
	AlignPositional Alignment = "positional"
	// AlignStation matches rows by the station code in KeyColumn.
	AlignStation Alignment = "station"
)

// MetricColumn places one metric's month triple in a secondary-format row.
type MetricColumn struct {
	Metric string `yaml:"metric"`
	Start  int    `yaml:"start"`
}

// ColumnLayout declares the shape of a secondary quarter export.
type ColumnLayout struct {
	// PeriodKey is the collection key the export is stored under.
	PeriodKey string `yaml:"period_key"`
	// BaseKey names the native period whose stations lend their identity.
	BaseKey     string         `yaml:"base_key"`
	Delimiter   string         `yaml:"delimiter"`
	HeaderLines int            `yaml:"header_lines"`
	Alignment   Alignment      `yaml:"alignment"`
	KeyColumn   int            `yaml:"key_column"`
	Months      []string       `yaml:"months"`
	Columns     []MetricColumn `yaml:"columns"`
}

// DefaultLayout is the Q4 2024 export layout:
//
//	Row,BOD (mg/L),,,DO (mg/L),,,Fecal Coliform,,,Chloride (mg/L),,
//	,Oct,Nov,Dec,Oct,Nov,Dec,Oct,Nov,Dec,Oct,Nov,Dec
func DefaultLayout() ColumnLayout {
	return ColumnLayout{
		PeriodKey:   "LagunaLakeStations_Q4_2024",
		BaseKey:     "LagunaLakeStations_Q1_2024",
		Delimiter:   ",",
		HeaderLines: 2,
		Alignment:   AlignPositional,
		Columns: []MetricColumn{
			{Metric: MetricBOD, Start: 1},
			{Metric: MetricDO, Start: 4},
			{Metric: MetricFecalColiform, Start: 7},
			{Metric: MetricChloride, Start: 10},
		},
	}
}

// Validate checks the layout is usable.
func (l ColumnLayout) Validate() error {
	if l.PeriodKey == "" {
		return fmt.Errorf("layout: period_key is required")
	}
	if l.Delimiter == "" {
		return fmt.Errorf("layout: delimiter is required")
	}
	if l.HeaderLines < 0 {
		return fmt.Errorf("layout: header_lines must be >= 0")
	}
	switch l.Alignment {
	case AlignPositional, AlignStation:
	default:
		return fmt.Errorf("layout: unknown alignment %q", l.Alignment)
	}
	if len(l.Columns) == 0 {
		return fmt.Errorf("layout: at least one column is required")
	}
	for _, c := range l.Columns {
		if c.Metric == "" || c.Start < 0 {
			return fmt.Errorf("layout: invalid column %+v", c)
		}
	}
	return nil
}

// months resolves the export's month labels: explicit, else from the period key.
func (l ColumnLayout) months() []string {
	if len(l.Months) > 0 {
		return l.Months
	}
	return ParsePeriodKey(l.PeriodKey).Months
}

// IngestReport describes what a secondary source contributed.
type IngestReport struct {
	Skipped     bool     `json:"skipped"`
	Reason      string   `json:"reason,omitempty"`
	Rows        int      `json:"rows"`
	Matched     int      `json:"matched"`
	Synthesized []string `json:"synthesized,omitempty"`
	Unmatched   []string `json:"unmatched,omitempty"`
}

// ParseSecondary converts delimited export text into station records aligned
// against base. Too-short input contributes nothing and is reported as skipped.
func ParseSecondary(text string, base []StationRecord, layout ColumnLayout) ([]StationRecord, IngestReport) {
	months := layout.months()
	if len(months) == 0 {
		return nil, IngestReport{Skipped: true, Reason: "no months for period " + layout.PeriodKey}
	}

	lines := lineSplitRe.Split(strings.TrimSpace(text), -1)
	if strings.TrimSpace(text) == "" || len(lines) < layout.HeaderLines+1 {
		return nil, IngestReport{Skipped: true, Reason: fmt.Sprintf("need at least %d lines, got %d", layout.HeaderLines+1, countLines(text))}
	}

	rows := lines[layout.HeaderLines:]
	report := IngestReport{Rows: len(rows)}
	out := make([]StationRecord, 0, len(rows))

	for idx, line := range rows {
		cols := strings.Split(line, layout.Delimiter)
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}

		station, location, synthesized, ok := alignRow(idx, cols, base, layout)
		switch {
		case !ok:
			report.Unmatched = append(report.Unmatched, rowLabel(idx, cols, layout))
			continue
		case synthesized:
			report.Synthesized = append(report.Synthesized, station)
		default:
			report.Matched++
		}

		rec := StationRecord{
			Station:   station,
			Location:  location,
			Readings:  make(map[string]MonthlyCells, len(layout.Columns)),
			Constants: map[string]Cell{},
		}
		for _, col := range layout.Columns {
			cells := make(MonthlyCells, len(months))
			for i, m := range months {
				cells[m] = exportCell(cols, col.Start+i)
			}
			rec.Readings[col.Metric] = cells
		}
		out = append(out, rec)
	}
	return out, report
}

// alignRow resolves the identity for data row idx. Positional rows past the
// end of base get a placeholder identity "R<n>".
func alignRow(idx int, cols []string, base []StationRecord, layout ColumnLayout) (station, location string, synthesized, ok bool) {
	if layout.Alignment == AlignStation {
		if layout.KeyColumn >= len(cols) {
			return "", "", false, false
		}
		s, found := FindStation(base, cols[layout.KeyColumn])
		if !found {
			return "", "", false, false
		}
		return s.Station, s.Location, false, true
	}

	if idx < len(base) {
		return base[idx].Station, base[idx].Location, false, true
	}
	return synthesizedID(idx), "", true, true
}

func synthesizedID(idx int) string {
	return fmt.Sprintf("R%d", idx+1)
}

func rowLabel(idx int, cols []string, layout ColumnLayout) string {
	if layout.KeyColumn < len(cols) && cols[layout.KeyColumn] != "" {
		return cols[layout.KeyColumn]
	}
	return synthesizedID(idx)
}

// exportCell converts one export column: empty is missing, anything else goes
// through the shared cell parser so the raw text is kept for censored values.
func exportCell(cols []string, i int) Cell {
	if i >= len(cols) || cols[i] == "" {
		return Missing
	}
	return ParseCellString(cols[i])
}

func countLines(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return len(lineSplitRe.Split(strings.TrimSpace(text), -1))
}

// Merge adds the secondary export to a copy of native under layout.PeriodKey.
// Native data is never modified; a skipped export returns native unchanged.
func Merge(native *Collection, secondaryText string, layout ColumnLayout) (*Collection, IngestReport) {
	if native == nil {
		native = NewCollection()
	}
	records, report := ParseSecondary(secondaryText, native.Stations(layout.BaseKey), layout)
	if report.Skipped {
		return native, report
	}
	return native.With(layout.PeriodKey, records), report
}
