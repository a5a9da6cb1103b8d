package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportHeader = "Row,BOD (mg/L),,,DO (mg/L),,,Fecal Coliform,,,Chloride (mg/L),,\n" +
	",Oct,Nov,Dec,Oct,Nov,Dec,Oct,Nov,Dec,Oct,Nov,Dec\n"

func baseCollection() *Collection {
	return NewCollection().With("LagunaLakeStations_Q1_2024", []StationRecord{
		stationWith("I", "Central West Bay", map[string]MonthlyCells{MetricPH: months("Jan", 7.1)}),
		stationWith("II", "East Bay", nil),
	})
}

func TestParseSecondary_Positional(t *testing.T) {
	text := exportHeader +
		"1,2.0,<1.0,,5,6,7,100,200,300,10,11,12\r\n" +
		"2, 3.5 ,4,5,6,7,8,9,10,11,12,13,14\n" +
		"3,1,1,1,1,1,1,1,1,1,1,1,1\n"
	base := baseCollection().Stations("LagunaLakeStations_Q1_2024")

	records, report := ParseSecondary(text, base, DefaultLayout())

	require.Len(t, records, 3)
	assert.False(t, report.Skipped)
	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, 2, report.Matched)
	assert.Equal(t, []string{"R3"}, report.Synthesized)

	first := records[0]
	assert.Equal(t, "I", first.Station)
	assert.Equal(t, "Central West Bay", first.Location)

	v, ok := first.Value(MetricBOD, "Oct")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	v, ok = first.Value(MetricBOD, "Nov")
	require.True(t, ok)
	assert.Equal(t, 0.5, v)
	assert.Equal(t, CellCensored, first.Cell(MetricBOD, "Nov").Kind)

	_, ok = first.Value(MetricBOD, "Dec")
	assert.False(t, ok)

	v, ok = first.Value(MetricChloride, "Dec")
	require.True(t, ok)
	assert.Equal(t, 12.0, v)

	v, ok = records[1].Value(MetricBOD, "Oct")
	require.True(t, ok)
	assert.Equal(t, 3.5, v)

	assert.Equal(t, "R3", records[2].Station)
	assert.Empty(t, records[2].Location)
}

func TestParseSecondary_ShortRowsAreMissing(t *testing.T) {
	records, _ := ParseSecondary(exportHeader+"1,2.0\n", nil, DefaultLayout())
	require.Len(t, records, 1)
	assert.Equal(t, "R1", records[0].Station)

	_, ok := records[0].Value(MetricDO, "Oct")
	assert.False(t, ok)
	assert.Len(t, records[0].Readings[MetricDO], 3)
}

func TestParseSecondary_TooShort(t *testing.T) {
	t.Run("header only", func(t *testing.T) {
		records, report := ParseSecondary("Row,BOD (mg/L),,", nil, DefaultLayout())
		assert.Empty(t, records)
		assert.True(t, report.Skipped)
		assert.Contains(t, report.Reason, "got 1")
	})

	t.Run("empty", func(t *testing.T) {
		records, report := ParseSecondary("   \n", nil, DefaultLayout())
		assert.Empty(t, records)
		assert.True(t, report.Skipped)
		assert.Contains(t, report.Reason, "got 0")
	})

	t.Run("undated period key", func(t *testing.T) {
		layout := DefaultLayout()
		layout.PeriodKey = "Export"
		_, report := ParseSecondary(exportHeader+"1,2,3,4\n", nil, layout)
		assert.True(t, report.Skipped)
	})
}

func TestParseSecondary_StationAlignment(t *testing.T) {
	layout := DefaultLayout()
	layout.Alignment = AlignStation
	layout.KeyColumn = 0
	text := exportHeader +
		"II,9,9,9\n" +
		"VII,1,1,1\n" +
		"I,2,2,2\n"
	base := baseCollection().Stations("LagunaLakeStations_Q1_2024")

	records, report := ParseSecondary(text, base, layout)

	require.Len(t, records, 2)
	assert.Equal(t, "II", records[0].Station)
	assert.Equal(t, "East Bay", records[0].Location)
	assert.Equal(t, "I", records[1].Station)
	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, 2, report.Matched)
	assert.Equal(t, []string{"VII"}, report.Unmatched)
	assert.Empty(t, report.Synthesized)
}

func TestMerge(t *testing.T) {
	native := baseCollection()

	t.Run("adds export under its key", func(t *testing.T) {
		merged, report := Merge(native, exportHeader+"1,2,2,2\n", DefaultLayout())
		assert.False(t, report.Skipped)
		assert.Equal(t, []string{"LagunaLakeStations_Q1_2024", "LagunaLakeStations_Q4_2024"}, merged.Keys())
		assert.Len(t, merged.Stations("LagunaLakeStations_Q4_2024"), 1)
		assert.Equal(t, 1, native.Len(), "native collection is not modified")
	})

	t.Run("header-only export keeps native intact", func(t *testing.T) {
		merged, report := Merge(native, "Row,BOD (mg/L)", DefaultLayout())
		assert.True(t, report.Skipped)
		assert.Equal(t, []string{"LagunaLakeStations_Q1_2024"}, merged.Keys())
		assert.Len(t, merged.Stations("LagunaLakeStations_Q1_2024"), 2)
	})

	t.Run("nil native", func(t *testing.T) {
		merged, report := Merge(nil, exportHeader+"1,2,2,2\n", DefaultLayout())
		assert.False(t, report.Skipped)
		assert.Equal(t, []string{"R1"}, report.Synthesized)
		assert.Equal(t, 1, merged.Len())
	})
}

func TestColumnLayout_Validate(t *testing.T) {
	require.NoError(t, DefaultLayout().Validate())

	tests := []struct {
		name   string
		mutate func(*ColumnLayout)
	}{
		{"missing period key", func(l *ColumnLayout) { l.PeriodKey = "" }},
		{"missing delimiter", func(l *ColumnLayout) { l.Delimiter = "" }},
		{"negative header lines", func(l *ColumnLayout) { l.HeaderLines = -1 }},
		{"unknown alignment", func(l *ColumnLayout) { l.Alignment = "fuzzy" }},
		{"no columns", func(l *ColumnLayout) { l.Columns = nil }},
		{"negative start", func(l *ColumnLayout) { l.Columns = []MetricColumn{{Metric: MetricDO, Start: -1}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := DefaultLayout()
			tt.mutate(&l)
			assert.Error(t, l.Validate())
		})
	}
}
