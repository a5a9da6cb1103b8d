package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriodKey(t *testing.T) {
	t.Run("dated key", func(t *testing.T) {
		v := ParsePeriodKey("LagunaLakeStations_Q1_2024")
		assert.Equal(t, "Q1", v.Quarter)
		assert.Equal(t, "2024", v.Year)
		assert.Equal(t, []string{"Jan", "Feb", "Mar"}, v.Months)
		assert.True(t, v.Dated())
		assert.Equal(t, "Q1 2024", v.Label())

		latest, ok := v.LatestMonth()
		require.True(t, ok)
		assert.Equal(t, "Mar", latest)
	})

	t.Run("fourth quarter", func(t *testing.T) {
		v := ParsePeriodKey("LagunaLakeStations_Q4_2024")
		assert.Equal(t, []string{"Oct", "Nov", "Dec"}, v.Months)
	})

	t.Run("undated key", func(t *testing.T) {
		v := ParsePeriodKey("StationRoster")
		assert.Empty(t, v.Quarter)
		assert.Empty(t, v.Year)
		assert.Empty(t, v.Months)
		assert.False(t, v.Dated())
		assert.Equal(t, "StationRoster", v.Label())

		_, ok := v.LatestMonth()
		assert.False(t, ok)
	})

	t.Run("out of range quarter is undated", func(t *testing.T) {
		v := ParsePeriodKey("Stations_Q5_2024")
		assert.False(t, v.Dated())
	})
}

func TestQuarterMonths_ReturnsCopy(t *testing.T) {
	m := QuarterMonths("Q2")
	m[0] = "changed"
	assert.Equal(t, []string{"Apr", "May", "Jun"}, QuarterMonths("Q2"))
	assert.Empty(t, QuarterMonths("Q9"))
}

func TestDerivePeriods_YearsAndQuarters(t *testing.T) {
	views := DerivePeriods([]string{
		"Stations_Q3_2025",
		"Roster",
		"Stations_Q1_2024",
		"Stations_Q4_2024",
		"Stations_Q1_2025",
	})

	require.Len(t, views, 5)
	assert.Equal(t, "Stations_Q3_2025", views[0].Key)
	assert.False(t, views[1].Dated())

	if diff := cmp.Diff([]string{"2024", "2025"}, Years(views)); diff != "" {
		t.Fatalf("years mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Q1", "Q4"}, QuartersForYear(views, "2024"))
	assert.Equal(t, []string{"Q3", "Q1"}, QuartersForYear(views, "2025"))
	assert.Empty(t, QuartersForYear(views, "1999"))
}

func TestSelectPeriod(t *testing.T) {
	views := DerivePeriods([]string{"Stations_Q1_2024", "Stations_Q4_2024"})

	t.Run("exact match", func(t *testing.T) {
		v, ok := SelectPeriod(views, "2024", "Q4")
		require.True(t, ok)
		assert.Equal(t, "Stations_Q4_2024", v.Key)
	})

	t.Run("mismatch falls back to first", func(t *testing.T) {
		v, ok := SelectPeriod(views, "2023", "Q2")
		require.True(t, ok)
		assert.Equal(t, "Stations_Q1_2024", v.Key)
	})

	t.Run("empty selection falls back to first", func(t *testing.T) {
		v, ok := SelectPeriod(views, "", "")
		require.True(t, ok)
		assert.Equal(t, "Stations_Q1_2024", v.Key)
	})

	t.Run("no views", func(t *testing.T) {
		_, ok := SelectPeriod(nil, "2024", "Q1")
		assert.False(t, ok)
	})
}
