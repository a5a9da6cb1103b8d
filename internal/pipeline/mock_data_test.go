package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/laguna-water-quality/internal/domain"
	"github.com/couchcryptid/laguna-water-quality/internal/pipeline"
)

func readDataFile(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "data", name))
	require.NoError(t, err)
	return data
}

func TestDatasetBuilder_WithBundledData(t *testing.T) {
	b := domain.RawBundle{
		Native:    readDataFile(t, "monitoring_stations.json"),
		Secondary: readDataFile(t, "water_quality_2024_Oct-Dec.csv"),
		Locations: readDataFile(t, "stations_with_coords.json"),
		ReadAt:    time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	ds, err := pipeline.NewTransformer(domain.DefaultLayout(), discardLogger()).Transform(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, b.Version(), ds.Version)
	assert.Equal(t, []string{"LagunaLakeStations_Q1_2024", "LagunaLakeStations_Q4_2024"}, ds.Collection.Keys())
	assert.False(t, ds.Report.Skipped)
	assert.Equal(t, 5, ds.Report.Matched)
	assert.Empty(t, ds.Report.Synthesized)

	q1 := ds.Collection.Stations("LagunaLakeStations_Q1_2024")
	q4 := ds.Collection.Stations("LagunaLakeStations_Q4_2024")
	require.Len(t, q4, len(q1))
	for i := range q1 {
		assert.Equal(t, q1[i].Station, q4[i].Station, "row %d aligned by position", i)
	}

	for _, rec := range q1 {
		for _, month := range []string{"Jan", "Feb", "Mar"} {
			_, ok := rec.Value(domain.MetricPH, month)
			assert.True(t, ok, "station %s pH %s", rec.Station, month)
		}
	}

	located := 0
	for _, l := range ds.Locations {
		if l.Located() {
			located++
		}
	}
	assert.Equal(t, 4, located)

	res := domain.KPIs(ds.Periods[1], q4, domain.AllStations)
	assert.Equal(t, "Dec", res.Month)
	assert.NotNil(t, res.MeanDO)
	assert.Nil(t, res.MeanPH, "the export carries no pH")
}

func TestDatasetBuilder_Degradation(t *testing.T) {
	builder := pipeline.NewTransformer(domain.DefaultLayout(), discardLogger())

	t.Run("missing optional inputs", func(t *testing.T) {
		ds, err := builder.Transform(context.Background(), domain.RawBundle{Native: readDataFile(t, "monitoring_stations.json")})
		require.NoError(t, err)
		assert.True(t, ds.Report.Skipped)
		assert.Equal(t, 1, ds.Collection.Len())
		assert.Empty(t, ds.Locations)
	})

	t.Run("header-only secondary", func(t *testing.T) {
		ds, err := builder.Transform(context.Background(), domain.RawBundle{
			Native:    readDataFile(t, "monitoring_stations.json"),
			Secondary: []byte("Row,BOD (mg/L),,,DO (mg/L)\n"),
		})
		require.NoError(t, err)
		assert.True(t, ds.Report.Skipped)
		assert.Equal(t, []string{"LagunaLakeStations_Q1_2024"}, ds.Collection.Keys())
	})

	t.Run("unreadable locations", func(t *testing.T) {
		ds, err := builder.Transform(context.Background(), domain.RawBundle{
			Native:    readDataFile(t, "monitoring_stations.json"),
			Locations: []byte("{oops"),
		})
		require.NoError(t, err)
		assert.Empty(t, ds.Locations)
	})

	t.Run("invalid native dataset", func(t *testing.T) {
		_, err := builder.Transform(context.Background(), domain.RawBundle{Native: []byte("[]")})
		require.Error(t, err)
	})
}
