package observability

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestConsoleLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newConsoleLogger(&buf, "warn")

	logger.Info("dropped")
	logger.Warn("dataset reload failed", "period", "LagunaLakeStations_Q1_2024")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "dataset reload failed")
	assert.Contains(t, out, "LagunaLakeStations_Q1_2024")
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.DatasetReloads.WithLabelValues("swapped").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.DatasetReloads.WithLabelValues("swapped")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.DatasetReloads.WithLabelValues("swapped")))
}
