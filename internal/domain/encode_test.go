package domain

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValueDomain(t *testing.T) {
	assert.Equal(t, ValueDomain{Min: 0, Max: 1}, NewValueDomain(nil))
	assert.Equal(t, ValueDomain{Min: 7, Max: 8}, NewValueDomain([]float64{7, 7}))
	assert.Equal(t, ValueDomain{Min: 2, Max: 9}, NewValueDomain([]float64{9, 2, 5}))
}

func TestColorFor(t *testing.T) {
	d := ValueDomain{Min: 0, Max: 10}

	low := ColorFor(0, d)
	assert.Equal(t, 120, low.Hue)
	assert.Equal(t, "hsl(120 80% 50%)", low.CSS)

	high := ColorFor(10, d)
	assert.Equal(t, 0, high.Hue)
	assert.Equal(t, "hsl(0 80% 50%)", high.CSS)

	assert.Equal(t, 60, ColorFor(5, d).Hue)
	assert.Equal(t, 120, ColorFor(-5, d).Hue, "below domain clamps")
	assert.Equal(t, 0, ColorFor(50, d).Hue, "above domain clamps")

	for _, c := range []Color{low, high} {
		assert.True(t, strings.HasPrefix(c.Hex, "#"))
		assert.Len(t, c.Hex, 7)
		assert.False(t, c.NoData)
	}
	assert.NotEqual(t, low.Hex, high.Hex)
}

func TestRadiusFor(t *testing.T) {
	d := ValueDomain{Min: 0, Max: 10}
	assert.Equal(t, 6, RadiusFor(0, d))
	assert.Equal(t, 12, RadiusFor(5, d))
	assert.Equal(t, 18, RadiusFor(10, d))
	assert.Equal(t, 18, RadiusFor(100, d))
}

func TestEncoding_MonotonicAcrossDomain(t *testing.T) {
	for _, d := range []ValueDomain{{Min: 6.5, Max: 8.5}, {Min: 0, Max: 1e5}, {Min: -3, Max: 0.2}} {
		const steps = 500
		span := d.Max - d.Min
		prevHue, prevRadius := math.MaxInt, math.MinInt
		for i := -10; i <= steps+10; i++ {
			v := d.Min + span*float64(i)/steps
			hue, radius := ColorFor(v, d).Hue, RadiusFor(v, d)

			assert.LessOrEqual(t, hue, prevHue, "hue increased at %v in %+v", v, d)
			assert.GreaterOrEqual(t, radius, prevRadius, "radius decreased at %v in %+v", v, d)
			assert.GreaterOrEqual(t, hue, 0)
			assert.LessOrEqual(t, hue, 120)
			assert.GreaterOrEqual(t, radius, DefaultRadius)
			assert.LessOrEqual(t, radius, DefaultRadius+12)
			prevHue, prevRadius = hue, radius
		}
		assert.Equal(t, 120, ColorFor(d.Min, d).Hue)
		assert.Equal(t, 0, ColorFor(d.Max, d).Hue)
	}
}

func TestEncoding_ExtremeDomain(t *testing.T) {
	d := ValueDomain{Min: -math.MaxFloat64, Max: math.MaxFloat64}

	assert.Equal(t, 120, ColorFor(-math.MaxFloat64, d).Hue)
	assert.Equal(t, 60, ColorFor(0, d).Hue)
	assert.Equal(t, 0, ColorFor(math.MaxFloat64, d).Hue)
	assert.Equal(t, 12, RadiusFor(0, d))

	samples := LegendSamples(d)
	require.Len(t, samples, 3)
	assert.Equal(t, 0.0, samples[1].Value)
	assert.Equal(t, 60, samples[1].Color.Hue)
}

func TestLegendSamples(t *testing.T) {
	samples := LegendSamples(ValueDomain{Min: 2, Max: 4})
	require.Len(t, samples, 3)
	assert.Equal(t, []string{"2", "3", "4"}, []string{samples[0].Label, samples[1].Label, samples[2].Label})
	assert.Equal(t, 120, samples[0].Color.Hue)
	assert.Equal(t, 60, samples[1].Color.Hue)
	assert.Equal(t, 0, samples[2].Color.Hue)
}

func TestLatestValue(t *testing.T) {
	rec := stationWith("I", "A", map[string]MonthlyCells{
		MetricPH: months("Oct", 7.0, "Nov", 7.5, "Dec", nil),
	})

	t.Run("skips missing months newest first", func(t *testing.T) {
		v, ok := LatestValue(rec, MetricPH, QuarterMonths("Q4"))
		require.True(t, ok)
		assert.Equal(t, 7.5, v)
	})

	t.Run("no months in scope", func(t *testing.T) {
		_, ok := LatestValue(rec, MetricPH, QuarterMonths("Q1"))
		assert.False(t, ok)
	})
}
