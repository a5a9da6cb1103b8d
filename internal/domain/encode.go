package domain

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Marker scale parameters.
const (
	DefaultRadius = 6
	radiusSpan    = 12
	hueLow        = 120 // green
	saturation    = 0.8
	lightness     = 0.5
	noDataColor   = "#999999"
)

// ValueDomain is the [Min, Max] range a metric is scaled over. Max > Min
// always holds for domains built by NewValueDomain.
type ValueDomain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// NewValueDomain spans values. No values gives [0, 1]; a single distinct
// value v gives [v, v+1].
func NewValueDomain(values []float64) ValueDomain {
	lo, hi, ok := minMax(values)
	if !ok {
		return ValueDomain{Min: 0, Max: 1}
	}
	if lo == hi {
		return ValueDomain{Min: lo, Max: lo + 1}
	}
	return ValueDomain{Min: lo, Max: hi}
}

// position maps v into [0, 1] within the domain.
func (d ValueDomain) position(v float64) float64 {
	// Halved so the difference of two finite extremes cannot overflow.
	span := d.Max/2 - d.Min/2
	if span <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, (v/2-d.Min/2)/span))
}

// Color is a marker color. Hue runs 120 (low, green) down to 0 (high, red).
type Color struct {
	Hue    int    `json:"hue"`
	NoData bool   `json:"no_data,omitempty"`
	CSS    string `json:"css"`
	Hex    string `json:"hex"`
}

// NoDataColor is used for stations without a value.
var NoDataColor = Color{Hue: -1, NoData: true, CSS: noDataColor, Hex: noDataColor}

// ColorFor maps v to a hue within d.
func ColorFor(v float64, d ValueDomain) Color {
	hue := hueLow - int(math.Round(hueLow*d.position(v)))
	return Color{
		Hue: hue,
		CSS: fmt.Sprintf("hsl(%d %d%% %d%%)", hue, int(saturation*100), int(lightness*100)),
		Hex: colorful.Hsl(float64(hue), saturation, lightness).Hex(),
	}
}

// RadiusFor maps v to a marker radius in [6, 18].
func RadiusFor(v float64, d ValueDomain) int {
	return DefaultRadius + int(math.Round(radiusSpan*d.position(v)))
}

// LegendSample is one legend swatch.
type LegendSample struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
	Color Color   `json:"color"`
}

// LegendSamples returns swatches at the domain's min, midpoint and max.
func LegendSamples(d ValueDomain) []LegendSample {
	values := []float64{d.Min, d.Min/2 + d.Max/2, d.Max}
	out := make([]LegendSample, len(values))
	for i, v := range values {
		out[i] = LegendSample{Value: v, Label: formatNumber(Round2(v)), Color: ColorFor(v, d)}
	}
	return out
}

// LatestValue scans months newest-first and returns the first present value.
func LatestValue(rec StationRecord, metric string, months []string) (float64, bool) {
	for i := len(months) - 1; i >= 0; i-- {
		if v, ok := rec.Value(metric, months[i]); ok {
			return v, true
		}
	}
	return 0, false
}

// MetricDomain derives the scaling domain for metric from the latest value
// of every located station that has a record in stations.
func MetricDomain(metric string, months []string, stations []StationRecord, locations []StationLocation) ValueDomain {
	vals := make([]float64, 0, len(locations))
	for _, loc := range locations {
		if !loc.Located() {
			continue
		}
		rec, ok := FindStation(stations, loc.Station)
		if !ok {
			continue
		}
		if v, ok := LatestValue(rec, metric, months); ok {
			vals = append(vals, v)
		}
	}
	return NewValueDomain(vals)
}
