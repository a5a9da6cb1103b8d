package domain

import (
	"math"
	"strconv"
)

// HistogramBins is the fixed bin count for distributions.
const HistogramBins = 8

// HistogramBin counts values in [Lower, Upper); the last bin includes Upper.
// Label uses the 2-dp rounded edges, e.g. "6.5–6.81".
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
	Label string  `json:"label"`
}

// Histogram distributes metric's values in month across stations.
func Histogram(metric, month string, stations []StationRecord) []HistogramBin {
	return BuildHistogram(monthValues(stations, metric, month, true))
}

// BuildHistogram partitions values into HistogramBins equal-width bins over
// [min, max]. Identical values produce a single bin; no values, no bins.
func BuildHistogram(values []float64) []HistogramBin {
	vals := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}

	lo, hi, ok := minMax(vals)
	if !ok {
		return []HistogramBin{}
	}
	// Operands are scaled down by the bin count before subtracting so that
	// the span of two finite extremes stays finite.
	width := hi/HistogramBins - lo/HistogramBins
	if lo == hi || width <= 0 {
		return []HistogramBin{{Lower: lo, Upper: hi, Count: len(vals), Label: binLabel(lo, hi)}}
	}
	counts := make([]int, HistogramBins)
	for _, v := range vals {
		idx := int(math.Floor((v/HistogramBins - lo/HistogramBins) / width * HistogramBins))
		idx = max(0, min(idx, HistogramBins-1))
		counts[idx]++
	}

	bins := make([]HistogramBin, HistogramBins)
	for i, c := range counts {
		lower := binEdge(lo, width, i)
		upper := binEdge(lo, width, i+1)
		if i == HistogramBins-1 {
			upper = hi
		}
		bins[i] = HistogramBin{Lower: lower, Upper: upper, Count: c, Label: binLabel(lower, upper)}
	}
	return bins
}

// binEdge is lo + i*width, computed at half scale when the product overflows.
func binEdge(lo, width float64, i int) float64 {
	edge := lo + float64(i)*width
	if math.IsInf(edge, 0) {
		edge = 2 * (lo/2 + float64(i)*(width/2))
	}
	return edge
}

func binLabel(lower, upper float64) string {
	return formatNumber(Round2(lower)) + "–" + formatNumber(Round2(upper))
}

// formatNumber prints the shortest representation: 3 -> "3", 6.5 -> "6.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
