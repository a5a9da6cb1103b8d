package domain

import (
	"math"
	"strings"
)

// Compliance thresholds.
const (
	PHMin      = 6.5
	PHMax      = 8.5
	DOMinimum  = 5.0
	pctMaximum = 100
)

// Scope selects all stations (empty Station) or one station by code.
type Scope struct {
	Station string
}

// AllStations is the cross-station scope.
var AllStations = Scope{}

// ParseScope accepts "", a bare station code, or a picker label
// "<code> - <location>".
func ParseScope(s string) Scope {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return AllStations
	}
	return Scope{Station: stationCodeFromLabel(s)}
}

// All reports whether the scope covers every station.
func (s Scope) All() bool {
	return s.Station == ""
}

func (s Scope) String() string {
	if s.All() {
		return "all"
	}
	return s.Station
}

// ResolveScope returns the station record for a single-station scope. A scope
// naming a station absent from stations falls back to AllStations.
func ResolveScope(stations []StationRecord, scope Scope) (Scope, StationRecord) {
	if scope.All() {
		return AllStations, StationRecord{}
	}
	rec, ok := FindStation(stations, scope.Station)
	if !ok {
		return AllStations, StationRecord{}
	}
	return scope, rec
}

// SeriesPoint is one month of a MetricSeries; a nil Value means no data.
type SeriesPoint struct {
	Month string   `json:"month"`
	Value *float64 `json:"value"`
}

// MetricSeries is a metric's monthly values for one scope and period.
type MetricSeries struct {
	Metric string        `json:"metric"`
	Period string        `json:"period"`
	Scope  string        `json:"scope"`
	Points []SeriesPoint `json:"points"`
}

// Series computes the monthly series for metric. The all-stations scope
// averages every station reporting a value (rounded to 2 dp); a month with no
// contributing station has a nil point. A station scope reports that
// station's normalized values directly.
func Series(metric string, period PeriodView, stations []StationRecord, scope Scope) MetricSeries {
	scope, rec := ResolveScope(stations, scope)
	out := MetricSeries{
		Metric: metric,
		Period: period.Key,
		Scope:  scope.String(),
		Points: make([]SeriesPoint, len(period.Months)),
	}

	for i, month := range period.Months {
		out.Points[i].Month = month
		if scope.All() {
			out.Points[i].Value = roundedMean(monthValues(stations, metric, month, true))
			continue
		}
		if v, ok := rec.Value(metric, month); ok {
			out.Points[i].Value = ptr(v)
		}
	}
	return out
}

// SmallMultiples returns one station-scoped series per station, in order.
func SmallMultiples(metric string, period PeriodView, stations []StationRecord) []MetricSeries {
	out := make([]MetricSeries, len(stations))
	for i, s := range stations {
		out[i] = Series(metric, period, []StationRecord{s}, Scope{Station: s.Station})
		out[i].Scope = s.Label()
	}
	return out
}

// AggregateResult summarizes a period's latest month. Nil statistics mean no
// station contributed a value.
type AggregateResult struct {
	Period        string   `json:"period"`
	Month         string   `json:"month,omitempty"`
	Scope         string   `json:"scope"`
	Stations      int      `json:"stations"`
	MeanPH        *float64 `json:"mean_ph"`
	MeanDO        *float64 `json:"mean_do"`
	MeanBOD       *float64 `json:"mean_bod"`
	MaxFecal      *float64 `json:"max_fecal_coliform"`
	MinFecal      *float64 `json:"min_fecal_coliform"`
	CompliancePct int      `json:"compliance_pct"`
}

// KPIs computes the scalar summary for the last month of period. For the
// all-stations scope: mean pH, DO and BOD, min/max fecal coliform, and the
// share of stations meeting both PHInRange and DOAdequate. A single station
// reports its own values and a compliance of 0 or 100.
func KPIs(period PeriodView, stations []StationRecord, scope Scope) AggregateResult {
	scope, rec := ResolveScope(stations, scope)
	month, _ := period.LatestMonth()
	res := AggregateResult{Period: period.Key, Month: month, Scope: scope.String()}

	if !scope.All() {
		res.Stations = 1
		res.MeanPH = optional(rec.Value(MetricPH, month))
		res.MeanDO = optional(rec.Value(MetricDO, month))
		res.MeanBOD = optional(rec.Value(MetricBOD, month))
		res.MaxFecal = optional(rec.Value(MetricFecalColiform, month))
		res.MinFecal = res.MaxFecal
		if Compliant(rec, month) {
			res.CompliancePct = pctMaximum
		}
		return res
	}

	res.Stations = len(stations)
	res.MeanPH = roundedMean(monthValues(stations, MetricPH, month, false))
	res.MeanDO = roundedMean(monthValues(stations, MetricDO, month, false))
	res.MeanBOD = roundedMean(monthValues(stations, MetricBOD, month, false))
	fecal := monthValues(stations, MetricFecalColiform, month, false)
	if lo, hi, ok := minMax(fecal); ok {
		res.MinFecal, res.MaxFecal = ptr(lo), ptr(hi)
	}
	res.CompliancePct = CompliancePct(stations, month)
	return res
}

// PHInRange reports whether pH is within [PHMin, PHMax].
func PHInRange(ph float64) bool {
	return ph >= PHMin && ph <= PHMax
}

// DOAdequate reports whether dissolved oxygen meets DOMinimum.
func DOAdequate(do float64) bool {
	return do >= DOMinimum
}

// Compliant reports whether a station meets both predicates in month.
// A station missing either reading is not compliant.
func Compliant(rec StationRecord, month string) bool {
	ph, okPH := rec.Value(MetricPH, month)
	do, okDO := rec.Value(MetricDO, month)
	return okPH && okDO && PHInRange(ph) && DOAdequate(do)
}

// CompliancePct is the rounded percentage of stations compliant in month,
// over all stations including those without readings. Empty input yields 0.
func CompliancePct(stations []StationRecord, month string) int {
	if len(stations) == 0 {
		return 0
	}
	meet := 0
	for _, s := range stations {
		if Compliant(s, month) {
			meet++
		}
	}
	return int(math.Round(float64(meet) / float64(len(stations)) * pctMaximum))
}

// monthValues collects the present normalized values of metric in month.
func monthValues(stations []StationRecord, metric, month string, withConstants bool) []float64 {
	vals := make([]float64, 0, len(stations))
	for _, s := range stations {
		var v float64
		var ok bool
		if withConstants {
			v, ok = s.valueOrConstant(metric, month)
		} else {
			v, ok = s.Value(metric, month)
		}
		if ok {
			vals = append(vals, v)
		}
	}
	return vals
}

// Mean is the arithmetic mean; false for an empty set.
func Mean(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	n := float64(len(vals))
	if !math.IsInf(sum, 0) {
		return sum / n, true
	}
	// The sum of finite values overflowed; accumulate pre-scaled terms instead.
	m := 0.0
	for _, v := range vals {
		m += v / n
	}
	return m, true
}

func roundedMean(vals []float64) *float64 {
	m, ok := Mean(vals)
	if !ok {
		return nil
	}
	return ptr(Round2(m))
}

func minMax(vals []float64) (float64, float64, bool) {
	if len(vals) == 0 {
		return 0, 0, false
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, true
}

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return roundTo(v, 100)
}

// roundTo rounds v to the nearest 1/scale. Magnitudes too large to scale are
// already integral and returned as is.
func roundTo(v, scale float64) float64 {
	if math.Abs(v) > math.MaxFloat64/scale {
		return v
	}
	return math.Round(v*scale) / scale
}

func ptr(v float64) *float64 {
	return &v
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return ptr(v)
}
