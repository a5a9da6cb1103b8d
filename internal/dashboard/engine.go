package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/laguna-water-quality/internal/cache"
	"github.com/couchcryptid/laguna-water-quality/internal/domain"
	"github.com/couchcryptid/laguna-water-quality/internal/observability"
)

var (
	// ErrNotLoaded is returned by queries issued before the first dataset swap.
	ErrNotLoaded = errors.New("dataset not loaded")
	// ErrUnknownMetric is returned for metric keys outside the catalog.
	ErrUnknownMetric = errors.New("unknown metric")
)

// Selection is the user-facing query: which metric, which period, which
// station. Empty fields select defaults (pH, first period, all stations,
// latest month).
type Selection struct {
	Metric  string
	Year    string
	Quarter string
	Station string
	Month   string
}

// Engine serves dashboard queries over the current dataset. Results are
// memoized per dataset version; callers must treat returned values as
// read-only because they may be shared.
type Engine struct {
	current atomic.Pointer[Dataset]
	memo    *cache.LRU[string, any]
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewEngine creates an Engine with a memo of cacheSize entries.
func NewEngine(cacheSize int, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		memo:    cache.New[string, any](cacheSize),
		logger:  logger,
		metrics: metrics,
	}
}

// Swap installs ds as the current dataset. It returns false, leaving the
// engine untouched, when ds has the same version as the current dataset.
func (e *Engine) Swap(ds *Dataset) bool {
	if ds == nil {
		return false
	}
	if cur := e.current.Load(); cur != nil && cur.Version == ds.Version {
		return false
	}

	e.current.Store(ds)
	e.memo.Purge()
	e.metrics.DatasetPeriods.Set(float64(ds.Collection.Len()))
	e.metrics.DatasetStations.Set(float64(ds.StationRecords()))
	e.logger.Info("dataset swapped",
		"version", ds.Version,
		"periods", ds.Collection.Len(),
		"locations", len(ds.Locations),
	)
	return true
}

// Current returns the dataset being served.
func (e *Engine) Current() (*Dataset, error) {
	ds := e.current.Load()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	return ds, nil
}

// CheckReadiness reports ready once a dataset has been loaded.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if e.current.Load() == nil {
		return ErrNotLoaded
	}
	return nil
}

// PeriodIndex lists the selectable periods of the current dataset.
type PeriodIndex struct {
	Periods  []domain.PeriodView `json:"periods"`
	Years    []string            `json:"years"`
	Quarters map[string][]string `json:"quarters"`
	Default  domain.PeriodView   `json:"default"`
}

// Periods returns the period index.
func (e *Engine) Periods() (PeriodIndex, error) {
	ds, err := e.Current()
	if err != nil {
		return PeriodIndex{}, err
	}
	return memoize(e, ds, "periods", "", func() PeriodIndex {
		years := domain.Years(ds.Periods)
		quarters := make(map[string][]string, len(years))
		for _, y := range years {
			quarters[y] = domain.QuartersForYear(ds.Periods, y)
		}
		return PeriodIndex{
			Periods:  ds.Periods,
			Years:    years,
			Quarters: quarters,
			Default:  ds.selectPeriod("", ""),
		}
	}), nil
}

// StationOption is one entry of the station picker.
type StationOption struct {
	Station string `json:"station"`
	Label   string `json:"label"`
}

// StationList is the station picker for a period.
type StationList struct {
	Period   string          `json:"period"`
	Stations []StationOption `json:"stations"`
}

// Stations lists the stations of the selected period.
func (e *Engine) Stations(sel Selection) (StationList, error) {
	ds, err := e.Current()
	if err != nil {
		return StationList{}, err
	}
	period := ds.selectPeriod(sel.Year, sel.Quarter)
	return memoize(e, ds, "stations", period.Key, func() StationList {
		records := ds.Collection.Stations(period.Key)
		labels := domain.StationOptions(records)
		out := StationList{Period: period.Key, Stations: make([]StationOption, len(records))}
		for i, r := range records {
			out.Stations[i] = StationOption{Station: r.Station, Label: labels[i]}
		}
		return out
	}), nil
}

// Series returns the monthly series for the selection.
func (e *Engine) Series(sel Selection) (domain.MetricSeries, error) {
	q, err := e.resolve(sel)
	if err != nil {
		return domain.MetricSeries{}, err
	}
	return memoize(e, q.ds, "series", q.key(), func() domain.MetricSeries {
		return domain.Series(q.metric, q.period, q.stations(), q.scope)
	}), nil
}

// KPIs returns the latest-month summary for the selection. The metric is
// ignored; KPIs always cover pH, DO, BOD and fecal coliform.
func (e *Engine) KPIs(sel Selection) (domain.AggregateResult, error) {
	sel.Metric = ""
	q, err := e.resolve(sel)
	if err != nil {
		return domain.AggregateResult{}, err
	}
	return memoize(e, q.ds, "kpis", q.key(), func() domain.AggregateResult {
		return domain.KPIs(q.period, q.stations(), q.scope)
	}), nil
}

// HistogramView is a metric's distribution across stations in one month.
type HistogramView struct {
	Metric string                `json:"metric"`
	Period string                `json:"period"`
	Month  string                `json:"month,omitempty"`
	Bins   []domain.HistogramBin `json:"bins"`
}

// Histogram distributes the selected metric across all stations of the
// period. The month defaults to the period's latest month.
func (e *Engine) Histogram(sel Selection) (HistogramView, error) {
	q, err := e.resolve(sel)
	if err != nil {
		return HistogramView{}, err
	}
	month := sel.Month
	if month == "" {
		month, _ = q.period.LatestMonth()
	}
	return memoize(e, q.ds, "histogram", q.metric+"|"+q.period.Key+"|"+month, func() HistogramView {
		return HistogramView{
			Metric: q.metric,
			Period: q.period.Key,
			Month:  month,
			Bins:   domain.Histogram(q.metric, month, q.stations()),
		}
	}), nil
}

// MarkerView is the map layer for a metric.
type MarkerView struct {
	Metric  string             `json:"metric"`
	Period  string             `json:"period"`
	Domain  domain.ValueDomain `json:"domain"`
	Center  [2]float64         `json:"center"`
	Markers []domain.Marker    `json:"markers"`
}

// Markers encodes the selected metric for every located station. A station
// selection filters markers but not the color domain.
func (e *Engine) Markers(sel Selection) (MarkerView, error) {
	q, err := e.resolve(sel)
	if err != nil {
		return MarkerView{}, err
	}
	return memoize(e, q.ds, "markers", q.key(), func() MarkerView {
		markers, d := domain.Markers(q.metric, q.period.Months, q.stations(), q.ds.Locations, q.scope.Station)
		lat, lon := domain.Centroid(q.ds.Locations)
		return MarkerView{
			Metric:  q.metric,
			Period:  q.period.Key,
			Domain:  d,
			Center:  [2]float64{lat, lon},
			Markers: markers,
		}
	}), nil
}

// LegendView is the color legend matching Markers.
type LegendView struct {
	Metric  string                `json:"metric"`
	Label   string                `json:"label"`
	Unit    string                `json:"unit,omitempty"`
	Domain  domain.ValueDomain    `json:"domain"`
	Samples []domain.LegendSample `json:"samples"`
	NoData  domain.Color          `json:"no_data"`
}

// Legend returns min, mid and max swatches for the selected metric.
func (e *Engine) Legend(sel Selection) (LegendView, error) {
	sel.Station = ""
	q, err := e.resolve(sel)
	if err != nil {
		return LegendView{}, err
	}
	return memoize(e, q.ds, "legend", q.key(), func() LegendView {
		m, _ := domain.LookupMetric(q.metric)
		d := domain.MetricDomain(q.metric, q.period.Months, q.stations(), q.ds.Locations)
		return LegendView{
			Metric:  q.metric,
			Label:   m.Label,
			Unit:    m.Unit,
			Domain:  d,
			Samples: domain.LegendSamples(d),
			NoData:  domain.NoDataColor,
		}
	}), nil
}

// SmallMultiples returns one series per station of the selected period.
func (e *Engine) SmallMultiples(sel Selection) ([]domain.MetricSeries, error) {
	sel.Station = ""
	q, err := e.resolve(sel)
	if err != nil {
		return nil, err
	}
	return memoize(e, q.ds, "small_multiples", q.key(), func() []domain.MetricSeries {
		return domain.SmallMultiples(q.metric, q.period, q.stations())
	}), nil
}

// IngestReport describes what the secondary source contributed to the
// current dataset.
func (e *Engine) IngestReport() (domain.IngestReport, error) {
	ds, err := e.Current()
	if err != nil {
		return domain.IngestReport{}, err
	}
	return ds.Report, nil
}

// query is a Selection resolved against one dataset.
type query struct {
	ds     *Dataset
	metric string
	period domain.PeriodView
	scope  domain.Scope
}

func (q query) stations() []domain.StationRecord {
	return q.ds.Collection.Stations(q.period.Key)
}

func (q query) key() string {
	return q.metric + "|" + q.period.Key + "|" + q.scope.String()
}

func (e *Engine) resolve(sel Selection) (query, error) {
	ds, err := e.Current()
	if err != nil {
		return query{}, err
	}

	metric := sel.Metric
	if metric == "" {
		metric = domain.MetricPH
	}
	if _, ok := domain.LookupMetric(metric); !ok {
		return query{}, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}

	period := ds.selectPeriod(sel.Year, sel.Quarter)
	scope, _ := domain.ResolveScope(ds.Collection.Stations(period.Key), domain.ParseScope(sel.Station))
	return query{ds: ds, metric: metric, period: period, scope: scope}, nil
}

// memoize returns the cached result for (dataset version, op, key) or
// computes and stores it.
func memoize[T any](e *Engine, ds *Dataset, op, key string, compute func() T) T {
	cacheKey := ds.Version + "|" + op + "|" + key
	if v, ok := e.memo.Get(cacheKey); ok {
		if out, ok := v.(T); ok {
			e.metrics.QueryCache.WithLabelValues(op, "hit").Inc()
			return out
		}
	}
	e.metrics.QueryCache.WithLabelValues(op, "miss").Inc()

	start := time.Now()
	out := compute()
	e.metrics.QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	e.memo.Put(cacheKey, out)
	return out
}
