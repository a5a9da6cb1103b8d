package dashboard

import (
	"time"

	"github.com/couchcryptid/laguna-water-quality/internal/domain"
)

// PeriodSummary is the all-stations KPI snapshot of one dated period, as
// published to downstream consumers.
type PeriodSummary struct {
	DatasetVersion string                 `json:"dataset_version"`
	Period         string                 `json:"period"`
	Quarter        string                 `json:"quarter"`
	Year           string                 `json:"year"`
	KPIs           domain.AggregateResult `json:"kpis"`
	GeneratedAt    time.Time              `json:"generated_at"`
}

// Summaries computes one summary per dated period, in dataset order.
// Undated keys carry no months and are skipped.
func Summaries(ds *Dataset) []PeriodSummary {
	out := make([]PeriodSummary, 0, len(ds.Periods))
	for _, p := range ds.Periods {
		if !p.Dated() {
			continue
		}
		out = append(out, PeriodSummary{
			DatasetVersion: ds.Version,
			Period:         p.Key,
			Quarter:        p.Quarter,
			Year:           p.Year,
			KPIs:           domain.KPIs(p, ds.Collection.Stations(p.Key), domain.AllStations),
			GeneratedAt:    ds.LoadedAt,
		})
	}
	return out
}
