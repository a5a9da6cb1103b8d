package dashboard

import (
	"time"

	"github.com/couchcryptid/laguna-water-quality/internal/domain"
)

// Dataset is one immutable load of the monitoring data. The Engine swaps
// whole datasets; nothing inside one is modified after construction.
type Dataset struct {
	// Version is the content hash of the raw inputs the dataset was built from.
	Version    string
	Collection *domain.Collection
	Periods    []domain.PeriodView
	Locations  []domain.StationLocation
	Report     domain.IngestReport
	LoadedAt   time.Time
}

// NewDataset derives the period index for collection and bundles it with
// the rest of a load.
func NewDataset(version string, collection *domain.Collection, locations []domain.StationLocation, report domain.IngestReport, loadedAt time.Time) *Dataset {
	if collection == nil {
		collection = domain.NewCollection()
	}
	return &Dataset{
		Version:    version,
		Collection: collection,
		Periods:    domain.DerivePeriods(collection.Keys()),
		Locations:  locations,
		Report:     report,
		LoadedAt:   loadedAt,
	}
}

// StationRecords counts records across every period.
func (d *Dataset) StationRecords() int {
	n := 0
	for _, k := range d.Collection.Keys() {
		n += len(d.Collection.Stations(k))
	}
	return n
}

// selectPeriod resolves a year/quarter selection with first-period fallback.
// A year without a quarter selects that year's first quarter. An empty
// dataset yields an undated view with no months.
func (d *Dataset) selectPeriod(year, quarter string) domain.PeriodView {
	if quarter == "" && year != "" {
		if quarters := domain.QuartersForYear(d.Periods, year); len(quarters) > 0 {
			quarter = quarters[0]
		}
	}
	v, ok := domain.SelectPeriod(d.Periods, year, quarter)
	if !ok {
		return domain.PeriodView{Months: []string{}}
	}
	return v
}
