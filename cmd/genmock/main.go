// Command genmock writes a deterministic mock dataset for local runs and
// tests: a native per-quarter JSON file, a secondary quarter export in the
// built-in layout, and a station location file. The same seed always
// produces byte-identical output.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data/mock -year 2023 -quarters Q1,Q2,Q3 -seed 7
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/laguna-water-quality/internal/domain"
)

type stationDef struct {
	code     string
	location string
	lat, lon float64
}

var stationDefs = []stationDef{
	{"I", "Central West Bay", 14.3833, 121.1833},
	{"II", "East Bay", 14.3000, 121.4000},
	{"IV", "Central Bay", 14.3200, 121.2500},
	{"V", "Northern West Bay", 14.4500, 121.1500},
	{"VIII", "South Bay", 14.2200, 121.3000},
	{"XV", "San Pedro (West Bay)", 14.3700, 121.0700},
	{"XVI", "Sta. Rosa (West Bay)", 14.3100, 121.1200},
	{"XVII", "Fish Sanctuary (Central Bay)", 14.3500, 121.2800},
	{"XVIII", "Pagsanjan (East Bay)", 14.2700, 121.4500},
}

// metricRange is the plausible spread of a metric. Values below censorBelow
// are reported as "<censorBelow".
type metricRange struct {
	metric      string
	lo, hi      float64
	decimals    int
	censorBelow float64
}

var ranges = []metricRange{
	{metric: domain.MetricPH, lo: 6.4, hi: 9.1, decimals: 1},
	{metric: domain.MetricDO, lo: 1.5, hi: 10, decimals: 1, censorBelow: 2},
	{metric: domain.MetricBOD, lo: 0.5, hi: 6, decimals: 0, censorBelow: 1},
	{metric: domain.MetricFecalColiform, lo: 2, hi: 24000, decimals: 0, censorBelow: 18},
	{metric: domain.MetricAmmonia, lo: 0.005, hi: 0.5, decimals: 3, censorBelow: 0.01},
	{metric: domain.MetricNitrate, lo: 0.01, hi: 1.2, decimals: 2, censorBelow: 0.05},
	{metric: domain.MetricPhosphate, lo: 0.005, hi: 0.3, decimals: 3, censorBelow: 0.01},
	{metric: domain.MetricTSS, lo: 5, hi: 90, decimals: 0},
	{metric: domain.MetricChloride, lo: 90, hi: 650, decimals: 0},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "data/mock", "output directory")
	year := flag.Int("year", 2023, "year of the native periods")
	quarters := flag.String("quarters", "Q1,Q2,Q3", "comma-separated native quarters")
	stations := flag.Int("stations", 5, "number of stations (max 9)")
	missing := flag.Float64("missing", 0.05, "probability that a cell is left blank")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *stations < 1 || *stations > len(stationDefs) {
		return fmt.Errorf("-stations must be between 1 and %d", len(stationDefs))
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	g := &generator{rng: rand.New(rand.NewPCG(*seed, *seed)), missing: *missing}
	defs := stationDefs[:*stations]

	collection := domain.NewCollection()
	var base string
	for _, q := range strings.Split(*quarters, ",") {
		q = strings.TrimSpace(q)
		months := domain.QuarterMonths(q)
		if len(months) == 0 {
			return fmt.Errorf("unknown quarter %q", q)
		}
		key := fmt.Sprintf("LagunaLakeStations_%s_%d", q, *year)
		if base == "" {
			base = key
		}
		collection = collection.With(key, g.period(defs, months))
		log.Printf("%s: %d stations", key, len(defs))
	}

	if err := writeJSON(filepath.Join(*outDir, "monitoring_stations.json"), collection); err != nil {
		return err
	}

	layout := domain.DefaultLayout()
	layout.BaseKey = base
	layout.PeriodKey = fmt.Sprintf("LagunaLakeStations_Q4_%d", *year)
	export := g.export(len(defs), layout)
	exportPath := filepath.Join(*outDir, fmt.Sprintf("water_quality_%d_Oct-Dec.csv", *year))
	if err := os.WriteFile(exportPath, []byte(export), 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	log.Printf("wrote export: %s", exportPath)

	locs := make([]domain.StationLocation, len(defs))
	for i, d := range defs {
		locs[i] = domain.StationLocation{Station: d.code, Location: d.location, Lat: domain.Coord(d.lat), Lon: domain.Coord(d.lon)}
	}
	// The last station is left unlocated so the no-coordinates path is exercised.
	if len(locs) > 1 {
		locs[len(locs)-1].Lat, locs[len(locs)-1].Lon = domain.Coordinate{}, domain.Coordinate{}
	}
	return writeJSON(filepath.Join(*outDir, "stations_with_coords.json"), locs)
}

type generator struct {
	rng     *rand.Rand
	missing float64
}

func (g *generator) period(defs []stationDef, months []string) []domain.StationRecord {
	out := make([]domain.StationRecord, len(defs))
	for i, d := range defs {
		rec := domain.StationRecord{
			Station:   d.code,
			Location:  d.location,
			Readings:  make(map[string]domain.MonthlyCells, len(ranges)),
			Constants: map[string]domain.Cell{},
		}
		for _, r := range ranges {
			cells := make(domain.MonthlyCells, len(months))
			for _, m := range months {
				cells[m] = g.cell(r)
			}
			rec.Readings[r.metric] = cells
		}
		out[i] = rec
	}
	return out
}

func (g *generator) cell(r metricRange) domain.Cell {
	if g.rng.Float64() < g.missing {
		return domain.Missing
	}
	v := r.lo + g.rng.Float64()*(r.hi-r.lo)
	if r.censorBelow > 0 && v < r.censorBelow {
		return domain.CensoredCell(r.censorBelow)
	}
	scale := math.Pow(10, float64(r.decimals))
	return domain.NumberCell(math.Round(v*scale) / scale)
}

// export renders rows in the layout's column order, leaving gaps blank.
func (g *generator) export(rows int, layout domain.ColumnLayout) string {
	months := domain.ParsePeriodKey(layout.PeriodKey).Months
	width := 1
	for _, c := range layout.Columns {
		width = max(width, c.Start+len(months))
	}

	var b strings.Builder
	title := make([]string, width)
	sub := make([]string, width)
	title[0] = "Row"
	for _, c := range layout.Columns {
		m, _ := domain.LookupMetric(c.Metric)
		title[c.Start] = m.Label
		copy(sub[c.Start:], months)
	}
	b.WriteString(strings.Join(title, layout.Delimiter) + "\n")
	b.WriteString(strings.Join(sub, layout.Delimiter) + "\n")

	byMetric := map[string]metricRange{}
	for _, r := range ranges {
		byMetric[r.metric] = r
	}
	for i := range rows {
		cols := make([]string, width)
		cols[0] = strconv.Itoa(i + 1)
		for _, c := range layout.Columns {
			for j := range months {
				cols[c.Start+j] = cellText(g.cell(byMetric[c.Metric]))
			}
		}
		b.WriteString(strings.Join(cols, layout.Delimiter) + "\n")
	}
	return b.String()
}

func cellText(c domain.Cell) string {
	switch c.Kind {
	case domain.CellCensored:
		return c.Raw
	case domain.CellNumber:
		return strconv.FormatFloat(c.Value, 'f', -1, 64)
	default:
		return ""
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Printf("wrote %s", path)
	return nil
}
