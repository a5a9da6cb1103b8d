// Command validate performs data integrity checks on the dashboard inputs:
// JSON syntax of every data file, native dataset shape, secondary export
// alignment, station coverage of the location file, and the boundary
// fallback.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data-dir data \
//	  -dataset data/monitoring_stations.json \
//	  -secondary data/water_quality_2024_Oct-Dec.csv \
//	  -stations data/stations_with_coords.json \
//	  -boundary data/laguna_boundary.geojson
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/laguna-water-quality/internal/config"
	"github.com/couchcryptid/laguna-water-quality/internal/domain"
)

// phase tracks pass/fail for a validation phase. Warnings are reported but
// do not fail the phase.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type inputs struct {
	dataDir   string
	dataset   string
	secondary string
	stations  string
	boundary  string
	layout    string
}

func main() {
	in := inputs{}
	flag.StringVar(&in.dataDir, "data-dir", "data", "directory whose JSON and GeoJSON files are syntax-checked")
	flag.StringVar(&in.dataset, "dataset", "data/monitoring_stations.json", "native dataset path")
	flag.StringVar(&in.secondary, "secondary", "data/water_quality_2024_Oct-Dec.csv", "secondary export path (empty to skip)")
	flag.StringVar(&in.stations, "stations", "data/stations_with_coords.json", "station location file (empty to skip)")
	flag.StringVar(&in.boundary, "boundary", "data/laguna_boundary.geojson", "boundary fallback GeoJSON (empty to skip)")
	flag.StringVar(&in.layout, "layout", "", "secondary layout YAML (empty for the built-in layout)")
	flag.Parse()

	if code := run(in); code != 0 {
		os.Exit(code)
	}
}

func run(in inputs) int {
	fmt.Println("=== Water Quality Data Validation ===")
	fmt.Println()

	layout, err := config.LoadLayout(in.layout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	data, err := os.ReadFile(in.dataset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read dataset: %v\n", err)
		return 1
	}
	collection, err := domain.DecodeCollection(bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: decode dataset: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateJSONSyntax(in.dataDir),
		validateDataset(collection),
		validateSecondary(in.secondary, collection, layout),
		validateStations(in.stations, collection.Stations(layout.BaseKey)),
		validateBoundary(in.boundary),
	}

	return report(phases, collection)
}

func report(phases []*phase, collection *domain.Collection) int {
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		} else if len(p.warnings) > 0 {
			status = fmt.Sprintf("\033[33mPASS (%d warnings)\033[0m", len(p.warnings))
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	records := 0
	for _, k := range collection.Keys() {
		records += len(collection.Stations(k))
	}
	fmt.Println()
	fmt.Printf("Dataset: %d periods, %d station records\n", collection.Len(), records)

	for _, p := range phases {
		if len(p.errors) == 0 && len(p.warnings) == 0 {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
		for _, w := range p.warnings {
			fmt.Printf("  [warn] %s\n", w)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateJSONSyntax checks that every .json and .geojson file under dir parses.
func validateJSONSyntax(dir string) *phase {
	p := &phase{name: "JSON syntax"}
	fmt.Printf("Checking JSON files under %s\n", dir)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		if d.IsDir() || (ext != ".json" && ext != ".geojson") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			p.errorf("%s: %v", path, err)
			return nil
		}
		if !json.Valid(data) {
			p.errorf("%s: invalid JSON", path)
		}
		return nil
	})
	if err != nil {
		p.errorf("walk %s: %v", dir, err)
	}
	return p
}

// validateDataset checks period keys, station identities, month labels, and
// cell parseability of the native dataset.
func validateDataset(c *domain.Collection) *phase {
	p := &phase{name: "Native dataset integrity"}

	if c.Len() == 0 {
		p.errorf("dataset has no periods")
		return p
	}

	allMonths := map[string]bool{}
	for _, q := range []string{"Q1", "Q2", "Q3", "Q4"} {
		for _, m := range domain.QuarterMonths(q) {
			allMonths[m] = true
		}
	}

	for _, view := range domain.DerivePeriods(c.Keys()) {
		if !view.Dated() {
			p.warnf("%s: key has no quarter and year; it will not chart", view.Key)
		}
		periodMonths := map[string]bool{}
		for _, m := range view.Months {
			periodMonths[m] = true
		}

		records := c.Stations(view.Key)
		if len(records) == 0 {
			p.warnf("%s: no station records", view.Key)
		}
		seen := map[string]bool{}
		for i, rec := range records {
			if rec.Station == "" {
				p.errorf("%s[%d]: missing Station", view.Key, i)
			} else if seen[rec.Station] {
				p.errorf("%s: duplicate station %q", view.Key, rec.Station)
			}
			seen[rec.Station] = true

			for metric, cells := range rec.Readings {
				if _, ok := domain.LookupMetric(metric); !ok {
					p.warnf("%s/%s: metric %s is not in the catalog", view.Key, rec.Station, metric)
				}
				for month, cell := range cells {
					switch {
					case !allMonths[month]:
						p.errorf("%s/%s/%s: unknown month label %q", view.Key, rec.Station, metric, month)
					case view.Dated() && !periodMonths[month]:
						p.errorf("%s/%s/%s: month %s is outside %s", view.Key, rec.Station, metric, month, view.Quarter)
					}
					if !cell.Present() && cell.Raw != "" {
						p.errorf("%s/%s/%s/%s: unparseable value %q", view.Key, rec.Station, metric, month, cell.Raw)
					}
				}
			}
		}
	}
	return p
}

// validateSecondary parses the export against the base period and flags rows
// that could not be attributed to a known station.
func validateSecondary(path string, c *domain.Collection, layout domain.ColumnLayout) *phase {
	p := &phase{name: "Secondary export alignment"}
	if path == "" {
		p.warnf("no secondary export configured")
		return p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read %s: %v", path, err)
		return p
	}

	base := c.Stations(layout.BaseKey)
	if len(base) == 0 {
		p.errorf("base period %s not found in dataset", layout.BaseKey)
	}

	_, r := domain.ParseSecondary(string(data), base, layout)
	if r.Skipped {
		p.errorf("export skipped: %s", r.Reason)
		return p
	}
	if r.Rows != len(base) {
		p.errorf("export has %d rows, base period %s has %d stations", r.Rows, layout.BaseKey, len(base))
	}
	for _, id := range r.Synthesized {
		p.errorf("row attributed to synthesized station %s", id)
	}
	for _, row := range r.Unmatched {
		p.errorf("row %s matched no base station", row)
	}
	return p
}

// validateStations checks every base station has a location entry.
func validateStations(path string, base []domain.StationRecord) *phase {
	p := &phase{name: "Station location coverage"}
	if path == "" {
		p.warnf("no station location file configured")
		return p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read %s: %v", path, err)
		return p
	}
	locs, err := domain.DecodeStationLocations(data)
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	byStation := make(map[string]domain.StationLocation, len(locs))
	for _, l := range locs {
		byStation[l.Station] = l
	}
	for _, rec := range base {
		l, ok := byStation[rec.Station]
		switch {
		case !ok:
			p.errorf("station %s has no location entry", rec.Station)
		case !l.Located():
			p.warnf("station %s (%s) has no coordinates and will not appear on the map", rec.Station, l.Location)
		}
	}
	return p
}

// validateBoundary checks the fallback outline is a non-empty FeatureCollection.
func validateBoundary(path string) *phase {
	p := &phase{name: "Boundary fallback"}
	if path == "" {
		p.warnf("no boundary fallback configured")
		return p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read %s: %v", path, err)
		return p
	}
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &fc); err != nil {
		p.errorf("decode %s: %v", path, err)
		return p
	}
	if fc.Type != "FeatureCollection" {
		p.errorf("%s: type is %q, want FeatureCollection", path, fc.Type)
	}
	if len(fc.Features) == 0 {
		p.errorf("%s: no features", path)
	}
	return p
}
