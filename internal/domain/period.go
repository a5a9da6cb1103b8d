package domain

import (
	"regexp"
	"sort"
)

// periodKeyRe finds the embedded quarter and year in a dataset key,
// e.g. "LagunaLakeStations_Q1_2024" -> Q1, 2024.
var periodKeyRe = regexp.MustCompile(`Q([1-4])_(\d{4})`)

var quarterMonths = map[string][]string{
	"Q1": {"Jan", "Feb", "Mar"},
	"Q2": {"Apr", "May", "Jun"},
	"Q3": {"Jul", "Aug", "Sep"},
	"Q4": {"Oct", "Nov", "Dec"},
}

var calendarMonths = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// PeriodView identifies a reporting period and its lookup key in the unified
// collection. Undated keys have empty Quarter and Year and no months.
type PeriodView struct {
	Key     string   `json:"key"`
	Quarter string   `json:"quarter,omitempty"`
	Year    string   `json:"year,omitempty"`
	Months  []string `json:"months"`
}

// Dated reports whether the key carried a quarter and year.
func (p PeriodView) Dated() bool {
	return p.Year != "" && p.Quarter != ""
}

// LatestMonth returns the last month of the period.
func (p PeriodView) LatestMonth() (string, bool) {
	if len(p.Months) == 0 {
		return "", false
	}
	return p.Months[len(p.Months)-1], true
}

// Label is "Q1 2024" for dated periods and the raw key otherwise.
func (p PeriodView) Label() string {
	if !p.Dated() {
		return p.Key
	}
	return p.Quarter + " " + p.Year
}

// QuarterMonths returns the canonical month labels for a quarter ("Q1".."Q4").
func QuarterMonths(quarter string) []string {
	months, ok := quarterMonths[quarter]
	if !ok {
		return []string{}
	}
	out := make([]string, len(months))
	copy(out, months)
	return out
}

// ParsePeriodKey builds the view for a single dataset key.
func ParsePeriodKey(key string) PeriodView {
	m := periodKeyRe.FindStringSubmatch(key)
	if m == nil {
		return PeriodView{Key: key, Months: []string{}}
	}
	q := "Q" + m[1]
	return PeriodView{Key: key, Quarter: q, Year: m[2], Months: QuarterMonths(q)}
}

// DerivePeriods maps dataset keys, in order, to period views.
func DerivePeriods(keys []string) []PeriodView {
	views := make([]PeriodView, len(keys))
	for i, k := range keys {
		views[i] = ParsePeriodKey(k)
	}
	return views
}

// Years returns the sorted distinct years across views.
func Years(views []PeriodView) []string {
	seen := make(map[string]bool)
	years := []string{}
	for _, v := range views {
		if v.Year == "" || seen[v.Year] {
			continue
		}
		seen[v.Year] = true
		years = append(years, v.Year)
	}
	sort.Strings(years)
	return years
}

// QuartersForYear lists the quarters available for year in view order.
func QuartersForYear(views []PeriodView, year string) []string {
	quarters := []string{}
	for _, v := range views {
		if v.Year == year && v.Quarter != "" {
			quarters = append(quarters, v.Quarter)
		}
	}
	return quarters
}

// SelectPeriod finds the view matching year and quarter, falling back to the
// first view. It returns false only when views is empty.
func SelectPeriod(views []PeriodView, year, quarter string) (PeriodView, bool) {
	if len(views) == 0 {
		return PeriodView{}, false
	}
	for _, v := range views {
		if v.Year == year && v.Quarter == quarter && v.Dated() {
			return v, true
		}
	}
	return views[0], true
}

// FindPeriod looks a view up by its dataset key.
func FindPeriod(views []PeriodView, key string) (PeriodView, bool) {
	for _, v := range views {
		if v.Key == key {
			return v, true
		}
	}
	return PeriodView{}, false
}

// monthIndex orders month labels on the calendar; unknown labels sort last.
func monthIndex(month string) int {
	for i, m := range calendarMonths {
		if m == month {
			return i
		}
	}
	return len(calendarMonths)
}
