// Package domain is the normalization-and-aggregation engine for Laguna Lake
// water-quality monitoring data. Apart from [LocateStation], which calls out
// to a [Geocoder], every function here is pure: no I/O and no shared mutable
// state. Results are freshly allocated per call.
//
// # Data Source
//
// Monitoring records come from two formats:
//
//   - A native JSON dataset keyed by period, e.g. "LagunaLakeStations_Q1_2024",
//     each holding an array of station records.
//   - A secondary quarter export as delimited text (two header lines, then one
//     row per station, one column triple per metric). See [DefaultLayout].
//
// Station record shape:
//
//	{"Station": "I", "Location": "Central West Bay",
//	 "pH_units": {"Jan": 7.4, "Feb": "7.9", "Mar": null},
//	 "DO_mgL":   {"Jan": "<1.0", ...}}
//
// # Cell Conventions
//
// Cells may be numbers, numeric strings, censored strings, or null. They are
// converted once into a [Cell] variant:
//
//	7.4      -> number 7.4
//	"7.9"    -> number 7.9
//	"<1.0"   -> censored, reported at half the detection threshold (0.5)
//	null, "" -> missing
//	"n/a"    -> missing (raw text kept for round-tripping)
//
// Non-finite numbers never escape the engine; absent statistics are nil.
//
// # Periods
//
// Keys matching Q<1-4>_<yyyy> map to a quarter and its months:
//
//	Q1 Jan Feb Mar | Q2 Apr May Jun | Q3 Jul Aug Sep | Q4 Oct Nov Dec
//
// Other keys become undated views with no months. Selections that match no
// period fall back to the first key in dataset order.
//
// # Secondary Alignment
//
// Export rows are attached to the stations of a base period by position: row i
// takes the identity of base station i, and rows past the end get "R<i+1>".
// Ordering drift between the two sources silently misattributes values, so
// [AlignStation] is available to match on an explicit station-code column
// instead, reporting unmatched rows.
//
// # Compliance
//
// A station is compliant in a month when 6.5 <= pH <= 8.5 and DO >= 5 mg/L.
// KPIs are taken from the latest month of the selected period only.
//
// # Visual Encoding
//
// Values are scaled within the metric's domain across located stations:
// hue = 120 - round(120t) (green to red), radius = 6 + round(12t).
package domain
