package domain

// Tracked metric keys as they appear in the monitoring datasets.
const (
	MetricPH            = "pH_units"
	MetricDO            = "DO_mgL"
	MetricBOD           = "BOD_mgL"
	MetricFecalColiform = "FecalColiform_MPN_100mL"
	MetricAmmonia       = "Ammonia_mgL"
	MetricNitrate       = "Nitrate_mgL"
	MetricPhosphate     = "Phosphate_mgL"
	MetricTSS           = "TSS_mgL"
	MetricChloride      = "Chloride_mgL"
)

// Metric describes a tracked water-quality parameter.
type Metric struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Unit  string `json:"unit,omitempty"`
	// ChartDomain is the fixed y-axis range for line charts; nil means auto.
	ChartDomain *[2]float64 `json:"chart_domain,omitempty"`
}

// Metrics is the fixed catalog in display order.
var Metrics = []Metric{
	{Key: MetricPH, Label: "pH", ChartDomain: &[2]float64{6, 9}},
	{Key: MetricDO, Label: "Dissolved O2", Unit: "mg/L", ChartDomain: &[2]float64{0, 12}},
	{Key: MetricBOD, Label: "Biochemical Oxygen Demand (BOD)", Unit: "mg/L"},
	{Key: MetricFecalColiform, Label: "Fecal Coliform", Unit: "MPN/100mL"},
	{Key: MetricAmmonia, Label: "Ammonia", Unit: "mg/L"},
	{Key: MetricNitrate, Label: "Nitrate", Unit: "mg/L"},
	{Key: MetricPhosphate, Label: "Phosphate", Unit: "mg/L"},
	{Key: MetricTSS, Label: "TSS", Unit: "mg/L"},
	{Key: MetricChloride, Label: "Chloride", Unit: "mg/L"},
}

// LookupMetric returns the catalog entry for key.
func LookupMetric(key string) (Metric, bool) {
	for _, m := range Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return Metric{}, false
}
