package domain

// stationWith builds a record with one metric's monthly cells.
func stationWith(code, location string, readings map[string]MonthlyCells) StationRecord {
	if readings == nil {
		readings = map[string]MonthlyCells{}
	}
	return StationRecord{
		Station:   code,
		Location:  location,
		Readings:  readings,
		Constants: map[string]Cell{},
	}
}

func months(pairs ...any) MonthlyCells {
	out := MonthlyCells{}
	for i := 0; i+1 < len(pairs); i += 2 {
		out[pairs[i].(string)] = ParseCell(pairs[i+1])
	}
	return out
}

func q1() PeriodView {
	return ParsePeriodKey("LagunaLakeStations_Q1_2024")
}
