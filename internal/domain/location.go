package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Default map center over Laguna de Bay, used when no station is located.
const (
	DefaultCenterLat = 14.25
	DefaultCenterLon = 121.2
)

// Coordinate is a latitude or longitude that may arrive as a number, a
// numeric string (as geocoders return them), or null.
type Coordinate struct {
	Value float64
	Valid bool
}

// Coord returns a valid coordinate.
func Coord(v float64) Coordinate {
	return Coordinate{Value: v, Valid: true}
}

// UnmarshalJSON accepts a number, numeric string, or null.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*c = Coordinate{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode coordinate: %w", err)
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*c = Coord(v)
	return nil
}

// MarshalJSON writes the number or null.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// StationLocation places a station on the map.
type StationLocation struct {
	Station  string     `json:"station"`
	Location string     `json:"location"`
	Lat      Coordinate `json:"lat"`
	Lon      Coordinate `json:"lon"`
}

// Located reports whether both coordinates are known.
func (l StationLocation) Located() bool {
	return l.Lat.Valid && l.Lon.Valid
}

// DecodeStationLocations accepts either a bare array of locations or an
// object with a "stations" array.
func DecodeStationLocations(data []byte) ([]StationLocation, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var locs []StationLocation
	if data[0] == '[' {
		if err := json.Unmarshal(data, &locs); err != nil {
			return nil, fmt.Errorf("decode station locations: %w", err)
		}
		return locs, nil
	}

	var wrapped struct {
		Stations []StationLocation `json:"stations"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode station locations: %w", err)
	}
	return wrapped.Stations, nil
}

// Centroid averages located stations, rounded to 4 dp.
func Centroid(locations []StationLocation) (float64, float64) {
	var lats, lons []float64
	for _, l := range locations {
		if !l.Located() {
			continue
		}
		lats = append(lats, l.Lat.Value)
		lons = append(lons, l.Lon.Value)
	}
	lat, ok := Mean(lats)
	if !ok {
		return DefaultCenterLat, DefaultCenterLon
	}
	lon, _ := Mean(lons)
	return roundTo(lat, 1e4), roundTo(lon, 1e4)
}

// Marker is the render-ready map marker for one located station.
type Marker struct {
	Station  string   `json:"station"`
	Location string   `json:"location"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Value    *float64 `json:"value"`
	Color    Color    `json:"color"`
	Radius   int      `json:"radius"`
}

// Markers encodes metric for every located station, optionally restricted to
// one station code. The domain always spans all located stations so that
// filtering does not rescale colors.
func Markers(metric string, months []string, stations []StationRecord, locations []StationLocation, filter string) ([]Marker, ValueDomain) {
	d := MetricDomain(metric, months, stations, locations)

	out := []Marker{}
	for _, loc := range locations {
		if !loc.Located() || (filter != "" && loc.Station != filter) {
			continue
		}
		m := Marker{
			Station:  loc.Station,
			Location: loc.Location,
			Lat:      loc.Lat.Value,
			Lon:      loc.Lon.Value,
			Color:    NoDataColor,
			Radius:   DefaultRadius,
		}
		if rec, ok := FindStation(stations, loc.Station); ok {
			if v, ok := LatestValue(rec, metric, months); ok {
				m.Value = ptr(v)
				m.Color = ColorFor(v, d)
				m.Radius = RadiusFor(v, d)
			}
		}
		out = append(out, m)
	}
	return out, d
}
