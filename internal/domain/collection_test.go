package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nativeFixture = `{
  "LagunaLakeStations_Q2_2024": [
    {"Station": "I", "Location": "Central West Bay",
     "pH_units": {"Apr": 7.4, "May": "7.9", "Jun": null},
     "DO_mgL": {"Apr": "<1.0"},
     "Depth_m": 3}
  ],
  "LagunaLakeStations_Q1_2024": [
    {"Station": 2, "Location": "East Bay", "pH_units": {"Jan": 8.1}}
  ]
}`

func TestDecodeCollection(t *testing.T) {
	c, err := DecodeCollection(strings.NewReader(nativeFixture))
	require.NoError(t, err)

	assert.Equal(t, []string{"LagunaLakeStations_Q2_2024", "LagunaLakeStations_Q1_2024"}, c.Keys(), "source order is kept")

	q2 := c.Stations("LagunaLakeStations_Q2_2024")
	require.Len(t, q2, 1)
	assert.Equal(t, "I - Central West Bay", q2[0].Label())

	v, ok := q2[0].Value(MetricPH, "May")
	require.True(t, ok)
	assert.Equal(t, 7.9, v)

	v, ok = q2[0].Value(MetricDO, "Apr")
	require.True(t, ok)
	assert.Equal(t, 0.5, v)

	_, ok = q2[0].Value(MetricPH, "Jun")
	assert.False(t, ok)

	depth, ok := q2[0].Constants["Depth_m"].Float()
	require.True(t, ok)
	assert.Equal(t, 3.0, depth)

	q1 := c.Stations("LagunaLakeStations_Q1_2024")
	require.Len(t, q1, 1)
	assert.Equal(t, "2", q1[0].Station)
}

func TestDecodeCollection_Errors(t *testing.T) {
	tests := map[string]string{
		"not an object":    `[1,2]`,
		"period not array": `{"Q1_2024": {"Station": "I"}}`,
		"truncated":        `{"Q1_2024": [`,
		"empty":            ``,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeCollection(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestStationRecord_MarshalJSON_StableOrder(t *testing.T) {
	var rec StationRecord
	require.NoError(t, json.Unmarshal([]byte(`{"Depth":3,"pH_units":{"Feb":"7.9","Jan":7.4},"Location":"West Bay","Station":"I"}`), &rec))

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"Station":"I","Location":"West Bay","pH_units":{"Jan":7.4,"Feb":"7.9"},"Depth":3}`, string(out))
}

func TestCollection_With(t *testing.T) {
	c := NewCollection().
		With("A", []StationRecord{{Station: "I"}}).
		With("B", nil)

	replaced := c.With("A", []StationRecord{{Station: "II"}})

	assert.Equal(t, []string{"A", "B"}, replaced.Keys())
	assert.Equal(t, "II", replaced.Stations("A")[0].Station)
	assert.Equal(t, "I", c.Stations("A")[0].Station, "original is unchanged")

	keys := c.Keys()
	keys[0] = "mutated"
	assert.Equal(t, []string{"A", "B"}, c.Keys())

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `{"A":[{"Station":"I","Location":""}],"B":[]}`, string(out))
}

func TestStationOptions(t *testing.T) {
	stations := []StationRecord{{Station: "I", Location: "West"}, {Station: "II", Location: "East"}}
	assert.Equal(t, []string{"I - West", "II - East"}, StationOptions(stations))

	rec, ok := FindStation(stations, "II")
	require.True(t, ok)
	assert.Equal(t, "East", rec.Location)

	_, ok = FindStation(stations, "X")
	assert.False(t, ok)
}
