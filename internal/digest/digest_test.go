package digest

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skylog/internal/enrichment"
	"skylog/internal/geo"
	"skylog/internal/operator"
	"skylog/internal/scan"
)

func str(s string) *string { return &s }

func TestTallyTopStable(t *testing.T) {
	tl := newTally[string]()
	for _, k := range []string{"b", "a", "c", "a", "c", "d"} {
		tl.add(k)
	}
	got := tl.top(3)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].key)
	assert.Equal(t, "c", got[1].key)
	assert.Equal(t, "b", got[2].key, "ties keep first-seen order")
	assert.Len(t, tl.top(0), 4)
}

func TestAggregate(t *testing.T) {
	ops := operator.Map{"TAP": {Name: "TAP Air Portugal"}}
	trace := &scan.Trace{From: geo.Point{Lat: 39.7, Lon: -8.9}, To: geo.Point{Lat: 39.9, Lon: -8.7}}
	flights := []enrichment.Flight{
		{Hex: "a1", Callsign: "TAP1", OperatorCode: "TAP", Country: "Portugal", Flag: "pt",
			Origin: str("Lisbon, PT"), Destination: str("Porto, PT"), Altitude: "3000", Time: "2025-07-12T09:10", Trace: trace},
		{Hex: "a2", Callsign: "RYR2", OperatorCode: "RYR", Country: "Ireland", Flag: "ie",
			Origin: str("Dublin, IE"), Time: "2025-07-12T09:40"},
		{Hex: "a3", Callsign: "TAP3", OperatorCode: "TAP", Country: "Portugal", Flag: "pt",
			Destination: str("Porto, PT"), Time: "2025-07-12T09:20", Trace: trace},
		{Hex: "a4", Country: "Unknown", Time: "2025-07-12T09:40"},
	}

	d := Aggregate(flights, ops, Limits{Countries: 2, Operators: 10, Origins: 20, Destinations: 20})

	require.Len(t, d.Flights, 4)
	assert.Equal(t, []string{"a2", "a4", "a3", "a1"}, []string{d.Flights[0].Hex, d.Flights[1].Hex, d.Flights[2].Hex, d.Flights[3].Hex})

	assert.Equal(t, []CountryCount{{"Portugal", "pt", 2}, {"Ireland", "ie", 1}}, d.TopCountries)
	assert.Equal(t, []OperatorCount{{"TAP Air Portugal", 2}, {"RYR", 1}}, d.TopOperators)
	assert.Equal(t, []OriginCount{{"Lisbon, PT", 1}, {"Dublin, IE", 1}}, d.TopOrigins)
	assert.Equal(t, []DestinationCount{{"Porto, PT", 2}}, d.TopDestinations)

	require.Len(t, d.Segments, 2)
	assert.Equal(t, "a1", d.Segments[0].Hex)
	assert.Equal(t, "3000", d.Segments[0].Altitude)
	assert.Equal(t, "", d.Segments[1].Altitude)

	date, ok := d.Date()
	require.True(t, ok)
	assert.Equal(t, "2025-07-12", date)
}

func TestAggregateUnsetLimitUsesDefault(t *testing.T) {
	var flights []enrichment.Flight
	for i := 0; i < 30; i++ {
		code := fmt.Sprintf("A%02d", i)
		flights = append(flights, enrichment.Flight{
			Hex: code, Country: "C" + code, Origin: str("O" + code), Destination: str("D" + code),
			OperatorCode: "X" + code,
		})
	}

	d := Aggregate(flights, operator.Map{}, Limits{Countries: 3, Origins: 0, Destinations: -1})
	assert.Len(t, d.TopCountries, 3)
	assert.Len(t, d.TopOperators, DefaultLimits.Operators)
	assert.Len(t, d.TopOrigins, DefaultLimits.Origins)
	assert.Len(t, d.TopDestinations, DefaultLimits.Destinations)
	assert.Len(t, d.Flights, 30)
}

func TestAggregateEmpty(t *testing.T) {
	d := Aggregate(nil, operator.Map{}, DefaultLimits)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"voos_dia":[],"top_paises":[],"top_companhias":[],"top_origens":[],"top_destinos":[],"rotas":[]}`, string(data))

	_, ok := d.Date()
	assert.False(t, ok)
}

func TestSegmentJSON(t *testing.T) {
	s := Segment{Hex: "a1", Callsign: "TAP1", From: geo.Point{Lat: 1, Lon: 2}, To: geo.Point{Lat: 3, Lon: 4}}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hex":"a1","chamada":"TAP1","de":[1,2],"para":[3,4]}`, string(data))
}

func TestPanelJSONKeys(t *testing.T) {
	p := Aggregate(nil, operator.Map{}, DefaultLimits).Panel()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ultima_hora":[],"top_paises":[],"top_companhias":[],"rotas":[]}`, string(data))
}
