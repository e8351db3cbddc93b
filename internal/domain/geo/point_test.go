package geo

import (
	"encoding/json"
	"testing"
)

func TestParseLonLat(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		want  Point
		valid bool
	}{
		{"geojson map", map[string]any{"type": "Point", "coordinates": []any{2.3, 48.8}}, Point{Lat: 48.8, Lon: 2.3}, true},
		{"bare slice", []any{-74.006, 40.7128}, Point{Lat: 40.7128, Lon: -74.006}, true},
		{"float slice", []float64{151.2, -33.8}, Point{Lat: -33.8, Lon: 151.2}, true},
		{"integers", []any{10, 20}, Point{Lat: 20, Lon: 10}, true},
		{"json numbers", []any{json.Number("1.5"), json.Number("2.5")}, Point{Lat: 2.5, Lon: 1.5}, true},
		{"map without coordinates", map[string]any{"lat": 1.0}, Point{}, false},
		{"wrong length", []any{1.0, 2.0, 3.0}, Point{}, false},
		{"non numeric", []any{"a", 2.0}, Point{}, false},
		{"latitude out of range", []any{0.0, 91.0}, Point{}, false},
		{"longitude out of range", []any{181.0, 0.0}, Point{}, false},
		{"scalar", "48.8,2.3", Point{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLonLat(tt.in)
			if ok != tt.valid {
				t.Fatalf("ok = %v, want %v", ok, tt.valid)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPointMap(t *testing.T) {
	m := Point{Lat: 48.8, Lon: 2.3}.Map()
	if m["lat"] != 48.8 || m["lon"] != 2.3 {
		t.Errorf("Map() = %v", m)
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		lat, lon float64
		valid    bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{91, 0, false},
		{0, 181, false},
		{-91, 0, false},
		{0, -181, false},
	}
	for _, tt := range tests {
		if got := ValidateCoordinates(tt.lat, tt.lon); got != tt.valid {
			t.Errorf("ValidateCoordinates(%f, %f) = %v, want %v", tt.lat, tt.lon, got, tt.valid)
		}
	}
}
