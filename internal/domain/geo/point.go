package geo

import (
	"encoding/json"
)

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Map returns the engine representation {"lat": ..., "lon": ...}.
func (p Point) Map() map[string]any {
	return map[string]any{"lat": p.Lat, "lon": p.Lon}
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ParseLonLat extracts a point from a GeoJSON-like value: either a map carrying
// "coordinates" or a bare two-element [lon, lat] slice. ok is false when the value
// has the wrong shape, a non-numeric member, or out-of-range coordinates.
func ParseLonLat(v any) (Point, bool) {
	if m, isMap := v.(map[string]any); isMap {
		c, has := m["coordinates"]
		if !has {
			return Point{}, false
		}
		v = c
	}

	var lon, lat float64
	var ok bool
	switch pair := v.(type) {
	case []any:
		if len(pair) != 2 {
			return Point{}, false
		}
		if lon, ok = toFloat(pair[0]); !ok {
			return Point{}, false
		}
		if lat, ok = toFloat(pair[1]); !ok {
			return Point{}, false
		}
	case []float64:
		if len(pair) != 2 {
			return Point{}, false
		}
		lon, lat = pair[0], pair[1]
	default:
		return Point{}, false
	}

	if !ValidateCoordinates(lat, lon) {
		return Point{}, false
	}
	return Point{Lat: lat, Lon: lon}, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
