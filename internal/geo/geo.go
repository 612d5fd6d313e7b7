// Package geo provides the position type and small geodesy helpers shared by
// the map canvas, the remote client, and the capture uploader.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for haversine distances.
const EarthRadiusKm = 6371.0

// Position is a WGS84 coordinate pair in floating-point degrees.
type Position struct {
	Lat float64
	Lng float64
}

// Valid reports whether the position is inside the WGS84 degree ranges.
func (p Position) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// IsZero reports whether the position is the zero value. The zero value
// (0, 0) doubles as "no fix"; a real fix at Null Island is not a case this
// client needs to distinguish.
func (p Position) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}

func (p Position) String() string {
	return fmt.Sprintf("%.4f,%.4f", p.Lat, p.Lng)
}

// DistanceKm returns the haversine great-circle distance between two
// positions in kilometers.
func DistanceKm(a, b Position) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}
