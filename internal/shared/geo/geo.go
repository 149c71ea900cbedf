package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusKm is the mean earth radius used by every distance in the app.
const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// Orb converts p to an orb.Point, which is ordered [lng, lat].
func (p Point) Orb() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// HaversineKm returns the great-circle distance between two coordinates:
// 2R·asin(√(sin²(Δlat/2) + cos(lat1)·cos(lat2)·sin²(Δlon/2))).
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)
	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	a := sinLat*sinLat + math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*sinLng*sinLng
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

// Distance is HaversineKm between two points.
func Distance(a, b Point) float64 {
	return HaversineKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
