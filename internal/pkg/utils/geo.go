package utils

import "math"

const earthRadiusMeters = 6371000

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// CalculateHaversineDistance returns the great-circle distance in meters.
func CalculateHaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Geofence is a circle around Center. The boundary counts as inside.
type Geofence struct {
	Center       Point
	RadiusMeters float64
}

// Distance returns the distance from the fence center to p in meters.
func (g Geofence) Distance(p Point) float64 {
	return CalculateHaversineDistance(g.Center.Latitude, g.Center.Longitude, p.Latitude, p.Longitude)
}

// Contains reports whether p is within RadiusMeters of the center.
func (g Geofence) Contains(p Point) bool {
	return g.Distance(p) <= g.RadiusMeters
}
