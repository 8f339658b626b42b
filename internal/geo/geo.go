package geo

import "math"

// EarthRadius is the mean earth radius in meters.
const EarthRadius = 6371000

// Distance returns the haversine great-circle distance between two
// coordinates in meters. Inputs are not range checked.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	lat1Rad := toRad(lat1)
	lat2Rad := toRad(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	// clamp rounding noise so antipodal points stay finite
	if a > 1 {
		a = 1
	}
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}

// WithinRadius reports whether (lat, lon) lies inside the circle around the
// center. The boundary counts as inside.
func WithinRadius(lat, lon, centerLat, centerLon, radiusMeters float64) bool {
	return Distance(lat, lon, centerLat, centerLon) <= radiusMeters
}

func toRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
