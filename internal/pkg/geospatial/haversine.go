package geospatial

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean Earth radius used by every model in this package.
const EarthRadiusMeters = 6371000.0

// Supported distance models.
const (
	ModelHaversine = "haversine"
	ModelS2        = "s2"
)

// DistanceFunc returns the distance in meters between two points given in decimal degrees.
type DistanceFunc func(lat1, lon1, lat2, lon2 float64) float64

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// S2Distance measures the same spherical distance through the s2 geometry library.
func S2Distance(lat1, lon1, lat2, lon2 float64) float64 {
	angle := s2.LatLngFromDegrees(lat1, lon1).Distance(s2.LatLngFromDegrees(lat2, lon2))
	return angle.Radians() * EarthRadiusMeters
}

// Lookup returns the distance function registered under model.
func Lookup(model string) (DistanceFunc, error) {
	switch strings.ToLower(model) {
	case "", ModelHaversine:
		return Haversine, nil
	case ModelS2:
		return S2Distance, nil
	default:
		return nil, fmt.Errorf("unknown distance model %q", model)
	}
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
