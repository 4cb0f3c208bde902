package usecases

import (
	"cmp"
	"slices"
	"time"

	"github.com/samirrijal/hotelmap/internal/core/domain"
	"github.com/samirrijal/hotelmap/internal/core/ports"
	"github.com/samirrijal/hotelmap/internal/pkg/geospatial"
	"github.com/samirrijal/hotelmap/internal/pkg/metrics"
)

// DistanceFunc adapts a plain lat/lon distance function to ports.DistanceCalculator.
type DistanceFunc geospatial.DistanceFunc

// Distance implements ports.DistanceCalculator.
func (f DistanceFunc) Distance(a, b domain.GeoPoint) float64 {
	return f(a.Lat, a.Lon, b.Lat, b.Lon)
}

// NewDistanceCalculator returns the calculator for a configured model name.
func NewDistanceCalculator(model string) (ports.DistanceCalculator, error) {
	fn, err := geospatial.Lookup(model)
	if err != nil {
		return nil, err
	}
	return DistanceFunc(fn), nil
}

// NearestFinder orders hotels by distance from a reference point. It holds no state
// besides its distance calculator and is safe for concurrent use.
type NearestFinder struct {
	dist ports.DistanceCalculator
}

// NewNearestFinder creates a NearestFinder. A nil calculator falls back to haversine.
func NewNearestFinder(dist ports.DistanceCalculator) *NearestFinder {
	if dist == nil {
		dist = DistanceFunc(geospatial.Haversine)
	}
	return &NearestFinder{dist: dist}
}

// Rank returns every hotel ordered by ascending distance from ref. Hotels at equal
// distance keep their input order. The input slice is left untouched.
func (f *NearestFinder) Rank(ref domain.GeoPoint, hotels []domain.Hotel) []domain.RankedHotel {
	start := time.Now()

	ranked := make([]domain.RankedHotel, len(hotels))
	for i, h := range hotels {
		ranked[i] = domain.RankedHotel{Hotel: h, DistanceMeters: f.dist.Distance(ref, h.Location)}
	}

	slices.SortStableFunc(ranked, func(a, b domain.RankedHotel) int {
		return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	if len(ranked) > 0 {
		ranked[0].Nearest = true
	}

	metrics.RankDuration.Observe(time.Since(start).Seconds())
	metrics.RankedItems.Observe(float64(len(ranked)))
	return ranked
}

// Nearest returns the ID of the hotel closest to ref, or false when hotels is empty.
// Ties go to the hotel that comes first in the input, matching Rank.
func (f *NearestFinder) Nearest(ref domain.GeoPoint, hotels []domain.Hotel) (string, bool) {
	if len(hotels) == 0 {
		return "", false
	}

	best := 0
	bestDist := f.dist.Distance(ref, hotels[0].Location)
	for i := 1; i < len(hotels); i++ {
		if d := f.dist.Distance(ref, hotels[i].Location); d < bestDist {
			best, bestDist = i, d
		}
	}
	return hotels[best].ID, true
}

// RankingFor wraps Rank into a domain.Ranking.
func (f *NearestFinder) RankingFor(ref domain.GeoPoint, hotels []domain.Hotel) domain.Ranking {
	ranked := f.Rank(ref, hotels)
	r := domain.Ranking{Reference: ref, Hotels: ranked}
	if len(ranked) > 0 {
		r.NearestID = ranked[0].ID
	}
	return r
}
