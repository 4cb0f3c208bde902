package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samirrijal/hotelmap/internal/core/domain"
	"github.com/samirrijal/hotelmap/internal/pkg/config"
)

// Static implements ports.HotelCatalog over a table fixed at start-up.
type Static struct {
	hotels []domain.Hotel
	byID   map[string]int
}

// New validates hotels and wraps them in a Static catalog. All problems are
// reported together.
func New(hotels []domain.Hotel) (*Static, error) {
	var errs []string
	byID := make(map[string]int, len(hotels))

	for i, h := range hotels {
		if h.ID == "" {
			errs = append(errs, fmt.Sprintf("hotel[%d]: id is required", i))
		} else if prev, dup := byID[h.ID]; dup {
			errs = append(errs, fmt.Sprintf("hotel[%d]: id %q already used by hotel[%d]", i, h.ID, prev))
		} else {
			byID[h.ID] = i
		}
		if strings.TrimSpace(h.Name) == "" {
			errs = append(errs, fmt.Sprintf("hotel[%d]: name is required", i))
		}
		if h.Price < 0 {
			errs = append(errs, fmt.Sprintf("hotel[%d]: price must be non-negative, got %v", i, h.Price))
		}
		if err := h.Location.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("hotel[%d]: %v", i, err))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("catalog validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return &Static{hotels: slices.Clone(hotels), byID: byID}, nil
}

// FromConfig builds the catalog from the configured hotel table.
func FromConfig(rows []config.HotelConfig) (*Static, error) {
	hotels := make([]domain.Hotel, len(rows))
	for i, r := range rows {
		hotels[i] = domain.Hotel{
			ID:       r.ID,
			Name:     r.Name,
			Address:  r.Address,
			Price:    r.Price,
			Currency: r.Currency,
			Stars:    r.Stars,
			Location: domain.GeoPoint{Lat: r.Lat, Lon: r.Lon},
		}
	}
	return New(hotels)
}

// List returns the hotels in catalog order. Callers get their own copy.
func (s *Static) List(_ context.Context) ([]domain.Hotel, error) {
	return slices.Clone(s.hotels), nil
}

func (s *Static) GetByID(_ context.Context, id string) (*domain.Hotel, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("hotel %q: %w", id, domain.ErrNotFound)
	}
	h := s.hotels[i]
	return &h, nil
}

// Len reports the number of hotels.
func (s *Static) Len() int { return len(s.hotels) }
