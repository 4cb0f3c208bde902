package ports

import (
	"context"

	"github.com/samirrijal/hotelmap/internal/core/domain"
)

// HotelCatalog is the read-only hotel table loaded at startup.
type HotelCatalog interface {
	// List returns every hotel in catalog order. Callers own the returned slice.
	List(ctx context.Context) ([]domain.Hotel, error)
	GetByID(ctx context.Context, id string) (*domain.Hotel, error)
}
