package ports

import (
	"context"

	"github.com/samirrijal/hotelmap/internal/core/domain"
)

// DistanceCalculator measures the distance in meters between two points.
type DistanceCalculator interface {
	Distance(a, b domain.GeoPoint) float64
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishSelection(ctx context.Context, view *domain.MapView) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
