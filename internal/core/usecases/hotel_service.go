package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/hotelmap/internal/core/domain"
	"github.com/samirrijal/hotelmap/internal/core/ports"
	"github.com/samirrijal/hotelmap/internal/pkg/metrics"
	"github.com/samirrijal/hotelmap/internal/pkg/telemetry"
)

const defaultCacheTTL = 300

// HotelService handles hotel-related business logic.
type HotelService struct {
	catalog  ports.HotelCatalog
	finder   *NearestFinder
	cache    ports.CacheService
	cacheTTL int
}

// NewHotelService creates a new HotelService. cache may be nil.
func NewHotelService(catalog ports.HotelCatalog, finder *NearestFinder, cache ports.CacheService, cacheTTL int) *HotelService {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &HotelService{catalog: catalog, finder: finder, cache: cache, cacheTTL: cacheTTL}
}

// List returns all hotels in catalog order.
func (s *HotelService) List(ctx context.Context) ([]domain.Hotel, error) {
	return s.catalog.List(ctx)
}

// GetByID returns a single hotel.
func (s *HotelService) GetByID(ctx context.Context, id string) (*domain.Hotel, error) {
	return s.catalog.GetByID(ctx, id)
}

// Nearby ranks the whole catalog by distance from ref. When limit > 0 only the
// closest limit hotels are returned; the nearest one is always first. A negative
// limit is rejected with domain.ErrInvalidLimit.
func (s *HotelService) Nearby(ctx context.Context, ref domain.GeoPoint, limit int) (*domain.Ranking, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanHotelsNearby)
	defer span.End()
	span.SetAttributes(
		attribute.Float64(telemetry.AttrRefLat, ref.Lat),
		attribute.Float64(telemetry.AttrRefLon, ref.Lon),
	)

	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d is negative", domain.ErrInvalidLimit, limit)
	}

	cacheKey := nearbyCacheKey(ref, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var ranking domain.Ranking
			if err := json.Unmarshal(data, &ranking); err == nil {
				metrics.CacheHits.WithLabelValues("nearby").Inc()
				span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true))
				return &ranking, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("nearby").Inc()
	}

	hotels, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}

	ranking := s.finder.RankingFor(ref, hotels)
	if limit > 0 && limit < len(ranking.Hotels) {
		ranking.Hotels = ranking.Hotels[:limit]
	}
	span.SetAttributes(
		attribute.Int(telemetry.AttrHotelCount, len(ranking.Hotels)),
		attribute.String(telemetry.AttrNearestID, ranking.NearestID),
	)

	if s.cache != nil {
		if data, err := json.Marshal(ranking); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, s.cacheTTL); err != nil {
				slog.DebugContext(ctx, "cache set failed", "key", cacheKey, "error", err)
			}
		}
	}

	return &ranking, nil
}

// nearbyCacheKey uses the shortest exact encoding of each coordinate, so two
// distinct points never share a cached ranking.
func nearbyCacheKey(ref domain.GeoPoint, limit int) string {
	return "hotels:nearby:" +
		strconv.FormatFloat(ref.Lat, 'g', -1, 64) + ":" +
		strconv.FormatFloat(ref.Lon, 'g', -1, 64) + ":" +
		strconv.Itoa(limit)
}
