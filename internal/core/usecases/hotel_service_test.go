package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/hotelmap/internal/core/domain"
	"github.com/samirrijal/hotelmap/internal/core/usecases"
)

func TestHotelService_List(t *testing.T) {
	svc := usecases.NewHotelService(catalogOf(moscowHotels()), haversineFinder(), nil, 0)

	hotels, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, hotels, 5)
	assert.Equal(t, "h1", hotels[0].ID)
}

func TestHotelService_GetByID(t *testing.T) {
	repo := &mockCatalog{
		getByIDFn: func(ctx context.Context, id string) (*domain.Hotel, error) {
			return &domain.Hotel{ID: id, Name: "Metropol"}, nil
		},
	}
	svc := usecases.NewHotelService(repo, haversineFinder(), nil, 0)

	h, err := svc.GetByID(context.Background(), "h2")
	require.NoError(t, err)
	assert.Equal(t, "Metropol", h.Name)
}

func TestHotelService_Nearby(t *testing.T) {
	svc := usecases.NewHotelService(catalogOf(moscowHotels()), haversineFinder(), nil, 0)

	ranking, err := svc.Nearby(context.Background(), moscowCenter, 0)
	require.NoError(t, err)

	assert.Equal(t, moscowCenter, ranking.Reference)
	assert.Equal(t, "h3", ranking.NearestID)
	assert.Equal(t, []string{"h3", "h1", "h4", "h2", "h5"}, ids(ranking.Hotels))
}

func TestHotelService_Nearby_Limit(t *testing.T) {
	svc := usecases.NewHotelService(catalogOf(moscowHotels()), haversineFinder(), nil, 0)

	ranking, err := svc.Nearby(context.Background(), domain.GeoPoint{Lat: 0, Lon: 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"h5", "h1"}, ids(ranking.Hotels))
	assert.Equal(t, "h5", ranking.NearestID)

	ranking, err = svc.Nearby(context.Background(), moscowCenter, 50)
	require.NoError(t, err)
	assert.Len(t, ranking.Hotels, 5)
}

func TestHotelService_Nearby_InvalidPoint(t *testing.T) {
	repo := catalogOf(moscowHotels())
	svc := usecases.NewHotelService(repo, haversineFinder(), nil, 0)

	_, err := svc.Nearby(context.Background(), domain.GeoPoint{Lat: 91, Lon: 0}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidPoint))
	assert.Zero(t, repo.calls, "catalog must not be read for an invalid point")
}

func TestHotelService_Nearby_EmptyCatalog(t *testing.T) {
	svc := usecases.NewHotelService(catalogOf(nil), haversineFinder(), nil, 0)

	ranking, err := svc.Nearby(context.Background(), moscowCenter, 0)
	require.NoError(t, err)
	assert.Empty(t, ranking.NearestID)
	assert.Empty(t, ranking.Hotels)
}

func TestHotelService_Nearby_CatalogError(t *testing.T) {
	repo := &mockCatalog{
		listFn: func(ctx context.Context) ([]domain.Hotel, error) {
			return nil, errors.New("boom")
		},
	}
	svc := usecases.NewHotelService(repo, haversineFinder(), nil, 0)

	_, err := svc.Nearby(context.Background(), moscowCenter, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list hotels")
}

func TestHotelService_Nearby_ReadThroughCache(t *testing.T) {
	repo := catalogOf(moscowHotels())
	cache := newMockCache()
	svc := usecases.NewHotelService(repo, haversineFinder(), cache, 60)

	first, err := svc.Nearby(context.Background(), moscowCenter, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
	require.Len(t, cache.data, 1)
	for _, ttl := range cache.ttl {
		assert.Equal(t, 60, ttl)
	}

	second, err := svc.Nearby(context.Background(), moscowCenter, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls, "second call should be served from cache")
	assert.Equal(t, ids(first.Hotels), ids(second.Hotels))
	assert.Equal(t, first.NearestID, second.NearestID)

	// A different limit is a different key.
	_, err = svc.Nearby(context.Background(), moscowCenter, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestHotelService_Nearby_CacheKeepsClosePointsApart(t *testing.T) {
	a := domain.Hotel{ID: "a", Name: "A", Location: domain.GeoPoint{Lat: 10.0000004, Lon: 0}}
	b := domain.Hotel{ID: "b", Name: "B", Location: domain.GeoPoint{Lat: 9.9999996, Lon: 0}}
	repo := catalogOf([]domain.Hotel{a, b})
	svc := usecases.NewHotelService(repo, haversineFinder(), newMockCache(), 60)

	atA, err := svc.Nearby(context.Background(), a.Location, 0)
	require.NoError(t, err)
	assert.Equal(t, "a", atA.NearestID)

	atB, err := svc.Nearby(context.Background(), b.Location, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls, "points closer than 1e-6 degrees must not share a cache entry")
	assert.Equal(t, b.Location, atB.Reference)
	assert.Equal(t, "b", atB.NearestID)
	assert.Zero(t, atB.Hotels[0].DistanceMeters)
}

func TestHotelService_Nearby_NegativeLimit(t *testing.T) {
	repo := catalogOf(moscowHotels())
	svc := usecases.NewHotelService(repo, haversineFinder(), nil, 0)

	_, err := svc.Nearby(context.Background(), moscowCenter, -1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidLimit))
	assert.Equal(t, 0, repo.calls)
}
