package usecases_test

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/samirrijal/hotelmap/internal/core/domain"
)

// --- Mock HotelCatalog ---

type mockCatalog struct {
	listFn    func(ctx context.Context) ([]domain.Hotel, error)
	getByIDFn func(ctx context.Context, id string) (*domain.Hotel, error)

	mu    sync.Mutex
	calls int
}

func (m *mockCatalog) List(ctx context.Context) ([]domain.Hotel, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockCatalog) GetByID(ctx context.Context, id string) (*domain.Hotel, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func catalogOf(hotels []domain.Hotel) *mockCatalog {
	return &mockCatalog{
		listFn: func(ctx context.Context) ([]domain.Hotel, error) {
			return slices.Clone(hotels), nil
		},
	}
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  map[string]int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttl: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttl[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu     sync.Mutex
	views  []*domain.MapView
	errOut error
}

func (m *mockPublisher) PublishSelection(ctx context.Context, view *domain.MapView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views = append(m.views, view)
	return m.errOut
}

// --- Fixtures ---

var moscowCenter = domain.GeoPoint{Lat: 55.7558, Lon: 37.6173}

// moscowHotels is the five-hotel catalog around the Kremlin.
func moscowHotels() []domain.Hotel {
	return []domain.Hotel{
		{ID: "h1", Name: "National", Address: "Mokhovaya St, 15/1", Price: 25000, Location: domain.GeoPoint{Lat: 55.7522, Lon: 37.6156}},
		{ID: "h2", Name: "Metropol", Address: "Teatralny Proezd, 2", Price: 18000, Location: domain.GeoPoint{Lat: 55.7601, Lon: 37.6189}},
		{ID: "h3", Name: "Four Seasons", Address: "Okhotny Ryad St, 2", Price: 42000, Location: domain.GeoPoint{Lat: 55.7558, Lon: 37.6173}},
		{ID: "h4", Name: "Baltschug Kempinski", Address: "Balchug St, 1", Price: 21000, Location: domain.GeoPoint{Lat: 55.7517, Lon: 37.6200}},
		{ID: "h5", Name: "Ararat Park Hyatt", Address: "Neglinnaya St, 4", Price: 30000, Location: domain.GeoPoint{Lat: 55.7489, Lon: 37.6100}},
	}
}

func ids(ranked []domain.RankedHotel) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.ID
	}
	return out
}
