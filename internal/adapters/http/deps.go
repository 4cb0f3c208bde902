package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/hotelmap/internal/adapters/valkey"
	"github.com/samirrijal/hotelmap/internal/core/domain"
	"github.com/samirrijal/hotelmap/internal/core/usecases"
)

// SelectionFeed delivers selection events published by any instance.
type SelectionFeed interface {
	SubscribeSelections(session string, handler func(view *domain.MapView)) (unsubscribe func(), err error)
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Hotels     *usecases.HotelService
	Selections *usecases.SelectionService
	Feed       SelectionFeed
	NATS       *nats.Conn
	Cache      *valkey.Cache
}
