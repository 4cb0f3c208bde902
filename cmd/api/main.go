package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"

	"github.com/samirrijal/hotelmap/internal/adapters/catalog"
	"github.com/samirrijal/hotelmap/internal/adapters/http"
	natsadapter "github.com/samirrijal/hotelmap/internal/adapters/nats"
	"github.com/samirrijal/hotelmap/internal/adapters/valkey"
	"github.com/samirrijal/hotelmap/internal/core/ports"
	"github.com/samirrijal/hotelmap/internal/core/usecases"
	"github.com/samirrijal/hotelmap/internal/pkg/config"
	"github.com/samirrijal/hotelmap/internal/pkg/logging"
	"github.com/samirrijal/hotelmap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("hotelmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Distance model
	calc, err := usecases.NewDistanceCalculator(cfg.Geo.Model)
	if err != nil {
		log.Fatalf("geo model: %v", err)
	}
	finder := usecases.NewNearestFinder(calc)

	// Hotel catalog
	hotels, err := catalog.FromConfig(cfg.Catalog.Hotels)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	slog.Info("catalog loaded", "hotels", hotels.Len(), "geo_model", cfg.Geo.Model)

	// Cache (optional)
	var cacheSvc ports.CacheService
	var cache *valkey.Cache
	if cfg.Cache.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr, cfg.Valkey.KeyPrefix)
		if err != nil {
			slog.Warn("valkey unavailable, serving without cache", "error", err)
		} else {
			defer cache.Close()
			cacheSvc = cache
		}
	}

	// NATS (optional)
	var publisher ports.EventPublisher
	var feed http.SelectionFeed
	deps := &http.Dependencies{}
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, selections will not be broadcast", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
			feed = natsadapter.NewSubscriber(pub.Conn())
			deps.NATS = pub.Conn()
		}
	}

	// Use cases
	deps.Hotels = usecases.NewHotelService(hotels, finder, cacheSvc, cfg.Cache.TTLSeconds)
	deps.Selections = usecases.NewSelectionService(hotels, finder, publisher, clockwork.NewRealClock(),
		usecases.WithIdleTTL(time.Duration(cfg.Selection.IdleTTLSeconds)*time.Second),
		usecases.WithMaxSessions(cfg.Selection.MaxSessions),
	)
	deps.Feed = feed
	deps.Cache = cache

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "HotelMap API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, X-Session-ID",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
