package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/samirrijal/hotelmap/internal/pkg/geospatial"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Geo       GeoConfig       `mapstructure:"geo"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Selection SelectionConfig `mapstructure:"selection"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr      string `mapstructure:"addr"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// GeoConfig selects the distance model used for ranking.
type GeoConfig struct {
	Model string `mapstructure:"model"`
}

type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds"`
}

// SelectionConfig bounds the in-memory table of per-session clicks.
type SelectionConfig struct {
	IdleTTLSeconds int `mapstructure:"idle_ttl_seconds"`
	MaxSessions    int `mapstructure:"max_sessions"`
}

type CatalogConfig struct {
	Hotels []HotelConfig `mapstructure:"hotels"`
}

// HotelConfig is one row of the static hotel table.
type HotelConfig struct {
	ID       string  `mapstructure:"id"`
	Name     string  `mapstructure:"name"`
	Address  string  `mapstructure:"address"`
	Price    float64 `mapstructure:"price"`
	Currency string  `mapstructure:"currency"`
	Stars    int     `mapstructure:"stars"`
	Lat      float64 `mapstructure:"lat"`
	Lon      float64 `mapstructure:"lon"`
}

// DefaultHotels is the catalog served when none is configured.
func DefaultHotels() []map[string]any {
	return []map[string]any{
		{"id": "h1", "name": "National", "address": "Mokhovaya St, 15/1", "price": 25000, "currency": "RUB", "stars": 5, "lat": 55.7522, "lon": 37.6156},
		{"id": "h2", "name": "Metropol", "address": "Teatralny Proezd, 2", "price": 18000, "currency": "RUB", "stars": 5, "lat": 55.7601, "lon": 37.6189},
		{"id": "h3", "name": "Four Seasons", "address": "Okhotny Ryad St, 2", "price": 42000, "currency": "RUB", "stars": 5, "lat": 55.7558, "lon": 37.6173},
		{"id": "h4", "name": "Baltschug Kempinski", "address": "Balchug St, 1", "price": 21000, "currency": "RUB", "stars": 5, "lat": 55.7517, "lon": 37.6200},
		{"id": "h5", "name": "Ararat Park Hyatt", "address": "Neglinnaya St, 4", "price": 30000, "currency": "RUB", "stars": 5, "lat": 55.7489, "lon": 37.6100},
	}
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.key_prefix", "hotelmap:")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("geo.model", geospatial.ModelHaversine)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("selection.idle_ttl_seconds", 3600)
	v.SetDefault("selection.max_sessions", 10000)
	v.SetDefault("catalog.hotels", DefaultHotels())

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: HOTELMAP_GEO_MODEL → geo.model
	v.SetEnvPrefix("HOTELMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats.enabled is set")
	}
	if c.Cache.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when cache.enabled is set")
	}
	if c.Cache.TTLSeconds <= 0 {
		errs = append(errs, "cache.ttl_seconds must be positive")
	}
	if c.Selection.IdleTTLSeconds <= 0 {
		errs = append(errs, "selection.idle_ttl_seconds must be positive")
	}
	if c.Selection.MaxSessions <= 0 {
		errs = append(errs, "selection.max_sessions must be positive")
	}
	if _, err := geospatial.Lookup(c.Geo.Model); err != nil {
		errs = append(errs, fmt.Sprintf("geo.model: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
