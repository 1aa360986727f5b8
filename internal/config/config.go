package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Sureka400/Ecolens-AI/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Backend API configuration.
	APIURL     string
	APITimeout time.Duration

	DefaultLocation domain.Location

	PanelCacheTTL    time.Duration
	PanelCacheSize   int
	SessionCacheSize int

	// Per-session throttling of backend-triggering actions.
	ActionRate  float64
	ActionBurst int

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Activity event publishing.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaEventsTopic   string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	apiTimeout, err := parsePositiveDuration("ECOLENS_API_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	panelCacheTTL, err := parseNonNegativeDuration("PANEL_CACHE_TTL", "30s")
	if err != nil {
		return nil, err
	}

	defaultLoc, err := parseDefaultLocation()
	if err != nil {
		return nil, err
	}

	actionRate, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("ACTION_RATE", "2"), 64)
	if err != nil || actionRate <= 0 {
		return nil, errors.New("invalid ACTION_RATE")
	}
	actionBurst, err := strconv.Atoi(sharedcfg.EnvOrDefault("ACTION_BURST", "5"))
	if err != nil || actionBurst <= 0 {
		return nil, errors.New("invalid ACTION_BURST")
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		APIURL:     strings.TrimRight(sharedcfg.EnvOrDefault("ECOLENS_API_URL", "http://localhost:8000"), "/"),
		APITimeout: apiTimeout,

		DefaultLocation: defaultLoc,

		PanelCacheTTL:    panelCacheTTL,
		PanelCacheSize:   parsePositiveInt("PANEL_CACHE_SIZE", 512),
		SessionCacheSize: parsePositiveInt("SESSION_CACHE_SIZE", 1000),

		ActionRate:  actionRate,
		ActionBurst: actionBurst,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parsePositiveInt("MAPBOX_CACHE_SIZE", 1000),

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaEventsTopic:   sharedcfg.EnvOrDefault("KAFKA_EVENTS_TOPIC", "ecolens-activity"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if u, err := url.Parse(cfg.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("invalid ECOLENS_API_URL")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaEventsTopic == "" {
			return nil, errors.New("KAFKA_EVENTS_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseDefaultLocation() (domain.Location, error) {
	lat, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("DEFAULT_LAT", "51.5074"), 64)
	if err != nil {
		return domain.Location{}, errors.New("invalid DEFAULT_LAT")
	}
	lon, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("DEFAULT_LON", "-0.1278"), 64)
	if err != nil {
		return domain.Location{}, errors.New("invalid DEFAULT_LON")
	}
	if err := domain.ValidateCoordinates(lat, lon); err != nil {
		return domain.Location{}, fmt.Errorf("invalid DEFAULT_LAT/DEFAULT_LON: %w", err)
	}
	return domain.Location{
		Lat:  lat,
		Lon:  lon,
		Name: sharedcfg.EnvOrDefault("DEFAULT_NAME", "London, UK"),
	}, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseNonNegativeDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}
