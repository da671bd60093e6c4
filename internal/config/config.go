package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	// ResortAPIBaseURL is the root of the resort-data service.
	ResortAPIBaseURL string

	// GeocodeBaseURL is the Nominatim-compatible search endpoint.
	GeocodeBaseURL string

	// PageSize is the number of resorts per fetched page; fixed per session.
	PageSize int

	// SuggestLimit caps autocomplete suggestions per query.
	SuggestLimit int

	// DebounceQuiet is the typing pause before a suggestion request.
	DebounceQuiet time.Duration

	// HTTPTimeout applies to all outbound calls.
	HTTPTimeout time.Duration

	// SessionTTL is the idle lifetime of a search session; PurgeInterval
	// controls how often expired sessions are swept.
	SessionTTL    time.Duration
	PurgeInterval time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.ResortAPIBaseURL = getenvDefault("RESORT_API_BASE_URL", "http://localhost:8000")
	cfg.GeocodeBaseURL = getenvDefault("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org/search")

	cfg.PageSize = getenvInt("PAGE_SIZE", 15)
	cfg.SuggestLimit = getenvInt("SUGGEST_LIMIT", 5)

	var err error
	if cfg.DebounceQuiet, err = getenvDuration("DEBOUNCE_QUIET", "400ms"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getenvDuration("SESSION_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.PurgeInterval, err = getenvDuration("PURGE_INTERVAL", "5m"); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
