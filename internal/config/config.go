package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by FromEnv.
const (
	EnvAPIURL       = "BACKOFFICE_API_URL"
	EnvAddr         = "BACKOFFICE_ADDR"
	EnvRateBurst    = "BACKOFFICE_RATE_BURST"
	EnvRatePerSec   = "BACKOFFICE_RATE_PER_SEC"
	EnvCookieSecure = "BACKOFFICE_COOKIE_SECURE"
	EnvMaxBodyBytes = "BACKOFFICE_MAX_BODY_BYTES"
)

// ErrMissingAPIURL is fatal at startup: the console never guesses a backend.
var ErrMissingAPIURL = errors.New("config: " + EnvAPIURL + " is required")

// Config holds the console configuration.
type Config struct {
	// Backend API base URL
	APIURL string

	// Console bind address (host:port)
	Addr string

	// Per-client token bucket
	RateBurst  int
	RatePerSec int

	// Mark session cookies Secure (HTTPS deployments)
	CookieSecure bool

	// Upper bound for request bodies, uploads included
	MaxBodyBytes int64
}

// Default returns the configuration used when no variable overrides it.
func Default() Config {
	return Config{
		Addr:         ":8080",
		RateBurst:    20,
		RatePerSec:   10,
		MaxBodyBytes: 10 << 20,
	}
}

// FromEnv loads the configuration. A missing or invalid API URL is an error.
func FromEnv() (Config, error) {
	cfg := Default()

	cfg.APIURL = strings.TrimSpace(os.Getenv(EnvAPIURL))
	if err := ValidateAPIURL(cfg.APIURL); err != nil {
		return Config{}, err
	}
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		cfg.Addr = v
	}

	var err error
	if cfg.RateBurst, err = intFromEnv(EnvRateBurst, cfg.RateBurst); err != nil {
		return Config{}, err
	}
	if cfg.RatePerSec, err = intFromEnv(EnvRatePerSec, cfg.RatePerSec); err != nil {
		return Config{}, err
	}
	if v := strings.TrimSpace(os.Getenv(EnvCookieSecure)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvCookieSecure, err)
		}
		cfg.CookieSecure = b
	}
	maxBody, err := intFromEnv(EnvMaxBodyBytes, int(cfg.MaxBodyBytes))
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)
	return cfg, nil
}

// ValidateAPIURL checks raw is an absolute http(s) URL.
func ValidateAPIURL(raw string) error {
	if raw == "" {
		return ErrMissingAPIURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("config: %s: %w", EnvAPIURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: %s must be an absolute http(s) URL, got %q", EnvAPIURL, raw)
	}
	return nil
}

func intFromEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}
