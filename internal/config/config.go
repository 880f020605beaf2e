// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds every tunable of the auth service. All fields have working
// defaults so a bare `auth-service` boots a local dev instance.
type Config struct {
	Addr       string
	DBPath     string
	KeysDir    string
	ClientsDir string

	Issuer        string
	DefaultClient string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Janitor settings for reclaiming expired refresh token records.
	PurgeInterval  time.Duration
	PurgeRetention time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Addr:            envStr("ADDR", ":5047"),
		DBPath:          envStr("DB_PATH", "data/auth.db"),
		KeysDir:         envStr("KEYS_DIR", "keys"),
		ClientsDir:      envStr("CLIENTS_DIR", "clients"),
		Issuer:          envStr("TOKEN_ISSUER", "auth-service"),
		DefaultClient:   envStr("DEFAULT_CLIENT", "medic-logger"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		PurgeInterval:   time.Hour,
		PurgeRetention:  24 * time.Hour,
	}

	var err error
	if cfg.AccessTokenTTL, err = envDuration("ACCESS_TOKEN_TTL", cfg.AccessTokenTTL); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = envDuration("REFRESH_TOKEN_TTL", cfg.RefreshTokenTTL); err != nil {
		return nil, err
	}
	if cfg.PurgeInterval, err = envDuration("PURGE_INTERVAL", cfg.PurgeInterval); err != nil {
		return nil, err
	}
	if cfg.PurgeRetention, err = envDuration("PURGE_RETENTION", cfg.PurgeRetention); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envStr(name string, fallback string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return fallback
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("env var '%s' is not a valid duration (%q): %v", name, v, err)
	}
	return d, nil
}
