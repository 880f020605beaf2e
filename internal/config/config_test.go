package config_test

import (
	"testing"
	"time"

	"github.com/mediclogger/auth-service/internal/config"
)

// t.Setenv forbids t.Parallel, so these tests run sequentially.

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected defaults to load, got %v", err)
	}

	if cfg.Addr != ":5047" {
		t.Errorf("expected default addr ':5047', got '%s'", cfg.Addr)
	}
	if cfg.Issuer != "auth-service" {
		t.Errorf("expected default issuer 'auth-service', got '%s'", cfg.Issuer)
	}
	if cfg.DefaultClient != "medic-logger" {
		t.Errorf("expected default client 'medic-logger', got '%s'", cfg.DefaultClient)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("expected access TTL 15m, got %s", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Errorf("expected refresh TTL 168h, got %s", cfg.RefreshTokenTTL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("REFRESH_TOKEN_TTL", "48h")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected overrides to load, got %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Errorf("expected addr ':9999', got '%s'", cfg.Addr)
	}
	if cfg.AccessTokenTTL != 5*time.Minute {
		t.Errorf("expected access TTL 5m, got %s", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 48*time.Hour {
		t.Errorf("expected refresh TTL 48h, got %s", cfg.RefreshTokenTTL)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "fifteen minutes")

	if _, err := config.Load(); err == nil {
		t.Error("expected an error for an invalid duration")
	}
}
