package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("GATEWAY_CURRENCY", "")
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.Gateway.Currency != "INR" || cfg.Gateway.Timeout != 10*time.Second {
		t.Fatalf("unexpected gateway defaults %+v", cfg.Gateway)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("GATEWAY_TIMEOUT_SECONDS", "3")
	t.Setenv("CART_TTL_MINUTES", "15")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("DB_MAX_CONNS", "4")
	cfg := FromEnv()
	if cfg.DBMaxConns != 4 {
		t.Fatalf("unexpected max conns %d", cfg.DBMaxConns)
	}
	if cfg.Gateway.Timeout != 3*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Gateway.Timeout)
	}
	if cfg.CartTTL != 15*time.Minute {
		t.Fatalf("unexpected cart ttl %v", cfg.CartTTL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestFromEnvIgnoresInvalidDuration(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "soon")
	cfg := FromEnv()
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected default shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
}
