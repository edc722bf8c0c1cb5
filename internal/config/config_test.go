package config

import (
	"testing"
	"time"
)

func TestLoad_Durations(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_EXPIRY", "20m")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "7d")
	t.Setenv("OWNER_EMAIL", "  Owner@Example.COM ")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")

	cfg := Load()

	if cfg.AccessTokenTTL != 20*time.Minute {
		t.Fatalf("access ttl = %s", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("refresh ttl = %s", cfg.RefreshTokenTTL)
	}
	if cfg.OwnerEmail != "owner@example.com" {
		t.Fatalf("owner email = %q", cfg.OwnerEmail)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("cors origins = %v", cfg.CORSOrigins)
	}
}

func TestLoad_SaltAlias(t *testing.T) {
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("SALT", "12")

	if got := Load().BcryptCost; got != 12 {
		t.Fatalf("cost = %d, want 12", got)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Store:              "memory",
		AccessTokenSecret:  "a",
		RefreshTokenSecret: "r",
		AccessTokenTTL:     time.Minute,
		RefreshTokenTTL:    time.Hour,
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	same := base
	same.RefreshTokenSecret = "a"
	if err := same.Validate(); err == nil {
		t.Fatalf("expected error for shared secret")
	}

	missing := base
	missing.AccessTokenSecret = ""
	if err := missing.Validate(); err == nil {
		t.Fatalf("expected error for missing secret")
	}

	badStore := base
	badStore.Store = "mongo"
	if err := badStore.Validate(); err == nil {
		t.Fatalf("expected error for unknown store")
	}
}
