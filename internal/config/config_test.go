package config

import (
	"testing"
	"time"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CREDENTIAL_ENCRYPTION_KEY", "key")

	if _, err := Load(); err == nil {
		t.Error("Expected error when DATABASE_URL is missing")
	}
}

func TestLoadRequiresEncryptionKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/metering")
	t.Setenv("CREDENTIAL_ENCRYPTION_KEY", "")

	if _, err := Load(); err == nil {
		t.Error("Expected error when CREDENTIAL_ENCRYPTION_KEY is missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/metering")
	t.Setenv("CREDENTIAL_ENCRYPTION_KEY", "dGVzdC1rZXk=")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Expected default 25 open conns, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Cache.Size != 256 || cfg.Cache.TTL != 15*time.Minute {
		t.Errorf("Unexpected cache defaults: %+v", cfg.Cache)
	}
	if cfg.Queue.UseRedis {
		t.Error("Redis queue should be off by default")
	}
	if cfg.Provider.ProbeTimeout != 10*time.Second {
		t.Errorf("Expected 10s probe timeout, got %s", cfg.Provider.ProbeTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected info log level, got %s", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/metering")
	t.Setenv("CREDENTIAL_ENCRYPTION_KEY", "dGVzdC1rZXk=")
	t.Setenv("USAGE_QUEUE_USE_REDIS", "true")
	t.Setenv("USAGE_QUEUE_BATCH_SIZE", "50")
	t.Setenv("CREDENTIAL_CACHE_TTL", "1h")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.Queue.UseRedis {
		t.Error("Expected redis queue enabled")
	}
	if cfg.Queue.BatchSize != 50 {
		t.Errorf("Expected batch size 50, got %d", cfg.Queue.BatchSize)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Expected 1h cache TTL, got %s", cfg.Cache.TTL)
	}

	// Unparseable values fall back to defaults
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Expected default on parse failure, got %d", cfg.Database.MaxOpenConns)
	}
}
