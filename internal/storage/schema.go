package storage

import (
	"context"
	"fmt"
)

// Schema for the metering subsystem. Deployments with a migration
// pipeline apply equivalent DDL there; EnsureSchema exists so a
// standalone process can bootstrap itself.
const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	name            TEXT PRIMARY KEY,
	encrypted_value TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS usage_events (
	id            UUID PRIMARY KEY,
	provider      TEXT NOT NULL,
	endpoint      TEXT NOT NULL,
	user_id       TEXT,
	model         TEXT NOT NULL DEFAULT '',
	tokens_in     INTEGER NOT NULL DEFAULT 0 CHECK (tokens_in >= 0),
	tokens_out    INTEGER NOT NULL DEFAULT 0 CHECK (tokens_out >= 0),
	cost          DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (cost >= 0),
	success       BOOLEAN NOT NULL,
	error_message TEXT,
	latency_ms    INTEGER NOT NULL DEFAULT 0 CHECK (latency_ms >= 0),
	metadata      JSONB,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_usage_events_created_at
	ON usage_events (created_at);
CREATE INDEX IF NOT EXISTS idx_usage_events_provider_created_at
	ON usage_events (provider, created_at);
CREATE INDEX IF NOT EXISTS idx_usage_events_user_created_at
	ON usage_events (user_id, created_at)
	WHERE user_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS pricing_entries (
	provider TEXT NOT NULL,
	model    TEXT NOT NULL,
	unit     TEXT NOT NULL,
	tier     TEXT NOT NULL DEFAULT '',
	rate     DOUBLE PRECISION NOT NULL CHECK (rate >= 0),
	PRIMARY KEY (provider, model, unit, tier)
);

CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the metering tables if they do not exist.
func EnsureSchema(ctx context.Context, db *DB) error {
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
