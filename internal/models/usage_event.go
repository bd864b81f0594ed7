package models

import (
	"time"

	"github.com/google/uuid"
)

// ProviderID identifies a third-party AI API provider.
type ProviderID string

const (
	ProviderOpenAI   ProviderID = "openai"
	ProviderImageGen ProviderID = "image-generation"
	ProviderAzure    ProviderID = "azure"
	ProviderGoogle   ProviderID = "google"
	ProviderOther    ProviderID = "other"
)

// KnownProviders lists every provider the metering layer accepts.
var KnownProviders = []ProviderID{
	ProviderOpenAI,
	ProviderImageGen,
	ProviderAzure,
	ProviderGoogle,
	ProviderOther,
}

// Valid reports whether p is one of the known providers.
func (p ProviderID) Valid() bool {
	for _, known := range KnownProviders {
		if p == known {
			return true
		}
	}
	return false
}

// UsageEvent is an immutable record of one outbound API call.
// Events are append-only: nothing in this codebase updates or deletes
// a row once it has been written.
type UsageEvent struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Provider     ProviderID `db:"provider" json:"provider"`
	Endpoint     string     `db:"endpoint" json:"endpoint"`
	UserID       *string    `db:"user_id" json:"user_id,omitempty"` // nil for system-initiated calls
	Model        string     `db:"model" json:"model,omitempty"`
	TokensIn     int        `db:"tokens_in" json:"tokens_in"`
	TokensOut    int        `db:"tokens_out" json:"tokens_out"`
	Cost         float64    `db:"cost" json:"cost"`
	Success      bool       `db:"success" json:"success"`
	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`
	LatencyMs    int        `db:"latency_ms" json:"latency_ms"`
	Metadata     JSONB      `db:"metadata" json:"metadata,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// ProviderStats is one aggregation row per provider over a time window.
type ProviderStats struct {
	Provider       ProviderID `db:"provider" json:"provider"`
	TotalCalls     int64      `db:"total_calls" json:"total_calls"`
	SuccessCount   int64      `db:"success_count" json:"success_count"`
	FailureCount   int64      `db:"failure_count" json:"failure_count"`
	SuccessRate    float64    `db:"-" json:"success_rate"`
	FailureRate    float64    `db:"-" json:"failure_rate"`
	TotalCost      float64    `db:"total_cost" json:"total_cost"`
	TotalTokensIn  int64      `db:"total_tokens_in" json:"total_tokens_in"`
	TotalTokensOut int64      `db:"total_tokens_out" json:"total_tokens_out"`
	AvgLatencyMs   float64    `db:"avg_latency_ms" json:"avg_latency_ms"`
}

// UserStats is one aggregation row per attributable user over a time window.
// System-initiated calls (no user) are never included.
type UserStats struct {
	UserID         string  `db:"user_id" json:"user_id"`
	Email          string  `db:"email" json:"email"`
	Name           string  `db:"name" json:"name"`
	TotalCalls     int64   `db:"total_calls" json:"total_calls"`
	TotalCost      float64 `db:"total_cost" json:"total_cost"`
	TotalTokensIn  int64   `db:"total_tokens_in" json:"total_tokens_in"`
	TotalTokensOut int64   `db:"total_tokens_out" json:"total_tokens_out"`
}
