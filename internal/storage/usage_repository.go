package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"ai_metering/internal/models"
)

// UsageRepository appends and aggregates usage events. Events are
// append-only: this repository deliberately has no update or delete.
type UsageRepository struct {
	db *DB
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db *DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Create inserts a usage event
func (r *UsageRepository) Create(ctx context.Context, event *models.UsageEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO usage_events (
			id, provider, endpoint, user_id, model, tokens_in, tokens_out,
			cost, success, error_message, latency_ms, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.conn.ExecContext(
		ctx, query,
		event.ID, event.Provider, event.Endpoint, event.UserID, event.Model,
		event.TokensIn, event.TokensOut, event.Cost, event.Success,
		event.ErrorMessage, event.LatencyMs, event.Metadata, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage event: %w", err)
	}

	return nil
}

// StatsByProvider aggregates events with created_at in [start, end),
// grouped by provider. The filter maps column names to equality
// values; callers validate the keys against their whitelist before
// reaching this layer. Providers with no matching events produce no
// row.
func (r *UsageRepository) StatsByProvider(ctx context.Context, filter map[string]any, start, end time.Time) ([]models.ProviderStats, error) {
	where := "WHERE created_at >= $1 AND created_at < $2"
	args := []interface{}{start, end}

	// Deterministic clause order for stable queries
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		args = append(args, filter[k])
		where += fmt.Sprintf(" AND %s = $%d", k, len(args))
	}

	query := fmt.Sprintf(`
		SELECT
			provider,
			COUNT(*) AS total_calls,
			COUNT(CASE WHEN success THEN 1 END) AS success_count,
			COUNT(CASE WHEN NOT success THEN 1 END) AS failure_count,
			COALESCE(SUM(cost), 0) AS total_cost,
			COALESCE(SUM(tokens_in), 0) AS total_tokens_in,
			COALESCE(SUM(tokens_out), 0) AS total_tokens_out,
			COALESCE(AVG(latency_ms), 0) AS avg_latency_ms
		FROM usage_events
		%s
		GROUP BY provider
		ORDER BY provider
	`, where)

	var stats []models.ProviderStats
	if err := r.db.conn.SelectContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate usage by provider: %w", err)
	}

	return stats, nil
}

// StatsByUser aggregates attributable events with created_at in
// [start, end), grouped by user. System-initiated events (NULL
// user_id) are excluded, and the inner join against the user directory
// drops events whose user no longer exists there.
func (r *UsageRepository) StatsByUser(ctx context.Context, start, end time.Time) ([]models.UserStats, error) {
	query := `
		SELECT
			u.id AS user_id,
			u.email AS email,
			u.name AS name,
			COUNT(*) AS total_calls,
			COALESCE(SUM(e.cost), 0) AS total_cost,
			COALESCE(SUM(e.tokens_in), 0) AS total_tokens_in,
			COALESCE(SUM(e.tokens_out), 0) AS total_tokens_out
		FROM usage_events e
		INNER JOIN users u ON u.id = e.user_id
		WHERE e.user_id IS NOT NULL
		  AND e.created_at >= $1 AND e.created_at < $2
		GROUP BY u.id, u.email, u.name
		ORDER BY total_cost DESC
	`

	var stats []models.UserStats
	if err := r.db.conn.SelectContext(ctx, &stats, query, start, end); err != nil {
		return nil, fmt.Errorf("failed to aggregate usage by user: %w", err)
	}

	return stats, nil
}
