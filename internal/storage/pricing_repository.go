package storage

import (
	"context"
	"fmt"

	"ai_metering/internal/models"
)

// PricingRepository loads operator pricing overrides from the
// pricing_entries table.
type PricingRepository struct {
	db *DB
}

// NewPricingRepository creates a new pricing repository
func NewPricingRepository(db *DB) *PricingRepository {
	return &PricingRepository{db: db}
}

type pricingRow struct {
	Provider string  `db:"provider"`
	Model    string  `db:"model"`
	Unit     string  `db:"unit"`
	Tier     string  `db:"tier"`
	Rate     float64 `db:"rate"`
}

// LoadEntries returns all pricing overrides. An empty tier column maps
// to a nil Tier, which is how token-priced entries are stored.
func (r *PricingRepository) LoadEntries(ctx context.Context) ([]models.PricingEntry, error) {
	query := `SELECT provider, model, unit, tier, rate FROM pricing_entries ORDER BY provider, model, tier`

	var rows []pricingRow
	if err := r.db.conn.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load pricing entries: %w", err)
	}

	entries := make([]models.PricingEntry, 0, len(rows))
	for _, row := range rows {
		entry := models.PricingEntry{
			Provider: models.ProviderID(row.Provider),
			Model:    row.Model,
			Unit:     models.PricingUnit(row.Unit),
			Rate:     row.Rate,
		}
		if row.Tier != "" {
			tier := row.Tier
			entry.Tier = &tier
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
