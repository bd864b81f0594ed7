package metering

import (
	"context"
	"fmt"
	"time"

	"ai_metering/internal/models"
)

// StatsReader is the aggregation backend. Satisfied by
// storage.UsageRepository.
type StatsReader interface {
	StatsByProvider(ctx context.Context, filter map[string]any, start, end time.Time) ([]models.ProviderStats, error)
	StatsByUser(ctx context.Context, start, end time.Time) ([]models.UserStats, error)
}

// allowedFilterKeys are the usage event columns a filter may match
// on. Filter keys are interpolated into SQL identifiers downstream, so
// the whitelist is also an injection guard.
var allowedFilterKeys = map[string]bool{
	"provider": true,
	"user_id":  true,
	"endpoint": true,
	"model":    true,
	"success":  true,
}

// Aggregator runs windowed rollups over usage events. Windows are
// half-open [start, end). Inputs are rejected synchronously before any
// query runs.
type Aggregator struct {
	repo StatsReader
}

// NewAggregator creates a usage aggregator
func NewAggregator(repo StatsReader) *Aggregator {
	return &Aggregator{repo: repo}
}

// StatsByProvider returns one row per provider with events in the
// window, with success and failure rates computed. Providers without
// events produce no row, so rates never divide by zero.
func (a *Aggregator) StatsByProvider(ctx context.Context, filter map[string]any, start, end time.Time) ([]models.ProviderStats, error) {
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}
	for key := range filter {
		if !allowedFilterKeys[key] {
			return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidFilter, key)
		}
	}

	stats, err := a.repo.StatsByProvider(ctx, filter, start, end)
	if err != nil {
		return nil, err
	}

	for i := range stats {
		if stats[i].TotalCalls > 0 {
			stats[i].SuccessRate = float64(stats[i].SuccessCount) / float64(stats[i].TotalCalls)
			stats[i].FailureRate = float64(stats[i].FailureCount) / float64(stats[i].TotalCalls)
		}
	}
	return stats, nil
}

// StatsByUser returns per-user rollups for attributable events in the
// window. Events without a user, or whose user is missing from the
// directory, are excluded.
func (a *Aggregator) StatsByUser(ctx context.Context, start, end time.Time) ([]models.UserStats, error) {
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}
	return a.repo.StatsByUser(ctx, start, end)
}

func validateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: bounds must be set", ErrInvalidWindow)
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidWindow,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}
