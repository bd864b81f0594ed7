package metering

import (
	"context"
	"time"

	"ai_metering/internal/credentials"
	"ai_metering/internal/models"
	"ai_metering/internal/pricing"
)

// Service is the facade request handlers talk to. It bundles
// credential resolution, cost calculation, usage recording, and
// aggregation behind one surface.
type Service struct {
	resolver   *credentials.Resolver
	calculator *pricing.Calculator
	recorder   *Recorder
	aggregator *Aggregator
}

// NewService creates the metering service
func NewService(resolver *credentials.Resolver, calculator *pricing.Calculator, recorder *Recorder, aggregator *Aggregator) *Service {
	return &Service{
		resolver:   resolver,
		calculator: calculator,
		recorder:   recorder,
		aggregator: aggregator,
	}
}

// ResolveCredential resolves a credential by name, consulting cache,
// environment, and store in that order.
func (s *Service) ResolveCredential(ctx context.Context, name string) (*models.Credential, error) {
	return s.resolver.Resolve(ctx, name, false)
}

// ValidateCredential probes the provider with the named credential.
func (s *Service) ValidateCredential(ctx context.Context, name string) bool {
	return s.resolver.Validate(ctx, name)
}

// RotateCredential validates and commits a new credential value.
func (s *Service) RotateCredential(ctx context.Context, name, newValue string) error {
	return s.resolver.Rotate(ctx, name, newValue)
}

// ComputeCost prices a token-based call.
func (s *Service) ComputeCost(provider models.ProviderID, model string, tokensIn, tokensOut int) float64 {
	return s.calculator.Cost(provider, model, tokensIn, tokensOut)
}

// ComputeImageCost prices a flat-rate image generation call.
func (s *Service) ComputeImageCost(provider models.ProviderID, model, size string) float64 {
	return s.calculator.ImageCost(provider, model, size)
}

// EstimateTokens approximates a token count from raw text.
func (s *Service) EstimateTokens(text string) int {
	return pricing.EstimateTokens(text)
}

// RecordUsage records a usage event, best effort. A nil return means
// the event was dropped.
func (s *Service) RecordUsage(ctx context.Context, event *models.UsageEvent) *models.UsageEvent {
	return s.recorder.Record(ctx, event)
}

// GetProviderStats aggregates events per provider over [start, end).
func (s *Service) GetProviderStats(ctx context.Context, filter map[string]any, start, end time.Time) ([]models.ProviderStats, error) {
	return s.aggregator.StatsByProvider(ctx, filter, start, end)
}

// GetUserStats aggregates attributable events per user over [start, end).
func (s *Service) GetUserStats(ctx context.Context, start, end time.Time) ([]models.UserStats, error) {
	return s.aggregator.StatsByUser(ctx, start, end)
}
