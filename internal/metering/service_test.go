package metering

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_metering/internal/credentials"
	"ai_metering/internal/models"
	"ai_metering/internal/pricing"
	"ai_metering/internal/providers"
	"ai_metering/internal/storage"
)

// serviceStore is an in-memory credentials.Store
type serviceStore struct {
	values map[string]string
}

func (s *serviceStore) Get(ctx context.Context, name string) (*models.Credential, error) {
	value, ok := s.values[name]
	if !ok {
		return nil, storage.ErrCredentialNotFound
	}
	return &models.Credential{Name: name, Value: value, Source: models.SourceStore}, nil
}

func (s *serviceStore) Upsert(ctx context.Context, name, value string) error {
	s.values[name] = value
	return nil
}

type acceptingProvider struct{}

func (acceptingProvider) ID() models.ProviderID                          { return models.ProviderOpenAI }
func (acceptingProvider) CredentialName() string                         { return "OPENAI_API_KEY" }
func (acceptingProvider) StoreKey() string                               { return "openaiApiKey" }
func (acceptingProvider) Probe(ctx context.Context, credential string) error { return nil }

func newTestService(store credentials.Store, reader StatsReader, sink EventSink) *Service {
	cache := storage.NewLRUCache(16, time.Minute)
	registry := providers.NewRegistry(acceptingProvider{})
	resolver := credentials.NewResolver(cache, store, registry, time.Second)

	table := pricing.NewTable()
	table.Seal()

	return NewService(resolver, pricing.NewCalculator(table), NewRecorder(sink), NewAggregator(reader))
}

func TestServiceCredentialLifecycle(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	store := &serviceStore{values: map[string]string{"openaiApiKey": "sk-old"}}
	service := newTestService(store, newMemoryStatsReader(), &fakeSink{})
	ctx := context.Background()

	cred, err := service.ResolveCredential(ctx, "OPENAI_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "sk-old", cred.Value)

	assert.True(t, service.ValidateCredential(ctx, "OPENAI_API_KEY"))

	require.NoError(t, service.RotateCredential(ctx, "OPENAI_API_KEY", "sk-new"))

	cred, err = service.ResolveCredential(ctx, "OPENAI_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "sk-new", cred.Value)
	assert.Equal(t, "sk-new", store.values["openaiApiKey"])
}

func TestServiceCostAndRecording(t *testing.T) {
	reader := newMemoryStatsReader()
	sink := &fakeSink{}
	store := &serviceStore{values: map[string]string{}}
	service := newTestService(store, reader, sink)
	ctx := context.Background()

	cost := service.ComputeCost(models.ProviderOpenAI, "gpt-4o", 1000, 500)
	assert.Greater(t, cost, 0.0)

	// Unknown model prices like the designated default model
	assert.Equal(t,
		service.ComputeCost(models.ProviderOpenAI, "gpt-4o-mini", 1000, 500),
		service.ComputeCost(models.ProviderOpenAI, "model-from-the-future", 1000, 500))

	tokens := service.EstimateTokens("a question about the weather")
	assert.Greater(t, tokens, 0)

	event := service.RecordUsage(ctx, &models.UsageEvent{
		Provider:  models.ProviderOpenAI,
		Endpoint:  "v1/chat/completions",
		Model:     "gpt-4o",
		TokensIn:  1000,
		TokensOut: 500,
		Cost:      cost,
		Success:   true,
	})
	require.NotNil(t, event)
	assert.Len(t, sink.events, 1)
}

func TestServiceStats(t *testing.T) {
	reader := newMemoryStatsReader()
	reader.users["u1"] = models.User{ID: "u1", Email: "alice@example.com", Name: "Alice"}

	start, end := window()
	at := start.Add(time.Hour)
	reader.add(
		&models.UsageEvent{Provider: models.ProviderOpenAI, Endpoint: "e", UserID: strPtr("u1"), Cost: 0.5, Success: true, CreatedAt: at},
		&models.UsageEvent{Provider: models.ProviderOpenAI, Endpoint: "e", Success: false, CreatedAt: at},
	)

	service := newTestService(&serviceStore{values: map[string]string{}}, reader, &fakeSink{})
	ctx := context.Background()

	providerStats, err := service.GetProviderStats(ctx, nil, start, end)
	require.NoError(t, err)
	require.Len(t, providerStats, 1)
	assert.Equal(t, int64(2), providerStats[0].TotalCalls)
	assert.InDelta(t, 0.5, providerStats[0].SuccessRate, 1e-9)

	userStats, err := service.GetUserStats(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, userStats, 1)
	assert.Equal(t, "alice@example.com", userStats[0].Email)
}
