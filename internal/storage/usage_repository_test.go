package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"ai_metering/internal/models"
)

func TestUsageRepositoryCreate(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUsageRepository(db)

	mock.ExpectExec("INSERT INTO usage_events").
		WillReturnResult(sqlmock.NewResult(0, 1))

	event := &models.UsageEvent{
		Provider:  models.ProviderOpenAI,
		Endpoint:  "v1/chat/completions",
		Model:     "gpt-4o",
		TokensIn:  120,
		TokensOut: 45,
		Cost:      0.00075,
		Success:   true,
		LatencyMs: 840,
	}

	if err := repo.Create(context.Background(), event); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if event.ID == uuid.Nil {
		t.Error("Expected Create to assign an ID")
	}
	if event.CreatedAt.IsZero() {
		t.Error("Expected Create to stamp CreatedAt")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestUsageRepositoryCreatePreservesID(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUsageRepository(db)

	mock.ExpectExec("INSERT INTO usage_events").
		WillReturnResult(sqlmock.NewResult(0, 1))

	id := uuid.New()
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event := &models.UsageEvent{
		ID:        id,
		Provider:  models.ProviderGoogle,
		Endpoint:  "v1/generateContent",
		Model:     "gemini-2.0-flash",
		Success:   true,
		CreatedAt: stamp,
	}

	if err := repo.Create(context.Background(), event); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if event.ID != id {
		t.Error("Create should not overwrite a caller-supplied ID")
	}
	if !event.CreatedAt.Equal(stamp) {
		t.Error("Create should not overwrite a caller-supplied timestamp")
	}
}

func TestStatsByProvider(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUsageRepository(db)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT\\s+provider,").
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{
			"provider", "total_calls", "success_count", "failure_count",
			"total_cost", "total_tokens_in", "total_tokens_out", "avg_latency_ms",
		}).
			AddRow("google", 5, 5, 0, 0.02, 800, 300, 210.0).
			AddRow("openai", 3, 2, 1, 0.12, 210, 100, 950.5))

	stats, err := repo.StatsByProvider(context.Background(), nil, start, end)
	if err != nil {
		t.Fatalf("StatsByProvider failed: %v", err)
	}

	if len(stats) != 2 {
		t.Fatalf("Expected 2 provider rows, got %d", len(stats))
	}

	openai := stats[1]
	if openai.Provider != models.ProviderOpenAI {
		t.Errorf("Expected openai row, got %s", openai.Provider)
	}
	if openai.TotalCalls != 3 || openai.SuccessCount != 2 || openai.FailureCount != 1 {
		t.Errorf("Unexpected counts: %+v", openai)
	}
	if openai.TotalTokensIn != 210 || openai.TotalTokensOut != 100 {
		t.Errorf("Unexpected token totals: %+v", openai)
	}
}

func TestStatsByProviderFilterOrdering(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUsageRepository(db)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	// Filter clauses are appended in sorted key order, so the
	// endpoint value binds before the model value.
	mock.ExpectQuery("AND endpoint = \\$3 AND model = \\$4").
		WithArgs(start, end, "v1/chat/completions", "gpt-4o").
		WillReturnRows(sqlmock.NewRows([]string{
			"provider", "total_calls", "success_count", "failure_count",
			"total_cost", "total_tokens_in", "total_tokens_out", "avg_latency_ms",
		}))

	filter := map[string]any{
		"model":    "gpt-4o",
		"endpoint": "v1/chat/completions",
	}

	stats, err := repo.StatsByProvider(context.Background(), filter, start, end)
	if err != nil {
		t.Fatalf("StatsByProvider failed: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("Expected no rows, got %d", len(stats))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestStatsByUser(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUsageRepository(db)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INNER JOIN users").
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "email", "name", "total_calls",
			"total_cost", "total_tokens_in", "total_tokens_out",
		}).
			AddRow("user-1", "alice@example.com", "Alice", 12, 1.25, 4000, 1800).
			AddRow("user-2", "bob@example.com", "Bob", 4, 0.31, 900, 400))

	stats, err := repo.StatsByUser(context.Background(), start, end)
	if err != nil {
		t.Fatalf("StatsByUser failed: %v", err)
	}

	if len(stats) != 2 {
		t.Fatalf("Expected 2 user rows, got %d", len(stats))
	}
	if stats[0].UserID != "user-1" || stats[0].Email != "alice@example.com" {
		t.Errorf("Unexpected first row: %+v", stats[0])
	}
	if stats[0].TotalCalls != 12 {
		t.Errorf("Expected 12 calls, got %d", stats[0].TotalCalls)
	}
}
