package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai_metering/internal/models"
	"ai_metering/internal/queue"
	"ai_metering/internal/utils"
)

// UsageInserter persists usage events. Satisfied by UsageRepository;
// tests substitute a fake.
type UsageInserter interface {
	Create(ctx context.Context, event *models.UsageEvent) error
}

// UsageQueueWorker drains the usage queue and persists events in
// batches. Persistence is best effort: an event that fails to insert
// is logged and dropped, never retried. Metering must not block or
// fail the API calls it observes, and a missed row is an acceptable
// cost of that.
type UsageQueueWorker struct {
	queue       queue.Queue
	repo        UsageInserter
	config      *queue.Config
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewUsageQueueWorker creates a new usage queue worker
func NewUsageQueueWorker(q queue.Queue, repo UsageInserter, config *queue.Config) *UsageQueueWorker {
	if config == nil {
		config = queue.DefaultConfig("usage")
	}

	return &UsageQueueWorker{
		queue:       q,
		repo:        repo,
		config:      config,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Start starts the worker goroutine
func (w *UsageQueueWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop gracefully stops the worker
func (w *UsageQueueWorker) Stop() error {
	close(w.stopChan)
	<-w.stoppedChan
	return nil
}

// Enqueue adds a usage event to the queue
func (w *UsageQueueWorker) Enqueue(ctx context.Context, event *models.UsageEvent) error {
	return w.queue.Enqueue(ctx, event)
}

// run is the main worker loop
func (w *UsageQueueWorker) run(ctx context.Context) {
	defer close(w.stoppedChan)

	logger := utils.NewLogger("usage-worker")

	for {
		select {
		case <-w.stopChan:
			logger.Info("Usage worker stopping")
			return
		case <-ctx.Done():
			logger.Info("Usage worker context cancelled")
			return
		default:
			w.processBatch(ctx, logger)
		}
	}
}

// processBatch drains and persists one batch of usage events
func (w *UsageQueueWorker) processBatch(ctx context.Context, logger *utils.Logger) {
	items, err := w.queue.DequeueWithTimeout(ctx, w.config.BatchSize, w.config.BatchTimeout)
	if err != nil {
		logger.Error("Failed to dequeue usage events", "error", err)
		time.Sleep(1 * time.Second) // Back off on error
		return
	}

	if len(items) == 0 {
		return
	}

	logger.Debug("Processing usage batch", "count", len(items))

	events := make([]*models.UsageEvent, 0, len(items))
	for _, item := range items {
		var event models.UsageEvent
		if err := w.unmarshalItem(item, &event); err != nil {
			logger.Error("Failed to unmarshal usage event", "error", err)
			continue
		}
		events = append(events, &event)
	}

	for _, event := range events {
		if err := w.repo.Create(ctx, event); err != nil {
			// Best effort: drop the event and move on
			logger.Error("Failed to persist usage event, dropping",
				"provider", event.Provider, "model", event.Model, "error", err)
		}
	}
}

// unmarshalItem unmarshals a queue item into a UsageEvent
func (w *UsageQueueWorker) unmarshalItem(item interface{}, event *models.UsageEvent) error {
	switch v := item.(type) {
	case *models.UsageEvent:
		*event = *v
		return nil
	case models.UsageEvent:
		*event = v
		return nil
	case []byte:
		return json.Unmarshal(v, event)
	case json.RawMessage:
		return json.Unmarshal(v, event)
	default:
		// Try to marshal and unmarshal
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal item: %w", err)
		}
		return json.Unmarshal(data, event)
	}
}

// GetQueueLength returns the current queue length
func (w *UsageQueueWorker) GetQueueLength(ctx context.Context) (int, error) {
	return w.queue.Length(ctx)
}
