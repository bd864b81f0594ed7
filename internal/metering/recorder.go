package metering

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ai_metering/internal/models"
	"ai_metering/internal/utils"
)

// EventSink accepts usage events for asynchronous persistence.
// Satisfied by storage.UsageQueueWorker.
type EventSink interface {
	Enqueue(ctx context.Context, event *models.UsageEvent) error
}

// Recorder validates and records usage events. Recording is best
// effort by contract: any failure, from a missing required field to an
// unreachable queue, is logged and swallowed and the caller gets nil
// back. The API call being metered already happened, so nothing here
// may fail the caller's own response path. Dropped events are the
// accepted price.
type Recorder struct {
	sink   EventSink
	logger *utils.Logger
}

// NewRecorder creates a usage recorder
func NewRecorder(sink EventSink) *Recorder {
	return &Recorder{
		sink:   sink,
		logger: utils.NewLogger("usage-recorder"),
	}
}

// Record validates, stamps, and enqueues a usage event. Returns the
// stamped event, or nil when the event was rejected or could not be
// queued. Never returns an error.
func (r *Recorder) Record(ctx context.Context, event *models.UsageEvent) *models.UsageEvent {
	if event == nil {
		r.logger.Error("Dropping nil usage event")
		return nil
	}

	if !event.Provider.Valid() {
		r.logger.Error("Dropping usage event with unknown provider", "provider", event.Provider)
		return nil
	}
	if event.Endpoint == "" {
		r.logger.Error("Dropping usage event without endpoint", "provider", event.Provider)
		return nil
	}

	// Numeric fields never go negative
	if event.TokensIn < 0 {
		event.TokensIn = 0
	}
	if event.TokensOut < 0 {
		event.TokensOut = 0
	}
	if event.Cost < 0 {
		event.Cost = 0
	}
	if event.LatencyMs < 0 {
		event.LatencyMs = 0
	}

	// An error message only makes sense on a failed call
	if event.Success {
		event.ErrorMessage = nil
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	if err := r.sink.Enqueue(ctx, event); err != nil {
		r.logger.Error("Failed to queue usage event, dropping",
			"provider", event.Provider, "endpoint", event.Endpoint, "error", err)
		return nil
	}

	return event
}
