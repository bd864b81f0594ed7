package queue

import (
	"context"
	"testing"
	"time"
)

func TestMemoryQueue_EnqueueDequeue(t *testing.T) {
	q := NewMemoryQueue(nil)
	defer q.Close()

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := q.Enqueue(ctx, i); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
	}

	length, err := q.Length(ctx)
	if err != nil {
		t.Fatalf("Length() error = %v", err)
	}
	if length != 5 {
		t.Errorf("Length() = %d, want 5", length)
	}

	items, err := q.DequeueWithTimeout(ctx, 10, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("DequeueWithTimeout() error = %v", err)
	}
	if len(items) != 5 {
		t.Errorf("dequeued %d items, want 5", len(items))
	}
	for i, item := range items {
		if item.(int) != i {
			t.Errorf("items[%d] = %v, want %d (FIFO order)", i, item, i)
		}
	}
}

func TestMemoryQueue_BatchSizeLimit(t *testing.T) {
	cfg := DefaultConfig("test")
	cfg.BatchSize = 3
	q := NewMemoryQueue(cfg)
	defer q.Close()

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := q.Enqueue(ctx, i); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
	}

	items, err := q.DequeueWithTimeout(ctx, 3, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("DequeueWithTimeout() error = %v", err)
	}
	if len(items) != 3 {
		t.Errorf("dequeued %d items, want batch of 3", len(items))
	}
}

func TestMemoryQueue_DequeueTimeout(t *testing.T) {
	q := NewMemoryQueue(nil)
	defer q.Close()

	start := time.Now()
	items, err := q.DequeueWithTimeout(context.Background(), 10, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("DequeueWithTimeout() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("dequeued %d items from empty queue, want 0", len(items))
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("returned after %v, expected to wait for the timeout", elapsed)
	}
}

func TestMemoryQueue_Closed(t *testing.T) {
	q := NewMemoryQueue(nil)
	if err := q.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	// Closing twice is fine.
	if err := q.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	ctx := context.Background()
	if err := q.Enqueue(ctx, 1); err != ErrQueueClosed {
		t.Errorf("Enqueue() on closed queue error = %v, want ErrQueueClosed", err)
	}
	if _, err := q.DequeueWithTimeout(ctx, 1, time.Millisecond); err != ErrQueueClosed {
		t.Errorf("DequeueWithTimeout() on closed queue error = %v, want ErrQueueClosed", err)
	}
	if _, err := q.Length(ctx); err != ErrQueueClosed {
		t.Errorf("Length() on closed queue error = %v, want ErrQueueClosed", err)
	}
}

func TestMemoryQueue_ContextCancelled(t *testing.T) {
	q := NewMemoryQueue(nil)
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := q.DequeueWithTimeout(ctx, 1, time.Second); err != context.Canceled {
		t.Errorf("DequeueWithTimeout() error = %v, want context.Canceled", err)
	}
}
