package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AllTopics subscribes a handler to every event type.
const AllTopics = "*"

// InMemoryQueue fans events out to in-process subscribers with retry.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]Handler
	wg       sync.WaitGroup

	MaxRetries int
	// Backoff is multiplied by the attempt number between retries.
	Backoff time.Duration
	Logger  *slog.Logger
}

var _ Publisher = (*InMemoryQueue)(nil)

func NewInMemoryQueue(logger *slog.Logger) *InMemoryQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryQueue{
		handlers:   make(map[string][]Handler),
		MaxRetries: 3,
		Backoff:    500 * time.Millisecond,
		Logger:     logger,
	}
}

// job wraps an event with retry info
type job struct {
	event      Event
	retryCount int
}

// Publish hands the event to every subscriber of its type and of AllTopics.
// Each handler runs on its own goroutine; with no subscribers the event is
// dropped.
func (q *InMemoryQueue) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	handlers := append(append([]Handler{}, q.handlers[e.Type]...), q.handlers[AllTopics]...)
	q.mu.Unlock()

	for _, h := range handlers {
		q.wg.Add(1)
		go q.processJob(h, job{event: e})
	}
	return nil
}

func (q *InMemoryQueue) processJob(h Handler, j job) {
	defer q.wg.Done()

	for {
		err := h(j.event)
		if err == nil {
			return
		}

		j.retryCount++
		q.Logger.Warn("event handler failed",
			"type", j.event.Type,
			"attempt", j.retryCount,
			"max_retries", q.MaxRetries,
			"error", err,
		)

		if j.retryCount > q.MaxRetries {
			q.Logger.Error("event permanently failed", "type", j.event.Type, "attempts", j.retryCount)
			return
		}

		time.Sleep(time.Duration(j.retryCount) * q.Backoff)
	}
}

// Subscribe adds a handler for a topic, or for AllTopics.
func (q *InMemoryQueue) Subscribe(topic string, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], h)
}

// Close waits for in-flight handlers to finish.
func (q *InMemoryQueue) Close() error {
	q.wg.Wait()
	return nil
}

// LogSubscriber writes every event it sees to logger.
func LogSubscriber(logger *slog.Logger) Handler {
	return func(e Event) error {
		logger.Info("📩 event",
			"type", e.Type,
			"user_id", e.UserID,
			"resource_id", e.ResourceID,
			"occurred_at", e.OccurredAt,
		)
		return nil
	}
}
