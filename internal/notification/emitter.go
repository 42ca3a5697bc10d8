package notification

import (
	"context"
	"fmt"
	"sync"

	"power-status-backend/internal/logger"
	"power-status-backend/internal/metrics"
)

// Change announces that a place's power state flipped. Subscribers read the
// details from the store.
type Change struct {
	PlaceID string `json:"placeId"`
}

// Subscriber is a downstream consumer of changes, typically a messaging gateway.
type Subscriber interface {
	Name() string
	Notify(ctx context.Context, change Change) error
}

// Emitter fans changes out to subscribers from a pool of workers. Delivery is
// best effort: nothing is retried and a full buffer drops the change.
type Emitter struct {
	size    int
	changes chan Change
	log     logger.Logger
	metrics *metrics.Metrics

	mu          sync.RWMutex
	subscribers []Subscriber
}

// NewEmitter creates an emitter with size workers and a buffer of pending changes.
func NewEmitter(size, buffer int, log logger.Logger, m *metrics.Metrics) *Emitter {
	return &Emitter{
		size:    size,
		changes: make(chan Change, buffer),
		log:     log,
		metrics: m,
	}
}

// Subscribe registers sub for all future changes.
func (e *Emitter) Subscribe(sub Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, sub)
}

// Start launches the worker goroutines.
func (e *Emitter) Start(ctx context.Context) {
	for i := 0; i < e.size; i++ {
		go e.worker(ctx, i)
	}
}

func (e *Emitter) worker(ctx context.Context, id int) {
	e.log.Debug("notification worker started", "worker", id)
	for {
		select {
		case change := <-e.changes:
			e.deliver(ctx, change)
		case <-ctx.Done():
			e.log.Debug("notification worker shutting down", "worker", id)
			return
		}
	}
}

// Publish queues a change without blocking.
func (e *Emitter) Publish(change Change) {
	select {
	case e.changes <- change:
	default:
		e.metrics.Notifications.WithLabelValues("emitter", "dropped").Inc()
		e.log.Warn("notification buffer full, dropping change", "place_id", change.PlaceID)
	}
}

// Changes returns the pending changes channel for testing.
func (e *Emitter) Changes() chan Change {
	return e.changes
}

func (e *Emitter) deliver(ctx context.Context, change Change) {
	e.mu.RLock()
	subscribers := make([]Subscriber, len(e.subscribers))
	copy(subscribers, e.subscribers)
	e.mu.RUnlock()

	for _, sub := range subscribers {
		if err := e.notify(ctx, sub, change); err != nil {
			e.metrics.Notifications.WithLabelValues(sub.Name(), "error").Inc()
			e.log.Error("subscriber failed to handle change", "subscriber", sub.Name(), "place_id", change.PlaceID, "error", err)
			continue
		}
		e.metrics.Notifications.WithLabelValues(sub.Name(), "ok").Inc()
	}
}

func (e *Emitter) notify(ctx context.Context, sub Subscriber, change Change) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panicked: %v", r)
		}
	}()
	return sub.Notify(ctx, change)
}
