package monitor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"

	"power-status-backend/internal/logger"
	"power-status-backend/internal/metrics"
	"power-status-backend/internal/model"
	"power-status-backend/internal/notification"
	"power-status-backend/internal/store"
)

// Prober checks whether a place has power.
type Prober interface {
	Probe(ctx context.Context, place model.Place, budget time.Duration) (bool, error)
}

// Publisher receives a change after it has been recorded.
type Publisher interface {
	Publish(change notification.Change)
}

// Service runs availability checks for every enabled place.
type Service struct {
	store     store.Store
	prober    Prober
	detector  *Detector
	publisher Publisher
	schedule  string
	log       logger.Logger
	metrics   *metrics.Metrics

	// checking holds one *atomic.Bool per place ID.
	checking sync.Map
	now      func() time.Time
}

// NewService creates a check orchestrator ticking on the given cron schedule.
func NewService(st store.Store, prober Prober, publisher Publisher, schedule string, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:     st,
		prober:    prober,
		detector:  NewDetector(st),
		publisher: publisher,
		schedule:  schedule,
		log:       log,
		metrics:   m,
		now:       time.Now,
	}
}

// Run checks all places once, then on every tick of the schedule until ctx is
// done. Ticks may overlap; the per-place guard keeps that safe.
func (s *Service) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("invalid check schedule %q: %w", s.schedule, err)
	}

	s.log.Info("starting availability monitor", "schedule", s.schedule)
	go s.tick(ctx)
	c.Start()

	<-ctx.Done()
	s.log.Info("availability monitor shutting down")
	<-c.Stop().Done()
	return nil
}

func (s *Service) tick(ctx context.Context) {
	if err := s.CheckAll(ctx); err != nil {
		s.log.Error("check cycle finished with errors", "error", err)
	}
}

// CheckAll checks every enabled place concurrently and waits for all of them.
// The returned error combines the failures of individual places.
func (s *Service) CheckAll(ctx context.Context) error {
	places, err := s.store.ListPlaces(ctx)
	if err != nil {
		return fmt.Errorf("failed to load places: %w", err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	for _, place := range places {
		if place.IsDisabled {
			continue
		}
		wg.Add(1)
		go func(place model.Place) {
			defer wg.Done()
			if err := s.checkPlace(ctx, place); err != nil {
				s.metrics.Checks.WithLabelValues("error").Inc()
				s.log.Error("place check failed", "place_id", place.ID, "error", err)
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
		}(place)
	}
	wg.Wait()
	return errs
}

// IsChecking reports whether a check of the place is in flight.
func (s *Service) IsChecking(placeID string) bool {
	cell, ok := s.checking.Load(placeID)
	return ok && cell.(*atomic.Bool).Load()
}

func (s *Service) guard(placeID string) *atomic.Bool {
	cell, _ := s.checking.LoadOrStore(placeID, new(atomic.Bool))
	return cell.(*atomic.Bool)
}

func (s *Service) checkPlace(ctx context.Context, place model.Place) (err error) {
	cell := s.guard(place.ID)
	if !cell.CompareAndSwap(false, true) {
		s.metrics.ChecksSkipped.Inc()
		s.log.Warn("previous check still running, skipping", "place_id", place.ID)
		return nil
	}

	var changed bool
	func() {
		defer cell.Store(false)
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("place check panicked", "place_id", place.ID, "panic", r, "stack", string(debug.Stack()))
				err = fmt.Errorf("place %s: check panicked: %v", place.ID, r)
			}
		}()
		changed, err = s.runPipeline(ctx, place)
	}()

	if err == nil && changed {
		s.publisher.Publish(notification.Change{PlaceID: place.ID})
	}
	return err
}

func (s *Service) runPipeline(ctx context.Context, place model.Place) (bool, error) {
	started := s.now()
	alive, err := s.prober.Probe(ctx, place, place.Threshold())
	s.metrics.CheckDuration.Observe(s.now().Sub(started).Seconds())
	if err != nil {
		return false, err
	}
	if alive {
		s.metrics.Checks.WithLabelValues("available").Inc()
	} else {
		s.metrics.Checks.WithLabelValues("unavailable").Inc()
	}

	decision, err := s.detector.Evaluate(ctx, place.ID, alive, s.now())
	if err != nil {
		return false, fmt.Errorf("place %s: %w", place.ID, err)
	}
	if !decision.Changed {
		return false, nil
	}

	if err := s.store.AppendAvailability(ctx, place.ID, decision.Event.IsAvailable, decision.Event.CreatedAt); err != nil {
		return false, err
	}

	state := "unavailable"
	if decision.Event.IsAvailable {
		state = "available"
	}
	s.metrics.StateChanges.WithLabelValues(state).Inc()
	s.log.Info("power state changed", "place_id", place.ID, "is_available", decision.Event.IsAvailable)
	return true, nil
}
