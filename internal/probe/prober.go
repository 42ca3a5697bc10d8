package probe

import (
	"context"
	"fmt"
	"time"

	"power-status-backend/internal/model"
)

// Checker performs a single liveness attempt against host. A host that does
// not answer is (false, nil); an error means the attempt could not be set up
// at all.
type Checker interface {
	Check(ctx context.Context, host string, timeout time.Duration) (bool, error)
}

// Prober retries a place's checker at a fixed backoff until it succeeds or the
// budget runs out.
type Prober struct {
	checkers       map[model.CheckType]Checker
	attemptTimeout time.Duration
	backoff        time.Duration
	now            func() time.Time
}

// NewProber creates a prober. checkers maps each supported check type to its
// implementation.
func NewProber(checkers map[model.CheckType]Checker, attemptTimeout, backoff time.Duration) *Prober {
	return &Prober{
		checkers:       checkers,
		attemptTimeout: attemptTimeout,
		backoff:        backoff,
		now:            time.Now,
	}
}

// Probe reports whether the place's host answered within budget. Exhausting the
// budget is a regular false result, not an error.
func (p *Prober) Probe(ctx context.Context, place model.Place, budget time.Duration) (bool, error) {
	checkType := place.CheckType
	if checkType == "" {
		checkType = model.CheckTypePing
	}
	checker, ok := p.checkers[checkType]
	if !ok {
		return false, fmt.Errorf("place %s: unsupported check type %q", place.ID, checkType)
	}

	started := p.now()
	for attempt := 1; ; attempt++ {
		alive, err := checker.Check(ctx, place.Host, p.attemptTimeout)
		if err != nil {
			return false, fmt.Errorf("place %s: %s check of %s failed on attempt %d: %w", place.ID, checkType, place.Host, attempt, err)
		}
		if alive {
			return true, nil
		}
		if p.now().Sub(started) >= budget {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(p.backoff):
		}
	}
}
