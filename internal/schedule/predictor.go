package schedule

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"power-status-backend/config"
	"power-status-backend/internal/logger"
	"power-status-backend/internal/metrics"
)

// Predictor keeps the schedules of all groups cached and answers predictions
// from the cache only.
type Predictor struct {
	source     Source
	entries    *cache.Cache
	groups     []int
	interval   time.Duration
	staleAfter time.Duration
	margin     time.Duration
	limiter    *rate.Limiter
	log        logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewPredictor creates a predictor. Nothing is fetched until Run or Refresh.
func NewPredictor(source Source, cfg config.ScheduleConfig, log logger.Logger, m *metrics.Metrics) *Predictor {
	margin := cfg.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}
	return &Predictor{
		source: source,
		// Entries never expire on their own; staleness is checked explicitly.
		entries:    cache.New(cache.NoExpiration, 0),
		groups:     cfg.Groups,
		interval:   cfg.RefreshInterval,
		staleAfter: cfg.StaleAfter,
		margin:     margin,
		limiter:    rate.NewLimiter(rate.Every(cfg.RequestDelay), 1),
		log:        log,
		metrics:    m,
		now:        time.Now,
	}
}

// Run refreshes the cache immediately and then every refresh interval.
func (p *Predictor) Run(ctx context.Context) {
	p.log.Info("starting schedule refresh loop", "groups", p.groups, "interval", p.interval.String())

	p.Refresh(ctx)

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("schedule refresh loop shutting down")
			return
		case <-timer.C:
			p.Refresh(ctx)
			timer.Reset(p.interval)
		}
	}
}

// Refresh fetches every group once, pacing requests with the limiter. A failed
// group keeps its previous entry until that becomes stale.
func (p *Predictor) Refresh(ctx context.Context) {
	for _, group := range p.groups {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
		p.refreshGroup(ctx, group)
	}
}

func (p *Predictor) refreshGroup(ctx context.Context, group int) {
	weekly, err := p.source.FetchWeekly(ctx, group)
	now := p.now()
	if err != nil {
		p.metrics.ScheduleRefresh.WithLabelValues("error").Inc()
		p.log.Error("failed to refresh schedule", "group", group, "error", err)

		if entry, ok := p.lookup(group); ok && p.isStale(entry, now) {
			p.entries.Delete(key(group))
			p.metrics.ScheduleRefresh.WithLabelValues("evicted").Inc()
			p.log.Warn("cached schedule expired, evicting", "group", group, "fetched_at", entry.FetchedAt)
		}
		return
	}

	p.entries.Set(key(group), &Entry{GroupID: group, FetchedAt: now, Weekly: weekly}, cache.NoExpiration)
	p.metrics.ScheduleRefresh.WithLabelValues("ok").Inc()
	p.log.Debug("schedule refreshed", "group", group)
}

// Entry returns the cached schedule of group, evicting it if it is stale at now.
func (p *Predictor) Entry(group int, now time.Time) (*Entry, bool) {
	entry, ok := p.lookup(group)
	if !ok {
		return nil, false
	}
	if p.isStale(entry, now) {
		p.entries.Delete(key(group))
		p.metrics.ScheduleRefresh.WithLabelValues("evicted").Inc()
		return nil, false
	}
	return entry, true
}

// NextMoments predicts the next changes of group as seen from now in loc. An
// unknown or stale group yields an empty prediction.
func (p *Predictor) NextMoments(group int, now time.Time, loc *time.Location) Prediction {
	entry, ok := p.Entry(group, now)
	if !ok {
		p.log.Warn("no schedule data cached for group", "group", group)
		return Prediction{}
	}
	return Predict(entry.Weekly, now, loc, p.margin)
}

func (p *Predictor) lookup(group int) (*Entry, bool) {
	v, ok := p.entries.Get(key(group))
	if !ok {
		return nil, false
	}
	return v.(*Entry), true
}

func (p *Predictor) isStale(entry *Entry, now time.Time) bool {
	return p.staleAfter > 0 && now.Sub(entry.FetchedAt) > p.staleAfter
}

func key(group int) string {
	return strconv.Itoa(group)
}
