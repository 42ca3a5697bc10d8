package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"power-status-backend/internal/history"
	"power-status-backend/internal/logger"
	"power-status-backend/internal/schedule"
	"power-status-backend/internal/store"
	"power-status-backend/internal/stream"
)

// SchedulePredictor answers schedule predictions.
type SchedulePredictor interface {
	NextMoments(groupID int, now time.Time, loc *time.Location) schedule.Prediction
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	history   *history.Service
	predictor SchedulePredictor
	webpush   *webpush.Options
	hub       *stream.Hub
	log       logger.Logger
	now       func() time.Time
}

// NewHandler creates a new API handler. predictor and hub may be nil when the
// corresponding features are disabled.
func NewHandler(s store.Store, predictor SchedulePredictor, webpushOptions *webpush.Options, hub *stream.Hub, log logger.Logger) *Handler {
	return &Handler{
		store:     s,
		history:   history.NewService(s),
		predictor: predictor,
		webpush:   webpushOptions,
		hub:       hub,
		log:       log,
		now:       time.Now,
	}
}
