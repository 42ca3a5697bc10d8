package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"power-status-backend/config"
	"power-status-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router. Metrics are served from
// gatherer when it is not nil.
func NewRouter(handler *Handler, cfg config.ServerConfig, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.Logger(handler.log))

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Responses are short-lived; a new state change is at most one tick old anyway.
	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/places", caching, handler.GetPlaces)
		api.GET("/places/:place_id/current", caching, handler.GetCurrent)
		api.GET("/places/:place_id/stats", caching, handler.GetStats)
		api.GET("/places/:place_id/stats/monthly", caching, handler.GetMonthlyStats)
		api.GET("/places/:place_id/schedule", caching, handler.GetSchedule)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		api.GET("/stream", handler.GetStream)
	}

	return r
}
