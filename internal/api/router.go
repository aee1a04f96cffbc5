package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/kozynetsoleksandr/reservation/config"
	"github.com/kozynetsoleksandr/reservation/internal/mw"
	"github.com/kozynetsoleksandr/reservation/internal/service"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(svc *service.Service, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()
	handler := NewHandler(svc)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Short-lived read cache; every successful write flushes it so reads
	// never serve stale lifecycle state.
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore)
	flushing := mw.FlushOnWrite(cacheStore)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/reservations", caching, handler.ListReservations)
		api.GET("/reservations/:id", caching, handler.GetReservation)
		api.POST("/reservations", flushing, handler.CreateReservation)
		api.PUT("/reservations/:id", flushing, handler.UpdateReservation)
		api.DELETE("/reservations/:id/cancel", flushing, handler.CancelReservation)
		api.POST("/reservations/:id/approve", flushing, handler.ApproveReservation)
		api.DELETE("/reservations/:id", flushing, handler.DeleteReservation)
	}

	return r
}
