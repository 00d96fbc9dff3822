package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Options configures the router.
type Options struct {
	RateLimit rate.Limit
	Burst     int
	StatsTTL  time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(backend Backend, options Options) *gin.Engine {
	if options.RateLimit <= 0 {
		options.RateLimit = rate.Limit(50)
	}
	if options.Burst <= 0 {
		options.Burst = 25
	}
	if options.StatsTTL <= 0 {
		options.StatsTTL = 10 * time.Second
	}

	r := gin.Default()

	statsCache := cache.New(options.StatsTTL, 2*options.StatsTTL)
	handler := NewHandler(backend, statsCache)

	api := r.Group("/api")
	api.Use(RateLimiter(NewClientLimiters(options.RateLimit, options.Burst), "/api/events"))
	{
		api.GET("/status", handler.GetStatus)
		api.GET("/config", handler.GetConfig)
		api.PUT("/config", handler.PutConfig)
		api.PUT("/mode", handler.PutMode)
		api.POST("/breaks/:type/:action", handler.PostBreakAction)
		api.GET("/statistics", CacheStatistics(statsCache), handler.GetStatistics)
		api.GET("/events", handler.GetEvents)
	}

	return r
}
