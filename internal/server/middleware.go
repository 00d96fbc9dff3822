package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// clientIdleExpiry drops the limiter of a client that made no request for this long.
const clientIdleExpiry = 10 * time.Minute

// ClientLimiters hands out one token bucket per client address.
type ClientLimiters struct {
	mu       sync.Mutex
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
}

// NewClientLimiters creates an empty limiter set.
func NewClientLimiters(limit rate.Limit, burst int) *ClientLimiters {
	return &ClientLimiters{
		limiters: cache.New(clientIdleExpiry, clientIdleExpiry),
		limit:    limit,
		burst:    burst,
	}
}

// Allow consumes one token for the client.
func (limiters *ClientLimiters) Allow(client string) bool {
	limiters.mu.Lock()
	defer limiters.mu.Unlock()
	limiter, ok := limiters.limiters.Get(client)
	if !ok {
		limiter = rate.NewLimiter(limiters.limit, limiters.burst)
	}
	limiters.limiters.Set(client, limiter, cache.DefaultExpiration)
	return limiter.(*rate.Limiter).Allow()
}

// RateLimiter rejects clients that exceed their budget. Routes listed in exempt (gin full
// paths) skip the check; the push stream is one long request and must not be cut off by it.
func RateLimiter(limiters *ClientLimiters, exempt ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(exempt))
	for _, path := range exempt {
		skip[path] = true
	}
	return func(c *gin.Context) {
		if skip[c.FullPath()] {
			c.Next()
			return
		}
		if !limiters.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}

type statisticsEntry struct {
	contentType string
	body        []byte
}

type statisticsRecorder struct {
	gin.ResponseWriter
	body []byte
}

func (w *statisticsRecorder) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}

func (w *statisticsRecorder) WriteString(s string) (int, error) {
	w.body = append(w.body, s...)
	return w.ResponseWriter.WriteString(s)
}

func statisticsKey(days int) string {
	return fmt.Sprintf("statistics:%d", days)
}

// CacheStatistics answers repeated statistics requests for the same number of days from store.
// Requests with an invalid days value go straight to the handler. Break records flush store.
func CacheStatistics(store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, err := parseStatisticsDays(c.Query("days"))
		if err != nil {
			c.Next()
			return
		}

		key := statisticsKey(days)
		if cached, found := store.Get(key); found {
			entry := cached.(statisticsEntry)
			c.Data(http.StatusOK, entry.contentType, entry.body)
			c.Abort()
			return
		}

		recorder := &statisticsRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		if recorder.Status() == http.StatusOK {
			store.SetDefault(key, statisticsEntry{
				contentType: recorder.Header().Get("Content-Type"),
				body:        recorder.body,
			})
		}
	}
}
