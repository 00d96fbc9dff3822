package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"rsiassist/internal/core/model"
	"rsiassist/internal/timerservice"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestBackend(t *testing.T) *timerservice.Service {
	t.Helper()
	db, err := timerservice.OpenDatabase(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return timerservice.New(model.DefaultBreakConfig(), timerservice.Options{
		Stats:  timerservice.NewGormStats(db),
		Logger: log.New(io.Discard, "", 0),
	})
}

func perform(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func TestGetStatus(t *testing.T) {
	backend := newTestBackend(t)
	backend.Tick(context.Background(), false)
	router := NewRouter(backend, Options{})

	w := perform(router, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var status model.TimerStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, 1, status.DailyUsage)
	assert.Equal(t, 180, status.MicroTarget)
	assert.Equal(t, model.ModeNormal, status.Mode)
}

func TestPutConfigMergesOverCurrent(t *testing.T) {
	backend := newTestBackend(t)
	router := NewRouter(backend, Options{})

	w := perform(router, http.MethodPut, "/api/config", `{"microbreak_interval":250}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = perform(router, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, w.Code)
	var config model.BreakConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &config))
	assert.Equal(t, 250, config.MicrobreakInterval)
	assert.Equal(t, 2700, config.RestInterval)
}

func TestPutConfigRejectsInvalidValues(t *testing.T) {
	router := NewRouter(newTestBackend(t), Options{})

	w := perform(router, http.MethodPut, "/api/config", `{"rest_duration":-5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodPut, "/api/config", `{"mode":"Loud"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodPut, "/api/config", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPutMode(t *testing.T) {
	backend := newTestBackend(t)
	router := NewRouter(backend, Options{})

	w := perform(router, http.MethodPut, "/api/mode", `{"mode":"Quiet"}`)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, model.ModeQuiet, backend.Config().Mode)

	w = perform(router, http.MethodPut, "/api/mode", `{"mode":"Loud"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")

	w = perform(router, http.MethodPut, "/api/mode", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBreakActions(t *testing.T) {
	backend := newTestBackend(t)
	router := NewRouter(backend, Options{})

	w := perform(router, http.MethodPost, "/api/breaks/rest/trigger", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, backend.Status().RestIsOverdue)

	w = perform(router, http.MethodPost, "/api/breaks/rest/reset", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, backend.Status().RestIsOverdue)

	w = perform(router, http.MethodPost, "/api/breaks/long/taken", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodPost, "/api/breaks/micro/ignored", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatisticsReflectRecordsDespiteCache(t *testing.T) {
	router := NewRouter(newTestBackend(t), Options{StatsTTL: time.Hour})

	w := perform(router, http.MethodGet, "/api/statistics?days=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = perform(router, http.MethodPost, "/api/breaks/micro/taken", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = perform(router, http.MethodPost, "/api/breaks/rest/postponed", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = perform(router, http.MethodGet, "/api/statistics?days=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats []model.DailyStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].MicroPromptedTaken)
	assert.Equal(t, 1, stats[0].RestPostponed)

	w = perform(router, http.MethodGet, "/api/statistics?days=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	router := NewRouter(newTestBackend(t), Options{RateLimit: rate.Limit(0.001), Burst: 2})

	assert.Equal(t, http.StatusOK, perform(router, http.MethodGet, "/api/status", "").Code)
	assert.Equal(t, http.StatusOK, perform(router, http.MethodGet, "/api/status", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(router, http.MethodGet, "/api/status", "").Code)
}

func TestEventsStreamTimerUpdates(t *testing.T) {
	backend := newTestBackend(t)
	server := httptest.NewServer(NewRouter(backend, Options{}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	scanner := bufio.NewScanner(resp.Body)
	readData := func() model.TimerStatus {
		t.Helper()
		var event string
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				require.Equal(t, TimerUpdateEvent, event)
				var status model.TimerStatus
				require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &status))
				return status
			}
		}
		t.Fatal("stream ended before an event arrived")
		return model.TimerStatus{}
	}

	initial := readData()
	assert.Zero(t, initial.DailyUsage)

	backend.Tick(context.Background(), false)
	pushed := readData()
	assert.Positive(t, pushed.DailyUsage)
}

func TestRateLimiterSkipsEventsStream(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestBackend(t), Options{RateLimit: rate.Limit(0.001), Burst: 1}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/status")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, err = http.Get(server.URL + "/api/status")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClientLimitersAreIndependent(t *testing.T) {
	limiters := NewClientLimiters(rate.Limit(0.001), 1)

	assert.True(t, limiters.Allow("10.0.0.1"))
	assert.False(t, limiters.Allow("10.0.0.1"))
	assert.True(t, limiters.Allow("10.0.0.2"))
}

func TestCacheStatisticsKeysOnParsedDays(t *testing.T) {
	calls := 0
	r := gin.New()
	r.GET("/statistics", CacheStatistics(cache.New(time.Hour, time.Hour)), func(c *gin.Context) {
		calls++
		days, err := parseStatisticsDays(c.Query("days"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"days": days, "call": calls})
	})

	first := perform(r, http.MethodGet, "/statistics?days=3", "")
	require.Equal(t, http.StatusOK, first.Code)
	second := perform(r, http.MethodGet, "/statistics?days=03", "")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Contains(t, second.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, 1, calls)

	withDefault := perform(r, http.MethodGet, "/statistics", "")
	require.Equal(t, http.StatusOK, withDefault.Code)
	again := perform(r, http.MethodGet, "/statistics?days=7", "")
	assert.Equal(t, withDefault.Body.String(), again.Body.String())
	assert.Equal(t, 2, calls)

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/statistics?days=x", "").Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/statistics?days=x", "").Code)
	assert.Equal(t, 4, calls)
}
