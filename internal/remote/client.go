package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"rsiassist/internal/core/model"
)

// ErrUnavailable wraps transport failures: the timer service could not be reached.
var ErrUnavailable = errors.New("timer service unavailable")

// StatusError is returned when the timer service answers with a non-2xx code.
type StatusError struct {
	Code    int
	Message string
}

func (err *StatusError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("timer service returned %d", err.Code)
	}
	return fmt.Sprintf("timer service returned %d: %s", err.Code, err.Message)
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit rate.Limit
	Burst     int
	StatsTTL  time.Duration
	Logger    *log.Logger
}

// Client talks to the timer service over HTTP.
type Client struct {
	baseURL      *url.URL
	client       *http.Client
	streamClient *http.Client
	limiter      *rate.Limiter
	stats        *cache.Cache
	statsTTL     time.Duration
	logger       *log.Logger
}

// NewClient validates options and returns a ready client.
func NewClient(options Options) (*Client, error) {
	baseURL, err := url.Parse(strings.TrimRight(options.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("parse base url: unsupported scheme %q", baseURL.Scheme)
	}
	if options.Timeout <= 0 {
		options.Timeout = 5 * time.Second
	}
	if options.RateLimit <= 0 {
		options.RateLimit = rate.Limit(20)
	}
	if options.Burst <= 0 {
		options.Burst = 10
	}
	if options.StatsTTL <= 0 {
		options.StatsTTL = 30 * time.Second
	}
	if options.Logger == nil {
		options.Logger = log.Default()
	}

	return &Client{
		baseURL:      baseURL,
		client:       &http.Client{Timeout: options.Timeout},
		streamClient: &http.Client{},
		limiter:      rate.NewLimiter(options.RateLimit, options.Burst),
		stats:        cache.New(options.StatsTTL, 2*options.StatsTTL),
		statsTTL:     options.StatsTTL,
		logger:       options.Logger,
	}, nil
}

// Status fetches the current timer status.
func (client *Client) Status(ctx context.Context) (model.TimerStatus, error) {
	var status model.TimerStatus
	if err := client.do(ctx, http.MethodGet, "/api/status", nil, &status); err != nil {
		return model.TimerStatus{}, fmt.Errorf("get status: %w", err)
	}
	return status, nil
}

// Config fetches the service's active config. Fields the service omits stay absent.
func (client *Client) Config(ctx context.Context) (model.PartialBreakConfig, error) {
	var config model.PartialBreakConfig
	if err := client.do(ctx, http.MethodGet, "/api/config", nil, &config); err != nil {
		return model.PartialBreakConfig{}, fmt.Errorf("get config: %w", err)
	}
	return config, nil
}

// SetConfig replaces the service's active config.
func (client *Client) SetConfig(ctx context.Context, config model.BreakConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("set config: %w", err)
	}
	if err := client.do(ctx, http.MethodPut, "/api/config", config, nil); err != nil {
		return fmt.Errorf("set config: %w", err)
	}
	return nil
}

// SetMode changes only the operation mode.
func (client *Client) SetMode(ctx context.Context, mode model.OperationMode) error {
	if err := mode.Validate(); err != nil {
		return fmt.Errorf("set mode: %w", err)
	}
	body := struct {
		Mode model.OperationMode `json:"mode"`
	}{Mode: mode}
	if err := client.do(ctx, http.MethodPut, "/api/mode", body, nil); err != nil {
		return fmt.Errorf("set mode: %w", err)
	}
	return nil
}

// RecordBreakTaken marks a break as completed.
func (client *Client) RecordBreakTaken(ctx context.Context, breakType model.BreakType) error {
	defer client.stats.Flush()
	return client.breakAction(ctx, breakType, "taken")
}

// RecordBreakPostponed marks a break as postponed.
func (client *Client) RecordBreakPostponed(ctx context.Context, breakType model.BreakType) error {
	defer client.stats.Flush()
	return client.breakAction(ctx, breakType, "postponed")
}

// ResetBreak zeroes the active counter of a break.
func (client *Client) ResetBreak(ctx context.Context, breakType model.BreakType) error {
	return client.breakAction(ctx, breakType, "reset")
}

// TriggerBreak forces a break to become overdue.
func (client *Client) TriggerBreak(ctx context.Context, breakType model.BreakType) error {
	return client.breakAction(ctx, breakType, "trigger")
}

// Statistics returns up to days daily aggregates, newest first. Results are cached briefly.
func (client *Client) Statistics(ctx context.Context, days int) ([]model.DailyStats, error) {
	if days <= 0 {
		return nil, fmt.Errorf("get statistics: days must be positive, got %d", days)
	}
	key := "stats:" + strconv.Itoa(days)
	if cached, ok := client.stats.Get(key); ok {
		return cached.([]model.DailyStats), nil
	}

	var stats []model.DailyStats
	path := "/api/statistics?days=" + strconv.Itoa(days)
	if err := client.do(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, fmt.Errorf("get statistics: %w", err)
	}
	client.stats.Set(key, stats, client.statsTTL)
	return stats, nil
}

func (client *Client) breakAction(ctx context.Context, breakType model.BreakType, action string) error {
	if err := breakType.Validate(); err != nil {
		return fmt.Errorf("%s break: %w", action, err)
	}
	path := fmt.Sprintf("/api/breaks/%s/%s", breakType, action)
	if err := client.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("%s break %s: %w", action, breakType, err)
	}
	return nil
}

func (client *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if err := client.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, client.endpoint(path), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeStatusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (client *Client) endpoint(path string) string {
	return client.baseURL.String() + path
}

func decodeStatusError(resp *http.Response) error {
	statusErr := &StatusError{Code: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return statusErr
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		statusErr.Message = payload.Error
	} else {
		statusErr.Message = strings.TrimSpace(string(raw))
	}
	return statusErr
}
