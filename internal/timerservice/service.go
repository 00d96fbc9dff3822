package timerservice

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"rsiassist/internal/core/model"
)

// IdleChecker reports the duration of user inactivity.
type IdleChecker interface {
	IdleDuration() (time.Duration, error)
}

// Options contains runtime options for Service.
type Options struct {
	Stats  StatsStore
	Now    func() time.Time
	Logger *log.Logger
}

// Service performs the per-second break accounting that the client observes.
type Service struct {
	mu              sync.Mutex
	config          model.BreakConfig
	dailyUsage      int
	microActive     int
	restActive      int
	currentIdle     int
	day             string
	microWasOverdue bool
	restWasOverdue  bool
	stats           StatsStore
	now             func() time.Time
	logger          *log.Logger
	subscribers     map[int]chan model.TimerStatus
	nextID          int
}

// New creates a Service with the provided configuration.
func New(config model.BreakConfig, options Options) *Service {
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.Logger == nil {
		options.Logger = log.Default()
	}
	return &Service{
		config:      config,
		stats:       options.Stats,
		now:         options.Now,
		logger:      options.Logger,
		day:         options.Now().Format(DateLayout),
		subscribers: make(map[int]chan model.TimerStatus),
	}
}

// Subscribe registers an observer of status changes. The returned function unregisters it.
// A slow observer only ever misses intermediate snapshots, never the newest one.
func (service *Service) Subscribe(buffer int) (<-chan model.TimerStatus, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan model.TimerStatus, buffer)
	service.mu.Lock()
	id := service.nextID
	service.nextID++
	service.subscribers[id] = ch
	service.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			service.mu.Lock()
			defer service.mu.Unlock()
			if _, ok := service.subscribers[id]; ok {
				delete(service.subscribers, id)
				close(ch)
			}
		})
	}
}

// Run ticks once per interval until ctx is done.
func (service *Service) Run(ctx context.Context, checker IdleChecker, threshold, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	warned := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		idle := false
		if checker != nil {
			duration, err := checker.IdleDuration()
			switch {
			case err == nil:
				idle = duration > threshold
			case !warned:
				warned = true
				service.logger.Printf("timer service: idle detection unavailable, counting as active: %v", err)
			}
		}
		service.Tick(ctx, idle)
	}
}

// Tick advances the accounting by one second and publishes the new status.
func (service *Service) Tick(ctx context.Context, idle bool) model.TimerStatus {
	service.mu.Lock()
	today := service.now().Format(DateLayout)
	if today != service.day {
		service.day = today
		service.dailyUsage = 0
	}
	service.tickLocked(idle)
	status := service.statusLocked()

	var prompts []model.BreakType
	if status.MicroIsOverdue && !service.microWasOverdue {
		prompts = append(prompts, model.BreakMicro)
	}
	if status.RestIsOverdue && !service.restWasOverdue {
		prompts = append(prompts, model.BreakRest)
	}
	service.microWasOverdue = status.MicroIsOverdue
	service.restWasOverdue = status.RestIsOverdue
	service.broadcastLocked(status)
	service.mu.Unlock()

	if service.stats != nil {
		if err := service.stats.SetUsage(ctx, today, status.DailyUsage); err != nil {
			service.logger.Printf("timer service: %v", err)
		}
		for _, breakType := range prompts {
			if err := service.stats.CountPrompt(ctx, today, breakType); err != nil {
				service.logger.Printf("timer service: %v", err)
			}
		}
	}
	return status
}

func (service *Service) tickLocked(idle bool) {
	config := service.config
	if config.Mode == model.ModeSuspended {
		return
	}

	if idle {
		service.currentIdle++
		if config.MicrobreakEnabled && service.currentIdle >= config.MicrobreakDuration {
			service.microActive = 0
		}
		if config.RestEnabled && service.currentIdle >= config.RestDuration {
			service.restActive = 0
		}
		return
	}

	service.currentIdle = 0
	service.dailyUsage++
	if config.MicrobreakEnabled {
		service.microActive++
	}
	if config.RestEnabled {
		service.restActive++
	}
}

// Status returns the current snapshot.
func (service *Service) Status() model.TimerStatus {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.statusLocked()
}

func (service *Service) statusLocked() model.TimerStatus {
	config := service.config
	return model.TimerStatus{
		DailyUsage:     service.dailyUsage,
		DailyLimit:     config.DailyLimit,
		MicroActive:    service.microActive,
		MicroTarget:    config.MicrobreakInterval,
		MicroIsOverdue: service.microActive > config.MicrobreakInterval,
		RestActive:     service.restActive,
		RestTarget:     config.RestInterval,
		RestIsOverdue:  service.restActive > config.RestInterval,
		CurrentIdle:    service.currentIdle,
		Mode:           config.Mode,
	}
}

// Config returns the active configuration.
func (service *Service) Config() model.BreakConfig {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.config
}

// UpdateConfig replaces the active configuration.
func (service *Service) UpdateConfig(config model.BreakConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	service.mu.Lock()
	defer service.mu.Unlock()
	service.config = config
	service.broadcastLocked(service.statusLocked())
	return nil
}

// SetMode changes only the operation mode.
func (service *Service) SetMode(mode model.OperationMode) error {
	if err := mode.Validate(); err != nil {
		return err
	}
	service.mu.Lock()
	defer service.mu.Unlock()
	service.config.Mode = mode
	service.broadcastLocked(service.statusLocked())
	return nil
}

// ResetBreak zeroes the active counter of a break.
func (service *Service) ResetBreak(breakType model.BreakType) error {
	if err := breakType.Validate(); err != nil {
		return err
	}
	service.mu.Lock()
	defer service.mu.Unlock()
	switch breakType {
	case model.BreakMicro:
		service.microActive = 0
	case model.BreakRest:
		service.restActive = 0
	}
	service.broadcastLocked(service.statusLocked())
	return nil
}

// TriggerBreak sets the active counter just above the interval so the break is overdue.
func (service *Service) TriggerBreak(breakType model.BreakType) error {
	if err := breakType.Validate(); err != nil {
		return err
	}
	service.mu.Lock()
	defer service.mu.Unlock()
	switch breakType {
	case model.BreakMicro:
		service.microActive = service.config.MicrobreakInterval + 1
	case model.BreakRest:
		service.restActive = service.config.RestInterval + 1
	}
	service.broadcastLocked(service.statusLocked())
	return nil
}

// RecordTaken counts a prompted break that ran to completion today.
func (service *Service) RecordTaken(ctx context.Context, breakType model.BreakType) error {
	if err := breakType.Validate(); err != nil {
		return err
	}
	return service.statsStore().RecordTaken(ctx, service.today(), breakType)
}

// RecordPostponed counts a skipped break today.
func (service *Service) RecordPostponed(ctx context.Context, breakType model.BreakType) error {
	if err := breakType.Validate(); err != nil {
		return err
	}
	return service.statsStore().RecordPostponed(ctx, service.today(), breakType)
}

// Statistics returns up to days entries, newest first.
func (service *Service) Statistics(ctx context.Context, days int) ([]model.DailyStats, error) {
	return service.statsStore().LastNDays(ctx, days)
}

func (service *Service) today() string {
	return service.now().Format(DateLayout)
}

func (service *Service) statsStore() StatsStore {
	if service.stats == nil {
		return unavailableStats{}
	}
	return service.stats
}

func (service *Service) broadcastLocked(status model.TimerStatus) {
	for _, ch := range service.subscribers {
		select {
		case ch <- status:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- status:
		default:
		}
	}
}

// ErrNoStatistics indicates the service runs without a statistics store.
var ErrNoStatistics = errors.New("statistics store not configured")

type unavailableStats struct{}

func (unavailableStats) SetUsage(context.Context, string, int) error { return ErrNoStatistics }
func (unavailableStats) CountPrompt(context.Context, string, model.BreakType) error {
	return ErrNoStatistics
}
func (unavailableStats) RecordTaken(context.Context, string, model.BreakType) error {
	return ErrNoStatistics
}
func (unavailableStats) RecordPostponed(context.Context, string, model.BreakType) error {
	return ErrNoStatistics
}
func (unavailableStats) LastNDays(context.Context, int) ([]model.DailyStats, error) {
	return nil, ErrNoStatistics
}
