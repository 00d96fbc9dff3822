package lifecycle

import (
	"context"
	"log"
	"sync"
	"time"

	"rsiassist/internal/core/model"
)

const (
	// FallbackMicroDuration is used when a microbreak arms before any config resolved.
	FallbackMicroDuration = 20
	// FallbackRestDuration is used when a rest break arms before any config resolved.
	FallbackRestDuration = 300
)

// Recorder is the part of the timer service that records break outcomes.
type Recorder interface {
	RecordBreakTaken(ctx context.Context, breakType model.BreakType) error
	RecordBreakPostponed(ctx context.Context, breakType model.BreakType) error
	ResetBreak(ctx context.Context, breakType model.BreakType) error
}

// TickSource starts a periodic tick and returns its channel and a stop function.
type TickSource func(interval time.Duration) (<-chan time.Time, func())

// Config contains runtime options for Controller.
type Config struct {
	TickInterval time.Duration
	TickSource   TickSource
	CallTimeout  time.Duration
	Logger       *log.Logger
}

// Controller enforces one break at a time: it arms when the timer service reports a break
// overdue, counts the locked duration down once per tick and records the outcome exactly once.
type Controller struct {
	mu          sync.Mutex
	recorder    Recorder
	options     Config
	logger      *log.Logger
	state       State
	session     Session
	generation  uint64
	config      model.BreakConfig
	configKnown bool
	settled     model.BreakType
	events      []chan Event
	tickStop    func()
	closed      bool
}

// New creates an idle controller.
func New(recorder Recorder, options Config) *Controller {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.TickSource == nil {
		options.TickSource = func(interval time.Duration) (<-chan time.Time, func()) {
			ticker := time.NewTicker(interval)
			return ticker.C, ticker.Stop
		}
	}
	if options.CallTimeout <= 0 {
		options.CallTimeout = 10 * time.Second
	}
	if options.Logger == nil {
		options.Logger = log.Default()
	}
	return &Controller{
		recorder: recorder,
		options:  options,
		logger:   options.Logger,
		state:    StateIdle,
	}
}

// Subscribe registers a new observer channel.
func (controller *Controller) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed {
		close(ch)
		return ch
	}
	controller.events = append(controller.events, ch)
	return ch
}

// View returns the current state and session.
func (controller *Controller) View() View {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.viewLocked()
}

// UpdateConfig sets the durations used for the next arming. A running session keeps its
// locked duration.
func (controller *Controller) UpdateConfig(config model.BreakConfig) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.config = config
	controller.configKnown = true
}

// UpdateStatus feeds a new snapshot from the timer service.
func (controller *Controller) UpdateStatus(status model.TimerStatus) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed {
		return
	}

	if controller.settled != model.BreakNone && !isOverdue(status, controller.settled) {
		controller.settled = model.BreakNone
	}

	switch controller.state {
	case StateIdle:
		if next := controller.nextBreakLocked(status); next != model.BreakNone {
			controller.armLocked(next)
		}
	case StateArmed:
		if status.OverdueBreak() == model.BreakNone {
			controller.endSessionLocked(EventCleared)
		}
	}
}

// Tick advances the running session by one second.
func (controller *Controller) Tick() {
	controller.mu.Lock()
	controller.tickLocked(controller.generation)
}

// Skip postpones the running break, resets its counter and dismisses the overlay.
// Dismissal happens even when the timer service rejects the calls.
func (controller *Controller) Skip() {
	controller.mu.Lock()
	if controller.closed {
		controller.mu.Unlock()
		return
	}
	breakType := controller.session.BreakType
	switch {
	case controller.state == StateSkipping:
		controller.mu.Unlock()
		return
	case controller.state == StateIdle, breakType == model.BreakNone:
		controller.endSessionLocked(EventDismiss)
		controller.mu.Unlock()
		return
	}
	controller.state = StateSkipping
	controller.generation++
	generation := controller.generation
	controller.stopTickLocked()
	controller.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), controller.options.CallTimeout)
	defer cancel()
	err := controller.recorder.RecordBreakPostponed(ctx, breakType)
	if err == nil {
		err = controller.recorder.ResetBreak(ctx, breakType)
	}

	controller.mu.Lock()
	defer controller.mu.Unlock()
	if err != nil {
		controller.logger.Printf("lifecycle: record postponed %s break: %v", breakType, err)
	}
	if controller.generation != generation {
		return
	}
	controller.emitLocked(EventSkipped, "")
	if err == nil {
		controller.settled = breakType
	}
	controller.endSessionLocked(EventDismiss)
}

// Close stops ticking and closes every observer. Calls still in flight finish but their
// results are ignored.
func (controller *Controller) Close() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed {
		return
	}
	controller.stopTickLocked()
	controller.closed = true
	controller.generation++
	controller.state = StateIdle
	controller.session = Session{}
	for _, ch := range controller.events {
		close(ch)
	}
	controller.events = nil
}

// tickLocked expects the lock held and releases it.
func (controller *Controller) tickLocked(generation uint64) {
	if controller.closed || controller.state != StateArmed || controller.generation != generation {
		controller.mu.Unlock()
		return
	}

	session := &controller.session
	if session.Elapsed < session.LockedDuration {
		session.Elapsed++
	}
	controller.emitLocked(EventProgress, "")

	if session.Elapsed < session.LockedDuration || session.Submitted {
		controller.mu.Unlock()
		return
	}

	session.Submitted = true
	controller.state = StateCompleting
	breakType := session.BreakType
	controller.mu.Unlock()

	controller.complete(generation, breakType)
}

func (controller *Controller) complete(generation uint64, breakType model.BreakType) {
	ctx, cancel := context.WithTimeout(context.Background(), controller.options.CallTimeout)
	defer cancel()
	err := controller.recorder.RecordBreakTaken(ctx, breakType)
	if err == nil {
		err = controller.recorder.ResetBreak(ctx, breakType)
	}

	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.generation != generation || controller.state != StateCompleting {
		return
	}
	if err != nil {
		controller.logger.Printf("lifecycle: record completed %s break: %v", breakType, err)
		controller.session.Submitted = false
		controller.state = StateArmed
		controller.emitLocked(EventError, err.Error())
		controller.emitLocked(EventDismiss, "")
		return
	}
	controller.emitLocked(EventCompleted, "")
	controller.settled = breakType
	controller.endSessionLocked(EventDismiss)
}

func (controller *Controller) armLocked(breakType model.BreakType) {
	duration := controller.durationLocked(breakType)
	controller.generation++
	controller.session = Session{
		BreakType:      breakType,
		LockedDuration: duration,
	}
	controller.state = StateArmed
	controller.startTickLocked(controller.generation)
	controller.emitLocked(EventArmed, "")
}

func (controller *Controller) durationLocked(breakType model.BreakType) int {
	var duration int
	switch {
	case controller.configKnown:
		duration = controller.config.BreakDuration(breakType)
	case breakType == model.BreakMicro:
		duration = FallbackMicroDuration
	default:
		duration = FallbackRestDuration
	}
	if duration < 0 {
		return 0
	}
	return duration
}

func (controller *Controller) endSessionLocked(eventType EventType) {
	controller.stopTickLocked()
	controller.generation++
	controller.state = StateIdle
	controller.session = Session{}
	controller.emitLocked(eventType, "")
}

func (controller *Controller) startTickLocked(generation uint64) {
	controller.stopTickLocked()
	ticks, stop := controller.options.TickSource(controller.options.TickInterval)
	done := make(chan struct{})
	controller.tickStop = func() {
		stop()
		close(done)
	}
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticks:
				controller.mu.Lock()
				controller.tickLocked(generation)
			}
		}
	}()
}

func (controller *Controller) stopTickLocked() {
	if controller.tickStop == nil {
		return
	}
	controller.tickStop()
	controller.tickStop = nil
}

func (controller *Controller) viewLocked() View {
	return View{State: controller.state, Session: controller.session}
}

func (controller *Controller) emitLocked(eventType EventType, message string) {
	event := Event{
		Type:    eventType,
		View:    controller.viewLocked(),
		Message: message,
		At:      time.Now(),
	}
	for _, ch := range controller.events {
		select {
		case ch <- event:
		default:
		}
	}
}

// nextBreakLocked picks the overdue break to arm. Micro always wins over rest; when the winner
// was just settled the snapshot is stale and nothing arms.
func (controller *Controller) nextBreakLocked(status model.TimerStatus) model.BreakType {
	next := status.OverdueBreak()
	if next == controller.settled {
		return model.BreakNone
	}
	return next
}

func isOverdue(status model.TimerStatus, breakType model.BreakType) bool {
	switch breakType {
	case model.BreakMicro:
		return status.MicroIsOverdue
	case model.BreakRest:
		return status.RestIsOverdue
	default:
		return false
	}
}
