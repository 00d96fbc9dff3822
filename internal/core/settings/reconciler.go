package settings

import (
	"context"
	"fmt"
	"log"
	"sync"

	"rsiassist/internal/core/model"
)

// LocalStore is the persisted settings document on this machine.
type LocalStore interface {
	LoadBreakConfig() (model.PartialBreakConfig, bool, error)
	SaveBreakConfig(config model.BreakConfig) error
}

// Remote is the config surface of the timer service.
type Remote interface {
	Config(ctx context.Context) (model.PartialBreakConfig, error)
	SetConfig(ctx context.Context, config model.BreakConfig) error
	SetMode(ctx context.Context, mode model.OperationMode) error
}

// Source names the store whose value won reconciliation.
type Source string

const (
	SourceDefaults Source = "defaults"
	SourceRemote   Source = "remote"
	SourceLocal    Source = "local"
)

// Result describes one reconciliation.
type Result struct {
	Config model.BreakConfig
	Source Source
	Pushed bool
}

// Options contains runtime options for Reconciler.
type Options struct {
	Defaults *model.BreakConfig
	Logger   *log.Logger
}

// Reconciler merges compiled defaults, the remote config and the local store into the single
// active BreakConfig, in that ascending order of precedence.
type Reconciler struct {
	opMu        sync.Mutex
	mu          sync.Mutex
	local       LocalStore
	remote      Remote
	defaults    model.BreakConfig
	logger      *log.Logger
	active      model.BreakConfig
	source      Source
	resolved    bool
	closed      bool
	subscribers []chan model.BreakConfig
}

// New creates a Reconciler. Nothing is loaded until Reconcile is called.
func New(local LocalStore, remote Remote, options Options) *Reconciler {
	defaults := model.DefaultBreakConfig()
	if options.Defaults != nil {
		defaults = *options.Defaults
	}
	if options.Logger == nil {
		options.Logger = log.Default()
	}
	return &Reconciler{
		local:    local,
		remote:   remote,
		defaults: defaults,
		logger:   options.Logger,
	}
}

// Subscribe registers an observer of the active config. The newest value is always kept.
func (reconciler *Reconciler) Subscribe(buffer int) <-chan model.BreakConfig {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan model.BreakConfig, buffer)
	reconciler.mu.Lock()
	defer reconciler.mu.Unlock()
	if reconciler.closed {
		close(ch)
		return ch
	}
	reconciler.subscribers = append(reconciler.subscribers, ch)
	if reconciler.resolved {
		ch <- reconciler.active
	}
	return ch
}

// Current returns the active config, or false before the first reconciliation finished.
func (reconciler *Reconciler) Current() (model.BreakConfig, bool) {
	reconciler.mu.Lock()
	defer reconciler.mu.Unlock()
	return reconciler.active, reconciler.resolved
}

// Close closes every observer channel. Reconciliations still in flight finish but no longer
// change the active config.
func (reconciler *Reconciler) Close() {
	reconciler.mu.Lock()
	defer reconciler.mu.Unlock()
	if reconciler.closed {
		return
	}
	reconciler.closed = true
	for _, ch := range reconciler.subscribers {
		close(ch)
	}
	reconciler.subscribers = nil
}

// Reconcile resolves the active config.
//
// A locally saved value wins and becomes active once the timer service accepted it; otherwise
// the remote value is overlaid on the defaults. A failing local store counts as absent. A
// failing remote keeps the previous active config, or the defaults before the first success.
// The returned error reports the failure; the Result is always usable.
func (reconciler *Reconciler) Reconcile(ctx context.Context) (Result, error) {
	reconciler.opMu.Lock()
	defer reconciler.opMu.Unlock()

	localLayer, found, err := reconciler.local.LoadBreakConfig()
	if err != nil {
		reconciler.logger.Printf("settings: load local config, treating as absent: %v", err)
		found = false
	}

	if found {
		config := model.Resolve(reconciler.defaults, localLayer)
		if err := reconciler.remote.SetConfig(ctx, config); err != nil {
			reconciler.logger.Printf("settings: push local config, keeping previous config: %v", err)
			return reconciler.keepActive(), fmt.Errorf("push local config: %w", err)
		}
		reconciler.publish(config, SourceLocal)
		return Result{Config: config, Source: SourceLocal, Pushed: true}, nil
	}

	remoteLayer, err := reconciler.remote.Config(ctx)
	if err != nil {
		reconciler.logger.Printf("settings: fetch remote config, keeping defaults: %v", err)
		return reconciler.keepActive(), fmt.Errorf("fetch remote config: %w", err)
	}

	config := model.Resolve(reconciler.defaults, remoteLayer)
	reconciler.publish(config, SourceRemote)
	return Result{Config: config, Source: SourceRemote}, nil
}

// Save stores a user-edited config locally, then pushes it to the timer service.
// The config becomes active only after the push succeeded; the next Reconcile retries it.
func (reconciler *Reconciler) Save(ctx context.Context, config model.BreakConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	reconciler.opMu.Lock()
	defer reconciler.opMu.Unlock()

	if err := reconciler.local.SaveBreakConfig(config); err != nil {
		return fmt.Errorf("save settings locally: %w", err)
	}
	if err := reconciler.remote.SetConfig(ctx, config); err != nil {
		return fmt.Errorf("push settings: %w", err)
	}
	reconciler.publish(config, SourceLocal)
	return nil
}

// SetMode pushes only the operation mode and updates the active config on success.
func (reconciler *Reconciler) SetMode(ctx context.Context, mode model.OperationMode) error {
	if err := mode.Validate(); err != nil {
		return fmt.Errorf("set mode: %w", err)
	}
	reconciler.opMu.Lock()
	defer reconciler.opMu.Unlock()

	if err := reconciler.remote.SetMode(ctx, mode); err != nil {
		return fmt.Errorf("set mode: %w", err)
	}

	reconciler.mu.Lock()
	defer reconciler.mu.Unlock()
	if !reconciler.resolved || reconciler.closed {
		return nil
	}
	reconciler.active.Mode = mode
	reconciler.emitLocked(reconciler.active)
	return nil
}

// keepActive leaves the active config in place after a failed remote call. Before the first
// success the compiled defaults become active.
func (reconciler *Reconciler) keepActive() Result {
	reconciler.mu.Lock()
	defer reconciler.mu.Unlock()
	if !reconciler.resolved {
		reconciler.activateLocked(reconciler.defaults, SourceDefaults)
	}
	return Result{Config: reconciler.active, Source: reconciler.source}
}

func (reconciler *Reconciler) publish(config model.BreakConfig, source Source) {
	reconciler.mu.Lock()
	defer reconciler.mu.Unlock()
	reconciler.activateLocked(config, source)
}

func (reconciler *Reconciler) activateLocked(config model.BreakConfig, source Source) {
	if reconciler.closed {
		return
	}
	reconciler.active = config
	reconciler.source = source
	reconciler.resolved = true
	reconciler.emitLocked(config)
}

func (reconciler *Reconciler) emitLocked(config model.BreakConfig) {
	for _, ch := range reconciler.subscribers {
		select {
		case ch <- config:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- config:
		default:
		}
	}
}
