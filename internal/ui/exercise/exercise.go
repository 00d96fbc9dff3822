package exercise

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Prompt is one exercise suggested during a break.
type Prompt struct {
	Title       string
	Description string
}

// DefaultPrompts returns the built-in exercise list.
func DefaultPrompts() []Prompt {
	return []Prompt{
		{Title: "Wrist Rolls", Description: "Gently roll your wrists in circles for 10 seconds."},
		{Title: "Neck Stretch", Description: "Tilt your head to the side, hold for 15s, switch."},
		{Title: "Shoulder Shrugs", Description: "Lift shoulders to ears, release. Repeat 5 times."},
		{Title: "Palming", Description: "Rub hands together to warm them, then place over closed eyes."},
		{Title: "Distant Gaze", Description: "Look at something 20 feet away for 20 seconds (20-20-20 rule)."},
	}
}

// Range defines a duration range with random sampling.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Random returns a random duration within the range.
func (value Range) Random(rng *rand.Rand) time.Duration {
	if value.Max <= value.Min {
		return value.Min
	}
	delta := value.Max - value.Min
	return value.Min + time.Duration(rng.Int63n(int64(delta)))
}

// Config contains rotation timing.
type Config struct {
	Hold Range
}

// DefaultConfig holds each prompt for 12 to 18 seconds.
func DefaultConfig() Config {
	return Config{Hold: Range{Min: 12 * time.Second, Max: 18 * time.Second}}
}

// Rotator cycles exercise prompts while a break is on screen.
type Rotator struct {
	mu       sync.Mutex
	config   Config
	prompts  []Prompt
	onPrompt func(Prompt)
	cancel   context.CancelFunc
	next     int
	rng      *rand.Rand
}

// New creates a rotator reporting each prompt through onPrompt.
func New(config Config, prompts []Prompt, onPrompt func(Prompt)) *Rotator {
	if len(prompts) == 0 {
		prompts = DefaultPrompts()
	}
	return &Rotator{
		config:   config,
		prompts:  prompts,
		onPrompt: onPrompt,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start shows the next prompt immediately and rotates until ctx is done or Stop is called.
// Consecutive breaks continue where the previous one stopped.
func (rotator *Rotator) Start(ctx context.Context) {
	rotator.mu.Lock()
	if rotator.cancel != nil {
		rotator.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	rotator.cancel = cancel
	rotator.mu.Unlock()

	go rotator.run(runCtx)
}

// Stop terminates the active rotation.
func (rotator *Rotator) Stop() {
	rotator.mu.Lock()
	defer rotator.mu.Unlock()
	if rotator.cancel != nil {
		rotator.cancel()
		rotator.cancel = nil
	}
}

func (rotator *Rotator) run(ctx context.Context) {
	for {
		prompt, hold := rotator.advance()
		if ctx.Err() != nil {
			return
		}
		rotator.onPrompt(prompt)
		if !sleepWithContext(ctx, hold) {
			return
		}
	}
}

func (rotator *Rotator) advance() (Prompt, time.Duration) {
	rotator.mu.Lock()
	defer rotator.mu.Unlock()
	prompt := rotator.prompts[rotator.next%len(rotator.prompts)]
	rotator.next++
	return prompt, rotator.config.Hold.Random(rotator.rng)
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
