package statusstream

import (
	"context"
	"log"
	"sync"

	"rsiassist/internal/core/model"
)

// Source is the part of the timer service the stream reads from.
type Source interface {
	Status(ctx context.Context) (model.TimerStatus, error)
	Subscribe(ctx context.Context) (<-chan model.TimerStatus, error)
}

// Options contains runtime options for Stream.
type Options struct {
	Logger *log.Logger
}

// Stream holds the latest TimerStatus, merging one initial pull with the push channel.
// The most recently arrived snapshot wins regardless of which request produced it.
type Stream struct {
	mu          sync.Mutex
	source      Source
	logger      *log.Logger
	latest      model.TimerStatus
	known       bool
	active      bool
	generation  uint64
	cancel      context.CancelFunc
	subscribers []chan model.TimerStatus
	closed      bool
}

// New creates an inactive stream.
func New(source Source, options Options) *Stream {
	if options.Logger == nil {
		options.Logger = log.Default()
	}
	return &Stream{
		source: source,
		logger: options.Logger,
	}
}

// Subscribe registers an observer. Slow observers lose intermediate snapshots but always
// receive the newest one.
func (stream *Stream) Subscribe(buffer int) <-chan model.TimerStatus {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan model.TimerStatus, buffer)
	stream.mu.Lock()
	defer stream.mu.Unlock()
	if stream.closed {
		close(ch)
		return ch
	}
	stream.subscribers = append(stream.subscribers, ch)
	if stream.known {
		ch <- stream.latest
	}
	return ch
}

// Latest returns the most recent snapshot, or false if none has arrived yet.
func (stream *Stream) Latest() (model.TimerStatus, bool) {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	return stream.latest, stream.known
}

// Activate subscribes to push updates and issues the initial pull. Calling it on an
// active stream does nothing.
func (stream *Stream) Activate(ctx context.Context) {
	stream.mu.Lock()
	if stream.active || stream.closed {
		stream.mu.Unlock()
		return
	}
	stream.active = true
	stream.generation++
	generation := stream.generation
	runCtx, cancel := context.WithCancel(ctx)
	stream.cancel = cancel
	stream.mu.Unlock()

	go stream.listen(runCtx, generation)
	go stream.pull(runCtx, generation)
}

// Deactivate cancels the push subscription. Results still in flight are discarded.
func (stream *Stream) Deactivate() {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	stream.deactivateLocked()
}

// Close deactivates the stream and closes every observer channel.
func (stream *Stream) Close() {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	if stream.closed {
		return
	}
	stream.deactivateLocked()
	stream.closed = true
	for _, ch := range stream.subscribers {
		close(ch)
	}
	stream.subscribers = nil
}

func (stream *Stream) deactivateLocked() {
	if !stream.active {
		return
	}
	stream.active = false
	stream.generation++
	stream.cancel()
	stream.cancel = nil
}

func (stream *Stream) pull(ctx context.Context, generation uint64) {
	status, err := stream.source.Status(ctx)
	if err != nil {
		if stream.isCurrent(generation) {
			stream.logger.Printf("status stream: initial pull failed: %v", err)
		}
		return
	}
	stream.deliver(generation, status)
}

func (stream *Stream) listen(ctx context.Context, generation uint64) {
	updates, err := stream.source.Subscribe(ctx)
	if err != nil {
		if stream.isCurrent(generation) {
			stream.logger.Printf("status stream: subscribe failed: %v", err)
		}
		return
	}
	for status := range updates {
		stream.deliver(generation, status)
	}
}

func (stream *Stream) isCurrent(generation uint64) bool {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	return stream.active && stream.generation == generation
}

func (stream *Stream) deliver(generation uint64, status model.TimerStatus) {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	if !stream.active || stream.generation != generation {
		return
	}
	stream.latest = status
	stream.known = true
	for _, ch := range stream.subscribers {
		offerLatest(ch, status)
	}
}

func offerLatest(ch chan model.TimerStatus, status model.TimerStatus) {
	select {
	case ch <- status:
		return
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
