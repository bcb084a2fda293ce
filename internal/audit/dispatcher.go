// Package audit delivers audit events off the request path. Publish never
// blocks the caller and a failing sink is logged, never surfaced.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"distribution-backend/internal/core"

	"go.uber.org/zap"
)

// Sink persists one audit event.
type Sink interface {
	Write(ctx context.Context, event core.AuditEvent) error
}

// Config sizes the dispatcher.
type Config struct {
	BufferSize   int
	Workers      int
	WriteTimeout time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:   256,
		Workers:      1,
		WriteTimeout: 2 * time.Second,
	}
}

// Dispatcher is a core.AuditPublisher backed by a bounded queue drained by a
// fixed set of workers. Events published while the queue is full, or after
// Stop, are dropped with a warning.
type Dispatcher struct {
	sinks  []Sink
	config Config
	logger *zap.Logger

	queue chan core.AuditEvent

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

var _ core.AuditPublisher = (*Dispatcher)(nil)

func NewDispatcher(config Config, logger *zap.Logger, sinks ...Sink) *Dispatcher {
	def := DefaultConfig()
	if config.BufferSize <= 0 {
		config.BufferSize = def.BufferSize
	}
	if config.Workers <= 0 {
		config.Workers = def.Workers
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = def.WriteTimeout
	}
	return &Dispatcher{
		sinks:  sinks,
		config: config,
		logger: logger.Named("audit"),
		queue:  make(chan core.AuditEvent, config.BufferSize),
	}
}

// Start launches the workers. Workers drain the queue until Stop closes it;
// ctx only bounds individual sink writes.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	// Workers end when Stop closes the queue, not when ctx is cancelled.
	base := context.WithoutCancel(ctx)
	for i := 0; i < d.config.Workers; i++ {
		d.wg.Add(1)
		go d.worker(base)
	}

	d.logger.Info("audit dispatcher started",
		zap.Int("workers", d.config.Workers),
		zap.Int("buffer_size", d.config.BufferSize),
		zap.Int("sinks", len(d.sinks)),
	)
}

// Publish enqueues event without blocking.
func (d *Dispatcher) Publish(_ context.Context, event core.AuditEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("audit event dropped after shutdown",
			zap.String("event_id", event.ID),
			zap.String("action", string(event.Action)),
		)
		return
	}

	select {
	case d.queue <- event:
	default:
		d.logger.Warn("audit queue full, event dropped",
			zap.String("event_id", event.ID),
			zap.String("action", string(event.Action)),
			zap.Int64("target_id", event.TargetID),
		)
	}
}

// Stop closes the queue and waits for the workers to flush what is left, or
// for ctx to expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("audit dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.logger.Warn("audit dispatcher stop timed out", zap.Int("pending", len(d.queue)))
		return ctx.Err()
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for event := range d.queue {
		d.deliver(ctx, event)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, event core.AuditEvent) {
	for _, sink := range d.sinks {
		if err := d.write(ctx, sink, event); err != nil {
			d.logger.Error("audit sink write failed",
				zap.String("event_id", event.ID),
				zap.String("action", string(event.Action)),
				zap.Error(err),
			)
		}
	}
}

// write runs one sink with a timeout. A panicking sink is reported as an
// error so the worker keeps draining the queue.
func (d *Dispatcher) write(ctx context.Context, sink Sink, event core.AuditEvent) (err error) {
	writeCtx, cancel := context.WithTimeout(ctx, d.config.WriteTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("audit sink panicked: %v", r)
		}
	}()
	return sink.Write(writeCtx, event)
}
