// Package keepalive runs a periodic health check against a dependency.
package keepalive

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"cabbooking/internal/metrics"
)

const (
	DefaultInterval = 5 * time.Minute
	defaultTimeout  = 10 * time.Second
)

// Check reports whether the target is reachable.
type Check func(ctx context.Context) error

// Probe calls Check on every tick. Failures are logged and counted, nothing else.
type Probe struct {
	target   string
	check    Check
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewProbe(target string, check Check, interval time.Duration, log *zap.Logger) *Probe {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	timeout := defaultTimeout
	if interval < timeout {
		timeout = interval
	}
	return &Probe{
		target:   target,
		check:    check,
		interval: interval,
		timeout:  timeout,
		log:      log.With(zap.String("target", target)),
	}
}

// Run blocks until ctx is done.
func (p *Probe) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Debug("keep-alive started", zap.Duration("interval", p.interval))
	for {
		select {
		case <-ticker.C:
			p.tick(ctx)
		case <-ctx.Done():
			p.log.Debug("keep-alive stopped")
			return
		}
	}
}

func (p *Probe) tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	if err := p.check(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		metrics.KeepAliveFailures.WithLabelValues(p.target).Inc()
		p.log.Warn("keep-alive check failed", zap.Error(err), zap.Duration("after", time.Since(start)))
		return
	}
	p.log.Debug("keep-alive ok", zap.Duration("took", time.Since(start)))
}

// Start runs the probe in the background until Stop or ctx is done. A second
// Start while running is a no-op.
func (p *Probe) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done

	go func() {
		defer close(done)
		p.Run(ctx)
	}()
}

// Stop cancels a started probe and waits for its loop to exit.
func (p *Probe) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
