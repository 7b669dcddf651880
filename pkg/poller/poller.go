// Package poller waits in the background for the runtime to become
// observable on disk.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultInterval is the time between readiness checks.
const DefaultInterval = 5 * time.Second

// Flag is a boolean that flips from false to true once.
type Flag struct {
	mu  sync.Mutex
	set bool
}

// Set marks the flag and reports whether this call changed it.
func (f *Flag) Set() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.set {
		return false
	}
	f.set = true
	return true
}

func (f *Flag) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set
}

// Poller runs check every interval until it returns true, then sets the
// flag and stops for good. It also stops when its context is cancelled or
// Stop is called.
type Poller struct {
	check    func() bool
	flag     *Flag
	interval time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a poller. A non-positive interval means DefaultInterval.
func New(check func() bool, flag *Flag, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		check:    check,
		flag:     flag,
		interval: interval,
		log:      log.With().Str("component", "poller").Logger(),
		done:     make(chan struct{}),
	}
}

// Start launches the polling loop. Only the first call has any effect.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	p.log.Debug().Dur("interval", p.interval).Msg("Readiness polling started")
	go p.loop(ctx)
}

// Stop cancels the loop if it is running.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done is closed when the loop has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Debug().Msg("Readiness polling stopped")
			return
		case <-ticker.C:
			if p.check() {
				p.flag.Set()
				p.log.Info().Msg("Runtime is ready")
				return
			}
		}
	}
}
