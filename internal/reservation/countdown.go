package reservation

import (
	"sync"
	"time"

	"github.com/avelora/slot-reservation/internal/clock"
)

// DefaultTickInterval is the countdown granularity.
const DefaultTickInterval = time.Second

// Countdown tracks the remaining time until an absolute deadline and
// signals expiry exactly once.  It ticks at a fixed granularity,
// recomputing remaining = deadline − now on each tick, so a suspended or
// delayed process still expires at the right wall-clock instant instead
// of drifting with missed ticks.
//
// The Expired channel is closed at most once, when remaining reaches
// zero.  Stop tears the countdown down without firing; it is safe to
// call repeatedly and after expiry.  Countdown is advisory: the store's
// deadline predicate remains the authoritative check.
type Countdown struct {
	remaining chan time.Duration
	expired   chan struct{}
	done      chan struct{}
	stop      chan struct{}
	stopOnce  sync.Once
}

// CountdownOption customizes a Countdown.
type CountdownOption func(*countdownConfig)

type countdownConfig struct {
	tick time.Duration
}

// WithTickInterval overrides the one-second tick granularity.  Tests use
// this to run countdowns in milliseconds.
func WithTickInterval(d time.Duration) CountdownOption {
	return func(c *countdownConfig) {
		if d > 0 {
			c.tick = d
		}
	}
}

// NewCountdown starts a countdown toward deadline using the supplied
// clock.  The returned Countdown is already running.
func NewCountdown(deadline time.Time, clk clock.Clock, opts ...CountdownOption) *Countdown {
	cfg := countdownConfig{tick: DefaultTickInterval}
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &Countdown{
		remaining: make(chan time.Duration, 1),
		expired:   make(chan struct{}),
		done:      make(chan struct{}),
		stop:      make(chan struct{}),
	}
	go c.run(deadline, clk, cfg.tick)
	return c
}

func (c *Countdown) run(deadline time.Time, clk clock.Clock, tick time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			rem := deadline.Sub(clk.Now())
			if rem <= 0 {
				close(c.expired)
				return
			}
			// Drop the previous reading if nobody consumed it; a
			// countdown must never block on a slow listener.
			select {
			case c.remaining <- rem:
			default:
				select {
				case <-c.remaining:
				default:
				}
				select {
				case c.remaining <- rem:
				default:
				}
			}
		}
	}
}

// Remaining delivers the latest remaining duration once per tick.
func (c *Countdown) Remaining() <-chan time.Duration { return c.remaining }

// Expired is closed exactly once when the deadline passes.  It never
// closes if the countdown is stopped first.
func (c *Countdown) Expired() <-chan struct{} { return c.expired }

// Done is closed when the countdown goroutine has exited, whether by
// expiry or by Stop.
func (c *Countdown) Done() <-chan struct{} { return c.done }

// Stop tears the countdown down without firing expiry.  Safe to call
// more than once and after expiry.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}
