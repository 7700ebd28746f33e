package game

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// TimerConfig sets the per-player time budget. A zero Initial means untimed.
type TimerConfig struct {
	Initial   time.Duration
	Increment time.Duration
}

// Timer is a coarse two-player game clock. It runs its expiry callback on
// the clock's own goroutine.
type Timer struct {
	mu        sync.Mutex
	clk       clock.Clock
	cfg       TimerConfig
	remaining [2]time.Duration
	running   Player
	startedAt time.Time
	alarm     *clock.Timer
	expired   Player
	onExpire  func(Player)
}

// NewTimer creates a stopped timer. onExpire may be nil.
func NewTimer(clk clock.Clock, cfg TimerConfig, onExpire func(Player)) *Timer {
	if clk == nil {
		clk = clock.New()
	}
	return &Timer{
		clk:       clk,
		cfg:       cfg,
		remaining: [2]time.Duration{cfg.Initial, cfg.Initial},
		onExpire:  onExpire,
	}
}

// Enabled reports whether the game is timed.
func (t *Timer) Enabled() bool { return t != nil && t.cfg.Initial > 0 }

// Start runs p's clock.
func (t *Timer) Start(p Player) {
	if !t.Enabled() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.startLocked(p)
}

// Moved charges the mover, credits the increment and starts the opponent.
func (t *Timer) Moved(mover Player) {
	if !t.Enabled() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	if t.expired == PlayerNone {
		t.remaining[mover.idx()] += t.cfg.Increment
	}
	t.startLocked(mover.Opponent())
}

// Stop pauses the clocks.
func (t *Timer) Stop() {
	if !t.Enabled() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Remaining returns p's time left, counting a running clock.
func (t *Timer) Remaining(p Player) time.Duration {
	if !t.Enabled() {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.remaining[p.idx()]
	if t.running == p {
		r -= t.clk.Since(t.startedAt)
	}
	if r < 0 {
		r = 0
	}
	return r
}

// Expired returns the player whose clock ran out, or PlayerNone.
func (t *Timer) Expired() Player {
	if !t.Enabled() {
		return PlayerNone
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

func (t *Timer) startLocked(p Player) {
	if t.expired != PlayerNone {
		return
	}
	t.running = p
	t.startedAt = t.clk.Now()
	t.alarm = t.clk.AfterFunc(t.remaining[p.idx()], func() { t.fire(p) })
}

func (t *Timer) stopLocked() {
	if t.running == PlayerNone {
		return
	}
	if t.alarm != nil {
		t.alarm.Stop()
		t.alarm = nil
	}
	t.remaining[t.running.idx()] -= t.clk.Since(t.startedAt)
	t.running = PlayerNone
}

func (t *Timer) fire(p Player) {
	t.mu.Lock()
	if t.running != p || t.expired != PlayerNone {
		t.mu.Unlock()
		return
	}
	t.remaining[p.idx()] = 0
	t.running = PlayerNone
	t.alarm = nil
	t.expired = p
	cb := t.onExpire
	t.mu.Unlock()
	if cb != nil {
		cb(p)
	}
}
