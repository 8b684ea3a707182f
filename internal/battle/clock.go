package battle

import (
	"sort"
	"sync"
	"time"
)

// Clock abstracts timer scheduling so the orchestrator's timed sub-steps
// can run on real timers in the app and on a virtual clock in tests.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop cancels the timer. It reports false if the callback already
	// fired or was stopped.
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// NewClock returns the wall-clock implementation.
func NewClock() Clock {
	return realClock{}
}

// VirtualClock is a manually advanced clock for deterministic tests.
// Callbacks fire synchronously inside Advance, in deadline order.
type VirtualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*virtualTimer
}

type virtualTimer struct {
	clock    *VirtualClock
	deadline time.Duration
	fn       func()
	stopped  bool
	fired    bool
}

func (t *virtualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// NewVirtualClock returns a virtual clock starting at zero.
func NewVirtualClock() *VirtualClock {
	return &VirtualClock{}
}

func (c *VirtualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &virtualTimer{clock: c, deadline: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Now returns the current virtual time.
func (c *VirtualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves virtual time forward by d, firing every due timer in
// deadline order. Callbacks may schedule further timers; those fire too
// if they fall within the advanced window.
func (c *VirtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	for {
		t := c.popDue(target)
		if t == nil {
			break
		}
		c.now = t.deadline
		c.mu.Unlock()
		t.fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// popDue removes and returns the earliest unstopped timer with deadline
// at or before target. Caller holds c.mu.
func (c *VirtualClock) popDue(target time.Duration) *virtualTimer {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	c.timers = live
	if len(c.timers) == 0 {
		return nil
	}
	sort.SliceStable(c.timers, func(i, j int) bool {
		return c.timers[i].deadline < c.timers[j].deadline
	})
	t := c.timers[0]
	if t.deadline > target {
		return nil
	}
	t.fired = true
	c.timers = c.timers[1:]
	return t
}
