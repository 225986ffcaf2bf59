package sequencer

import (
	"sync"
	"time"
)

// Clock calls fn every period until the returned stop function is called.
// stop must be safe to call more than once and from inside fn.
type Clock interface {
	Every(period time.Duration, fn func()) (stop func())
}

// TickerClock is the wall-clock implementation backed by time.Ticker.
type TickerClock struct{}

func (TickerClock) Every(period time.Duration, fn func()) func() {
	ticker := time.NewTicker(period)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

// ManualClock fires only when Tick is called. Used for tests and offline rendering.
type ManualClock struct {
	mu     sync.Mutex
	subs   []*manualSub
	period time.Duration
	total  int
}

type manualSub struct {
	fn     func()
	active bool
}

func (c *ManualClock) Every(period time.Duration, fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub := &manualSub{fn: fn, active: true}
	c.subs = append(c.subs, sub)
	c.period = period
	c.total++
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		sub.active = false
	}
}

// Tick fires every active subscription once.
func (c *ManualClock) Tick() {
	c.mu.Lock()
	live := c.subs[:0]
	for _, s := range c.subs {
		if s.active {
			live = append(live, s)
		}
	}
	c.subs = live
	fire := append([]*manualSub(nil), live...)
	c.mu.Unlock()

	for _, s := range fire {
		c.mu.Lock()
		active := s.active
		c.mu.Unlock()
		if active {
			s.fn()
		}
	}
}

// Advance calls Tick n times.
func (c *ManualClock) Advance(n int) {
	for i := 0; i < n; i++ {
		c.Tick()
	}
}

// Active returns the number of live subscriptions.
func (c *ManualClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.subs {
		if s.active {
			n++
		}
	}
	return n
}

// Subscriptions returns how many times Every has been called.
func (c *ManualClock) Subscriptions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Period returns the period of the most recent subscription.
func (c *ManualClock) Period() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.period
}
