package posture

import (
	"sort"
	"sync"
	"time"
)

// fakeClock fires callbacks only when Advance moves past their deadline.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward, running due callbacks in deadline order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		next := c.nextDueLocked(target)
		if next == nil {
			break
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// Live returns the number of timers that are neither stopped nor fired.
func (c *fakeClock) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (c *fakeClock) nextDueLocked(target time.Time) *fakeTimer {
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	return due[0]
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []bool
}

func (n *recordingNotifier) SetAlertVisible(v bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, v)
}

func (n *recordingNotifier) Changes() []bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]bool(nil), n.changes...)
}

type fakeSounder struct {
	err    error
	played chan struct{}
	block  chan struct{}
}

func newFakeSounder(err error) *fakeSounder {
	return &fakeSounder{err: err, played: make(chan struct{}, 16)}
}

func (s *fakeSounder) PlayAlert() error {
	if s.block != nil {
		<-s.block
	}
	s.played <- struct{}{}
	return s.err
}
