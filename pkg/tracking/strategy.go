package tracking

import (
	"fmt"
	"sync"
	"time"
)

// Mode identifies the active sampling loop.
type Mode int

const (
	ModeStopped Mode = iota
	ModeRender
	ModeInterval
)

func (m Mode) String() string {
	switch m {
	case ModeRender:
		return "render"
	case ModeInterval:
		return "interval"
	default:
		return "stopped"
	}
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(b []byte) error {
	for _, v := range []Mode{ModeStopped, ModeRender, ModeInterval} {
		if v.String() == string(b) {
			*m = v
			return nil
		}
	}
	return fmt.Errorf("unknown sampling mode %q", b)
}

// Strategy is one way of driving step calls. A strategy is started once;
// Stop returns only after the loop goroutine has exited.
type Strategy interface {
	Start(step func())
	Stop()
	Mode() Mode
}

// tickerLoop calls step on every tick, optionally once right away.
type tickerLoop struct {
	mode      Mode
	period    time.Duration
	immediate bool

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewRenderLoop returns a render-synchronized loop that steps immediately
// and then once per refresh period.
func NewRenderLoop(refresh time.Duration) Strategy {
	return &tickerLoop{mode: ModeRender, period: refresh, immediate: true, done: make(chan struct{})}
}

// NewIntervalLoop returns a fixed-period loop whose first step happens one
// period after Start.
func NewIntervalLoop(period time.Duration) Strategy {
	return &tickerLoop{mode: ModeInterval, period: period, done: make(chan struct{})}
}

func (l *tickerLoop) Mode() Mode {
	return l.mode
}

func (l *tickerLoop) Start(step func()) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		if l.immediate {
			select {
			case <-l.done:
				return
			default:
				step()
			}
		}

		ticker := time.NewTicker(l.period)
		defer ticker.Stop()

		for {
			select {
			case <-l.done:
				return
			case <-ticker.C:
				// Stop may race with a tick; prefer stopping.
				select {
				case <-l.done:
					return
				default:
				}
				step()
			}
		}
	}()
}

func (l *tickerLoop) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
	l.wg.Wait()
}
