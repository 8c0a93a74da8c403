package gallery

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the auto-advance period
const DefaultInterval = 5 * time.Second

// AutoAdvancer calls a step function on a fixed interval until stopped
type AutoAdvancer struct {
	interval time.Duration
	step     func()

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}

	// set while step runs on the tick goroutine
	stepping atomic.Bool
}

// NewAutoAdvancer returns a stopped advancer. A non-positive interval uses DefaultInterval.
func NewAutoAdvancer(interval time.Duration, step func()) *AutoAdvancer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &AutoAdvancer{interval: interval, step: step}
}

// Start begins ticking; it reports false if already running
func (a *AutoAdvancer) Start() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop != nil {
		return false
	}
	a.stop = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stop, a.done)
	return true
}

// Stop halts the ticker and waits for the loop to exit.
// After Stop returns the step function is not called again.
//
// Stop may be called from inside step. It then returns without waiting,
// since the loop cannot exit until step returns. A concurrent Stop that
// lands while a step is in flight likewise does not wait for that step.
func (a *AutoAdvancer) Stop() bool {
	a.mu.Lock()
	stop, done := a.stop, a.done
	a.stop, a.done = nil, nil
	a.mu.Unlock()

	if stop == nil {
		return false
	}
	close(stop)
	if !a.stepping.Load() {
		<-done
	}
	return true
}

// Running reports whether the ticker is active
func (a *AutoAdvancer) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stop != nil
}

func (a *AutoAdvancer) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			a.stepping.Store(true)
			a.step()
			a.stepping.Store(false)
		}
	}
}
