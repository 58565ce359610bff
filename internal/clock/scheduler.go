package clock

import (
	"sync"
	"time"
)

// Handle cancels a recurring schedule. Cancel is idempotent and does not wait
// for a callback that is already running.
type Handle interface {
	Cancel()
}

// Scheduler arms recurring callbacks: fn runs first after the first delay and
// then every period until the handle is cancelled. Callbacks of one schedule
// never overlap.
type Scheduler interface {
	Schedule(first, period time.Duration, fn func()) Handle
	Now() time.Time
}

type tickerScheduler struct{}

// NewScheduler returns a Scheduler backed by time.Timer and time.Ticker.
func NewScheduler() Scheduler {
	return tickerScheduler{}
}

func (tickerScheduler) Now() time.Time { return time.Now() }

func (tickerScheduler) Schedule(first, period time.Duration, fn func()) Handle {
	h := &tickerHandle{done: make(chan struct{})}
	go h.run(first, period, fn)
	return h
}

type tickerHandle struct {
	done chan struct{}
	once sync.Once
}

func (h *tickerHandle) Cancel() {
	h.once.Do(func() { close(h.done) })
}

func (h *tickerHandle) cancelled() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *tickerHandle) run(first, period time.Duration, fn func()) {
	if first < 0 {
		first = 0
	}
	timer := time.NewTimer(first)
	defer timer.Stop()
	select {
	case <-h.done:
		return
	case <-timer.C:
	}

	// The ticker is anchored before the first callback so callback time does not accumulate as drift.
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	if h.cancelled() {
		return
	}
	fn()
	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			if h.cancelled() {
				return
			}
			fn()
		}
	}
}
