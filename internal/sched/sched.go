package sched

import (
	"sync"
	"time"
)

// CancelFunc stops a scheduled task. Safe to call more than once; after it
// returns no further invocations of the task fire.
type CancelFunc func()

// Schedule runs fn every interval until canceled. The first run happens one
// interval after the call, matching a browser setInterval.
func Schedule(interval time.Duration, fn func()) CancelFunc {
	ticker := time.NewTicker(interval)
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

// Debounce returns a function that coalesces rapid calls: fn runs with the
// most recent argument once delay has elapsed without a newer call.
func Debounce(delay time.Duration, fn func(string)) func(string) {
	var mu sync.Mutex
	var timer *time.Timer

	return func(arg string) {
		mu.Lock()
		defer mu.Unlock()

		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			fn(arg)
		})
	}
}
