package timer

import (
	"sync"
	"time"
)

// TickerScheduler runs fn on its own goroutine from a time.Ticker.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	t := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once
	go func() {
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }
}

// Manual is a Scheduler driven by hand, for tests and replays.
type Manual struct {
	mu     sync.Mutex
	fn     func()
	active bool
	starts int
}

func (s *Manual) Every(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	s.fn = fn
	s.active = true
	s.starts++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.active = false
		s.fn = nil
		s.mu.Unlock()
	}
}

// Advance fires n ticks, stopping early if the schedule is cancelled.
// It returns the number of ticks delivered.
func (s *Manual) Advance(n int) int {
	fired := 0
	for i := 0; i < n; i++ {
		s.mu.Lock()
		fn, active := s.fn, s.active
		s.mu.Unlock()
		if !active {
			break
		}
		fn()
		fired++
	}
	return fired
}

// Active reports whether a schedule is running.
func (s *Manual) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Starts counts calls to Every.
func (s *Manual) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}
