package tui

import (
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// runMsg carries a tick onto the Bubble Tea loop so timer state is only
// ever touched from Update.
type runMsg struct{ fn func() }

// loopScheduler implements timer.Scheduler by posting ticks to the program.
type loopScheduler struct {
	send func(tea.Msg)
}

func (s *loopScheduler) Every(interval time.Duration, fn func()) func() {
	var stopped atomic.Bool
	done := make(chan struct{})
	var once sync.Once
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				s.send(runMsg{fn: func() {
					// a tick queued before stop must not reach a later session
					if !stopped.Load() {
						fn()
					}
				}})
			}
		}
	}()
	return func() {
		stopped.Store(true)
		once.Do(func() { close(done) })
	}
}
