// Package timer is the Pomodoro countdown: a small state machine driven by
// an injected tick source.
package timer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrInvalidInput is returned by Start for an empty task or non-positive minutes.
var ErrInvalidInput = errors.New("invalid input")

// DefaultMinutes is the session length used when none is configured.
const DefaultMinutes = 25

type State int

const (
	Idle State = iota
	Running
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Recorder credits finished sessions. *ledger.Ledger satisfies it.
type Recorder interface {
	AddRecord(ctx context.Context, task string, hours float64) error
}

// Scheduler calls fn every interval until the returned stop is called.
// stop must not block and may be called from inside fn.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// Hooks are the side effects of the machine. Nil hooks are skipped.
type Hooks struct {
	Render func(display string)
	Alarm  func()
	Notify func(task string, hours float64, err error)
}

// Machine is one countdown. Only one session runs at a time.
type Machine struct {
	rec   Recorder
	sched Scheduler
	hooks Hooks

	mu        sync.Mutex
	state     State
	task      string
	minutes   int
	remaining int
	stop      func()
	session   int
}

func New(rec Recorder, sched Scheduler, hooks Hooks) *Machine {
	m := &Machine{rec: rec, sched: sched, hooks: hooks}
	m.remaining = DefaultMinutes * 60
	return m
}

// Start begins a session. It is a no-op while a session is running.
func (m *Machine) Start(task string, minutes int) error {
	m.mu.Lock()
	if m.state != Idle {
		m.mu.Unlock()
		return nil
	}
	task = strings.TrimSpace(task)
	if task == "" {
		m.mu.Unlock()
		return fmt.Errorf("%w: empty task", ErrInvalidInput)
	}
	if minutes <= 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: minutes must be a positive integer, got %d", ErrInvalidInput, minutes)
	}
	m.task = task
	m.minutes = minutes
	m.remaining = minutes * 60
	m.state = Running
	m.session++
	session := m.session
	display := FormatClock(m.remaining)
	m.mu.Unlock()

	m.render(display)

	stop := m.sched.Every(time.Second, m.Tick)
	m.mu.Lock()
	if m.state == Running && m.session == session {
		m.stop = stop
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()
	// finished or reset before the schedule was recorded
	stop()
	return nil
}

// Tick advances a running session by one second. Ticks outside a session
// are ignored.
func (m *Machine) Tick() {
	m.mu.Lock()
	if m.state != Running {
		m.mu.Unlock()
		return
	}
	m.remaining--
	display := FormatClock(m.remaining)
	if m.remaining > 0 {
		m.mu.Unlock()
		m.render(display)
		return
	}

	stop := m.stop
	m.stop = nil
	m.state = Completed
	task, minutes := m.task, m.minutes
	m.mu.Unlock()

	if stop != nil {
		stop()
	}
	m.render(display)
	m.complete(task, minutes)

	m.mu.Lock()
	if m.state == Completed {
		m.state = Idle
	}
	m.mu.Unlock()
}

func (m *Machine) complete(task string, minutes int) {
	if m.hooks.Alarm != nil {
		m.hooks.Alarm()
	}
	hours := float64(minutes) / 60
	err := m.rec.AddRecord(context.Background(), task, hours)
	if m.hooks.Notify != nil {
		m.hooks.Notify(task, hours, err)
	}
}

// Reset cancels any session and shows a fresh countdown of minutes
// (DefaultMinutes when minutes is not positive). The ledger is untouched.
func (m *Machine) Reset(minutes int) {
	if minutes <= 0 {
		minutes = DefaultMinutes
	}
	m.mu.Lock()
	stop := m.stop
	m.stop = nil
	m.state = Idle
	m.session++
	m.task = ""
	m.minutes = 0
	m.remaining = minutes * 60
	display := FormatClock(m.remaining)
	m.mu.Unlock()

	if stop != nil {
		stop()
	}
	m.render(display)
}

func (m *Machine) render(display string) {
	if m.hooks.Render != nil {
		m.hooks.Render(display)
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remaining
}

// Minutes is the configured length of the current or last session.
func (m *Machine) Minutes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minutes
}

func (m *Machine) Task() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.task
}

// Display is the current remaining time as M:SS.
func (m *Machine) Display() string {
	return FormatClock(m.Remaining())
}

// FormatClock renders seconds as minutes without padding and two-digit
// seconds: 125 -> "2:05". Negative values render as 0:00.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
