package timer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	task  string
	hours float64
}

type fakeRecorder struct {
	entries []entry
	err     error
}

func (r *fakeRecorder) AddRecord(_ context.Context, task string, hours float64) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry{task, hours})
	return nil
}

type harness struct {
	m       *Machine
	rec     *fakeRecorder
	sched   *Manual
	events  []string
	renders []string
}

func newHarness() *harness {
	h := &harness{rec: &fakeRecorder{}, sched: &Manual{}}
	h.m = New(h.rec, h.sched, Hooks{
		Render: func(d string) { h.renders = append(h.renders, d) },
		Alarm:  func() { h.events = append(h.events, "alarm") },
		Notify: func(task string, _ float64, err error) {
			h.events = append(h.events, "notify:"+task)
			if err != nil {
				h.events = append(h.events, "error")
			}
		},
	})
	return h
}

func TestFormatClock(t *testing.T) {
	cases := map[int]string{
		0:    "0:00",
		3:    "0:03",
		65:   "1:05",
		125:  "2:05",
		1500: "25:00",
		6000: "100:00",
		-4:   "0:00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatClock(in), "seconds %d", in)
	}
}

func TestNewMachineIsIdle(t *testing.T) {
	h := newHarness()
	assert.Equal(t, Idle, h.m.State())
	assert.Equal(t, "25:00", h.m.Display())
	assert.False(t, h.sched.Active())
}

func TestStartRunsSession(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.m.Start("  Write report ", 2))

	assert.Equal(t, Running, h.m.State())
	assert.Equal(t, "Write report", h.m.Task())
	assert.Equal(t, 120, h.m.Remaining())
	assert.Equal(t, []string{"2:00"}, h.renders)
	assert.True(t, h.sched.Active())

	h.sched.Advance(5)
	assert.Equal(t, 115, h.m.Remaining())
	assert.Equal(t, "1:55", h.renders[len(h.renders)-1])
}

func TestStartInvalidInput(t *testing.T) {
	cases := []struct {
		task    string
		minutes int
	}{
		{"", 25},
		{"   ", 25},
		{"Email", 0},
		{"Email", -5},
	}
	for _, tc := range cases {
		h := newHarness()
		err := h.m.Start(tc.task, tc.minutes)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidInput))
		assert.Equal(t, Idle, h.m.State())
		assert.Equal(t, 25*60, h.m.Remaining())
		assert.Zero(t, h.sched.Starts())
		assert.Empty(t, h.renders)
	}
}

func TestStartWhileRunningIsNoOp(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.m.Start("Write report", 1))
	h.sched.Advance(10)

	require.NoError(t, h.m.Start("Other", 5))
	assert.Equal(t, "Write report", h.m.Task())
	assert.Equal(t, 50, h.m.Remaining())
	assert.Equal(t, 1, h.sched.Starts())
}

func TestCompletionRoundTrip(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.m.Start("Write report", 1))

	fired := h.sched.Advance(100)
	assert.Equal(t, 60, fired, "schedule stops at zero")
	assert.Equal(t, Idle, h.m.State())
	assert.False(t, h.sched.Active())
	assert.Equal(t, "0:00", h.m.Display())

	require.Len(t, h.rec.entries, 1)
	assert.Equal(t, "Write report", h.rec.entries[0].task)
	assert.InDelta(t, 1.0/60, h.rec.entries[0].hours, 1e-12)
	assert.Equal(t, []string{"alarm", "notify:Write report"}, h.events)

	// stray ticks after completion change nothing
	h.m.Tick()
	assert.Equal(t, 0, h.m.Remaining())
	assert.Len(t, h.rec.entries, 1)
}

func TestCompletionRecorderError(t *testing.T) {
	h := newHarness()
	h.rec.err = errors.New("quota exceeded")
	require.NoError(t, h.m.Start("Write report", 1))
	h.sched.Advance(60)

	assert.Equal(t, Idle, h.m.State())
	assert.Equal(t, []string{"alarm", "notify:Write report", "error"}, h.events)
}

func TestCanStartAgainAfterCompletion(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.m.Start("A", 1))
	h.sched.Advance(60)

	require.NoError(t, h.m.Start("B", 1))
	assert.Equal(t, Running, h.m.State())
	assert.Equal(t, 60, h.m.Remaining())
	assert.Equal(t, 2, h.sched.Starts())
}

func TestResetFromIdleDoesNotTouchLedger(t *testing.T) {
	h := newHarness()
	h.m.Reset(10)
	h.m.Reset(0)

	assert.Equal(t, Idle, h.m.State())
	assert.Equal(t, 25*60, h.m.Remaining())
	assert.Equal(t, []string{"10:00", "25:00"}, h.renders)
	assert.Empty(t, h.rec.entries)
}

func TestResetCancelsRunningSession(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.m.Start("Write report", 1))
	h.sched.Advance(30)

	h.m.Reset(-1)
	assert.Equal(t, Idle, h.m.State())
	assert.False(t, h.sched.Active())
	assert.Equal(t, 25*60, h.m.Remaining())

	assert.Zero(t, h.sched.Advance(60))
	h.m.Tick()
	assert.Equal(t, 25*60, h.m.Remaining())
	assert.Empty(t, h.rec.entries)
	assert.Empty(t, h.events)
}

func TestTickerSchedulerStops(t *testing.T) {
	ticks := make(chan struct{}, 16)
	stop := TickerScheduler{}.Every(5*time.Millisecond, func() { ticks <- struct{}{} })

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("no tick")
	}
	stop()
	stop() // idempotent

	// drain anything in flight, then expect silence
	time.Sleep(20 * time.Millisecond)
	for len(ticks) > 0 {
		<-ticks
	}
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, ticks)
}

func TestTickerDrivenSession(t *testing.T) {
	rec := &fakeRecorder{}
	done := make(chan struct{})
	sched := fastScheduler{}
	m := New(rec, sched, Hooks{Notify: func(string, float64, error) { close(done) }})
	require.NoError(t, m.Start("Email", 1))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not complete")
	}
	assert.Equal(t, Idle, waitIdle(m))
	require.Len(t, rec.entries, 1)
}

// fastScheduler ticks as fast as a ticker allows.
type fastScheduler struct{}

func (fastScheduler) Every(_ time.Duration, fn func()) func() {
	return TickerScheduler{}.Every(time.Millisecond, fn)
}

func waitIdle(m *Machine) State {
	deadline := time.Now().Add(time.Second)
	for m.State() != Idle && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	return m.State()
}
