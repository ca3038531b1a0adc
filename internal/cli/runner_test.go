package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/pomodoro/internal/ledger"
	"github.com/idilsaglam/pomodoro/internal/timer"
)

var fixedNow = time.Date(2026, 10, 18, 14, 0, 0, 0, time.UTC)

// fastScheduler compresses a second into a millisecond.
type fastScheduler struct{}

func (fastScheduler) Every(_ time.Duration, fn func()) func() {
	return timer.TickerScheduler{}.Every(time.Millisecond, fn)
}

type harness struct {
	dir         string
	out, errOut *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, k := range []string{"POMODORO_CONFIG", "POMODORO_STORE", "POMODORO_PATH", "POMODORO_DSN", "POMODORO_MINUTES", "POMODORO_EXPORT"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return &harness{dir: dir, out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
}

func (h *harness) run(t *testing.T, args ...string) int {
	t.Helper()
	h.out.Reset()
	h.errOut.Reset()
	return Run(context.Background(), args, Options{
		Stdout:    h.out,
		Stderr:    h.errOut,
		Now:       func() time.Time { return fixedNow },
		Scheduler: fastScheduler{},
	})
}

func (h *harness) storedKeys(t *testing.T) map[string]string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(h.dir, "pomodoro.json"))
	require.NoError(t, err)
	m := map[string]string{}
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestLogAndExport(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run(t, "log", "1", "Email"))
	require.Equal(t, 0, h.run(t, "log", "2", "EMAIL"))
	require.Equal(t, 0, h.run(t, "log", "0.5", "Write", "report"))

	require.Equal(t, 0, h.run(t, "export", "-o", "-"))
	assert.Equal(t, "Date,Task,Hours\n2026-10-18,Email,3\n2026-10-18,Write report,0.5\n", h.out.String())

	require.Equal(t, 0, h.run(t, "export"))
	b, err := os.ReadFile(filepath.Join(h.dir, ledger.ExportFileName))
	require.NoError(t, err)
	assert.Equal(t, "Date,Task,Hours\n2026-10-18,Email,3\n2026-10-18,Write report,0.5\n", string(b))
	assert.Contains(t, h.out.String(), "exported")
}

func TestExportQuoted(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.run(t, "log", "1", "Email,", "calls"))

	require.Equal(t, 0, h.run(t, "export", "-o", "-", "--quote"))
	assert.Equal(t, "Date,Task,Hours\n2026-10-18,\"Email, calls\",1\n", h.out.String())
}

func TestLogRejectsBadInput(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 2, h.run(t, "log", "abc", "Email"))
	assert.Contains(t, h.errOut.String(), "not a number")

	assert.Equal(t, 2, h.run(t, "log", "0", "Email"))
	assert.Contains(t, h.errOut.String(), "enter task and hours")

	assert.Equal(t, 2, h.run(t, "log", "1", " "))

	require.Equal(t, 0, h.run(t, "export", "-o", "-"))
	assert.Equal(t, "Date,Task,Hours\n", h.out.String())
}

func TestList(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run(t, "ls"))
	assert.Contains(t, h.out.String(), "no records")

	require.Equal(t, 0, h.run(t, "log", "1.25", "Planning"))
	require.Equal(t, 0, h.run(t, "ls"))
	assert.Contains(t, h.out.String(), "Planning")
	assert.Contains(t, h.out.String(), "1.25")
	assert.Contains(t, h.out.String(), "2026-10-18")
}

func TestThemeToggle(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run(t, "theme"))
	assert.Contains(t, h.out.String(), "dark mode on")
	assert.Equal(t, "true", h.storedKeys(t)["darkMode"])

	require.Equal(t, 0, h.run(t, "theme"))
	assert.Contains(t, h.out.String(), "dark mode off")
	assert.Equal(t, "false", h.storedKeys(t)["darkMode"])
}

func TestStartCompletesAndLogs(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run(t, "start", "-m", "1", "Write", "report"))
	assert.Contains(t, h.out.String(), "Pomodoro completed")
	assert.Contains(t, h.out.String(), "0:00")

	require.Equal(t, 0, h.run(t, "export", "-o", "-"))
	assert.Equal(t, "Date,Task,Hours\n2026-10-18,Write report,0.016666666666666666\n", h.out.String())
}

func TestStartRejectsBadMinutes(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 2, h.run(t, "start", "--minutes=-1", "Email"))
	assert.Contains(t, h.errOut.String(), "enter task and minutes")

	assert.Equal(t, 2, h.run(t, "start", "-m", "0", "Email"))
	assert.Contains(t, h.errOut.String(), "enter task and minutes")
	assert.NotContains(t, h.out.String(), "25:00")

	require.Equal(t, 0, h.run(t, "export", "-o", "-"))
	assert.Equal(t, "Date,Task,Hours\n", h.out.String())
}

func TestStartDefaultsToConfiguredMinutes(t *testing.T) {
	h := newHarness(t)
	t.Setenv("POMODORO_MINUTES", "1")

	require.Equal(t, 0, h.run(t, "start", "Email"))
	assert.Contains(t, h.out.String(), "Pomodoro completed")

	require.Equal(t, 0, h.run(t, "export", "-o", "-"))
	assert.Equal(t, "Date,Task,Hours\n2026-10-18,Email,0.016666666666666666\n", h.out.String())
}

func TestStartInterrupted(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := Run(ctx, []string{"start", "-m", "5", "Email"}, Options{
		Stdout:    h.out,
		Stderr:    h.errOut,
		Scheduler: &timer.Manual{},
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, h.errOut.String(), "nothing logged")

	require.Equal(t, 0, h.run(t, "export", "-o", "-"))
	assert.Equal(t, "Date,Task,Hours\n", h.out.String())
}

func TestSQLiteBackend(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run(t, "--store", "sqlite", "log", "1", "Email"))
	require.Equal(t, 0, h.run(t, "--store", "sqlite", "export", "-o", "-"))
	assert.Equal(t, "Date,Task,Hours\n2026-10-18,Email,1\n", h.out.String())

	_, err := os.Stat(filepath.Join(h.dir, "pomodoro.db"))
	assert.NoError(t, err)
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 2, h.run(t, "frobnicate"))
	assert.Equal(t, 2, h.run(t, "log"))
	assert.Equal(t, 2, h.run(t, "--store", "redis", "ls"))
}

func TestHelp(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 0, h.run(t, "--help"))
	out := h.out.String()
	for _, cmd := range []string{"start", "log", "ls", "export", "theme"} {
		assert.True(t, strings.Contains(out, cmd), "help mentions %s", cmd)
	}
}
