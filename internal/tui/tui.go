// Package tui is the interactive shell: timer panel, manual log form and
// the records table, re-rendered from the ledger on every change.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/pomodoro/internal/ledger"
	"github.com/idilsaglam/pomodoro/internal/model"
	"github.com/idilsaglam/pomodoro/internal/timer"
	"github.com/idilsaglam/pomodoro/internal/ui"
)

// Deps are the components the shell drives.
type Deps struct {
	Ledger     *ledger.Ledger
	Theme      *ui.Toggle
	Minutes    int
	ExportPath string
	Quote      bool
	Bell       io.Writer // nil disables the alarm bell
	Log        *slog.Logger

	// Watch reports changes made to the store by other processes.
	Watch func(ctx context.Context, onChange func()) error
}

// storeChangedMsg is sent when the store was modified outside this process.
type storeChangedMsg struct{}

// input indexes
const (
	inPomodoroTask = iota
	inMinutes
	inLogTask
	inHours
	numInputs
)

// rowCache holds the last rendering of the ledger; shared by model copies.
type rowCache struct {
	ledger *ledger.Ledger
	ctx    context.Context
	rows   []model.Record
	today  float64
}

func (c *rowCache) refresh() {
	c.rows = c.ledger.ListForDisplay(c.ctx)
	c.today = 0
	today := c.ledger.Today()
	for _, d := range c.ledger.Totals(c.ctx) {
		if d.Date == today {
			c.today = d.Hours
		}
	}
}

// status is the message line. An alert blocks input until dismissed.
type status struct {
	alert  string
	notice string
}

type modelTUI struct {
	ctx     context.Context
	deps    Deps
	machine *timer.Machine
	rows    *rowCache
	status  *status

	inputs  []textinput.Model
	editing bool
	focus   int

	keys   keyMap
	help   help.Model
	width  int
	height int
}

func newModel(ctx context.Context, deps Deps, sched timer.Scheduler) modelTUI {
	if deps.Minutes <= 0 {
		deps.Minutes = timer.DefaultMinutes
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	st := &status{}
	rows := &rowCache{ledger: deps.Ledger, ctx: ctx}
	rows.refresh()
	deps.Ledger.Subscribe(rows.refresh)

	m := modelTUI{
		ctx:    ctx,
		deps:   deps,
		rows:   rows,
		status: st,
		keys:   newKeyMap(),
		help:   help.New(),
		width:  80,
		height: 24,
	}
	m.machine = timer.New(deps.Ledger, sched, timer.Hooks{
		Alarm: func() {
			if deps.Bell != nil {
				fmt.Fprint(deps.Bell, "\a")
			}
		},
		Notify: func(task string, hours float64, err error) {
			if err != nil {
				st.alert = "Could not log session: " + err.Error()
				return
			}
			st.alert = "Pomodoro completed 🍅"
			st.notice = fmt.Sprintf("logged %.2fh to %s", hours, task)
		},
	})

	m.inputs = make([]textinput.Model, numInputs)
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 200
		ti.Width = 24
		m.inputs[i] = ti
	}
	m.inputs[inPomodoroTask].Placeholder = "What are you working on?"
	m.inputs[inMinutes].Placeholder = "25"
	m.inputs[inMinutes].CharLimit = 4
	m.inputs[inMinutes].Width = 5
	m.inputs[inMinutes].SetValue(strconv.Itoa(deps.Minutes))
	m.inputs[inLogTask].Placeholder = "Task"
	m.inputs[inHours].Placeholder = "1.5"
	m.inputs[inHours].CharLimit = 8
	m.inputs[inHours].Width = 6

	m.machine.Reset(deps.Minutes)
	return m
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(ctx context.Context, deps Deps) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := &loopScheduler{}
	m := newModel(ctx, deps, sched)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	sched.send = p.Send

	if deps.Watch != nil {
		if err := deps.Watch(ctx, func() { p.Send(storeChangedMsg{}) }); err != nil {
			m.deps.Log.Debug("store watch disabled", "error", err)
		}
	}

	_, err := p.Run()
	m.shutdown()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// shutdown stops a running session so its ticker stops posting to the
// finished program. The session is not logged.
func (m modelTUI) shutdown() {
	m.machine.Reset(m.deps.Minutes)
}

// Update and View implement Bubble Tea's Model on modelTUI
func (m modelTUI) Init() tea.Cmd { return nil }

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runMsg:
		msg.fn()
		return m, nil
	case storeChangedMsg:
		m.rows.refresh()
		return m, nil
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.machine.Reset(m.minutes())
			return m, tea.Quit
		}
		// an alert swallows the key that dismisses it
		if m.status.alert != "" {
			m.status.alert = ""
			return m, nil
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateNormal(msg)
	}
	if m.editing {
		// cursor blink and friends
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m modelTUI) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.machine.Reset(m.minutes())
		return m, tea.Quit
	case key.Matches(msg, m.keys.Start):
		m.startSession()
	case key.Matches(msg, m.keys.Reset):
		m.machine.Reset(m.minutes())
		m.status.notice = "timer reset"
	case key.Matches(msg, m.keys.Log):
		m.logHours()
	case key.Matches(msg, m.keys.Export):
		m.export()
	case key.Matches(msg, m.keys.Theme):
		dark, err := m.deps.Theme.Toggle(m.ctx)
		if err != nil {
			m.status.alert = "Could not save preference: " + err.Error()
			break
		}
		m.status.notice = "light mode"
		if dark {
			m.status.notice = "dark mode"
		}
	case key.Matches(msg, m.keys.Edit):
		m.editing = true
		cmd := m.setFocus(m.focus)
		return m, cmd
	}
	return m, nil
}

func (m modelTUI) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Leave):
		m.editing = false
		m.inputs[m.focus].Blur()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		cmd := m.setFocus((m.focus + 1) % numInputs)
		return m, cmd
	case key.Matches(msg, m.keys.Prev):
		cmd := m.setFocus((m.focus + numInputs - 1) % numInputs)
		return m, cmd
	case key.Matches(msg, m.keys.Submit):
		if m.focus == inPomodoroTask || m.focus == inMinutes {
			m.startSession()
		} else {
			m.logHours()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *modelTUI) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

// minutes is the configured session length, 0 when the field is not a number.
func (m modelTUI) minutes() int {
	n, err := strconv.Atoi(strings.TrimSpace(m.inputs[inMinutes].Value()))
	if err != nil {
		return 0
	}
	return n
}

func (m modelTUI) startSession() {
	if m.machine.State() == timer.Running {
		return
	}
	task := m.inputs[inPomodoroTask].Value()
	if err := m.machine.Start(task, m.minutes()); err != nil {
		m.status.alert = "Enter task and minutes"
		m.deps.Log.Debug("start rejected", "error", err)
		return
	}
	m.status.notice = "focus on " + m.machine.Task()
}

func (m modelTUI) logHours() {
	task := m.inputs[inLogTask].Value()
	hours, err := strconv.ParseFloat(strings.TrimSpace(m.inputs[inHours].Value()), 64)
	if err != nil {
		m.status.alert = "Enter task and hours"
		return
	}
	if err := m.deps.Ledger.AddRecord(m.ctx, task, hours); err != nil {
		if errors.Is(err, ledger.ErrInvalidInput) {
			m.status.alert = "Enter task and hours"
			return
		}
		m.status.alert = "Could not save: " + err.Error()
		return
	}
	m.inputs[inLogTask].SetValue("")
	m.inputs[inHours].SetValue("")
	m.status.notice = "logged"
}

func (m modelTUI) export() {
	f, err := os.Create(m.deps.ExportPath)
	if err != nil {
		m.status.alert = "Export failed: " + err.Error()
		return
	}
	werr := m.deps.Ledger.WriteCSV(m.ctx, f, m.deps.Quote)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		m.status.alert = "Export failed: " + err.Error()
		return
	}
	m.status.notice = "exported to " + m.deps.ExportPath
}

func (m modelTUI) View() string {
	t := ui.Current()

	field := func(i int, label string) string {
		l := t.Muted.Render(label)
		if m.editing && m.focus == i {
			l = t.Selected.Render(label)
		}
		return l + " " + m.inputs[i].View()
	}

	var b strings.Builder
	b.WriteString(t.Title.Render("🍅 Pomodoro") + "\n\n")
	b.WriteString(field(inPomodoroTask, "Task") + "  " + field(inMinutes, "Minutes") + "\n\n")

	clock := t.Clock.Render(m.machine.Display())
	state := m.machine.State()
	line := clock + "  " + t.Muted.Render(state.String())
	if state == timer.Running {
		total := m.machine.Minutes() * 60
		line += "  " + t.Pending.Render(m.machine.Task())
		line += "\n" + t.Accent.Render(ui.ProgressBar(total-m.machine.Remaining(), total, 28))
	}
	b.WriteString(line + "\n\n")

	b.WriteString(t.Title.Render("Log hours") + "\n")
	b.WriteString(field(inLogTask, "Task") + "  " + field(inHours, "Hours") + "\n\n")

	b.WriteString(fmt.Sprintf("%s  %s %.2fh  %s %d\n",
		t.Title.Render("Records"),
		t.Accent.Render("Today"), m.rows.today,
		t.Muted.Render("Total"), len(m.rows.rows)))
	if len(m.rows.rows) == 0 {
		b.WriteString(t.Muted.Render("no records") + "\n")
	} else {
		limit := m.height - 22
		if limit < 3 {
			limit = 3
		}
		b.WriteString(ui.RecordsTable(m.rows.rows, limit).String() + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.status.alert != "":
		alert := lipgloss.NewStyle().
			Border(t.Border).
			BorderForeground(t.Error.GetForeground()).
			Padding(0, 1).
			Render(t.Error.Render(m.status.alert) + "\n" + t.Help.Render("press any key"))
		b.WriteString(alert + "\n")
	case m.status.notice != "":
		b.WriteString(t.Success.Render(m.status.notice) + "\n")
	}

	bindings := m.keys.normal()
	if m.editing {
		bindings = m.keys.editing()
	}
	b.WriteString(m.help.ShortHelpView(bindings))
	return ui.PanelString(b.String())
}
