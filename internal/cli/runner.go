package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/idilsaglam/pomodoro/internal/config"
	"github.com/idilsaglam/pomodoro/internal/ledger"
	"github.com/idilsaglam/pomodoro/internal/timer"
	"github.com/idilsaglam/pomodoro/internal/tui"
	"github.com/idilsaglam/pomodoro/internal/ui"
)

// Options swap out I/O and time sources. Zero values mean the real thing.
type Options struct {
	Stdout, Stderr io.Writer
	Now            func() time.Time
	Scheduler      timer.Scheduler // headless start only
}

func (o Options) withDefaults() Options {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Scheduler == nil {
		o.Scheduler = timer.TickerScheduler{}
	}
	return o
}

type grammar struct {
	Config  string `short:"c" help:"Configuration file path (optional)" default:"pomodoro.yaml" env:"POMODORO_CONFIG"`
	Verbose bool   `short:"v" help:"Enable debug logging"`
	Store   string `help:"Override the store backend (file, sqlite, mysql, memory)"`

	Tui struct{} `cmd:"" default:"1" help:"Interactive timer and ledger (default)"`

	Start struct {
		Minutes *int     `short:"m" help:"Session length in minutes (default from config)"`
		Task    []string `arg:"" help:"Task to credit when the session completes"`
	} `cmd:"" help:"Run a Pomodoro session in the terminal and log it on completion"`

	Log struct {
		Hours string   `arg:"" help:"Hours to log, e.g. 1.5"`
		Task  []string `arg:"" help:"Task name (can be multiple words)"`
	} `cmd:"" help:"Log hours to a task for today"`

	Ls struct{} `cmd:"" help:"List records, newest day first"`

	Export struct {
		Output string `short:"o" help:"Output file, - for stdout (default from config)"`
		Quote  bool   `help:"Quote fields so commas in task names survive"`
	} `cmd:"" help:"Export all records as CSV"`

	Theme struct{} `cmd:"" help:"Toggle dark mode"`
}

type exitCode int

// Run parses args, runs one subcommand and returns an exit code
// (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) (code int) {
	opt = opt.withDefaults()
	ui.SetOutput(opt.Stdout, opt.Stderr)

	var g grammar
	parser, err := kong.New(&g,
		kong.Name("pomodoro"),
		kong.Description("A Pomodoro timer with a time ledger."),
		kong.UsageOnError(),
		kong.Writers(opt.Stdout, opt.Stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
	)
	if err != nil {
		ui.Fail("cli: " + err.Error())
		return 1
	}
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		ui.Fail(err.Error())
		return 2
	}

	level := slog.LevelInfo
	if g.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(opt.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(g.Config)
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}
	if g.Store != "" {
		if err := cfg.UseBackend(g.Store); err != nil {
			ui.Fail("config: " + err.Error())
			return 2
		}
	}

	app, err := OpenApp(ctx, cfg, log, opt.Now)
	if err != nil {
		ui.Fail("store: " + err.Error())
		return 1
	}
	defer app.Close()
	app.Theme.ApplyOnLoad(ctx)

	cmd := strings.Fields(kctx.Command())[0]
	switch cmd {
	case "tui":
		return doTUI(ctx, app)
	case "start":
		return doStart(ctx, app, strings.Join(g.Start.Task, " "), g.Start.Minutes, opt)
	case "log":
		return doLog(ctx, app, g.Log.Hours, strings.Join(g.Log.Task, " "))
	case "ls":
		return doList(ctx, app, opt)
	case "export":
		return doExport(ctx, app, g.Export.Output, g.Export.Quote || cfg.Export.Quote, opt)
	case "theme":
		return doTheme(ctx, app)
	}

	ui.Fail("unknown subcommand: " + cmd)
	return 2
}

// -------------- subcommand impls ----------------

func doTUI(ctx context.Context, app *App) int {
	deps := tui.Deps{
		Ledger:     app.Ledger,
		Theme:      app.Theme,
		Minutes:    app.Config.Timer.Minutes,
		ExportPath: app.Config.Export.File,
		Quote:      app.Config.Export.Quote,
		Log:        app.Log,
	}
	if app.Config.Timer.Bell {
		deps.Bell = os.Stderr
	}
	if app.File != nil {
		deps.Watch = func(ctx context.Context, onChange func()) error {
			return app.File.Watch(ctx, app.Log, onChange)
		}
	}
	if err := tui.Run(ctx, deps); err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

// doStart runs a headless session; a nil minutes means the configured length.
func doStart(ctx context.Context, app *App, task string, flagMinutes *int, opt Options) int {
	minutes := app.Config.Timer.Minutes
	if flagMinutes != nil {
		minutes = *flagMinutes
	}
	done := make(chan error, 1)
	total := minutes * 60

	var m *timer.Machine
	m = timer.New(app.Ledger, opt.Scheduler, timer.Hooks{
		Render: func(display string) {
			bar := ui.ProgressBar(total-m.Remaining(), total, 24)
			fmt.Fprintf(opt.Stdout, "\r%s  %s  %s", ui.Current().Clock.Render(display), bar, task)
		},
		Alarm: func() {
			if app.Config.Timer.Bell {
				fmt.Fprint(opt.Stdout, "\a")
			}
		},
		Notify: func(_ string, _ float64, err error) { done <- err },
	})

	if err := m.Start(task, minutes); err != nil {
		if errors.Is(err, timer.ErrInvalidInput) {
			ui.Fail("start: enter task and minutes (" + err.Error() + ")")
			return 2
		}
		ui.Fail("start: " + err.Error())
		return 1
	}
	app.Log.Debug("session started", "task", m.Task(), "minutes", minutes)

	select {
	case err := <-done:
		fmt.Fprintln(opt.Stdout)
		if err != nil {
			ui.Fail("log: " + err.Error())
			return 1
		}
		ui.OK(fmt.Sprintf("Pomodoro completed 🍅 logged %sh to %s", ledger.FormatHours(float64(minutes)/60), m.Task()))
		return 0
	case <-ctx.Done():
		m.Reset(minutes)
		fmt.Fprintln(opt.Stdout)
		ui.Fail("interrupted, nothing logged")
		return 1
	}
}

func doLog(ctx context.Context, app *App, hoursArg, task string) int {
	hours, err := strconv.ParseFloat(strings.TrimSpace(hoursArg), 64)
	if err != nil {
		ui.Fail("log: not a number: " + hoursArg)
		return 2
	}
	if err := app.Ledger.AddRecord(ctx, task, hours); err != nil {
		if errors.Is(err, ledger.ErrInvalidInput) {
			ui.Fail("log: enter task and hours (" + err.Error() + ")")
			return 2
		}
		ui.Fail("save: " + err.Error())
		return 1
	}
	ui.OK("logged")
	return 0
}

func doList(ctx context.Context, app *App, opt Options) int {
	recs := app.Ledger.ListForDisplay(ctx)
	t := ui.Current()

	today := app.Ledger.Today()
	var todayHours float64
	for _, d := range app.Ledger.Totals(ctx) {
		if d.Date == today {
			todayHours = d.Hours
		}
	}
	header := fmt.Sprintf("%s  %s %.2fh  %s %d",
		t.Title.Render("Records"),
		t.Accent.Render("Today"), todayHours,
		t.Muted.Render("Total"), len(recs),
	)

	lines := []string{header, ""}
	if len(recs) == 0 {
		lines = append(lines, t.Muted.Render("no records"))
	} else {
		lines = append(lines, ui.RecordsTable(recs, 0).String())
	}
	lines = append(lines, "", t.Muted.Render("Tip: log with `pomodoro log 1.5 \"Write report\"`"))
	fmt.Fprintln(opt.Stdout, ui.PanelString(strings.Join(lines, "\n")))
	return 0
}

func doExport(ctx context.Context, app *App, output string, quote bool, opt Options) int {
	if output == "" {
		output = app.Config.Export.File
	}
	if output == "-" {
		if err := app.Ledger.WriteCSV(ctx, opt.Stdout, quote); err != nil {
			ui.Fail("export: " + err.Error())
			return 1
		}
		return 0
	}
	f, err := os.Create(output)
	if err != nil {
		ui.Fail("export: " + err.Error())
		return 1
	}
	if err := app.Ledger.WriteCSV(ctx, f, quote); err != nil {
		f.Close()
		ui.Fail("export: " + err.Error())
		return 1
	}
	if err := f.Close(); err != nil {
		ui.Fail("export: " + err.Error())
		return 1
	}
	ui.OK(fmt.Sprintf("exported to %s (%s)", output, ledger.ExportMIME))
	return 0
}

func doTheme(ctx context.Context, app *App) int {
	dark, err := app.Theme.Toggle(ctx)
	if err != nil {
		ui.Fail("theme: " + err.Error())
		return 1
	}
	if dark {
		ui.OK("dark mode on")
	} else {
		ui.OK("dark mode off")
	}
	return 0
}
