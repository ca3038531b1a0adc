package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/idilsaglam/pomodoro/internal/config"
	"github.com/idilsaglam/pomodoro/internal/ledger"
	"github.com/idilsaglam/pomodoro/internal/store"
	"github.com/idilsaglam/pomodoro/internal/store/filekv"
	"github.com/idilsaglam/pomodoro/internal/store/sqlkv"
	"github.com/idilsaglam/pomodoro/internal/ui"
)

// App is the wired set of components every subcommand works on.
type App struct {
	Config *config.Config
	Log    *slog.Logger
	KV     store.KV
	Ledger *ledger.Ledger
	Theme  *ui.Toggle

	// File is set for the file backend, which can be watched.
	File *filekv.Store
}

// OpenApp builds the store for cfg and the components on top of it.
func OpenApp(ctx context.Context, cfg *config.Config, log *slog.Logger, now func() time.Time) (*App, error) {
	kv, file, err := openKV(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	log.Debug("store opened", "backend", cfg.Store.Backend, "path", cfg.Store.Path)

	adapter := store.NewAdapter(kv, log)
	var opts []ledger.Option
	if now != nil {
		opts = append(opts, ledger.WithClock(now))
	}
	return &App{
		Config: cfg,
		Log:    log,
		KV:     kv,
		Ledger: ledger.New(adapter, opts...),
		Theme:  ui.NewToggle(adapter, nil),
		File:   file,
	}, nil
}

func openKV(ctx context.Context, sc config.StoreConfig) (store.KV, *filekv.Store, error) {
	switch sc.Backend {
	case config.BackendFile:
		f, err := filekv.Open(sc.Path)
		if err != nil {
			return nil, nil, err
		}
		return f, f, nil
	case config.BackendSQLite, config.BackendMySQL:
		driver, dsn := sqlkv.DriverSQLite, sc.Path
		if sc.Backend == config.BackendMySQL {
			driver, dsn = sqlkv.DriverMySQL, sc.DSN
		}
		s, err := sqlkv.Open(ctx, driver, dsn)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case config.BackendMemory:
		return store.NewMemory(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", sc.Backend)
}

func (a *App) Close() error { return a.KV.Close() }
