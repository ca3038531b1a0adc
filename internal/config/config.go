// Package config loads settings from an optional YAML file, a .env file
// and POMODORO_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/pomodoro/internal/ledger"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendMemory = "memory"
)

type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Timer  TimerConfig  `yaml:"timer"`
	Export ExportConfig `yaml:"export"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`        // file | sqlite | mysql | memory
	Path    string `yaml:"path,omitempty"` // file and sqlite
	DSN     string `yaml:"dsn,omitempty"`  // mysql
}

type TimerConfig struct {
	Minutes int  `yaml:"minutes"`
	Bell    bool `yaml:"bell"`
}

type ExportConfig struct {
	File  string `yaml:"file"`
	Quote bool   `yaml:"quote"`
}

// Default returns the built-in settings.
func Default() *Config {
	cfg := base()
	applyDefaults(cfg)
	return cfg
}

func base() *Config {
	return &Config{Timer: TimerConfig{Bell: true}}
}

func defaultPath(backend string) string {
	switch backend {
	case BackendFile:
		return "pomodoro.json"
	case BackendSQLite:
		return "pomodoro.db"
	}
	return ""
}

// Load reads path if it exists; a missing file is not an error.
// Environment variables from .env files never override the process environment.
func Load(path string) (*Config, error) {
	if files := envFiles(); len(files) > 0 {
		_ = godotenv.Load(files...)
	}

	cfg := base()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("unmarshal config: %w", err)
			}
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envFiles() []string {
	var out []string
	for _, p := range []string{".env", ".env.local"} {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("POMODORO_STORE"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("POMODORO_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("POMODORO_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("POMODORO_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("POMODORO_MINUTES must be an integer")
		}
		cfg.Timer.Minutes = n
	}
	if v := os.Getenv("POMODORO_EXPORT"); v != "" {
		cfg.Export.File = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendFile
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultPath(cfg.Store.Backend)
	}
	if cfg.Timer.Minutes <= 0 {
		cfg.Timer.Minutes = 25
	}
	if cfg.Export.File == "" {
		cfg.Export.File = ledger.ExportFileName
	}
}

// UseBackend switches the store backend. A path still at the old
// backend's default moves to the new backend's default.
func (c *Config) UseBackend(backend string) error {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if c.Store.Path == defaultPath(c.Store.Backend) {
		c.Store.Path = defaultPath(backend)
	}
	c.Store.Backend = backend
	return c.Validate()
}

// Validate checks the backend settings.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	case BackendMySQL:
		if c.Store.DSN == "" {
			return errors.New("store.dsn (or POMODORO_DSN) is required for the mysql backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}
