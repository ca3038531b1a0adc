// Package sqlkv is a KV stored in a single SQL table. SQLite (pure Go,
// modernc.org/sqlite) and MySQL are supported.
package sqlkv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type dialect struct {
	schema string
	upsert string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		schema: `CREATE TABLE IF NOT EXISTS pomodoro_kv (
	name  TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`,
		upsert: `INSERT INTO pomodoro_kv (name, value) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
	},
	DriverMySQL: {
		schema: `CREATE TABLE IF NOT EXISTS pomodoro_kv (
	name  VARCHAR(191) NOT NULL PRIMARY KEY,
	value LONGTEXT NOT NULL
)`,
		upsert: `INSERT INTO pomodoro_kv (name, value) VALUES (?, ?)
ON DUPLICATE KEY UPDATE value = VALUES(value)`,
	},
}

type Store struct {
	db *sql.DB
	d  dialect
}

// Open connects and creates the table if needed. dsn is a file path (or
// ":memory:") for sqlite, a go-sql-driver DSN for mysql.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("sqlkv: unsupported driver %q", driver)
	}
	if dsn == "" {
		return nil, errors.New("sqlkv: DSN is required")
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one connection keeps ":memory:" a single database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if _, err := db.ExecContext(c, d.schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{db: db, d: d}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM pomodoro_kv WHERE name = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.d.upsert, key, value); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
