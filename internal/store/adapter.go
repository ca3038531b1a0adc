package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/idilsaglam/pomodoro/internal/model"
)

// Adapter reads and writes the persisted state through a KV.
// Reads never fail: missing or corrupt data is treated as empty.
type Adapter struct {
	kv  KV
	log *slog.Logger
}

func NewAdapter(kv KV, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{kv: kv, log: log}
}

// LoadRecords returns the stored records in storage order.
func (a *Adapter) LoadRecords(ctx context.Context) []model.Record {
	raw, ok, err := a.kv.Get(ctx, KeyRecords)
	if err != nil {
		a.log.Debug("load records", "error", err)
		return []model.Record{}
	}
	if !ok || raw == "" {
		return []model.Record{}
	}
	var recs []model.Record
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		a.log.Debug("corrupt records, treating as empty", "error", err)
		return []model.Record{}
	}
	if recs == nil {
		recs = []model.Record{}
	}
	return recs
}

// SaveRecords overwrites the stored sequence.
func (a *Adapter) SaveRecords(ctx context.Context, recs []model.Record) error {
	if recs == nil {
		recs = []model.Record{}
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := a.kv.Set(ctx, KeyRecords, string(b)); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}

func (a *Adapter) LoadPreference(ctx context.Context) bool {
	raw, _, err := a.kv.Get(ctx, KeyDarkMode)
	if err != nil {
		a.log.Debug("load preference", "error", err)
		return false
	}
	return raw == "true"
}

func (a *Adapter) SavePreference(ctx context.Context, dark bool) error {
	v := "false"
	if dark {
		v = "true"
	}
	if err := a.kv.Set(ctx, KeyDarkMode, v); err != nil {
		return fmt.Errorf("save preference: %w", err)
	}
	return nil
}
