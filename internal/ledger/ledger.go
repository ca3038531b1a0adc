// Package ledger owns the list of work records: merge-on-insert, the
// display ordering and CSV export. It holds no records in memory; every
// operation reads the full list from the store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/idilsaglam/pomodoro/internal/model"
)

// ErrInvalidInput is returned for an empty task or a bad hour count.
var ErrInvalidInput = errors.New("invalid input")

// Store is the persistence the ledger needs.
type Store interface {
	LoadRecords(ctx context.Context) []model.Record
	SaveRecords(ctx context.Context, recs []model.Record) error
}

type Ledger struct {
	store Store
	now   func() time.Time

	mu     sync.Mutex
	nextID int
	subs   map[int]func()
}

type Option func(*Ledger)

// WithClock overrides time.Now for the date key.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{store: store, now: time.Now, subs: map[int]func(){}}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Today is the date key records are filed under right now.
func (l *Ledger) Today() string {
	return l.now().UTC().Format(model.DateLayout)
}

// AddRecord credits hours to task for today. A record for the same day
// and task (case-insensitive) accumulates instead of being duplicated.
func (l *Ledger) AddRecord(ctx context.Context, task string, hours float64) error {
	task = strings.TrimSpace(task)
	if task == "" {
		return fmt.Errorf("%w: empty task", ErrInvalidInput)
	}
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours <= 0 {
		return fmt.Errorf("%w: hours must be a positive number, got %v", ErrInvalidInput, hours)
	}

	recs := l.store.LoadRecords(ctx)
	today := l.Today()
	i := slices.IndexFunc(recs, func(r model.Record) bool {
		return r.Date == today && strings.EqualFold(r.Task, task)
	})
	if i >= 0 {
		recs[i].Hours += hours
	} else {
		recs = append(recs, model.Record{Date: today, Task: task, Hours: hours})
	}
	if err := l.store.SaveRecords(ctx, recs); err != nil {
		return err
	}
	l.notify()
	return nil
}

// ListForDisplay returns records newest day first. Records of the same
// day keep their storage order.
func (l *Ledger) ListForDisplay(ctx context.Context) []model.Record {
	recs := l.store.LoadRecords(ctx)
	slices.SortStableFunc(recs, func(a, b model.Record) int {
		return strings.Compare(b.Date, a.Date)
	})
	return recs
}

// DayTotal is the sum of hours for one date.
type DayTotal struct {
	Date  string
	Hours float64
}

// Totals sums hours per day, newest day first.
func (l *Ledger) Totals(ctx context.Context) []DayTotal {
	var out []DayTotal
	for _, r := range l.ListForDisplay(ctx) {
		if n := len(out); n > 0 && out[n-1].Date == r.Date {
			out[n-1].Hours += r.Hours
			continue
		}
		out = append(out, DayTotal{Date: r.Date, Hours: r.Hours})
	}
	return out
}

// Subscribe registers fn to run after every successful mutation.
// The returned func removes it.
func (l *Ledger) Subscribe(fn func()) (unsubscribe func()) {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

func (l *Ledger) notify() {
	l.mu.Lock()
	ids := make([]int, 0, len(l.subs))
	for id := range l.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.subs[id])
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
