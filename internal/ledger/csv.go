package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ExportFileName and ExportMIME describe the download offered to the user.
const (
	ExportFileName = "pomodoro_records.csv"
	ExportMIME     = "text/csv"
)

var csvHeader = []string{"Date", "Task", "Hours"}

// ExportCSV renders all records in storage order. Fields are joined with
// bare commas: a task containing a comma or quote yields a malformed row.
// Use WriteCSV with quote set for escaped output.
func (l *Ledger) ExportCSV(ctx context.Context) []byte {
	var buf bytes.Buffer
	_ = l.WriteCSV(ctx, &buf, false)
	return buf.Bytes()
}

// WriteCSV writes the export to w. With quote, fields are escaped per
// RFC 4180.
func (l *Ledger) WriteCSV(ctx context.Context, w io.Writer, quote bool) error {
	recs := l.store.LoadRecords(ctx)
	if quote {
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		for _, r := range recs {
			if err := cw.Write([]string{r.Date, r.Task, FormatHours(r.Hours)}); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	}

	if _, err := io.WriteString(w, "Date,Task,Hours\n"); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, r := range recs {
		if _, err := fmt.Fprintf(w, "%s,%s,%s\n", r.Date, r.Task, FormatHours(r.Hours)); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	return nil
}

// FormatHours prints hours in the shortest decimal form, e.g. 0.5 or 1.
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
