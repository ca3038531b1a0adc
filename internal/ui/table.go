package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"

	"github.com/idilsaglam/pomodoro/internal/model"
)

// maxTaskWidth is measured in terminal cells.
const maxTaskWidth = 40

// RecordsTable lays records out with hours fixed to two decimals.
// limit <= 0 shows every row.
func RecordsTable(recs []model.Record, limit int) *table.Table {
	t := Current()
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		task := ansi.Truncate(r.Task, maxTaskWidth, "...")
		rows = append(rows, []string{r.Date, task, fmt.Sprintf("%.2f", r.Hours)})
	}
	return table.New().
		Border(t.Border).
		BorderStyle(lipgloss.NewStyle().Foreground(t.BorderColor)).
		Headers("Date", "Task", "Hours").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Inherit(t.Title)
			}
			if col == 2 {
				return s.Align(lipgloss.Right)
			}
			return s
		})
}
