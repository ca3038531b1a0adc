package model

// Record is one ledger entry: all hours logged for a task on a given day.
// The JSON shape is the persisted layout, keep field names stable.
type Record struct {
	Date  string  `json:"date"` // YYYY-MM-DD, UTC day
	Task  string  `json:"task"`
	Hours float64 `json:"hours"`
}

// DateLayout is the layout of Record.Date.
const DateLayout = "2006-01-02"
