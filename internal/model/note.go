package model

import (
	"strings"
	"time"
)

// Note statuses. A note with a status doubles as a checklist task.
const (
	NoteOpen = "open"
	NoteDone = "done"
)

// Note is a collaboration note attached to a user or session.
type Note struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner,omitempty"`
	Text      string    `json:"text"`
	Urgent    bool      `json:"urgent,omitempty"`
	Status    string    `json:"status,omitempty"`
	Due       string    `json:"due,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Done reports whether the note is a completed task.
func (n Note) Done() bool { return strings.EqualFold(n.Status, NoteDone) }

// HistoryEntry is a stored summary of one dashboard run.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	Source    string    `json:"source"`
	Periods   int       `json:"periods"`
	Revenue   float64   `json:"revenue"`
	Expenses  float64   `json:"expenses"`
	Profit    float64   `json:"profit"`
	Customers float64   `json:"customers"`
	ChurnRate float64   `json:"churn_rate"`
	CreatedAt time.Time `json:"created_at"`
}
