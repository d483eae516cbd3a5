package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/echolon/internal/model"
)

// storedTime is a fixed-width layout so text ordering matches time ordering.
const storedTime = "2006-01-02T15:04:05.000000000Z07:00"

// AddNote stores a note. Missing ids and timestamps are filled in and the
// stored note is returned.
func (c *Cache) AddNote(n model.Note) (model.Note, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.CreatedAt = n.CreatedAt.UTC()

	urgent := 0
	if n.Urgent {
		urgent = 1
	}
	_, err := c.db.Exec(`INSERT OR REPLACE INTO notes (note_id, owner, body, urgent, status, due, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Owner, n.Text, urgent, n.Status, n.Due, n.CreatedAt.Format(storedTime))
	if err != nil {
		return n, fmt.Errorf("saving note: %w", err)
	}
	return n, nil
}

// ListNotes returns the most recent notes, newest first. limit <= 0 means all.
func (c *Cache) ListNotes(limit int) ([]model.Note, error) {
	q := `SELECT note_id, owner, body, urgent, status, due, created_at FROM notes ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := c.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var notes []model.Note
	for rows.Next() {
		var n model.Note
		var owner, status, due sql.NullString
		var urgent int
		var created string
		if err := rows.Scan(&n.ID, &owner, &n.Text, &urgent, &status, &due, &created); err != nil {
			return nil, err
		}
		n.Owner = owner.String
		n.Status = status.String
		n.Due = due.String
		n.Urgent = urgent != 0
		n.CreatedAt, _ = time.Parse(storedTime, created)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

var (
	ErrNoteNotFound  = errors.New("note not found")
	ErrAmbiguousNote = errors.New("note id prefix matches more than one note")
)

// SetNoteStatus updates the status of the note whose id is, or uniquely
// starts with, id and returns the full id.
func (c *Cache) SetNoteStatus(id, status string) (string, error) {
	if id == "" {
		return "", ErrNoteNotFound
	}
	rows, err := c.db.Query(`SELECT note_id FROM notes WHERE substr(note_id, 1, ?) = ?`, len(id), id)
	if err != nil {
		return "", err
	}
	var ids []string
	for rows.Next() {
		var nid string
		if err := rows.Scan(&nid); err != nil {
			_ = rows.Close()
			return "", err
		}
		ids = append(ids, nid)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return "", err
	}

	var match string
	switch {
	case len(ids) == 0:
		return "", ErrNoteNotFound
	case len(ids) == 1:
		match = ids[0]
	default:
		for _, nid := range ids {
			if nid == id {
				match = nid
			}
		}
		if match == "" {
			return "", ErrAmbiguousNote
		}
	}

	if _, err := c.db.Exec(`UPDATE notes SET status = ? WHERE note_id = ?`, status, match); err != nil {
		return "", fmt.Errorf("updating note: %w", err)
	}
	return match, nil
}

// DeleteNote removes a note by id.
func (c *Cache) DeleteNote(id string) error {
	_, err := c.db.Exec("DELETE FROM notes WHERE note_id = ?", id)
	return err
}

// SaveGoals replaces the stored goal targets.
func (c *Cache) SaveGoals(targets []model.GoalTarget) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM goals"); err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, g := range targets {
		if _, err := tx.Exec(`INSERT INTO goals (metric, target, updated_at) VALUES (?, ?, ?)`,
			string(g.Metric), g.Target, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadGoals returns stored goal targets ordered by metric name. An empty
// result means no goals were saved.
func (c *Cache) LoadGoals() ([]model.GoalTarget, error) {
	rows, err := c.db.Query(`SELECT metric, target FROM goals ORDER BY metric`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.GoalTarget
	for rows.Next() {
		var metric string
		var g model.GoalTarget
		if err := rows.Scan(&metric, &g.Target); err != nil {
			return nil, err
		}
		g.Metric = model.Field(metric)
		out = append(out, g)
	}
	return out, rows.Err()
}

// RecordHistory stores a dashboard summary snapshot and returns its id.
func (c *Cache) RecordHistory(h model.HistoryEntry) (int64, error) {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	res, err := c.db.Exec(`INSERT INTO history
		(source, periods, revenue, expenses, profit, customers, churn_rate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		h.Source, h.Periods, h.Revenue, h.Expenses, h.Profit, h.Customers, h.ChurnRate,
		h.CreatedAt.UTC().Format(storedTime))
	if err != nil {
		return 0, fmt.Errorf("saving history: %w", err)
	}
	return res.LastInsertId()
}

// ListHistory returns the most recent snapshots, newest first. limit <= 0 means all.
func (c *Cache) ListHistory(limit int) ([]model.HistoryEntry, error) {
	q := `SELECT id, source, periods, revenue, expenses, profit, customers, churn_rate, created_at
		FROM history ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := c.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.HistoryEntry
	for rows.Next() {
		var h model.HistoryEntry
		var created string
		if err := rows.Scan(&h.ID, &h.Source, &h.Periods, &h.Revenue, &h.Expenses, &h.Profit,
			&h.Customers, &h.ChurnRate, &created); err != nil {
			return nil, err
		}
		h.CreatedAt, _ = time.Parse(storedTime, created)
		out = append(out, h)
	}
	return out, rows.Err()
}
