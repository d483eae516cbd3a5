package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/echolon/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "echolon.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleTable() *model.Table {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &model.Table{
		Source:  "sales",
		Headers: []string{"Date", "Revenue", "Churn"},
		Mapping: model.Mapping{
			model.FieldDate:      "Date",
			model.FieldRevenue:   "Revenue",
			model.FieldChurnRate: "Churn",
		},
		Records: []model.Record{
			{Date: day, Values: map[model.Field]float64{model.FieldRevenue: 100, model.FieldChurnRate: 0.05}},
			{Date: day.AddDate(0, 0, 1), Values: map[model.Field]float64{model.FieldRevenue: 200}},
			{Values: map[model.Field]float64{model.FieldRevenue: 300}},
		},
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	c := openTestCache(t)
	path := "/data/sales.csv"

	if err := c.SaveDataset(path, sampleTable(), 2, 111, 222); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}

	tracked, err := c.GetTrackedFiles()
	if err != nil {
		t.Fatalf("GetTrackedFiles: %v", err)
	}
	if fi := tracked[path]; fi.MtimeNs != 111 || fi.SizeBytes != 222 {
		t.Errorf("tracked = %+v, want mtime 111 size 222", fi)
	}

	got, parseErrors, err := c.LoadDataset(path)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if parseErrors != 2 {
		t.Errorf("parseErrors = %d, want 2", parseErrors)
	}
	if got.Len() != 3 {
		t.Fatalf("Len = %d, want 3", got.Len())
	}
	if got.Sum(model.FieldRevenue) != 600 {
		t.Errorf("revenue sum = %v, want 600", got.Sum(model.FieldRevenue))
	}
	if got.Mapping[model.FieldChurnRate] != "Churn" {
		t.Errorf("mapping = %v", got.Mapping)
	}
	if !got.Records[2].Date.IsZero() {
		t.Errorf("undated row came back with date %v", got.Records[2].Date)
	}
	if !got.Records[1].Date.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("row 1 date = %v", got.Records[1].Date)
	}

	// Re-saving replaces rows instead of appending.
	smaller := sampleTable()
	smaller.Records = smaller.Records[:1]
	if err := c.SaveDataset(path, smaller, 0, 333, 444); err != nil {
		t.Fatalf("SaveDataset again: %v", err)
	}
	got, _, err = c.LoadDataset(path)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if got.Len() != 1 {
		t.Errorf("Len after replace = %d, want 1", got.Len())
	}

	if err := c.DeleteDataset(path); err != nil {
		t.Fatalf("DeleteDataset: %v", err)
	}
	if _, _, err := c.LoadDataset(path); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("LoadDataset after delete err = %v, want sql.ErrNoRows", err)
	}
	if n, _ := c.DatasetCount(); n != 0 {
		t.Errorf("DatasetCount = %d, want 0", n)
	}
}

func TestNotes(t *testing.T) {
	c := openTestCache(t)
	base := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

	first, err := c.AddNote(model.Note{Text: "Finish Q2 retention deep-dive", Urgent: true, CreatedAt: base})
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if first.ID == "" {
		t.Error("AddNote did not assign an id")
	}
	if _, err := c.AddNote(model.Note{Text: "Review ad spend", Owner: "Bob", CreatedAt: base.Add(time.Hour)}); err != nil {
		t.Fatalf("AddNote: %v", err)
	}

	notes, err := c.ListNotes(0)
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("len(notes) = %d, want 2", len(notes))
	}
	if notes[0].Text != "Review ad spend" || notes[0].Owner != "Bob" {
		t.Errorf("newest note = %+v", notes[0])
	}
	if !notes[1].Urgent || !notes[1].CreatedAt.Equal(base) {
		t.Errorf("oldest note = %+v", notes[1])
	}

	limited, _ := c.ListNotes(1)
	if len(limited) != 1 {
		t.Errorf("ListNotes(1) returned %d notes", len(limited))
	}

	if err := c.DeleteNote(first.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	notes, _ = c.ListNotes(0)
	if len(notes) != 1 {
		t.Errorf("len(notes) after delete = %d, want 1", len(notes))
	}
}

func TestSetNoteStatus(t *testing.T) {
	c := openTestCache(t)
	for _, id := range []string{"abc123", "abd456"} {
		if _, err := c.AddNote(model.Note{ID: id, Text: "task " + id}); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		id      string
		status  string
		wantID  string
		wantErr error
	}{
		{"abc", model.NoteDone, "abc123", nil},
		{"abd456", model.NoteDone, "abd456", nil},
		{"abd456", model.NoteOpen, "abd456", nil},
		{"ab", model.NoteDone, "", ErrAmbiguousNote},
		{"zzz", model.NoteDone, "", ErrNoteNotFound},
		{"", model.NoteDone, "", ErrNoteNotFound},
	}
	for _, tt := range tests {
		got, err := c.SetNoteStatus(tt.id, tt.status)
		if !errors.Is(err, tt.wantErr) || got != tt.wantID {
			t.Errorf("SetNoteStatus(%q) = %q, %v; want %q, %v", tt.id, got, err, tt.wantID, tt.wantErr)
		}
	}

	notes, err := c.ListNotes(0)
	if err != nil {
		t.Fatal(err)
	}
	done := map[string]bool{}
	for _, n := range notes {
		done[n.ID] = n.Done()
	}
	if !done["abc123"] || done["abd456"] {
		t.Errorf("done = %v, want abc123 only", done)
	}
}

func TestGoals(t *testing.T) {
	c := openTestCache(t)

	empty, err := c.LoadGoals()
	if err != nil || len(empty) != 0 {
		t.Fatalf("LoadGoals on empty db = %v, %v", empty, err)
	}

	in := []model.GoalTarget{
		{Metric: model.FieldRevenue, Target: 120000},
		{Metric: model.FieldOrders, Target: 50},
	}
	if err := c.SaveGoals(in); err != nil {
		t.Fatalf("SaveGoals: %v", err)
	}
	if err := c.SaveGoals(in[:1]); err != nil {
		t.Fatalf("SaveGoals replace: %v", err)
	}
	got, err := c.LoadGoals()
	if err != nil {
		t.Fatalf("LoadGoals: %v", err)
	}
	if len(got) != 1 || got[0] != in[0] {
		t.Errorf("LoadGoals = %+v, want %+v", got, in[:1])
	}
}

func TestHistory(t *testing.T) {
	c := openTestCache(t)
	for i := 1; i <= 3; i++ {
		id, err := c.RecordHistory(model.HistoryEntry{
			Source:  "demo",
			Periods: 7,
			Revenue: float64(i * 1000),
		})
		if err != nil {
			t.Fatalf("RecordHistory: %v", err)
		}
		if id != int64(i) {
			t.Errorf("id = %d, want %d", id, i)
		}
	}

	hist, err := c.ListHistory(2)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("len(hist) = %d, want 2", len(hist))
	}
	if hist[0].Revenue != 3000 || hist[1].Revenue != 2000 {
		t.Errorf("history order = %v, %v; want newest first", hist[0].Revenue, hist[1].Revenue)
	}
	if hist[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not restored")
	}
}
