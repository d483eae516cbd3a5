package pipeline

import (
	"sync/atomic"
	"testing"

	"github.com/theirongolddev/echolon/internal/model"
)

func TestLoad_MergesDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv",
		"Date,Revenue,Expenses",
		"2024-01-03,300,100",
		"2024-01-04,400,150",
	)
	writeFile(t, dir, "a.csv",
		"Date,Revenue,Expenses",
		"2024-01-01,100,50",
		"2024-01-02,200,80",
	)
	writeFile(t, dir, "notes.txt", "not a csv")

	var calls atomic.Int64
	res, err := Load([]string{dir}, func(cur, total int) {
		calls.Add(1)
		if total != 2 {
			t.Errorf("progress total = %d, want 2", total)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", res.TotalFiles)
	}
	if res.ParsedFiles != 2 {
		t.Errorf("ParsedFiles = %d, want 2", res.ParsedFiles)
	}
	if calls.Load() != 2 {
		t.Errorf("progress calls = %d, want 2", calls.Load())
	}
	if res.Table.Len() != 4 {
		t.Fatalf("records = %d, want 4", res.Table.Len())
	}
	for i, r := range res.Table.Records {
		if !r.Date.Equal(day(i + 1)) {
			t.Errorf("record %d date = %s, want %s", i, r.Date, day(i+1))
		}
	}
	if got := res.Table.Sum(model.FieldRevenue); got != 1000 {
		t.Errorf("revenue sum = %f, want 1000", got)
	}
}

func TestLoad_FileErrorIsWarning(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.csv", "Date,Revenue", "2024-01-01,10")
	empty := writeFile(t, dir, "empty.csv")

	res, err := Load([]string{good, empty}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.FileErrors != 1 {
		t.Errorf("FileErrors = %d, want 1", res.FileErrors)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("warnings = %v, want one", res.Warnings)
	}
	if res.Table.Len() != 1 {
		t.Errorf("records = %d, want 1", res.Table.Len())
	}
}

func TestLoad_Empty(t *testing.T) {
	res, err := Load([]string{t.TempDir()}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Table != nil {
		t.Errorf("Table = %+v, want nil", res.Table)
	}
}

func TestMerge(t *testing.T) {
	a := makeTable([]float64{1, 2}, nil, nil)
	a.Source = "a.csv"
	a.Headers = []string{"Date", "Revenue"}
	a.Mapping = model.Mapping{model.FieldRevenue: "Revenue"}

	b := &model.Table{
		Source:  "b.csv",
		Headers: []string{"Date", "Sales", "Cost"},
		Mapping: model.Mapping{model.FieldRevenue: "Sales", model.FieldExpenses: "Cost"},
		Records: []model.Record{{Date: day(0), Values: map[model.Field]float64{model.FieldRevenue: 5}}},
	}

	m := Merge(a, nil, b)
	if m.Len() != 3 {
		t.Fatalf("len = %d, want 3", m.Len())
	}
	if m.Source != "a.csv, b.csv" {
		t.Errorf("Source = %q", m.Source)
	}
	if m.Mapping[model.FieldRevenue] != "Revenue" {
		t.Errorf("revenue mapping = %q, want first table to win", m.Mapping[model.FieldRevenue])
	}
	if m.Mapping[model.FieldExpenses] != "Cost" {
		t.Errorf("expenses mapping = %q, want Cost", m.Mapping[model.FieldExpenses])
	}
	if len(m.Headers) != 4 {
		t.Errorf("headers = %v, want 4 unique", m.Headers)
	}
	if v, _ := m.Records[0].Get(model.FieldRevenue); v != 5 {
		t.Errorf("first record revenue = %f, want 5 (sorted by date)", v)
	}

	if Merge() != nil || Merge(nil, &model.Table{}) != nil {
		t.Error("Merge of empty tables should be nil")
	}
	if Merge(a) != a {
		t.Error("Merge of one table should return it unchanged")
	}
}

func TestUsable(t *testing.T) {
	if Usable(nil) {
		t.Error("nil table is not usable")
	}
	dateOnly := &model.Table{Records: []model.Record{{Date: day(1), Values: map[model.Field]float64{}}}}
	if Usable(dateOnly) {
		t.Error("table without metrics is not usable")
	}
	if !Usable(makeTable([]float64{1}, nil, nil)) {
		t.Error("table with revenue should be usable")
	}
}
