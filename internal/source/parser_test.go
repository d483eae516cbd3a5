package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/echolon/internal/model"
)

// writeCSV creates a temp CSV file and returns a DiscoveredFile for it.
func writeCSV(t *testing.T, lines ...string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return DiscoveredFile{Path: path, Name: "metrics"}
}

func TestParseFile_Basic(t *testing.T) {
	df := writeCSV(t,
		"Date,Revenue,Expenses,Customers,Churn Rate",
		"2024-01-01,\"$100,000\",60000,1200,5%",
		"2024-01-02,110000,(500),1300,0.04",
	)

	res := ParseFile(df)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	tbl := res.Table
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}
	if tbl.Source != "metrics" {
		t.Errorf("Source = %q, want metrics", tbl.Source)
	}
	if got := tbl.Sum(model.FieldRevenue); got != 210000 {
		t.Errorf("revenue sum = %.0f, want 210000", got)
	}
	if got, _ := tbl.Records[1].Get(model.FieldExpenses); got != -500 {
		t.Errorf("parenthesized expenses = %.0f, want -500", got)
	}
	if got, _ := tbl.Records[0].Get(model.FieldChurnRate); got != 0.05 {
		t.Errorf("churn 5%% = %v, want 0.05", got)
	}
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !tbl.Records[1].Date.Equal(want) {
		t.Errorf("date = %v, want %v", tbl.Records[1].Date, want)
	}
}

func TestParseCSV_SemicolonAndBOM(t *testing.T) {
	body := "\xEF\xBB\xBFdate;sales;costs\n01.02.2024;1.234,50;900\n"
	res := ParseCSV(strings.NewReader(body), "eu")
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Table.Mapping[model.FieldDate] != "date" {
		t.Errorf("BOM not stripped, mapping = %v", res.Table.Mapping)
	}
	if got, _ := res.Table.Records[0].Get(model.FieldRevenue); got != 1234.5 {
		t.Errorf("revenue = %v, want 1234.5", got)
	}
	want := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if !res.Table.Records[0].Date.Equal(want) {
		t.Errorf("date = %v, want %v", res.Table.Records[0].Date, want)
	}
}

func TestParseCSV_TabDelimited(t *testing.T) {
	body := "Month\tRevenue\tOrders\nJan 2024\t5000\t12\n"
	res := ParseCSV(strings.NewReader(body), "tsv")
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if got := res.Table.Sum(model.FieldOrders); got != 12 {
		t.Errorf("orders = %v, want 12", got)
	}
}

func TestParseCSV_BadCellsCounted(t *testing.T) {
	body := strings.Join([]string{
		"date,revenue,expenses",
		"not-a-date,abc,100",
		"2024-01-01,,200",
		",,",
		"2024-01-02,300",
	}, "\n")
	res := ParseCSV(strings.NewReader(body), "bad")
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.ParseErrors != 2 {
		t.Errorf("ParseErrors = %d, want 2", res.ParseErrors)
	}
	if res.Rows != 3 {
		t.Errorf("Rows = %d, want 3 (blank row skipped)", res.Rows)
	}
	if _, ok := res.Table.Records[0].Get(model.FieldRevenue); ok {
		t.Error("unparseable revenue should be absent")
	}
	if _, ok := res.Table.Records[2].Get(model.FieldExpenses); ok {
		t.Error("ragged row should leave expenses absent")
	}
}

func TestParseCSV_Empty(t *testing.T) {
	res := ParseCSV(strings.NewReader(""), "empty")
	if !errors.Is(res.Err, ErrNoHeader) {
		t.Fatalf("Err = %v, want ErrNoHeader", res.Err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestParseCSV_ReadError(t *testing.T) {
	res := ParseCSV(failingReader{}, "broken")
	if res.Err == nil {
		t.Fatal("expected error from failing reader")
	}
}

func TestParseFile_Missing(t *testing.T) {
	res := ParseFile(DiscoveredFile{Path: filepath.Join(t.TempDir(), "nope.csv")})
	if res.Err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want rune
	}{
		{"comma", "a,b,c\n1,2,3", ','},
		{"semicolon", "a;b;c", ';'},
		{"tab", "a\tb\tc", '\t'},
		{"quoted commas ignored", "\"a,b,c\";d;e", ';'},
		{"single column", "revenue", ','},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffDelimiter([]byte(tt.in)); got != tt.want {
				t.Errorf("sniffDelimiter(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(rel string) {
		t.Helper()
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("a\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("q1.csv")
	mustWrite("2024/q2.CSV")
	mustWrite("notes.txt")
	mustWrite(".hidden/q3.csv")

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("found %d files, want 2: %+v", len(files), files)
	}
	if CountDirs(files) != 2 {
		t.Errorf("CountDirs = %d, want 2", CountDirs(files))
	}

	missing, err := ScanDir(filepath.Join(dir, "nope"))
	if err != nil || missing != nil {
		t.Errorf("ScanDir(missing) = %v, %v; want nil, nil", missing, err)
	}
}
