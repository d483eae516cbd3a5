package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/echolon/internal/model"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

// makeTable builds a dated table from parallel revenue/expense slices plus
// optional extra constant columns.
func makeTable(revenue, expenses []float64, extra map[model.Field]float64) *model.Table {
	t := &model.Table{Source: "test", Mapping: model.Mapping{}}
	for i := range revenue {
		vals := map[model.Field]float64{model.FieldRevenue: revenue[i]}
		if i < len(expenses) {
			vals[model.FieldExpenses] = expenses[i]
		}
		for f, v := range extra {
			vals[f] = v
		}
		t.Records = append(t.Records, model.Record{Date: day(i + 1), Values: vals})
	}
	return t
}

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func approx(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-6
}
