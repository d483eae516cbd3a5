package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/source"
	"github.com/theirongolddev/echolon/internal/store"
)

// writeBenchData writes files CSVs of rows periods each into a temp dir.
func writeBenchData(b *testing.B, files, rows int) string {
	b.Helper()
	dir := b.TempDir()
	for f := range files {
		var sb strings.Builder
		sb.WriteString("Date,Revenue,Expenses,Customers,Churn Rate,Ad Spend,Orders\n")
		for r := range rows {
			d := source.DemoStart.AddDate(0, 0, f*rows+r)
			fmt.Fprintf(&sb, "%s,\"$%d,%03d\",%d,%d,%.1f%%,%d,%d\n",
				d.Format("2006-01-02"), 90+r%40, r%1000, 50000+r, 1000+r%5000, 2+float64(r%6), 9000+r, 300+r%600)
		}
		path := filepath.Join(dir, fmt.Sprintf("part-%02d.csv", f))
		if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
			b.Fatal(err)
		}
	}
	return dir
}

func BenchmarkLoad(b *testing.B) {
	dir := writeBenchData(b, 8, 2000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := Load([]string{dir}, nil)
		if err != nil {
			b.Fatal(err)
		}
		_ = result
	}
}

func BenchmarkParseFile(b *testing.B) {
	dir := writeBenchData(b, 1, 20000)
	files, err := source.ScanDir(dir)
	if err != nil || len(files) != 1 {
		b.Fatalf("scan: %v (%d files)", err, len(files))
	}

	info, _ := os.Stat(files[0].Path)
	b.Logf("Benchmarking %s (%.1f KB)", files[0].Name, float64(info.Size())/1024)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		result := source.ParseFile(files[0])
		if result.Err != nil {
			b.Fatal(result.Err)
		}
	}
}

func BenchmarkLoadWithCache(b *testing.B) {
	dir := writeBenchData(b, 8, 2000)

	cache, err := store.Open(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer func() { _ = cache.Close() }()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cr, err := LoadWithCache([]string{dir}, cache, nil)
		if err != nil {
			b.Fatal(err)
		}
		_ = cr
	}
}

func BenchmarkScenario(b *testing.B) {
	t := source.Demo(source.DemoSeed, 365, source.DemoStart)
	in := model.ScenarioInput{AdSpendPct: 10, PricePct: 5, ChurnDelta: 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Scenario(t, in)
	}
}
