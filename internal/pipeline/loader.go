package pipeline

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/source"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Table       *model.Table
	TotalFiles  int
	ParsedFiles int
	ParseErrors int
	FileErrors  int
	DirCount    int
	Warnings    []string
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load parses every CSV named by paths (files or directories) and merges
// them into one table. It uses a bounded worker pool for parallel parsing.
func Load(paths []string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.FilesFromPaths(paths)
	if err != nil {
		return nil, fmt.Errorf("resolving inputs: %w", err)
	}

	result := &LoadResult{
		TotalFiles: len(files),
		DirCount:   source.CountDirs(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	results := parseAll(files, progressFn, 0, len(files))

	var tables []*model.Table
	for i, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", files[i].Path, pr.Err))
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		if pr.Table.Len() > 0 {
			tables = append(tables, pr.Table)
		}
	}

	result.Table = Merge(tables...)
	return result, nil
}

// parseAll runs source.ParseFile over files with a worker pool. offset and
// total shift the progress callback when part of the work came from cache.
func parseAll(files []source.DiscoveredFile, progressFn ProgressFunc, offset, total int) []source.ParseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n)+offset, total)
				}
			}
		}()
	}

	wg.Wait()
	return results
}

// Merge concatenates tables into one. Headers and mappings are unioned with
// the first table winning conflicts; records are ordered by date when any
// are dated. Returns nil when no table has records.
func Merge(tables ...*model.Table) *model.Table {
	var nonEmpty []*model.Table
	for _, t := range tables {
		if t.Len() > 0 {
			nonEmpty = append(nonEmpty, t)
		}
	}
	switch len(nonEmpty) {
	case 0:
		return nil
	case 1:
		return nonEmpty[0]
	}

	out := &model.Table{Mapping: make(model.Mapping)}
	seenHeader := make(map[string]struct{})
	var sources []string

	for _, t := range nonEmpty {
		sources = append(sources, t.Source)
		for _, h := range t.Headers {
			if _, ok := seenHeader[h]; ok {
				continue
			}
			seenHeader[h] = struct{}{}
			out.Headers = append(out.Headers, h)
		}
		for f, col := range t.Mapping {
			if _, ok := out.Mapping[f]; !ok {
				out.Mapping[f] = col
			}
		}
		out.Records = append(out.Records, t.Records...)
		out.Demo = out.Demo || t.Demo
	}
	out.Source = strings.Join(sources, ", ")

	if out.Has(model.FieldDate) {
		out.SortByDate()
	}
	return out
}

// Usable reports whether a table has at least one numeric metric to show.
func Usable(t *model.Table) bool {
	if t.Len() == 0 {
		return false
	}
	for _, f := range model.NumericFields {
		if t.Has(f) {
			return true
		}
	}
	return false
}
