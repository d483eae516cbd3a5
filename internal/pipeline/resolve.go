package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/source"
	"github.com/theirongolddev/echolon/internal/store"
)

// Options selects where a dashboard table comes from.
type Options struct {
	Paths    []string
	SheetURL string
	APIURL   string
	Demo     bool

	Seed      int64
	Periods   int
	DemoStart time.Time

	Cache    *store.Cache // nil disables caching
	Fetcher  *source.Fetcher
	Progress ProgressFunc
}

// LoadOrDemo loads the requested inputs and falls back to the demo table
// whenever nothing usable comes back. The returned result always carries a
// table; every fallback is explained in Warnings.
func LoadOrDemo(ctx context.Context, opts Options) *LoadResult {
	res := &LoadResult{}
	demo := func(reason string) *LoadResult {
		if reason != "" {
			res.Warnings = append(res.Warnings, reason+"; showing demo data")
		}
		res.Table = source.Demo(opts.Seed, opts.Periods, opts.DemoStart)
		return res
	}

	if opts.Demo {
		return demo("")
	}

	var tables []*model.Table

	if len(opts.Paths) > 0 {
		var (
			lr  *LoadResult
			err error
		)
		if opts.Cache != nil {
			var cr *CachedLoadResult
			cr, err = LoadWithCache(opts.Paths, opts.Cache, opts.Progress)
			if cr != nil {
				lr = &cr.LoadResult
			}
		} else {
			lr, err = Load(opts.Paths, opts.Progress)
		}
		if err != nil {
			res.Warnings = append(res.Warnings, err.Error())
		} else {
			res.TotalFiles = lr.TotalFiles
			res.ParsedFiles = lr.ParsedFiles
			res.ParseErrors = lr.ParseErrors
			res.FileErrors = lr.FileErrors
			res.DirCount = lr.DirCount
			res.Warnings = append(res.Warnings, lr.Warnings...)
			if lr.Table != nil {
				tables = append(tables, lr.Table)
			}
		}
	}

	fetcher := opts.Fetcher
	if fetcher == nil && (opts.SheetURL != "" || opts.APIURL != "") {
		fetcher = source.NewFetcher()
	}
	if opts.SheetURL != "" {
		tables = appendRemote(res, tables, "google sheet", fetcher.FetchSheet(ctx, opts.SheetURL))
	}
	if opts.APIURL != "" {
		tables = appendRemote(res, tables, "api", fetcher.FetchAPI(ctx, opts.APIURL))
	}

	requested := len(opts.Paths) > 0 || opts.SheetURL != "" || opts.APIURL != ""
	if !requested {
		return demo("")
	}

	t := Merge(tables...)
	if !Usable(t) {
		return demo("no usable metric columns found")
	}
	if res.ParseErrors > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d cells could not be parsed and were skipped", res.ParseErrors))
	}
	res.Table = t
	return res
}

func appendRemote(res *LoadResult, tables []*model.Table, label string, pr source.ParseResult) []*model.Table {
	if pr.Err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s import failed: %v", label, pr.Err))
		return tables
	}
	res.ParseErrors += pr.ParseErrors
	return append(tables, pr.Table)
}
