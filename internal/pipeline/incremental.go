package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/source"
	"github.com/theirongolddev/echolon/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
}

// LoadWithCache resolves inputs, diffs them against the cache, parses only
// changed files and returns the merged table.
func LoadWithCache(paths []string, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.FilesFromPaths(paths)
	if err != nil {
		return nil, fmt.Errorf("resolving inputs: %w", err)
	}
	return loadFilesWithCache(files, cache, progressFn)
}

func loadFilesWithCache(files []source.DiscoveredFile, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	result := &CachedLoadResult{
		LoadResult: LoadResult{
			TotalFiles: len(files),
			DirCount:   source.CountDirs(files),
		},
	}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	// Diff: partition into changed and unchanged, keeping input order.
	tables := make([]*model.Table, len(files))
	var toReparse []source.DiscoveredFile
	var reparseIdx []int

	for i, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			// Removed or unreadable since discovery.
			result.FileErrors++
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", f.Path, err))
			continue
		}

		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == info.ModTime().UnixNano() && cached.SizeBytes == info.Size() {
			t, parseErrors, err := cache.LoadDataset(f.Path)
			if err == nil {
				tables[i] = t
				result.CacheHits++
				result.ParsedFiles++
				result.ParseErrors += parseErrors
				continue
			}
		}
		toReparse = append(toReparse, f)
		reparseIdx = append(reparseIdx, i)
	}

	result.Reparsed = len(toReparse)

	if len(toReparse) > 0 {
		results := parseAll(toReparse, progressFn, result.CacheHits, result.TotalFiles)

		for i, pr := range results {
			f := toReparse[i]
			if pr.Err != nil {
				result.FileErrors++
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", f.Path, pr.Err))
				continue
			}
			result.ParsedFiles++
			result.ParseErrors += pr.ParseErrors
			tables[reparseIdx[i]] = pr.Table

			info, err := os.Stat(f.Path)
			if err == nil {
				_ = cache.SaveDataset(f.Path, pr.Table, pr.ParseErrors, info.ModTime().UnixNano(), info.Size())
			}
		}
	}

	result.Table = Merge(tables...)
	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "echolon")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "echolon")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "echolon.db")
}
