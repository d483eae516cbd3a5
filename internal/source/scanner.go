package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir walks a data directory and discovers all CSV files.
// A missing directory yields no files and no error.
func ScanDir(dataDir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		name := d.Name()
		if d.IsDir() {
			if path != dataDir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsCSV(name) || strings.HasPrefix(name, ".") {
			return nil
		}

		rel, _ := filepath.Rel(dataDir, filepath.Dir(path))
		if rel == "." {
			rel = ""
		}

		files = append(files, DiscoveredFile{
			Path: path,
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Dir:  rel,
		})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// IsCSV reports whether a file name has a .csv extension, in any case.
func IsCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// FilesFromPaths turns explicit file arguments into discovered files.
// Directories are expanded with ScanDir.
func FilesFromPaths(paths []string) ([]DiscoveredFile, error) {
	var files []DiscoveredFile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			found, err := ScanDir(p)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
			continue
		}
		base := filepath.Base(p)
		files = append(files, DiscoveredFile{
			Path: p,
			Name: strings.TrimSuffix(base, filepath.Ext(base)),
		})
	}
	return files, nil
}

// CountDirs returns the number of distinct directories in a set of discovered files.
func CountDirs(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		seen[f.Dir] = struct{}{}
	}
	return len(seen)
}
