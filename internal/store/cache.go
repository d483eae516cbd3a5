// Package store provides a SQLite-backed cache for parsed tables, local
// notes, goal targets and dashboard history.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/echolon/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed dataset caching and local persistence.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveDataset stores a parsed table and its file tracking info, replacing
// any previous parse of the same file.
func (c *Cache) SaveDataset(filePath string, t *model.Table, parseErrors int, mtimeNs, sizeBytes int64) error {
	headers, err := json.Marshal(t.Headers)
	if err != nil {
		return fmt.Errorf("encoding headers: %w", err)
	}
	mapping, err := json.Marshal(t.Mapping)
	if err != nil {
		return fmt.Errorf("encoding mapping: %w", err)
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)

	if _, err = tx.Exec("DELETE FROM dataset_records WHERE file_path = ?", filePath); err != nil {
		return err
	}
	if _, err = tx.Exec("DELETE FROM datasets WHERE file_path = ?", filePath); err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO datasets
		(file_path, source, headers, mapping, row_count, parse_errors, file_mtime_ns, file_size, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		filePath, t.Source, string(headers), string(mapping), len(t.Records), parseErrors,
		mtimeNs, sizeBytes, now,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO dataset_records (file_path, row_index, period, vals) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range t.Records {
		vals, err := json.Marshal(r.Values)
		if err != nil {
			return fmt.Errorf("encoding row %d: %w", i, err)
		}
		period := ""
		if !r.Date.IsZero() {
			period = r.Date.UTC().Format(time.RFC3339)
		}
		if _, err := stmt.Exec(filePath, i, period, string(vals)); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes)
		VALUES (?, ?, ?)`, filePath, mtimeNs, sizeBytes)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// LoadDataset reads one cached table and the parse error count recorded
// with it. Returns sql.ErrNoRows when the file was never cached.
func (c *Cache) LoadDataset(filePath string) (*model.Table, int, error) {
	var source, headersJSON, mappingJSON string
	var parseErrors int
	err := c.db.QueryRow(`SELECT source, headers, mapping, parse_errors FROM datasets WHERE file_path = ?`, filePath).
		Scan(&source, &headersJSON, &mappingJSON, &parseErrors)
	if err != nil {
		return nil, 0, err
	}

	t := &model.Table{Source: source, Mapping: make(model.Mapping)}
	if err := json.Unmarshal([]byte(headersJSON), &t.Headers); err != nil {
		return nil, 0, fmt.Errorf("decoding headers: %w", err)
	}
	if err := json.Unmarshal([]byte(mappingJSON), &t.Mapping); err != nil {
		return nil, 0, fmt.Errorf("decoding mapping: %w", err)
	}

	rows, err := c.db.Query(`SELECT period, vals FROM dataset_records WHERE file_path = ? ORDER BY row_index`, filePath)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var period sql.NullString
		var vals string
		if err := rows.Scan(&period, &vals); err != nil {
			return nil, 0, err
		}
		rec := model.Record{Values: make(map[model.Field]float64)}
		if err := json.Unmarshal([]byte(vals), &rec.Values); err != nil {
			return nil, 0, fmt.Errorf("decoding row: %w", err)
		}
		if period.Valid && period.String != "" {
			rec.Date, _ = time.Parse(time.RFC3339, period.String)
		}
		t.Records = append(t.Records, rec)
	}
	return t, parseErrors, rows.Err()
}

// DeleteDataset removes a cached table and its file tracking entry.
func (c *Cache) DeleteDataset(filePath string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM dataset_records WHERE file_path = ?", filePath); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM datasets WHERE file_path = ?", filePath); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM file_tracker WHERE file_path = ?", filePath); err != nil {
		return err
	}
	return tx.Commit()
}

// DatasetCount returns the number of cached tables.
func (c *Cache) DatasetCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM datasets").Scan(&count)
	return count, err
}
