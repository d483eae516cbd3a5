// Package source discovers, fetches and parses business metric tables.
package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/theirongolddev/echolon/internal/model"
)

// ErrNoHeader is returned for inputs without a header row.
var ErrNoHeader = errors.New("no header row")

// maxCSVBytes caps how much of a single CSV is read.
const maxCSVBytes = 32 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFile reads a CSV file and produces a mapped metrics table.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	name := df.Name
	if name == "" {
		name = df.Path
	}
	return ParseCSV(f, name)
}

// ParseCSV parses CSV text. The delimiter is sniffed from the header line
// (comma, semicolon or tab); rows may be ragged.
func ParseCSV(r io.Reader, name string) ParseResult {
	data, err := io.ReadAll(io.LimitReader(bufio.NewReader(r), maxCSVBytes))
	if err != nil {
		return ParseResult{Err: fmt.Errorf("reading %s: %w", name, err)}
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return ParseResult{Err: fmt.Errorf("parsing %s: %w", name, err)}
	}
	if len(rows) == 0 {
		return ParseResult{Err: fmt.Errorf("parsing %s: %w", name, ErrNoHeader)}
	}
	return ParseRows(rows[0], rows[1:], name)
}

// sniffDelimiter picks the most frequent candidate delimiter on the first
// line, ignoring quoted sections. Comma wins ties.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	counts := map[rune]int{}
	inQuotes := false
	for _, c := range string(line) {
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case c == ',' || c == ';' || c == '\t':
			counts[c]++
		}
	}

	best := ','
	for _, c := range []rune{';', '\t'} {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

// ParseRows maps headers to canonical fields and converts each row into a
// record. Unparseable cells are counted and left absent for their row.
// Rows whose cells are all empty are skipped.
func ParseRows(headers []string, rows [][]string, name string) ParseResult {
	clean := make([]string, len(headers))
	for i, h := range headers {
		clean[i] = strings.TrimSpace(h)
	}
	if len(clean) == 0 || allEmpty(clean) {
		return ParseResult{Err: fmt.Errorf("parsing %s: %w", name, ErrNoHeader)}
	}

	idx := mapIndexes(clean)
	mapping := make(model.Mapping, len(idx))
	for f, i := range idx {
		mapping[f] = clean[i]
	}

	t := &model.Table{
		Source:  name,
		Headers: clean,
		Mapping: mapping,
		Records: make([]model.Record, 0, len(rows)),
	}

	res := ParseResult{Table: t}
	for _, row := range rows {
		if allEmpty(row) {
			continue
		}
		res.Rows++

		rec := model.Record{Values: make(map[model.Field]float64, len(idx))}
		for f, i := range idx {
			if i >= len(row) {
				continue
			}
			cell := row[i]

			if f == model.FieldDate {
				d, err := ParseDate(cell)
				if err != nil {
					if !errors.Is(err, errEmptyCell) {
						res.ParseErrors++
					}
					continue
				}
				rec.Date = d
				continue
			}

			v, pct, err := ParseNumber(cell)
			if err != nil {
				if !errors.Is(err, errEmptyCell) {
					res.ParseErrors++
				}
				continue
			}
			if f.IsRate() {
				v = NormalizeRate(v, pct)
			}
			rec.Values[f] = v
		}
		t.Records = append(t.Records, rec)
	}

	return res
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
