package source

import "github.com/theirongolddev/echolon/internal/model"

// DiscoveredFile represents a CSV file found during directory scanning.
type DiscoveredFile struct {
	Path string
	Name string // base name without extension (e.g., "q1-sales")
	Dir  string // directory relative to the scan root, "" at top level
}

// ParseResult holds the output of parsing a single table source.
type ParseResult struct {
	Table       *model.Table
	Rows        int // data rows read, including ones with bad cells
	ParseErrors int // cells that could not be parsed
	Err         error
}
