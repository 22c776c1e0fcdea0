// Package ingest loads semicolon-delimited proposal and law exports and
// prepares proposal rows for linking.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Delimiter separates fields in the legislative exports.
const Delimiter = ';'

// ErrMissingColumn is returned when a required header column is absent.
var ErrMissingColumn = errors.New("missing required column")

const utf8BOM = "\ufeff"

// column names one header field and the aliases it may appear under.
type column struct {
	name    string
	aliases []string
}

// table is a header-indexed view of one export file.
type table struct {
	source  string
	reader  *csv.Reader
	indices map[string]int
}

// cell is a field value; present is false for an absent or blank field.
type cell struct {
	value   string
	present bool
}

func openTable(source string, input io.Reader, required []column) (*table, error) {
	reader := csv.NewReader(input)
	reader.Comma = Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file: %w", source, ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read header: %w", source, err)
	}

	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
		if _, exists := positions[name]; !exists {
			positions[name] = i
		}
	}

	indices := make(map[string]int, len(required))
	for _, col := range required {
		index, found := findColumn(positions, col)
		if !found {
			return nil, fmt.Errorf("%s: %w %q", source, ErrMissingColumn, col.name)
		}
		indices[col.name] = index
	}

	return &table{source: source, reader: reader, indices: indices}, nil
}

func findColumn(positions map[string]int, col column) (int, bool) {
	if index, ok := positions[col.name]; ok {
		return index, true
	}
	for _, alias := range col.aliases {
		if index, ok := positions[alias]; ok {
			return index, true
		}
	}
	return 0, false
}

// each calls fn for every data row, passing a getter for the required columns.
func (t *table) each(fn func(get func(name string) cell)) error {
	for {
		record, err := t.reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", t.source, err)
		}
		fn(func(name string) cell {
			index := t.indices[name]
			if index >= len(record) {
				return cell{}
			}
			value := record[index]
			return cell{value: value, present: strings.TrimSpace(value) != ""}
		})
	}
}

// loadFiles opens each path in order and hands it to load.
func loadFiles(paths []string, load func(source string, input io.Reader) error) error {
	if len(paths) == 0 {
		return fmt.Errorf("no input files given")
	}
	for _, path := range paths {
		if err := loadFile(path, load); err != nil {
			return err
		}
	}
	return nil
}

func loadFile(path string, load func(source string, input io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	return load(path, file)
}
