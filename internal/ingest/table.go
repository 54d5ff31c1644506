// Package ingest loads sales history, SKU snapshots and replenishment positions from
// CSV or XLSX files exported by merchandising systems.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// table is a header row plus data rows, regardless of the source format.
type table struct {
	source string
	header []string
	rows   [][]string
}

func readTable(path string) (*table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return readCSVTable(path)
	case ".xlsx", ".xlsm":
		return readXLSXTable(path)
	default:
		return nil, fmt.Errorf("unsupported file extension %s for %s (csv or xlsx expected)", ext, path)
	}
}

func readCSVTable(path string) (*table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return parseCSV(path, file)
}

func parseCSV(source string, r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s is empty", source)
		}
		return nil, fmt.Errorf("failed to read header from %s: %w", source, err)
	}

	t := &table{source: source, header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", source, err)
		}
		if isBlank(record) {
			continue
		}
		t.rows = append(t.rows, record)
	}
	return t, nil
}

// readXLSXTable reads the first sheet of an XLSX workbook.
func readXLSXTable(path string) (*table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file %s has no sheets", path)
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	t := &table{source: path}
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", path, err)
		}
		if t.header == nil {
			if isBlank(record) {
				continue
			}
			t.header = record
			continue
		}
		if isBlank(record) {
			continue
		}
		t.rows = append(t.rows, record)
	}

	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in %s: %w", path, err)
	}
	if t.header == nil {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return t, nil
}

// colIndex returns the first header column matching any of names, or -1.
func (t *table) colIndex(names ...string) int {
	targets := make(map[string]struct{}, len(names))
	for _, name := range names {
		targets[normalizeColumnName(name)] = struct{}{}
	}
	for i, h := range t.header {
		if _, ok := targets[normalizeColumnName(h)]; ok {
			return i
		}
	}
	return -1
}

func (t *table) requireCol(names ...string) (int, error) {
	idx := t.colIndex(names...)
	if idx < 0 {
		return -1, fmt.Errorf("%s: missing required column %q", t.source, names[0])
	}
	return idx, nil
}

// row gives typed access to one record. Line numbers are 1-based and count the header.
type row struct {
	record []string
	line   int
	source string
}

func (t *table) each(fn func(r row) error) error {
	for i, record := range t.rows {
		if err := fn(row{record: record, line: i + 2, source: t.source}); err != nil {
			return err
		}
	}
	return nil
}

func (r row) str(idx int) string {
	if idx < 0 || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

// float parses a numeric cell. Missing or empty cells are 0; thousands separators are dropped.
func (r row) float(idx int) (float64, error) {
	v := r.str(idx)
	if v == "" {
		return 0, nil
	}
	v = strings.ReplaceAll(v, ",", "")
	v = strings.TrimSuffix(v, "%")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s line %d: invalid number %q", r.source, r.line, r.str(idx))
	}
	return f, nil
}

func (r row) integer(idx int) (int, error) {
	f, err := r.float(idx)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
