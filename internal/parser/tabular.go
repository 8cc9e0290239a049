// Package parser decodes price-list attachments into rows of named string
// fields and maps those rows onto normalized price records.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for attachments whose extension is neither
// CSV nor a spreadsheet. Callers skip the attachment and move on.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Row is one parsed line keyed by normalized column name. All values are
// strings; no type inference happens at this layer.
type Row map[string]string

// ParseFile picks a decoder by file extension. Column names are trimmed and
// lower-cased so downstream lookups are case-insensitive by construction.
func ParseFile(data []byte, filename string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(data)
	case ".xlsx":
		return parseSpreadsheet(data)
	case ".xls":
		return parseLegacyWorkbook(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

func parseCSV(data []byte) ([]Row, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := normalizeColumns(header)

	var rows []Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rows = append(rows, makeRow(cols, record))
	}
	return rows, nil
}

func parseSpreadsheet(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	cols := normalizeColumns(cells[0])
	rows := make([]Row, 0, len(cells)-1)
	for _, record := range cells[1:] {
		rows = append(rows, makeRow(cols, record))
	}
	return rows, nil
}

// parseLegacyWorkbook handles the pre-2007 BIFF format, which excelize cannot
// open. Some suppliers still export price lists as .xls.
func parseLegacyWorkbook(data []byte) ([]Row, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls workbook: %w", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}
	header := sheet.Row(0)
	if header == nil {
		return nil, nil
	}

	ncols := header.LastCol()
	names := make([]string, ncols)
	for c := header.FirstCol(); c < ncols; c++ {
		names[c] = header.Col(c)
	}
	cols := normalizeColumns(names)

	var rows []Row
	for i := 1; i <= int(sheet.MaxRow); i++ {
		r := sheet.Row(i)
		if r == nil {
			continue
		}
		record := make([]string, ncols)
		last := r.LastCol()
		if last > ncols {
			last = ncols
		}
		for c := r.FirstCol(); c < last; c++ {
			record[c] = r.Col(c)
		}
		rows = append(rows, makeRow(cols, record))
	}
	return rows, nil
}

func normalizeColumns(header []string) []string {
	cols := make([]string, len(header))
	for i, c := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(c))
	}
	return cols
}

func makeRow(cols, record []string) Row {
	row := make(Row, len(cols))
	for i, col := range cols {
		if col == "" {
			continue
		}
		if i < len(record) {
			row[col] = record[i]
		} else {
			row[col] = ""
		}
	}
	return row
}
