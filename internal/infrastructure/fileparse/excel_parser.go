package fileparse

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelParser streams rows from the first sheet of an xlsx workbook
type ExcelParser struct {
	file       *excelize.File
	rows       *excelize.Rows
	headers    []string
	currentRow int
}

// NewExcelParser opens a workbook from a reader
func NewExcelParser(r io.Reader) (*ExcelParser, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheet := f.GetSheetName(0)
	if sheet == "" {
		_ = f.Close()
		return nil, ErrEmptyFile
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return &ExcelParser{file: f, rows: rows}, nil
}

// ParseHeader reads the first row of the sheet as the header row
func (p *ExcelParser) ParseHeader() error {
	if !p.rows.Next() {
		return ErrMissingHeader
	}
	record, err := p.rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		p.headers[i] = strings.TrimSpace(h)
	}
	if len(p.headers) == 0 {
		return ErrMissingHeader
	}

	p.currentRow = 1
	return nil
}

// Headers returns the parsed header names
func (p *ExcelParser) Headers() []string {
	return p.headers
}

// ReadRow reads the next data row. Returns io.EOF after the last row.
func (p *ExcelParser) ReadRow() (*Row, error) {
	if !p.rows.Next() {
		if err := p.rows.Error(); err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", p.currentRow+1, err)
		}
		return nil, io.EOF
	}

	record, err := p.rows.Columns()
	if err != nil {
		p.currentRow++
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}

	p.currentRow++

	row := &Row{
		LineNumber: p.currentRow,
		Data:       make(map[string]string, len(p.headers)),
	}
	for i, header := range p.headers {
		if i < len(record) {
			row.Data[header] = NormalizeCellValue(record[i])
		} else {
			row.Data[header] = ""
		}
	}
	return row, nil
}

// Close releases the row iterator and the workbook
func (p *ExcelParser) Close() error {
	if p.rows != nil {
		_ = p.rows.Close()
	}
	return p.file.Close()
}

// NormalizeCellValue renders numeric cells the way an operator reads
// them: spreadsheets store every number as a float, so serial numbers
// and IMEIs arrive as "123456789.0" or in scientific notation. Values
// that parse as an integral float are rendered without a decimal point.
// Plain digit strings pass through untouched.
func NormalizeCellValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	// only rewrite values that actually carry float syntax
	if !strings.ContainsAny(value, ".eE") {
		return value
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	if f != math.Trunc(f) || math.Abs(f) >= 1e15 {
		return value
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
