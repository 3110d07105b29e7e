package fileparse

import (
	"bytes"
	"io"
	"strings"
)

// Row is one parsed data row: column values keyed by header name, plus
// the 1-indexed line or row number in the source file for error reports.
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Parser reads a supplier file header-first, then streams data rows.
// ReadRow returns io.EOF after the last row. Close releases any
// underlying resources.
type Parser interface {
	ParseHeader() error
	Headers() []string
	ReadRow() (*Row, error)
	Close() error
}

// FileType identifiers understood by NewParser
const (
	FileTypeCSV   = "csv"
	FileTypeExcel = "excel"
)

// NewParser picks a parser for the declared file type, with a sniff on
// the content as a fallback: files that start with the ZIP magic are
// treated as xlsx regardless of the declared type.
func NewParser(fileType string, data []byte) (Parser, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	switch strings.ToLower(strings.TrimSpace(fileType)) {
	case FileTypeExcel, "xlsx", "xls":
		return NewExcelParser(bytes.NewReader(data))
	case FileTypeCSV, "":
		if isZipContent(data) {
			return NewExcelParser(bytes.NewReader(data))
		}
		return NewCSVParser(bytes.NewReader(data), WithDelimiter(SniffDelimiter(data)))
	default:
		return nil, ErrUnsupportedFileType
	}
}

// SniffType guesses the file type from a file name and its content
func SniffType(fileName string, data []byte) string {
	name := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xls"):
		return FileTypeExcel
	case strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".txt"):
		return FileTypeCSV
	case isZipContent(data):
		return FileTypeExcel
	default:
		return FileTypeCSV
	}
}

func isZipContent(data []byte) bool {
	return len(data) >= 4 && data[0] == 'P' && data[1] == 'K' && data[2] == 0x03 && data[3] == 0x04
}

// ReadRows drains a parser into memory, skipping empty rows. Intended
// for small files like rule-analysis samples; imports stream instead.
func ReadRows(p Parser) ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
