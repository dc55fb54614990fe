package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// =============================================================================
// CSV PARSER
// =============================================================================
// Decodes raw file content into columns + rows. Pure transformation: the same
// bytes always produce the same ParsedFile. Ceilings are enforced before any
// row data is kept.

const (
	// MaxFileBytes is the hard ceiling on serialized file size.
	MaxFileBytes = 10 * 1024 * 1024 // 10MB
	// MaxDataRows is the hard ceiling on data rows (excluding the header).
	MaxDataRows = 10000
	// PreviewRows is how many rows the parse phase returns for display.
	PreviewRows = 10

	utf8BOM = "\xEF\xBB\xBF"
)

// ParseErrorCode identifies a file-level rejection.
type ParseErrorCode string

const (
	ParseErrFileTooLarge    ParseErrorCode = "file_too_large"
	ParseErrTooManyRows     ParseErrorCode = "too_many_rows"
	ParseErrEmptyFile       ParseErrorCode = "empty_file"
	ParseErrNoColumns       ParseErrorCode = "no_columns"
	ParseErrMalformedCSV    ParseErrorCode = "malformed_csv"
	ParseErrInvalidEncoding ParseErrorCode = "invalid_encoding"
)

// ParseError is a file-level rejection. Nothing is imported when one is
// returned.
type ParseError struct {
	Code    ParseErrorCode
	Message string
}

func (e *ParseError) Error() string { return e.Message }

func parseErrorf(code ParseErrorCode, format string, args ...interface{}) *ParseError {
	return &ParseError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Parse decodes CSV file content using header-row semantics: the first
// non-empty line supplies column names, every subsequent non-empty line is a
// data row. Headers and values are trimmed of surrounding whitespace.
func Parse(content, filename string) (*ParsedFile, error) {
	// Size is checked before anything else so an oversized file is rejected
	// even if it would also trip the row ceiling.
	if len(content) > MaxFileBytes {
		return nil, parseErrorf(ParseErrFileTooLarge,
			"file size %d bytes exceeds the %d byte limit", len(content), MaxFileBytes)
	}

	if !utf8.ValidString(content) {
		return nil, parseErrorf(ParseErrInvalidEncoding, "file is not valid UTF-8 text")
	}

	content = strings.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var columns []string
	var rows []ParsedRow

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseErrorf(ParseErrMalformedCSV, "malformed CSV: %v", err)
		}

		if columns == nil {
			// encoding/csv drops fully empty lines, so the first record seen
			// is the header row. A row of empty cells is not a header.
			if isBlankRecord(record) {
				return nil, parseErrorf(ParseErrNoColumns, "header row has no column names")
			}
			columns = trimAll(record)
			continue
		}

		if isBlankRecord(record) {
			continue
		}

		if len(rows) >= MaxDataRows {
			return nil, parseErrorf(ParseErrTooManyRows,
				"file has more than %d data rows", MaxDataRows)
		}

		values := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(record) {
				values[col] = strings.TrimSpace(record[i])
			} else {
				values[col] = ""
			}
		}
		rows = append(rows, ParsedRow{Index: len(rows) + 1, Values: values})
	}

	if columns == nil {
		return nil, parseErrorf(ParseErrEmptyFile, "file is empty")
	}
	if len(rows) == 0 {
		return nil, parseErrorf(ParseErrEmptyFile, "file has a header but no data rows")
	}

	return &ParsedFile{
		Filename:  filename,
		Columns:   columns,
		Rows:      rows,
		TotalRows: len(rows),
	}, nil
}

// Preview returns the first PreviewRows rows for display after parsing.
func (f *ParsedFile) Preview() []ParsedRow {
	if len(f.Rows) <= PreviewRows {
		return f.Rows
	}
	return f.Rows[:PreviewRows]
}

func trimAll(record []string) []string {
	out := make([]string, len(record))
	for i, v := range record {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
