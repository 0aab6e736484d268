// Package csvfile reads invoice input and download manifests from CSV files
// exported by spreadsheet tools.
package csvfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
)

// Ensure Reader implements both input ports.
var (
	_ driven.InvoiceReader  = (*Reader)(nil)
	_ driven.ManifestReader = (*Reader)(nil)
)

// Reader parses the CSV shapes the sync commands consume. It is stateless;
// one instance serves any number of files.
type Reader struct{}

// NewReader creates a CSV reader.
func NewReader() *Reader {
	return &Reader{}
}

// rowReader reads header-mapped CSV rows. It tolerates a UTF-8 BOM and
// variable field counts, the shape Excel and Sheets exports actually have.
type rowReader struct {
	csv     *csv.Reader
	columns map[string]int
	line    int
}

// row is one data row addressed by column name.
type row struct {
	line    int
	fields  []string
	columns map[string]int
}

// get returns the trimmed cell under a column, empty when the column is
// unknown or the row is short.
func (r row) get(column string) string {
	idx, ok := r.columns[column]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func newRowReader(r io.Reader) (*rowReader, error) {
	buf := bufio.NewReader(r)

	// Spreadsheet exports often open with a UTF-8 BOM
	if peek, err := buf.Peek(len(utf8BOM)); err == nil && bytes.Equal(peek, utf8BOM) {
		_, _ = buf.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(buf)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: file has no header row", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	return &rowReader{csv: cr, columns: columns, line: 1}, nil
}

// requireColumns verifies the header names the parser depends on.
func (r *rowReader) requireColumns(names ...string) error {
	for _, name := range names {
		if _, ok := r.columns[name]; !ok {
			return fmt.Errorf("%w: missing column %q", domain.ErrInvalidInput, name)
		}
	}
	return nil
}

// next returns the following data row; ok is false at end of input.
func (r *rowReader) next() (row, bool, error) {
	fields, err := r.csv.Read()
	if err == io.EOF {
		return row{}, false, nil
	}
	if err != nil {
		return row{}, false, fmt.Errorf("read row %d: %w", r.line+1, err)
	}
	r.line++
	return row{line: r.line, fields: fields, columns: r.columns}, true, nil
}
