// Package csvtable reads and writes domain tables as CSV files.
package csvtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
)

// Ensure Codec implements the interfaces.
var (
	_ driven.TableReader = (*Codec)(nil)
	_ driven.TableWriter = (*Codec)(nil)
)

// utf8BOM is stripped from the first header cell (spreadsheet exports add it).
const utf8BOM = "\uFEFF"

// Codec reads and writes CSV tables.
type Codec struct{}

// NewCodec creates a CSV table codec.
func NewCodec() *Codec {
	return &Codec{}
}

// ReadTable loads a CSV file whose first record is the header.
// Rows shorter than the header are padded with empty cells and longer rows
// are truncated, so every row has len(Columns) cells.
func (c *Codec) ReadTable(path string) (*domain.Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &domain.MissingInputError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &domain.MissingInputError{Path: path, Err: errors.New("is a directory")}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.MissingInputError{Path: path, Err: err}
	}
	defer f.Close()

	return Read(f)
}

// Read parses CSV content from r.
func Read(r io.Reader) (*domain.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &domain.Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := &domain.Table{Columns: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(table.Rows)+1, err)
		}
		table.Rows = append(table.Rows, fitRow(record, len(header)))
	}
	return table, nil
}

func fitRow(record []string, width int) []string {
	if len(record) == width {
		return record
	}
	row := make([]string, width)
	copy(row, record)
	return row
}

// WriteTable writes table to path, creating parent directories.
func (c *Codec) WriteTable(path string, table *domain.Table) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := Write(f, table); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes table as CSV to w.
func Write(w io.Writer, table *domain.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// rowWriter flushes after every record.
type rowWriter struct {
	w *csv.Writer
}

// NewRowWriter returns a driven.RowWriter writing CSV records to w.
func NewRowWriter(w io.Writer) driven.RowWriter {
	return &rowWriter{w: csv.NewWriter(w)}
}

// WriteRow writes one record and flushes it.
func (r *rowWriter) WriteRow(values []string) error {
	if err := r.w.Write(values); err != nil {
		return err
	}
	r.w.Flush()
	return r.w.Error()
}
