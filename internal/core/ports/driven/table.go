package driven

import (
	"io"

	"github.com/custodia-labs/llmprint/internal/core/domain"
)

// TableReader loads a tabular file.
type TableReader interface {
	// ReadTable loads the table at path. A missing or unreadable path
	// yields a *domain.MissingInputError.
	ReadTable(path string) (*domain.Table, error)
}

// TableWriter writes tabular data.
type TableWriter interface {
	// WriteTable writes the whole table to path.
	WriteTable(path string, table *domain.Table) error
}

// RowWriter streams rows, flushing each one.
type RowWriter interface {
	// WriteRow writes one record and flushes it.
	WriteRow(values []string) error
}

// RowWriterFactory creates a RowWriter over w.
type RowWriterFactory func(w io.Writer) RowWriter
