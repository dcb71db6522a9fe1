package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
	"github.com/custodia-labs/llmprint/internal/logger"
)

// CorpusWriter persists generated documents and their metadata table.
// It is the only component that writes corpus files.
type CorpusWriter struct {
	sink driven.CorpusSink
	rows driven.RowWriterFactory
}

// NewCorpusWriter creates a corpus writer over sink, encoding metadata rows with rows.
func NewCorpusWriter(sink driven.CorpusSink, rows driven.RowWriterFactory) *CorpusWriter {
	return &CorpusWriter{sink: sink, rows: rows}
}

// Save writes every document and one metadata row per document.
//
// Documents are numbered by their position in docs, so the same input order
// into an empty location always yields the same file names. Each body is
// written before its metadata row, and rows are flushed as they go: an
// interrupted save leaves a metadata table describing exactly the files
// written before it.
func (w *CorpusWriter) Save(ctx context.Context, docs []domain.GeneratedDocument) (summary domain.CorpusSummary, err error) {
	summary = domain.CorpusSummary{
		Location:     w.sink.Location(),
		MetadataPath: w.sink.MetadataLocation(),
	}

	if err := w.sink.Prepare(ctx); err != nil {
		return summary, fmt.Errorf("prepare corpus: %w", err)
	}

	md, err := w.sink.OpenMetadata(ctx)
	if err != nil {
		return summary, fmt.Errorf("open metadata: %w", err)
	}
	defer func() {
		if closeErr := md.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close metadata: %w", closeErr)
		}
	}()

	rows := w.rows(md)
	if err := rows.WriteRow(domain.MetadataColumns()); err != nil {
		return summary, fmt.Errorf("write metadata header: %w", err)
	}

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		row := domain.MetadataRow{
			DocID:  domain.DocFileName(doc.Model, doc.Genre, i),
			Model:  doc.Model,
			Genre:  doc.Genre,
			Prompt: doc.Prompt,
		}
		if err := w.sink.WriteDocument(ctx, row.DocID, doc.Text); err != nil {
			return summary, fmt.Errorf("write document %s: %w", row.DocID, err)
		}
		if err := rows.WriteRow(row.Values()); err != nil {
			return summary, fmt.Errorf("write metadata row %s: %w", row.DocID, err)
		}
		summary.Rows = append(summary.Rows, row)
	}

	logger.Info("Saved %d documents to %s", summary.Count(), summary.Location)
	return summary, nil
}
