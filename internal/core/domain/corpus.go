package domain

import (
	"fmt"
	"strings"
)

// DocExtension is the suffix of every corpus text file.
const DocExtension = ".txt"

// Metadata table column names.
const (
	ColumnDocID  = "doc_id"
	ColumnModel  = "model"
	ColumnGenre  = "genre"
	ColumnPrompt = "prompt"
)

// MetadataColumns is the header of the corpus metadata table.
func MetadataColumns() []string {
	return []string{ColumnDocID, ColumnModel, ColumnGenre, ColumnPrompt}
}

// MetadataRow describes one persisted document.
type MetadataRow struct {
	DocID  string
	Model  string
	Genre  string
	Prompt string
}

// Values returns the row in MetadataColumns order.
func (r MetadataRow) Values() []string {
	return []string{r.DocID, r.Model, r.Genre, r.Prompt}
}

// CorpusSummary reports the outcome of a persistence call.
type CorpusSummary struct {
	// Location is where documents were written (directory or bucket URI).
	Location string

	// MetadataPath is where the metadata table was written.
	MetadataPath string

	// Rows holds one entry per saved document, in order.
	Rows []MetadataRow
}

// Count returns the number of documents saved.
func (s CorpusSummary) Count() int {
	return len(s.Rows)
}

var pathReplacer = strings.NewReplacer("/", "_", "\\", "_", " ", "_")

// DocFileName builds the file name for the index-th document of a corpus.
// The same inputs always produce the same name.
func DocFileName(model, genre string, index int) string {
	return fmt.Sprintf("%s_%s_%03d%s",
		pathReplacer.Replace(model), pathReplacer.Replace(genre), index, DocExtension)
}

// NormaliseDocID returns the join key for a raw doc_id value.
// Surrounding whitespace and the DocExtension suffix are removed; the
// comparison stays case-sensitive.
func NormaliseDocID(raw string) string {
	id := strings.TrimSpace(raw)
	id = strings.TrimSuffix(id, DocExtension)
	return strings.TrimSpace(id)
}
