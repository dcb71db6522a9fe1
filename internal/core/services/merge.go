package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
	"github.com/custodia-labs/llmprint/internal/core/ports/driving"
	"github.com/custodia-labs/llmprint/internal/logger"
)

// Ensure MergeService implements the interface.
var _ driving.MergeService = (*MergeService)(nil)

// Suffixes appended to non-key columns present in both tables.
const (
	leftSuffix  = "_x"
	rightSuffix = "_y"
)

// MergeService joins corpus metadata with a feature table.
type MergeService struct {
	reader driven.TableReader
	writer driven.TableWriter
}

// NewMergeService creates a merge service.
func NewMergeService(reader driven.TableReader, writer driven.TableWriter) *MergeService {
	return &MergeService{reader: reader, writer: writer}
}

// Merge inner-joins the metadata table with the feature table on the
// normalised doc_id.
//
// A feature table without a doc_id column is keyed on its first column.
// The output holds every metadata column followed by every feature column
// except the key; doc_id values are normalised. Metadata order is kept,
// rows without a counterpart are dropped and duplicate keys yield one row
// per matching pair.
func (s *MergeService) Merge(ctx context.Context, metadataPath, featuresPath string) (*domain.Table, error) {
	defer logger.Since("merge", time.Now())

	metadata, err := s.load(metadataPath, "metadata")
	if err != nil {
		return nil, err
	}
	features, err := s.load(featuresPath, "feature")
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	leftKey := metadata.ColumnIndex(domain.ColumnDocID)
	if leftKey < 0 {
		return nil, fmt.Errorf("%w: metadata table %s has no %s column",
			domain.ErrInvalidInput, metadataPath, domain.ColumnDocID)
	}
	rightKey := features.ColumnIndex(domain.ColumnDocID)
	if rightKey < 0 {
		logger.Debug("feature table %s has no %s column, keying on %q",
			featuresPath, domain.ColumnDocID, features.Columns[0])
		rightKey = 0
	}

	merged := Join(metadata, leftKey, features, rightKey)
	logger.Info("Merged %d of %d metadata rows with %d feature rows",
		merged.Len(), metadata.Len(), features.Len())
	return merged, nil
}

// Export writes a merged table to path.
func (s *MergeService) Export(table *domain.Table, path string) error {
	if err := s.writer.WriteTable(path, table); err != nil {
		return fmt.Errorf("export merged table: %w", err)
	}
	return nil
}

func (s *MergeService) load(path, kind string) (*domain.Table, error) {
	table, err := s.reader.ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("load %s table: %w", kind, err)
	}
	if table.Len() == 0 || len(table.Columns) == 0 {
		return nil, fmt.Errorf("%w: %s table %s is empty", domain.ErrNoDocuments, kind, path)
	}
	return table, nil
}

// Join inner-joins left and right on their key columns, comparing keys with
// domain.NormaliseDocID. The output key column is named doc_id, sits where
// the left key was and holds normalised values.
func Join(left *domain.Table, leftKey int, right *domain.Table, rightKey int) *domain.Table {
	byKey := make(map[string][]int, right.Len())
	for i, row := range right.Rows {
		k := domain.NormaliseDocID(row[rightKey])
		byKey[k] = append(byKey[k], i)
	}

	rightCols := make([]int, 0, len(right.Columns))
	for i := range right.Columns {
		if i != rightKey {
			rightCols = append(rightCols, i)
		}
	}

	columns := joinColumns(left, leftKey, right, rightCols)
	out := &domain.Table{Columns: columns}

	for _, lrow := range left.Rows {
		k := domain.NormaliseDocID(lrow[leftKey])
		for _, ri := range byKey[k] {
			row := make([]string, 0, len(columns))
			for i, v := range lrow {
				if i == leftKey {
					v = k
				}
				row = append(row, v)
			}
			for _, c := range rightCols {
				row = append(row, right.Rows[ri][c])
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

func joinColumns(left *domain.Table, leftKey int, right *domain.Table, rightCols []int) []string {
	leftNames := make(map[string]bool, len(left.Columns))
	for i, c := range left.Columns {
		if i != leftKey {
			leftNames[c] = true
		}
	}
	rightNames := make(map[string]bool, len(rightCols))
	for _, i := range rightCols {
		rightNames[right.Columns[i]] = true
	}

	columns := make([]string, 0, len(left.Columns)+len(rightCols))
	for i, c := range left.Columns {
		switch {
		case i == leftKey:
			c = domain.ColumnDocID
		case rightNames[c]:
			c += leftSuffix
		}
		columns = append(columns, c)
	}
	for _, i := range rightCols {
		c := right.Columns[i]
		if leftNames[c] {
			c += rightSuffix
		}
		columns = append(columns, c)
	}
	return columns
}
