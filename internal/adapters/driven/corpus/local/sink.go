// Package local writes the corpus to a directory on disk.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.CorpusSink = (*Sink)(nil)

// Sink writes one text file per document into Dir and the metadata table
// to MetadataPath.
type Sink struct {
	dir          string
	metadataPath string
}

// NewSink creates a local corpus sink.
func NewSink(dir, metadataPath string) *Sink {
	return &Sink{dir: dir, metadataPath: metadataPath}
}

// Prepare creates the corpus directory and the metadata table's directory.
func (s *Sink) Prepare(_ context.Context) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create corpus directory: %w", err)
	}
	if dir := filepath.Dir(s.metadataPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create metadata directory: %w", err)
		}
	}
	return nil
}

// WriteDocument writes text to Dir/name as UTF-8.
func (s *Sink) WriteDocument(_ context.Context, name, text string) error {
	if name != filepath.Base(name) {
		return fmt.Errorf("document name %q is not a plain file name", name)
	}
	return os.WriteFile(filepath.Join(s.dir, name), []byte(text), 0644)
}

// OpenMetadata truncates and opens the metadata table.
func (s *Sink) OpenMetadata(_ context.Context) (io.WriteCloser, error) {
	return os.Create(s.metadataPath)
}

// Location returns the corpus directory.
func (s *Sink) Location() string {
	return s.dir
}

// MetadataLocation returns the metadata table path.
func (s *Sink) MetadataLocation() string {
	return s.metadataPath
}
