package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
)

// Ensure CorpusSink implements the interface.
var _ driven.CorpusSink = (*CorpusSink)(nil)

// CorpusSink keeps corpus files in memory.
type CorpusSink struct {
	mu       sync.RWMutex
	docs     map[string]string
	order    []string
	metadata bytes.Buffer

	// FailOn makes WriteDocument fail for the named document.
	FailOn string
}

// NewCorpusSink creates an empty in-memory corpus sink.
func NewCorpusSink() *CorpusSink {
	return &CorpusSink{docs: make(map[string]string)}
}

// Prepare is a no-op for the memory sink.
func (s *CorpusSink) Prepare(_ context.Context) error {
	return nil
}

// WriteDocument stores one text body under name.
func (s *CorpusSink) WriteDocument(_ context.Context, name, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailOn != "" && name == s.FailOn {
		return fmt.Errorf("write %s: disk full", name)
	}
	if _, ok := s.docs[name]; !ok {
		s.order = append(s.order, name)
	}
	s.docs[name] = text
	return nil
}

// OpenMetadata returns a writer appending to the in-memory metadata buffer.
func (s *CorpusSink) OpenMetadata(_ context.Context) (io.WriteCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata.Reset()
	return &metadataWriter{sink: s}, nil
}

// Location returns a pseudo location.
func (s *CorpusSink) Location() string {
	return ":memory:"
}

// MetadataLocation returns a pseudo location.
func (s *CorpusSink) MetadataLocation() string {
	return ":memory:/metadata.csv"
}

// Document returns the stored body for name.
func (s *CorpusSink) Document(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.docs[name]
	return text, ok
}

// Names returns document names in write order.
func (s *CorpusSink) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Metadata returns everything written to the metadata table.
func (s *CorpusSink) Metadata() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metadata.String()
}

type metadataWriter struct {
	sink *CorpusSink
}

func (w *metadataWriter) Write(p []byte) (int, error) {
	w.sink.mu.Lock()
	defer w.sink.mu.Unlock()
	return w.sink.metadata.Write(p)
}

func (w *metadataWriter) Close() error {
	return nil
}
