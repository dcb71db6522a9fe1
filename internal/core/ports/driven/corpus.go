package driven

import (
	"context"
	"io"
)

// CorpusSink is the destination for corpus files.
// The local implementation writes a directory; others may write object storage.
type CorpusSink interface {
	// Prepare makes the sink ready for writes (e.g. creates the directory).
	Prepare(ctx context.Context) error

	// WriteDocument stores one text body under name.
	WriteDocument(ctx context.Context, name, text string) error

	// OpenMetadata returns a writer for the metadata table.
	// Content written is durable once Close returns.
	OpenMetadata(ctx context.Context) (io.WriteCloser, error)

	// Location describes where documents go (directory path or bucket URI).
	Location() string

	// MetadataLocation describes where the metadata table goes.
	MetadataLocation() string
}
