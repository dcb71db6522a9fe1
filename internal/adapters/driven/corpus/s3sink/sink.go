// Package s3sink writes the corpus to an S3 bucket.
package s3sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.CorpusSink = (*Sink)(nil)

const (
	textContentType = "text/plain; charset=utf-8"
	csvContentType  = "text/csv; charset=utf-8"

	// MetadataObject is the object name of the metadata table under the prefix.
	MetadataObject = "metadata.csv"

	// DefaultCheckpointRows is how many metadata rows are buffered between uploads.
	DefaultCheckpointRows = 25
)

// ObjectPutter is the subset of the S3 client used by the sink.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds S3 sink settings.
type Config struct {
	Bucket string
	Region string
	Prefix string

	// Endpoint overrides the S3 endpoint (S3-compatible stores use path-style addressing).
	Endpoint string

	// AccessKey and SecretKey are optional static credentials.
	AccessKey string
	SecretKey string

	// CheckpointRows is the number of metadata rows between uploads of the
	// table so far (default: 25).
	CheckpointRows int
}

// Sink stores each document as an object under Prefix.
//
// S3 objects cannot be appended to, so the metadata table is buffered and
// the whole table so far is re-uploaded every CheckpointRows rows and again
// on Close. After a crash the metadata object may lag the documents by up
// to CheckpointRows-1 rows.
type Sink struct {
	client         ObjectPutter
	bucket         string
	prefix         string
	checkpointRows int
}

// NewSink creates an S3 sink using the default AWS configuration chain.
func NewSink(ctx context.Context, cfg Config) (*Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 sink: bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	sink := NewSinkWithClient(client, cfg.Bucket, cfg.Prefix)
	if cfg.CheckpointRows > 0 {
		sink.checkpointRows = cfg.CheckpointRows
	}
	return sink, nil
}

// NewSinkWithClient creates an S3 sink over an existing client.
func NewSinkWithClient(client ObjectPutter, bucket, prefix string) *Sink {
	return &Sink{
		client:         client,
		bucket:         bucket,
		prefix:         strings.Trim(prefix, "/"),
		checkpointRows: DefaultCheckpointRows,
	}
}

// Prepare is a no-op: buckets are not created on demand.
func (s *Sink) Prepare(_ context.Context) error {
	return nil
}

// WriteDocument uploads text as bucket/prefix/name.
func (s *Sink) WriteDocument(ctx context.Context, name, text string) error {
	return s.put(ctx, s.key(name), []byte(text), textContentType)
}

// OpenMetadata returns a writer that uploads the metadata table at every
// checkpoint and on Close.
func (s *Sink) OpenMetadata(ctx context.Context) (io.WriteCloser, error) {
	return &objectWriter{ctx: ctx, sink: s, key: s.key(MetadataObject)}, nil
}

// Location returns the s3:// URI of the corpus prefix.
func (s *Sink) Location() string {
	if s.prefix == "" {
		return fmt.Sprintf("s3://%s", s.bucket)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.prefix)
}

// MetadataLocation returns the s3:// URI of the metadata table.
func (s *Sink) MetadataLocation() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key(MetadataObject))
}

func (s *Sink) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *Sink) put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

type objectWriter struct {
	ctx     context.Context
	sink    *Sink
	key     string
	buf     bytes.Buffer
	pending int
	closed  bool
}

func (w *objectWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("write to closed metadata writer")
	}
	n, _ := w.buf.Write(p)

	// Rows arrive as flushed CSV records, so a write ending in a newline
	// closes a row.
	if !bytes.HasSuffix(p, []byte{'\n'}) {
		return n, nil
	}
	w.pending++
	if w.pending >= w.sink.checkpointRows {
		if err := w.sink.put(w.ctx, w.key, w.buf.Bytes(), csvContentType); err != nil {
			return n, err
		}
		w.pending = 0
	}
	return n, nil
}

func (w *objectWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.sink.put(w.ctx, w.key, w.buf.Bytes(), csvContentType)
}
