// Package command runs an external stylometric feature extractor.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
	"github.com/custodia-labs/llmprint/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.FeatureExtractor = (*Extractor)(nil)

// Command line placeholders.
const (
	InputPlaceholder  = "{input}"
	OutputPlaceholder = "{output}"
)

// DefaultTimeout bounds a single extractor run.
const DefaultTimeout = 30 * time.Minute

// waitDelay bounds how long output pipes are drained after the process is killed.
const waitDelay = 5 * time.Second

// maxStderr caps how much extractor stderr is kept for error messages.
const maxStderr = 4096

// Config holds extractor settings.
type Config struct {
	// Command is the command line. {input} is replaced by the corpus
	// directory and {output} by the feature table path. Arguments are split
	// on whitespace before substitution, so paths with spaces stay intact;
	// quoting is not interpreted.
	//
	// Without {output} the command's stdout is written to the feature table.
	Command string

	// Timeout bounds the run (default 30m).
	Timeout time.Duration
}

// Extractor runs the configured command.
type Extractor struct {
	args    []string
	timeout time.Duration
}

// NewExtractor validates cfg and creates an extractor.
func NewExtractor(cfg Config) (*Extractor, error) {
	args := strings.Fields(cfg.Command)
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: extractor command is empty", domain.ErrInvalidInput)
	}
	if !strings.Contains(cfg.Command, InputPlaceholder) {
		return nil, fmt.Errorf("%w: extractor command must contain %s", domain.ErrInvalidInput, InputPlaceholder)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Extractor{args: args, timeout: timeout}, nil
}

// Extract runs the command over corpusDir and checks outputPath was produced.
func (e *Extractor) Extract(ctx context.Context, corpusDir, outputPath string) (err error) {
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args, usesOutput := e.expand(corpusDir, outputPath)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.WaitDelay = waitDelay

	var stderr bytes.Buffer
	cmd.Stderr = &limitedWriter{w: &stderr, n: maxStderr}

	var stdout *os.File
	if usesOutput {
		cmd.Stdout = &logWriter{}
	} else {
		stdout, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outputPath, err)
		}
		defer func() {
			if closeErr := stdout.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		cmd.Stdout = stdout
	}

	logger.Debug("running feature extractor: %s", strings.Join(args, " "))
	start := time.Now()
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("feature extractor timed out after %s", e.timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("feature extractor: %w", err)
		}
		return fmt.Errorf("feature extractor: %w: %s", err, msg)
	}
	logger.Since("feature extraction", start)

	if usesOutput {
		if _, err := os.Stat(outputPath); err != nil {
			return fmt.Errorf("feature extractor produced no output: %w",
				&domain.MissingInputError{Path: outputPath, Err: err})
		}
	}
	return nil
}

// expand substitutes the placeholders in every argument.
func (e *Extractor) expand(corpusDir, outputPath string) ([]string, bool) {
	usesOutput := false
	args := make([]string, len(e.args))
	for i, arg := range e.args {
		if strings.Contains(arg, OutputPlaceholder) {
			usesOutput = true
		}
		arg = strings.ReplaceAll(arg, InputPlaceholder, corpusDir)
		args[i] = strings.ReplaceAll(arg, OutputPlaceholder, outputPath)
	}
	return args, usesOutput
}

// logWriter forwards extractor stdout to the debug log line by line.
type logWriter struct {
	buf bytes.Buffer
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		logger.Debug("extractor: %s", strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

// limitedWriter keeps at most n bytes and discards the rest.
type limitedWriter struct {
	w io.Writer
	n int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	size := len(p)
	if l.n <= 0 {
		return size, nil
	}
	if len(p) > l.n {
		p = p[:l.n]
	}
	n, err := l.w.Write(p)
	l.n -= n
	if err != nil {
		return n, err
	}
	return size, nil
}
