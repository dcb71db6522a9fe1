// Package watch waits for files produced by external tools.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/logger"
)

// DefaultSettle is how long a file must stay unchanged before it counts as written.
const DefaultSettle = 500 * time.Millisecond

// Options tunes WaitForFile.
type Options struct {
	// Timeout bounds the wait. Zero waits until ctx is done.
	Timeout time.Duration

	// Settle is the quiet period after the last write (default 500ms).
	Settle time.Duration
}

// WaitForFile blocks until path exists, is non-empty and has not been
// written to for the settle period. It returns immediately when the file
// is already there. A timeout yields a *domain.MissingInputError.
func WaitForFile(ctx context.Context, path string, opts Options) error {
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	if ready(path) {
		return nil
	}

	dir := filepath.Dir(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return &domain.MissingInputError{Path: dir, Err: err}
	}

	// The file may have appeared between the first check and Add
	if ready(path) {
		return nil
	}

	logger.Info("Waiting for %s", path)
	target := filepath.Clean(path)
	settle := time.NewTimer(opts.Settle)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return &domain.MissingInputError{Path: path, Err: fmt.Errorf("not written within %s", opts.Timeout)}
			}
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				logger.Debug("watch: %s", event)
				settle.Reset(opts.Settle)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			logger.Warn("watch error: %v", err)

		case <-settle.C:
			if ready(path) {
				return nil
			}
		}
	}
}

func ready(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}
