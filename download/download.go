// Package download streams the chunk events of a dispatch to disk
// with optional checksum validation and progress reporting.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/outpostkit/fetch"
	"github.com/outpostkit/fetch/transport"
)

// Stream writes the response body of an in-flight dispatch to
// destPath. Body data goes to a temp file in the same directory,
// which is renamed to destPath on success and removed on failure.
//
// When the dispatch has chunking enabled, bytes land on disk as they
// arrive; Stream registers itself as the dispatch's primary chunk
// consumer, so callers should not also consume chunks from r. With
// chunking disabled the full body is written once the dispatch
// settles.
func Stream(ctx context.Context, r *fetch.Result, destPath string, logger *slog.Logger, optFns ...Option) error {
	if destPath == "" {
		return errors.New("destPath must not be empty")
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return fmt.Errorf("applying option: %w", err)
		}
	}

	if opts.skipExisting {
		if _, err := os.Stat(destPath); err == nil {
			logger.Info("skipping existing file", "path", destPath)
			r.Cancel()
			return nil
		}
	}

	file, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-dl-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	var successful bool
	defer func() {
		if err := file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			logger.Error("defer closing temp file", "error", err)
		}
		if !successful {
			if err := os.Remove(file.Name()); err != nil {
				logger.Error("failed to remove temp file", "error", err)
			}
		}
	}()

	var writer io.Writer = file
	if opts.checksum != nil {
		writer = io.MultiWriter(writer, opts.checksum)
	}

	if opts.progress {
		writer = &progressWriter{
			w:         writer,
			logger:    logger,
			totalFn:   r.Transport().Total,
			startTime: time.Now(),
		}
	}

	// written and writeErr are touched only by the dispatch's driver
	// goroutine; settlement closes the done channel after the final
	// event, so reading them after Wait is race-free.
	var written int64
	var writeErr error
	r.OnProgress(func(ev transport.ProgressEvent, chunk []byte) {
		if writeErr != nil || len(chunk) == 0 {
			return
		}
		n, err := writer.Write(chunk)
		written += int64(n)
		if err != nil {
			writeErr = err
			r.Cancel()
		}
	})

	resp, err := r.Wait(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %w", ErrStreamCancelled, err)
		}
		return fmt.Errorf("waiting on dispatch: %w", err)
	}
	if writeErr != nil {
		return fmt.Errorf("writing chunk: %w", writeErr)
	}

	// Whatever the chunk stream did not cover: the whole body when
	// chunking was disabled, nothing when it was enabled.
	if written < int64(len(resp.Body)) {
		if _, err := writer.Write(resp.Body[written:]); err != nil {
			return fmt.Errorf("writing body remainder: %w", err)
		}
	}

	if err := opts.checksum.Verify(); err != nil {
		return err
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(file.Name(), destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	successful = true

	return nil
}
