// Package logtail streams a SLURM output file to a writer while the job is
// writing it, including the window before the scheduler creates the file.
package logtail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// pollFallback bounds how long we wait for events before re-checking the
// file anyway. NFS mounts on cluster filesystems drop inotify events.
const pollFallback = 2 * time.Second

// Follow copies path to w as it grows, starting from the beginning, until
// ctx is cancelled. The file may not exist yet; Follow waits for it.
func Follow(ctx context.Context, path string, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("logtail: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("logtail: watch %s: %w", dir, err)
	}

	f, err := waitForFile(ctx, watcher, path)
	if err != nil {
		return err
	}
	defer f.Close()

	var offset int64
	for {
		n, err := io.Copy(w, f)
		offset += n
		if err != nil {
			return fmt.Errorf("logtail: read %s: %w", path, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-watcher.Events:
			if ev.Name == path && ev.Has(fsnotify.Remove|fsnotify.Rename) {
				return fmt.Errorf("logtail: %s removed", path)
			}
		case err := <-watcher.Errors:
			if err != nil {
				return fmt.Errorf("logtail: watch: %w", err)
			}
		case <-time.After(pollFallback):
		}
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return fmt.Errorf("logtail: seek %s: %w", path, err)
		}
	}
}

// waitForFile opens path, waiting for its creation when necessary.
func waitForFile(ctx context.Context, watcher *fsnotify.Watcher, path string) (*os.File, error) {
	for {
		f, err := os.Open(path)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("logtail: open %s: %w", path, err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("logtail: waiting for %s: %w", path, ctx.Err())
		case <-watcher.Events:
		case err := <-watcher.Errors:
			if err != nil {
				return nil, fmt.Errorf("logtail: watch: %w", err)
			}
		case <-time.After(pollFallback):
		}
	}
}

// Dump copies the current contents of path to w.
func Dump(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("logtail: open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("logtail: read %s: %w", path, err)
	}
	return nil
}
