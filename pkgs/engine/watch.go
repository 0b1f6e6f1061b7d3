package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/xtml-lang/xtml/pkgs/errors"
)

// debounceDelay coalesces the event bursts editors produce on save.
const debounceDelay = 100 * time.Millisecond

// Watch rebuilds path whenever it changes, until ctx is cancelled.
// onBuild receives the result of every rebuild, including the initial
// one; build failures are reported there and do not stop the watch.
func (e *Engine) Watch(ctx context.Context, path string, onBuild func(outputPath string, err error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrIO, "failed to create file watcher", err)
	}
	defer watcher.Close()

	// Watch the directory rather than the file: most editors replace the
	// file on save, which would drop a direct watch.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return errors.Wrap(errors.ErrIO, fmt.Sprintf("failed to watch %s", dir), err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrIO, fmt.Sprintf("failed to resolve %s", path), err)
	}

	onBuild(e.BuildToFile(path))

	var debounce *time.Timer
	rebuild := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !e.shouldRebuild(event, absPath) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})

		case <-rebuild:
			e.logf("Change detected, rebuilding %s", path)
			onBuild(e.BuildToFile(path))

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(e.logOut, "Error: watcher: %v\n", werr)
		}
	}
}

// shouldRebuild filters watcher noise: only writes, creates and renames
// of the watched file matter, and chmod-only events never do.
func (e *Engine) shouldRebuild(event fsnotify.Event, absPath string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	eventPath, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return eventPath == absPath
}
