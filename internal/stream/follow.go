package stream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"allure-reporter/pkg/logging"
)

// DefaultPollInterval is how often Follow re-reads the file when no
// filesystem event arrives. Some filesystems (network mounts, some
// containers) never deliver write events.
const DefaultPollInterval = 500 * time.Millisecond

// FollowOptions tune Follow.
type FollowOptions struct {
	PollInterval time.Duration
	// OnNotification is called after each handled notification.
	OnNotification func(handled int)
}

type tail struct {
	path    string
	file    *os.File
	pending []byte
	handled int
	line    int
	opts    FollowOptions
}

// Follow tails the stream file at path, feeding complete lines to h, until a
// run_end notification has been handled or ctx is done. The file does not
// have to exist yet. It returns the number of handled notifications.
func Follow(ctx context.Context, path string, h Handler, opts FollowOptions) (int, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return 0, fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return 0, fmt.Errorf("watching %s: %w", dir, err)
	}
	logging.Info(subsystem, "Following %s", path)

	t := &tail{path: path, opts: opts}
	defer t.close()

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		done, err := t.drain(h)
		if err != nil || done {
			return t.handled, err
		}

		select {
		case <-ctx.Done():
			return t.handled, ctx.Err()
		case <-ticker.C:
		case event, ok := <-watcher.Events:
			if !ok {
				return t.handled, errors.New("file watcher closed")
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				if t.file != nil {
					return t.handled, fmt.Errorf("stream file %s was removed before run end", path)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return t.handled, errors.New("file watcher closed")
			}
			logging.Error(subsystem, err, "File watcher error")
		}
	}
}

func (t *tail) close() {
	if t.file != nil {
		t.file.Close()
	}
}

// drain reads whatever has been appended and handles complete lines. It
// reports done once run_end was handled.
func (t *tail) drain(h Handler) (bool, error) {
	if t.file == nil {
		f, err := os.Open(t.path)
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("opening stream %s: %w", t.path, err)
		}
		t.file = f
	}

	buf := make([]byte, 32*1024)
	for {
		n, err := t.file.Read(buf)
		t.pending = append(t.pending, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return false, fmt.Errorf("reading stream %s: %w", t.path, err)
		}
		if n == 0 {
			break
		}
	}

	for {
		i := bytes.IndexByte(t.pending, '\n')
		if i < 0 {
			return false, nil
		}
		line := t.pending[:i]
		t.pending = t.pending[i+1:]
		t.line++

		n, ok, err := parseLine(line)
		if err != nil {
			return false, fmt.Errorf("line %d: %w", t.line, err)
		}
		if !ok {
			continue
		}
		accepted, err := dispatch(h, n, t.line)
		if err != nil {
			return false, err
		}
		if accepted {
			t.handled++
			if t.opts.OnNotification != nil {
				t.opts.OnNotification(t.handled)
			}
		}
		if isRunEnd(n) {
			return true, nil
		}
	}
}
