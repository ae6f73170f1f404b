package trace

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"zigcc/internal/logging"
)

// Follower reports records appended to a trace log after it was created.
type Follower struct {
	path    string
	watcher *fsnotify.Watcher
	offset  int64
	pending []byte
}

// NewFollower starts watching path. Only records written after this call
// are reported. The log does not need to exist yet.
func NewFollower(path string) (*Follower, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory so creation of the log is seen too.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	f := &Follower{path: abs, watcher: watcher}
	if info, err := os.Stat(abs); err == nil {
		f.offset = info.Size()
	}
	return f, nil
}

// Run calls fn for each new record until ctx is done or the watcher fails.
// The watcher is closed when Run returns.
func (f *Follower) Run(ctx context.Context, fn func(Record)) error {
	defer f.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-f.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := f.drain(fn); err != nil {
				return err
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", f.path, err)
		}
	}
}

func (f *Follower) drain(fn func(Record)) error {
	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < f.offset {
		logging.TraceDebug("%s truncated; reading from start", f.path)
		f.offset = 0
		f.pending = nil
	}
	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return err
	}
	chunk, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	f.offset += int64(len(chunk))
	f.pending = append(f.pending, chunk...)

	records, n, err := parseComplete(f.pending)
	for _, rec := range records {
		fn(rec)
	}
	f.pending = f.pending[n:]
	if err != nil {
		// Skip the damaged tail and resynchronise on the next record.
		logging.TraceError("skipping unreadable trace data in %s: %v", f.path, err)
		f.pending = nil
	}
	return nil
}

// Follow reports records appended to path until ctx is done.
func Follow(ctx context.Context, path string, fn func(Record)) error {
	f, err := NewFollower(path)
	if err != nil {
		return err
	}
	return f.Run(ctx, fn)
}
