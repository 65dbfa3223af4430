// FILE: lixenwraith/settings/watch.go
package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"
)

// ChangeKind classifies a Change.
type ChangeKind int

const (
	// ChangeSet indicates a key was added or its value modified.
	ChangeSet ChangeKind = iota

	// ChangeDelete indicates a key disappeared from the file.
	ChangeDelete

	// ChangeError indicates a reload failed; Err holds the cause.
	ChangeError
)

// String returns the change kind name.
func (k ChangeKind) String() string {
	switch k {
	case ChangeSet:
		return "set"
	case ChangeDelete:
		return "delete"
	case ChangeError:
		return "error"
	default:
		return "unknown"
	}
}

// Change reports an external modification of the backing file.
type Change struct {
	// Key is the dotted leaf path; empty for ChangeError.
	Key string
	Kind ChangeKind
	Err  error
}

// WatchOptions configures file watching behavior.
type WatchOptions struct {
	// PollInterval for file stat checks (minimum MinPollInterval)
	PollInterval time.Duration

	// Debounce is how long the file must stay unchanged before reloading
	Debounce time.Duration

	// Buffer is the channel capacity
	Buffer int
}

// DefaultWatchOptions returns sensible defaults for file watching.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		PollInterval: DefaultPollInterval,
		Debounce:     DefaultDebounce,
		Buffer:       DefaultWatchBuffer,
	}
}

// fileState is what the poller compares between ticks.
type fileState struct {
	exists  bool
	modTime time.Time
	size    int64
}

func statFile(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileState{}, nil
		}
		return fileState{}, err
	}
	return fileState{exists: true, modTime: info.ModTime(), size: info.Size()}, nil
}

// Watch polls the backing file and reloads it when it changes on disk,
// emitting one Change per added, modified or removed leaf key. The channel
// is closed when ctx is done. Writes made through this Store do not produce
// changes since the reloaded document already matches memory.
func (s *Store) Watch(ctx context.Context, opts WatchOptions) (<-chan Change, error) {
	if s.opts.RAMOnly {
		return nil, fmt.Errorf("%w: cannot watch a RAM only store", ErrConflictingOptions)
	}
	if opts.PollInterval < MinPollInterval {
		opts.PollInterval = MinPollInterval
	}
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultWatchBuffer
	}

	initial, err := statFile(s.opts.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat settings file '%s': %w", ErrStorage, s.opts.FilePath, err)
	}

	ch := make(chan Change, opts.Buffer)
	go s.watchLoop(ctx, opts, initial, ch)
	return ch, nil
}

// watchLoop is the main file watching loop.
func (s *Store) watchLoop(ctx context.Context, opts WatchOptions, last fileState, ch chan<- Change) {
	defer close(ch)

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	pending := false
	var changedAt time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		current, err := statFile(s.opts.FilePath)
		if err != nil {
			if !s.emit(ctx, ch, Change{Kind: ChangeError, Err: fmt.Errorf("%w: %w", ErrStorage, err)}) {
				return
			}
			continue
		}

		if current != last {
			last = current
			pending = true
			changedAt = time.Now()
			continue
		}

		if !pending || time.Since(changedAt) < opts.Debounce {
			continue
		}
		pending = false

		changes := s.reloadAndDiff()
		for _, change := range changes {
			if !s.emit(ctx, ch, change) {
				return
			}
		}

		// The reload may have written the file back (defaults, metadata)
		if current, err := statFile(s.opts.FilePath); err == nil {
			last = current
		}
	}
}

// reloadAndDiff reloads the document under the store lock and returns the
// leaf-level differences in key order.
func (s *Store) reloadAndDiff() []Change {
	s.mu.Lock()
	before := flattenDocument(userView(s.doc), "")
	err := s.load()
	after := flattenDocument(userView(s.doc), "")
	s.mu.Unlock()

	if err != nil {
		s.logger.Debug("watch reload failed", "path", s.opts.FilePath, "error", err)
		return []Change{{Kind: ChangeError, Err: err}}
	}

	var changes []Change
	for _, key := range sortedKeys(after) {
		if old, existed := before[key]; !existed || !reflect.DeepEqual(old, after[key]) {
			changes = append(changes, Change{Key: key, Kind: ChangeSet})
		}
	}
	for _, key := range sortedKeys(before) {
		if _, exists := after[key]; !exists {
			changes = append(changes, Change{Key: key, Kind: ChangeDelete})
		}
	}

	s.logger.Debug("watch reload", "path", s.opts.FilePath, "changes", len(changes))
	return changes
}

func (s *Store) emit(ctx context.Context, ch chan<- Change, change Change) bool {
	select {
	case ch <- change:
		return true
	case <-ctx.Done():
		return false
	}
}

// Watch reports external modifications of the backing file. See Store.Watch.
func (s *Settings) Watch(ctx context.Context, opts WatchOptions) (<-chan Change, error) {
	return s.store.Watch(ctx, opts)
}
