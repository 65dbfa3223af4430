// FILE: lixenwraith/settings/store.go
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Options configures a Store. It is copied at construction and never
// changes for the lifetime of the Store.
type Options struct {
	// Name identifies the settings set; must match ^[A-Za-z0-9_-]+$.
	Name string

	// Defaults is nil, a map (nested or dotted keys) or a struct with `toml` tags.
	Defaults any

	// FilePath is the backing file. Empty selects DefaultFilePath.
	// Must be empty when RAMOnly is set.
	FilePath string

	// RAMOnly keeps settings in memory only; nothing touches the filesystem.
	RAMOnly bool

	// AutoReload re-reads the backing file before every operation.
	AutoReload bool

	// ReadOnly rejects Set, Delete, Update and Reset with ErrReadOnly and
	// never writes the backing file.
	ReadOnly bool

	// SaveMetadata maintains the reserved metadata block.
	SaveMetadata bool

	// Codec encodes the backing file. Nil selects one from the file extension.
	Codec Codec

	// Logger receives debug records. Nil discards them.
	Logger *slog.Logger

	// now is the clock used for metadata timestamps; tests override it.
	now func() time.Time
}

// DefaultOptions returns the options used by New before functional options apply.
func DefaultOptions(name string) Options {
	return Options{
		Name:         name,
		AutoReload:   true,
		SaveMetadata: true,
	}
}

// Store owns the settings document and synchronizes it with the backing
// file. Every public method holds the store lock for its full duration,
// covering reload, mutation and write-back as one unit.
//
// The lock is per instance: two Stores on the same file, in one process or
// several, are not coordinated. AutoReload narrows the window for stale
// data but is last-writer-wins.
type Store struct {
	mu       sync.Mutex
	doc      Document
	defaults Document
	opts     Options
	codec    Codec
	logger   *slog.Logger
}

// NewStore validates opts, resolves the file path and loads the document,
// writing it back when defaults or metadata had to be filled in.
func NewStore(opts Options) (*Store, error) {
	if err := validateName(opts.Name); err != nil {
		return nil, err
	}
	if opts.RAMOnly && opts.FilePath != "" {
		return nil, fmt.Errorf("%w: cannot set a file path when RAM only is enabled", ErrConflictingOptions)
	}

	defaults, err := expandDefaults(opts.Defaults)
	if err != nil {
		return nil, fmt.Errorf("invalid defaults: %w", err)
	}
	if _, reserved := defaults[MetadataKey]; reserved {
		return nil, fmt.Errorf("invalid defaults: %w", keyError(MetadataKey, ErrReservedKey))
	}

	codec := opts.Codec
	if !opts.RAMOnly && opts.FilePath == "" {
		if codec == nil {
			codec = TOMLCodec{}
		}
		path, err := DefaultFilePath(opts.Name, codec.Extension())
		if err != nil {
			return nil, err
		}
		opts.FilePath = path
	}
	if codec == nil {
		codec = CodecForPath(opts.FilePath)
	}
	opts.Codec = codec

	if opts.now == nil {
		opts.now = time.Now
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Store{
		defaults: defaults,
		opts:     opts,
		codec:    codec,
		logger:   logger.With("settings", opts.Name),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Name returns the settings name.
func (s *Store) Name() string { return s.opts.Name }

// FilePath returns the backing file path; empty for RAM-only stores.
func (s *Store) FilePath() string { return s.opts.FilePath }

// ReadOnly reports whether mutations are rejected.
func (s *Store) ReadOnly() bool { return s.opts.ReadOnly }

// RAMOnly reports whether the store bypasses the filesystem.
func (s *Store) RAMOnly() bool { return s.opts.RAMOnly }

// AutoReload reports whether the file is re-read before every operation.
func (s *Store) AutoReload() bool { return s.opts.AutoReload }

// SaveMetadata reports whether the metadata block is maintained.
func (s *Store) SaveMetadata() bool { return s.opts.SaveMetadata }

// Codec returns the codec used for the backing file.
func (s *Store) Codec() Codec { return s.codec }

// Defaults returns a copy of the expanded defaults.
func (s *Store) Defaults() Document { return cloneDocument(s.defaults) }

func (s *Store) String() string {
	if s.opts.RAMOnly {
		return fmt.Sprintf("Settings `%s`. Stored in memory only", s.opts.Name)
	}
	return fmt.Sprintf("Settings `%s`. File stored at: %s", s.opts.Name, s.opts.FilePath)
}

// Load re-reads the backing file, merges defaults and writes back if
// anything was filled in. For RAM-only stores it is a no-op.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// load must be called with s.mu held.
func (s *Store) load() error {
	if s.opts.RAMOnly {
		if s.doc == nil {
			doc := cloneDocument(s.defaults)
			if s.opts.SaveMetadata {
				stampCreated(doc, s.opts.now())
			}
			s.doc = doc
		}
		return nil
	}

	candidate := make(Document)
	data, found, err := readFile(s.opts.FilePath)
	if err != nil {
		return err
	}
	if found {
		candidate, err = s.codec.Decode(data)
		if err != nil {
			return fmt.Errorf("failed to load settings file '%s': %w", s.opts.FilePath, err)
		}
	}

	merged, changed := MergeDefaults(candidate, s.defaults)
	created := false
	if s.opts.SaveMetadata {
		created = stampCreated(merged, s.opts.now())
	}

	if (changed || created) && !s.opts.ReadOnly {
		s.logger.Debug("writing back settings after load",
			"path", s.opts.FilePath, "defaults_added", changed, "metadata_created", created)
		if err := s.persist(merged); err != nil {
			return err
		}
	}

	s.doc = merged
	s.logger.Debug("settings loaded", "path", s.opts.FilePath, "file_found", found)
	return nil
}

// persist stamps the update time and writes doc to the backing file.
// Callers have already cleared the read-only check. Must be called with s.mu held.
func (s *Store) persist(doc Document) error {
	if s.opts.SaveMetadata {
		stampUpdated(doc, s.opts.now())
	}
	if s.opts.RAMOnly {
		return nil
	}

	data, err := s.codec.Encode(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err := atomicWriteFile(s.opts.FilePath, data); err != nil {
		return err
	}

	s.logger.Debug("settings persisted", "path", s.opts.FilePath, "bytes", len(data))
	return nil
}

// mutate applies fn to a copy of the document and commits the copy only
// after it was persisted, so a failed write leaves memory matching disk.
// Must be called with s.mu held.
func (s *Store) mutate(fn func(doc Document) error) error {
	next := cloneDocument(s.doc)
	if err := fn(next); err != nil {
		return err
	}
	if err := s.persist(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// parseUserKey parses key and rejects the reserved metadata block.
func parseUserKey(key string) (KeyPath, error) {
	path, err := ParseKey(key)
	if err != nil {
		return nil, err
	}
	if isReservedPath(path) {
		return nil, keyError(key, ErrReservedKey)
	}
	return path, nil
}

// refresh reloads the document when AutoReload is enabled.
func (s *Store) refresh() error {
	if s.opts.AutoReload {
		return s.load()
	}
	return nil
}

// Get returns a copy of the value at key, or ErrKeyNotFound.
func (s *Store) Get(key string) (any, error) {
	path, err := parseUserKey(key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return nil, err
	}
	value, err := getPath(s.doc, path)
	if err != nil {
		return nil, err
	}
	return cloneValue(value), nil
}

// GetOr returns the value at key, or fallback when the key is absent.
// Errors other than ErrKeyNotFound are still returned.
func (s *Store) GetOr(key string, fallback any) (any, error) {
	value, err := s.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return fallback, nil
	}
	return value, err
}

// Exists reports whether key resolves. A missing key is not an error.
func (s *Store) Exists(key string) (bool, error) {
	path, err := parseUserKey(key)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return false, err
	}
	return existsPath(s.doc, path), nil
}

// Set stores value at key and persists the document. Intermediate tables
// are created; a non-table intermediate value is replaced by a table.
func (s *Store) Set(key string, value any) error {
	if s.opts.ReadOnly {
		return ErrReadOnly
	}
	path, normalized, err := prepareSet(key, value)
	if err != nil {
		return err
	}
	return s.setValue(path, normalized)
}

// prepareSet parses key and normalizes value for setValue.
func prepareSet(key string, value any) (KeyPath, any, error) {
	path, err := parseUserKey(key)
	if err != nil {
		return nil, nil, err
	}
	normalized, err := normalizeValue(key, value)
	if err != nil {
		return nil, nil, err
	}
	return path, normalized, nil
}

// setValue stores a value already checked by prepareSet.
func (s *Store) setValue(path KeyPath, normalized any) error {
	if s.opts.ReadOnly {
		return ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return err
	}
	return s.mutate(func(doc Document) error {
		setPath(doc, path, normalized)
		return nil
	})
}

// Delete removes key and persists the document.
func (s *Store) Delete(key string) error {
	if s.opts.ReadOnly {
		return ErrReadOnly
	}
	path, err := parseUserKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return err
	}
	return s.mutate(func(doc Document) error {
		return deletePath(doc, path)
	})
}

// UpdateFunc computes a new value from the current one. found is false when
// the key is absent, in which case current is nil.
type UpdateFunc func(current any, found bool) (any, error)

// Update performs an atomic read-modify-write of key: no other operation on
// this Store can interleave between reading current and persisting the result.
// An error from fn aborts the update and is returned unchanged.
func (s *Store) Update(key string, fn UpdateFunc) error {
	if s.opts.ReadOnly {
		return ErrReadOnly
	}
	path, err := parseUserKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return err
	}

	current, err := getPath(s.doc, path)
	found := err == nil
	next, err := fn(cloneValue(current), found)
	if err != nil {
		return err
	}
	normalized, err := normalizeValue(key, next)
	if err != nil {
		return err
	}

	return s.mutate(func(doc Document) error {
		setPath(doc, path, normalized)
		return nil
	})
}

// Reset replaces every user setting with the defaults and persists.
// The metadata block is kept.
func (s *Store) Reset() error {
	if s.opts.ReadOnly {
		return ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(func(doc Document) error {
		for key := range doc {
			if key != MetadataKey {
				delete(doc, key)
			}
		}
		for key, value := range s.defaults {
			doc[key] = cloneValue(value)
		}
		return nil
	})
}

// Snapshot returns a deep copy of the settings without the metadata block.
// Changes to the copy never reach the store.
func (s *Store) Snapshot() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return nil, err
	}
	return userView(s.doc), nil
}

// Flatten returns a point-in-time map of dotted leaf paths to values.
func (s *Store) Flatten() (map[string]any, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return flattenDocument(snapshot, ""), nil
}

// Keys returns the sorted top-level keys.
func (s *Store) Keys() ([]string, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return sortedKeys(snapshot), nil
}

// Len counts every key in the settings tree, tables included.
func (s *Store) Len() (int, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return 0, err
	}
	return countEntries(snapshot), nil
}

// Metadata returns the metadata block, if present.
func (s *Store) Metadata() (Metadata, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return Metadata{}, false, err
	}
	meta, ok := readMetadata(s.doc)
	return meta, ok, nil
}
