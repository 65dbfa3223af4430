// FILE: lixenwraith/settings/settings.go
package settings

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Mapping is the dictionary-style surface of a settings set.
type Mapping interface {
	Get(key string) (any, error)
	GetOr(key string, fallback any) (any, error)
	Set(key string, value any) error
	Delete(key string) error
	Contains(key string) bool
	Keys() ([]string, error)
	Len() (int, error)
	Snapshot() (Document, error)
	Range(fn func(key string, value any) bool) error
}

var _ Mapping = (*Settings)(nil)

// Settings exposes a Store as a mapping addressed by dotted keys.
type Settings struct {
	store *Store
}

// Option adjusts Options before the store is built.
type Option func(*Options)

// WithFilePath sets an explicit backing file.
func WithFilePath(path string) Option {
	return func(o *Options) { o.FilePath = path }
}

// WithRAMOnly keeps settings in memory only.
func WithRAMOnly(enabled bool) Option {
	return func(o *Options) { o.RAMOnly = enabled }
}

// WithAutoReload toggles re-reading the file before every operation.
func WithAutoReload(enabled bool) Option {
	return func(o *Options) { o.AutoReload = enabled }
}

// WithReadOnly toggles read-only mode.
func WithReadOnly(enabled bool) Option {
	return func(o *Options) { o.ReadOnly = enabled }
}

// WithSaveMetadata toggles the metadata block.
func WithSaveMetadata(enabled bool) Option {
	return func(o *Options) { o.SaveMetadata = enabled }
}

// WithCodec sets the file codec.
func WithCodec(codec Codec) Option {
	return func(o *Options) { o.Codec = codec }
}

// WithLogger sets the logger for debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// New creates settings named name with the given defaults (nil, a map or a
// struct). Unless overridden, auto-reload and metadata are enabled and the
// file lives at DefaultFilePath(name, "toml").
func New(name string, defaults any, opts ...Option) (*Settings, error) {
	options := DefaultOptions(name)
	options.Defaults = defaults
	for _, opt := range opts {
		opt(&options)
	}
	return NewFromOptions(options)
}

// NewFromOptions creates settings from a complete Options value.
func NewFromOptions(options Options) (*Settings, error) {
	store, err := NewStore(options)
	if err != nil {
		return nil, err
	}
	return &Settings{store: store}, nil
}

// Store returns the underlying store.
func (s *Settings) Store() *Store { return s.store }

// Name returns the settings name.
func (s *Settings) Name() string { return s.store.Name() }

// FilePath returns the backing file path.
func (s *Settings) FilePath() string { return s.store.FilePath() }

// ReadOnly reports whether mutations are rejected.
func (s *Settings) ReadOnly() bool { return s.store.ReadOnly() }

// Get returns the value at key or an error wrapping ErrKeyNotFound.
func (s *Settings) Get(key string) (any, error) {
	return s.store.Get(key)
}

// GetOr returns the value at key, or fallback if it does not exist.
func (s *Settings) GetOr(key string, fallback any) (any, error) {
	return s.store.GetOr(key, fallback)
}

// Set validates key and value, then stores the value at key.
// Validation errors take precedence over ErrReadOnly.
func (s *Settings) Set(key string, value any) error {
	path, normalized, err := prepareSet(key, value)
	if err != nil {
		return err
	}
	return s.store.setValue(path, normalized)
}

// Delete removes key.
func (s *Settings) Delete(key string) error {
	return s.store.Delete(key)
}

// Exists reports whether key resolves.
func (s *Settings) Exists(key string) (bool, error) {
	return s.store.Exists(key)
}

// Contains is Exists for callers that only need a yes/no; any error,
// including an invalid key, counts as absent.
func (s *Settings) Contains(key string) bool {
	found, err := s.store.Exists(key)
	return err == nil && found
}

// Update atomically replaces the value at key with fn's result.
func (s *Settings) Update(key string, fn UpdateFunc) error {
	return s.store.Update(key, fn)
}

// Reset restores the defaults.
func (s *Settings) Reset() error {
	return s.store.Reset()
}

// Reload re-reads the backing file.
func (s *Settings) Reload() error {
	return s.store.Load()
}

// Keys returns the sorted top-level keys.
func (s *Settings) Keys() ([]string, error) {
	return s.store.Keys()
}

// Len counts all keys in the tree, tables included.
func (s *Settings) Len() (int, error) {
	return s.store.Len()
}

// Snapshot returns a detached nested copy of the settings.
func (s *Settings) Snapshot() (Document, error) {
	return s.store.Snapshot()
}

// Flatten returns a detached map of dotted leaf paths to values.
func (s *Settings) Flatten() (map[string]any, error) {
	return s.store.Flatten()
}

// Metadata returns the metadata block, if present.
func (s *Settings) Metadata() (Metadata, bool, error) {
	return s.store.Metadata()
}

// Range calls fn for every leaf of a point-in-time snapshot in key order,
// stopping early when fn returns false.
func (s *Settings) Range(fn func(key string, value any) bool) error {
	flat, err := s.store.Flatten()
	if err != nil {
		return err
	}
	for _, key := range sortedKeys(flat) {
		if !fn(key, flat[key]) {
			return nil
		}
	}
	return nil
}

// Equal compares the current settings with other, which may be a Document,
// any map with string keys or another *Settings. Values are compared after
// normalization, so int(1) equals int64(1).
func (s *Settings) Equal(other any) bool {
	mine, err := s.store.Snapshot()
	if err != nil {
		return false
	}

	var theirs Document
	switch o := other.(type) {
	case *Settings:
		if o == nil {
			return false
		}
		theirs, err = o.store.Snapshot()
		if err != nil {
			return false
		}
	default:
		expanded, err := expandDefaults(other)
		if err != nil || other == nil {
			return false
		}
		theirs = expanded
	}

	return reflect.DeepEqual(mine, theirs)
}

// Must panics if err is not nil; for package-level settings in main packages.
func Must(s *Settings, err error) *Settings {
	if err != nil {
		panic(fmt.Sprintf("settings initialization failed: %v", err))
	}
	return s
}
