// File: lixenwraith/settings/builder.go
package settings

import (
	"fmt"
	"log/slog"
)

// ValidatorFunc inspects freshly loaded settings and returns an error to
// reject them.
type ValidatorFunc func(s *Settings) error

// Builder provides a fluent interface for building settings.
type Builder struct {
	opts       Options
	err        error
	validators []ValidatorFunc
}

// NewBuilder starts from DefaultOptions(name).
func NewBuilder(name string) *Builder {
	return &Builder{
		opts:       DefaultOptions(name),
		validators: make([]ValidatorFunc, 0),
	}
}

// WithDefaults sets the defaults (map or struct with `toml` tags).
func (b *Builder) WithDefaults(defaults any) *Builder {
	b.opts.Defaults = defaults
	return b
}

// WithFile sets the backing file path.
func (b *Builder) WithFile(path string) *Builder {
	b.opts.FilePath = path
	return b
}

// WithFileDiscovery searches for an existing settings file and uses it
// when found. Not finding one is not an error: the default path applies.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	if opts.Name == "" {
		opts.Name = b.opts.Name
	}
	if path, found := DiscoverFile(opts); found {
		b.opts.FilePath = path
	}
	return b
}

// WithFormat selects the codec by name ("toml" or "yaml").
func (b *Builder) WithFormat(format string) *Builder {
	codec, err := CodecByName(format)
	if err != nil && b.err == nil {
		b.err = err
	}
	b.opts.Codec = codec
	return b
}

// WithCodec sets a custom codec.
func (b *Builder) WithCodec(codec Codec) *Builder {
	b.opts.Codec = codec
	return b
}

// WithRAMOnly keeps settings in memory only.
func (b *Builder) WithRAMOnly(enabled bool) *Builder {
	b.opts.RAMOnly = enabled
	return b
}

// WithAutoReload toggles reloading before every operation.
func (b *Builder) WithAutoReload(enabled bool) *Builder {
	b.opts.AutoReload = enabled
	return b
}

// WithReadOnly toggles read-only mode.
func (b *Builder) WithReadOnly(enabled bool) *Builder {
	b.opts.ReadOnly = enabled
	return b
}

// WithSaveMetadata toggles the metadata block.
func (b *Builder) WithSaveMetadata(enabled bool) *Builder {
	b.opts.SaveMetadata = enabled
	return b
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.opts.Logger = logger
	return b
}

// WithValidator adds a validation function that runs at the end of Build.
// Validators run in the order they are added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the settings and runs validators.
func (b *Builder) Build() (*Settings, error) {
	if b.err != nil {
		return nil, b.err
	}

	s, err := NewFromOptions(b.opts)
	if err != nil {
		return nil, err
	}

	for _, validator := range b.validators {
		if err := validator(s); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}

	return s, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Settings {
	return Must(b.Build())
}

// BuildAndScan builds the settings and decodes the whole tree into target.
func (b *Builder) BuildAndScan(target any) (*Settings, error) {
	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := s.Scan("", target); err != nil {
		return nil, fmt.Errorf("failed to scan settings into target: %w", err)
	}
	return s, nil
}
