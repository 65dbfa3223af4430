// FILE: lixenwraith/settings/codec.go
package settings

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Codec converts a Document to file contents and back.
// Decode must return a normalized Document and wrap ErrDecode on malformed input.
type Codec interface {
	Encode(doc Document) ([]byte, error)
	Decode(data []byte) (Document, error)
	Extension() string
}

// TOMLCodec is the default codec, backed by BurntSushi/toml.
type TOMLCodec struct{}

// Encode marshals doc as TOML. Nested documents become tables.
func (TOMLCodec) Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal settings to TOML: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses TOML data. Empty input yields an empty document.
func (TOMLCodec) Decode(data []byte) (Document, error) {
	raw := make(map[string]any)
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse TOML: %w", ErrDecode, err)
	}
	doc, err := normalizeDecoded(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return doc, nil
}

// Extension returns "toml".
func (TOMLCodec) Extension() string { return "toml" }

// YAMLCodec stores settings as YAML using gopkg.in/yaml.v3.
type YAMLCodec struct{}

func (YAMLCodec) Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal settings to YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush YAML encoder: %w", err)
	}
	return buf.Bytes(), nil
}

func (YAMLCodec) Decode(data []byte) (Document, error) {
	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %w", ErrDecode, err)
	}
	doc, err := normalizeDecoded(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return doc, nil
}

func (YAMLCodec) Extension() string { return "yaml" }

// CodecForPath picks a codec from the file extension. Unknown extensions
// fall back to TOML.
func CodecForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAMLCodec{}
	default:
		return TOMLCodec{}
	}
}

// CodecByName resolves "toml" or "yaml"/"yml".
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "toml", "tml", "":
		return TOMLCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrTypeHint, name)
	}
}
