// FILE: lixenwraith/settings/decode.go
package settings

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Scan decodes the table at basePath into target, a non-nil pointer to a
// struct or map. An empty basePath scans the whole settings tree; a missing
// table decodes as empty. Struct fields are matched by their `toml` tag.
func (s *Settings) Scan(basePath string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: scan target must be a non-nil pointer, got %T", ErrTypeHint, target)
	}

	snapshot, err := s.Snapshot()
	if err != nil {
		return err
	}

	var section any = snapshot
	if basePath != "" {
		path, err := ParseKey(basePath)
		if err != nil {
			return err
		}
		section, err = getPath(snapshot, path)
		if err != nil {
			section = make(map[string]any)
		}
	}

	sectionMap, ok := section.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: path %q refers to non-table value (type %T)", ErrTypeHint, basePath, section)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "toml",
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("%w: failed to scan %q into %T: %v", ErrTypeHint, basePath, target, err)
	}
	return nil
}

// decodeHook converts the string forms people write in settings files.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}
