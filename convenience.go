// FILE: lixenwraith/settings/convenience.go
package settings

import (
	"fmt"
	"io"
	"reflect"
	"strings"
)

// Quick creates file-backed settings with the default path and options.
func Quick(name string, defaults any) (*Settings, error) {
	return New(name, defaults)
}

// MustQuick is like Quick but panics on error.
func MustQuick(name string, defaults any) *Settings {
	return Must(Quick(name, defaults))
}

// RequireKeys returns a validator that fails when any of keys is missing.
func RequireKeys(keys ...string) ValidatorFunc {
	return func(s *Settings) error {
		var missing []string
		for _, key := range keys {
			found, err := s.Exists(key)
			if err != nil {
				return err
			}
			if !found {
				missing = append(missing, key)
			}
		}

		if len(missing) > 0 {
			return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
		}
		return nil
	}
}

// RequireChanged returns a validator that fails when any of keys still holds
// its default value, e.g. a placeholder secret that must be edited.
func RequireChanged(keys ...string) ValidatorFunc {
	return func(s *Settings) error {
		defaults := s.store.Defaults()

		var unchanged []string
		for _, key := range keys {
			path, err := ParseKey(key)
			if err != nil {
				return err
			}
			current, err := s.Get(key)
			if err != nil {
				return err
			}
			def, err := getPath(defaults, path)
			if err == nil && reflect.DeepEqual(current, def) {
				unchanged = append(unchanged, key)
			}
		}

		if len(unchanged) > 0 {
			return fmt.Errorf("settings still at default value: %s", strings.Join(unchanged, ", "))
		}
		return nil
	}
}

// Dump writes the current settings to w using the store's codec.
// The metadata block is omitted.
func (s *Settings) Dump(w io.Writer) error {
	snapshot, err := s.Snapshot()
	if err != nil {
		return err
	}
	data, err := s.store.Codec().Encode(snapshot)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Debug returns a listing of every leaf with its current and default value.
func (s *Settings) Debug() string {
	flat, err := s.Flatten()
	if err != nil {
		return fmt.Sprintf("%s\nerror: %v\n", s.store, err)
	}
	defaults := flattenDocument(s.store.Defaults(), "")

	var b strings.Builder
	b.WriteString(s.store.String())
	b.WriteString("\n")
	for _, key := range sortedKeys(flat) {
		fmt.Fprintf(&b, "  %s:\n", key)
		fmt.Fprintf(&b, "    Current: %v\n", flat[key])
		if def, ok := defaults[key]; ok {
			fmt.Fprintf(&b, "    Default: %v\n", def)
		}
	}
	return b.String()
}
