// FILE: lixenwraith/settings/validate.go
package settings

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var timeType = reflect.TypeOf(time.Time{})

// validateName checks a settings name against ^[A-Za-z0-9_-]+$.
func validateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: name %q must match %s", ErrTypeHint, name, namePattern.String())
	}
	return nil
}

// normalizeValue validates value for storage and returns a deep copy in the
// document's canonical form. key is used for error context only.
func normalizeValue(key string, value any) (any, error) {
	if value == nil {
		return nil, fmt.Errorf("%w for key '%s': nil", ErrInvalidValue, key)
	}
	return normalizeReflect(key, reflect.ValueOf(value), true)
}

// normalizeReflect converts v to the canonical form. With strictKeys unset,
// table keys are taken as they are; decoded files may carry quoted keys that
// the dotted syntax cannot address but must still survive a rewrite.
func normalizeReflect(key string, v reflect.Value, strictKeys bool) (any, error) {
	// Unwrap interfaces holding concrete values (elements of []any, map[string]any)
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, fmt.Errorf("%w for key '%s': nil", ErrInvalidValue, key)
		}
		v = v.Elem()
	}

	// Caller-supplied times lose the monotonic reading and zone so they equal
	// what the codecs read back. Decoded times keep their local-date forms.
	if v.Type() == timeType {
		t := v.Interface().(time.Time)
		if strictKeys {
			t = t.Round(0).UTC()
		}
		return t, nil
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.String:
		if !utf8.ValidString(v.String()) {
			return nil, fmt.Errorf("%w for key '%s': string is not valid UTF-8", ErrInvalidValue, key)
		}
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%w for key '%s': unsigned integer %d overflows int64", ErrInvalidValue, key, u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return []any{}, nil
		}
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			item, err := normalizeReflect(fmt.Sprintf("%s[%d]", key, i), v.Index(i), strictKeys)
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w for key '%s': map key type %s is not string", ErrInvalidValue, key, v.Type().Key())
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			subKey := iter.Key().String()
			childKey := joinKey(key, subKey)
			if strictKeys && !isValidKeySegment(subKey) {
				return nil, keyError(childKey, ErrInvalidKey)
			}
			if !utf8.ValidString(subKey) {
				return nil, fmt.Errorf("%w for key '%s': table key is not valid UTF-8", ErrInvalidValue, key)
			}
			item, err := normalizeReflect(childKey, iter.Value(), strictKeys)
			if err != nil {
				return nil, err
			}
			out[subKey] = item
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w for key '%s': unsupported type %s", ErrInvalidValue, key, v.Type())
}

// normalizeDecoded brings a freshly decoded tree into canonical form.
// Keys are not validated.
func normalizeDecoded(doc map[string]any) (Document, error) {
	normalized, err := normalizeReflect("", reflect.ValueOf(doc), false)
	if err != nil {
		return nil, err
	}
	return normalized.(map[string]any), nil
}

// expandDefaults turns user supplied defaults into a normalized Document.
// It accepts nil, a map with string keys whose keys may be dotted
// ({"a.b": 1}), or a struct/struct pointer decoded with `toml` tags.
func expandDefaults(input any) (Document, error) {
	if input == nil {
		return make(Document), nil
	}

	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return make(Document), nil
		}
		v = v.Elem()
	}

	var raw map[string]any
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: defaults map key type %s is not string", ErrTypeHint, v.Type().Key())
		}
		raw = make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			raw[iter.Key().String()] = iter.Value().Interface()
		}
	case reflect.Struct:
		decoded, err := structToMap(input)
		if err != nil {
			return nil, err
		}
		raw = decoded
	default:
		return nil, fmt.Errorf("%w: defaults must be a map or struct, got %T", ErrTypeHint, input)
	}

	// Shorter keys first so a conflict ("a.b" vs "a.b.c") is detected
	// regardless of map iteration order.
	keys := sortedKeys(raw)
	expanded := make(Document)
	for _, key := range keys {
		path, err := ParseKey(key)
		if err != nil {
			return nil, err
		}
		value, err := normalizeValue(key, raw[key])
		if err != nil {
			return nil, err
		}
		if err := insertDefault(expanded, path, value); err != nil {
			return nil, err
		}
	}

	return expanded, nil
}

// insertDefault places value at path, refusing to replace a scalar with a
// table or a table with a scalar. Tables on both sides are merged.
func insertDefault(doc Document, path KeyPath, value any) error {
	current := doc
	for i, segment := range path[:len(path)-1] {
		next, exists := current[segment]
		if !exists {
			newMap := make(map[string]any)
			current[segment] = newMap
			current = newMap
			continue
		}
		nextMap, isMap := next.(map[string]any)
		if !isMap {
			return fmt.Errorf("%w: conflicting default '%s' is not a table", keyError(path.String(), ErrInvalidKey), KeyPath(path[:i+1]).String())
		}
		current = nextMap
	}

	last := path[len(path)-1]
	existing, exists := current[last]
	if !exists {
		current[last] = value
		return nil
	}

	existingMap, existingIsMap := existing.(map[string]any)
	valueMap, valueIsMap := value.(map[string]any)
	if !existingIsMap || !valueIsMap {
		return fmt.Errorf("%w: conflicting default", keyError(path.String(), ErrInvalidKey))
	}
	for _, subKey := range sortedKeys(valueMap) {
		if err := insertDefault(existingMap, KeyPath{subKey}, valueMap[subKey]); err != nil {
			return fmt.Errorf("%w: conflicting default", keyError(joinKey(path.String(), subKey), ErrInvalidKey))
		}
	}
	return nil
}

// structToMap decodes a struct into a nested map using `toml` tags.
// time.Time fields are copied over afterwards since mapstructure expands
// every struct, datetimes included, into a table.
func structToMap(input any) (map[string]any, error) {
	out := make(map[string]any)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: "toml",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return nil, fmt.Errorf("%w: failed to decode defaults struct %T: %v", ErrTypeHint, input, err)
	}
	restoreTimes(reflect.Indirect(reflect.ValueOf(input)), out)
	return out, nil
}

// restoreTimes walks struct v alongside its decoded map and puts time.Time
// fields back in place. Field names follow mapstructure's `toml` tag rules.
func restoreTimes(v reflect.Value, out map[string]any) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("toml")
		name, opts, _ := strings.Cut(tag, ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}

		fv := v.Field(i)
		if fv.Kind() == reflect.Ptr && fv.Type().Elem() == timeType {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}

		switch {
		case fv.Type() == timeType:
			if _, ok := out[name]; ok {
				out[name] = fv.Interface().(time.Time)
			}
		case fv.Kind() == reflect.Struct && strings.Contains(opts, "squash"):
			restoreTimes(fv, out)
		case fv.Kind() == reflect.Struct:
			if nested, ok := out[name].(map[string]any); ok {
				restoreTimes(fv, nested)
			}
		}
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + KeySeparator + key
}
