// FILE: lixenwraith/settings/keypath.go
package settings

import (
	"sort"
	"strings"
)

// KeySeparator splits a dotted key into path segments.
const KeySeparator = "."

// Document is a nested settings tree. Values are normalized: int64, float64,
// string, bool, time.Time, []any, or a nested Document stored as map[string]any.
type Document = map[string]any

// KeyPath is a parsed dotted key. It is never empty and holds no empty segment.
type KeyPath []string

// ParseKey splits a dotted key into a KeyPath.
// Every segment must be a TOML bare key: ASCII letters, digits, '_' or '-'.
func ParseKey(key string) (KeyPath, error) {
	if key == "" {
		return nil, keyError(key, ErrInvalidKey)
	}
	segments := strings.Split(key, KeySeparator)
	for _, segment := range segments {
		if !isValidKeySegment(segment) {
			return nil, keyError(key, ErrInvalidKey)
		}
	}
	return KeyPath(segments), nil
}

// String returns the dotted form of the path.
func (p KeyPath) String() string {
	return strings.Join(p, KeySeparator)
}

// getPath walks doc along path and returns the value at its end.
func getPath(doc Document, path KeyPath) (any, error) {
	var current any = doc
	for _, segment := range path {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil, keyError(path.String(), ErrKeyNotFound)
		}
		value, exists := currentMap[segment]
		if !exists {
			return nil, keyError(path.String(), ErrKeyNotFound)
		}
		current = value
	}
	return current, nil
}

// existsPath reports whether path resolves in doc.
func existsPath(doc Document, path KeyPath) bool {
	_, err := getPath(doc, path)
	return err == nil
}

// setPath assigns value at path, creating intermediate maps as needed.
// If a segment exists but is not a map, it is overwritten by a new map.
func setPath(doc Document, path KeyPath, value any) {
	current := doc

	for _, segment := range path[:len(path)-1] {
		next, exists := current[segment]
		if nextMap, isMap := next.(map[string]any); exists && isMap {
			current = nextMap
			continue
		}
		newMap := make(map[string]any)
		current[segment] = newMap
		current = newMap
	}

	current[path[len(path)-1]] = value
}

// deletePath removes the leaf at path. Parents left empty are kept.
func deletePath(doc Document, path KeyPath) error {
	current := doc

	for _, segment := range path[:len(path)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			return keyError(path.String(), ErrKeyNotFound)
		}
		current = next
	}

	last := path[len(path)-1]
	if _, exists := current[last]; !exists {
		return keyError(path.String(), ErrKeyNotFound)
	}
	delete(current, last)
	return nil
}

// flattenDocument converts a nested document to a flat map with dotted paths.
// Empty tables are kept as leaves so they survive the flattening.
func flattenDocument(nested Document, prefix string) map[string]any {
	flat := make(map[string]any)

	for key, value := range nested {
		path := key
		if prefix != "" {
			path = prefix + KeySeparator + key
		}

		if nestedMap, isMap := value.(map[string]any); isMap && len(nestedMap) > 0 {
			for subPath, subValue := range flattenDocument(nestedMap, path) {
				flat[subPath] = subValue
			}
		} else {
			flat[path] = cloneValue(value)
		}
	}

	return flat
}

// countEntries counts every key in the tree, tables included.
func countEntries(doc Document) int {
	total := 0
	for _, value := range doc {
		total++
		if nested, ok := value.(map[string]any); ok {
			total += countEntries(nested)
		}
	}
	return total
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// cloneDocument returns a deep copy of doc.
func cloneDocument(doc Document) Document {
	if doc == nil {
		return make(Document)
	}
	clone := make(Document, len(doc))
	for key, value := range doc {
		clone[key] = cloneValue(value)
	}
	return clone
}

// cloneValue deep-copies maps and slices; scalars are returned as is.
func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneDocument(v)
	case []any:
		clone := make([]any, len(v))
		for i, item := range v {
			clone[i] = cloneValue(item)
		}
		return clone
	default:
		return value
	}
}

// isValidKeySegment checks if a single path segment is a valid TOML bare key.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}

	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isUnderscore := r == '_'
		isDash := r == '-'

		if !(isLetter || isDigit || isUnderscore || isDash) {
			return false
		}
	}
	return true
}
