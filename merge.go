// FILE: lixenwraith/settings/merge.go
package settings

// MergeDefaults fills every key path present in defaults but absent in
// loaded and reports whether anything was added. A key already present in
// loaded is never overwritten, even when its type differs from the
// default's. Neither input is modified; the result is a new document.
func MergeDefaults(loaded, defaults Document) (Document, bool) {
	merged := cloneDocument(loaded)
	changed := mergeInto(merged, defaults)
	return merged, changed
}

// mergeInto copies missing defaults into dst. Tables present on both sides
// are merged recursively; anything else already in dst wins.
func mergeInto(dst, defaults Document) bool {
	changed := false

	for key, defaultValue := range defaults {
		existing, exists := dst[key]
		if !exists {
			dst[key] = cloneValue(defaultValue)
			changed = true
			continue
		}

		existingMap, existingIsMap := existing.(map[string]any)
		defaultMap, defaultIsMap := defaultValue.(map[string]any)
		if existingIsMap && defaultIsMap {
			if mergeInto(existingMap, defaultMap) {
				changed = true
			}
		}
	}

	return changed
}
