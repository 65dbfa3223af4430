// FILE: lixenwraith/settings/metadata.go
package settings

import "time"

// Reserved metadata block layout.
const (
	MetadataKey    = "metadata"
	MetadataNotice = "This file was created by settings."

	metaNotice  = "notice"
	metaCreated = "created"
	metaUpdated = "updated"
)

// Metadata is the parsed view of the reserved metadata block.
type Metadata struct {
	Notice  string
	Created time.Time
	Updated time.Time
}

// isReservedPath reports whether path addresses the metadata block.
func isReservedPath(path KeyPath) bool {
	return path[0] == MetadataKey
}

func timestamp(now time.Time) string {
	return now.UTC().Format(time.RFC3339Nano)
}

// metadataBlock returns the metadata table of doc, creating it if needed.
// A non-table value under the reserved key is replaced.
func metadataBlock(doc Document) map[string]any {
	if block, ok := doc[MetadataKey].(map[string]any); ok {
		return block
	}
	block := make(map[string]any)
	doc[MetadataKey] = block
	return block
}

// stampCreated records the creation time if absent and reports whether it did.
func stampCreated(doc Document, now time.Time) bool {
	block := metadataBlock(doc)
	if _, ok := block[metaCreated]; ok {
		return false
	}
	block[metaNotice] = MetadataNotice
	block[metaCreated] = timestamp(now)
	block[metaUpdated] = timestamp(now)
	return true
}

func stampUpdated(doc Document, now time.Time) {
	metadataBlock(doc)[metaUpdated] = timestamp(now)
}

// readMetadata parses the metadata block of doc, if any.
func readMetadata(doc Document) (Metadata, bool) {
	block, ok := doc[MetadataKey].(map[string]any)
	if !ok {
		return Metadata{}, false
	}

	var meta Metadata
	meta.Notice, _ = block[metaNotice].(string)
	meta.Created = parseStamp(block[metaCreated])
	meta.Updated = parseStamp(block[metaUpdated])
	return meta, true
}

// parseStamp accepts RFC 3339 strings and TOML datetimes (hand-edited files).
func parseStamp(value any) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// userView returns a deep copy of doc without the metadata block.
func userView(doc Document) Document {
	view := cloneDocument(doc)
	delete(view, MetadataKey)
	return view
}
