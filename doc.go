// File: lixenwraith/settings/doc.go

// Package settings provides persisted application settings exposed as a
// dictionary addressed by dotted keys, backed by a TOML (or YAML) file.
//
// Features:
//   - Dotted keys ("server.tls.cert") over a nested document
//   - Defaults merged into the loaded file without overwriting user values
//   - Atomic file writes (temp file + rename)
//   - Auto-reload before every operation to pick up external edits
//   - Read-only and RAM-only modes
//   - Metadata block with creation and update timestamps
//   - Thread-safe operations using one mutex per Store
//   - Struct defaults and struct scanning via `toml` tags
//   - File watching with per-key change notifications
//
// Quick Start:
//
//	s, err := settings.New("myapp", map[string]any{
//	    "server.host": "localhost",
//	    "server.port": 8080,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	port, _ := s.Int64("server.port")
//	if err := s.Set("server.port", 9090); err != nil {
//	    log.Fatal(err)
//	}
//
//	name, _ := s.GetOr("user.name", "anonymous")
//
// Values are normalized on the way in: integers are stored as int64, floats
// as float64, slices as []any and tables as map[string]any, which is what a
// round trip through the file returns.
//
// Thread Safety:
// Every Store operation holds the store lock for its entire reload, mutate
// and persist sequence. Stores in different processes (or two Stores on the
// same file) are not coordinated; the last writer wins.
package settings
