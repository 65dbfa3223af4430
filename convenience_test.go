// FILE: lixenwraith/settings/convenience_test.go
package settings

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestQuickFunctions tests the convenience constructors
func TestQuickFunctions(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	t.Run("Quick", func(t *testing.T) {
		s, err := Quick("quickapp", map[string]any{"server.port": 8080})
		require.NoError(t, err)
		assert.FileExists(t, s.FilePath())

		port, err := s.Int64("server.port")
		require.NoError(t, err)
		assert.Equal(t, int64(8080), port)
	})

	t.Run("MustQuickPanic", func(t *testing.T) {
		assert.Panics(t, func() {
			MustQuick("bad name", nil)
		})
	})
}

// TestValidation tests the required-key validators
func TestValidation(t *testing.T) {
	defaults := map[string]any{"db.host": "localhost", "db.password": "changeme"}

	t.Run("RequireKeysPasses", func(t *testing.T) {
		_, err := NewBuilder("app").
			WithDefaults(defaults).
			WithRAMOnly(true).
			WithValidator(RequireKeys("db.host", "db.password")).
			Build()
		assert.NoError(t, err)
	})

	t.Run("RequireKeysFails", func(t *testing.T) {
		_, err := NewBuilder("app").
			WithDefaults(defaults).
			WithRAMOnly(true).
			WithValidator(RequireKeys("db.host", "db.port", "api.key")).
			Build()
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "db.port, api.key")
	})

	t.Run("RequireKeysInvalidKey", func(t *testing.T) {
		s := newRAMSettings(t, defaults)
		assert.ErrorIs(t, RequireKeys("bad key")(s), ErrInvalidKey)
	})

	t.Run("RequireChanged", func(t *testing.T) {
		s := newRAMSettings(t, defaults)

		err := RequireChanged("db.password")(s)
		assert.ErrorContains(t, err, "db.password")

		require.NoError(t, s.Set("db.password", "s3cret"))
		assert.NoError(t, RequireChanged("db.password")(s))

		// A key without a default counts as changed once present
		require.NoError(t, s.Set("extra", 1))
		assert.NoError(t, RequireChanged("extra")(s))

		assert.ErrorIs(t, RequireChanged("absent")(s), ErrKeyNotFound)
	})
}

func TestDumpAndDebug(t *testing.T) {
	s := newRAMSettings(t, map[string]any{"server.port": 8080, "name": "demo"})
	require.NoError(t, s.Set("server.port", 9090))

	t.Run("Dump", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Dump(&buf))

		out := buf.String()
		assert.Contains(t, out, "[server]")
		assert.Contains(t, out, "port = 9090")
		assert.NotContains(t, out, MetadataKey)
	})

	t.Run("Debug", func(t *testing.T) {
		out := s.Debug()
		assert.Contains(t, out, "Settings `test`. Stored in memory only")
		assert.Contains(t, out, "server.port:\n    Current: 9090\n    Default: 8080\n")
		assert.Contains(t, out, "name:\n    Current: demo\n")
	})
}
