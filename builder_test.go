// FILE: lixenwraith/settings/builder_test.go
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuilder tests the builder pattern
func TestBuilder(t *testing.T) {
	t.Run("BasicBuilder", func(t *testing.T) {
		type Defaults struct {
			Host string `toml:"host"`
			Port int    `toml:"port"`
		}

		s, err := NewBuilder("app").
			WithDefaults(&Defaults{Host: "localhost", Port: 8080}).
			WithRAMOnly(true).
			Build()

		require.NoError(t, err)
		assert.NotNil(t, s)

		val, err := s.Get("host")
		require.NoError(t, err)
		assert.Equal(t, "localhost", val)
	})

	t.Run("BuilderWithAllOptions", func(t *testing.T) {
		settingsFile := filepath.Join(t.TempDir(), "app.yaml")
		writeFile(t, settingsFile, "host: filehost\n")

		s, err := NewBuilder("app").
			WithDefaults(map[string]any{"host": "defaulthost", "port": 3000}).
			WithFile(settingsFile).
			WithFormat("yaml").
			WithAutoReload(false).
			WithSaveMetadata(false).
			WithLogger(nil).
			Build()

		require.NoError(t, err)

		host, err := s.String("host")
		require.NoError(t, err)
		assert.Equal(t, "filehost", host)

		port, err := s.Int64("port")
		require.NoError(t, err)
		assert.Equal(t, int64(3000), port)

		assert.False(t, s.Store().AutoReload())
		assert.IsType(t, YAMLCodec{}, s.Store().Codec())

		data, err := os.ReadFile(settingsFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "port: 3000")
		assert.NotContains(t, string(data), MetadataKey)
	})

	t.Run("BuilderReadOnly", func(t *testing.T) {
		settingsFile := filepath.Join(t.TempDir(), "settings.toml")

		s, err := NewBuilder("app").
			WithDefaults(map[string]any{"x": 1}).
			WithFile(settingsFile).
			WithReadOnly(true).
			Build()

		require.NoError(t, err)
		assert.True(t, s.ReadOnly())
		assert.NoFileExists(t, settingsFile)
	})

	t.Run("BuilderWithValidator", func(t *testing.T) {
		validatorCalled := false
		validator := func(s *Settings) error {
			validatorCalled = true
			port, err := s.Int64("port")
			if err != nil {
				return err
			}
			if port < 1024 {
				return fmt.Errorf("port %d must be >= 1024", port)
			}
			return nil
		}

		s, err := NewBuilder("app").
			WithDefaults(map[string]any{"port": 8080}).
			WithRAMOnly(true).
			WithValidator(validator).
			Build()

		require.NoError(t, err)
		assert.NotNil(t, s)
		assert.True(t, validatorCalled)

		validatorCalled = false
		s2, err := NewBuilder("app").
			WithDefaults(map[string]any{"port": 80}).
			WithRAMOnly(true).
			WithValidator(validator).
			Build()

		assert.Nil(t, s2)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "must be >= 1024")
		assert.True(t, validatorCalled)
	})

	t.Run("ValidatorsRunInOrder", func(t *testing.T) {
		var order []int
		errStop := errors.New("stop")

		_, err := NewBuilder("app").
			WithRAMOnly(true).
			WithValidator(func(*Settings) error { order = append(order, 1); return nil }).
			WithValidator(nil).
			WithValidator(func(*Settings) error { order = append(order, 2); return errStop }).
			WithValidator(func(*Settings) error { order = append(order, 3); return nil }).
			Build()

		assert.ErrorIs(t, err, errStop)
		assert.Equal(t, []int{1, 2}, order)
	})

	t.Run("BuilderErrorAccumulation", func(t *testing.T) {
		_, err := NewBuilder("app").
			WithFormat("xml").
			WithRAMOnly(true).
			Build()
		assert.ErrorIs(t, err, ErrTypeHint)
		assert.Contains(t, err.Error(), "unsupported format")

		_, err = NewBuilder("bad name").
			WithRAMOnly(true).
			Build()
		assert.ErrorIs(t, err, ErrTypeHint)

		_, err = NewBuilder("app").
			WithRAMOnly(true).
			WithFile("/tmp/settings.toml").
			Build()
		assert.ErrorIs(t, err, ErrConflictingOptions)
	})

	t.Run("MustBuildPanic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			s := NewBuilder("app").
				WithDefaults(map[string]any{"port": 8080}).
				WithRAMOnly(true).
				MustBuild()
			assert.NotNil(t, s)
		})

		assert.Panics(t, func() {
			NewBuilder("app").
				WithFormat("invalid").
				MustBuild()
		})
	})

	t.Run("BuildAndScan", func(t *testing.T) {
		type Server struct {
			Host string `toml:"host"`
			Port int    `toml:"port"`
		}
		type Target struct {
			Server Server `toml:"server"`
			Debug  bool   `toml:"debug"`
		}

		var target Target
		s, err := NewBuilder("app").
			WithDefaults(map[string]any{"server.host": "localhost", "server.port": 8080, "debug": true}).
			WithRAMOnly(true).
			BuildAndScan(&target)

		require.NoError(t, err)
		assert.NotNil(t, s)
		assert.Equal(t, Target{Server: Server{Host: "localhost", Port: 8080}, Debug: true}, target)

		_, err = NewBuilder("app").WithRAMOnly(true).BuildAndScan(target)
		assert.ErrorIs(t, err, ErrTypeHint)
	})
}

// TestFileDiscovery tests settings file discovery
func TestFileDiscovery(t *testing.T) {
	defaults := map[string]any{"test": "default"}

	t.Run("DiscoveryWithCLIFlag", func(t *testing.T) {
		settingsFile := filepath.Join(t.TempDir(), "custom.toml")
		writeFile(t, settingsFile, `test = "value"`)

		opts := DefaultDiscoveryOptions("myapp")
		opts.Args = []string{"--settings", settingsFile}

		s, err := NewBuilder("myapp").
			WithDefaults(defaults).
			WithFileDiscovery(opts).
			Build()

		require.NoError(t, err)
		assert.Equal(t, settingsFile, s.FilePath())

		val, err := s.Get("test")
		require.NoError(t, err)
		assert.Equal(t, "value", val)
	})

	t.Run("DiscoveryWithCLIFlagEquals", func(t *testing.T) {
		opts := FileDiscoveryOptions{
			CLIFlag: "--settings",
			Args:    []string{"-v", "--settings=/etc/app/settings.toml"},
		}

		path, found := DiscoverFile(opts)
		assert.True(t, found)
		assert.Equal(t, "/etc/app/settings.toml", path)
	})

	t.Run("DiscoveryWithEnvVar", func(t *testing.T) {
		settingsFile := filepath.Join(t.TempDir(), "env.toml")
		writeFile(t, settingsFile, `test = "envvalue"`)
		t.Setenv("MYAPP_SETTINGS", settingsFile)

		opts := DefaultDiscoveryOptions("myapp")
		opts.Args = nil

		s, err := NewBuilder("myapp").
			WithDefaults(defaults).
			WithFileDiscovery(opts).
			Build()

		require.NoError(t, err)

		val, err := s.Get("test")
		require.NoError(t, err)
		assert.Equal(t, "envvalue", val)
	})

	t.Run("DiscoveryInSearchPath", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "settings.yaml"), "test: yamlvalue\n")

		opts := FileDiscoveryOptions{
			Name:       "myapp",
			Extensions: []string{".toml", ".yaml"},
			Paths:      []string{filepath.Join(dir, "missing"), dir},
		}

		s, err := NewBuilder("myapp").
			WithDefaults(defaults).
			WithFileDiscovery(opts).
			Build()

		require.NoError(t, err)
		assert.IsType(t, YAMLCodec{}, s.Store().Codec())

		val, err := s.Get("test")
		require.NoError(t, err)
		assert.Equal(t, "yamlvalue", val)
	})

	t.Run("DiscoveryInXDG", func(t *testing.T) {
		configHome := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", configHome)
		t.Setenv("XDG_CONFIG_DIRS", "")
		writeFile(t, filepath.Join(configHome, "myapp", "settings.toml"), `test = "xdgvalue"`)

		opts := FileDiscoveryOptions{
			Name:       "myapp",
			Extensions: []string{".toml"},
			UseXDG:     true,
		}

		path, found := DiscoverFile(opts)
		require.True(t, found)
		assert.Equal(t, filepath.Join(configHome, "myapp", "settings.toml"), path)
	})

	t.Run("DiscoveryPrecedence", func(t *testing.T) {
		dir := t.TempDir()
		cliFile := filepath.Join(dir, "cli.toml")
		envFile := filepath.Join(dir, "env.toml")
		writeFile(t, cliFile, `test = "clifile"`)
		writeFile(t, envFile, `test = "envfile"`)
		t.Setenv("MYAPP_SETTINGS", envFile)

		opts := DefaultDiscoveryOptions("myapp")
		opts.Args = []string{"--settings", cliFile}

		path, found := DiscoverFile(opts)
		require.True(t, found)
		assert.Equal(t, cliFile, path)
	})

	t.Run("NotFoundKeepsDefaultPath", func(t *testing.T) {
		configHome := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", configHome)

		opts := FileDiscoveryOptions{
			Name:       "myapp",
			Extensions: []string{".toml"},
			Paths:      []string{t.TempDir()},
		}
		_, found := DiscoverFile(opts)
		assert.False(t, found)

		s, err := NewBuilder("myapp").
			WithDefaults(defaults).
			WithFileDiscovery(opts).
			Build()

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(configHome, "myapp", "settings.toml"), s.FilePath())
	})
}

func TestDefaultFilePath(t *testing.T) {
	t.Run("XDGConfigHome", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")

		path, err := DefaultFilePath("myapp", "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/custom/config", "myapp", "settings.toml"), path)

		path, err = DefaultFilePath("myapp", "yaml")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/custom/config", "myapp", "settings.yaml"), path)
	})

	t.Run("InvalidName", func(t *testing.T) {
		_, err := DefaultFilePath("../escape", "toml")
		assert.ErrorIs(t, err, ErrTypeHint)
	})

	t.Run("DefaultDiscoveryOptions", func(t *testing.T) {
		opts := DefaultDiscoveryOptions("my-app")
		assert.Equal(t, "MY_APP_SETTINGS", opts.EnvVar)
		assert.Equal(t, "--settings", opts.CLIFlag)
		assert.True(t, opts.UseXDG)
		assert.True(t, opts.UseCurrentDir)
	})
}
