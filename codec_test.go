// FILE: lixenwraith/settings/codec_test.go
package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return Document{
		"name":  "demo",
		"ratio": 2.5,
		"flags": []any{true, false},
		"server": map[string]any{
			"host": "localhost",
			"port": int64(8080),
			"tls":  map[string]any{"enabled": false},
		},
		"plugins": map[string]any{},
	}
}

// TestCodecRoundTrip tests that both file formats preserve a document
func TestCodecRoundTrip(t *testing.T) {
	for _, codec := range []Codec{TOMLCodec{}, YAMLCodec{}} {
		t.Run(codec.Extension(), func(t *testing.T) {
			data, err := codec.Encode(sampleDocument())
			require.NoError(t, err)
			assert.NotEmpty(t, data)

			doc, err := codec.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, sampleDocument(), doc)
		})
	}
}

func TestTOMLCodecWritesTables(t *testing.T) {
	data, err := TOMLCodec{}.Encode(Document{
		"a": map[string]any{"b": int64(1), "c": int64(2)},
	})
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "[a]")
	assert.Contains(t, content, "b = 1")
	assert.Contains(t, content, "c = 2")
}

func TestCodecDecode(t *testing.T) {
	t.Run("EmptyInput", func(t *testing.T) {
		for _, codec := range []Codec{TOMLCodec{}, YAMLCodec{}} {
			doc, err := codec.Decode(nil)
			require.NoError(t, err, codec.Extension())
			assert.Empty(t, doc)
		}
	})

	t.Run("QuotedKeys", func(t *testing.T) {
		doc, err := TOMLCodec{}.Decode([]byte(`"my key" = 1` + "\n"))
		require.NoError(t, err)
		assert.Equal(t, Document{"my key": int64(1)}, doc)
	})

	t.Run("YAMLIntegersNormalized", func(t *testing.T) {
		doc, err := YAMLCodec{}.Decode([]byte("server:\n  port: 8080\n"))
		require.NoError(t, err)
		assert.Equal(t, Document{"server": map[string]any{"port": int64(8080)}}, doc)
	})

	t.Run("Malformed", func(t *testing.T) {
		tests := []struct {
			name  string
			codec Codec
			data  string
		}{
			{"TOMLMissingValue", TOMLCodec{}, "a = \n"},
			{"TOMLUnclosedTable", TOMLCodec{}, "[server\nport = 1\n"},
			{"TOMLDuplicateKey", TOMLCodec{}, "a = 1\na = 2\n"},
			{"YAMLUnclosedFlow", YAMLCodec{}, "a: [1, 2\n"},
			{"YAMLTopLevelList", YAMLCodec{}, "- a\n- b\n"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := tt.codec.Decode([]byte(tt.data))
				assert.ErrorIs(t, err, ErrDecode)
			})
		}
	})
}

func TestCodecSelection(t *testing.T) {
	assert.IsType(t, YAMLCodec{}, CodecForPath("/etc/app/settings.yaml"))
	assert.IsType(t, YAMLCodec{}, CodecForPath("settings.YML"))
	assert.IsType(t, TOMLCodec{}, CodecForPath("settings.toml"))
	assert.IsType(t, TOMLCodec{}, CodecForPath("settings"))

	for _, name := range []string{"toml", "TOML", "tml", ""} {
		codec, err := CodecByName(name)
		require.NoError(t, err)
		assert.IsType(t, TOMLCodec{}, codec, name)
	}
	for _, name := range []string{"yaml", "yml"} {
		codec, err := CodecByName(name)
		require.NoError(t, err)
		assert.IsType(t, YAMLCodec{}, codec, name)
	}

	_, err := CodecByName("json")
	assert.ErrorIs(t, err, ErrTypeHint)
}
