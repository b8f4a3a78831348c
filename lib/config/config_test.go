package config

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.NotEmpty(t, cfg.Window.Title)
	assert.Equal(t, 3, cfg.Context.Major)
	assert.Equal(t, 3, cfg.Context.Minor)
	assert.True(t, cfg.Context.ForwardCompatible)
	assert.Equal(t, 330, cfg.Context.GLSLVersion())
	assert.Equal(t, mgl32.Vec4{0.08, 0.09, 0.10, 1.0}, cfg.ClearColour.Vec4())
	assert.False(t, cfg.CheckErrors)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

const validCfg = `
window:
  title: test
  width: 320
  height: 240
context:
  major: 4
  minor: 1
clear_colour: [0, 0.5, 1]
log_level: debug
`

func TestDecode(t *testing.T) {
	cfg, err := Decode(strings.NewReader(validCfg))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Window.Title)
	assert.Equal(t, 410, cfg.Context.GLSLVersion())
	assert.Equal(t, "4.1 core", cfg.Context.String())
	assert.Equal(t, Colour{0, 0.5, 1, 1}, cfg.ClearColour)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestDecodeRejects(t *testing.T) {
	tests := map[string]struct {
		replace, with string
		msg           string
	}{
		"old context":   {"major: 4\n  minor: 1", "major: 3\n  minor: 2", "at least version 3.3"},
		"zero width":    {"width: 320", "width: 0", "size must be positive"},
		"empty title":   {"title: test", "title: \"  \"", "title must be specified"},
		"short colour":  {"[0, 0.5, 1]", "[0, 0.5]", "3 or 4 components"},
		"bright colour": {"[0, 0.5, 1]", "[0, 1.5, 1]", "outside [0, 1]"},
		"bad log level": {"log_level: debug", "log_level: loud", "not a valid log_level"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			src := strings.Replace(validCfg, tt.replace, tt.with, 1)
			require.NotEqual(t, validCfg, src)

			_, err := Decode(strings.NewReader(src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
