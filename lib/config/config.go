package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	yaml "github.com/goccy/go-yaml"
)

//go:embed defaults.yaml
var defaults []byte

type Config struct {
	Window      WindowCfg
	Context     ContextCfg
	ClearColour Colour `yaml:"clear_colour"`
	CheckErrors bool   `yaml:"check_errors"`
	LogLevel    string `yaml:"log_level"`
}

type WindowCfg struct {
	Title        string
	Width        int
	Height       int
	Resizable    bool
	SwapInterval int `yaml:"swap_interval"`
}

type ContextCfg struct {
	Major             int
	Minor             int
	ForwardCompatible bool `yaml:"forward_compatible"`
}

// Default returns the configuration compiled into the binary. The window
// is not externally configurable, so this is the only config main uses.
func Default() (*Config, error) {
	cfg, err := Decode(bytes.NewReader(defaults))
	if err != nil {
		return nil, fmt.Errorf("embedded defaults are broken: %w", err)
	}
	return cfg, nil
}

func Decode(r io.Reader) (*Config, error) {
	m := yaml.NewDecoder(r)
	cfg := &Config{}
	err := m.Decode(cfg)
	if err != nil {
		return nil, err
	}
	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	err := c.Window.Validate()
	if err != nil {
		return fmt.Errorf("window is invalid: %w", err)
	}
	err = c.Context.Validate()
	if err != nil {
		return fmt.Errorf("context is invalid: %w", err)
	}
	err = c.ClearColour.Validate()
	if err != nil {
		return fmt.Errorf("clear_colour is invalid: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel, defaulting to info when it is empty.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("%s is not a valid log_level: %w", c.LogLevel, err)
	}
	return l, nil
}

// GLSLVersion is the #version number matching the requested context,
// e.g. 330 for a 3.3 context.
func (c *ContextCfg) GLSLVersion() int {
	return c.Major*100 + c.Minor*10
}

func (c *ContextCfg) String() string {
	return fmt.Sprintf("%d.%d core", c.Major, c.Minor)
}

func (c *ContextCfg) Validate() error {
	if c.Major < 3 || (c.Major == 3 && c.Minor < 3) {
		return fmt.Errorf("a core profile context needs at least version 3.3, got %d.%d", c.Major, c.Minor)
	}
	if c.Minor < 0 || c.Minor > 9 {
		return fmt.Errorf("minor version %d is out of range", c.Minor)
	}
	return nil
}

func (w *WindowCfg) Validate() error {
	if strings.TrimSpace(w.Title) == "" {
		return fmt.Errorf("title must be specified")
	}
	if w.Width <= 0 || w.Height <= 0 {
		return fmt.Errorf("size must be positive, got %dx%d", w.Width, w.Height)
	}
	if w.SwapInterval < 0 {
		return fmt.Errorf("swap_interval must be nonnegative")
	}
	return nil
}

// Colour is an RGBA colour given in YAML as a list of three or four floats.
// A missing alpha component is taken as 1.
type Colour mgl32.Vec4

func (c *Colour) UnmarshalYAML(b []byte) error {
	var components []float32

	err := yaml.Unmarshal(b, &components)
	if err != nil {
		return err
	}

	switch len(components) {
	case 3:
		*c = Colour{components[0], components[1], components[2], 1}
	case 4:
		*c = Colour{components[0], components[1], components[2], components[3]}
	default:
		return fmt.Errorf("a colour needs 3 or 4 components, got %d", len(components))
	}
	return nil
}

func (c Colour) Validate() error {
	for i, v := range c {
		if v < 0 || v > 1 {
			return fmt.Errorf("component %d (%g) is outside [0, 1]", i, v)
		}
	}
	return nil
}

func (c Colour) Vec4() mgl32.Vec4 {
	return mgl32.Vec4(c)
}
