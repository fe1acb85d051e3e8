// Package config loads engine settings from TOML or YAML files. Values missing from a
// file keep their defaults, and unknown keys are rejected.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnsupportedFormat is returned for a file extension other than .toml, .yaml or .yml.
	ErrUnsupportedFormat = errors.New("config: unsupported format")

	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("config: invalid value")
)

// Format is a configuration file syntax.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// WindowConfig describes the window and its graphics context.
type WindowConfig struct {
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	Title  string `toml:"title" yaml:"title"`
	VSync  bool   `toml:"vsync" yaml:"vsync"`

	// GLMajor and GLMinor are the preferred context version. Creation falls back to
	// 3.3 when it is not available.
	GLMajor int `toml:"gl_major" yaml:"gl_major"`
	GLMinor int `toml:"gl_minor" yaml:"gl_minor"`
}

// LoopConfig describes the fixed-step frame loop.
type LoopConfig struct {
	// TickRate is the number of physics steps per second.
	TickRate int `toml:"tick_rate" yaml:"tick_rate"`

	// MaxSubSteps bounds the physics steps of one frame after a stall.
	MaxSubSteps int `toml:"max_sub_steps" yaml:"max_sub_steps"`
}

// PhysicsConfig describes collision indexing and player resolution.
type PhysicsConfig struct {
	OctreeDepth int     `toml:"octree_depth" yaml:"octree_depth"`
	Iterations  int     `toml:"iterations" yaml:"iterations"`
	GroundDot   float32 `toml:"ground_dot" yaml:"ground_dot"`
	SnapDot     float32 `toml:"snap_dot" yaml:"snap_dot"`
	Gravity     float32 `toml:"gravity" yaml:"gravity"`
}

// ShaderConfig describes where shader sources live and how they are processed.
type ShaderConfig struct {
	Dir         string            `toml:"dir" yaml:"dir"`
	IncludeDirs []string          `toml:"include_dirs" yaml:"include_dirs"`
	Defines     map[string]string `toml:"defines" yaml:"defines"`
	HotReload   bool              `toml:"hot_reload" yaml:"hot_reload"`
}

// RendererConfig describes frame-wide rendering settings.
type RendererConfig struct {
	ClearColor          [4]float32 `toml:"clear_color" yaml:"clear_color"`
	ShadowMapResolution int32      `toml:"shadow_map_resolution" yaml:"shadow_map_resolution"`
	ShadowBias          float32    `toml:"shadow_bias" yaml:"shadow_bias"`
}

// EngineConfig is the root of a configuration file.
type EngineConfig struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Loop     LoopConfig     `toml:"loop" yaml:"loop"`
	Physics  PhysicsConfig  `toml:"physics" yaml:"physics"`
	Shaders  ShaderConfig   `toml:"shaders" yaml:"shaders"`
	Renderer RendererConfig `toml:"renderer" yaml:"renderer"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - EngineConfig: the defaults
func Default() EngineConfig {
	return EngineConfig{
		Window: WindowConfig{
			Width:   1280,
			Height:  720,
			Title:   "oxy-gl",
			VSync:   true,
			GLMajor: 4,
			GLMinor: 1,
		},
		Loop: LoopConfig{
			TickRate:    60,
			MaxSubSteps: 5,
		},
		Physics: PhysicsConfig{
			OctreeDepth: 6,
			Iterations:  3,
			GroundDot:   0.7,
			SnapDot:     0.85,
			Gravity:     -9.81,
		},
		Shaders: ShaderConfig{
			Dir:       "shaders",
			HotReload: false,
		},
		Renderer: RendererConfig{
			ClearColor:          [4]float32{0.1, 0.1, 0.12, 1},
			ShadowMapResolution: 2048,
			ShadowBias:          0.005,
		},
	}
}

// FormatOf picks the format from the file extension.
//
// Parameters:
//   - path: the file name
//
// Returns:
//   - Format: the format
//   - error: ErrUnsupportedFormat for an unknown extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Load reads the file at path over the defaults and validates the result.
//
// Parameters:
//   - path: a .toml, .yaml or .yml file
//
// Returns:
//   - EngineConfig: the configuration
//   - error: an error if the file cannot be read, parsed or validated
func Load(path string) (EngineConfig, error) {
	format, err := FormatOf(path)
	if err != nil {
		return EngineConfig{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Read(bufio.NewReader(f), format)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Read decodes a configuration from r over the defaults and validates the result.
//
// Parameters:
//   - r: the encoded configuration
//   - format: its syntax
//
// Returns:
//   - EngineConfig: the configuration
//   - error: an error if r cannot be parsed or a value is invalid
func Read(r io.Reader, format Format) (EngineConfig, error) {
	cfg := Default()
	var err error
	switch format {
	case FormatTOML:
		err = toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			// an empty document keeps the defaults
			err = nil
		}
	default:
		return EngineConfig{}, ErrUnsupportedFormat
	}
	if err != nil {
		return EngineConfig{}, err
	}
	return cfg, cfg.Validate()
}

// Write encodes cfg to w.
//
// Parameters:
//   - w: the destination
//   - cfg: the configuration
//   - format: the syntax
//
// Returns:
//   - error: an encoding error
func Write(w io.Writer, cfg EngineConfig, format Format) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(cfg)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}
	return ErrUnsupportedFormat
}

// Save writes cfg to path in the format of its extension.
//
// Parameters:
//   - path: a .toml, .yaml or .yml file
//   - cfg: the configuration
//
// Returns:
//   - error: an error if the extension is unknown or the file cannot be written
func Save(path string, cfg EngineConfig) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	if err := Write(f, cfg, format); err != nil {
		f.Close()
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return f.Close()
}

// Validate reports the first value outside its allowed range.
func (c EngineConfig) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Window.GLMajor < 3 || (c.Window.GLMajor == 3 && c.Window.GLMinor < 3):
		return fmt.Errorf("%w: GL %d.%d is older than 3.3", ErrInvalid, c.Window.GLMajor, c.Window.GLMinor)
	case c.Loop.TickRate <= 0:
		return fmt.Errorf("%w: tick rate %d", ErrInvalid, c.Loop.TickRate)
	case c.Loop.MaxSubSteps <= 0:
		return fmt.Errorf("%w: max sub steps %d", ErrInvalid, c.Loop.MaxSubSteps)
	case c.Physics.OctreeDepth <= 0 || c.Physics.Iterations <= 0:
		return fmt.Errorf("%w: octree depth %d, iterations %d", ErrInvalid, c.Physics.OctreeDepth, c.Physics.Iterations)
	case c.Physics.GroundDot <= 0 || c.Physics.GroundDot > 1:
		return fmt.Errorf("%w: ground dot %g", ErrInvalid, c.Physics.GroundDot)
	case c.Physics.SnapDot < c.Physics.GroundDot || c.Physics.SnapDot > 1:
		return fmt.Errorf("%w: snap dot %g must lie between ground dot and 1", ErrInvalid, c.Physics.SnapDot)
	case c.Renderer.ShadowMapResolution <= 0:
		return fmt.Errorf("%w: shadow map resolution %d", ErrInvalid, c.Renderer.ShadowMapResolution)
	}
	return nil
}
