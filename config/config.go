// Package config provides configuration loading and access for the particle engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine and host configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Field      FieldConfig      `yaml:"field"`
	Origin     OriginConfig     `yaml:"origin"`
	Simulation SimulationConfig `yaml:"simulation"`
	Emission   EmissionConfig   `yaml:"emission"`
	Emitters   []EmitterConfig  `yaml:"emitters"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width       int  `yaml:"width"`
	Height      int  `yaml:"height"`
	TargetFPS   int  `yaml:"target_fps"`
	PointStride int  `yaml:"point_stride"` // Draw every Nth texel
	Visible     bool `yaml:"visible"`
}

// FieldConfig holds the particle field dimensions.
// Size is fixed for the lifetime of an engine; changing it means building a new engine.
type FieldConfig struct {
	Size      int `yaml:"size"`       // Side of the square field; N = size*size
	MaxTexels int `yaml:"max_texels"` // Allocation budget across all textures (0 = unlimited)
	Workers   int `yaml:"workers"`    // Pass workers (0 = GOMAXPROCS)
}

// OriginConfig selects the generator for the origin reference texture.
type OriginConfig struct {
	Shape          string  `yaml:"shape"` // sphere, fibonacci, grid, spiral, image, zero
	Radius         float64 `yaml:"radius"`
	Branches       int     `yaml:"branches"` // Spiral arms
	Spread         float64 `yaml:"spread"`   // Grid/spiral extent
	ImagePath      string  `yaml:"image_path"`
	ImageThreshold int     `yaml:"image_threshold"` // Max channel value counted as a dark pixel
	TargetShape    string  `yaml:"target_shape"`    // Optional second origin blended by simulation.morph
}

// SimulationConfig holds the STEP parameters.
type SimulationConfig struct {
	Damping       float64    `yaml:"damping"`
	Attraction    float64    `yaml:"attraction"`
	Swirl         float64    `yaml:"swirl"`
	Epsilon       float64    `yaml:"epsilon"`
	RepelRadius   float64    `yaml:"repel_radius"`
	RepelStrength float64    `yaml:"repel_strength"`
	Gravity       [3]float64 `yaml:"gravity"`
	DT            float64    `yaml:"dt"`
	Morph         float64    `yaml:"morph"` // Blend from origin (0) to target origin (1)
}

// EmissionConfig holds emission parameters.
type EmissionConfig struct {
	CountPerTick int        `yaml:"count_per_tick"`
	ImpulseScale float64    `yaml:"impulse_scale"`
	Flip         string     `yaml:"flip"` // random, never, always
	Randomness   float64    `yaml:"randomness"`
	Park         [3]float64 `yaml:"park"` // Where unemitted particles wait
}

// EmitterConfig describes an emitter registered at construction.
// Orbit fields drive the demo host; the engine only reads Position.
type EmitterConfig struct {
	Position    [3]float64 `yaml:"position"`
	OrbitRadius float64    `yaml:"orbit_radius"`
	OrbitSpeed  float64    `yaml:"orbit_speed"` // Radians per second
}

// TelemetryConfig holds telemetry and logging parameters.
type TelemetryConfig struct {
	StatsWindow int    `yaml:"stats_window"` // Ticks between field stats
	PerfWindow  int    `yaml:"perf_window"`  // Ticks averaged by the perf collector
	MetricsAddr string `yaml:"metrics_addr"` // Empty disables the /metrics server
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	N         int
	Gravity32 [3]float32
	Park32    [3]float32
	DT32      float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Clone returns a deep copy of the configuration with derived values
// recomputed, so fields edited in place are picked up.
func (c *Config) Clone() *Config {
	out := *c
	out.Emitters = append([]EmitterConfig(nil), c.Emitters...)
	out.computeDerived()
	return &out
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.N = c.Field.Size * c.Field.Size
	c.Derived.DT32 = float32(c.Simulation.DT)
	for i := 0; i < 3; i++ {
		c.Derived.Gravity32[i] = float32(c.Simulation.Gravity[i])
		c.Derived.Park32[i] = float32(c.Emission.Park[i])
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
