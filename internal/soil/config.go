package soil

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Curve extrapolates a property below the deepest measured horizon,
// starting from the value at that horizon's mid-depth.
type Curve struct {
	// Shape is "exponential" or "linear".
	Shape string `yaml:"shape"`
	// Rate is per mm of depth: a decay constant for exponential curves and
	// a slope for linear ones.
	Rate float64 `yaml:"rate"`
	// Min and Max bound the curve. Zero means unbounded.
	Min float64 `yaml:"min,omitempty"`
	Max float64 `yaml:"max,omitempty"`
}

// At evaluates the curve dz mm below an anchor value.
func (c Curve) At(anchor, dz float64) float64 {
	var v float64
	switch c.Shape {
	case "exponential":
		v = anchor * math.Exp(-c.Rate*dz)
	case "linear":
		v = anchor + c.Rate*dz
	default:
		v = anchor
	}
	if c.Min != 0 && v < c.Min {
		v = c.Min
	}
	if c.Max != 0 && v > c.Max {
		v = c.Max
	}
	return v
}

func (c Curve) validate(field string) error {
	switch c.Shape {
	case "exponential", "linear":
	default:
		return fmt.Errorf("curve %s: unknown shape %q (want exponential or linear)", field, c.Shape)
	}
	if c.Min != 0 && c.Max != 0 && c.Min > c.Max {
		return fmt.Errorf("curve %s: min %g exceeds max %g", field, c.Min, c.Max)
	}
	return nil
}

// Config holds the conversion constants and extrapolation curves.
type Config struct {
	// OMToCarbon divides organic matter to give organic carbon.
	OMToCarbon float64 `yaml:"om_to_carbon"`
	// ParticleDensity (g/cc) bounds saturation: SAT = 1 - BD/density - SATMargin.
	ParticleDensity float64 `yaml:"particle_density"`
	SATMargin       float64 `yaml:"sat_margin"`
	// Curves is keyed by model field name, for example "Carbon".
	Curves map[string]Curve `yaml:"curves"`
}

// DefaultConfig returns the constants used when no file is given.
func DefaultConfig() *Config {
	return &Config{OMToCarbon: 1.72, ParticleDensity: 2.65, SATMargin: 0.02}
}

// ParseConfig decodes YAML over the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid soil config: %w", err)
	}
	if cfg.OMToCarbon <= 0 {
		return nil, fmt.Errorf("invalid soil config: om_to_carbon must be positive")
	}
	if cfg.ParticleDensity <= 0 {
		return nil, fmt.Errorf("invalid soil config: particle_density must be positive")
	}
	for field, c := range cfg.Curves {
		if err := c.validate(field); err != nil {
			return nil, fmt.Errorf("invalid soil config: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfig reads a YAML config file. An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read soil config: %w", err)
	}
	return ParseConfig(data)
}
