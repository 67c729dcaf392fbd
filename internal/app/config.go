package app

import (
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/apsimgo/internal/config"
)

// SoilEdit is one --organic, --physical or --chemical spec. An empty Path
// edits every section of Kind in the selected simulations.
type SoilEdit struct {
	Kind   string
	Path   string
	Values map[string]any
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Model         string
	Out           string
	Edits         []*config.Edit
	SoilEdits     []*SoilEdit
	Tables        []string
	MetFile       string
	Lon           float64
	Lat           float64
	HasLonLat     bool
	WebData       string
	WeatherSource string
	SoilConfig    string
	Save          string
	Preview       bool
	Simulations   []string
	Clean         bool
	MultiThreaded bool
	BinPath       string

	WorkflowPaths []string
	Workers       int

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// Workflow reports whether the config selects batch workflow mode.
func (c *Config) Workflow() bool {
	return len(c.WorkflowPaths) > 0
}

// NewConfig validates cfg and fills defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WebData == "" {
		cfg.WebData = config.WebDataNone
	}
	if cfg.Model == "" && !cfg.Workflow() {
		return nil, errors.New("either a model or a workflow is required")
	}
	if cfg.Model != "" && cfg.Workflow() {
		return nil, errors.New("a model and a workflow cannot be combined")
	}
	if !slices.Contains([]string{config.WebDataNone, config.WebDataSoil, config.WebDataWeather, config.WebDataBoth}, cfg.WebData) {
		return nil, fmt.Errorf("get_web_data must be one of both, s, w, no; got %q", cfg.WebData)
	}
	if cfg.Workers < 0 {
		return nil, errors.New("workers cannot be negative")
	}
	if cfg.Workflow() {
		return &cfg, nil
	}

	if cfg.WebData != config.WebDataNone && !cfg.HasLonLat {
		return nil, fmt.Errorf("lonlat is required when get_web_data is %q", cfg.WebData)
	}
	if cfg.HasLonLat && (cfg.Lon < -180 || cfg.Lon > 180 || cfg.Lat < -90 || cfg.Lat > 90) {
		return nil, fmt.Errorf("lonlat %g,%g is out of range", cfg.Lon, cfg.Lat)
	}
	if cfg.MetFile != "" && (cfg.WebData == config.WebDataWeather || cfg.WebData == config.WebDataBoth) {
		return nil, errors.New("met_file cannot be combined with downloaded weather")
	}
	for _, e := range cfg.Edits {
		if e.Path == "" {
			return nil, errors.New("every management spec needs a path")
		}
	}
	return &cfg, nil
}
