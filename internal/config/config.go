package config

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Loader reads workflow files into the format-agnostic model.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Workflow, error)
}

// Pool modes. Both run every point on its own model copy; process mode
// additionally gives every point its own working directory and result
// store on disk, and keeps them after the run.
const (
	PoolThread  = "thread"
	PoolProcess = "process"
)

// Web data modes, matching the CLI's --get_web_data values.
const (
	WebDataNone    = "no"
	WebDataSoil    = "s"
	WebDataWeather = "w"
	WebDataBoth    = "both"
)

// Workflow is one batch run of a base model over a set of points.
type Workflow struct {
	Model         string
	OutDir        string
	Workers       int
	Pool          string
	Reports       []string
	Simulations   []string
	MultiThreaded bool
	WebData       string
	WeatherSource string
	SoilConfig    string
	SoilThickness []float64
	Progress      *Progress
	Edits         []*Edit
	Points        []*Point
}

// Edit is a set of field values for the node at Path.
type Edit struct {
	Path   string
	Values map[string]any
}

// Point is one location the workflow runs at, with optional edits applied
// after the workflow-wide ones.
type Point struct {
	Name  string
	Lon   float64
	Lat   float64
	Edits []*Edit
}

// Progress configures the socket.io endpoint progress events are sent to.
type Progress struct {
	URL                string
	Namespace          string
	Event              string
	InsecureSkipVerify bool
}

// Defaults fills unset fields.
func (w *Workflow) Defaults() {
	if w.Workers <= 0 {
		w.Workers = 1
	}
	if w.Pool == "" {
		w.Pool = PoolThread
	}
	if w.WebData == "" {
		w.WebData = WebDataNone
	}
	if w.Progress != nil && w.Progress.Event == "" {
		w.Progress.Event = "progress"
	}
}

// Validate reports every problem with the workflow at once.
func (w *Workflow) Validate() error {
	var errs []error
	if w.Model == "" {
		errs = append(errs, errors.New("model is required"))
	}
	if w.OutDir == "" {
		errs = append(errs, errors.New("out_dir is required"))
	}
	if !slices.Contains([]string{PoolThread, PoolProcess}, w.Pool) {
		errs = append(errs, fmt.Errorf("pool must be %q or %q, got %q", PoolThread, PoolProcess, w.Pool))
	}
	if !slices.Contains([]string{WebDataNone, WebDataSoil, WebDataWeather, WebDataBoth}, w.WebData) {
		errs = append(errs, fmt.Errorf("web_data must be one of both, s, w, no; got %q", w.WebData))
	}
	if len(w.Points) == 0 {
		errs = append(errs, errors.New("at least one point block is required"))
	}
	seen := map[string]bool{}
	for _, p := range w.Points {
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("point %q is defined more than once", p.Name))
		}
		seen[p.Name] = true
		if p.Lon < -180 || p.Lon > 180 || p.Lat < -90 || p.Lat > 90 {
			errs = append(errs, fmt.Errorf("point %q: coordinates %g,%g out of range", p.Name, p.Lon, p.Lat))
		}
		if strings.ContainsAny(p.Name, `/\`) {
			errs = append(errs, fmt.Errorf("point %q: name must not contain path separators", p.Name))
		}
	}
	for _, t := range w.SoilThickness {
		if t <= 0 {
			errs = append(errs, fmt.Errorf("soil_thickness values must be positive, got %g", t))
			break
		}
	}
	if w.Progress != nil && w.Progress.URL == "" {
		errs = append(errs, errors.New("progress block requires url"))
	}
	return errors.Join(errs...)
}
