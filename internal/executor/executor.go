// Package executor runs a batch workflow: one base model over many points,
// each point on its own copy of the tree, fanned out over a worker pool and
// joined before Run returns.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/apsimgo/internal/config"
	"github.com/specialistvlad/apsimgo/internal/ctxlog"
	"github.com/specialistvlad/apsimgo/internal/session"
	"github.com/specialistvlad/apsimgo/internal/soil"
	"github.com/specialistvlad/apsimgo/internal/weather"
)

// SoilSource returns the soil profile found at a location.
type SoilSource interface {
	Fetch(ctx context.Context, lon, lat float64) (*soil.Profile, error)
}

// Executor runs every point of a workflow.
type Executor struct {
	wf          *config.Workflow
	numWorkers  int
	sessionOpts []session.Option
	weather     weather.Provider
	soil        SoilSource
	soilCfg     *soil.Config
	observers   []Observer

	wg   sync.WaitGroup
	done atomic.Int64
}

// Option configures an Executor.
type Option func(*Executor)

// WithSessionOptions passes options to every point's session, e.g. a fake
// engine in tests or an explicit bin directory.
func WithSessionOptions(opts ...session.Option) Option {
	return func(e *Executor) { e.sessionOpts = append(e.sessionOpts, opts...) }
}

// WithWeather overrides the weather provider chosen from the workflow.
func WithWeather(p weather.Provider) Option {
	return func(e *Executor) { e.weather = p }
}

// WithSoil overrides the soil source. Defaults to SSURGO.
func WithSoil(s SoilSource) Option {
	return func(e *Executor) { e.soil = s }
}

// WithObserver registers an observer for point events.
func WithObserver(o Observer) Option {
	return func(e *Executor) { e.observers = append(e.observers, o) }
}

// New prepares an executor for wf. The workflow must already be validated.
func New(wf *config.Workflow, opts ...Option) (*Executor, error) {
	e := &Executor{wf: wf, numWorkers: wf.Workers}
	for _, opt := range opts {
		opt(e)
	}
	if e.numWorkers < 1 {
		e.numWorkers = 1
	}

	e.soilCfg = soil.DefaultConfig()
	if wf.SoilConfig != "" {
		cfg, err := soil.LoadConfig(wf.SoilConfig)
		if err != nil {
			return nil, err
		}
		e.soilCfg = cfg
	}

	if e.wantsWeather() && e.weather == nil {
		p, err := weather.NewProvider(wf.WeatherSource)
		if err != nil {
			return nil, err
		}
		e.weather = p
	}
	if e.wantsSoil() && e.soil == nil {
		e.soil = soil.NewSSURGO(soil.WithConfig(e.soilCfg))
	}
	return e, nil
}

func (e *Executor) wantsWeather() bool {
	return e.wf.WebData == config.WebDataWeather || e.wf.WebData == config.WebDataBoth
}

func (e *Executor) wantsSoil() bool {
	return e.wf.WebData == config.WebDataSoil || e.wf.WebData == config.WebDataBoth
}

// Run executes every point and waits for all of them. A failing point does
// not stop the others; the returned error joins every point failure.
func (e *Executor) Run(ctx context.Context) ([]*PointResult, error) {
	logger := ctxlog.FromContext(ctx)

	base, source, err := session.Load(ctx, e.wf.Model, e.sessionOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load base model: %w", err)
	}
	if err := os.MkdirAll(e.wf.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	points := e.wf.Points
	out := make([]*PointResult, len(points))
	jobs := make(chan int, len(points))
	for i := range points {
		jobs <- i
	}
	close(jobs)

	workers := min(e.numWorkers, len(points))
	e.done.Store(0)
	e.wg.Add(len(points))
	logger.Info("Starting workflow.", "points", len(points), "workers", workers, "pool", e.wf.Pool)
	start := time.Now()
	for i := 0; i < workers; i++ {
		go e.worker(ctx, base, source, jobs, out, i)
	}
	e.wg.Wait()

	var errs []error
	failed := 0
	for _, r := range out {
		if r.Err != nil {
			failed++
			errs = append(errs, fmt.Errorf("point %q: %w", r.Point.Name, r.Err))
		}
	}
	logger.Info("Workflow finished.", "points", len(points), "failed", failed, "duration", time.Since(start))
	if len(errs) > 0 {
		return out, fmt.Errorf("%d of %d points failed: %w", failed, len(points), errors.Join(errs...))
	}
	return out, nil
}

func (e *Executor) observe(ctx context.Context, ev Event) {
	for _, o := range e.observers {
		o.Observe(ctx, ev)
	}
}
