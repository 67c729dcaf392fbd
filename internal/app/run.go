package app

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/specialistvlad/apsimgo/internal/apsimx"
	"github.com/specialistvlad/apsimgo/internal/config"
	"github.com/specialistvlad/apsimgo/internal/ctxlog"
	"github.com/specialistvlad/apsimgo/internal/executor"
	"github.com/specialistvlad/apsimgo/internal/locator"
	"github.com/specialistvlad/apsimgo/internal/progress"
	"github.com/specialistvlad/apsimgo/internal/session"
	"github.com/specialistvlad/apsimgo/internal/soil"
	"github.com/specialistvlad/apsimgo/internal/weather"
)

// Run executes the main application logic based on the app's configuration.
func (a *App) Run(ctx context.Context) (err error) {
	a.ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer func() {
		if cerr := a.closeHealthCheckServer(); err == nil {
			err = cerr
		}
	}()

	run := a.runSingle
	if a.config.Workflow() {
		run = a.runWorkflow
	}
	if a.config.BinPath == "" {
		return run(a.ctx)
	}
	a.sessionOpts = append(a.sessionOpts, session.WithBinDir(a.config.BinPath))
	return locator.WithBinPath(a.ctx, a.config.BinPath, func() error {
		return run(a.ctx)
	})
}

// runSingle loads one model, applies the CLI edits and either previews,
// saves or runs it.
func (a *App) runSingle(ctx context.Context) (err error) {
	cfg := a.config
	logger := ctxlog.FromContext(ctx)

	opts := slices.Clone(a.sessionOpts)
	if cfg.Out != "" {
		opts = append(opts, session.WithOut(cfg.Out), session.WithKeepResults(true))
	}
	s, err := session.New(ctx, cfg.Model, opts...)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	defer func() {
		if cerr := s.Close(ctx); err == nil {
			err = cerr
		}
	}()

	edited, err := a.applyEdits(ctx, s)
	if err != nil {
		return err
	}

	if cfg.Save != "" {
		if err := s.Save(cfg.Save); err != nil {
			return fmt.Errorf("failed to save model: %w", err)
		}
		logger.Info("Model saved.", "path", cfg.Save)
	}
	if cfg.Preview {
		return a.writePreview(s, edited)
	}

	tables, err := s.Run(ctx, session.RunOptions{
		ReportNames:   cfg.Tables,
		Simulations:   cfg.Simulations,
		Clean:         cfg.Clean,
		MultiThreaded: cfg.MultiThreaded,
	})
	a.metrics.run(err)
	if err != nil {
		return err
	}
	for _, name := range s.ReportNames() {
		fmt.Fprintf(a.outW, "# %s\n", name)
		if err := tables[name].WriteCSV(a.outW); err != nil {
			return err
		}
	}
	return nil
}

// applyEdits applies management, soil, weather file and web data edits in
// that order and returns the nodes they touched.
func (a *App) applyEdits(ctx context.Context, s *session.Session) ([]*apsimx.Node, error) {
	cfg := a.config
	var edited []*apsimx.Node
	touch := func(nodes ...*apsimx.Node) {
		for _, n := range nodes {
			if !slices.Contains(edited, n) {
				edited = append(edited, n)
			}
		}
	}

	for _, e := range cfg.Edits {
		n, err := s.Edit(e.Path, e.Values)
		if err != nil {
			return nil, fmt.Errorf("management %s: %w", e.Path, err)
		}
		touch(n)
	}
	for _, e := range cfg.SoilEdits {
		if e.Path != "" {
			n, err := s.Edit(e.Path, e.Values)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", e.Kind, e.Path, err)
			}
			touch(n)
			continue
		}
		nodes, err := s.EditModel(e.Kind, "", cfg.Simulations, e.Values)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Kind, err)
		}
		touch(nodes...)
	}
	if cfg.MetFile != "" {
		nodes, err := s.EditModel("Weather", "", cfg.Simulations, map[string]any{"met_file": cfg.MetFile})
		if err != nil {
			return nil, err
		}
		touch(nodes...)
	}

	if cfg.WebData == config.WebDataWeather || cfg.WebData == config.WebDataBoth {
		p := a.weather
		if p == nil {
			var err error
			if p, err = weather.NewProvider(cfg.WeatherSource); err != nil {
				return nil, err
			}
		}
		path := filepath.Join(a.webDataDir(), fmt.Sprintf("weather_%.4f_%.4f%s", cfg.Lon, cfg.Lat, weather.MetExtension))
		if err := executor.AttachWeather(ctx, s, p, weather.Point{Lon: cfg.Lon, Lat: cfg.Lat}, cfg.Simulations, path); err != nil {
			return nil, fmt.Errorf("weather: %w", err)
		}
		touch(findIn(s.Root(), cfg.Simulations, "Weather")...)
	}
	if cfg.WebData == config.WebDataSoil || cfg.WebData == config.WebDataBoth {
		soilCfg := soil.DefaultConfig()
		if cfg.SoilConfig != "" {
			var err error
			if soilCfg, err = soil.LoadConfig(cfg.SoilConfig); err != nil {
				return nil, err
			}
		}
		src := a.soil
		if src == nil {
			src = soil.NewSSURGO(soil.WithConfig(soilCfg))
		}
		if err := executor.ReplaceSoil(ctx, s, src, cfg.Lon, cfg.Lat, cfg.Simulations, nil, soilCfg); err != nil {
			return nil, fmt.Errorf("soil: %w", err)
		}
		touch(findIn(s.Root(), cfg.Simulations, "Physical")...)
	}
	return edited, nil
}

// webDataDir is where downloaded met files go: next to the output model,
// or the working directory.
func (a *App) webDataDir() string {
	if a.config.Out != "" {
		return filepath.Dir(a.config.Out)
	}
	return "."
}

func findIn(root *apsimx.Node, simulations []string, kind string) []*apsimx.Node {
	sims, err := apsimx.Simulations(root, simulations...)
	if err != nil {
		return nil
	}
	var out []*apsimx.Node
	for _, sim := range sims {
		out = append(out, apsimx.FindAll(sim, kind, "")...)
	}
	return out
}

// runWorkflow loads the workflow files and runs every point.
func (a *App) runWorkflow(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	wf, err := a.loader.Load(ctx, a.config.WorkflowPaths...)
	if err != nil {
		return fmt.Errorf("failed to load workflow: %w", err)
	}
	if a.config.Workers > 0 {
		wf.Workers = a.config.Workers
	}
	logger.Debug("Workflow loaded.", "points", len(wf.Points), "workers", wf.Workers)

	opts := []executor.Option{
		executor.WithSessionOptions(a.sessionOpts...),
		executor.WithObserver(a.metrics),
	}
	if a.weather != nil {
		opts = append(opts, executor.WithWeather(a.weather))
	}
	if a.soil != nil {
		opts = append(opts, executor.WithSoil(a.soil))
	}
	if wf.Progress != nil {
		emitter, err := dialProgress(ctx, wf.Progress)
		if err != nil {
			return err
		}
		defer emitter.Close()
		opts = append(opts, executor.WithObserver(emitter))
	}
	opts = append(opts, a.execOpts...)

	ex, err := executor.New(wf, opts...)
	if err != nil {
		return err
	}
	logger.Info("Starting workflow execution...")
	results, runErr := ex.Run(ctx)
	if results != nil {
		if err := a.writeSummary(results); err != nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("execution failed: %w", runErr)
	}
	logger.Info("Workflow execution finished.")
	return nil
}

type progressObserver interface {
	executor.Observer
	Close()
}

var dialProgress = func(ctx context.Context, cfg *config.Progress) (progressObserver, error) {
	return progress.Dial(ctx, cfg, progress.DefaultConnectTimeout)
}
