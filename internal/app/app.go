package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/apsimgo/internal/config"
	"github.com/specialistvlad/apsimgo/internal/executor"
	"github.com/specialistvlad/apsimgo/internal/session"
	"github.com/specialistvlad/apsimgo/internal/weather"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	loader     config.Loader
	metrics    *metrics
	httpServer *http.Server

	sessionOpts []session.Option
	execOpts    []executor.Option
	weather     weather.Provider
	soil        executor.SoilSource
}

// Option configures an App.
type Option func(*App)

// WithSessionOptions passes options to every session the app opens.
func WithSessionOptions(opts ...session.Option) Option {
	return func(a *App) { a.sessionOpts = append(a.sessionOpts, opts...) }
}

// WithExecutorOptions passes options to the workflow executor.
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(a *App) { a.execOpts = append(a.execOpts, opts...) }
}

// WithWeather replaces the weather provider selected by the config.
func WithWeather(p weather.Provider) Option {
	return func(a *App) { a.weather = p }
}

// WithSoil replaces the soil source.
func WithSoil(s executor.SoilSource) Option {
	return func(a *App) { a.soil = s }
}

// NewApp is the constructor for the main application. Results go to outW;
// logs go to logW through the app's own logger.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, opts ...Option) *App {
	a := &App{
		outW:    outW,
		logger:  newLogger(cfg.LogLevel, cfg.LogFormat, logW),
		config:  cfg,
		loader:  loader,
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger.Debug("Logger configured successfully.")
	return a
}
