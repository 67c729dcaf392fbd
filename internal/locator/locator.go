package locator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/specialistvlad/apsimgo/internal/ctxlog"
	"github.com/specialistvlad/apsimgo/internal/fsutil"
)

// State is the lifecycle state of a Locator.
type State int

const (
	Unconfigured State = iota
	Configured
	Loaded
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Configured:
		return "configured"
	case Loaded:
		return "loaded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EnvVars are consulted, in order, during auto-detection.
var EnvVars = []string{"APSIM_BIN_PATH", "APSIM_MODEL_PATH", "APSIM", "Models"}

// ErrBinaryNotFound is returned when no engine installation can be found.
var ErrBinaryNotFound = errors.New("engine binary not found")

// ConfigError reports a configured path that does not hold the engine.
type ConfigError struct {
	Source string
	Path   string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid engine path %q from %s: %v", e.Path, e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Locator tracks where the engine lives.
type Locator struct {
	mu sync.Mutex
	// detectMu serializes detection so concurrent loads probe and persist once.
	detectMu   sync.Mutex
	state      State
	binDir     string
	source     string
	runner     string
	configPath string
	getenv     func(string) string
	patterns   []string
	goos       string
}

// Option configures a Locator.
type Option func(*Locator)

// WithConfigPath sets the INI file used to persist the detected path.
func WithConfigPath(path string) Option {
	return func(l *Locator) { l.configPath = path }
}

// WithEnv replaces os.Getenv, mainly for tests.
func WithEnv(getenv func(string) string) Option {
	return func(l *Locator) { l.getenv = getenv }
}

// WithProbePatterns replaces the OS-specific glob patterns probed during
// auto-detection.
func WithProbePatterns(patterns ...string) Option {
	return func(l *Locator) { l.patterns = append([]string{}, patterns...) }
}

// WithGOOS overrides the operating system used to pick the runner name and
// probe patterns.
func WithGOOS(goos string) Option {
	return func(l *Locator) { l.goos = goos }
}

// New creates an unconfigured Locator.
func New(opts ...Option) *Locator {
	l := &Locator{
		getenv: os.Getenv,
		goos:   runtime.GOOS,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.configPath == "" {
		l.configPath = DefaultConfigPath()
	}
	if l.patterns == nil {
		l.patterns = probePatterns(l.goos, l.getenv)
	}
	return l
}

// State returns the current lifecycle state.
func (l *Locator) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// BinPath returns the configured bin directory, or "" when unconfigured.
func (l *Locator) BinPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.binDir
}

// SetBinPath configures the locator explicitly and persists the path.
func (l *Locator) SetBinPath(ctx context.Context, path string) error {
	dir, err := l.validate(path)
	if err != nil {
		return &ConfigError{Source: "explicit path", Path: path, Err: err}
	}
	l.configure(ctx, dir, "explicit path")
	l.persist(ctx, dir)
	return nil
}

// AutoDetect configures the locator from the environment, the filesystem or
// the persisted config, in that order, unless it is already configured.
func (l *Locator) AutoDetect(ctx context.Context) (string, error) {
	if dir := l.BinPath(); dir != "" {
		return dir, nil
	}
	l.detectMu.Lock()
	defer l.detectMu.Unlock()
	if dir := l.BinPath(); dir != "" {
		return dir, nil
	}
	return l.detect(ctx)
}

func (l *Locator) detect(ctx context.Context) (string, error) {
	logger := ctxlog.FromContext(ctx)

	for _, name := range EnvVars {
		val := l.getenv(name)
		if val == "" {
			continue
		}
		dir, err := l.validate(val)
		if err != nil {
			logger.Warn("Ignoring environment variable that does not point at the engine.", "env", name, "path", val, "error", err)
			continue
		}
		l.configure(ctx, dir, "env "+name)
		l.persist(ctx, dir)
		return dir, nil
	}

	for _, dir := range l.probe() {
		if dir, err := l.validate(dir); err == nil {
			l.configure(ctx, dir, "filesystem probe")
			l.persist(ctx, dir)
			return dir, nil
		}
	}

	saved, err := readConfig(l.configPath)
	if err != nil {
		logger.Debug("No usable persisted engine path.", "config", l.configPath, "error", err)
	} else if saved != "" {
		dir, err := l.validate(saved)
		if err != nil {
			return "", &ConfigError{Source: l.configPath, Path: saved, Err: err}
		}
		l.configure(ctx, dir, "config "+l.configPath)
		return dir, nil
	}

	return "", fmt.Errorf("%w: set one of %v, install the engine in a standard location, or pass an explicit bin path", ErrBinaryNotFound, EnvVars)
}

// Load pins the runner executable. It is idempotent: once Loaded, the same
// runner is returned regardless of later configuration changes.
func (l *Locator) Load(ctx context.Context) (string, error) {
	l.mu.Lock()
	if l.state == Loaded {
		runner := l.runner
		l.mu.Unlock()
		return runner, nil
	}
	l.mu.Unlock()

	dir, err := l.AutoDetect(ctx)
	if err != nil {
		return "", err
	}
	runner, err := l.runnerIn(dir)
	if err != nil {
		return "", &ConfigError{Source: "load", Path: dir, Err: err}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == Loaded {
		return l.runner, nil
	}
	l.runner = runner
	l.state = Loaded
	ctxlog.FromContext(ctx).Info("Engine runner loaded.", "runner", runner, "source", l.source)
	return runner, nil
}

// Runner returns the pinned runner, or an error if Load has not succeeded.
func (l *Locator) Runner() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Loaded {
		return "", fmt.Errorf("locator is %s, not loaded", l.state)
	}
	return l.runner, nil
}

func (l *Locator) configure(ctx context.Context, dir, source string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.binDir = dir
	l.source = source
	if l.state == Unconfigured {
		l.state = Configured
	}
	ctxlog.FromContext(ctx).Debug("Engine path configured.", "bin", dir, "source", source, "state", l.state)
}

// persist records dir in the INI config. Failing to write the config does
// not invalidate the detected path.
func (l *Locator) persist(ctx context.Context, dir string) {
	if l.configPath == "" {
		return
	}
	if err := writeConfig(l.configPath, dir); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to persist engine path.", "config", l.configPath, "error", err)
	}
}

// runnerNames lists the runner executable names for the locator's OS.
func (l *Locator) runnerNames() []string {
	if l.goos == "windows" {
		return []string{"Models.exe"}
	}
	return []string{"Models", "Models.exe"}
}

func (l *Locator) runnerIn(dir string) (string, error) {
	for _, name := range l.runnerNames() {
		candidate := filepath.Join(dir, name)
		if err := fsutil.CheckFile(candidate, ""); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no %v in %s", ErrBinaryNotFound, l.runnerNames(), dir)
}

// validate accepts either a bin directory or an install root whose bin
// subdirectory holds the runner, and returns the bin directory.
func (l *Locator) validate(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		// A path to the runner itself.
		if _, err := l.runnerIn(filepath.Dir(abs)); err == nil {
			return filepath.Dir(abs), nil
		}
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	for _, dir := range []string{abs, filepath.Join(abs, "bin")} {
		if _, err := l.runnerIn(dir); err == nil {
			return dir, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, abs)
}

var (
	defaultMu      sync.Mutex
	defaultLocator = New()
)

// Default returns the process-wide locator.
func Default() *Locator {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultLocator
}

// WithBinPath runs fn with a process default locator configured to path.
// Runners already pinned by the previous default are not affected; only
// loads performed inside fn see the new path. The previous default is
// restored when fn returns.
func WithBinPath(ctx context.Context, path string, fn func() error) error {
	temp := New()
	temp.configPath = ""
	if err := temp.SetBinPath(ctx, path); err != nil {
		return err
	}

	defaultMu.Lock()
	previous := defaultLocator
	defaultLocator = temp
	defaultMu.Unlock()

	defer func() {
		defaultMu.Lock()
		defaultLocator = previous
		defaultMu.Unlock()
	}()
	return fn()
}
