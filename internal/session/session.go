// Package session owns one loaded model for its whole lifecycle: load,
// repeated edits addressed by node path, runs, result harvesting and
// cleanup of the files a run leaves behind.
//
// A Session is not safe for concurrent use. Batch workflows give every
// worker its own Session over its own copy of the model.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/apsimgo/internal/apsimx"
	"github.com/specialistvlad/apsimgo/internal/ctxlog"
	"github.com/specialistvlad/apsimgo/internal/edit"
	"github.com/specialistvlad/apsimgo/internal/engine"
	"github.com/specialistvlad/apsimgo/internal/locator"
	"github.com/specialistvlad/apsimgo/internal/results"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session is closed")

// Session is a loaded model plus the results of its latest run.
type Session struct {
	root      *apsimx.Node
	source    string
	path      string
	ownsModel bool

	out         string
	binDir      string
	keepResults bool
	engine      engine.Engine
	locator     *locator.Locator

	store   *results.Store
	results map[string]*results.Table
	closed  bool
}

// Option configures a Session.
type Option func(*Session)

// WithOut sets the path of the working copy. Without it the working copy
// is a temp file removed on Close.
func WithOut(path string) Option {
	return func(s *Session) { s.out = path }
}

// WithEngine sets the engine used by Run.
func WithEngine(e engine.Engine) Option {
	return func(s *Session) { s.engine = e }
}

// WithLocator sets the locator consulted for bundled examples and, when no
// engine is given, for the runner. Defaults to locator.Default().
func WithLocator(l *locator.Locator) Option {
	return func(s *Session) { s.locator = l }
}

// WithBinDir sets the engine bin directory used to find bundled examples.
func WithBinDir(dir string) Option {
	return func(s *Session) { s.binDir = dir }
}

// WithKeepResults leaves the result store on disk after Close.
func WithKeepResults(keep bool) Option {
	return func(s *Session) { s.keepResults = keep }
}

// New loads model, which is either a path to a model file or the name of a
// bundled example such as "Maize", and writes the working copy.
func New(ctx context.Context, model string, opts ...Option) (*Session, error) {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	if s.locator == nil {
		s.locator = locator.Default()
	}

	root, source, err := s.load(ctx, model)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, root, source)
}

// NewFromTree starts a session over an already loaded tree. The session
// takes ownership of root; callers sharing a base tree pass a Clone.
func NewFromTree(ctx context.Context, root *apsimx.Node, source string, opts ...Option) (*Session, error) {
	if root == nil {
		return nil, errors.New("no model given")
	}
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	if s.locator == nil {
		s.locator = locator.Default()
	}
	return s.open(ctx, root, source)
}

func (s *Session) open(ctx context.Context, root *apsimx.Node, source string) (*Session, error) {
	logger := ctxlog.FromContext(ctx)
	s.root = root
	s.source = source

	var err error
	if s.out != "" {
		if s.path, err = filepath.Abs(s.out); err != nil {
			return nil, err
		}
	} else {
		f, err := os.CreateTemp("", "apsimgo-*"+apsimx.FileExtension)
		if err != nil {
			return nil, fmt.Errorf("failed to create working copy: %w", err)
		}
		s.path = f.Name()
		f.Close()
		s.ownsModel = true
	}
	if err := s.root.Save(s.path); err != nil {
		s.cleanupModel()
		return nil, err
	}
	logger.Info("Model loaded.", "source", source, "working_copy", s.path)
	return s, nil
}

// Load resolves model the way New does without starting a session. Batch
// runs use it to load a base tree once and clone it per point.
func Load(ctx context.Context, model string, opts ...Option) (*apsimx.Node, string, error) {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	if s.locator == nil {
		s.locator = locator.Default()
	}
	return s.load(ctx, model)
}

func (s *Session) load(ctx context.Context, model string) (*apsimx.Node, string, error) {
	if model == "" {
		return nil, "", errors.New("no model given")
	}
	if strings.EqualFold(filepath.Ext(model), apsimx.FileExtension) {
		root, err := apsimx.Load(model)
		return root, model, err
	}
	if _, err := os.Stat(model); err == nil {
		root, err := apsimx.Load(model)
		return root, model, err
	}

	binDir := s.binDir
	if binDir == "" {
		dir, err := s.locator.AutoDetect(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("cannot look up example %q: %w", model, err)
		}
		binDir = dir
	}
	return apsimx.LoadExample(binDir, model)
}

// Root returns the model tree. Callers may edit it directly; the tree is
// written to the working copy before every run.
func (s *Session) Root() *apsimx.Node { return s.root }

// Source is where the model was loaded from.
func (s *Session) Source() string { return s.source }

// Path is the working copy the engine runs.
func (s *Session) Path() string { return s.path }

// DBPath is the result store the engine writes for the working copy.
func (s *Session) DBPath() string {
	return strings.TrimSuffix(s.path, filepath.Ext(s.path)) + ".db"
}

// Resolve finds the node at a `.`- or `/`-delimited path.
func (s *Session) Resolve(path string) (*apsimx.Node, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return apsimx.Resolve(s.root, path)
}

// Edit applies values to the node at path.
func (s *Session) Edit(path string, values map[string]any) (*apsimx.Node, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return edit.EditPath(s.root, path, values)
}

// EditModel applies values to every node of kind named name inside the
// selected simulations (all when simulations is empty).
func (s *Session) EditModel(kind, name string, simulations []string, values map[string]any) ([]*apsimx.Node, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return edit.EditModel(s.root, kind, name, simulations, values)
}

// Inspect returns the editable fields of the node at path.
func (s *Session) Inspect(path string) (map[string]any, error) {
	n, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}
	return edit.Inspect(n)
}

// Simulations returns the names of the simulations in the model.
func (s *Session) Simulations() ([]string, error) {
	sims, err := apsimx.Simulations(s.root)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(sims))
	for i, sim := range sims {
		names[i] = sim.Name
	}
	return names, nil
}

// Save writes the current tree to path, or to the working copy when path
// is empty.
func (s *Session) Save(path string) error {
	if s.closed {
		return ErrClosed
	}
	if path == "" {
		path = s.path
	}
	return s.root.Save(path)
}
