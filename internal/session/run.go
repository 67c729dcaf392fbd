package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/specialistvlad/apsimgo/internal/apsimx"
	"github.com/specialistvlad/apsimgo/internal/ctxlog"
	"github.com/specialistvlad/apsimgo/internal/engine"
	"github.com/specialistvlad/apsimgo/internal/results"
)

// RunOptions selects what a run executes and harvests.
type RunOptions struct {
	// ReportNames limits the tables read back. Empty reads every report table.
	ReportNames []string
	// Simulations limits the simulations run. Empty runs all of them.
	Simulations []string
	// Clean drops the previous result store before running.
	Clean bool
	// MultiThreaded selects the engine's multi-threaded run mode.
	MultiThreaded bool
}

// Run saves the tree, runs the engine and reads back the result tables.
// Results of any previous run are discarded first.
func (s *Session) Run(ctx context.Context, opts RunOptions) (map[string]*results.Table, error) {
	logger := ctxlog.FromContext(ctx)
	if s.closed {
		return nil, ErrClosed
	}

	s.results = nil
	if err := s.closeStore(); err != nil {
		return nil, err
	}
	if opts.Clean {
		if err := removeStore(s.DBPath()); err != nil {
			return nil, err
		}
		logger.Debug("Previous result store removed.", "path", s.DBPath())
	}

	sims, err := apsimx.Simulations(s.root, opts.Simulations...)
	if err != nil {
		return nil, err
	}
	if len(sims) == 0 {
		return nil, fmt.Errorf("model %s has no simulations to run", s.source)
	}

	if err := s.root.Save(s.path); err != nil {
		return nil, err
	}

	eng, err := s.resolveEngine(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("Running simulations.", "count", len(sims), "multithreaded", opts.MultiThreaded)
	err = eng.Run(ctx, engine.Request{
		ModelPath:     s.path,
		Simulations:   opts.Simulations,
		MultiThreaded: opts.MultiThreaded,
	})
	if err != nil {
		return nil, err
	}

	store, err := results.Open(ctx, s.DBPath())
	if err != nil {
		return nil, err
	}
	tables, err := store.ReadAll(ctx, opts.ReportNames...)
	if err != nil {
		store.Close()
		return nil, err
	}
	s.store = store
	s.results = tables
	logger.Info("Results collected.", "tables", len(tables))
	return tables, nil
}

func (s *Session) resolveEngine(ctx context.Context) (engine.Engine, error) {
	if s.engine != nil {
		return s.engine, nil
	}
	runner, err := s.locator.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.engine = engine.NewExec(runner)
	return s.engine, nil
}

// Results returns the tables of the latest run.
func (s *Session) Results() map[string]*results.Table {
	return s.results
}

// ReportNames returns the table names of the latest run in sorted order.
func (s *Session) ReportNames() []string {
	names := make([]string, 0, len(s.results))
	for name := range s.results {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Result returns one table of the latest run.
func (s *Session) Result(name string) (*results.Table, error) {
	if s.results == nil {
		return nil, errors.New("no results: the model has not been run")
	}
	t, ok := s.results[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", results.ErrTableNotFound, name)
	}
	return t, nil
}

// Close releases the result store and removes the files the session
// created: the result store (unless kept) and a temporary working copy.
func (s *Session) Close(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if s.closed {
		return nil
	}
	s.closed = true
	s.results = nil

	var errs []error
	errs = append(errs, s.closeStore())
	if !s.keepResults {
		errs = append(errs, removeStore(s.DBPath()))
	}
	errs = append(errs, s.cleanupModel())
	if err := errors.Join(errs...); err != nil {
		logger.Warn("Session cleanup incomplete.", "error", err)
		return err
	}
	logger.Debug("Session closed.", "working_copy", s.path)
	return nil
}

func (s *Session) closeStore() error {
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}

func (s *Session) cleanupModel() error {
	if !s.ownsModel {
		return nil
	}
	return removeIfExists(s.path)
}

// removeStore deletes a result store together with its SQLite side files.
func removeStore(path string) error {
	var errs []error
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		errs = append(errs, removeIfExists(p))
	}
	return errors.Join(errs...)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
