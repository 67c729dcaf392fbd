package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/specialistvlad/apsimgo/internal/ctxlog"
)

// Request describes a single engine invocation.
type Request struct {
	// ModelPath is the saved model file to run.
	ModelPath string
	// Simulations restricts the run to the named simulations. Empty runs all.
	Simulations []string
	// MultiThreaded lets the engine schedule simulations in parallel.
	MultiThreaded bool
}

// Engine runs a model file to completion.
type Engine interface {
	Run(ctx context.Context, req Request) error
}

// RunError is returned when the runner exits unsuccessfully.
type RunError struct {
	ModelPath string
	ExitCode  int
	Output    string
	Err       error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("engine run of %s failed (exit code %d)", e.ModelPath, e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + lastLines(out, 20)
	}
	return msg
}

func (e *RunError) Unwrap() error { return e.Err }

// Exec runs the engine as a subprocess.
type Exec struct {
	runner string
}

// NewExec returns an Engine backed by the runner executable at path.
func NewExec(runner string) *Exec {
	return &Exec{runner: runner}
}

// Runner returns the executable this engine invokes.
func (e *Exec) Runner() string { return e.runner }

// Args builds the runner's argument list for req.
func Args(req Request) []string {
	args := []string{req.ModelPath}
	if !req.MultiThreaded {
		args = append(args, "--single-threaded")
	}
	if len(req.Simulations) > 0 {
		args = append(args, "--simulation-names", SimulationPattern(req.Simulations))
	}
	return args
}

// SimulationPattern returns an anchored regular expression matching exactly
// the given simulation names.
func SimulationPattern(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return "^(" + strings.Join(quoted, "|") + ")$"
}

// Run executes the runner and blocks until it exits or ctx is cancelled.
func (e *Exec) Run(ctx context.Context, req Request) error {
	logger := ctxlog.FromContext(ctx)
	if req.ModelPath == "" {
		return errors.New("engine run: model path is empty")
	}

	args := Args(req)
	cmd := exec.CommandContext(ctx, e.runner, args...)
	cmd.Dir = filepath.Dir(req.ModelPath)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	logger.Debug("Starting engine run.", "runner", e.runner, "args", args)
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)
	if err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		logger.Error("Engine run failed.", "model", req.ModelPath, "exit_code", code, "elapsed", elapsed)
		return &RunError{ModelPath: req.ModelPath, ExitCode: code, Output: out.String(), Err: err}
	}
	logger.Info("Engine run finished.", "model", req.ModelPath, "elapsed", elapsed)
	return nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
