package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/apsimgo/internal/apsimx"
	"github.com/specialistvlad/apsimgo/internal/config"
	"github.com/specialistvlad/apsimgo/internal/ctxlog"
	"github.com/specialistvlad/apsimgo/internal/fsutil"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	evalCtx *hcl.EvalContext
}

// NewLoader creates an HCL workflow loader that evaluates expressions
// against the current process environment.
func NewLoader() *Loader {
	return &Loader{evalCtx: defaultEnvContext()}
}

// NewLoaderWithEnv creates a loader with an explicit environment in
// KEY=VALUE form.
func NewLoaderWithEnv(environ []string) *Loader {
	return &Loader{evalCtx: envContext(environ)}
}

// Load parses every .hcl file under paths and merges them into one
// workflow. A scalar setting may be given by one file only.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Workflow, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := findHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl workflow files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	wf := &config.Workflow{}
	m := &merger{wf: wf, owner: map[string]string{}}
	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, l.evalCtx, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		if err := l.translate(m, file, &root); err != nil {
			return nil, err
		}
	}

	wf.Defaults()
	if err := wf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workflow: %w", err)
	}
	logger.Debug("HCL loading complete.", "model", wf.Model, "points", len(wf.Points), "edits", len(wf.Edits))
	return wf, nil
}

// merger tracks which file set each scalar so conflicts can be reported.
type merger struct {
	wf    *config.Workflow
	owner map[string]string
}

func (m *merger) claim(name, file string) error {
	if prev, ok := m.owner[name]; ok {
		return fmt.Errorf("%s is set in both %s and %s", name, prev, file)
	}
	m.owner[name] = file
	return nil
}

func (l *Loader) translate(m *merger, file string, root *fileRoot) error {
	dir := filepath.Dir(file)
	wf := m.wf

	type scalar struct {
		name string
		set  bool
		fn   func()
	}
	scalars := []scalar{
		{"model", root.Model != nil, func() { wf.Model = resolveModel(dir, *root.Model) }},
		{"out_dir", root.OutDir != nil, func() { wf.OutDir = relativeTo(dir, *root.OutDir) }},
		{"workers", root.Workers != nil, func() { wf.Workers = *root.Workers }},
		{"pool", root.Pool != nil, func() { wf.Pool = strings.ToLower(*root.Pool) }},
		{"reports", root.Reports != nil, func() { wf.Reports = root.Reports }},
		{"simulations", root.Simulations != nil, func() { wf.Simulations = root.Simulations }},
		{"multithreaded", root.MultiThreaded != nil, func() { wf.MultiThreaded = *root.MultiThreaded }},
		{"web_data", root.WebData != nil, func() { wf.WebData = strings.ToLower(*root.WebData) }},
		{"weather_source", root.WeatherSource != nil, func() { wf.WeatherSource = *root.WeatherSource }},
		{"soil_config", root.SoilConfig != nil, func() { wf.SoilConfig = relativeTo(dir, *root.SoilConfig) }},
		{"soil_thickness", root.SoilThickness != nil, func() { wf.SoilThickness = root.SoilThickness }},
		{"progress", root.Progress != nil, func() {
			wf.Progress = &config.Progress{
				URL:                root.Progress.URL,
				Namespace:          root.Progress.Namespace,
				Event:              root.Progress.Event,
				InsecureSkipVerify: root.Progress.InsecureSkipVerify,
			}
		}},
	}
	for _, s := range scalars {
		if !s.set {
			continue
		}
		if err := m.claim(s.name, file); err != nil {
			return err
		}
		s.fn()
	}

	edits, err := l.translateEdits(root.Edits)
	if err != nil {
		return fmt.Errorf("in %s: %w", file, err)
	}
	wf.Edits = append(wf.Edits, edits...)

	for _, p := range root.Points {
		edits, err := l.translateEdits(p.Edits)
		if err != nil {
			return fmt.Errorf("in %s, point %q: %w", file, p.Name, err)
		}
		wf.Points = append(wf.Points, &config.Point{Name: p.Name, Lon: p.Lon, Lat: p.Lat, Edits: edits})
	}
	return nil
}

func (l *Loader) translateEdits(blocks []*editBlock) ([]*config.Edit, error) {
	out := make([]*config.Edit, 0, len(blocks))
	for _, b := range blocks {
		values, diags := bodyValues(b.Body, l.evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("edit %q: %w", b.Path, diags)
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("edit %q sets no fields", b.Path)
		}
		out = append(out, &config.Edit{Path: b.Path, Values: values})
	}
	return out, nil
}

// resolveModel resolves a model file path against the workflow file's
// directory. Bare names refer to bundled examples and are kept as is.
func resolveModel(dir, model string) string {
	if !strings.EqualFold(filepath.Ext(model), apsimx.FileExtension) {
		return model
	}
	return relativeTo(dir, model)
}

func relativeTo(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// findHCLFiles expands directories into the .hcl files they contain.
func findHCLFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("workflow path %s: %w", path, err)
		}
		if !info.IsDir() {
			if !strings.EqualFold(filepath.Ext(path), ".hcl") {
				return nil, fmt.Errorf("specified file is not an .hcl file: %s", path)
			}
			add(path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return all, nil
}
