package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/specialistvlad/apsimgo/internal/apsimx"
	"github.com/specialistvlad/apsimgo/internal/config"
	"github.com/specialistvlad/apsimgo/internal/ctxlog"
	"github.com/specialistvlad/apsimgo/internal/session"
	"github.com/specialistvlad/apsimgo/internal/weather"
)

// ModelFile is the name of the working copy kept in a point directory in
// process pool mode.
const ModelFile = "model" + apsimx.FileExtension

// PointResult is the outcome of one point.
type PointResult struct {
	Point    *config.Point
	Dir      string
	Files    []string
	Rows     map[string]int
	Err      error
	Duration time.Duration
}

// runPoint edits root for p, fetches web data when asked, runs it and
// writes one CSV per result table into the point directory.
func (e *Executor) runPoint(ctx context.Context, root *apsimx.Node, source string, p *config.Point) (res *PointResult) {
	logger := ctxlog.FromContext(ctx)
	res = &PointResult{Point: p, Dir: filepath.Join(e.wf.OutDir, p.Name)}
	if err := os.MkdirAll(res.Dir, 0o755); err != nil {
		res.Err = fmt.Errorf("failed to create point directory: %w", err)
		return res
	}

	opts := slices.Clone(e.sessionOpts)
	if e.wf.Pool == config.PoolProcess {
		opts = append(opts, session.WithOut(filepath.Join(res.Dir, ModelFile)), session.WithKeepResults(true))
	}
	s, err := session.NewFromTree(ctx, root, source, opts...)
	if err != nil {
		res.Err = err
		return res
	}
	defer func() {
		if err := s.Close(ctx); err != nil && res.Err == nil {
			res.Err = err
		}
	}()

	for _, ed := range slices.Concat(e.wf.Edits, p.Edits) {
		if _, err := s.Edit(ed.Path, ed.Values); err != nil {
			res.Err = fmt.Errorf("edit %s: %w", ed.Path, err)
			return res
		}
	}
	if e.wantsWeather() {
		path := filepath.Join(res.Dir, p.Name+weather.MetExtension)
		if err := AttachWeather(ctx, s, e.weather, weather.Point{Lon: p.Lon, Lat: p.Lat}, e.wf.Simulations, path); err != nil {
			res.Err = fmt.Errorf("weather: %w", err)
			return res
		}
	}
	if e.wantsSoil() {
		if err := ReplaceSoil(ctx, s, e.soil, p.Lon, p.Lat, e.wf.Simulations, e.wf.SoilThickness, e.soilCfg); err != nil {
			res.Err = fmt.Errorf("soil: %w", err)
			return res
		}
	}

	tables, err := s.Run(ctx, session.RunOptions{
		ReportNames:   e.wf.Reports,
		Simulations:   e.wf.Simulations,
		Clean:         true,
		MultiThreaded: e.wf.MultiThreaded,
	})
	if err != nil {
		res.Err = err
		return res
	}

	res.Rows = make(map[string]int, len(tables))
	for _, name := range s.ReportNames() {
		t := tables[name]
		path := filepath.Join(res.Dir, name+".csv")
		if err := t.SaveCSV(path); err != nil {
			res.Err = err
			return res
		}
		res.Files = append(res.Files, path)
		res.Rows[name] = t.Len()
	}
	logger.Debug("Point results written.", "dir", res.Dir, "files", len(res.Files))
	return res
}
