package executor

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/apsimgo/internal/apsimx"
	"github.com/specialistvlad/apsimgo/internal/config"
	"github.com/specialistvlad/apsimgo/internal/edit"
	"github.com/specialistvlad/apsimgo/internal/engine"
	"github.com/specialistvlad/apsimgo/internal/session"
	"github.com/specialistvlad/apsimgo/internal/soil"
	"github.com/specialistvlad/apsimgo/internal/testutil"
	"github.com/specialistvlad/apsimgo/internal/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const managerPath = ".Simulations.Simulation.Field.Sow using a variable rule"

// fakeEngine records the model each run saw and writes a one-row report.
type fakeEngine struct {
	mu    sync.Mutex
	saved map[string]*apsimx.Node
}

func (f *fakeEngine) Run(_ context.Context, req engine.Request) error {
	root, err := apsimx.Load(req.ModelPath)
	if err != nil {
		return err
	}
	n, err := apsimx.Resolve(root, managerPath)
	if err != nil {
		return err
	}
	params, err := edit.Inspect(n)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.saved[params["CultivarName"].(string)] = root
	f.mu.Unlock()

	dbPath := strings.TrimSuffix(req.ModelPath, filepath.Ext(req.ModelPath)) + ".db"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	for _, stmt := range []string{
		`CREATE TABLE _Simulations (ID INTEGER, Name TEXT)`,
		`CREATE TABLE Report (SimulationID INTEGER, Yield REAL)`,
		`INSERT INTO _Simulations VALUES (1, 'Simulation')`,
		`INSERT INTO Report VALUES (1, 9000.0)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeEngine) model(t *testing.T, cultivar string) *apsimx.Node {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	root, ok := f.saved[cultivar]
	require.True(t, ok, "no run for cultivar %s", cultivar)
	return root
}

// point builds a point whose edit sets a distinct cultivar, so the fake
// engine can tell the runs apart.
func point(name string) *config.Point {
	return &config.Point{
		Name: name,
		Lon:  -93.6,
		Lat:  42,
		Edits: []*config.Edit{
			{Path: managerPath, Values: map[string]any{"CultivarName": "cv_" + name}},
		},
	}
}

func workflow(t *testing.T, points ...*config.Point) *config.Workflow {
	t.Helper()
	wf := &config.Workflow{
		Model:   testutil.WriteModel(t, t.TempDir(), "maize.apsimx"),
		OutDir:  filepath.Join(t.TempDir(), "out"),
		Reports: []string{"Report"},
		Edits: []*config.Edit{
			{Path: managerPath, Values: map[string]any{"Population": 8}},
		},
		Points: points,
	}
	wf.Defaults()
	return wf
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Observe(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) count(status Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Status == status {
			n++
		}
	}
	return n
}

func TestExecutor_RunsEveryPoint(t *testing.T) {
	ctx, _ := testutil.Context(t)
	wf := workflow(t, point("a"), point("b"), point("c"))
	wf.Workers = 2
	fake := &fakeEngine{saved: map[string]*apsimx.Node{}}
	rec := &recorder{}

	ex, err := New(wf, WithSessionOptions(session.WithEngine(fake)), WithObserver(rec))
	require.NoError(t, err)
	res, err := ex.Run(ctx)
	require.NoError(t, err)
	require.Len(t, res, 3)

	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, res[i].Point.Name)
		assert.NoError(t, res[i].Err)
		assert.Equal(t, map[string]int{"Report": 1}, res[i].Rows)
		require.Len(t, res[i].Files, 1)
		data, err := os.ReadFile(filepath.Join(wf.OutDir, name, "Report.csv"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "SimulationID,Yield,SimulationName\n"))

		params, err := edit.Inspect(mustResolve(t, fake.model(t, "cv_"+name), managerPath))
		require.NoError(t, err)
		assert.Equal(t, "8", params["Population"], "workflow edits apply to every point")
	}

	assert.Equal(t, 3, rec.count(StatusStarted))
	assert.Equal(t, 3, rec.count(StatusSucceeded))
	last := rec.events[len(rec.events)-1]
	assert.Equal(t, 3, last.Done)
	assert.Equal(t, 3, last.Total)

	_, err = os.Stat(filepath.Join(wf.OutDir, "a", ModelFile))
	assert.True(t, errors.Is(err, os.ErrNotExist), "thread pool does not keep the working copy")
}

func TestExecutor_CollectsFailures(t *testing.T) {
	ctx, _ := testutil.Context(t)
	bad := point("bad")
	bad.Edits = append(bad.Edits, &config.Edit{Path: ".Simulations.Nowhere", Values: map[string]any{"x": 1}})
	wf := workflow(t, point("good"), bad)
	wf.Workers = 2
	fake := &fakeEngine{saved: map[string]*apsimx.Node{}}
	rec := &recorder{}

	ex, err := New(wf, WithSessionOptions(session.WithEngine(fake)), WithObserver(rec))
	require.NoError(t, err)
	res, err := ex.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `point "bad"`)
	assert.ErrorIs(t, err, apsimx.ErrNodeNotFound)

	assert.NoError(t, res[0].Err)
	assert.Error(t, res[1].Err)
	assert.Equal(t, 1, rec.count(StatusSucceeded))
	assert.Equal(t, 1, rec.count(StatusFailed))
}

func TestExecutor_ProcessPoolKeepsFiles(t *testing.T) {
	ctx, _ := testutil.Context(t)
	wf := workflow(t, point("a"))
	wf.Pool = config.PoolProcess
	fake := &fakeEngine{saved: map[string]*apsimx.Node{}}

	ex, err := New(wf, WithSessionOptions(session.WithEngine(fake)))
	require.NoError(t, err)
	_, err = ex.Run(ctx)
	require.NoError(t, err)

	for _, name := range []string{ModelFile, "model.db", "Report.csv"} {
		_, err := os.Stat(filepath.Join(wf.OutDir, "a", name))
		assert.NoError(t, err, name)
	}
}

func TestExecutor_CanceledContextSkipsPoints(t *testing.T) {
	ctx, _ := testutil.Context(t)
	ctx, cancel := context.WithCancel(ctx)
	cancel()
	wf := workflow(t, point("a"), point("b"))
	rec := &recorder{}

	ex, err := New(wf, WithSessionOptions(session.WithEngine(&fakeEngine{saved: map[string]*apsimx.Node{}})), WithObserver(rec))
	require.NoError(t, err)
	_, err = ex.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, rec.count(StatusSkipped))
}

type fakeWeather struct{}

func (fakeWeather) Name() string { return "fake" }

func (fakeWeather) Fetch(_ context.Context, pt weather.Point, start, end time.Time) (*weather.Series, error) {
	s := &weather.Series{Latitude: pt.Lat, Longitude: pt.Lon, Source: "fake"}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		s.Records = append(s.Records, weather.Record{Date: d, Radn: 20, MaxT: 30, MinT: 15, Rain: 1})
	}
	return s, nil
}

type fakeSoil struct{}

func (fakeSoil) Fetch(context.Context, float64, float64) (*soil.Profile, error) {
	return &soil.Profile{
		Component: "Clarion",
		Percent:   60,
		Horizons: []soil.Horizon{
			{Top: 0, Bottom: 200, Values: map[string]float64{"BD": 1.3, "DUL": 0.35, "LL15": 0.15, "Carbon": 2}},
			{Top: 200, Bottom: 600, Values: map[string]float64{"BD": 1.4, "DUL": 0.3, "LL15": 0.12, "Carbon": 1}},
		},
	}, nil
}

func TestExecutor_WebData(t *testing.T) {
	ctx, _ := testutil.Context(t)
	wf := workflow(t, point("a"))
	wf.WebData = config.WebDataBoth
	wf.SoilThickness = []float64{100, 200, 300}
	fake := &fakeEngine{saved: map[string]*apsimx.Node{}}

	ex, err := New(wf,
		WithSessionOptions(session.WithEngine(fake)),
		WithWeather(fakeWeather{}),
		WithSoil(fakeSoil{}),
	)
	require.NoError(t, err)
	_, err = ex.Run(ctx)
	require.NoError(t, err)

	root := fake.model(t, "cv_a")
	met := filepath.Join(wf.OutDir, "a", "a"+weather.MetExtension)
	w, err := edit.Inspect(mustResolve(t, root, ".Simulations.Simulation.Weather"))
	require.NoError(t, err)
	assert.Equal(t, met, w["FileName"])

	f, err := os.Open(met)
	require.NoError(t, err)
	defer f.Close()
	series, err := weather.ParseMet(f)
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), series.Records[0].Date)

	soilNode := mustResolve(t, root, ".Simulations.Simulation.Field.Soil")
	thickness, err := soilNode.Child("Physical").Float64s("Thickness")
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 200, 300}, thickness)
	lat, _, err := soilNode.Number("Latitude")
	require.NoError(t, err)
	assert.Equal(t, 42.0, lat)
}

func TestNew_LoadsSoilConfig(t *testing.T) {
	wf := workflow(t, point("a"))
	wf.SoilConfig = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(wf)
	require.Error(t, err)

	wf.SoilConfig = ""
	wf.WebData = config.WebDataWeather
	wf.WeatherSource = "nope"
	_, err = New(wf)
	require.Error(t, err)
}

func mustResolve(t *testing.T, root *apsimx.Node, path string) *apsimx.Node {
	t.Helper()
	n, err := apsimx.Resolve(root, path)
	require.NoError(t, err)
	return n
}

func TestPeriod(t *testing.T) {
	root, err := apsimx.LoadBytes([]byte(testutil.MaizeModel))
	require.NoError(t, err)

	start, end, err := Period(root, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC), end)

	start, _, err = Period(root, []string{"LateSowing"})
	require.NoError(t, err)
	assert.Equal(t, 1995, start.Year())

	_, _, err = Period(root, []string{"Missing"})
	require.Error(t, err)
}
