package session

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/apsimgo/internal/apsimx"
	"github.com/specialistvlad/apsimgo/internal/edit"
	"github.com/specialistvlad/apsimgo/internal/engine"
	"github.com/specialistvlad/apsimgo/internal/results"
	"github.com/specialistvlad/apsimgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const managerPath = ".Simulations.Simulation.Field.Sow using a variable rule"

// fakeEngine stands in for the runner: it checks the saved model and writes
// a result store the way the engine would.
type fakeEngine struct {
	requests []engine.Request
	saved    []*apsimx.Node
	err      error
}

func (f *fakeEngine) Run(_ context.Context, req engine.Request) error {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return f.err
	}
	root, err := apsimx.Load(req.ModelPath)
	if err != nil {
		return err
	}
	f.saved = append(f.saved, root)

	dbPath := strings.TrimSuffix(req.ModelPath, filepath.Ext(req.ModelPath)) + ".db"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS _Simulations (ID INTEGER, Name TEXT, FolderName TEXT)`,
		`CREATE TABLE IF NOT EXISTS _Messages (SimulationID INTEGER, Message TEXT)`,
		`CREATE TABLE IF NOT EXISTS Report (SimulationID INTEGER, Yield REAL)`,
		`INSERT INTO _Simulations VALUES (1, 'Simulation', '')`,
		`INSERT INTO Report VALUES (1, 9000.0)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func newSession(t *testing.T, opts ...Option) (*Session, *fakeEngine, context.Context) {
	t.Helper()
	ctx, _ := testutil.Context(t)
	model := testutil.WriteModel(t, t.TempDir(), "maize.apsimx")
	fake := &fakeEngine{}
	s, err := New(ctx, model, append([]Option{WithEngine(fake)}, opts...)...)
	require.NoError(t, err)
	return s, fake, ctx
}

func TestSession_EditRunClose(t *testing.T) {
	s, fake, ctx := newSession(t)

	_, err := s.Edit(managerPath, map[string]any{"Population": 8})
	require.NoError(t, err)

	tables, err := s.Run(ctx, RunOptions{ReportNames: []string{"Report"}})
	require.NoError(t, err)
	require.Contains(t, tables, "Report")
	assert.NotEmpty(t, tables["Report"].Rows)
	assert.FileExists(t, s.DBPath())

	require.Len(t, fake.saved, 1)
	values, err := edit.Inspect(mustResolve(t, fake.saved[0], managerPath))
	require.NoError(t, err)
	assert.Equal(t, "8", values["Population"])

	report, err := s.Result("Report")
	require.NoError(t, err)
	yield, err := report.Float64s("Yield")
	require.NoError(t, err)
	assert.Equal(t, []float64{9000}, yield)

	workingCopy := s.Path()
	require.NoError(t, s.Close(ctx))
	assert.NoFileExists(t, s.DBPath())
	assert.NoFileExists(t, workingCopy)
	_, err = s.Resolve(managerPath)
	require.ErrorIs(t, err, ErrClosed)
}

func TestSession_RunPassesRunMode(t *testing.T) {
	s, fake, ctx := newSession(t)
	defer s.Close(ctx)

	_, err := s.Run(ctx, RunOptions{Simulations: []string{"LateSowing"}, MultiThreaded: true})
	require.NoError(t, err)
	require.Len(t, fake.requests, 1)
	assert.Equal(t, []string{"LateSowing"}, fake.requests[0].Simulations)
	assert.True(t, fake.requests[0].MultiThreaded)
	assert.Equal(t, s.Path(), fake.requests[0].ModelPath)
}

func TestSession_RunUnknownSimulation(t *testing.T) {
	s, fake, ctx := newSession(t)
	defer s.Close(ctx)

	_, err := s.Run(ctx, RunOptions{Simulations: []string{"Nowhere"}})
	require.ErrorIs(t, err, apsimx.ErrNodeNotFound)
	assert.Empty(t, fake.requests)
}

func TestSession_ResultsClearedBeforeEachRun(t *testing.T) {
	s, fake, ctx := newSession(t)
	defer s.Close(ctx)

	_, err := s.Run(ctx, RunOptions{})
	require.NoError(t, err)
	require.NotNil(t, s.Results())

	fake.err = &engine.RunError{ModelPath: s.Path(), ExitCode: 1}
	_, err = s.Run(ctx, RunOptions{})
	require.Error(t, err)
	assert.Nil(t, s.Results())
	_, err = s.Result("Report")
	require.Error(t, err)
}

func TestSession_CleanDropsPreviousRows(t *testing.T) {
	s, _, ctx := newSession(t)
	defer s.Close(ctx)

	_, err := s.Run(ctx, RunOptions{})
	require.NoError(t, err)
	tables, err := s.Run(ctx, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, tables["Report"].Len(), "rows accumulate without clean")

	tables, err = s.Run(ctx, RunOptions{Clean: true})
	require.NoError(t, err)
	assert.Equal(t, 1, tables["Report"].Len())
}

func TestSession_UnknownReport(t *testing.T) {
	s, _, ctx := newSession(t)
	defer s.Close(ctx)

	_, err := s.Run(ctx, RunOptions{ReportNames: []string{"HarvestReport"}})
	require.ErrorIs(t, err, results.ErrTableNotFound)
}

func TestSession_OutAndKeepResults(t *testing.T) {
	out := filepath.Join(t.TempDir(), "edited.apsimx")
	s, _, ctx := newSession(t, WithOut(out), WithKeepResults(true))

	_, err := s.Run(ctx, RunOptions{})
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	assert.FileExists(t, out)
	assert.FileExists(t, filepath.Join(filepath.Dir(out), "edited.db"))
}

func TestSession_LoadsBundledExample(t *testing.T) {
	ctx, _ := testutil.Context(t)
	install := t.TempDir()
	bin := filepath.Join(install, "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))
	testutil.WriteModel(t, filepath.Join(install, "Examples"), "Maize.apsimx")

	s, err := New(ctx, "maize", WithBinDir(bin), WithEngine(&fakeEngine{}))
	require.NoError(t, err)
	defer s.Close(ctx)

	names, err := s.Simulations()
	require.NoError(t, err)
	assert.Equal(t, []string{"Simulation", "LateSowing"}, names)
}

func TestSession_Save(t *testing.T) {
	s, _, ctx := newSession(t)
	defer s.Close(ctx)

	_, err := s.Edit(".Simulations.Simulation.Clock", map[string]any{"start": "1991-01-01"})
	require.NoError(t, err)
	target := filepath.Join(t.TempDir(), "saved.apsimx")
	require.NoError(t, s.Save(target))

	saved, err := apsimx.Load(target)
	require.NoError(t, err)
	clock := mustResolve(t, saved, ".Simulations.Simulation.Clock")
	start, err := clock.Text("Start")
	require.NoError(t, err)
	assert.Equal(t, "1991-01-01T00:00:00", start)
}

func mustResolve(t *testing.T, root *apsimx.Node, path string) *apsimx.Node {
	t.Helper()
	n, err := apsimx.Resolve(root, path)
	require.NoError(t, err)
	return n
}

func TestSession_NewFromTree(t *testing.T) {
	ctx, _ := testutil.Context(t)
	model := testutil.WriteModel(t, t.TempDir(), "maize.apsimx")
	base, source, err := Load(ctx, model)
	require.NoError(t, err)
	assert.Equal(t, model, source)

	s, err := NewFromTree(ctx, base.Clone(), source, WithEngine(&fakeEngine{}))
	require.NoError(t, err)
	_, err = s.Edit(managerPath, map[string]any{"Population": 10})
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	params, err := edit.Inspect(mustResolve(t, base, managerPath))
	require.NoError(t, err)
	assert.Equal(t, "6", params["Population"], "the base tree is not touched")

	_, err = NewFromTree(ctx, nil, "")
	require.Error(t, err)
}
