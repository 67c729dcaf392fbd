package hcl

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/apsimgo/internal/config"
	"github.com/specialistvlad/apsimgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const workflowHCL = `
model   = "maize.apsimx"
out_dir = "out"
workers = 4
pool    = "process"
reports = ["Report"]
web_data = "w"
weather_source = "daymet"
soil_thickness = [150, 150, 300]

progress {
  url = "http://localhost:3000"
}

edit ".Simulations.Simulation.Field.Sow using a variable rule" {
  Population   = 8
  CultivarName = env.CULTIVAR
}

point "ames" {
  lon = -93.6
  lat = 42.0
}

point "dalby" {
  lon = 151.26
  lat = -27.18
  edit ".Simulations.Simulation.Field.Soil.Organic" {
    Carbon = [1.2, 0.9, 0.5, 0.25]
  }
}
`

func TestLoader_Load(t *testing.T) {
	ctx, _ := testutil.Context(t)
	dir := testutil.WriteFiles(t, map[string]string{"main.hcl": workflowHCL})

	wf, err := NewLoaderWithEnv([]string{"CULTIVAR=B_110", "1BAD=x"}).Load(ctx, dir)
	require.NoError(t, err)

	want := &config.Workflow{
		Model:         filepath.Join(dir, "maize.apsimx"),
		OutDir:        filepath.Join(dir, "out"),
		Workers:       4,
		Pool:          config.PoolProcess,
		Reports:       []string{"Report"},
		WebData:       config.WebDataWeather,
		WeatherSource: "daymet",
		SoilThickness: []float64{150, 150, 300},
		Progress:      &config.Progress{URL: "http://localhost:3000", Event: "progress"},
		Edits: []*config.Edit{{
			Path:   ".Simulations.Simulation.Field.Sow using a variable rule",
			Values: map[string]any{"Population": int64(8), "CultivarName": "B_110"},
		}},
		Points: []*config.Point{
			{Name: "ames", Lon: -93.6, Lat: 42, Edits: []*config.Edit{}},
			{Name: "dalby", Lon: 151.26, Lat: -27.18, Edits: []*config.Edit{{
				Path:   ".Simulations.Simulation.Field.Soil.Organic",
				Values: map[string]any{"Carbon": []any{1.2, 0.9, 0.5, 0.25}},
			}}},
		},
	}
	if diff := cmp.Diff(want, wf); diff != "" {
		t.Errorf("workflow mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_MergesFilesAndRejectsConflicts(t *testing.T) {
	ctx, _ := testutil.Context(t)
	dir := testutil.WriteFiles(t, map[string]string{
		"a.hcl":        `model = "Maize"` + "\n" + `out_dir = "/tmp/out"`,
		"points/b.hcl": "point \"p1\" {\n  lon = 1\n  lat = 2\n}\n",
	})
	wf, err := NewLoaderWithEnv(nil).Load(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, "Maize", wf.Model, "example names are not resolved as paths")
	assert.Equal(t, "/tmp/out", wf.OutDir)
	assert.Equal(t, 1, wf.Workers)
	assert.Len(t, wf.Points, 1)

	dir = testutil.WriteFiles(t, map[string]string{
		"a.hcl": `model = "Maize"` + "\n" + `out_dir = "out"`,
		"b.hcl": `model = "Wheat"` + "\n" + "point \"p1\" {\n  lon = 1\n  lat = 2\n}\n",
	})
	_, err = NewLoaderWithEnv(nil).Load(ctx, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model is set in both")
}

func TestLoader_Errors(t *testing.T) {
	ctx, _ := testutil.Context(t)
	testCases := []struct {
		name string
		file string
		want string
	}{
		{"syntax", `model = `, "failed to parse"},
		{"unknown attribute", `modle = "x"`, "failed to decode"},
		{"empty edit", `model = "M"` + "\nout_dir = \"o\"\n" + `edit ".a" {}` + "\n" + "point \"p\" {\n  lon = 0\n  lat = 0\n}\n", "sets no fields"},
		{"invalid workflow", `model = "M"`, "out_dir is required"},
		{"unknown env", `model = env.NOPE`, "failed to decode"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := testutil.WriteFiles(t, map[string]string{"main.hcl": tc.file})
			_, err := NewLoaderWithEnv(nil).Load(ctx, filepath.Join(dir, "main.hcl"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	_, err := NewLoaderWithEnv(nil).Load(ctx, filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
	dir := testutil.WriteFiles(t, map[string]string{"notes.txt": "x"})
	_, err = NewLoaderWithEnv(nil).Load(ctx, filepath.Join(dir, "notes.txt"))
	require.Error(t, err)
	_, err = NewLoaderWithEnv(nil).Load(ctx, dir)
	require.Error(t, err)
}

func TestCtyToNative(t *testing.T) {
	testCases := []struct {
		name string
		in   cty.Value
		want any
	}{
		{"null", cty.NullVal(cty.String), nil},
		{"string", cty.StringVal("x"), "x"},
		{"whole number", cty.NumberIntVal(6), int64(6)},
		{"fraction", cty.NumberFloatVal(0.25), 0.25},
		{"bool", cty.True, true},
		{"tuple", cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(1)}), []any{"a", int64(1)}},
		{"object", cty.ObjectVal(map[string]cty.Value{"k": cty.StringVal("v")}), map[string]any{"k": "v"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ctyToNative(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := ctyToNative(cty.UnknownVal(cty.String))
	require.Error(t, err)
}
