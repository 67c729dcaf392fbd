package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflow_Defaults(t *testing.T) {
	w := &Workflow{Progress: &Progress{URL: "http://localhost:3000"}}
	w.Defaults()
	assert.Equal(t, 1, w.Workers)
	assert.Equal(t, PoolThread, w.Pool)
	assert.Equal(t, WebDataNone, w.WebData)
	assert.Equal(t, "progress", w.Progress.Event)
}

func TestWorkflow_Validate(t *testing.T) {
	valid := func() *Workflow {
		w := &Workflow{
			Model:  "Maize",
			OutDir: "out",
			Points: []*Point{{Name: "ames", Lon: -93.6, Lat: 42}},
		}
		w.Defaults()
		return w
	}
	require.NoError(t, valid().Validate())

	testCases := []struct {
		name   string
		mutate func(*Workflow)
		want   string
	}{
		{"missing model", func(w *Workflow) { w.Model = "" }, "model is required"},
		{"bad pool", func(w *Workflow) { w.Pool = "fiber" }, "pool must be"},
		{"bad web data", func(w *Workflow) { w.WebData = "x" }, "web_data"},
		{"no points", func(w *Workflow) { w.Points = nil }, "point block"},
		{"duplicate point", func(w *Workflow) { w.Points = append(w.Points, &Point{Name: "ames"}) }, "more than once"},
		{"lat out of range", func(w *Workflow) { w.Points[0].Lat = 91 }, "out of range"},
		{"path in name", func(w *Workflow) { w.Points[0].Name = "a/b" }, "path separators"},
		{"bad thickness", func(w *Workflow) { w.SoilThickness = []float64{100, 0} }, "soil_thickness"},
		{"progress without url", func(w *Workflow) { w.Progress = &Progress{} }, "requires url"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := valid()
			tc.mutate(w)
			err := w.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
