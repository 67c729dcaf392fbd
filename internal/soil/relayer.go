package soil

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// Mids returns the mid-depth of each layer of a thickness scheme.
func Mids(thickness []float64) []float64 {
	bounds := make([]float64, len(thickness)+1)
	floats.CumSum(bounds[1:], thickness)
	mids := make([]float64, len(thickness))
	for i := range thickness {
		mids[i] = (bounds[i] + bounds[i+1]) / 2
	}
	return mids
}

// Interpolate maps values known at depths xs onto depths at. Values between
// known depths are linear; outside them the nearest value is held. NaN
// points are ignored; with no valid point the result is all NaN.
func Interpolate(xs, ys, at []float64) []float64 {
	var px, py []float64
	for i := range xs {
		if !math.IsNaN(ys[i]) {
			px = append(px, xs[i])
			py = append(py, ys[i])
		}
	}
	out := make([]float64, len(at))
	switch len(px) {
	case 0:
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	case 1:
		for i := range out {
			out[i] = py[0]
		}
		return out
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(px, py); err != nil {
		panic(err)
	}
	for i, x := range at {
		out[i] = pl.Predict(x)
	}
	return out
}

// Layers is a profile mapped onto a thickness scheme.
type Layers struct {
	Thickness []float64
	Values    map[string][]float64
}

// Relayer maps every property of p onto the layers of thickness. Layers
// below the profile follow the configured curve for their field, if any.
func Relayer(p *Profile, thickness []float64, cfg *Config) (*Layers, error) {
	if len(p.Horizons) == 0 {
		return nil, fmt.Errorf("soil profile %q has no horizons", p.Component)
	}
	if len(thickness) == 0 {
		return nil, fmt.Errorf("layer scheme is empty")
	}
	for i, t := range thickness {
		if t <= 0 {
			return nil, fmt.Errorf("layer %d has non-positive thickness %g", i+1, t)
		}
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	horizons := slices.Clone(p.Horizons)
	slices.SortFunc(horizons, func(a, b Horizon) int {
		switch {
		case a.Top < b.Top:
			return -1
		case a.Top > b.Top:
			return 1
		}
		return 0
	})
	xs := make([]float64, len(horizons))
	for i, h := range horizons {
		xs[i] = h.Mid()
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("soil profile %q has overlapping horizons at %g mm", p.Component, horizons[i].Top)
		}
	}

	mids := Mids(thickness)
	out := &Layers{Thickness: slices.Clone(thickness), Values: map[string][]float64{}}
	for _, field := range p.Fields() {
		ys := make([]float64, len(horizons))
		for i, h := range horizons {
			v, ok := h.Values[field]
			if !ok {
				v = math.NaN()
			}
			ys[i] = v
		}
		vals := Interpolate(xs, ys, mids)

		if curve, ok := cfg.Curves[field]; ok {
			anchorDepth, anchor := deepest(xs, ys)
			if !math.IsNaN(anchor) {
				for i, m := range mids {
					if m > anchorDepth {
						vals[i] = curve.At(anchor, m-anchorDepth)
					}
				}
			}
		}
		out.Values[field] = vals
	}
	return out, nil
}

func deepest(xs, ys []float64) (float64, float64) {
	for i := len(ys) - 1; i >= 0; i-- {
		if !math.IsNaN(ys[i]) {
			return xs[i], ys[i]
		}
	}
	return 0, math.NaN()
}
