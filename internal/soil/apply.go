package soil

import (
	"fmt"
	"math"
	"slices"

	"github.com/specialistvlad/apsimgo/internal/apsimx"
	"github.com/specialistvlad/apsimgo/internal/edit"
)

// sectionOf names the soil section each profile field is written to.
var sectionOf = map[string]string{
	"BD": "Physical", "DUL": "Physical", "LL15": "Physical", "SAT": "Physical", "KS": "Physical",
	"ParticleSizeSand": "Physical", "ParticleSizeSilt": "Physical", "ParticleSizeClay": "Physical",
	"Carbon": "Organic",
	"PH":     "Chemical", "CEC": "Chemical",
}

type write struct {
	node *apsimx.Node
	key  string
	vals []float64
}

// Apply rewrites the layer scheme of a Soil node to l. Profile fields
// replace the matching section fields; every other per-layer field is
// interpolated from its current layers onto the new ones. Nothing is
// written unless the whole soil can be converted.
func Apply(soil *apsimx.Node, l *Layers, cfg *Config) error {
	if soil.Kind() != "Soil" {
		return fmt.Errorf("%s is a %s, not a Soil", soil.FullPath(), soil.Kind())
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	physical := soil.Child("Physical")
	if physical == nil {
		found := apsimx.FindAll(soil, "Physical", "")
		if len(found) == 0 {
			return fmt.Errorf("soil %s has no Physical section", soil.FullPath())
		}
		physical = found[0]
	}
	physThick, err := physical.Float64s("Thickness")
	if err != nil {
		return err
	}

	values := derive(l, cfg)
	newMids := Mids(l.Thickness)
	sections := edit.SoilSections()

	var writes []write
	var depths []*apsimx.Node
	var walkErr error
	soil.Walk(func(n *apsimx.Node) bool {
		if walkErr != nil {
			return false
		}
		kind := n.Kind()
		if !slices.Contains(sections, kind) {
			return true
		}
		thick := physThick
		if kind != "SoilCrop" {
			if thick, walkErr = n.Float64s("Thickness"); walkErr != nil {
				return false
			}
			if thick == nil {
				return true
			}
		}
		oldMids := Mids(thick)

		var ll15 []float64
		for _, field := range edit.LayeredFields(kind) {
			if field == "Thickness" {
				writes = append(writes, write{n, field, slices.Clone(l.Thickness)})
				continue
			}
			if v, ok := values[field]; ok && sectionOf[field] == kind {
				writes = append(writes, write{n, field, v})
				if field == "LL15" {
					ll15 = v
				}
				continue
			}
			if kind == "SoilCrop" && field == "LL" {
				if v, ok := values["LL15"]; ok {
					writes = append(writes, write{n, field, v})
					continue
				}
			}
			old, err := n.Float64s(field)
			if err != nil {
				walkErr = err
				return false
			}
			if old == nil {
				continue
			}
			if len(old) != len(thick) {
				walkErr = &edit.LengthMismatchError{Attribute: n.FullPath() + "." + field, Got: len(old), Want: len(thick)}
				return false
			}
			writes = append(writes, write{n, field, Interpolate(oldMids, old, newMids)})
		}
		if ll15 != nil {
			clampAirDry(writes, n, ll15)
		}
		if n.Has("Depth") {
			depths = append(depths, n)
		}
		return true
	})
	if walkErr != nil {
		return walkErr
	}

	for _, w := range writes {
		if err := w.node.SetFloat64s(w.key, w.vals); err != nil {
			return err
		}
	}
	labels := apsimx.DepthLabels(l.Thickness)
	for _, n := range depths {
		if err := n.Set("Depth", labels); err != nil {
			return err
		}
	}
	return nil
}

// derive fills in fields computed from other profile fields and drops
// fields with no value in any layer.
func derive(l *Layers, cfg *Config) map[string][]float64 {
	out := make(map[string][]float64, len(l.Values)+1)
	for k, v := range l.Values {
		if !allNaN(v) {
			out[k] = v
		}
	}
	if bd, ok := out["BD"]; ok {
		if _, given := out["SAT"]; !given {
			dul := out["DUL"]
			sat := make([]float64, len(bd))
			for i, b := range bd {
				sat[i] = 1 - b/cfg.ParticleDensity - cfg.SATMargin
				if dul != nil && sat[i] < dul[i] {
					sat[i] = dul[i]
				}
			}
			out["SAT"] = sat
		}
	}
	return out
}

func clampAirDry(writes []write, n *apsimx.Node, ll15 []float64) {
	for _, w := range writes {
		if w.node != n || w.key != "AirDry" {
			continue
		}
		for i := range w.vals {
			if w.vals[i] > ll15[i] {
				w.vals[i] = ll15[i]
			}
		}
	}
}

func allNaN(v []float64) bool {
	for _, x := range v {
		if !math.IsNaN(x) {
			return false
		}
	}
	return true
}
