package soil

// Horizon is one measured soil horizon. Depths are in mm; the remaining
// fields use the units of the target model fields.
type Horizon struct {
	Top    float64
	Bottom float64
	Values map[string]float64
}

// Mid returns the horizon's mid-depth.
func (h Horizon) Mid() float64 { return (h.Top + h.Bottom) / 2 }

// Profile is the horizon sequence of one soil component.
type Profile struct {
	Component string
	Percent   float64
	Horizons  []Horizon
}

// Bottom is the depth of the deepest horizon.
func (p *Profile) Bottom() float64 {
	if len(p.Horizons) == 0 {
		return 0
	}
	return p.Horizons[len(p.Horizons)-1].Bottom
}

// Fields lists the properties present in at least one horizon.
func (p *Profile) Fields() []string {
	seen := map[string]bool{}
	var out []string
	for _, h := range p.Horizons {
		for k := range h.Values {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}
