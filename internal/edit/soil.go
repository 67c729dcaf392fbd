package edit

import (
	"maps"
	"slices"

	"github.com/specialistvlad/apsimgo/internal/apsimx"
)

type fieldKind int

const (
	layered fieldKind = iota
	number
	text
)

type schema map[string]fieldKind

// soilSchemas lists the editable fields of each soil section. Depth is
// derived from Thickness and deliberately absent.
var soilSchemas = map[string]schema{
	"Physical": {
		"Thickness": layered, "BD": layered, "AirDry": layered, "LL15": layered,
		"DUL": layered, "SAT": layered, "KS": layered, "Rocks": layered,
		"ParticleSizeClay": layered, "ParticleSizeSand": layered, "ParticleSizeSilt": layered,
	},
	"Organic": {
		"Thickness": layered, "Carbon": layered, "SoilCNRatio": layered, "FBiom": layered,
		"FInert": layered, "FOM": layered, "FOMCNRatio": number,
	},
	"Chemical": {
		"Thickness": layered, "PH": layered, "EC": layered, "ESP": layered,
		"CEC": layered, "LabileP": layered, "UnavailableP": layered,
	},
	"Water": {
		"Thickness": layered, "InitialValues": layered, "FractionFull": number,
	},
	"Solute": {
		"Thickness": layered, "InitialValues": layered, "Exco": layered, "FIP": layered,
		"D0": number,
	},
	"SoilCrop": {
		"LL": layered, "KL": layered, "XF": layered,
	},
	"WaterBalance": {
		"Thickness": layered, "SWCON": layered, "KLAT": layered,
		"SummerDate": text, "WinterDate": text,
		"SummerU": number, "SummerCona": number, "WinterU": number, "WinterCona": number,
		"DiffusConst": number, "DiffusSlope": number, "Salb": number,
		"CN2Bare": number, "CNRed": number, "CNCov": number,
		"CatchmentArea": number, "DischargeWidth": number,
	},
}

func planSoil(n *apsimx.Node, values map[string]any) ([]change, error) {
	s := soilSchemas[n.Kind()]
	layers := -1
	var changes []change

	for _, key := range sortedKeys(values) {
		kind, ok := s[key]
		if !ok {
			if key == "Depth" {
				return nil, &InvalidValueError{Attribute: key, Value: values[key], Reason: "Depth is derived from Thickness; edit Thickness instead"}
			}
			return nil, &UnknownAttributeError{Kind: n.Kind(), Node: n.Name, Attribute: key, Allowed: slices.Sorted(maps.Keys(s))}
		}
		v := values[key]

		switch kind {
		case layered:
			if layers < 0 {
				var err error
				if layers, err = apsimx.LayerCount(n); err != nil {
					return nil, err
				}
			}
			vals, scalar, ok := toFloats(v)
			if !ok {
				return nil, &InvalidValueError{Attribute: key, Value: v, Reason: "expected a number or a list of numbers"}
			}
			if scalar {
				vals = broadcast(vals[0], layers)
			} else if len(vals) != layers {
				return nil, &LengthMismatchError{Attribute: key, Got: len(vals), Want: layers}
			}
			raw, err := apsimx.MarshalFloat64s(vals)
			if err != nil {
				return nil, &InvalidValueError{Attribute: key, Value: v, Reason: err.Error()}
			}
			changes = append(changes, change{key: key, raw: raw})
			if key == "Thickness" && n.Has("Depth") {
				c, err := encode("Depth", apsimx.DepthLabels(vals))
				if err != nil {
					return nil, err
				}
				changes = append(changes, c)
			}
		case number:
			f, ok := toFloat(v)
			if !ok {
				return nil, &InvalidValueError{Attribute: key, Value: v, Reason: "expected a number"}
			}
			c, err := encode(key, f)
			if err != nil {
				return nil, err
			}
			changes = append(changes, c)
		case text:
			str, ok := v.(string)
			if !ok {
				return nil, &InvalidValueError{Attribute: key, Value: v, Reason: "expected text"}
			}
			c, err := encode(key, str)
			if err != nil {
				return nil, err
			}
			changes = append(changes, c)
		}
	}
	return changes, nil
}

func broadcast(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func inspectSoil(n *apsimx.Node) (map[string]any, error) {
	out := make(map[string]any)
	for key, kind := range soilSchemas[n.Kind()] {
		if !n.Has(key) {
			continue
		}
		switch kind {
		case layered:
			vals, err := n.Float64s(key)
			if err != nil {
				return nil, err
			}
			if vals != nil {
				out[key] = vals
			}
		case number:
			f, found, err := n.Number(key)
			if err != nil {
				return nil, err
			}
			if found {
				out[key] = f
			}
		case text:
			s, err := n.Text(key)
			if err != nil {
				return nil, err
			}
			out[key] = s
		}
	}
	if n.Has("Depth") {
		depth, err := n.Strings("Depth")
		if err != nil {
			return nil, err
		}
		out["Depth"] = depth
	}
	return out, nil
}

// LayeredFields returns the per-layer fields of a soil section kind, sorted.
func LayeredFields(kind string) []string {
	var out []string
	for key, k := range soilSchemas[kind] {
		if k == layered {
			out = append(out, key)
		}
	}
	slices.Sort(out)
	return out
}

// SoilSections lists the soil section kinds that carry per-layer fields.
func SoilSections() []string {
	return slices.Sorted(maps.Keys(soilSchemas))
}
