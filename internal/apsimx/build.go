package apsimx

// typeNames maps short kinds to the engine's fully qualified type names for
// the nodes this repository creates itself.
var typeNames = map[string]string{
	"Simulations":    "Models.Core.Simulations, Models",
	"Simulation":     "Models.Core.Simulation, Models",
	"Zone":           "Models.Core.Zone, Models",
	"Folder":         "Models.Core.Folder, Models",
	"Clock":          "Models.Clock, Models",
	"Summary":        "Models.Summary, Models",
	"Weather":        "Models.Climate.Weather, Models",
	"DataStore":      "Models.Storage.DataStore, Models",
	"Manager":        "Models.Manager, Models",
	"Report":         "Models.Report, Models",
	"Soil":           "Models.Soils.Soil, Models",
	"Physical":       "Models.Soils.Physical, Models",
	"Organic":        "Models.Soils.Organic, Models",
	"Chemical":       "Models.Soils.Chemical, Models",
	"Water":          "Models.Soils.Water, Models",
	"Solute":         "Models.Soils.Solute, Models",
	"SoilCrop":       "Models.Soils.SoilCrop, Models",
	"WaterBalance":   "Models.WaterModel.WaterBalance, Models",
	"SoilArbitrator": "Models.Soils.Arbitrator.SoilArbitrator, Models",
	"Plant":          "Models.PMF.Plant, Models",
	"Cultivar":       "Models.PMF.Cultivar, Models",
	"Experiment":     "Models.Factorial.Experiment, Models",
	"Factor":         "Models.Factorial.Factor, Models",
	"Permutation":    "Models.Factorial.Permutation, Models",
}

// TypeName returns the fully qualified `$type` for a kind. Unknown kinds are
// assumed to live in the root Models namespace.
func TypeName(kind string) string {
	if t, ok := typeNames[kind]; ok {
		return t
	}
	return "Models." + kind + ", Models"
}

// New creates a detached node of the given kind.
func New(kind, name string, children ...*Node) *Node {
	n := &Node{
		Type:  TypeName(kind),
		Name:  name,
		order: []string{keyType, keyName, keyChildren},
	}
	for _, c := range children {
		n.AddChild(c)
	}
	return n
}
