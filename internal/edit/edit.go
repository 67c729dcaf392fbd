package edit

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/apsimgo/internal/apsimx"
)

// change is one validated, already encoded field write.
type change struct {
	key string
	raw json.RawMessage
}

// variant is the edit behaviour of one family of node kinds.
type variant struct {
	plan    func(n *apsimx.Node, values map[string]any) ([]change, error)
	inspect func(n *apsimx.Node) (map[string]any, error)
}

// variants is keyed by apsimx.Node.Kind().
var variants = map[string]*variant{
	"Manager":  {plan: planManager, inspect: inspectManager},
	"Clock":    {plan: planClock, inspect: inspectClock},
	"Weather":  {plan: planWeather, inspect: inspectWeather},
	"Cultivar": {plan: planCultivar, inspect: inspectCultivar},
	"Report":   {plan: planReport, inspect: inspectReport},
}

func init() {
	for kind := range soilSchemas {
		variants[kind] = &variant{plan: planSoil, inspect: inspectSoil}
	}
}

func lookup(n *apsimx.Node) (*variant, error) {
	v, ok := variants[n.Kind()]
	if !ok {
		return nil, &UnsupportedNodeError{Kind: n.Kind(), Node: n.Name}
	}
	return v, nil
}

// Editable reports whether nodes of the given kind can be edited.
func Editable(kind string) bool {
	_, ok := variants[kind]
	return ok
}

// Edit validates values against the node's kind and, if every value is
// acceptable, writes them. On error the node is left untouched.
func Edit(n *apsimx.Node, values map[string]any) (*apsimx.Node, error) {
	changes, err := plan(n, values)
	if err != nil {
		return nil, err
	}
	if err := apply(n, changes); err != nil {
		return nil, err
	}
	return n, nil
}

func plan(n *apsimx.Node, values map[string]any) ([]change, error) {
	v, err := lookup(n)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	changes, err := v.plan(n, values)
	if err != nil {
		return nil, fmt.Errorf("edit %s: %w", n.FullPath(), err)
	}
	return changes, nil
}

func apply(n *apsimx.Node, changes []change) error {
	for _, c := range changes {
		if err := n.SetRaw(c.key, c.raw); err != nil {
			return fmt.Errorf("edit %s: %w", n.FullPath(), err)
		}
	}
	return nil
}

// EditPath resolves path under root and edits the node it names.
func EditPath(root *apsimx.Node, path string, values map[string]any) (*apsimx.Node, error) {
	n, err := apsimx.Resolve(root, path)
	if err != nil {
		return nil, err
	}
	return Edit(n, values)
}

// EditModel edits every node of the given kind and name found inside the
// selected simulations (all simulations when none are named). Either all
// matches are edited or none are.
func EditModel(root *apsimx.Node, kind, name string, simulations []string, values map[string]any) ([]*apsimx.Node, error) {
	scopes := []*apsimx.Node{root}
	if len(simulations) > 0 {
		var err error
		if scopes, err = apsimx.Simulations(root, simulations...); err != nil {
			return nil, err
		}
	}

	var targets []*apsimx.Node
	for _, scope := range scopes {
		targets = append(targets, apsimx.FindAll(scope, kind, name)...)
	}
	if len(targets) == 0 {
		return nil, &apsimx.NodeNotFoundError{Path: fmt.Sprintf("%s %q", kind, name)}
	}

	plans := make([][]change, len(targets))
	for i, t := range targets {
		changes, err := plan(t, values)
		if err != nil {
			return nil, err
		}
		plans[i] = changes
	}
	for i, t := range targets {
		if err := apply(t, plans[i]); err != nil {
			return nil, err
		}
	}
	return targets, nil
}

// Inspect returns the current value of every editable field of the node.
func Inspect(n *apsimx.Node) (map[string]any, error) {
	v, err := lookup(n)
	if err != nil {
		return nil, err
	}
	return v.inspect(n)
}

func sortedKeys(values map[string]any) []string {
	return slices.Sorted(maps.Keys(values))
}

func encode(key string, v any) (change, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return change{}, &InvalidValueError{Attribute: key, Value: v, Reason: err.Error()}
	}
	return change{key: key, raw: raw}, nil
}
