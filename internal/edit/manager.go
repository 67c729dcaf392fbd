package edit

import (
	"github.com/specialistvlad/apsimgo/internal/apsimx"
)

// parameter is one entry of a Manager's Parameters list.
type parameter struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

func managerParameters(n *apsimx.Node) ([]parameter, error) {
	var params []parameter
	if _, err := n.Get("Parameters", &params); err != nil {
		return nil, err
	}
	return params, nil
}

// planManager overwrites values of existing script parameters. The key set
// belongs to the script and cannot be extended from here.
func planManager(n *apsimx.Node, values map[string]any) ([]change, error) {
	params, err := managerParameters(n)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(params))
	keys := make([]string, len(params))
	for i, p := range params {
		index[p.Key] = i
		keys[i] = p.Key
	}

	for _, key := range sortedKeys(values) {
		i, ok := index[key]
		if !ok {
			return nil, &UnknownAttributeError{Kind: n.Kind(), Node: n.Name, Attribute: key, Allowed: keys}
		}
		text, ok := toText(values[key])
		if !ok {
			return nil, &InvalidValueError{Attribute: key, Value: values[key], Reason: "cannot be written as a script parameter"}
		}
		params[i].Value = text
	}

	c, err := encode("Parameters", params)
	if err != nil {
		return nil, err
	}
	return []change{c}, nil
}

func inspectManager(n *apsimx.Node) (map[string]any, error) {
	params, err := managerParameters(n)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(params))
	for _, p := range params {
		out[p.Key] = p.Value
	}
	return out, nil
}
