package edit

import (
	"github.com/specialistvlad/apsimgo/internal/apsimx"
)

var reportFields = []string{"VariableNames", "EventNames"}

func planReport(n *apsimx.Node, values map[string]any) ([]change, error) {
	var changes []change
	for _, key := range sortedKeys(values) {
		if key != "VariableNames" && key != "EventNames" {
			return nil, &UnknownAttributeError{Kind: n.Kind(), Node: n.Name, Attribute: key, Allowed: reportFields}
		}
		lines, ok := toTexts(values[key])
		if !ok || len(lines) == 0 {
			return nil, &InvalidValueError{Attribute: key, Value: values[key], Reason: "expected a non-empty list of strings"}
		}
		c, err := encode(key, lines)
		if err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, nil
}

func inspectReport(n *apsimx.Node) (map[string]any, error) {
	out := make(map[string]any, len(reportFields))
	for _, key := range reportFields {
		lines, err := n.Strings(key)
		if err != nil {
			return nil, err
		}
		out[key] = lines
	}
	return out, nil
}
