package edit

import (
	"strings"

	"github.com/specialistvlad/apsimgo/internal/apsimx"
)

// splitCommand splits a cultivar override "key = value" on its first '='.
func splitCommand(line string) (key, value string, ok bool) {
	k, v, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(k), strings.TrimSpace(v), true
}

// planCultivar updates cultivar overrides. Untouched lines are kept
// verbatim and in place; keys not yet present are appended in sorted order.
func planCultivar(n *apsimx.Node, values map[string]any) ([]change, error) {
	commands, err := n.Strings("Command")
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(commands))
	for i, line := range commands {
		if key, _, ok := splitCommand(line); ok {
			index[key] = i
		}
	}

	for _, key := range sortedKeys(values) {
		k := strings.TrimSpace(key)
		if k == "" || strings.Contains(k, "=") {
			return nil, &InvalidValueError{Attribute: key, Value: values[key], Reason: "cultivar keys must be non-empty and contain no '='"}
		}
		text, ok := toText(values[key])
		if !ok {
			return nil, &InvalidValueError{Attribute: key, Value: values[key], Reason: "cannot be written as a cultivar override"}
		}
		line := k + "=" + text
		if i, exists := index[k]; exists {
			commands[i] = line
			continue
		}
		index[k] = len(commands)
		commands = append(commands, line)
	}

	c, err := encode("Command", commands)
	if err != nil {
		return nil, err
	}
	return []change{c}, nil
}

func inspectCultivar(n *apsimx.Node) (map[string]any, error) {
	commands, err := n.Strings("Command")
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(commands))
	for _, line := range commands {
		if key, value, ok := splitCommand(line); ok {
			out[key] = value
		}
	}
	return out, nil
}
