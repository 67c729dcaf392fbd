package edit

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/apsimgo/internal/apsimx"
	"github.com/specialistvlad/apsimgo/internal/fsutil"
)

// MetExtension is the extension of the engine's weather files.
const MetExtension = ".met"

var weatherAliases = map[string]bool{
	"weather_file": true,
	"met_file":     true,
	"weatherfile":  true,
	"metfile":      true,
	"filename":     true,
}

func planWeather(n *apsimx.Node, values map[string]any) ([]change, error) {
	var path string
	for _, key := range sortedKeys(values) {
		if !weatherAliases[strings.ToLower(key)] {
			return nil, &UnknownAttributeError{Kind: n.Kind(), Node: n.Name, Attribute: key, Allowed: []string{"weather_file", "met_file", "FileName"}}
		}
		s, ok := values[key].(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, &InvalidValueError{Attribute: key, Value: values[key], Reason: "expected a file path"}
		}
		if path != "" && path != s {
			return nil, &InvalidValueError{Attribute: key, Value: s, Reason: "conflicting weather files given"}
		}
		path = s
	}

	if err := fsutil.CheckFile(path, MetExtension); err != nil {
		return nil, fmt.Errorf("weather file: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("weather file: %w", err)
	}
	c, err := encode("FileName", abs)
	if err != nil {
		return nil, err
	}
	return []change{c}, nil
}

func inspectWeather(n *apsimx.Node) (map[string]any, error) {
	s, err := n.Text("FileName")
	if err != nil {
		return nil, err
	}
	return map[string]any{"FileName": s}, nil
}
