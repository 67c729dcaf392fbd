package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/apsimgo/internal/app"
	"github.com/specialistvlad/apsimgo/internal/config"
)

// specSeparator separates the edit specs of one --management or soil flag.
const specSeparator = ':'

// splitTopLevel splits s on sep, ignoring separators inside [...] lists.
func splitTopLevel(s string, sep rune) ([]string, error) {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced ']' at offset %d", i)
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unclosed '[' in %q", s)
	}
	return append(parts, s[start:]), nil
}

// parseValue turns "[a, b]" into a list of strings and trims scalars.
// Numeric conversion is left to the edit layer, which knows each field's
// type.
func parseValue(raw string) any {
	v := strings.TrimSpace(raw)
	if !strings.HasPrefix(v, "[") || !strings.HasSuffix(v, "]") {
		return v
	}
	inner := strings.TrimSpace(v[1 : len(v)-1])
	if inner == "" {
		return []string{}
	}
	items := strings.Split(inner, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	return items
}

// parseSpec parses one comma-separated key=value list. The pathKey entry
// is removed from the values and returned separately.
func parseSpec(spec, pathKey string) (string, map[string]any, error) {
	pairs, err := splitTopLevel(spec, ',')
	if err != nil {
		return "", nil, err
	}
	var path string
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return "", nil, fmt.Errorf("%q is not a key=value pair", pair)
		}
		if key == pathKey {
			path = strings.TrimSpace(value)
			continue
		}
		if _, dup := values[key]; dup {
			return "", nil, fmt.Errorf("key %q is given more than once", key)
		}
		values[key] = parseValue(value)
	}
	return path, values, nil
}

// ParseManagement parses a --management value: specs separated by ':',
// each a comma-separated key=value list with a required path key.
func ParseManagement(raw string) ([]*config.Edit, error) {
	specs, err := splitTopLevel(raw, specSeparator)
	if err != nil {
		return nil, fmt.Errorf("invalid management spec: %w", err)
	}
	var edits []*config.Edit
	for _, spec := range specs {
		if strings.TrimSpace(spec) == "" {
			continue
		}
		path, values, err := parseSpec(spec, "path")
		if err != nil {
			return nil, fmt.Errorf("invalid management spec %q: %w", spec, err)
		}
		if path == "" {
			return nil, fmt.Errorf("invalid management spec %q: path is required", spec)
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("invalid management spec %q: no values to set", spec)
		}
		edits = append(edits, &config.Edit{Path: path, Values: values})
	}
	if len(edits) == 0 {
		return nil, fmt.Errorf("invalid management spec %q: nothing to edit", raw)
	}
	return edits, nil
}

// ParseSoil parses an --organic, --physical or --chemical value. node_path
// is optional; without it every section of kind is edited.
func ParseSoil(kind, raw string) ([]*app.SoilEdit, error) {
	specs, err := splitTopLevel(raw, specSeparator)
	if err != nil {
		return nil, fmt.Errorf("invalid %s spec: %w", strings.ToLower(kind), err)
	}
	var edits []*app.SoilEdit
	for _, spec := range specs {
		if strings.TrimSpace(spec) == "" {
			continue
		}
		path, values, err := parseSpec(spec, "node_path")
		if err != nil {
			return nil, fmt.Errorf("invalid %s spec %q: %w", strings.ToLower(kind), spec, err)
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("invalid %s spec %q: no values to set", strings.ToLower(kind), spec)
		}
		edits = append(edits, &app.SoilEdit{Kind: kind, Path: path, Values: values})
	}
	return edits, nil
}

// ParseLonLat parses "lon,lat".
func ParseLonLat(raw string) (float64, float64, error) {
	lonStr, latStr, ok := strings.Cut(raw, ",")
	if !ok {
		return 0, 0, fmt.Errorf("lonlat %q must be lon,lat", raw)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q", lonStr)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q", latStr)
	}
	return lon, lat, nil
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// stringList is a repeatable flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, splitList(v)...)
	return nil
}
