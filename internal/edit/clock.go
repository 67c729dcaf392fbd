package edit

import (
	"strings"
	"time"

	"github.com/specialistvlad/apsimgo/internal/apsimx"
)

const clockLayout = "2006-01-02T15:04:05"

var clockAliases = map[string]string{
	"start":      "Start",
	"start_date": "Start",
	"startdate":  "Start",
	"end":        "End",
	"end_date":   "End",
	"enddate":    "End",
}

func planClock(n *apsimx.Node, values map[string]any) ([]change, error) {
	dates := make(map[string]time.Time, 2)
	for _, key := range sortedKeys(values) {
		field, ok := clockAliases[strings.ToLower(key)]
		if !ok {
			return nil, &UnknownAttributeError{Kind: n.Kind(), Node: n.Name, Attribute: key, Allowed: []string{"Start", "End"}}
		}
		if _, dup := dates[field]; dup {
			return nil, &InvalidValueError{Attribute: key, Value: values[key], Reason: field + " given more than once"}
		}
		t, ok := toDate(values[key])
		if !ok {
			return nil, &InvalidValueError{Attribute: key, Value: values[key], Reason: "expected an ISO-8601 date such as 1990-01-31"}
		}
		dates[field] = t
	}

	start, hasStart := dates["Start"]
	end, hasEnd := dates["End"]
	if hasStart && hasEnd && end.Before(start) {
		return nil, &InvalidValueError{Attribute: "End", Value: end.Format(time.DateOnly), Reason: "is before Start"}
	}

	var changes []change
	for _, field := range []string{"Start", "End"} {
		t, ok := dates[field]
		if !ok {
			continue
		}
		c, err := encode(field, t.Format(clockLayout))
		if err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, nil
}

func inspectClock(n *apsimx.Node) (map[string]any, error) {
	out := make(map[string]any, 2)
	for _, field := range []string{"Start", "End"} {
		s, err := n.Text(field)
		if err != nil {
			return nil, err
		}
		if s == "" {
			continue
		}
		t, ok := toDate(s)
		if !ok {
			return nil, &InvalidValueError{Attribute: field, Value: s, Reason: "stored date is not ISO-8601"}
		}
		out[field] = t
	}
	return out, nil
}
