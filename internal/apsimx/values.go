package apsimx

import (
	"encoding/json"
	"fmt"
	"math"
)

// Float64s decodes a numeric array property. JSON nulls, which the engine
// uses for missing layer values, become NaN.
func (n *Node) Float64s(key string) ([]float64, error) {
	var ptrs []*float64
	found, err := n.Get(key, &ptrs)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	out := make([]float64, len(ptrs))
	for i, p := range ptrs {
		if p == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *p
	}
	return out, nil
}

// SetFloat64s stores a numeric array property. NaN values are written as
// null.
func (n *Node) SetFloat64s(key string, values []float64) error {
	raw, err := MarshalFloat64s(values)
	if err != nil {
		return err
	}
	return n.SetRaw(key, raw)
}

// MarshalFloat64s encodes a layer array the way the engine stores it, with
// NaN and infinities as null.
func MarshalFloat64s(values []float64) (json.RawMessage, error) {
	ptrs := make([]*float64, len(values))
	for i := range values {
		if math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			continue
		}
		v := values[i]
		ptrs[i] = &v
	}
	return json.Marshal(ptrs)
}

// Strings decodes a string array property.
func (n *Node) Strings(key string) ([]string, error) {
	var out []string
	if _, err := n.Get(key, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Text decodes a string property. A missing property yields "".
func (n *Node) Text(key string) (string, error) {
	var out string
	if _, err := n.Get(key, &out); err != nil {
		return "", err
	}
	return out, nil
}

// Number decodes a scalar numeric property.
func (n *Node) Number(key string) (float64, bool, error) {
	var num json.Number
	raw, ok := n.props[key]
	if !ok || isNull(raw) {
		return 0, false, nil
	}
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0, true, fmt.Errorf("decode %s.%s as number: %w", n.Name, key, err)
	}
	f, err := num.Float64()
	if err != nil {
		return 0, true, fmt.Errorf("decode %s.%s as number: %w", n.Name, key, err)
	}
	return f, true, nil
}
