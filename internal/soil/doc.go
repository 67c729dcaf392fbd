// Package soil fetches soil profiles from the SSURGO tabular service and
// maps horizon data onto a model's layer scheme.
//
// Horizon values are interpolated piecewise linearly between horizon
// mid-depths. Below the deepest horizon a value is held constant unless a
// depth-decay curve is configured for it. Curve constants and unit factors
// come from a YAML file; they are site assumptions, not facts about the
// data.
package soil
