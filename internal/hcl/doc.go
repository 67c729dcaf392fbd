// Package hcl provides the HCL implementation of the config.Loader
// interface. It parses workflow files, translates them into the
// format-agnostic config.Workflow, and converts edit block attributes from
// cty values into plain Go values.
//
// Expressions may reference the process environment as env.NAME.
package hcl
