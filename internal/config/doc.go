// Package config defines the format-agnostic model of a batch workflow and
// the Loader interface that format-specific packages (such as hcl)
// implement.
//
// The Workflow is the single input of the executor package: which model to
// load, which edits to apply, and at which points to run it.
package config
