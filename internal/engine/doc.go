// Package engine invokes the crop-simulation engine's command-line runner
// against a saved model file.
//
// The runner writes its results to a SQLite store next to the model
// (`<model>.db`); reading that store is the job of the results package.
package engine
