// internal/nodepath/doc.go

/*
Package nodepath provides a structured representation for node addresses
within a loaded model tree.

A path is a sequence of node names separated by either '.' or '/', e.g.
`.Simulations.Simulation.Field.Soil.Organic` or
`/Simulations/Simulation/Field/Clock`. A leading separator is optional and
ignored. Names are matched case-sensitively and may contain spaces, so a
path using '/' can address nodes whose names contain dots.

This package only parses and formats paths. Resolving a path against a tree
lives with the tree itself, in package apsimx.
*/
package nodepath
