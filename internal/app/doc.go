// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the two run modes, a single edited model
// and a batch workflow, decoupled from any specific entrypoint like a CLI.
package app
