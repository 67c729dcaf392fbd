// Package locator finds the engine installation and pins its command-line
// runner for the process.
//
// A Locator moves through three states:
//
//	Unconfigured -> Configured -> Loaded
//
// It becomes Configured when a valid bin directory is known, from (in order)
// an explicit SetBinPath call, an environment variable, a probe of the usual
// install locations for the OS, or the persisted INI config. Load pins the
// runner executable; once Loaded, reconfiguring the locator no longer changes
// the runner it hands out. WithBinPath swaps the process default locator for
// the duration of a function, which only affects loads performed inside it.
package locator
