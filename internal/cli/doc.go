// Package cli parses the command line of coffeemin, validates it, and maps
// the outcome of a run to a process exit code: 0 when every path
// succeeded, 1 when any path failed, 2 for usage errors.
package cli
