// Package pipeline defines the build and release targets of a module and the
// RunContext through which they hand values to each other.
//
// Targets never read package-level state. Everything a target produces for a
// later one (branch, version, package, release) is a field of RunContext, so
// the data flow between targets follows their declared dependencies.
package pipeline
