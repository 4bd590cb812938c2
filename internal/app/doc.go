// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle, decoupled
// from any specific entrypoint like a CLI or server: it loads the project,
// wires the collaborators, registers the targets and runs the plan.
package app
