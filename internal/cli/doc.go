// Package cli turns command-line flags, positional target names and a few
// environment variables into an app.Config. Usage problems surface as an
// ExitError carrying exit code 2.
package cli
