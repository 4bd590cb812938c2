package config

import "context"

// Variables are the values a project file may reference.
type Variables struct {
	Root          string
	Configuration Configuration
}

// Loader is the interface for a format-specific project loader.
type Loader interface {
	// Load reads the project file at path on top of Default(vars.Root).
	Load(ctx context.Context, path string, vars Variables) (*Project, error)
}
