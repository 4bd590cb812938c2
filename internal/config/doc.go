// Package config defines the format-agnostic project model for a build,
// along with the Loader interface for reading it from a project file.
//
// `config.Project` is the single source of truth for the pipeline targets.
// Default supplies every value a module repository needs when it carries no
// project file; concrete loaders, such as the HCL one, start from it and
// override what the file sets.
package config
