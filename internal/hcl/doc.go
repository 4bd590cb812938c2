// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It parses the project file, evaluates it with the build
// variables and a small function library, and overlays the result on the
// default project model.
package hcl
