package graph

import (
	"fmt"
	"strings"
)

// CycleError reports a cycle among DependsOn edges. Path starts and ends with
// the same target.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Path, " -> "))
}

// UnknownTargetError reports a request for, or a dependency on, a target that
// was never registered.
type UnknownTargetError struct {
	Name string
	// ReferencedBy is empty when the name came from the request itself.
	ReferencedBy string
}

func (e *UnknownTargetError) Error() string {
	if e.ReferencedBy == "" {
		return fmt.Sprintf("unknown target %q", e.Name)
	}
	return fmt.Sprintf("target %q depends on unknown target %q", e.ReferencedBy, e.Name)
}
