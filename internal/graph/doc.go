// Package graph holds the target registry and turns a request for one or more
// targets into an immutable, ordered run plan.
//
// # Resolution
//
// Resolve walks the DependsOn edges from the requested targets to collect the
// minimal closure, rejects cycles (reporting the offending path), and sorts the
// closure with Kahn's algorithm. Ties are broken by registration order so the
// same request always yields the same plan.
//
// # Soft ordering
//
// Before and After constrain order only between targets that are already in the
// plan. They are applied after the hard sort as a best-effort pass: constraints
// are considered from the last declared to the first, and one that contradicts
// an accepted constraint or the hard dependencies is dropped with a warning.
// The net effect is that a later declaration wins a conflict.
package graph
