// Package node defines the unit of work the engine schedules: a named target
// with hard dependencies, soft ordering hints, a lazily evaluated guard, an
// action and a set of declared outputs.
package node

import (
	"context"
	"time"
)

// Action is the work a target performs. It receives a context carrying the
// target-scoped logger and the run's cancellation signal.
type Action func(ctx context.Context) error

// Condition is one clause of a target's guard. All clauses must hold for the
// action to run.
type Condition struct {
	// Description is logged when the clause causes a skip.
	Description string
	Check       func() bool
}

// Target is a single vertex in the task graph.
type Target struct {
	// Name is the unique identifier of the target.
	Name        string
	Description string

	// DependsOn lists targets that must complete before this one starts.
	// A failed dependency skips this target.
	DependsOn []string
	// Before and After only order targets that are already part of a run.
	// They never pull a target into the plan.
	Before []string
	After  []string

	// Conditions are evaluated immediately before the action, after all
	// dependencies have executed.
	Conditions []Condition

	// Produces holds glob patterns that must each match at least one file
	// once the action returns.
	Produces []string

	// Exclusive marks targets that write into the shared staging and
	// artifacts tree. The engine never runs them next to another target.
	Exclusive bool

	Action Action
}

// OnlyWhen appends a guard clause and returns the target for chaining.
func (t *Target) OnlyWhen(description string, check func() bool) *Target {
	t.Conditions = append(t.Conditions, Condition{Description: description, Check: check})
	return t
}

// State is the execution state of a target within one run.
type State int32

const (
	// Pending indicates the target has not been visited yet.
	Pending State = iota
	// Skipped indicates the target's action was never invoked.
	Skipped
	// Running indicates the target's action is in flight.
	Running
	// Succeeded indicates the action returned and every declared output exists.
	Succeeded
	// Failed indicates the action errored, panicked, was cancelled, or left a
	// declared output missing.
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Skipped:
		return "skipped"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == Skipped || s == Succeeded || s == Failed
}

// SkipReason records why a target ended in Skipped.
type SkipReason int

const (
	SkipNone SkipReason = iota
	// SkipCondition means a guard clause evaluated to false.
	SkipCondition
	// SkipDependencyFailed means a hard dependency failed, directly or transitively.
	SkipDependencyFailed
	// SkipAborted means an unrelated target failed and the run stopped.
	SkipAborted
)

func (r SkipReason) String() string {
	switch r {
	case SkipCondition:
		return "condition"
	case SkipDependencyFailed:
		return "dependency failed"
	case SkipAborted:
		return "run aborted"
	default:
		return ""
	}
}

// Record is the engine-owned bookkeeping for one target in one run.
type Record struct {
	Name       string
	State      State
	SkipReason SkipReason
	// Detail explains a skip, e.g. the failed condition or the failed dependency.
	Detail  string
	Err     error
	Started time.Time
	Elapsed time.Duration
}

// BlocksDependents reports whether a target in this record's state must
// skip the targets that depend on it.
func (r *Record) BlocksDependents() bool {
	if r.State == Failed {
		return true
	}
	return r.State == Skipped && (r.SkipReason == SkipDependencyFailed || r.SkipReason == SkipAborted)
}
