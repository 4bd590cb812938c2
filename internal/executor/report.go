package executor

import (
	"time"

	"github.com/specialistvlad/shipwright/internal/node"
)

// Report summarises a finished run.
type Report struct {
	// Records holds one entry per plan member, in plan order.
	Records []node.Record
	Elapsed time.Duration
	// RootCause is the first target failure, nil on success.
	RootCause error
	Warnings  []string
}

func (e *Engine) report(elapsed time.Duration) *Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := &Report{
		Records:   make([]node.Record, 0, e.plan.Len()),
		Elapsed:   elapsed,
		RootCause: e.firstFailure,
		Warnings:  e.plan.Warnings,
	}
	for _, name := range e.plan.Names() {
		r.Records = append(r.Records, *e.records[name])
	}
	return r
}

// Failed reports whether any target failed.
func (r *Report) Failed() bool {
	return r.RootCause != nil
}

// Record returns the record for name.
func (r *Report) Record(name string) (node.Record, bool) {
	for _, rec := range r.Records {
		if rec.Name == name {
			return rec, true
		}
	}
	return node.Record{}, false
}

// States maps each target to its terminal state.
func (r *Report) States() map[string]node.State {
	out := make(map[string]node.State, len(r.Records))
	for _, rec := range r.Records {
		out[rec.Name] = rec.State
	}
	return out
}

// Skipped lists skipped targets in plan order.
func (r *Report) Skipped() []string {
	var out []string
	for _, rec := range r.Records {
		if rec.State == node.Skipped {
			out = append(out, rec.Name)
		}
	}
	return out
}

// Failures lists failed targets in plan order.
func (r *Report) Failures() []string {
	var out []string
	for _, rec := range r.Records {
		if rec.State == node.Failed {
			out = append(out, rec.Name)
		}
	}
	return out
}
