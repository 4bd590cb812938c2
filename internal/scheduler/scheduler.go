package scheduler

import (
	"github.com/specialistvlad/shipwright/internal/graph"
	"github.com/specialistvlad/shipwright/internal/node"
)

// StateView exposes the current state of plan members.
type StateView interface {
	State(name string) node.State
}

// Scheduler analyses a plan against live target states.
type Scheduler struct {
	plan *graph.Plan
}

// New creates a scheduler for the given plan.
func New(plan *graph.Plan) *Scheduler {
	return &Scheduler{plan: plan}
}

// Ready returns the pending targets whose hard dependencies and soft
// predecessors are all terminal, in plan order.
func (s *Scheduler) Ready(view StateView) []*node.Target {
	var ready []*node.Target
	for _, t := range s.plan.Targets() {
		if view.State(t.Name) != node.Pending {
			continue
		}
		if s.predecessorsTerminal(t.Name, view) {
			ready = append(ready, t)
		}
	}
	return ready
}

// Finished reports whether every plan member is terminal.
func (s *Scheduler) Finished(view StateView) bool {
	for _, t := range s.plan.Targets() {
		if !view.State(t.Name).Terminal() {
			return false
		}
	}
	return true
}

func (s *Scheduler) predecessorsTerminal(name string, view StateView) bool {
	for _, dep := range s.plan.Dependencies(name) {
		if !view.State(dep).Terminal() {
			return false
		}
	}
	for _, pred := range s.plan.SoftPredecessors(name) {
		if !view.State(pred).Terminal() {
			return false
		}
	}
	return true
}
