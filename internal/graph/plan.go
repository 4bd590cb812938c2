package graph

import "github.com/specialistvlad/shipwright/internal/node"

// Plan is the ordered, immutable list of targets for one invocation.
type Plan struct {
	targets []*node.Target
	index   map[string]int
	// soft maps a target to the plan members that soft ordering placed before it.
	soft map[string][]string
	// Warnings lists soft-ordering constraints that were dropped.
	Warnings []string
}

func newPlan(ordered []*entry, soft map[string][]string, warnings []string) *Plan {
	p := &Plan{
		targets:  make([]*node.Target, 0, len(ordered)),
		index:    make(map[string]int, len(ordered)),
		soft:     soft,
		Warnings: warnings,
	}
	for i, e := range ordered {
		p.targets = append(p.targets, e.target)
		p.index[e.target.Name] = i
	}
	return p
}

// Len returns the number of targets in the plan.
func (p *Plan) Len() int { return len(p.targets) }

// Targets returns the targets in execution order.
func (p *Plan) Targets() []*node.Target {
	out := make([]*node.Target, len(p.targets))
	copy(out, p.targets)
	return out
}

// Names returns target names in execution order.
func (p *Plan) Names() []string {
	out := make([]string, len(p.targets))
	for i, t := range p.targets {
		out[i] = t.Name
	}
	return out
}

// Target looks up a plan member.
func (p *Plan) Target(name string) (*node.Target, bool) {
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.targets[i], true
}

// Contains reports whether name is part of the plan.
func (p *Plan) Contains(name string) bool {
	_, ok := p.index[name]
	return ok
}

// Position returns the zero-based position of name, or -1.
func (p *Plan) Position(name string) int {
	i, ok := p.index[name]
	if !ok {
		return -1
	}
	return i
}

// Dependencies returns the hard dependencies of name.
func (p *Plan) Dependencies(name string) []string {
	t, ok := p.Target(name)
	if !ok {
		return nil
	}
	return t.DependsOn
}

// SoftPredecessors returns the accepted Before/After constraints that must be
// honoured ahead of name.
func (p *Plan) SoftPredecessors(name string) []string {
	return p.soft[name]
}
