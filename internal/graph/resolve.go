package graph

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/shipwright/internal/ctxlog"
)

type edge struct {
	from, to string
}

// softEdge is a Before/After constraint, recorded in declaration order.
type softEdge struct {
	edge
	declaredBy string
}

// Resolve computes the plan for the requested targets and their transitive
// hard dependencies. A cycle or an unknown name aborts resolution and no plan
// is returned.
func (g *Graph) Resolve(ctx context.Context, names ...string) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	if len(names) == 0 {
		return nil, errors.New("no targets requested")
	}

	g.mutex.RLock()
	defer g.mutex.RUnlock()

	closure, err := g.closure(names)
	if err != nil {
		return nil, err
	}
	members := make([]*entry, 0, len(closure))
	for _, e := range closure {
		members = append(members, e)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].index < members[j].index })

	if err := detectCycle(members, closure); err != nil {
		return nil, err
	}

	hard := newAdjacency()
	for _, e := range members {
		for _, dep := range e.target.DependsOn {
			hard.add(dep, e.target.Name)
		}
	}
	all := hard.clone()

	soft := make(map[string][]string)
	var warnings []string
	declared := softEdges(members, closure)
	for i := len(declared) - 1; i >= 0; i-- {
		s := declared[i]
		if all.has(s.from, s.to) {
			continue
		}
		if all.reachable(s.to, s.from) {
			var w string
			if hard.reachable(s.to, s.from) {
				w = fmt.Sprintf("ordering %q before %q (declared by %q) contradicts hard dependencies and is ignored", s.from, s.to, s.declaredBy)
			} else {
				w = fmt.Sprintf("ordering %q before %q (declared by %q) conflicts with a later declaration and is ignored", s.from, s.to, s.declaredBy)
			}
			logger.Warn("Conflicting soft ordering.", "detail", w)
			warnings = append(warnings, w)
			continue
		}
		all.add(s.from, s.to)
		soft[s.to] = append(soft[s.to], s.from)
	}

	ordered := kahn(members, all)
	plan := newPlan(ordered, soft, warnings)
	logger.Debug("Run plan resolved.", "requested", names, "plan", plan.Names())
	return plan, nil
}

// closure collects the requested targets and everything they transitively
// depend on.
func (g *Graph) closure(names []string) (map[string]*entry, error) {
	out := make(map[string]*entry)
	var visit func(name, referencedBy string) error
	visit = func(name, referencedBy string) error {
		if _, ok := out[name]; ok {
			return nil
		}
		e, ok := g.targets[name]
		if !ok {
			return &UnknownTargetError{Name: name, ReferencedBy: referencedBy}
		}
		out[name] = e
		for _, dep := range e.target.DependsOn {
			if err := visit(dep, name); err != nil {
				return err
			}
		}
		return nil
	}
	for _, name := range names {
		if err := visit(name, ""); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// detectCycle runs a depth-first search over DependsOn edges and returns the
// first cycle found, visiting targets in registration order.
func detectCycle(members []*entry, closure map[string]*entry) error {
	const (
		white = iota
		grey
		black
	)
	colour := make(map[string]int, len(members))
	var stack []string

	var visit func(e *entry) error
	visit = func(e *entry) error {
		name := e.target.Name
		colour[name] = grey
		stack = append(stack, name)
		for _, dep := range e.target.DependsOn {
			switch colour[dep] {
			case grey:
				start := 0
				for i, s := range stack {
					if s == dep {
						start = i
						break
					}
				}
				path := append(append([]string{}, stack[start:]...), dep)
				return &CycleError{Path: path}
			case white:
				if err := visit(closure[dep]); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		colour[name] = black
		return nil
	}

	for _, e := range members {
		if colour[e.target.Name] == white {
			if err := visit(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// softEdges lists Before/After constraints between plan members in
// declaration order.
func softEdges(members []*entry, closure map[string]*entry) []softEdge {
	var out []softEdge
	for _, e := range members {
		name := e.target.Name
		for _, b := range e.target.Before {
			if _, ok := closure[b]; ok && b != name {
				out = append(out, softEdge{edge: edge{from: name, to: b}, declaredBy: name})
			}
		}
		for _, a := range e.target.After {
			if _, ok := closure[a]; ok && a != name {
				out = append(out, softEdge{edge: edge{from: a, to: name}, declaredBy: name})
			}
		}
	}
	return out
}

// kahn sorts members topologically. The ready queue is a min-heap keyed by
// registration index, which makes the order reproducible.
func kahn(members []*entry, adj *adjacency) []*entry {
	byName := make(map[string]*entry, len(members))
	indeg := make(map[string]int, len(members))
	for _, e := range members {
		byName[e.target.Name] = e
		indeg[e.target.Name] = 0
	}
	for _, succ := range adj.succ {
		for _, to := range succ {
			indeg[to]++
		}
	}

	ready := &entryHeap{}
	for _, e := range members {
		if indeg[e.target.Name] == 0 {
			heap.Push(ready, e)
		}
	}

	out := make([]*entry, 0, len(members))
	for ready.Len() > 0 {
		e := heap.Pop(ready).(*entry)
		out = append(out, e)
		for _, to := range adj.succ[e.target.Name] {
			indeg[to]--
			if indeg[to] == 0 {
				heap.Push(ready, byName[to])
			}
		}
	}
	return out
}

type entryHeap []*entry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return h[i].index < h[j].index }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)        { *h = append(*h, x.(*entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// adjacency is a successor list with edge de-duplication.
type adjacency struct {
	succ  map[string][]string
	edges map[edge]struct{}
}

func newAdjacency() *adjacency {
	return &adjacency{succ: make(map[string][]string), edges: make(map[edge]struct{})}
}

func (a *adjacency) add(from, to string) {
	if a.has(from, to) {
		return
	}
	a.edges[edge{from, to}] = struct{}{}
	a.succ[from] = append(a.succ[from], to)
}

func (a *adjacency) has(from, to string) bool {
	_, ok := a.edges[edge{from, to}]
	return ok
}

func (a *adjacency) clone() *adjacency {
	c := newAdjacency()
	for k, v := range a.succ {
		c.succ[k] = append([]string(nil), v...)
	}
	for k := range a.edges {
		c.edges[k] = struct{}{}
	}
	return c
}

// reachable reports whether to can be reached from from.
func (a *adjacency) reachable(from, to string) bool {
	seen := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			return true
		}
		for _, next := range a.succ[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}
