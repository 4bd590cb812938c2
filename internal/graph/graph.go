package graph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/shipwright/internal/node"
)

// Graph is the registry of every target known to a build. All operations on
// the graph are concurrency-safe.
type Graph struct {
	// mutex protects the registry during concurrent access.
	mutex sync.RWMutex
	// targets stores registered targets keyed by name.
	targets map[string]*entry
	// order keeps registration order, which breaks ties during sorting.
	order []*entry
}

type entry struct {
	target *node.Target
	index  int
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		targets: make(map[string]*entry),
	}
}

// Register adds a target. Names must be non-empty and unique.
func (g *Graph) Register(t *node.Target) error {
	if t == nil || t.Name == "" {
		return errors.New("target name is required")
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.targets[t.Name]; ok {
		return fmt.Errorf("duplicate target: %q", t.Name)
	}
	e := &entry{target: t, index: len(g.order)}
	g.targets[t.Name] = e
	g.order = append(g.order, e)
	return nil
}

// MustRegister is Register for statically defined targets, where a failure is
// a programming error.
func (g *Graph) MustRegister(targets ...*node.Target) {
	for _, t := range targets {
		if err := g.Register(t); err != nil {
			panic(err)
		}
	}
}

// Targets returns every registered target in registration order.
func (g *Graph) Targets() []*node.Target {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	out := make([]*node.Target, 0, len(g.order))
	for _, e := range g.order {
		out = append(out, e.target)
	}
	return out
}

// Target looks up a registered target by name.
func (g *Graph) Target(name string) (*node.Target, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	e, ok := g.targets[name]
	if !ok {
		return nil, false
	}
	return e.target, true
}
