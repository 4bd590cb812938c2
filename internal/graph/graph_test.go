package graph

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/shipwright/internal/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func target(name string, deps ...string) *node.Target {
	return &node.Target{Name: name, DependsOn: deps}
}

func newTestGraph(t *testing.T, targets ...*node.Target) *Graph {
	t.Helper()
	g := New()
	for _, tg := range targets {
		require.NoError(t, g.Register(tg))
	}
	return g
}

func TestRegister(t *testing.T) {
	g := New()
	require.NoError(t, g.Register(target("a")))

	err := g.Register(target("a"))
	assert.ErrorContains(t, err, "duplicate target")

	err = g.Register(target(""))
	assert.ErrorContains(t, err, "target name is required")

	got, ok := g.Target("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.Name)
	assert.Len(t, g.Targets(), 1)
}

func TestResolve_ClosureOnly(t *testing.T) {
	g := newTestGraph(t,
		target("Clean"),
		target("Restore"),
		target("Compile", "Clean", "Restore"),
		target("Deploy", "Compile"),
		target("Unrelated"),
	)

	plan, err := g.Resolve(context.Background(), "Compile")
	require.NoError(t, err)
	assert.Equal(t, []string{"Clean", "Restore", "Compile"}, plan.Names())
	assert.False(t, plan.Contains("Deploy"))
	assert.False(t, plan.Contains("Unrelated"))
}

func TestResolve_TiesBrokenByRegistrationOrder(t *testing.T) {
	g := newTestGraph(t,
		target("z"),
		target("y"),
		target("x"),
		target("all", "x", "y", "z"),
	)

	for i := 0; i < 5; i++ {
		plan, err := g.Resolve(context.Background(), "all")
		require.NoError(t, err)
		if diff := cmp.Diff([]string{"z", "y", "x", "all"}, plan.Names()); diff != "" {
			t.Fatalf("plan mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestResolve_DependenciesPrecedeDependents(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		g := New()
		count := 3 + rng.Intn(12)
		for i := 0; i < count; i++ {
			var deps []string
			for j := 0; j < i; j++ {
				if rng.Intn(3) == 0 {
					deps = append(deps, fmt.Sprintf("t%d", j))
				}
			}
			require.NoError(t, g.Register(target(fmt.Sprintf("t%d", i), deps...)))
		}

		plan, err := g.Resolve(context.Background(), fmt.Sprintf("t%d", count-1))
		require.NoError(t, err)
		for _, tg := range plan.Targets() {
			for _, dep := range tg.DependsOn {
				assert.Less(t, plan.Position(dep), plan.Position(tg.Name), "round %d: %s must precede %s", round, dep, tg.Name)
			}
		}
	}
}

func TestResolve_Cycle(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		g := newTestGraph(t, target("a", "b"), target("b", "a"))
		plan, err := g.Resolve(context.Background(), "a")
		assert.Nil(t, plan)

		var cycleErr *CycleError
		require.True(t, errors.As(err, &cycleErr))
		assert.Equal(t, []string{"a", "b", "a"}, cycleErr.Path)
		assert.ErrorContains(t, err, "a -> b -> a")
	})

	t.Run("longer cycle behind a valid prefix", func(t *testing.T) {
		g := newTestGraph(t,
			target("root", "a"),
			target("a", "b"),
			target("b", "c"),
			target("c", "a"),
		)
		_, err := g.Resolve(context.Background(), "root")
		var cycleErr *CycleError
		require.True(t, errors.As(err, &cycleErr))
		assert.Equal(t, []string{"a", "b", "c", "a"}, cycleErr.Path)
	})

	t.Run("cycle outside the closure is ignored", func(t *testing.T) {
		g := newTestGraph(t, target("ok"), target("x", "y"), target("y", "x"))
		plan, err := g.Resolve(context.Background(), "ok")
		require.NoError(t, err)
		assert.Equal(t, []string{"ok"}, plan.Names())
	})
}

func TestResolve_UnknownTargets(t *testing.T) {
	g := newTestGraph(t, target("a", "missing"))

	_, err := g.Resolve(context.Background(), "nope")
	var unknown *UnknownTargetError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "nope", unknown.Name)
	assert.Empty(t, unknown.ReferencedBy)

	_, err = g.Resolve(context.Background(), "a")
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "missing", unknown.Name)
	assert.Equal(t, "a", unknown.ReferencedBy)

	_, err = g.Resolve(context.Background())
	assert.Error(t, err)
}

func TestResolve_SoftOrdering(t *testing.T) {
	t.Run("before reorders plan members only", func(t *testing.T) {
		g := newTestGraph(t,
			target("Restore"),
			&node.Target{Name: "Clean", Before: []string{"Restore", "NotInPlan"}},
			target("Compile", "Restore", "Clean"),
			target("NotInPlan"),
		)
		plan, err := g.Resolve(context.Background(), "Compile")
		require.NoError(t, err)
		assert.Equal(t, []string{"Clean", "Restore", "Compile"}, plan.Names())
		assert.Equal(t, []string{"Clean"}, plan.SoftPredecessors("Restore"))
		assert.Empty(t, plan.Warnings)
	})

	t.Run("after does not pull targets in", func(t *testing.T) {
		g := newTestGraph(t,
			&node.Target{Name: "Report", After: []string{"Package"}},
			target("Package"),
		)
		plan, err := g.Resolve(context.Background(), "Report")
		require.NoError(t, err)
		assert.Equal(t, []string{"Report"}, plan.Names())
	})

	t.Run("later declaration wins a conflict", func(t *testing.T) {
		g := newTestGraph(t,
			&node.Target{Name: "a", Before: []string{"b"}},
			&node.Target{Name: "b", Before: []string{"a"}},
			target("all", "a", "b"),
		)
		plan, err := g.Resolve(context.Background(), "all")
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a", "all"}, plan.Names())
		require.Len(t, plan.Warnings, 1)
		assert.Contains(t, plan.Warnings[0], "conflicts with a later declaration")
	})

	t.Run("soft order never overrides hard dependencies", func(t *testing.T) {
		g := newTestGraph(t,
			target("a"),
			&node.Target{Name: "b", DependsOn: []string{"a"}, Before: []string{"a"}},
		)
		plan, err := g.Resolve(context.Background(), "b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, plan.Names())
		require.Len(t, plan.Warnings, 1)
		assert.Contains(t, plan.Warnings[0], "contradicts hard dependencies")
	})
}

func TestPlan_Accessors(t *testing.T) {
	g := newTestGraph(t, target("a"), target("b", "a"))
	plan, err := g.Resolve(context.Background(), "b")
	require.NoError(t, err)

	assert.Equal(t, 2, plan.Len())
	assert.Equal(t, []string{"a"}, plan.Dependencies("b"))
	assert.Nil(t, plan.Dependencies("zzz"))
	assert.Equal(t, -1, plan.Position("zzz"))
	_, ok := plan.Target("zzz")
	assert.False(t, ok)
}
