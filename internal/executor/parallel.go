package executor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/shipwright/internal/ctxlog"
	"github.com/specialistvlad/shipwright/internal/node"
	"github.com/specialistvlad/shipwright/internal/scheduler"
)

// dispatchView reports targets handed to a worker as running so the
// scheduler does not emit them twice.
type dispatchView struct {
	engine     *Engine
	dispatched map[string]bool
}

func (v dispatchView) State(name string) node.State {
	s := v.engine.State(name)
	if s == node.Pending && v.dispatched[name] {
		return node.Running
	}
	return s
}

// runParallel dispatches ready targets to a bounded worker pool until no
// target is in flight and none is ready.
func (e *Engine) runParallel(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	sched := scheduler.New(e.plan)
	view := dispatchView{engine: e, dispatched: make(map[string]bool, e.plan.Len())}

	var g errgroup.Group
	g.SetLimit(e.opts.Workers)
	done := make(chan string, e.plan.Len())
	inflight := 0

	for {
		for _, t := range sched.Ready(view) {
			view.dispatched[t.Name] = true
			inflight++
			logger.Debug("Dispatching target.", "target", t.Name, "inflight", inflight)
			g.Go(func() error {
				e.visit(ctx, t)
				done <- t.Name
				return nil
			})
		}
		if inflight == 0 {
			break
		}
		<-done
		inflight--
	}
	_ = g.Wait()

	if !sched.Finished(e) {
		// Unreachable for an acyclic plan; keep the report consistent anyway.
		e.abort(ctx)
	}
}
