package executor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/specialistvlad/shipwright/internal/ctxlog"
	"github.com/specialistvlad/shipwright/internal/graph"
	"github.com/specialistvlad/shipwright/internal/node"
)

// Engine executes one plan once.
type Engine struct {
	plan *graph.Plan
	opts Options

	// mu guards records, firstFailure and aborted.
	mu           sync.Mutex
	records      map[string]*node.Record
	firstFailure error
	aborted      bool
	ran          bool

	// staging is held for writing by exclusive targets and for reading by
	// every other target while it runs.
	staging sync.RWMutex
}

// New creates an engine for the given plan.
func New(plan *graph.Plan, opts ...Option) *Engine {
	o := Options{Workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Workers < 1 {
		o.Workers = 1
	}

	records := make(map[string]*node.Record, plan.Len())
	for _, name := range plan.Names() {
		records[name] = &node.Record{Name: name, State: node.Pending}
	}
	return &Engine{plan: plan, opts: o, records: records}
}

// State implements scheduler.StateView.
func (e *Engine) State(name string) node.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rec, ok := e.records[name]; ok {
		return rec.State
	}
	return node.Pending
}

// Run executes the plan and returns the run report. The returned error is
// the first target failure, wrapping its full causal chain.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	e.mu.Lock()
	if e.ran {
		e.mu.Unlock()
		return nil, errors.New("engine has already run")
	}
	e.ran = true
	e.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	var cancel context.CancelFunc
	if e.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	for _, w := range e.plan.Warnings {
		logger.Warn("Soft ordering constraint dropped.", "detail", w)
	}

	start := time.Now()
	logger.Info("🚀 Starting run.", "targets", e.plan.Names(), "workers", e.opts.Workers)
	if e.opts.Workers > 1 {
		e.runParallel(ctx)
	} else {
		e.runSerial(ctx)
	}

	report := e.report(time.Since(start))
	if report.RootCause != nil {
		logger.Error("Run failed.", "elapsed", report.Elapsed, "error", report.RootCause)
		return report, report.RootCause
	}
	logger.Info("🏁 Run finished.", "elapsed", report.Elapsed)
	return report, nil
}

func (e *Engine) runSerial(ctx context.Context) {
	for _, t := range e.plan.Targets() {
		e.visit(ctx, t)
	}
}

// blocked reports whether a hard dependency's outcome forbids running t.
// Callers must hold e.mu.
func (e *Engine) blocked(t *node.Target) (string, bool) {
	for _, dep := range t.DependsOn {
		rec, ok := e.records[dep]
		if !ok {
			continue
		}
		if rec.BlocksDependents() {
			return dep, true
		}
	}
	return "", false
}

// visit drives a single target from Pending to a terminal state.
func (e *Engine) visit(ctx context.Context, t *node.Target) {
	if t.Exclusive {
		e.staging.Lock()
		defer e.staging.Unlock()
	} else {
		e.staging.RLock()
		defer e.staging.RUnlock()
	}

	tctx, logger := ctxlog.With(ctx, "target", t.Name)

	e.mu.Lock()
	rec := e.records[t.Name]
	if rec.State != node.Pending {
		e.mu.Unlock()
		return
	}
	if dep, blocked := e.blocked(t); blocked {
		e.skipLocked(logger, rec, node.SkipDependencyFailed, "dependency "+dep+" did not succeed")
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	if ctx.Err() != nil {
		if e.begin(rec) {
			e.fail(ctx, logger, rec, &CancellationError{Cause: context.Cause(ctx)})
		}
		return
	}

	desc, ok, err := evaluateGuard(t)
	if err != nil {
		if e.begin(rec) {
			e.fail(ctx, logger, rec, err)
		}
		return
	}
	if !ok {
		e.mu.Lock()
		if rec.State == node.Pending {
			e.skipLocked(logger, rec, node.SkipCondition, desc)
		}
		e.mu.Unlock()
		return
	}

	if !e.begin(rec) {
		return
	}
	logger.Info("▶️ Starting target.")

	err = invoke(tctx, t)
	if err == nil {
		err = verifyProduces(t)
	}
	if err != nil {
		e.fail(ctx, logger, rec, err)
		return
	}

	e.mu.Lock()
	rec.State = node.Succeeded
	rec.Elapsed = time.Since(rec.Started)
	e.mu.Unlock()
	logger.Info("✅ Target succeeded.", "state", node.Succeeded.String(), "elapsed", rec.Elapsed)
}

// begin moves a pending target to Running. It returns false when the target
// was skipped concurrently by an abort.
func (e *Engine) begin(rec *node.Record) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rec.State != node.Pending {
		return false
	}
	rec.State = node.Running
	rec.Started = time.Now()
	return true
}

// fail records a running target's failure. ctx is the run context, so the
// abort that may follow logs without the failing target's attributes.
func (e *Engine) fail(ctx context.Context, logger *slog.Logger, rec *node.Record, cause error) {
	failure := &TargetFailure{Target: rec.Name, Cause: cause}

	e.mu.Lock()
	rec.State = node.Failed
	rec.Err = failure
	rec.Elapsed = time.Since(rec.Started)
	if e.firstFailure == nil {
		e.firstFailure = failure
	}
	abort := !e.opts.ContinueOnFailure && !e.aborted
	if abort {
		e.aborted = true
	}
	e.mu.Unlock()

	logger.Error("❌ Target failed.", "state", node.Failed.String(), "elapsed", rec.Elapsed, "error", cause)
	if abort {
		e.abort(ctx)
	}
}

// abort skips every target that has not been visited yet.
func (e *Engine) abort(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.plan.Targets() {
		rec := e.records[t.Name]
		if rec.State != node.Pending {
			continue
		}
		tlogger := logger.With("target", t.Name)
		if dep, blocked := e.blocked(t); blocked {
			e.skipLocked(tlogger, rec, node.SkipDependencyFailed, "dependency "+dep+" did not succeed")
			continue
		}
		e.skipLocked(tlogger, rec, node.SkipAborted, "an earlier target failed")
	}
}

func (e *Engine) skipLocked(logger *slog.Logger, rec *node.Record, reason node.SkipReason, detail string) {
	rec.State = node.Skipped
	rec.SkipReason = reason
	rec.Detail = detail
	logger.Info("⏭️ Target skipped.", "state", node.Skipped.String(), "reason", reason.String(), "detail", detail)
}
