package app

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/shipwright/internal/ctxlog"
	"github.com/specialistvlad/shipwright/internal/executor"
	"github.com/specialistvlad/shipwright/internal/pipeline"
	"github.com/specialistvlad/shipwright/internal/report"
)

// Run executes the requested targets, prints the summary and writes the
// report. The returned error names the first failing target.
func (a *App) Run(ctx context.Context) error {
	if a.config.ListOnly {
		a.listTargets()
		return nil
	}

	runID := report.NewRunID()
	logger := a.logger.With("run_id", runID)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("App.Run method started.")

	targets := a.config.Targets
	if len(targets) == 0 {
		targets = []string{pipeline.DefaultTarget}
	}
	plan, err := a.graph.Resolve(ctx, targets...)
	if err != nil {
		return fmt.Errorf("failed to resolve targets: %w", err)
	}
	logger.Debug("Plan resolved.", "targets", plan.Names())

	if a.config.PlanOnly {
		a.printPlan(plan.Names())
		return nil
	}

	logger.Info("🚀 Starting build...", "targets", targets, "configuration", a.config.Configuration, "workers", a.config.Workers)
	started := time.Now()
	engine := executor.New(plan,
		executor.WithWorkers(a.config.Workers),
		executor.WithTimeout(a.config.Timeout),
		executor.WithContinueOnFailure(a.config.ContinueOnFailure),
	)
	result, runErr := engine.Run(ctx)
	if result == nil {
		return runErr
	}

	doc := report.Build(report.RunInfo{
		ID:            runID,
		Requested:     targets,
		Configuration: string(a.config.Configuration),
		Branch:        a.rc.Branch,
		Version:       a.rc.Version.SemVer,
		Package:       a.rc.Package,
		Started:       started,
	}, result)
	report.Printer{Plain: a.config.NoColor}.Print(a.outW, doc)

	if a.config.ReportPath != "" {
		if err := report.WriteYAML(a.config.ReportPath, doc); err != nil {
			logger.Error("Writing run report failed.", "error", err)
		} else {
			logger.Info("Run report written.", "path", a.config.ReportPath)
		}
	}

	if runErr != nil {
		return fmt.Errorf("build failed: %w", runErr)
	}
	logger.Info("🏁 Build finished.", "elapsed", result.Elapsed)
	return nil
}

func (a *App) listTargets() {
	fmt.Fprintln(a.outW, "Targets:")
	for _, t := range a.graph.Targets() {
		marker := " "
		if t.Name == pipeline.DefaultTarget {
			marker = "*"
		}
		fmt.Fprintf(a.outW, " %s %-20s %s\n", marker, t.Name, t.Description)
	}
}

func (a *App) printPlan(names []string) {
	for i, name := range names {
		fmt.Fprintf(a.outW, "%2d. %s\n", i+1, name)
	}
}
