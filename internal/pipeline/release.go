package pipeline

import (
	"context"
	"fmt"

	"github.com/specialistvlad/shipwright/internal/ctxlog"
	"github.com/specialistvlad/shipwright/internal/publisher"
	"github.com/specialistvlad/shipwright/internal/releasenotes"
)

// release generates the notes for the milestone named after the version,
// creates or reuses the draft release and uploads the install package.
func (rc *RunContext) release(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if rc.Package == nil {
		return fmt.Errorf("no install package to publish")
	}
	v, err := rc.VersionString()
	if err != nil {
		return err
	}

	milestones, err := rc.Hosting.Milestones(ctx)
	if err != nil {
		return err
	}
	changes, err := rc.Hosting.MergedChanges(ctx)
	if err != nil {
		return err
	}
	rc.Notes = releasenotes.Generate(rc.Version.MajorMinorPatch, milestones, changes)
	if rc.Notes.Placeholder {
		logger.Warn("No milestone matches the version; publishing without notes.", "milestone", rc.Version.MajorMinorPatch)
	}

	prerelease := publisher.Prerelease(rc.Branch, rc.Policy())
	rel, err := rc.Publisher().CreateRelease(ctx, v, rc.Notes.Markdown(), prerelease)
	if err != nil {
		return err
	}
	rc.Release = rel
	return rc.Publisher().UploadAsset(ctx, rc.Package)
}
