package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/shipwright/internal/compiler"
	"github.com/specialistvlad/shipwright/internal/ctxlog"
	"github.com/specialistvlad/shipwright/internal/filesync"
	"github.com/specialistvlad/shipwright/internal/fsutil"
	"github.com/specialistvlad/shipwright/internal/graph"
	"github.com/specialistvlad/shipwright/internal/node"
	"github.com/specialistvlad/shipwright/internal/publisher"
	"github.com/specialistvlad/shipwright/internal/vcs"
	"github.com/specialistvlad/shipwright/internal/version"
)

// Target names.
const (
	Clean               = "Clean"
	Restore             = "Restore"
	SetBranch           = "SetBranch"
	Version             = "Version"
	SetManifestVersions = "SetManifestVersions"
	TagRelease          = "TagRelease"
	Compile             = "Compile"
	Package             = "Package"
	Deploy              = "Deploy"
	Release             = "Release"
	CI                  = "CI"
)

// DefaultTarget runs when none is requested.
const DefaultTarget = Package

// Register adds every target to g.
func Register(g *graph.Graph, rc *RunContext) error {
	for _, t := range Targets(rc) {
		if err := g.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Targets builds the target set bound to rc, in registration order.
func Targets(rc *RunContext) []*node.Target {
	return []*node.Target{
		{
			Name:        Clean,
			Description: "Empties the artifacts directory.",
			Before:      []string{Restore, Package},
			Action:      rc.clean,
		},
		{
			Name:        Restore,
			Description: "Restores the project's packages.",
			Action:      rc.restore,
		},
		{
			Name:        SetBranch,
			Description: "Determines the active branch.",
			Action:      rc.setBranch,
		},
		{
			Name:        Version,
			Description: "Derives the version from tag history.",
			DependsOn:   []string{SetBranch},
			Action:      rc.version,
		},
		{
			Name:        SetManifestVersions,
			Description: "Stamps the version into installer manifests.",
			DependsOn:   []string{Version},
			Action:      rc.setManifestVersions,
		},
		rc.publishGuards(&node.Target{
			Name:        TagRelease,
			Description: "Tags the version and pushes tags.",
			DependsOn:   []string{SetBranch, Version},
			Action:      rc.tagRelease,
		}),
		{
			Name:        Compile,
			Description: "Compiles the project with version stamps.",
			DependsOn:   []string{Clean, Restore, SetManifestVersions, TagRelease, SetBranch, Version},
			Action:      rc.compile,
		},
		{
			Name:        Package,
			Description: "Assembles the install package.",
			DependsOn:   []string{Clean, SetManifestVersions, Compile, SetBranch, TagRelease},
			Produces:    []string{filepath.Join(rc.Project.ArtifactsPath(), "*.zip")},
			Exclusive:   true,
			Action:      rc.packageModule,
		},
		(&node.Target{
			Name:        Deploy,
			Description: "Copies the built module into the surrounding site.",
			DependsOn:   []string{Compile},
			Action:      rc.deploy,
		}).OnlyWhen("project lives in a site's DesktopModules folder", func() bool {
			return rc.Project.Deploy.Dir != ""
		}),
		rc.publishGuards(&node.Target{
			Name:        Release,
			Description: "Publishes a draft release with notes and the install package.",
			DependsOn:   []string{Package, TagRelease},
			Exclusive:   true,
			Action:      rc.release,
		}),
		{
			Name:        CI,
			Description: "Packages and, where allowed, publishes.",
			DependsOn:   []string{Package, TagRelease, Release},
		},
	}
}

// publishGuards adds the conditions shared by tagging and releasing.
func (rc *RunContext) publishGuards(t *node.Target) *node.Target {
	gateAllows := func(reason error) func() bool {
		return func() bool {
			return !errors.Is(publisher.Gate(rc.Branch, rc.Token, rc.Policy()), reason)
		}
	}
	return t.
		OnlyWhen("branch is the trunk or a release branch", gateAllows(publisher.ErrBranchNotPublishable)).
		OnlyWhen("hosting credential present", gateAllows(publisher.ErrNoCredential))
}

func (rc *RunContext) clean(ctx context.Context) error {
	dir := rc.Project.ArtifactsPath()
	ctxlog.FromContext(ctx).Info("Cleaning artifacts directory.", "dir", dir)
	return fsutil.EnsureCleanDirectory(dir)
}

func (rc *RunContext) restore(ctx context.Context) error {
	return rc.Compiler.Restore(ctx, rc.Project.Path(rc.Project.ProjectFile))
}

func (rc *RunContext) setBranch(ctx context.Context) error {
	branch, err := rc.Repo.Branch(ctx)
	if err != nil {
		return fmt.Errorf("reading branch: %w", err)
	}
	rc.Branch = vcs.NormalizeBranch(branch)
	ctxlog.FromContext(ctx).Info("Set branch name.", "branch", rc.Branch)
	return nil
}

func (rc *RunContext) version(ctx context.Context) error {
	desc, err := rc.Repo.Describe(ctx)
	if err != nil {
		return fmt.Errorf("describing history: %w", err)
	}
	info, err := version.Resolve(desc, rc.Branch, rc.Policy())
	if err != nil {
		return err
	}
	rc.Version = info
	rc.resolved = true
	ctxlog.FromContext(ctx).Info("Version computed.",
		"semver", info.SemVer,
		"informational", info.InformationalVersion,
		"commits_since_tag", info.CommitsSinceTag,
	)
	return nil
}

func (rc *RunContext) setManifestVersions(ctx context.Context) error {
	_, err := rc.Manifests.Rewrite(ctx, rc.Project.Root, rc.Version.Manifest())
	return err
}

func (rc *RunContext) tagRelease(ctx context.Context) error {
	v, err := rc.VersionString()
	if err != nil {
		return err
	}
	return rc.Publisher().Tag(ctx, v)
}

func (rc *RunContext) compile(ctx context.Context) error {
	policy := rc.Policy()
	return rc.Compiler.Build(ctx, compiler.Request{
		Project:              rc.Project.Path(rc.Project.ProjectFile),
		Configuration:        string(rc.Configuration),
		AssemblyVersion:      rc.Version.AssemblyVersion(policy),
		FileVersion:          rc.Version.FileVersion(policy),
		InformationalVersion: rc.Version.InformationalVersion,
	})
}

func (rc *RunContext) deploy(ctx context.Context) error {
	d := rc.Project.Deploy
	stats, err := filesync.CopyDirectory(ctx, rc.Project.Root, d.Dir, filesync.Filter{
		ExcludeDirs:       d.ExcludeDirs,
		ExcludeExtensions: d.ExcludeExtensions,
	})
	if err != nil {
		return fmt.Errorf("deploying to %s: %w", d.Dir, err)
	}
	ctxlog.FromContext(ctx).Info("Deployed module.", "dir", d.Dir, "copied", stats.Copied, "unchanged", stats.Skipped)
	return nil
}
