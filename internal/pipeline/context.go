package pipeline

import (
	"fmt"

	"github.com/specialistvlad/shipwright/internal/artifact"
	"github.com/specialistvlad/shipwright/internal/compiler"
	"github.com/specialistvlad/shipwright/internal/config"
	"github.com/specialistvlad/shipwright/internal/hosting"
	"github.com/specialistvlad/shipwright/internal/manifest"
	"github.com/specialistvlad/shipwright/internal/publisher"
	"github.com/specialistvlad/shipwright/internal/releasenotes"
	"github.com/specialistvlad/shipwright/internal/vcs"
	"github.com/specialistvlad/shipwright/internal/version"
)

// Collaborators are the external systems the targets drive.
type Collaborators struct {
	Repo      vcs.Repository
	Compiler  compiler.Compiler
	Manifests manifest.Rewriter
	Hosting   hosting.Client
}

// RunContext is shared by every target of one run.
type RunContext struct {
	Project       *config.Project
	Configuration config.Configuration
	Token         string
	Collaborators

	// Set by SetBranch.
	Branch string
	// Set by Version.
	Version  version.Info
	resolved bool
	// Set by Package.
	Package *artifact.Artifact
	// Set by Release.
	Notes   releasenotes.Document
	Release *hosting.Release

	publisher *publisher.Publisher
}

// NewRunContext validates the inputs every run needs.
func NewRunContext(p *config.Project, c config.Configuration, token string, collab Collaborators) (*RunContext, error) {
	if p == nil {
		return nil, fmt.Errorf("project is required")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if collab.Repo == nil || collab.Compiler == nil || collab.Manifests == nil || collab.Hosting == nil {
		return nil, fmt.Errorf("all collaborators are required")
	}
	return &RunContext{
		Project:       p,
		Configuration: c,
		Token:         token,
		Collaborators: collab,
		publisher:     publisher.New(collab.Repo, collab.Hosting),
	}, nil
}

// Policy is the branch policy of the project.
func (rc *RunContext) Policy() version.BranchPolicy {
	return version.BranchPolicy{Trunk: rc.Project.Branches.Trunk, ReleasePrefix: rc.Project.Branches.ReleasePrefix}
}

// VersionString is the version used in tags and the package name.
func (rc *RunContext) VersionString() (string, error) {
	if !rc.resolved {
		return "", fmt.Errorf("version has not been computed")
	}
	return rc.Version.ForBranch(rc.Policy()), nil
}

// Publisher returns the release state machine of this run.
func (rc *RunContext) Publisher() *publisher.Publisher {
	return rc.publisher
}
