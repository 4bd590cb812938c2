// Package publisher tags a version, creates its remote release record and
// uploads the packaged artifact, in that order and idempotently.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/shipwright/internal/artifact"
	"github.com/specialistvlad/shipwright/internal/ctxlog"
	"github.com/specialistvlad/shipwright/internal/hosting"
	"github.com/specialistvlad/shipwright/internal/vcs"
	"github.com/specialistvlad/shipwright/internal/version"
)

// State is the progress of one release.
type State int

const (
	NotTagged State = iota
	Tagged
	Drafted
	AssetUploaded
)

func (s State) String() string {
	switch s {
	case NotTagged:
		return "NotTagged"
	case Tagged:
		return "Tagged"
	case Drafted:
		return "Drafted"
	case AssetUploaded:
		return "AssetUploaded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	// ErrInvalidTransition is returned when a step is attempted out of order.
	ErrInvalidTransition = errors.New("invalid release transition")
	// ErrBranchNotPublishable gates publishing from branches other than the
	// trunk and release-candidate branches.
	ErrBranchNotPublishable = errors.New("branch is not publishable")
	// ErrNoCredential gates publishing without a hosting credential.
	ErrNoCredential = errors.New("no hosting credential")
)

// SkipError explains why publishing is disabled for this run.
type SkipError struct {
	Reason string
	Err    error
}

func (e *SkipError) Error() string { return "publishing skipped: " + e.Reason }

func (e *SkipError) Unwrap() error { return e.Err }

// Gate reports whether tags and releases may be published from branch with
// the given credential. A nil result means publishing is allowed.
func Gate(branch, token string, policy version.BranchPolicy) error {
	if !policy.Publishable(branch) {
		return &SkipError{
			Reason: fmt.Sprintf("branch %q is neither %q nor a %q branch", branch, policy.Trunk, policy.ReleasePrefix),
			Err:    ErrBranchNotPublishable,
		}
	}
	if token == "" {
		return &SkipError{Reason: "no hosting credential", Err: ErrNoCredential}
	}
	return nil
}

// Prerelease reports whether releases from branch are marked as prereleases.
func Prerelease(branch string, policy version.BranchPolicy) bool {
	return policy.IsRelease(branch)
}

// TagName is the tag created for a version.
func TagName(v string) string { return "v" + v }

// Publisher drives one release through its states.
type Publisher struct {
	repo  vcs.Repository
	host  hosting.Client
	state State

	tag     string
	release *hosting.Release
}

// New returns a Publisher in the NotTagged state.
func New(repo vcs.Repository, host hosting.Client) *Publisher {
	return &Publisher{repo: repo, host: host}
}

// State returns the current state.
func (p *Publisher) State() State { return p.state }

// Release returns the release handle once drafted.
func (p *Publisher) Release() *hosting.Release { return p.release }

func (p *Publisher) expect(op string, allowed ...State) error {
	for _, s := range allowed {
		if p.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, op, p.state)
}

// Tag creates the version tag unless it already exists, then pushes tags.
func (p *Publisher) Tag(ctx context.Context, v string) error {
	if err := p.expect("tag", NotTagged); err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx)
	tag := TagName(v)

	exists, err := p.repo.TagExists(ctx, tag)
	if err != nil {
		return err
	}
	if exists {
		logger.Info("Tag already exists.", "tag", tag)
	} else {
		if err := p.repo.Tag(ctx, tag); err != nil {
			return err
		}
		logger.Info("🏷️ Tagged release.", "tag", tag)
	}
	if err := p.repo.PushTags(ctx); err != nil {
		return err
	}
	p.tag = tag
	p.state = Tagged
	return nil
}

// CreateRelease reuses the release already attached to the tag or creates a
// draft one.
func (p *Publisher) CreateRelease(ctx context.Context, v, notes string, prerelease bool) (*hosting.Release, error) {
	if err := p.expect("create release", Tagged); err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx)

	rel, found, err := p.host.ReleaseByTag(ctx, p.tag)
	if err != nil {
		return nil, err
	}
	if found {
		logger.Info("Release already exists.", "tag", p.tag, "id", rel.ID)
	} else {
		rel, err = p.host.CreateRelease(ctx, hosting.NewRelease{
			TagName:    p.tag,
			Name:       v,
			Body:       notes,
			Draft:      true,
			Prerelease: prerelease,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("📝 Draft release created.", "tag", p.tag, "id", rel.ID, "prerelease", prerelease)
	}
	p.release = rel
	p.state = Drafted
	return rel, nil
}

// UploadAsset attaches art to the release. An asset with the same name and
// content digest is kept; a differing one is replaced. When the host reports
// no digest the size decides.
func (p *Publisher) UploadAsset(ctx context.Context, art *artifact.Artifact) error {
	if err := p.expect("upload asset", Drafted, AssetUploaded); err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx)
	name := filepath.Base(art.Path)

	if existing, ok := p.release.Asset(name); ok {
		if existing.Matches(art.SizeBytes, art.ContentDigest) {
			logger.Info("⏭️ Asset already uploaded.", "asset", name)
			p.state = AssetUploaded
			return nil
		}
		if err := p.host.DeleteAsset(ctx, existing.ID); err != nil {
			return err
		}
		logger.Info("Replacing changed asset.", "asset", name, "old_size", existing.Size, "new_size", art.SizeBytes)
	}

	content, err := os.ReadFile(art.Path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", art.Path, err)
	}
	asset, err := p.host.UploadAsset(ctx, p.release, name, content)
	if err != nil {
		return err
	}
	kept := p.release.Assets[:0:0]
	for _, a := range p.release.Assets {
		if a.Name != name {
			kept = append(kept, a)
		}
	}
	p.release.Assets = append(kept, asset)
	logger.Info("📦 Asset uploaded.", "asset", name, "bytes", asset.Size)
	p.state = AssetUploaded
	return nil
}
