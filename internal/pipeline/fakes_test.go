package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/specialistvlad/shipwright/internal/compiler"
	"github.com/specialistvlad/shipwright/internal/hosting"
	"github.com/specialistvlad/shipwright/internal/vcs"
)

type fakeRepo struct {
	mu     sync.Mutex
	branch string
	desc   vcs.Description
	tags   []string
	pushes int
}

func (r *fakeRepo) Branch(context.Context) (string, error) { return r.branch, nil }

func (r *fakeRepo) Describe(context.Context) (vcs.Description, error) { return r.desc, nil }

func (r *fakeRepo) TagExists(_ context.Context, tag string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tags {
		if t == tag {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) Tag(_ context.Context, tag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = append(r.tags, tag)
	return nil
}

func (r *fakeRepo) PushTags(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes++
	return nil
}

// fakeCompiler writes the module's dll and pdb into outputDir on Build.
type fakeCompiler struct {
	outputDir string
	module    string
	fail      error
	restored  []string
	builds    []compiler.Request
}

func (c *fakeCompiler) Restore(_ context.Context, project string) error {
	c.restored = append(c.restored, project)
	return nil
}

func (c *fakeCompiler) Build(_ context.Context, req compiler.Request) error {
	c.builds = append(c.builds, req)
	if c.fail != nil {
		return c.fail
	}
	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(c.outputDir, c.module+".dll"), []byte("MZ binary"), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.outputDir, c.module+".pdb"), []byte("symbols"), 0o644)
}

type fakeHosting struct {
	milestones []hosting.Milestone
	changes    []hosting.Change
	created    []hosting.NewRelease
	uploads    map[string][]byte
	failWith   error
}

func (h *fakeHosting) Milestones(context.Context) ([]hosting.Milestone, error) {
	if h.failWith != nil {
		return nil, h.failWith
	}
	return h.milestones, nil
}

func (h *fakeHosting) MergedChanges(context.Context) ([]hosting.Change, error) {
	return h.changes, nil
}

func (h *fakeHosting) ReleaseByTag(context.Context, string) (*hosting.Release, bool, error) {
	return nil, false, nil
}

func (h *fakeHosting) CreateRelease(_ context.Context, r hosting.NewRelease) (*hosting.Release, error) {
	h.created = append(h.created, r)
	return &hosting.Release{ID: 1, TagName: r.TagName, Draft: r.Draft, Prerelease: r.Prerelease}, nil
}

func (h *fakeHosting) UploadAsset(_ context.Context, _ *hosting.Release, name string, content []byte) (hosting.Asset, error) {
	if h.uploads == nil {
		h.uploads = map[string][]byte{}
	}
	h.uploads[name] = content
	return hosting.Asset{ID: 2, Name: name, Size: int64(len(content))}, nil
}

func (h *fakeHosting) DeleteAsset(context.Context, int64) error {
	return errors.New("unexpected delete")
}
