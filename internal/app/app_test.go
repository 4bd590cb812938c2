package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/shipwright/internal/compiler"
	"github.com/specialistvlad/shipwright/internal/config"
	"github.com/specialistvlad/shipwright/internal/hcl"
	"github.com/specialistvlad/shipwright/internal/hosting"
	"github.com/specialistvlad/shipwright/internal/manifest"
	"github.com/specialistvlad/shipwright/internal/pipeline"
	"github.com/specialistvlad/shipwright/internal/report"
	"github.com/specialistvlad/shipwright/internal/vcs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe bytes.Buffer; the logger and the summary
// printer share it.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

type stubRepo struct{}

func (stubRepo) Branch(context.Context) (string, error) { return "main", nil }
func (stubRepo) Describe(context.Context) (vcs.Description, error) {
	return vcs.Description{Tag: "v1.2.0", CommitsSince: 3, SHA: "abc123"}, nil
}
func (stubRepo) TagExists(context.Context, string) (bool, error) { return false, nil }
func (stubRepo) Tag(context.Context, string) error               { return nil }
func (stubRepo) PushTags(context.Context) error                  { return nil }

type stubCompiler struct {
	project *config.Project
	c       config.Configuration
	fail    error
}

func (s *stubCompiler) Restore(context.Context, string) error { return nil }

func (s *stubCompiler) Build(context.Context, compiler.Request) error {
	if s.fail != nil {
		return s.fail
	}
	out := s.project.OutputPath(s.c)
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(out, s.project.ModuleName+".dll"), []byte("MZ"), 0o644)
}

type stubHosting struct{}

func (stubHosting) Milestones(context.Context) ([]hosting.Milestone, error) { return nil, nil }
func (stubHosting) MergedChanges(context.Context) ([]hosting.Change, error) { return nil, nil }
func (stubHosting) ReleaseByTag(context.Context, string) (*hosting.Release, bool, error) {
	return nil, false, nil
}
func (stubHosting) CreateRelease(context.Context, hosting.NewRelease) (*hosting.Release, error) {
	return nil, errors.New("not expected")
}
func (stubHosting) UploadAsset(context.Context, *hosting.Release, string, []byte) (hosting.Asset, error) {
	return hosting.Asset{}, errors.New("not expected")
}
func (stubHosting) DeleteAsset(context.Context, int64) error { return errors.New("not expected") }

func stubs(c config.Configuration, fail error) Option {
	return WithCollaborators(func(p *config.Project, _ string) pipeline.Collaborators {
		return pipeline.Collaborators{
			Repo:      stubRepo{},
			Compiler:  &stubCompiler{project: p, c: c, fail: fail},
			Manifests: manifest.Files{SkipDirs: p.Package.ExcludeDirs},
			Hosting:   stubHosting{},
		}
	})
}

func writeModule(t *testing.T, root, module string) {
	t.Helper()
	files := map[string]string{
		"build.hcl":      "module_name = \"" + module + "\"\n",
		"Widgets.dnn":    `<dotnetnuke><packages><package name="` + module + `" version="00.00.00"></package></packages></dotnetnuke>`,
		"License.txt":    "MIT",
		"View.ascx":      "<div/>",
		"styles/app.css": "body{}",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func newTestApp(t *testing.T, out *SafeBuffer, cfg Config, fail error) *App {
	t.Helper()
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.Configuration == "" {
		cfg.Configuration = config.Release
	}
	cfg.NoColor = true
	cfg.LogLevel = "error"
	valid, err := NewConfig(cfg)
	require.NoError(t, err)
	a, err := NewApp(out, valid, hcl.NewLoader(), stubs(valid.Configuration, fail))
	require.NoError(t, err)
	return a
}

func TestNewConfig_Validation(t *testing.T) {
	_, err := NewConfig(Config{Workers: 1})
	assert.ErrorContains(t, err, "Root")

	_, err = NewConfig(Config{Root: ".", Workers: 0})
	assert.ErrorContains(t, err, "workers")

	cfg, err := NewConfig(Config{Root: ".", Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, config.Debug, cfg.Configuration)
}

func TestNewApp_LoadsProjectFile(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "Acme.Widgets")

	a := newTestApp(t, &SafeBuffer{}, Config{Root: root}, nil)

	assert.Equal(t, "Acme.Widgets", a.Project().ModuleName)
	assert.Equal(t, "Acme.Widgets.csproj", a.Project().ProjectFile)
}

func TestNewApp_DefaultsWithoutProjectFile(t *testing.T) {
	root := t.TempDir()

	a := newTestApp(t, &SafeBuffer{}, Config{Root: root}, nil)

	assert.Equal(t, "Dnn.Modules.ModuleCreator", a.Project().ModuleName)
}

func TestRun_List(t *testing.T) {
	out := &SafeBuffer{}
	a := newTestApp(t, out, Config{Root: t.TempDir(), ListOnly: true}, nil)

	require.NoError(t, a.Run(context.Background()))

	assert.Contains(t, out.String(), "* Package")
	assert.Contains(t, out.String(), "Release")
	assert.Contains(t, out.String(), "Deploy")
}

func TestRun_PlanOnly(t *testing.T) {
	out := &SafeBuffer{}
	a := newTestApp(t, out, Config{Root: t.TempDir(), PlanOnly: true, Targets: []string{"Version"}}, nil)

	require.NoError(t, a.Run(context.Background()))

	assert.Equal(t, " 1. SetBranch\n 2. Version\n", out.String())
}

func TestRun_UnknownTarget(t *testing.T) {
	a := newTestApp(t, &SafeBuffer{}, Config{Root: t.TempDir(), Targets: []string{"Deploy2"}}, nil)

	err := a.Run(context.Background())

	require.Error(t, err)
	assert.True(t, IsUsageError(err))
}

func TestRun_PackageWritesReport(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "Acme.Widgets")
	reportPath := filepath.Join(t.TempDir(), "run.yaml")
	out := &SafeBuffer{}
	a := newTestApp(t, out, Config{Root: root, ReportPath: reportPath}, nil)

	require.NoError(t, a.Run(context.Background()))

	assert.Contains(t, out.String(), "🏁 Build succeeded")
	assert.FileExists(t, filepath.Join(root, "Artifacts", "Acme.Widgets_1.2.1_install.zip"))

	doc, err := report.ReadYAML(reportPath)
	require.NoError(t, err)
	assert.Equal(t, report.StatusSucceeded, doc.Status)
	assert.Equal(t, []string{pipeline.Package}, doc.Requested)
	assert.Equal(t, "main", doc.Branch)
	assert.Equal(t, "1.2.1", doc.Version)
	require.NotNil(t, doc.Package)
	assert.Equal(t, "Acme.Widgets_1.2.1_install.zip", filepath.Base(doc.Package.Path))
	assert.NotEmpty(t, doc.RunID)
}

func TestRun_CompileFailure(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "Acme.Widgets")
	reportPath := filepath.Join(t.TempDir(), "run.yaml")
	out := &SafeBuffer{}
	a := newTestApp(t, out, Config{Root: root, ReportPath: reportPath}, errors.New("msbuild exited with 1"))

	err := a.Run(context.Background())

	require.Error(t, err)
	assert.False(t, IsUsageError(err))
	assert.Contains(t, err.Error(), "Compile")
	assert.Contains(t, out.String(), "❌ Build failed:")

	doc, rerr := report.ReadYAML(reportPath)
	require.NoError(t, rerr)
	assert.Equal(t, report.StatusFailed, doc.Status)
	assert.Equal(t, pipeline.Compile, doc.FailedTarget)
	assert.Nil(t, doc.Package)
}
