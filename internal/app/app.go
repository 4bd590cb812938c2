package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/specialistvlad/shipwright/internal/compiler"
	"github.com/specialistvlad/shipwright/internal/config"
	"github.com/specialistvlad/shipwright/internal/ctxlog"
	"github.com/specialistvlad/shipwright/internal/graph"
	"github.com/specialistvlad/shipwright/internal/hcl"
	"github.com/specialistvlad/shipwright/internal/hosting"
	"github.com/specialistvlad/shipwright/internal/manifest"
	"github.com/specialistvlad/shipwright/internal/pipeline"
	"github.com/specialistvlad/shipwright/internal/vcs"
)

// CollaboratorFactory builds the external collaborators for a project.
type CollaboratorFactory func(p *config.Project, token string) pipeline.Collaborators

// Option customises an App.
type Option func(*App)

// WithCollaborators replaces the default git, compiler, manifest and GitHub
// collaborators.
func WithCollaborators(f CollaboratorFactory) Option {
	return func(a *App) { a.collaborators = f }
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config

	project       *config.Project
	collaborators CollaboratorFactory
	rc            *pipeline.RunContext
	graph         *graph.Graph
}

// NewApp is the constructor for the main application. It loads the project,
// builds the run context and registers every target.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, opts ...Option) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{outW: outW, logger: logger, config: cfg, collaborators: DefaultCollaborators}
	for _, opt := range opts {
		opt(a)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	project, err := loadProject(ctx, loader, root, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	a.project = project
	logger.Debug("Project loaded.", "module", project.ModuleName, "root", project.Root)

	a.rc, err = pipeline.NewRunContext(project, cfg.Configuration, cfg.GitHubToken, a.collaborators(project, cfg.GitHubToken))
	if err != nil {
		return nil, err
	}

	a.graph = graph.New()
	if err := pipeline.Register(a.graph, a.rc); err != nil {
		return nil, err
	}
	logger.Debug("Targets registered.", "count", len(a.graph.Targets()))
	return a, nil
}

func loadProject(ctx context.Context, loader config.Loader, root string, cfg *Config) (*config.Project, error) {
	path := cfg.ProjectFile
	if path == "" {
		candidate := filepath.Join(root, hcl.DefaultFileName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path == "" {
		ctxlog.FromContext(ctx).Debug("No project file, using defaults.")
		return config.Default(root), nil
	}
	return loader.Load(ctx, path, config.Variables{Root: root, Configuration: cfg.Configuration})
}

// DefaultCollaborators drives git, the configured compiler commands, the
// manifest files and the GitHub API.
func DefaultCollaborators(p *config.Project, token string) pipeline.Collaborators {
	return pipeline.Collaborators{
		Repo: vcs.NewGit(p.Root),
		Compiler: &compiler.Command{
			Dir:         p.Root,
			RestoreArgs: p.Compiler.RestoreArgs,
			BuildArgs:   p.Compiler.BuildArgs,
		},
		Manifests: manifest.Files{SkipDirs: p.Package.ExcludeDirs},
		Hosting:   hosting.NewGitHub(p.Release.BaseURL, p.Release.Owner, p.Release.Repo, token),
	}
}

// Project returns the loaded project. This is primarily for testing.
func (a *App) Project() *config.Project {
	return a.project
}

// RunContext returns the shared run context. This is primarily for testing.
func (a *App) RunContext() *pipeline.RunContext {
	return a.rc
}

// IsUsageError reports whether err was caused by a bad request rather than a
// failed build.
func IsUsageError(err error) bool {
	var unknown *graph.UnknownTargetError
	return errors.As(err, &unknown)
}

// Close releases collaborator resources such as idle API connections.
func (a *App) Close() error {
	if c, ok := a.rc.Hosting.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
