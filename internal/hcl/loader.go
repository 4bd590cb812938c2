package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/shipwright/internal/config"
	"github.com/specialistvlad/shipwright/internal/ctxlog"
)

// DefaultFileName is the project file looked up in the root directory.
const DefaultFileName = "build.hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	// Getenv backs the env() function; defaults to os.Getenv.
	Getenv func(string) string
}

// NewLoader creates a new HCL project loader.
func NewLoader() *Loader {
	return &Loader{}
}

func (l *Loader) getenv(key string) string {
	if l.Getenv != nil {
		return l.Getenv(key)
	}
	return os.Getenv(key)
}

// Load parses the project file at path and overlays it on
// config.Default(vars.Root).
func (l *Loader) Load(ctx context.Context, path string, vars config.Variables) (*config.Project, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	project := config.Default(vars.Root)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	values := map[string]cty.Value{
		"root":          cty.StringVal(vars.Root),
		"configuration": cty.StringVal(string(vars.Configuration)),
	}

	var head header
	if diags := gohcl.DecodeBody(file.Body, l.evalContext(values), &head); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	if head.ModuleName != nil {
		project.ModuleName = *head.ModuleName
		project.ProjectFile = project.ModuleName + ".csproj"
		project.Package.BinaryFiles = []string{project.ModuleName + ".dll"}
		project.Package.SymbolFiles = []string{project.ModuleName + ".pdb"}
		project.Release.Repo = project.ModuleName
	}
	values["module_name"] = cty.StringVal(project.ModuleName)

	body := fromProject(project)
	if diags := gohcl.DecodeBody(head.Remain, l.evalContext(values), body); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	body.apply(project)

	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project file %s: %w", path, err)
	}
	logger.Debug("HCL loading complete.", "module", project.ModuleName, "artifacts_dir", project.ArtifactsDir)
	return project, nil
}

func fromProject(p *config.Project) *projectFile {
	return &projectFile{
		ProjectFile:  &p.ProjectFile,
		ArtifactsDir: &p.ArtifactsDir,
		StagingDir:   &p.StagingDir,
		OutputDir:    &p.OutputDir,
		InstallDir:   &p.InstallDir,
		Branches: &branchesBlock{
			Trunk:         p.Branches.Trunk,
			ReleasePrefix: p.Branches.ReleasePrefix,
		},
		Package: &packageBlock{
			InstallFiles:       p.Package.InstallFiles,
			BinaryFiles:        p.Package.BinaryFiles,
			SymbolFiles:        p.Package.SymbolFiles,
			ResourceExtensions: p.Package.ResourceExtensions,
			ResourceDirs:       p.Package.ResourceDirs,
			ExcludeDirs:        p.Package.ExcludeDirs,
		},
		Deploy: &deployBlock{
			Dir:               p.Deploy.Dir,
			ExcludeDirs:       p.Deploy.ExcludeDirs,
			ExcludeExtensions: p.Deploy.ExcludeExtensions,
		},
		Release: &releaseBlock{
			Owner:   p.Release.Owner,
			Repo:    p.Release.Repo,
			BaseURL: p.Release.BaseURL,
		},
		Compiler: &compilerBlock{
			Restore: p.Compiler.RestoreArgs,
			Build:   p.Compiler.BuildArgs,
		},
	}
}

func (f *projectFile) apply(p *config.Project) {
	p.ProjectFile = *f.ProjectFile
	p.ArtifactsDir = *f.ArtifactsDir
	p.StagingDir = *f.StagingDir
	p.OutputDir = *f.OutputDir
	p.InstallDir = *f.InstallDir
	p.Branches = config.Branches{Trunk: f.Branches.Trunk, ReleasePrefix: f.Branches.ReleasePrefix}
	p.Package = config.Package{
		InstallFiles:       f.Package.InstallFiles,
		BinaryFiles:        f.Package.BinaryFiles,
		SymbolFiles:        f.Package.SymbolFiles,
		ResourceExtensions: f.Package.ResourceExtensions,
		ResourceDirs:       f.Package.ResourceDirs,
		ExcludeDirs:        f.Package.ExcludeDirs,
	}
	p.Deploy = config.Deploy{
		Dir:               p.Path(f.Deploy.Dir),
		ExcludeDirs:       f.Deploy.ExcludeDirs,
		ExcludeExtensions: f.Deploy.ExcludeExtensions,
	}
	p.Release = config.ReleaseSettings{Owner: f.Release.Owner, Repo: f.Release.Repo, BaseURL: f.Release.BaseURL}
	p.Compiler = config.CompilerSettings{RestoreArgs: f.Compiler.Restore, BuildArgs: f.Compiler.Build}
	p.InstallDir = p.Path(p.InstallDir)
}
