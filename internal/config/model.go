package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Configuration selects the build variant and output subfolder.
type Configuration string

const (
	Debug   Configuration = "Debug"
	Release Configuration = "Release"
)

// ParseConfiguration accepts Debug or Release in any case.
func ParseConfiguration(s string) (Configuration, error) {
	switch strings.ToLower(s) {
	case "debug":
		return Debug, nil
	case "release":
		return Release, nil
	}
	return "", fmt.Errorf("unknown configuration %q: must be Debug or Release", s)
}

// Project is everything the pipeline needs to know about the module being
// built. Relative paths are resolved against Root.
type Project struct {
	Root       string
	ModuleName string
	// ProjectFile is handed to the compiler.
	ProjectFile string

	ArtifactsDir string
	StagingDir   string
	// OutputDir holds compiled binaries; {configuration} is substituted.
	OutputDir string

	Branches Branches
	Package  Package
	Deploy   Deploy
	Release  ReleaseSettings
	Compiler CompilerSettings
	// InstallDir receives a copy of the install package when set.
	InstallDir string
}

// Branches names the trunk and the release-candidate prefix.
type Branches struct {
	Trunk         string
	ReleasePrefix string
}

// Package selects the files that go into the install package.
type Package struct {
	InstallFiles       []string
	BinaryFiles        []string
	SymbolFiles        []string
	ResourceExtensions []string
	ResourceDirs       []string
	// ExcludeDirs are never walked when collecting resources.
	ExcludeDirs []string
}

// Deploy copies the built module into a running site.
type Deploy struct {
	Dir               string
	ExcludeDirs       []string
	ExcludeExtensions []string
}

// ReleaseSettings locate the hosting repository.
type ReleaseSettings struct {
	Owner   string
	Repo    string
	BaseURL string
}

// CompilerSettings hold the restore and build command lines.
type CompilerSettings struct {
	RestoreArgs []string
	BuildArgs   []string
}

// DesktopModulesDir is the site folder a module checkout usually lives in.
const DesktopModulesDir = "DesktopModules"

// Default returns the project settings for a module checked out at root.
// When root sits inside a site's DesktopModules folder the deploy and
// install directories point into that site; otherwise both are disabled.
func Default(root string) *Project {
	const module = "Dnn.Modules.ModuleCreator"
	p := &Project{
		Root:         root,
		ModuleName:   module,
		ProjectFile:  module + ".csproj",
		ArtifactsDir: "Artifacts",
		StagingDir:   filepath.Join("Artifacts", "Staging"),
		OutputDir:    filepath.Join("bin", "{configuration}"),
		Branches:     Branches{Trunk: "main", ReleasePrefix: "release"},
		Package: Package{
			InstallFiles:       []string{"*.txt", "*.dnn"},
			BinaryFiles:        []string{module + ".dll"},
			SymbolFiles:        []string{module + ".pdb"},
			ResourceExtensions: []string{".ascx", ".resx", ".js", ".png", ".css"},
			ResourceDirs:       []string{"Templates"},
			ExcludeDirs:        []string{".git", "Artifacts", "bin", "obj"},
		},
		Deploy: Deploy{
			ExcludeDirs: []string{
				".git", ".tmp", ".vs", "Artifacts", "bin", "build",
				"Components", "MigrationBackup", "obj", "Properties",
			},
			ExcludeExtensions: []string{
				".gitignore", ".nuke", ".config", ".cmd", ".cs", ".ps1", ".sh",
				".csproj", ".user", ".sln", ".dnn", ".md", ".json",
			},
		},
		Release: ReleaseSettings{Owner: "DNNCommunity", Repo: module},
		Compiler: CompilerSettings{
			RestoreArgs: []string{"dotnet", "restore", "{project}"},
			BuildArgs: []string{
				"dotnet", "msbuild", "{project}",
				"-p:Configuration={configuration}",
				"-p:AssemblyVersion={assembly_version}",
				"-p:FileVersion={file_version}",
				"-p:InformationalVersion={informational_version}",
			},
		},
	}
	if p.InDesktopModules() {
		parent := filepath.Dir(root)
		p.Deploy.Dir = filepath.Join(parent, "Admin", "ModuleCreator")
		p.InstallDir = filepath.Join(filepath.Dir(parent), "Install", "Module")
	}
	return p
}

// InDesktopModules reports whether Root is inside a site's module folder.
func (p *Project) InDesktopModules() bool {
	return filepath.Base(filepath.Dir(filepath.Clean(p.Root))) == DesktopModulesDir
}

// Path resolves rel against Root. Absolute and empty paths pass through.
func (p *Project) Path(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.Root, rel)
}

// ArtifactsPath is the absolute artifacts directory.
func (p *Project) ArtifactsPath() string { return p.Path(p.ArtifactsDir) }

// StagingPath is the absolute staging directory.
func (p *Project) StagingPath() string { return p.Path(p.StagingDir) }

// OutputPath is the absolute binaries directory for c.
func (p *Project) OutputPath(c Configuration) string {
	return p.Path(strings.ReplaceAll(p.OutputDir, "{configuration}", string(c)))
}

// PackageName is the file name of the install package for version.
func (p *Project) PackageName(version string) string {
	return fmt.Sprintf("%s_%s_install.zip", p.ModuleName, version)
}

// Validate checks the settings every run depends on.
func (p *Project) Validate() error {
	switch {
	case p.Root == "":
		return fmt.Errorf("project root is required")
	case p.ModuleName == "":
		return fmt.Errorf("module_name is required")
	case p.ArtifactsDir == "":
		return fmt.Errorf("artifacts_dir is required")
	case p.StagingDir == "":
		return fmt.Errorf("staging_dir is required")
	case p.Branches.Trunk == "":
		return fmt.Errorf("trunk branch is required")
	}
	return nil
}
