package hcl

import "github.com/hashicorp/hcl/v2"

// header is decoded first so module_name can be referenced by the rest of
// the file.
type header struct {
	ModuleName *string  `hcl:"module_name,optional"`
	Remain     hcl.Body `hcl:",remain"`
}

// projectFile is the body of build.hcl minus module_name. Fields are
// pre-filled with defaults; absent attributes and blocks keep them.
type projectFile struct {
	ProjectFile  *string `hcl:"project_file,optional"`
	ArtifactsDir *string `hcl:"artifacts_dir,optional"`
	StagingDir   *string `hcl:"staging_dir,optional"`
	OutputDir    *string `hcl:"output_dir,optional"`
	InstallDir   *string `hcl:"install_dir,optional"`

	Branches *branchesBlock `hcl:"branches,block"`
	Package  *packageBlock  `hcl:"package,block"`
	Deploy   *deployBlock   `hcl:"deploy,block"`
	Release  *releaseBlock  `hcl:"release,block"`
	Compiler *compilerBlock `hcl:"compiler,block"`
}

type branchesBlock struct {
	Trunk         string `hcl:"trunk,optional"`
	ReleasePrefix string `hcl:"release_prefix,optional"`
}

type packageBlock struct {
	InstallFiles       []string `hcl:"install_files,optional"`
	BinaryFiles        []string `hcl:"binary_files,optional"`
	SymbolFiles        []string `hcl:"symbol_files,optional"`
	ResourceExtensions []string `hcl:"resource_extensions,optional"`
	ResourceDirs       []string `hcl:"resource_dirs,optional"`
	ExcludeDirs        []string `hcl:"exclude_dirs,optional"`
}

type deployBlock struct {
	Dir               string   `hcl:"dir,optional"`
	ExcludeDirs       []string `hcl:"exclude_dirs,optional"`
	ExcludeExtensions []string `hcl:"exclude_extensions,optional"`
}

type releaseBlock struct {
	Owner   string `hcl:"owner,optional"`
	Repo    string `hcl:"repo,optional"`
	BaseURL string `hcl:"base_url,optional"`
}

type compilerBlock struct {
	Restore []string `hcl:"restore,optional"`
	Build   []string `hcl:"build,optional"`
}
