package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/specialistvlad/shipwright/internal/archive"
	"github.com/specialistvlad/shipwright/internal/ctxlog"
	"github.com/specialistvlad/shipwright/internal/filesync"
	"github.com/specialistvlad/shipwright/internal/fsutil"
)

// Entry names inside the install package.
const (
	ResourcesArchive = "Resources.zip"
	SymbolsArchive   = "Symbols.zip"
	BinDir           = "bin"
)

// packageModule stages resources, symbols, install files and binaries, zips
// the staging directory into the artifacts directory and removes staging.
func (rc *RunContext) packageModule(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	p := rc.Project
	staging := p.StagingPath()
	output := p.OutputPath(rc.Configuration)

	v, err := rc.VersionString()
	if err != nil {
		return err
	}
	if err := fsutil.EnsureCleanDirectory(staging); err != nil {
		return fmt.Errorf("preparing staging: %w", err)
	}

	exclude := slices.Clone(p.Package.ExcludeDirs)
	exclude = append(exclude, filepath.Base(p.ArtifactsPath()))
	assembler := &archive.Assembler{ExcludeDirs: exclude}
	resources, err := assembler.Assemble(ctx, p.Root, filepath.Join(staging, ResourcesArchive),
		archive.ResourcePredicate(p.Package.ResourceExtensions, p.Package.ResourceDirs))
	if err != nil {
		return fmt.Errorf("packaging resources: %w", err)
	}
	logger.Debug("Resources packaged.", "archive", resources.Path, "bytes", resources.SizeBytes)

	symbols, err := fsutil.GlobFiles(output, p.Package.SymbolFiles...)
	if err != nil {
		return err
	}
	if _, err := archive.AppendFiles(ctx, filepath.Join(staging, SymbolsArchive), symbols...); err != nil {
		return fmt.Errorf("packaging symbols: %w", err)
	}

	installFiles, err := fsutil.GlobFiles(p.Root, p.Package.InstallFiles...)
	if err != nil {
		return err
	}
	if err := copyAll(ctx, installFiles, staging); err != nil {
		return err
	}

	binaries, err := fsutil.GlobFiles(output, p.Package.BinaryFiles...)
	if err != nil {
		return err
	}
	if len(binaries) == 0 {
		logger.Warn("No binaries found.", "dir", output, "patterns", p.Package.BinaryFiles)
	}
	if err := copyAll(ctx, binaries, filepath.Join(staging, BinDir)); err != nil {
		return err
	}

	pkg, err := archive.CreateFromDirectory(ctx, staging, filepath.Join(p.ArtifactsPath(), p.PackageName(v)))
	if err != nil {
		return fmt.Errorf("creating install package: %w", err)
	}
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("removing staging: %w", err)
	}
	rc.Package = pkg
	logger.Info("📦 Install package created.", "package", pkg.Path, "bytes", pkg.SizeBytes, "sha256", pkg.ContentDigest)

	if p.InstallDir != "" {
		return rc.installPackage(ctx, pkg.Path)
	}
	return nil
}

// installPackage replaces earlier packages of the module in the site's
// install directory with pkg.
func (rc *RunContext) installPackage(ctx context.Context, pkg string) error {
	dir := rc.Project.InstallDir
	previous, err := fsutil.GlobFiles(dir, rc.Project.ModuleName+"*.*")
	if err != nil {
		return err
	}
	previous = slices.DeleteFunc(previous, func(f string) bool {
		return filepath.Base(f) == filepath.Base(pkg)
	})
	if err := fsutil.RemoveFiles(previous...); err != nil {
		return fmt.Errorf("removing previous packages: %w", err)
	}
	outcome, err := filesync.CopyIfChanged(ctx, pkg, dir)
	if err != nil {
		return fmt.Errorf("installing package: %w", err)
	}
	ctxlog.FromContext(ctx).Info("Install package copied.", "dir", dir, "outcome", outcome.String(), "replaced", len(previous))
	return nil
}

func copyAll(ctx context.Context, files []string, dir string) error {
	for _, f := range files {
		if _, err := filesync.CopyIfChanged(ctx, f, dir); err != nil {
			return fmt.Errorf("staging %s: %w", f, err)
		}
	}
	return nil
}
