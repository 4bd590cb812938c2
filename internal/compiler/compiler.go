// Package compiler is the compile collaborator. The build only needs to
// restore a project's packages and compile it with version stamps; the
// default implementation runs configurable command lines.
package compiler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/specialistvlad/shipwright/internal/ctxlog"
)

// Request describes one compilation.
type Request struct {
	Project              string
	Configuration        string
	AssemblyVersion      string
	FileVersion          string
	InformationalVersion string
}

// Compiler restores and compiles a project.
type Compiler interface {
	Restore(ctx context.Context, project string) error
	Build(ctx context.Context, req Request) error
}

// Command runs external tools. Arguments may contain the placeholders
// {project}, {configuration}, {assembly_version}, {file_version} and
// {informational_version}.
type Command struct {
	Dir         string
	RestoreArgs []string
	BuildArgs   []string
}

// DefaultRestoreArgs and DefaultBuildArgs target the .NET tool chain.
var (
	DefaultRestoreArgs = []string{"dotnet", "restore", "{project}"}
	DefaultBuildArgs   = []string{
		"dotnet", "msbuild", "{project}",
		"-p:Configuration={configuration}",
		"-p:AssemblyVersion={assembly_version}",
		"-p:FileVersion={file_version}",
		"-p:InformationalVersion={informational_version}",
	}
)

// Restore runs the restore command for project.
func (c *Command) Restore(ctx context.Context, project string) error {
	return c.exec(ctx, "restore", Expand(c.RestoreArgs, Request{Project: project}))
}

// Build runs the build command for req.
func (c *Command) Build(ctx context.Context, req Request) error {
	return c.exec(ctx, "build", Expand(c.BuildArgs, req))
}

// Expand substitutes request values into args.
func Expand(args []string, req Request) []string {
	r := strings.NewReplacer(
		"{project}", req.Project,
		"{configuration}", req.Configuration,
		"{assembly_version}", req.AssemblyVersion,
		"{file_version}", req.FileVersion,
		"{informational_version}", req.InformationalVersion,
	)
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = r.Replace(a)
	}
	return out
}

func (c *Command) exec(ctx context.Context, step string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s: no command configured", step)
	}
	logger := ctxlog.FromContext(ctx).With("step", step)
	logger.Info("Running compiler.", "command", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = c.Dir
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sc := bufio.NewScanner(pr)
		for sc.Scan() {
			logger.Debug(sc.Text())
		}
		_, _ = io.Copy(io.Discard, pr)
	}()

	err := cmd.Run()
	_ = pw.Close()
	wg.Wait()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s: %s exited with code %d", step, args[0], exitErr.ExitCode())
		}
		return fmt.Errorf("%s: %w", step, err)
	}
	return nil
}
