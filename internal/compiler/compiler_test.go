package compiler

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	got := Expand(DefaultBuildArgs, Request{
		Project:              "Module.csproj",
		Configuration:        "Release",
		AssemblyVersion:      "1.2.3.0",
		FileVersion:          "1.2.3-rc.1+Sha.abc",
		InformationalVersion: "1.2.3-rc.1+Sha.abc",
	})
	assert.Equal(t, []string{
		"dotnet", "msbuild", "Module.csproj",
		"-p:Configuration=Release",
		"-p:AssemblyVersion=1.2.3.0",
		"-p:FileVersion=1.2.3-rc.1+Sha.abc",
		"-p:InformationalVersion=1.2.3-rc.1+Sha.abc",
	}, got)
	assert.Equal(t, "{project}", DefaultBuildArgs[2], "defaults must not be mutated")
}

func TestCommand_Runs(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	c := &Command{
		Dir:         dir,
		RestoreArgs: []string{sh, "-c", "echo restored > restore.txt", "{project}"},
		BuildArgs:   []string{sh, "-c", `echo "$1" > build.txt`, "sh", "{configuration}"},
	}
	ctx := context.Background()

	require.NoError(t, c.Restore(ctx, "Module.csproj"))
	require.NoError(t, c.Build(ctx, Request{Configuration: "Debug"}))

	out, err := os.ReadFile(filepath.Join(dir, "build.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Debug\n", string(out))
	assert.FileExists(t, filepath.Join(dir, "restore.txt"))
}

func TestCommand_Failure(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	c := &Command{Dir: t.TempDir(), BuildArgs: []string{sh, "-c", "echo broken >&2; exit 3"}}

	err = c.Build(context.Background(), Request{})
	assert.ErrorContains(t, err, "exited with code 3")
}

func TestCommand_NotConfigured(t *testing.T) {
	c := &Command{}
	assert.ErrorContains(t, c.Restore(context.Background(), "x"), "no command configured")
}
