package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/shipwright/internal/cli"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"-h"}, noEnv)

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"--this-is-not-a-valid-flag"}, noEnv)

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_ListTargets(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"-root", t.TempDir(), "-list"}, noEnv)

	require.NoError(t, err)
	require.Contains(t, out.String(), "Package")
	require.Contains(t, out.String(), "Release")
}

func TestRun_UnknownTargetIsUsageError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"-root", t.TempDir(), "-plan", "Frobnicate"}, noEnv)

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, exitErr.Message, "Frobnicate")
}

func TestRun_BrokenProjectFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	err := os.WriteFile(filepath.Join(root, "build.hcl"), []byte("module_name = \n"), 0o600)
	require.NoError(t, err, "failed to set up test file")

	err = run(context.Background(), &bytes.Buffer{}, []string{"-root", root, "-list"}, noEnv)

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load project")
}
