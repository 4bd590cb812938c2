package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBranch(t *testing.T) {
	assert.Equal(t, "main", NormalizeBranch("refs/heads/main"))
	assert.Equal(t, "release/1.2.0", NormalizeBranch("refs/heads/release/1.2.0"))
	assert.Equal(t, "develop", NormalizeBranch("refs/remotes/origin/develop"))
	assert.Equal(t, "feature/x", NormalizeBranch("feature/x"))
}

func TestParseDescribe(t *testing.T) {
	d, err := ParseDescribe("v1.2.0-5-gabc1234")
	require.NoError(t, err)
	assert.Equal(t, Description{Tag: "v1.2.0", CommitsSince: 5, SHA: "abc1234"}, d)

	d, err = ParseDescribe("v2.0.0-rc.1-0-gdeadbee")
	require.NoError(t, err)
	assert.Equal(t, Description{Tag: "v2.0.0-rc.1", CommitsSince: 0, SHA: "deadbee"}, d)

	_, err = ParseDescribe("garbage")
	assert.Error(t, err)
}

// initRepo creates a throwaway repository with one commit, skipping the test
// when git is unavailable.
func initRepo(t *testing.T) *Git {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	for _, args := range [][]string{
		{"init", "-q", "-b", "main"},
		{"config", "user.email", "build@example.com"},
		{"config", "user.name", "build"},
		{"config", "commit.gpgsign", "false"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run(), "git %v", args)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi"), 0o644))
	for _, args := range [][]string{{"add", "."}, {"commit", "-q", "-m", "initial"}} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run(), "git %v", args)
	}
	return NewGit(dir)
}

func TestGit(t *testing.T) {
	ctx := context.Background()
	g := initRepo(t)

	branch, err := g.Branch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	d, err := g.Describe(ctx)
	require.NoError(t, err)
	assert.Empty(t, d.Tag)
	assert.Equal(t, 1, d.CommitsSince)
	assert.Len(t, d.SHA, 40)

	exists, err := g.TagExists(ctx, "v0.1.0")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, g.Tag(ctx, "v0.1.0"))
	exists, err = g.TagExists(ctx, "v0.1.0")
	require.NoError(t, err)
	assert.True(t, exists)

	d, err = g.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v0.1.0", d.Tag)
	assert.Equal(t, 0, d.CommitsSince)
}
