package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/specialistvlad/shipwright/internal/ctxlog"
)

// Git drives the git command line in Dir.
type Git struct {
	Dir string
	// Binary defaults to "git".
	Binary string
	// Getenv defaults to os.Getenv; CI refs are read from it on detached heads.
	Getenv func(string) string
}

// NewGit returns a Git client rooted at dir.
func NewGit(dir string) *Git {
	return &Git{Dir: dir}
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	logger := ctxlog.FromContext(ctx)
	bin := g.Binary
	if bin == "" {
		bin = "git"
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = g.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("Running git.", "args", args)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	out := strings.TrimSpace(stdout.String())
	if out != "" {
		logger.Debug("git output.", "output", out)
	}
	return out, nil
}

func (g *Git) getenv(key string) string {
	if g.Getenv != nil {
		return g.Getenv(key)
	}
	return os.Getenv(key)
}

// Branch returns the checked out branch. On a detached HEAD it falls back to
// the refs exported by common CI systems.
func (g *Git) Branch(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	if out != "HEAD" {
		return NormalizeBranch(out), nil
	}
	for _, key := range []string{"GITHUB_HEAD_REF", "GITHUB_REF", "CI_COMMIT_REF_NAME"} {
		if v := g.getenv(key); v != "" {
			return NormalizeBranch(v), nil
		}
	}
	return "", errors.New("detached HEAD and no branch reference in the environment")
}

// Describe finds the nearest v-prefixed tag. Without one, the tag is empty
// and CommitsSince counts every commit.
func (g *Git) Describe(ctx context.Context) (Description, error) {
	sha, err := g.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return Description{}, err
	}

	out, err := g.run(ctx, "describe", "--tags", "--long", "--match", "v[0-9]*")
	if err != nil {
		if ctx.Err() != nil {
			return Description{}, err
		}
		count, cerr := g.run(ctx, "rev-list", "--count", "HEAD")
		if cerr != nil {
			return Description{}, cerr
		}
		n, perr := strconv.Atoi(count)
		if perr != nil {
			return Description{}, fmt.Errorf("parse commit count %q: %w", count, perr)
		}
		return Description{CommitsSince: n, SHA: sha}, nil
	}

	d, err := ParseDescribe(out)
	if err != nil {
		return Description{}, err
	}
	d.SHA = sha
	return d, nil
}

// ParseDescribe parses `git describe --long` output such as v1.2.0-5-gabc1234.
func ParseDescribe(out string) (Description, error) {
	last := strings.LastIndex(out, "-g")
	if last < 0 {
		return Description{}, fmt.Errorf("unexpected describe output %q", out)
	}
	rest := out[:last]
	dash := strings.LastIndex(rest, "-")
	if dash < 0 {
		return Description{}, fmt.Errorf("unexpected describe output %q", out)
	}
	n, err := strconv.Atoi(rest[dash+1:])
	if err != nil {
		return Description{}, fmt.Errorf("unexpected describe output %q: %w", out, err)
	}
	return Description{Tag: rest[:dash], CommitsSince: n, SHA: out[last+2:]}, nil
}

// TagExists reports whether a local tag with this name exists.
func (g *Git) TagExists(ctx context.Context, tag string) (bool, error) {
	out, err := g.run(ctx, "tag", "--list", tag)
	if err != nil {
		return false, err
	}
	return out == tag, nil
}

// Tag creates a lightweight tag at HEAD.
func (g *Git) Tag(ctx context.Context, tag string) error {
	_, err := g.run(ctx, "tag", tag)
	return err
}

// PushTags pushes all local tags to the default remote.
func (g *Git) PushTags(ctx context.Context) error {
	_, err := g.run(ctx, "push", "--tags")
	return err
}
