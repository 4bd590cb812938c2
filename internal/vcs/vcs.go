// Package vcs is the version-control collaborator: it reports the active
// branch and tag history and creates and pushes release tags.
package vcs

import (
	"context"
	"strings"
)

// Description locates HEAD relative to the most recent version tag.
type Description struct {
	// Tag is empty when the history carries no version tag.
	Tag          string
	CommitsSince int
	SHA          string
}

// Repository is the subset of version control the build needs.
type Repository interface {
	Branch(ctx context.Context) (string, error)
	Describe(ctx context.Context) (Description, error)
	TagExists(ctx context.Context, tag string) (bool, error)
	Tag(ctx context.Context, tag string) error
	PushTags(ctx context.Context) error
}

// NormalizeBranch strips a refs/heads/ style prefix from a ref name.
func NormalizeBranch(ref string) string {
	for _, prefix := range []string{"refs/heads/", "refs/remotes/origin/"} {
		if strings.HasPrefix(ref, prefix) {
			return strings.TrimPrefix(ref, prefix)
		}
	}
	return ref
}
