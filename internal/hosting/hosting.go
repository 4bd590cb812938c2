package hosting

import (
	"context"
	"fmt"
	"strings"
)

// Milestone is a named grouping of changes, titled after a version.
type Milestone struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
}

// Change is a merged change request.
type Change struct {
	Number    int
	Title     string
	Author    string
	Labels    []string
	Milestone string
}

// FirstLabel returns the first label or "" when the change is unlabeled.
func (c Change) FirstLabel() string {
	if len(c.Labels) == 0 {
		return ""
	}
	return c.Labels[0]
}

// Asset is a file attached to a release.
type Asset struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	// Digest is "sha256:<hex>"; older API responses leave it empty.
	Digest string `json:"digest,omitempty"`
}

// Matches reports whether the asset holds content of this size and SHA-256.
// Without a digest from the server only the size can be compared.
func (a Asset) Matches(size int64, sha256Hex string) bool {
	if a.Size != size {
		return false
	}
	if a.Digest == "" {
		return true
	}
	return strings.EqualFold(a.Digest, "sha256:"+sha256Hex)
}

// Release is the handle of a remote release record.
type Release struct {
	ID         int64   `json:"id"`
	TagName    string  `json:"tag_name"`
	Name       string  `json:"name"`
	Body       string  `json:"body"`
	Draft      bool    `json:"draft"`
	Prerelease bool    `json:"prerelease"`
	UploadURL  string  `json:"upload_url"`
	Assets     []Asset `json:"assets"`
}

// Asset returns the attached asset called name.
func (r *Release) Asset(name string) (Asset, bool) {
	for _, a := range r.Assets {
		if a.Name == name {
			return a, true
		}
	}
	return Asset{}, false
}

// NewRelease describes a release to create.
type NewRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Body       string `json:"body"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// Client is the subset of the hosting API used by the release targets.
type Client interface {
	Milestones(ctx context.Context) ([]Milestone, error)
	MergedChanges(ctx context.Context) ([]Change, error)
	ReleaseByTag(ctx context.Context, tag string) (*Release, bool, error)
	CreateRelease(ctx context.Context, r NewRelease) (*Release, error)
	UploadAsset(ctx context.Context, release *Release, name string, content []byte) (Asset, error)
	DeleteAsset(ctx context.Context, id int64) error
}

// ServiceError is a failed call to the hosting service.
type ServiceError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hosting: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("hosting: %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }
