package hosting

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/specialistvlad/shipwright/internal/ctxlog"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com"

// defaultPageSize is the largest per_page the list endpoints accept.
const defaultPageSize = 100

// GitHub implements Client against the GitHub REST API.
type GitHub struct {
	rc       *resty.Client
	owner    string
	repo     string
	pageSize int
}

// NewGitHub returns a client for owner/repo. An empty baseURL selects
// DefaultBaseURL.
func NewGitHub(baseURL, owner, repo, token string) *GitHub {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", "2022-11-28").
		SetTimeout(2 * time.Minute)
	if token != "" {
		rc.SetAuthToken(token)
	}
	return &GitHub{rc: rc, owner: owner, repo: repo}
}

// Close releases idle connections.
func (g *GitHub) Close() error {
	return g.rc.Close()
}

// apiError is the error body GitHub returns on 4xx/5xx.
type apiError struct {
	Message string `json:"message"`
}

func (g *GitHub) request(ctx context.Context) *resty.Request {
	return g.rc.R().
		SetContext(ctx).
		SetError(&apiError{}).
		SetPathParam("owner", g.owner).
		SetPathParam("repo", g.repo)
}

func check(op string, resp *resty.Response, err error) error {
	if err != nil {
		return &ServiceError{Op: op, Err: err}
	}
	if !resp.IsError() {
		return nil
	}
	msg := resp.Status()
	if e, ok := resp.Error().(*apiError); ok && e.Message != "" {
		msg = e.Message
	}
	return &ServiceError{Op: op, StatusCode: resp.StatusCode(), Message: msg}
}

// listPages fetches path page by page until a short page arrives or visit
// returns false.
func listPages[T any](ctx context.Context, g *GitHub, op, path string, query map[string]string, visit func([]T) bool) error {
	size := g.pageSize
	if size <= 0 {
		size = defaultPageSize
	}
	for page := 1; ; page++ {
		var items []T
		resp, err := g.request(ctx).
			SetQueryParams(query).
			SetQueryParam("per_page", strconv.Itoa(size)).
			SetQueryParam("page", strconv.Itoa(page)).
			SetResult(&items).
			Get(path)
		if err := check(op, resp, err); err != nil {
			return err
		}
		if !visit(items) || len(items) < size {
			return nil
		}
	}
}

// Milestones lists open and closed milestones.
func (g *GitHub) Milestones(ctx context.Context) ([]Milestone, error) {
	var out []Milestone
	err := listPages(ctx, g, "list milestones", "/repos/{owner}/{repo}/milestones",
		map[string]string{"state": "all"},
		func(page []Milestone) bool {
			out = append(out, page...)
			return true
		})
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Milestones fetched.", "count", len(out))
	return out, nil
}

type pullRequest struct {
	Number   int    `json:"number"`
	Title    string `json:"title"`
	MergedAt string `json:"merged_at"`
	User     struct {
		Login string `json:"login"`
	} `json:"user"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
	Milestone *Milestone `json:"milestone"`
}

// MergedChanges lists closed pull requests that were merged, in the order the
// API returns them.
func (g *GitHub) MergedChanges(ctx context.Context) ([]Change, error) {
	var out []Change
	err := listPages(ctx, g, "list pull requests", "/repos/{owner}/{repo}/pulls",
		map[string]string{"state": "closed"},
		func(prs []pullRequest) bool {
			for _, pr := range prs {
				if pr.MergedAt == "" {
					continue
				}
				c := Change{Number: pr.Number, Title: pr.Title, Author: pr.User.Login}
				for _, l := range pr.Labels {
					c.Labels = append(c.Labels, l.Name)
				}
				if pr.Milestone != nil {
					c.Milestone = pr.Milestone.Title
				}
				out = append(out, c)
			}
			return true
		})
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Merged changes fetched.", "count", len(out))
	return out, nil
}

// ReleaseByTag finds the release for tag, draft releases included. Pages are
// read until the tag turns up.
func (g *GitHub) ReleaseByTag(ctx context.Context, tag string) (*Release, bool, error) {
	var found *Release
	err := listPages(ctx, g, "list releases", "/repos/{owner}/{repo}/releases", nil,
		func(page []Release) bool {
			for i := range page {
				if page[i].TagName == tag {
					found = &page[i]
					return false
				}
			}
			return true
		})
	if err != nil {
		return nil, false, err
	}
	return found, found != nil, nil
}

// CreateRelease creates a release record.
func (g *GitHub) CreateRelease(ctx context.Context, r NewRelease) (*Release, error) {
	out := &Release{}
	resp, err := g.request(ctx).
		SetBody(r).
		SetResult(out).
		Post("/repos/{owner}/{repo}/releases")
	if err := check("create release", resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadAsset attaches content to release under name.
func (g *GitHub) UploadAsset(ctx context.Context, release *Release, name string, content []byte) (Asset, error) {
	target := release.UploadURL
	if i := strings.Index(target, "{"); i >= 0 {
		target = target[:i]
	}
	var out Asset
	resp, err := g.rc.R().
		SetContext(ctx).
		SetError(&apiError{}).
		SetHeader("Content-Type", "application/zip").
		SetQueryParam("name", name).
		SetBody(content).
		SetResult(&out).
		Post(target)
	if err := check("upload asset "+name, resp, err); err != nil {
		return Asset{}, err
	}
	return out, nil
}

// DeleteAsset removes an uploaded asset.
func (g *GitHub) DeleteAsset(ctx context.Context, id int64) error {
	resp, err := g.request(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		Delete("/repos/{owner}/{repo}/releases/assets/{id}")
	if err := check("delete asset", resp, err); err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusNoContent && resp.StatusCode() != http.StatusOK {
		return &ServiceError{Op: "delete asset", StatusCode: resp.StatusCode(), Message: resp.Status()}
	}
	return nil
}
