// Package hosting talks to the release-hosting service: milestones and merged
// pull requests for release notes, and draft releases with uploaded assets.
// GitHub is the only implementation; callers depend on the Client interface.
package hosting
