// Package version derives the build version from version-control history,
// following a mainline/release-branch model: tagged commits use the tag,
// trunk bumps the patch, release branches produce release candidates.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/specialistvlad/shipwright/internal/vcs"
)

// Info is computed once per run and read-only afterwards.
type Info struct {
	Major int `yaml:"major"`
	Minor int `yaml:"minor"`
	Patch int `yaml:"patch"`

	MajorMinorPatch      string `yaml:"major_minor_patch"`
	SemVer               string `yaml:"semver"`
	AssemblySemVer       string `yaml:"assembly_semver"`
	InformationalVersion string `yaml:"informational_version"`

	SHA             string `yaml:"sha"`
	Branch          string `yaml:"branch"`
	CommitsSinceTag int    `yaml:"commits_since_tag"`
}

// BranchPolicy names the trunk and the prefix of release-candidate branches.
type BranchPolicy struct {
	Trunk         string
	ReleasePrefix string
}

// IsTrunk reports whether branch is the trunk.
func (p BranchPolicy) IsTrunk(branch string) bool {
	return branch == p.Trunk
}

// IsRelease reports whether branch is a release-candidate branch.
func (p BranchPolicy) IsRelease(branch string) bool {
	return p.ReleasePrefix != "" && strings.HasPrefix(branch, p.ReleasePrefix)
}

// Publishable reports whether tags and releases may be created from branch.
func (p BranchPolicy) Publishable(branch string) bool {
	return p.IsTrunk(branch) || p.IsRelease(branch)
}

var labelCleaner = regexp.MustCompile(`[^0-9A-Za-z-]+`)

// Resolve computes the version for HEAD on branch.
func Resolve(desc vcs.Description, branch string, policy BranchPolicy) (Info, error) {
	major, minor, patch, pre := 0, 1, 0, ""
	if desc.Tag != "" {
		var err error
		major, minor, patch, pre, err = parse(desc.Tag)
		if err != nil {
			return Info{}, err
		}
	}

	tagged := desc.Tag != "" && desc.CommitsSince == 0
	switch {
	case tagged:
		// the tag is the version
	case policy.IsRelease(branch):
		if ma, mi, pa, _, err := parse(strings.TrimPrefix(strings.TrimPrefix(branch, policy.ReleasePrefix), "/")); err == nil {
			major, minor, patch = ma, mi, pa
		} else {
			patch++
		}
		pre = fmt.Sprintf("rc.%d", desc.CommitsSince)
	case policy.IsTrunk(branch):
		if desc.Tag != "" {
			patch++
		}
		pre = ""
	case branch == "develop":
		minor, patch = minor+1, 0
		pre = fmt.Sprintf("alpha.%d", desc.CommitsSince)
	default:
		patch++
		label := strings.Trim(labelCleaner.ReplaceAllString(branch, "-"), "-")
		if label == "" {
			label = "ci"
		}
		pre = fmt.Sprintf("%s.%d", label, desc.CommitsSince)
	}

	mmp := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	sv := mmp
	if pre != "" {
		sv += "-" + pre
	}
	info := Info{
		Major:                major,
		Minor:                minor,
		Patch:                patch,
		MajorMinorPatch:      mmp,
		SemVer:               sv,
		AssemblySemVer:       mmp + ".0",
		InformationalVersion: sv,
		SHA:                  desc.SHA,
		Branch:               branch,
		CommitsSinceTag:      desc.CommitsSince,
	}
	if desc.SHA != "" {
		info.InformationalVersion += "+Sha." + desc.SHA
	}
	return info, nil
}

// parse reads a semantic version with or without the v prefix.
func parse(s string) (major, minor, patch int, pre string, err error) {
	v := s
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return 0, 0, 0, "", fmt.Errorf("not a semantic version: %q", s)
	}
	pre = strings.TrimPrefix(semver.Prerelease(v), "-")
	core := strings.TrimPrefix(semver.Canonical(v), "v")
	core = strings.TrimSuffix(core, semver.Prerelease(v))
	parts := strings.SplitN(core, ".", 3)
	nums := make([]int, 3)
	for i, p := range parts {
		if nums[i], err = strconv.Atoi(p); err != nil {
			return 0, 0, 0, "", fmt.Errorf("not a semantic version: %q", s)
		}
	}
	return nums[0], nums[1], nums[2], pre, nil
}

// ForBranch returns the version string used for tags, assemblies and the
// package name: the plain major.minor.patch on trunk, the full SemVer elsewhere.
func (i Info) ForBranch(policy BranchPolicy) string {
	if policy.IsTrunk(i.Branch) {
		return i.MajorMinorPatch
	}
	return i.SemVer
}

// FileVersion is the informational version outside trunk.
func (i Info) FileVersion(policy BranchPolicy) string {
	if policy.IsTrunk(i.Branch) {
		return i.MajorMinorPatch
	}
	return i.InformationalVersion
}

// AssemblyVersion is the four-part version outside trunk.
func (i Info) AssemblyVersion(policy BranchPolicy) string {
	if policy.IsTrunk(i.Branch) {
		return i.MajorMinorPatch
	}
	return i.AssemblySemVer
}

// Manifest formats the version as two-digit components, e.g. 01.02.03.
func (i Info) Manifest() string {
	return fmt.Sprintf("%02d.%02d.%02d", i.Major, i.Minor, i.Patch)
}
