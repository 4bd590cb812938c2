package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/shipwright/internal/vcs"
)

var policy = BranchPolicy{Trunk: "main", ReleasePrefix: "release"}

func TestResolve(t *testing.T) {
	cases := []struct {
		name    string
		desc    vcs.Description
		branch  string
		semver  string
		mmp     string
		forName string
	}{
		{"tagged commit", vcs.Description{Tag: "v1.2.0", SHA: "abc"}, "main", "1.2.0", "1.2.0", "1.2.0"},
		{"trunk after tag", vcs.Description{Tag: "v1.2.0", CommitsSince: 3, SHA: "abc"}, "main", "1.2.1", "1.2.1", "1.2.1"},
		{"release branch version", vcs.Description{Tag: "v1.2.0", CommitsSince: 4, SHA: "abc"}, "release/1.3.0", "1.3.0-rc.4", "1.3.0", "1.3.0-rc.4"},
		{"release branch without version", vcs.Description{Tag: "v1.2.0", CommitsSince: 2, SHA: "abc"}, "release", "1.2.1-rc.2", "1.2.1", "1.2.1-rc.2"},
		{"develop", vcs.Description{Tag: "v1.2.0", CommitsSince: 7, SHA: "abc"}, "develop", "1.3.0-alpha.7", "1.3.0", "1.3.0-alpha.7"},
		{"feature", vcs.Description{Tag: "v1.2.0", CommitsSince: 1, SHA: "abc"}, "feature/Fancy_Thing", "1.2.1-feature-Fancy-Thing.1", "1.2.1", "1.2.1-feature-Fancy-Thing.1"},
		{"no tags on trunk", vcs.Description{CommitsSince: 9, SHA: "abc"}, "main", "0.1.0", "0.1.0", "0.1.0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info, err := Resolve(tc.desc, tc.branch, policy)
			require.NoError(t, err)
			assert.Equal(t, tc.semver, info.SemVer)
			assert.Equal(t, tc.mmp, info.MajorMinorPatch)
			assert.Equal(t, tc.forName, info.ForBranch(policy))
			assert.Equal(t, tc.mmp+".0", info.AssemblySemVer)
			assert.Equal(t, tc.branch, info.Branch)
		})
	}
}

func TestResolve_InvalidTag(t *testing.T) {
	_, err := Resolve(vcs.Description{Tag: "vNext", CommitsSince: 1}, "main", policy)
	assert.ErrorContains(t, err, "not a semantic version")
}

func TestInfoFormats(t *testing.T) {
	info, err := Resolve(vcs.Description{Tag: "v8.0.0", CommitsSince: 2, SHA: "deadbeef"}, "release/8.1.0", policy)
	require.NoError(t, err)

	assert.Equal(t, "08.01.00", info.Manifest())
	assert.Equal(t, "8.1.0-rc.2+Sha.deadbeef", info.FileVersion(policy))
	assert.Equal(t, "8.1.0.0", info.AssemblyVersion(policy))

	info.Branch = "main"
	assert.Equal(t, "8.1.0", info.FileVersion(policy))
	assert.Equal(t, "8.1.0", info.AssemblyVersion(policy))
}

func TestBranchPolicy(t *testing.T) {
	assert.True(t, policy.Publishable("main"))
	assert.True(t, policy.Publishable("release/2.0.0"))
	assert.False(t, policy.Publishable("develop"))
	assert.True(t, policy.IsRelease("release/2.0.0"))
	assert.False(t, policy.IsRelease("main"))
	assert.False(t, BranchPolicy{Trunk: "main"}.IsRelease("anything"))
}
