// Package manifest stamps the package version into installer manifests
// (.dnn files).
package manifest

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/specialistvlad/shipwright/internal/ctxlog"
	"github.com/specialistvlad/shipwright/internal/fsutil"
)

// Extension of the manifests rewritten by Rewrite.
const Extension = ".dnn"

// Rewriter updates manifest versions below a root directory.
type Rewriter interface {
	Rewrite(ctx context.Context, root, version string) ([]string, error)
}

var (
	packageTag = regexp.MustCompile(`<package\b[^>]*>`)
	versionAtt = regexp.MustCompile(`(\bversion\s*=\s*")[^"]*(")`)
	nameAtt    = regexp.MustCompile(`\bname\s*=\s*"([^"]*)"`)
)

// Files rewrites every manifest found by walking the root, skipping SkipDirs.
type Files struct {
	SkipDirs []string
}

// Rewrite sets the version attribute of every <package> element in every
// manifest below root and returns the files that were saved.
func (f Files) Rewrite(ctx context.Context, root, version string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	paths, err := fsutil.FindFilesByExtension(root, Extension, f.SkipDirs...)
	if err != nil {
		return nil, fmt.Errorf("finding manifests: %w", err)
	}

	var saved []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return saved, err
		}
		out, packages := SetVersion(data, version)
		for _, name := range packages {
			logger.Info("Updated package version.", "package", name, "version", version, "manifest", path)
		}
		if len(packages) == 0 {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return saved, err
		}
		if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
			return saved, err
		}
		logger.Debug("Saved manifest.", "manifest", path)
		saved = append(saved, path)
	}
	return saved, nil
}

// SetVersion rewrites the version attribute of each <package> start tag in
// data. Tags without a version attribute are left alone. It returns the new
// content and the names of the packages updated.
func SetVersion(data []byte, version string) ([]byte, []string) {
	var names []string
	out := packageTag.ReplaceAllFunc(data, func(tag []byte) []byte {
		if !versionAtt.Match(tag) {
			return tag
		}
		name := ""
		if m := nameAtt.FindSubmatch(tag); m != nil {
			name = string(m[1])
		}
		names = append(names, name)
		return versionAtt.ReplaceAll(tag, []byte("${1}"+strings.ReplaceAll(version, "$", "$$")+"${2}"))
	})
	return out, names
}
