package archive

import (
	"path/filepath"
	"slices"
	"strings"
)

// FileInfo describes a discovered file to a Predicate.
type FileInfo struct {
	// Path is the path as found by the walk.
	Path string
	// RelPath is slash separated and relative to the walk root; it becomes
	// the entry name.
	RelPath string
	Name    string
	// Ext is lower-cased and includes the leading dot.
	Ext string
	// Dir is the slash separated directory part of RelPath.
	Dir string
}

func newFileInfo(root, path string) (FileInfo, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return FileInfo{}, err
	}
	rel = filepath.ToSlash(rel)
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "." {
		dir = ""
	}
	return FileInfo{
		Path:    path,
		RelPath: rel,
		Name:    filepath.Base(path),
		Ext:     strings.ToLower(filepath.Ext(path)),
		Dir:     dir,
	}, nil
}

// Predicate selects files for an archive.
type Predicate func(FileInfo) bool

// ResourcePredicate selects files whose extension is listed, or whose
// containing directory path mentions one of dirNames.
func ResourcePredicate(extensions, dirNames []string) Predicate {
	exts := make([]string, 0, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return func(f FileInfo) bool {
		if slices.Contains(exts, f.Ext) {
			return true
		}
		for _, d := range dirNames {
			if d != "" && strings.Contains(f.Dir, d) {
				return true
			}
		}
		return false
	}
}

// Any accepts a file when one of the predicates does.
func Any(preds ...Predicate) Predicate {
	return func(f FileInfo) bool {
		for _, p := range preds {
			if p(f) {
				return true
			}
		}
		return false
	}
}
