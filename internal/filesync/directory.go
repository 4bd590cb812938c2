package filesync

import (
	"context"
	"io/fs"
	"path/filepath"
	"slices"
)

// Filter excludes directories by name and files by extension.
type Filter struct {
	ExcludeDirs       []string
	ExcludeExtensions []string
}

func (f Filter) skipDir(name string) bool {
	return slices.Contains(f.ExcludeDirs, name)
}

func (f Filter) skipFile(name string) bool {
	return slices.Contains(f.ExcludeExtensions, filepath.Ext(name))
}

// Stats counts the outcome of a directory synchronisation.
type Stats struct {
	Copied  int
	Skipped int
}

// CopyDirectory merges src into dst, copying each file through CopyIfChanged.
// Existing files in dst that have no counterpart in src are left alone.
func CopyDirectory(ctx context.Context, src, dst string, filter Filter) (Stats, error) {
	var stats Stats
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != src && filter.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filter.skipFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(src, filepath.Dir(path))
		if err != nil {
			return err
		}
		outcome, err := CopyIfChanged(ctx, path, filepath.Join(dst, rel))
		if err != nil {
			return err
		}
		if outcome == Copied {
			stats.Copied++
		} else {
			stats.Skipped++
		}
		return nil
	})
	return stats, err
}
