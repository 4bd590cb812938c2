// Package archive packages files into zip archives whose contents depend only
// on the selected files: entries are written in name order with a fixed
// timestamp, so assembling an unchanged tree twice yields the same bytes.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/specialistvlad/shipwright/internal/artifact"
	"github.com/specialistvlad/shipwright/internal/ctxlog"
)

// epoch is the modification time stamped on every entry.
var epoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// source is one entry to be written.
type source struct {
	name string
	open func() (io.ReadCloser, error)
}

func fileSource(name, path string) source {
	return source{name: name, open: func() (io.ReadCloser, error) { return os.Open(path) }}
}

// Assembler walks a directory tree and packages the files a predicate selects.
type Assembler struct {
	// ExcludeDirs names directories that are never descended into.
	ExcludeDirs []string
}

// Assemble walks rootDir and writes every file accepted by pred into a new
// archive at archivePath. Any I/O error aborts assembly.
func (a *Assembler) Assemble(ctx context.Context, rootDir, archivePath string, pred Predicate) (*artifact.Artifact, error) {
	logger := ctxlog.FromContext(ctx)
	absArchive, err := filepath.Abs(archivePath)
	if err != nil {
		return nil, err
	}

	var sources []source
	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootDir && a.excluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if abs, err := filepath.Abs(path); err == nil && abs == absArchive {
			return nil
		}
		info, err := newFileInfo(rootDir, path)
		if err != nil {
			return err
		}
		if pred == nil || pred(info) {
			sources = append(sources, fileSource(info.RelPath, path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", rootDir, err)
	}

	logger.Debug("Assembling archive.", "archive", archivePath, "entries", len(sources))
	return write(ctx, archivePath, sources)
}

func (a *Assembler) excluded(name string) bool {
	for _, d := range a.ExcludeDirs {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

// CreateFromDirectory archives every file below dir, keeping relative paths.
func CreateFromDirectory(ctx context.Context, dir, archivePath string) (*artifact.Artifact, error) {
	return (&Assembler{}).Assemble(ctx, dir, archivePath, nil)
}

// AppendFiles adds files to the archive at archivePath under their base
// names, creating the archive when it does not exist. An entry with the same
// name is replaced. With no files it does nothing and returns nil.
func AppendFiles(ctx context.Context, archivePath string, files ...string) (*artifact.Artifact, error) {
	if len(files) == 0 {
		return nil, nil
	}

	byName := make(map[string]source)
	var existing *zip.ReadCloser
	if _, err := os.Stat(archivePath); err == nil {
		existing, err = zip.OpenReader(archivePath)
		if err != nil {
			return nil, fmt.Errorf("open archive %s: %w", archivePath, err)
		}
		defer existing.Close()
		for _, f := range existing.File {
			byName[f.Name] = source{name: f.Name, open: f.Open}
		}
	}
	for _, file := range files {
		name := filepath.Base(file)
		byName[name] = fileSource(name, file)
	}

	sources := make([]source, 0, len(byName))
	for _, s := range byName {
		sources = append(sources, s)
	}
	return write(ctx, archivePath, sources)
}

// write streams sources into a temporary file next to archivePath, sorted by
// name, and renames it into place.
func write(ctx context.Context, archivePath string, sources []source) (_ *artifact.Artifact, err error) {
	sort.Slice(sources, func(i, j int) bool { return sources[i].name < sources[j].name })

	dir := filepath.Dir(archivePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(archivePath)+".*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, s := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := addEntry(zw, s); err != nil {
			return nil, fmt.Errorf("add %s to %s: %w", s.name, archivePath, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), archivePath); err != nil {
		return nil, err
	}
	return artifact.New(archivePath)
}

func addEntry(zw *zip.Writer, s source) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     s.name,
		Method:   zip.Deflate,
		Modified: epoch,
	})
	if err != nil {
		return err
	}
	r, err := s.open()
	if err != nil {
		return err
	}
	defer r.Close()
	_, err = io.Copy(w, r)
	return err
}

// ReadEntries returns the decompressed contents of every entry.
func ReadEntries(archivePath string) (map[string][]byte, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		r, err := f.Open()
		if err != nil {
			return nil, err
		}
		b, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			return nil, err
		}
		out[f.Name] = b
	}
	return out, nil
}
