// Package filesync copies files only when the destination differs from the
// source, so repeated builds do not rewrite unchanged outputs.
package filesync

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/shipwright/internal/ctxlog"
)

// Outcome is the result of a single synchronisation.
type Outcome int

const (
	// Skipped means the destination was already byte-identical.
	Skipped Outcome = iota
	// Copied means the destination was created or overwritten.
	Copied
)

func (o Outcome) String() string {
	if o == Copied {
		return "copied"
	}
	return "skipped"
}

// wordSize is the comparison block: files are compared one 64-bit word at a time.
const wordSize = 8

// CopyIfChanged copies sourceFile into targetDir unless a file with the same
// name and identical content is already there. targetDir is created when missing.
func CopyIfChanged(ctx context.Context, sourceFile, targetDir string) (Outcome, error) {
	logger := ctxlog.FromContext(ctx)

	srcInfo, err := os.Stat(sourceFile)
	if err != nil {
		return Skipped, fmt.Errorf("stat source %s: %w", sourceFile, err)
	}
	if srcInfo.IsDir() {
		return Skipped, fmt.Errorf("source %s is a directory", sourceFile)
	}
	dest := filepath.Join(targetDir, filepath.Base(sourceFile))
	logger.Debug("Comparing file.", "source", sourceFile, "bytes", srcInfo.Size())

	destInfo, err := os.Stat(dest)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug("Destination does not exist.", "destination", dest)
	case err != nil:
		return Skipped, fmt.Errorf("stat destination %s: %w", dest, err)
	default:
		logger.Debug("Destination exists.", "destination", dest, "bytes", destInfo.Size())
		same, err := sameFile(sourceFile, dest, srcInfo, destInfo)
		if err != nil {
			return Skipped, err
		}
		if same {
			logger.Info("Skipped file since it is unchanged.", "file", srcInfo.Name())
			return Skipped, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return Skipped, err
	}
	if err := copyFile(sourceFile, dest, srcInfo); err != nil {
		return Skipped, err
	}
	logger.Info("Copied file.", "file", srcInfo.Name(), "directory", targetDir)
	return Copied, nil
}

// sameFile reports whether two files hold the same bytes. Sizes are compared
// first; only equal sizes pay for a content comparison.
func sameFile(a, b string, aInfo, bInfo fs.FileInfo) (bool, error) {
	if aInfo.Size() != bInfo.Size() {
		return false, nil
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true, nil
	}
	if os.SameFile(aInfo, bInfo) {
		return true, nil
	}
	return equalContents(a, b)
}

// equalContents compares two equally sized files word by word and stops at
// the first difference.
func equalContents(a, b string) (bool, error) {
	fa, err := os.Open(a)
	if err != nil {
		return false, err
	}
	defer fa.Close()
	fb, err := os.Open(b)
	if err != nil {
		return false, err
	}
	defer fb.Close()

	ra := bufio.NewReaderSize(fa, 64*1024)
	rb := bufio.NewReaderSize(fb, 64*1024)
	var wa, wb [wordSize]byte
	for {
		na, errA := io.ReadFull(ra, wa[:])
		nb, errB := io.ReadFull(rb, wb[:])
		if na != nb {
			return false, nil
		}
		// A short final word is zero padded on both sides.
		clear(wa[na:])
		clear(wb[nb:])
		if binary.LittleEndian.Uint64(wa[:]) != binary.LittleEndian.Uint64(wb[:]) {
			return false, nil
		}
		endA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		endB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if errA != nil && !endA {
			return false, errA
		}
		if errB != nil && !endB {
			return false, errB
		}
		if endA || endB {
			return endA == endB, nil
		}
	}
}

// copyFile writes through a temporary file in the destination directory and
// renames it into place.
func copyFile(src, dest string, srcInfo fs.FileInfo) (err error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*")
	if err != nil {
		return fmt.Errorf("create temporary file in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), srcInfo.Mode().Perm()); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("move into place %s: %w", dest, err)
	}
	return os.Chtimes(dest, srcInfo.ModTime(), srcInfo.ModTime())
}
