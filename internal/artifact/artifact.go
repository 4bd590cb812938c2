// Package artifact describes files a build hands to later targets, most
// notably the install package consumed by the release targets.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Artifact is a produced file with its size and content digest.
type Artifact struct {
	Path      string `yaml:"path"`
	SizeBytes int64  `yaml:"size_bytes"`
	// ContentDigest is the hex encoded SHA-256 of the file.
	ContentDigest string `yaml:"content_digest"`
}

// New stats and hashes the file at path.
func New(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, fmt.Errorf("hash artifact %s: %w", path, err)
	}
	return &Artifact{
		Path:          path,
		SizeBytes:     n,
		ContentDigest: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

func (a *Artifact) String() string {
	return fmt.Sprintf("%s (%d bytes, sha256:%s)", a.Path, a.SizeBytes, a.ContentDigest)
}
