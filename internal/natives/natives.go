// Package natives extracts native-library jars into a per-run scratch
// directory ahead of launch.
package natives

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Scratch is a per-launch native-library extraction directory. Close
// removes it; callers should defer Close immediately after Acquire
// succeeds, per the single-launch resource-scoping the rest of this
// module follows.
type Scratch struct {
	Dir string
}

// Acquire creates a fresh UUID-named scratch directory under
// workDir/bin, ready to receive extracted native libraries.
func Acquire(workDir string) (*Scratch, error) {
	dir := filepath.Join(workDir, "bin", uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating native scratch directory: %w", err)
	}
	return &Scratch{Dir: dir}, nil
}

// Close removes the scratch directory and everything extracted into it.
func (s *Scratch) Close() error {
	return os.RemoveAll(s.Dir)
}

// canExtract reports whether a zip entry should be extracted: anything
// under META-INF, or a stray .git/.sha1 sidecar file, is skipped.
func canExtract(name string) bool {
	return !strings.HasPrefix(name, "META-INF") &&
		!strings.HasSuffix(name, ".git") &&
		!strings.HasSuffix(name, ".sha1")
}

// Extract unpacks every eligible entry of each native jar into dir.
func Extract(dir string, nativeJars []string) error {
	for _, jarPath := range nativeJars {
		if err := extractOne(dir, jarPath); err != nil {
			return fmt.Errorf("extracting natives from %s: %w", jarPath, err)
		}
	}
	return nil
}

func extractOne(dir, jarPath string) error {
	r, err := zip.OpenReader(jarPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !canExtract(f.Name) {
			continue
		}

		dest := filepath.Join(dir, f.Name)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}

		src, err := f.Open()
		if err != nil {
			return err
		}

		out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			src.Close()
			return err
		}

		_, copyErr := io.Copy(out, src)
		src.Close()
		out.Close()
		if copyErr != nil {
			return copyErr
		}
	}

	return nil
}
