package natives

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func buildTestJar(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("Create entry %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("writing entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
}

func TestExtract_SkipsMetaInfAndSidecars(t *testing.T) {
	jarDir := t.TempDir()
	jarPath := filepath.Join(jarDir, "native.jar")
	buildTestJar(t, jarPath, map[string]string{
		"META-INF/MANIFEST.MF": "manifest",
		"libsomething.so":      "binary-content",
		"libsomething.so.sha1": "deadbeef",
		"libsomething.so.git":  "gitdata",
	})

	scratch, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer scratch.Close()

	if err := Extract(scratch.Dir, []string{jarPath}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if _, err := os.Stat(filepath.Join(scratch.Dir, "libsomething.so")); err != nil {
		t.Fatalf("expected native lib to be extracted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(scratch.Dir, "META-INF", "MANIFEST.MF")); !os.IsNotExist(err) {
		t.Fatal("META-INF entries must not be extracted")
	}
	if _, err := os.Stat(filepath.Join(scratch.Dir, "libsomething.so.sha1")); !os.IsNotExist(err) {
		t.Fatal(".sha1 sidecars must not be extracted")
	}
	if _, err := os.Stat(filepath.Join(scratch.Dir, "libsomething.so.git")); !os.IsNotExist(err) {
		t.Fatal(".git sidecars must not be extracted")
	}
}

func TestAcquire_UniqueDirectories(t *testing.T) {
	base := t.TempDir()
	a, err := Acquire(base)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer a.Close()
	b, err := Acquire(base)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer b.Close()

	if a.Dir == b.Dir {
		t.Fatal("expected distinct scratch directories per acquisition")
	}
}
