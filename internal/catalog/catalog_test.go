// internal/catalog/catalog_test.go
package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func newTestDir(t *testing.T) (string, *Dir) {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, "b.mp3", "a.flac", "c.wav", "d.ogg", "e.oga", "zz.txt", ".hidden.mp3")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFiles(t, filepath.Join(dir, "sub"), "inner.mp3")

	d, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	return dir, d
}

func TestOpen_ListsPlayableFilesInNameOrder(t *testing.T) {
	dir, d := newTestDir(t)

	if got := d.Len(); got != 5 {
		t.Fatalf("Len() = %d, want 5", got)
	}
	want := []string{"a.flac", "b.mp3", "c.wav", "d.ogg", "e.oga"}
	for i, name := range want {
		path, err := d.Resolve(i)
		if err != nil {
			t.Fatalf("Resolve(%d) = %v", i, err)
		}
		if path != filepath.Join(dir, name) {
			t.Errorf("Resolve(%d) = %q, want %q", i, path, filepath.Join(dir, name))
		}
	}
	if got := d.Root(); got != dir {
		t.Errorf("Root() = %q, want %q", got, dir)
	}
}

func TestOpen_SortIgnoresCase(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.mp3", "A.mp3", "C.mp3")

	d, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}

	want := []string{"A.mp3", "b.mp3", "C.mp3"}
	for i, name := range want {
		path, err := d.Resolve(i)
		if err != nil {
			t.Fatalf("Resolve(%d) = %v", i, err)
		}
		if path != filepath.Join(dir, name) {
			t.Errorf("Resolve(%d) = %q, want %q", i, path, filepath.Join(dir, name))
		}
	}
}

func TestDir_Resolve_OutOfRange(t *testing.T) {
	_, d := newTestDir(t)

	for _, i := range []int{-1, 5, 100} {
		if _, err := d.Resolve(i); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Resolve(%d) = %v, want %v", i, err, ErrOutOfRange)
		}
	}
}

func TestDir_IndexOf(t *testing.T) {
	dir, d := newTestDir(t)

	if got := d.IndexOf(filepath.Join(dir, "c.wav")); got != 2 {
		t.Errorf("IndexOf(c.wav) = %d, want 2", got)
	}
	if got := d.IndexOf("/nope.mp3"); got != -1 {
		t.Errorf("IndexOf(missing) = %d, want -1", got)
	}
}

func TestDir_Paths_ReturnsCopy(t *testing.T) {
	_, d := newTestDir(t)

	paths := d.Paths()
	paths[0] = "/clobbered"

	if got, _ := d.Resolve(0); got == "/clobbered" {
		t.Error("Paths() shares the catalog's backing array")
	}
}

func TestDir_Refresh_PicksUpNewFiles(t *testing.T) {
	dir, d := newTestDir(t)

	writeFiles(t, dir, "ab.mp3")
	if err := d.Refresh(); err != nil {
		t.Fatalf("Refresh() = %v", err)
	}

	if got := d.Len(); got != 6 {
		t.Fatalf("Len() after Refresh = %d, want 6", got)
	}
	if got := d.IndexOf(filepath.Join(dir, "ab.mp3")); got != 1 {
		t.Errorf("IndexOf(ab.mp3) = %d, want 1", got)
	}
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mp3")

	if _, err := Open(filepath.Join(dir, "a.mp3")); err == nil {
		t.Error("Open(file) = nil, want error")
	}
	if _, err := Open(filepath.Join(dir, "missing")); err == nil {
		t.Error("Open(missing) = nil, want error")
	}
}
