// internal/catalog/catalog.go
// Package catalog lists the playable files of a music directory and maps
// playlist indices to paths.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/hbarrett/cadence/internal/decode"
	"github.com/hbarrett/cadence/internal/playback"
)

// ErrOutOfRange is returned by Resolve for an index outside the catalog.
var ErrOutOfRange = errors.New("catalog: index out of range")

// Dir is a flat catalog over one directory, in name order. Subdirectories
// and hidden files are not listed; only files with a playable extension
// count, so every index resolves to something the decoder will accept.
type Dir struct {
	root  string
	paths []string
}

// Open scans root and returns its catalog.
func Open(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", abs)
	}

	d := &Dir{root: abs}
	if err := d.Refresh(); err != nil {
		return nil, err
	}
	return d, nil
}

// Refresh rescans the directory.
func (d *Dir) Refresh() error {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return err
	}

	paths := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			return "", false
		}
		if !decode.IsSupported(name) {
			return "", false
		}
		return filepath.Join(d.root, name), true
	})
	slices.SortFunc(paths, func(a, b string) int {
		if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	d.paths = paths
	return nil
}

func (d *Dir) Len() int {
	return len(d.paths)
}

func (d *Dir) Resolve(i int) (string, error) {
	if i < 0 || i >= len(d.paths) {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, i)
	}
	return d.paths[i], nil
}

// Paths returns a copy of the catalog in index order.
func (d *Dir) Paths() []string {
	return slices.Clone(d.paths)
}

// IndexOf returns the index of path, or -1 if it is not in the catalog.
func (d *Dir) IndexOf(path string) int {
	return slices.Index(d.paths, path)
}

func (d *Dir) Root() string {
	return d.root
}

var _ playback.Catalog = (*Dir)(nil)
