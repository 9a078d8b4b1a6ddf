// Package hostshell provides the filesystem side of the host shell:
// enumerating the image frames of a directory.
package hostshell

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"annotator-go/domain/frame"
)

// ImageExtensions are the accepted frame file extensions, lower case.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// Lister enumerates the frames of a directory.
type Lister interface {
	List(dir string) ([]string, error)
}

// DirLister lists frames from the local filesystem.
type DirLister struct {
	logger *slog.Logger
}

// NewDirLister creates a DirLister.
func NewDirLister(logger *slog.Logger) *DirLister {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirLister{logger: logger.With("component", "hostshell")}
}

// List returns the absolute paths of the image files directly inside dir,
// ordered by the first integer embedded in each file name.
func (l *DirLister) List(dir string) ([]string, error) {
	paths, err := ListImageFiles(dir)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("Listed frames", "dir", dir, "count", len(paths))
	return paths, nil
}

// ListImageFiles returns the absolute paths of the image files directly
// inside dir. Files are ordered ascending by the first run of digits in their
// name; names with equal keys keep name order.
func ListImageFiles(dir string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	type item struct {
		name string
		key  frame.SortKey
	}
	items := make([]item, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsImageName(entry.Name()) {
			continue
		}
		items = append(items, item{name: entry.Name(), key: frame.KeyOf(entry.Name())})
	}

	// os.ReadDir returns entries sorted by name, so a stable sort leaves
	// equal keys in lexicographic order.
	slices.SortStableFunc(items, func(a, b item) int {
		return a.key.Compare(b.key)
	})

	paths := make([]string, len(items))
	for i, it := range items {
		paths[i] = filepath.Join(abs, it.name)
	}
	return paths, nil
}

// IsImageName reports whether name has one of the accepted extensions,
// ignoring case.
func IsImageName(name string) bool {
	return slices.Contains(ImageExtensions, strings.ToLower(filepath.Ext(name)))
}
