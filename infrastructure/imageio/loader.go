// Package imageio decodes frame images and renders them into panel rasters.
package imageio

import (
	"container/list"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultCacheSize holds the two frames on screen plus the next one.
const DefaultCacheSize = 3

// Loader decodes images and keeps the most recently used ones in memory.
// It is safe for concurrent use.
type Loader struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List // front is most recently used
	entries map[string]*list.Element
	logger  *slog.Logger
}

type cacheEntry struct {
	path string
	img  image.Image
}

// LoaderConfig holds Loader configuration.
type LoaderConfig struct {
	CacheSize int
	Logger    *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		maxSize: cfg.CacheSize,
		order:   list.New(),
		entries: make(map[string]*list.Element),
		logger:  logger.With("component", "imageio"),
	}
}

// Load returns the decoded image at path.
func (l *Loader) Load(path string) (image.Image, error) {
	l.mu.Lock()
	if el, ok := l.entries[path]; ok {
		l.order.MoveToFront(el)
		img := el.Value.(*cacheEntry).img
		l.mu.Unlock()
		return img, nil
	}
	l.mu.Unlock()

	img, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if el, ok := l.entries[path]; ok {
		l.order.MoveToFront(el)
		return el.Value.(*cacheEntry).img, nil
	}
	l.entries[path] = l.order.PushFront(&cacheEntry{path: path, img: img})
	for l.order.Len() > l.maxSize {
		oldest := l.order.Back()
		l.order.Remove(oldest)
		delete(l.entries, oldest.Value.(*cacheEntry).path)
	}
	l.logger.Debug("Decoded image", "path", path, "bounds", img.Bounds())
	return img, nil
}

// Size returns the natural width and height of the image at path without
// decoding the pixel data.
func (l *Loader) Size(path string) (int, int, error) {
	l.mu.Lock()
	if el, ok := l.entries[path]; ok {
		b := el.Value.(*cacheEntry).img.Bounds()
		l.mu.Unlock()
		return b.Dx(), b.Dy(), nil
	}
	l.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image header %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}
