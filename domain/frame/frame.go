// Package frame defines the ordered frame sequence and the frame pairs shown side by side.
package frame

import (
	"errors"
	"path/filepath"
)

// Common errors for frame navigation.
var (
	ErrTooFewFrames = errors.New("at least two frames are required")
	ErrLastPair     = errors.New("already at the last frame pair")
)

// Sequence is an ordered, immutable list of image paths.
// A frame's number is its 1-based position in the sequence.
type Sequence struct {
	dir   string
	paths []string
}

// NewSequence creates a sequence from already ordered paths.
// The slice is copied.
func NewSequence(dir string, paths []string) Sequence {
	cp := make([]string, len(paths))
	copy(cp, paths)
	return Sequence{dir: dir, paths: cp}
}

// Dir returns the directory the sequence was loaded from.
func (s Sequence) Dir() string {
	return s.dir
}

// Len returns the number of frames.
func (s Sequence) Len() int {
	return len(s.paths)
}

// Path returns the path of the frame with the given 1-based number.
func (s Sequence) Path(number int) string {
	if number < 1 || number > len(s.paths) {
		return ""
	}
	return s.paths[number-1]
}

// Paths returns a copy of all frame paths.
func (s Sequence) Paths() []string {
	cp := make([]string, len(s.paths))
	copy(cp, s.paths)
	return cp
}

// PairCount returns how many adjacent pairs the sequence has.
func (s Sequence) PairCount() int {
	if len(s.paths) < 2 {
		return 0
	}
	return len(s.paths) - 1
}

// Pair returns the pair starting at the 0-based index.
func (s Sequence) Pair(index int) (Pair, bool) {
	if index < 0 || index >= s.PairCount() {
		return Pair{}, false
	}
	return Pair{
		Index: index,
		PathA: s.paths[index],
		PathB: s.paths[index+1],
	}, true
}

// Pair is two consecutive frames displayed side by side.
type Pair struct {
	// Index is the 0-based position of frame A in the sequence.
	Index int
	PathA string
	PathB string
}

// NumberA is the 1-based frame number of the left frame.
func (p Pair) NumberA() int {
	return p.Index + 1
}

// NumberB is the 1-based frame number of the right frame.
func (p Pair) NumberB() int {
	return p.Index + 2
}

// NameA returns the file name of the left frame.
func (p Pair) NameA() string {
	return filepath.Base(p.PathA)
}

// NameB returns the file name of the right frame.
func (p Pair) NameB() string {
	return filepath.Base(p.PathB)
}
