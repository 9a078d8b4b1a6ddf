package correspondence

// Mark is a point already associated in a frame.
type Mark struct {
	Point Point
	// Persisted is true for marks that existed when the current pair was
	// loaded, false for marks added since.
	Persisted bool
}

// Index maps a 1-based frame number to the points already recorded in it,
// for the frames of one directory. It is a cache derived from the ledger
// history.
type Index struct {
	marks map[int][]Mark
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{marks: make(map[int][]Mark)}
}

// Rebuild discards the index and recreates it from the records made in dir.
// All rebuilt marks are persisted.
func (x *Index) Rebuild(dir string, records []Record) {
	x.marks = make(map[int][]Mark)
	for _, r := range records {
		if r.Directory != dir {
			continue
		}
		x.marks[r.FrameA] = append(x.marks[r.FrameA], Mark{Point: r.PointA(), Persisted: true})
		x.marks[r.FrameB] = append(x.marks[r.FrameB], Mark{Point: r.PointB(), Persisted: true})
	}
}

// Add records a point in a frame since the last rebuild.
func (x *Index) Add(frame int, p Point) {
	x.marks[frame] = append(x.marks[frame], Mark{Point: p})
}

// AddCorrespondence adds both endpoints of c.
func (x *Index) AddCorrespondence(c Correspondence) {
	x.Add(c.FrameA, c.PointA())
	x.Add(c.FrameB, c.PointB())
}

// Marks returns a copy of the marks of a frame in insertion order.
func (x *Index) Marks(frame int) []Mark {
	src := x.marks[frame]
	out := make([]Mark, len(src))
	copy(out, src)
	return out
}

// Near returns the first mark in frame closer than radius on both axes.
func (x *Index) Near(frame int, p Point, radius int) (Mark, bool) {
	for _, m := range x.marks[frame] {
		if abs(m.Point.X-p.X) < radius && abs(m.Point.Y-p.Y) < radius {
			return m, true
		}
	}
	return Mark{}, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
