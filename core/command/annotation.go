package command

// LoadDirectory lists the images of a directory and starts annotating it.
type LoadDirectory struct {
	Dir string
}

func (c *LoadDirectory) CommandName() string {
	return "LoadDirectory"
}

// LoadFrames binds an already listed, ordered frame sequence.
type LoadFrames struct {
	Dir   string
	Paths []string
}

func (c *LoadFrames) CommandName() string {
	return "LoadFrames"
}

// NextPair advances to the next frame pair.
type NextPair struct{}

func (c *NextPair) CommandName() string {
	return "NextPair"
}

// Click is a primary-button click on a frame panel, in panel display coordinates.
type Click struct {
	Side Side
	X, Y float64
}

func NewClick(side Side, x, y float64) *Click {
	return &Click{Side: side, X: x, Y: y}
}

func (c *Click) CommandName() string {
	return "Click"
}
