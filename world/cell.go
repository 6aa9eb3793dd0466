package world

// Cell identifies a grid cell by row and column.
type Cell struct {
	Row, Col int
}

// Chebyshev returns the Chebyshev (king-move) distance between two cells.
func (c Cell) Chebyshev(o Cell) int {
	dr := absInt(c.Row - o.Row)
	dc := absInt(c.Col - o.Col)
	if dr > dc {
		return dr
	}
	return dc
}

// Manhattan returns the Manhattan distance between two cells.
func (c Cell) Manhattan(o Cell) int {
	return absInt(c.Row-o.Row) + absInt(c.Col-o.Col)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Occupancy is the closed set of things a cell can host.
type Occupancy uint8

const (
	Empty Occupancy = iota
	Food
	SafePlaceOcc
)

func (o Occupancy) String() string {
	switch o {
	case Empty:
		return "Empty"
	case Food:
		return "Food"
	case SafePlaceOcc:
		return "SafePlace"
	default:
		return "Unknown"
	}
}
