package nav

import "math"

// Vec2 is a world-space position.
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{X: v.X * k, Y: v.Y * k}
}

// Normalize returns v scaled to unit length, or the zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec2) Dist(o Vec2) float64 {
	return v.Sub(o).Len()
}

// Point is a cell coordinate on the grid.
type Point struct {
	X int
	Y int
}

const (
	noParent     = -1
	notInHeap    = -1
	infiniteG    = math.MaxInt32
	costStraight = 10
	costDiagonal = 14
)

// Cell is one node of the navigation grid. Search bookkeeping fields are
// only meaningful while the cell's epoch matches the grid's.
type Cell struct {
	X        int
	Y        int
	Index    int
	World    Vec2
	Walkable bool

	Penalty int
	G       int
	H       int
	Parent  int

	heapIndex  int
	epoch      uint32
	closed     bool
	penaltySet bool
}

// F is the expansion priority.
func (c *Cell) F() int {
	return c.G + c.H
}

func (c *Cell) Point() Point {
	return Point{X: c.X, Y: c.Y}
}

// less orders by f, then h.
func (c *Cell) less(o *Cell) bool {
	cf, of := c.F(), o.F()
	if cf != of {
		return cf < of
	}
	return c.H < o.H
}

// StepDistance is the fixed-point octile distance between two cells:
// 10 per orthogonal step, 14 per diagonal step.
func StepDistance(a, b *Cell) int {
	return pointDistance(a.X, a.Y, b.X, b.Y)
}

func pointDistance(ax, ay, bx, by int) int {
	dx := abs(ax - bx)
	dy := abs(ay - by)
	if dx > dy {
		return costDiagonal*dy + costStraight*(dx-dy)
	}
	return costDiagonal*dx + costStraight*(dy-dx)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
