package nav

import (
	"fmt"
	"math"
)

// Connectivity selects which neighbours a cell has.
type Connectivity int

const (
	Eight Connectivity = iota
	Four
)

var (
	offsets4 = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	offsets8 = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// Grid maps world space onto a fixed array of cells. Origin is the world
// position of the top-left corner of cell (0, 0).
type Grid struct {
	Width        int
	Height       int
	CellSize     float64
	Origin       Vec2
	Connectivity Connectivity

	cells []Cell
	open  *Heap
	epoch uint32
}

// NewGrid allocates a width x height grid with every cell walkable.
func NewGrid(width, height int, cellSize float64, origin Vec2, conn Connectivity) *Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("nav: invalid grid size %dx%d", width, height))
	}
	if cellSize <= 0 {
		cellSize = 1
	}
	g := &Grid{
		Width:        width,
		Height:       height,
		CellSize:     cellSize,
		Origin:       origin,
		Connectivity: conn,
		cells:        make([]Cell, width*height),
	}
	half := cellSize * 0.5
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			g.cells[idx] = Cell{
				X:         x,
				Y:         y,
				Index:     idx,
				Walkable:  true,
				World:     Vec2{X: origin.X + float64(x)*cellSize + half, Y: origin.Y + float64(y)*cellSize + half},
				G:         infiniteG,
				Parent:    noParent,
				heapIndex: notInHeap,
			}
		}
	}
	g.open = NewHeap(len(g.cells))
	return g
}

// Size is the total cell count.
func (g *Grid) Size() int {
	return len(g.cells)
}

// InBounds reports whether (x, y) addresses a cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Cell returns the cell at (x, y). Out-of-range coordinates are a caller bug.
func (g *Grid) Cell(x, y int) *Cell {
	if !g.InBounds(x, y) {
		panic(fmt.Sprintf("nav: cell (%d,%d) outside %dx%d grid", x, y, g.Width, g.Height))
	}
	return &g.cells[y*g.Width+x]
}

// CellAt returns the cell containing a world position, clamping positions
// outside the grid onto its border.
func (g *Grid) CellAt(p Vec2) *Cell {
	x := int(math.Floor((p.X - g.Origin.X) / g.CellSize))
	y := int(math.Floor((p.Y - g.Origin.Y) / g.CellSize))
	x = min(max(x, 0), g.Width-1)
	y = min(max(y, 0), g.Height-1)
	return &g.cells[y*g.Width+x]
}

// SetWalkable flags a cell as passable or blocked.
func (g *Grid) SetWalkable(x, y int, walkable bool) {
	g.Cell(x, y).Walkable = walkable
}

// Walkable reports whether (x, y) is in bounds and passable.
func (g *Grid) Walkable(x, y int) bool {
	return g.InBounds(x, y) && g.cells[y*g.Width+x].Walkable
}

// Neighbors appends the in-bounds neighbours of c to buf. A diagonal is
// only offered when both orthogonal cells it passes between are walkable,
// so a path never squeezes through the shared corner of two walls.
func (g *Grid) Neighbors(c *Cell, buf []*Cell) []*Cell {
	offs := offsets8
	if g.Connectivity == Four {
		offs = offsets4
	}
	for _, o := range offs {
		nx, ny := c.X+o[0], c.Y+o[1]
		if !g.InBounds(nx, ny) {
			continue
		}
		if o[0] != 0 && o[1] != 0 && (!g.Walkable(nx, c.Y) || !g.Walkable(c.X, ny)) {
			continue
		}
		buf = append(buf, &g.cells[ny*g.Width+nx])
	}
	return buf
}

// Cells exposes the backing array for read-only iteration.
func (g *Grid) Cells() []Cell {
	return g.cells
}

// beginSearch invalidates all per-search state in O(1).
func (g *Grid) beginSearch() uint32 {
	g.epoch++
	if g.epoch == 0 {
		// wrapped: stamps from 2^32 searches ago would look fresh
		for i := range g.cells {
			g.cells[i].epoch = 0
		}
		g.epoch = 1
	}
	g.open.Clear()
	return g.epoch
}

// touch resets a cell the first time the current search sees it.
func (g *Grid) touch(c *Cell) {
	if c.epoch == g.epoch {
		return
	}
	c.epoch = g.epoch
	c.G = infiniteG
	c.H = 0
	c.Parent = noParent
	c.Penalty = 0
	c.closed = false
	c.penaltySet = false
	c.heapIndex = notInHeap
}
