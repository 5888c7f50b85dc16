// Package field provides the cost fields searches blend into cell
// penalties: an obstacle field sampled from a physics space and a
// per-team territory heatmap.
package field

import (
	"math"
	"sync/atomic"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/crowdnav/nav"
)

// Obstacle reports how close a position is to solid shapes. Values are in
// [0,1]: 1 inside or touching a shape, falling linearly to 0 at Influence.
type Obstacle struct {
	grid      *nav.Grid
	space     *cp.Space
	filter    cp.ShapeFilter
	Influence float64

	snap atomic.Pointer[[]float64]
}

// NewObstacle samples space at the resolution of grid. Only shapes passing
// filter are considered; sensors never are.
func NewObstacle(grid *nav.Grid, space *cp.Space, influence float64, filter cp.ShapeFilter) *Obstacle {
	if influence <= 0 {
		influence = grid.CellSize
	}
	return &Obstacle{
		grid:      grid,
		space:     space,
		filter:    filter,
		Influence: influence,
	}
}

func (o *Obstacle) Initialized() bool {
	return o.snap.Load() != nil
}

// ValueAt reads the last rebuilt sample for the cell containing pos. The
// agent is ignored; obstacles look the same to everyone.
func (o *Obstacle) ValueAt(pos nav.Vec2, _ *nav.Agent) float64 {
	s := o.snap.Load()
	if s == nil {
		return 0
	}
	return (*s)[o.grid.CellAt(pos).Index]
}

// Rebuild samples every cell centre and publishes the new values. It must
// not run concurrently with a space step.
func (o *Obstacle) Rebuild() {
	if o == nil || o.space == nil {
		return
	}
	cells := o.grid.Cells()
	values := make([]float64, len(cells))
	for i := range cells {
		values[i] = o.sample(cells[i].World)
	}
	o.snap.Store(&values)
}

func (o *Obstacle) sample(p nav.Vec2) float64 {
	info := o.space.PointQueryNearest(cp.Vector{X: p.X, Y: p.Y}, o.Influence, o.filter)
	if info == nil || info.Shape == nil {
		return 0
	}
	if info.Distance <= 0 {
		return 1
	}
	return math.Max(0, 1-info.Distance/o.Influence)
}
