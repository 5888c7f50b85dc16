package field

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/crowdnav/nav"
)

const (
	wallCategory  uint = 1
	agentCategory uint = 2
)

func spaceWithWall(bb cp.BB, category uint) *cp.Space {
	space := cp.NewSpace()
	shape := cp.NewBox2(space.StaticBody, bb, 0)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, category, cp.ALL_CATEGORIES))
	space.AddShape(shape)
	return space
}

func TestObstacleRebuild(t *testing.T) {
	grid := nav.NewGrid(6, 1, 1, nav.Vec2{}, nav.Eight)
	space := spaceWithWall(cp.BB{L: 0, B: 0, R: 1, T: 1}, wallCategory)
	o := NewObstacle(grid, space, 2, cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, wallCategory))

	if o.Initialized() {
		t.Fatalf("field should not be initialized before the first rebuild")
	}
	if v := o.ValueAt(nav.Vec2{X: 0.5, Y: 0.5}, nil); v != 0 {
		t.Fatalf("uninitialized field should read 0, got %f", v)
	}

	o.Rebuild()
	if !o.Initialized() {
		t.Fatalf("field should be initialized after rebuild")
	}

	cases := []struct {
		name string
		x    float64
		want float64
	}{
		{"inside_wall", 0.5, 1},
		{"half_cell_away", 1.5, 0.75},
		{"one_and_half_away", 2.5, 0.25},
		{"out_of_range", 3.5, 0},
		{"far", 5.5, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := o.ValueAt(nav.Vec2{X: c.x, Y: 0.5}, &nav.Agent{Team: "red"})
			if math.Abs(got-c.want) > 1e-9 {
				t.Fatalf("expected %f, got %f", c.want, got)
			}
		})
	}
}

func TestObstacleFilterSkipsOtherCategories(t *testing.T) {
	grid := nav.NewGrid(3, 1, 1, nav.Vec2{}, nav.Eight)
	space := spaceWithWall(cp.BB{L: 0, B: 0, R: 1, T: 1}, agentCategory)
	o := NewObstacle(grid, space, 2, cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, wallCategory))
	o.Rebuild()

	if v := o.ValueAt(nav.Vec2{X: 0.5, Y: 0.5}, nil); v != 0 {
		t.Fatalf("shape outside the mask should be ignored, got %f", v)
	}
}

func TestObstacleSteersSearch(t *testing.T) {
	// a wall block in the middle of the top row; the path along row 0
	// should drop down to keep its distance
	grid := nav.NewGrid(9, 4, 1, nav.Vec2{}, nav.Eight)
	space := spaceWithWall(cp.BB{L: 4, B: -1, R: 5, T: 0}, wallCategory)
	o := NewObstacle(grid, space, 2, cp.SHAPE_FILTER_ALL)
	o.Rebuild()

	model := nav.CostModel{Obstacle: o, Weights: nav.DefaultWeights()}
	res := nav.NewSearch(grid, model, nav.Vec2{X: 0.5, Y: 0.5}, nav.Vec2{X: 8.5, Y: 0.5}, nil).Run()
	if !res.Success {
		t.Fatalf("expected a path")
	}
	deepest := 0
	for _, p := range res.Path {
		if p.Y > deepest {
			deepest = p.Y
		}
	}
	if deepest < 2 {
		t.Fatalf("path should bend away from the wall, got %v", res.Path)
	}
}
