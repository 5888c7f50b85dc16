package nav

import "testing"

func TestGridCellAtClamps(t *testing.T) {
	g := NewGrid(4, 3, 10, Vec2{X: 100, Y: 50}, Eight)
	cases := []struct {
		name string
		pos  Vec2
		want Point
	}{
		{"origin", Vec2{X: 100, Y: 50}, Point{0, 0}},
		{"inside", Vec2{X: 125, Y: 71}, Point{2, 2}},
		{"left_of_grid", Vec2{X: -5, Y: 60}, Point{0, 1}},
		{"past_bottom_right", Vec2{X: 1000, Y: 1000}, Point{3, 2}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := g.CellAt(c.pos).Point(); got != c.want {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
		})
	}

	if w := g.Cell(1, 1).World; w != (Vec2{X: 115, Y: 65}) {
		t.Fatalf("unexpected cell centre %v", w)
	}
}

func TestGridNeighbors(t *testing.T) {
	cases := []struct {
		name    string
		conn    Connectivity
		x, y    int
		blocked []Point
		want    int
	}{
		{"eight_corner", Eight, 0, 0, nil, 3},
		{"eight_edge", Eight, 1, 0, nil, 5},
		{"eight_centre", Eight, 1, 1, nil, 8},
		{"four_corner", Four, 0, 0, nil, 2},
		{"four_centre", Four, 1, 1, nil, 4},
		// (1,0) closes both diagonals above the centre
		{"eight_wall_above", Eight, 1, 1, []Point{{1, 0}}, 5},
		// walls meeting at a corner leave no diagonal between them
		{"eight_wall_corner", Eight, 0, 0, []Point{{1, 0}, {0, 1}}, 0},
		{"eight_one_side_open", Eight, 0, 0, []Point{{1, 0}}, 1},
		{"four_ignores_corners", Four, 0, 0, []Point{{1, 0}}, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := NewGrid(3, 3, 1, Vec2{}, c.conn)
			for _, p := range c.blocked {
				g.SetWalkable(p.X, p.Y, false)
			}
			walkable := 0
			for _, nb := range g.Neighbors(g.Cell(c.x, c.y), nil) {
				if nb.Walkable {
					walkable++
				}
			}
			if walkable != c.want {
				t.Fatalf("expected %d walkable neighbours, got %d", c.want, walkable)
			}
		})
	}
}

func TestGridNoDiagonalThroughWallCorner(t *testing.T) {
	g := NewGrid(2, 2, 1, Vec2{}, Eight)
	g.SetWalkable(1, 0, false)
	g.SetWalkable(0, 1, false)

	for _, nb := range g.Neighbors(g.Cell(0, 0), nil) {
		if nb.X == 1 && nb.Y == 1 {
			t.Fatalf("diagonal offered between two blocked cells")
		}
	}
	res := NewSearch(g, CostModel{}, Vec2{X: 0.5, Y: 0.5}, Vec2{X: 1.5, Y: 1.5}, nil).Run()
	if res.Success || len(res.Waypoints) != 0 {
		t.Fatalf("expected no path through the corner, got %+v", res)
	}
}

func TestGridCellOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	NewGrid(2, 2, 1, Vec2{}, Four).Cell(2, 0)
}

func TestStepDistance(t *testing.T) {
	g := NewGrid(10, 10, 1, Vec2{}, Eight)
	cases := []struct {
		a, b Point
		want int
	}{
		{Point{0, 0}, Point{0, 0}, 0},
		{Point{0, 0}, Point{1, 0}, 10},
		{Point{0, 0}, Point{1, 1}, 14},
		{Point{0, 0}, Point{4, 4}, 56},
		{Point{2, 1}, Point{7, 3}, 2*14 + 3*10},
	}
	for _, c := range cases {
		got := StepDistance(g.Cell(c.a.X, c.a.Y), g.Cell(c.b.X, c.b.Y))
		if got != c.want {
			t.Fatalf("%v->%v: expected %d, got %d", c.a, c.b, c.want, got)
		}
	}
}
