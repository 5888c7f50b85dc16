package nav

import "context"

// Status is the state of a resumable search.
type Status int

const (
	Running Status = iota
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Result is the outcome of a finished search. A failed search has no
// waypoints; that is a normal outcome, not an error.
type Result struct {
	Waypoints []Vec2
	Path      []Point
	Success   bool
	Cost      int
	Expanded  int
	ShapeCost float64
}

// Search is one A* run over a grid. It owns the grid's per-cell search
// state from NewSearch until it finishes; starting another search on the
// same grid supersedes it.
type Search struct {
	grid  *Grid
	model CostModel
	agent *Agent

	from   Vec2
	start  *Cell
	target *Cell
	epoch  uint32

	status   Status
	expanded int
	aborted  bool
	nbuf     []*Cell
	result   Result
}

// NewSearch prepares a search from start to end. If either end cell is
// blocked the search is already Failed and will expand nothing.
func NewSearch(grid *Grid, model CostModel, start, end Vec2, agent *Agent) *Search {
	s := &Search{
		grid:  grid,
		model: model,
		agent: agent,
		from:  start,
		nbuf:  make([]*Cell, 0, 8),
	}
	s.epoch = grid.beginSearch()
	s.start = grid.CellAt(start)
	s.target = grid.CellAt(end)

	if !s.start.Walkable || !s.target.Walkable {
		s.status = Failed
		return s
	}

	grid.touch(s.start)
	s.start.G = 0
	s.start.H = StepDistance(s.start, s.target)
	s.start.Parent = s.start.Index
	grid.open.Insert(s.start)
	return s
}

func (s *Search) Status() Status {
	return s.status
}

// Expanded is the number of cells popped from the open set so far.
func (s *Search) Expanded() int {
	return s.expanded
}

// Done reports whether the search has finished either way.
func (s *Search) Done() bool {
	return s.status != Running
}

// Aborted reports whether Abort ended the search.
func (s *Search) Aborted() bool {
	return s.aborted
}

// Result is only populated once the search is done.
func (s *Search) Result() Result {
	if s.status == Running {
		return Result{}
	}
	s.result.Expanded = s.expanded
	return s.result
}

// Abort stops a running search as failed.
func (s *Search) Abort() {
	if s.status == Running {
		s.status = Failed
		s.aborted = true
	}
}

// Step expands one cell.
func (s *Search) Step() Status {
	if s.status != Running {
		return s.status
	}
	g := s.grid
	if g.epoch != s.epoch {
		s.Abort()
		return s.status
	}
	if g.open.Len() == 0 {
		s.status = Failed
		return s.status
	}

	current := g.open.ExtractMin()
	current.closed = true
	s.expanded++

	if current == s.target {
		s.status = Succeeded
		s.finish()
		return s.status
	}

	s.nbuf = g.Neighbors(current, s.nbuf[:0])
	for _, nb := range s.nbuf {
		if !nb.Walkable {
			continue
		}
		g.touch(nb)
		if nb.closed {
			continue
		}
		if !nb.penaltySet {
			nb.Penalty = s.model.Penalty(nb.World, s.agent)
			nb.penaltySet = true
		}

		cost := current.G + StepDistance(current, nb) + nb.Penalty
		inOpen := g.open.Contains(nb)
		if cost < nb.G || !inOpen {
			nb.G = cost
			nb.H = StepDistance(nb, s.target)
			nb.Parent = current.Index
			if inOpen {
				g.open.UpdateItem(nb)
			} else {
				g.open.Insert(nb)
			}
		}
	}
	return s.status
}

// Run steps the search until it finishes.
func (s *Search) Run() Result {
	for s.Step() == Running {
	}
	return s.Result()
}

// RunContext is Run with cancellation checked every few hundred expansions.
func (s *Search) RunContext(ctx context.Context) (Result, error) {
	for n := 0; s.Step() == Running; n++ {
		if n&0xff == 0 {
			if err := ctx.Err(); err != nil {
				s.Abort()
				return s.Result(), err
			}
		}
	}
	return s.Result(), nil
}

func (s *Search) finish() {
	cells := s.grid.cells
	path := make([]Point, 0, 32)
	c := s.target
	for c != s.start && len(path) <= len(cells) {
		path = append(path, c.Point())
		c = &cells[c.Parent]
	}
	path = append(path, s.start.Point())
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	simple := Simplify(path)
	waypoints := make([]Vec2, 0, len(simple))
	for _, p := range simple {
		waypoints = append(waypoints, cells[p.Y*s.grid.Width+p.X].World)
	}

	var heading Vec2
	if s.agent != nil {
		heading = s.agent.Heading
	}
	s.result = Result{
		Waypoints: waypoints,
		Path:      path,
		Success:   true,
		Cost:      s.target.G,
		ShapeCost: ShapeCost(s.from, waypoints, heading, s.model.Weights),
	}
}
