package system

import (
	"testing"

	"github.com/milk9111/crowdnav/ecs"
	"github.com/milk9111/crowdnav/ecs/component"
	"github.com/milk9111/crowdnav/nav"
	"github.com/milk9111/crowdnav/nav/field"
)

type emitSystem struct {
	events []ecs.Event
}

func (s *emitSystem) Update(w *ecs.World) {
	for _, ev := range s.events {
		w.Events().Push(ev)
	}
}

func TestStatsSystemCountsEvents(t *testing.T) {
	w := ecs.NewWorld()
	e := ecs.CreateEntity(w)
	stats := NewStatsSystem()
	emit := &emitSystem{events: []ecs.Event{
		{Type: ecs.EventPathFound, Entity: e},
		{Type: ecs.EventArrived, Entity: e},
		{Type: ecs.EventPathFound, Entity: e},
	}}
	sched := ecs.NewScheduler(emit, stats)

	sched.Update(w)
	sched.Update(w)

	if got := stats.Count(ecs.EventPathFound); got != 4 {
		t.Fatalf("expected 4 path_found, got %d", got)
	}
	if got := stats.Count(ecs.EventArrived); got != 2 {
		t.Fatalf("expected 2 arrived, got %d", got)
	}
	if len(stats.Last()) != 3 {
		t.Fatalf("expected the last tick's 3 events, got %d", len(stats.Last()))
	}
	stats.Reset()
	if stats.Count(ecs.EventPathFound) != 0 {
		t.Fatalf("reset did not clear counts")
	}
}

func TestPathfindingSystemBudget(t *testing.T) {
	grid := nav.NewGrid(30, 1, 1, nav.Vec2{}, nav.Four)
	d := nav.NewDispatcher(grid, nav.CostModel{}, nav.ModeStepped, nav.Hooks{})
	ps := NewPathfindingSystem(d, 5)

	done := false
	d.Submit(nav.Vec2{X: 0.5, Y: 0.5}, nav.Vec2{X: 29.5, Y: 0.5}, nil, func(_ []nav.Vec2, ok bool) {
		done = ok
	})

	w := ecs.NewWorld()
	ps.Update(w)
	if ps.LastSteps() != 5 || done {
		t.Fatalf("expected a partial search, steps=%d done=%v", ps.LastSteps(), done)
	}
	for i := 0; i < 10 && !done; i++ {
		ps.Update(w)
	}
	if !done {
		t.Fatalf("search never finished")
	}
	if ps.TotalSteps() < 20 {
		t.Fatalf("expected the steps of several ticks, got %d", ps.TotalSteps())
	}
}

func TestFieldSystemDepositsTeamHeat(t *testing.T) {
	grid := nav.NewGrid(4, 4, 1, nav.Vec2{}, nav.Eight)
	terr := field.NewTerritory(grid)
	fs := NewFieldSystem(nil, terr, FieldConfig{Deposit: 0.25, Decay: 1, TerritoryInterval: 2})

	w := ecs.NewWorld()
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.AgentComponent.Kind(), &component.Agent{Team: "red"}); err != nil {
		t.Fatal(err)
	}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: 1.5, Y: 1.5}); err != nil {
		t.Fatal(err)
	}

	fs.Update(w)
	fs.Update(w)
	if got := terr.Heat("red", nav.Vec2{X: 1.5, Y: 1.5}); got != 0.5 {
		t.Fatalf("expected heat 0.5, got %v", got)
	}
	if !terr.Initialized() {
		t.Fatalf("territory should be built on the first update")
	}
	// blue pays for red's heat, red does not
	pos := nav.Vec2{X: 1.5, Y: 1.5}
	if terr.ValueAt(pos, &nav.Agent{Team: "blue"}) <= terr.ValueAt(pos, &nav.Agent{Team: "red"}) {
		t.Fatalf("foreign heat should cost more than own heat")
	}
	if fs.Err() != nil {
		t.Fatalf("unexpected rebuild error: %v", fs.Err())
	}
}

func TestNavigatorFollowsPath(t *testing.T) {
	grid := nav.NewGrid(20, 20, 1, nav.Vec2{}, nav.Eight)
	d := nav.NewDispatcher(grid, nav.CostModel{}, nav.ModeBlocking, nav.Hooks{})
	ns := NewNavigatorSystem(d)

	w := ecs.NewWorld()
	goal := ecs.CreateEntity(w)
	_ = ecs.Add(w, goal, component.GoalTagComponent.Kind(), &component.GoalTag{})
	_ = ecs.Add(w, goal, component.TransformComponent.Kind(), &component.Transform{X: 15.5, Y: 10.5})

	agent := ecs.CreateEntity(w)
	n := &component.Navigator{Speed: 2, ArriveDistance: 0.5, MaxFailures: 3, Goal: -1}
	pf := &component.Pathfinding{}
	tr := &component.Transform{X: 2.5, Y: 10.5}
	_ = ecs.Add(w, agent, component.NavigatorComponent.Kind(), n)
	_ = ecs.Add(w, agent, component.PathfindingComponent.Kind(), pf)
	_ = ecs.Add(w, agent, component.AgentComponent.Kind(), &component.Agent{Team: "red"})
	_ = ecs.Add(w, agent, component.TransformComponent.Kind(), tr)

	ns.Update(w)
	if !n.HasGoal || n.Goal != 0 || pf.Successes != 1 || pf.Pending {
		t.Fatalf("expected an answered request, nav=%+v pf=%+v", n, pf)
	}

	// move the agent by hand along the desired velocity
	for i := 0; i < 20 && n.Arrivals == 0; i++ {
		ns.Update(w)
		tr.X += n.Desired.X * 0.5
		tr.Y += n.Desired.Y * 0.5
	}
	if n.Arrivals != 1 {
		t.Fatalf("agent did not arrive, at %v,%v", tr.X, tr.Y)
	}
	events := w.Events().Drain()
	var arrived bool
	for _, ev := range events {
		if ev.Type == ecs.EventArrived && ev.Entity == agent {
			arrived = true
		}
	}
	if !arrived {
		t.Fatalf("no arrived event in %v", events)
	}
}

func steppedNavigatorWorld(t *testing.T, hooks nav.Hooks) (*nav.Dispatcher, *NavigatorSystem, *ecs.World, ecs.Entity) {
	t.Helper()
	grid := nav.NewGrid(20, 20, 1, nav.Vec2{}, nav.Eight)
	d := nav.NewDispatcher(grid, nav.CostModel{}, nav.ModeStepped, hooks)
	ns := NewNavigatorSystem(d)

	w := ecs.NewWorld()
	goal := ecs.CreateEntity(w)
	_ = ecs.Add(w, goal, component.GoalTagComponent.Kind(), &component.GoalTag{})
	_ = ecs.Add(w, goal, component.TransformComponent.Kind(), &component.Transform{X: 17.5, Y: 17.5})

	agent := ecs.CreateEntity(w)
	_ = ecs.Add(w, agent, component.NavigatorComponent.Kind(), &component.Navigator{Speed: 2, ArriveDistance: 0.5, RepathTicks: 50, MaxFailures: 3, Goal: -1})
	_ = ecs.Add(w, agent, component.PathfindingComponent.Kind(), &component.Pathfinding{})
	_ = ecs.Add(w, agent, component.AgentComponent.Kind(), &component.Agent{Team: "red"})
	_ = ecs.Add(w, agent, component.TransformComponent.Kind(), &component.Transform{X: 1.5, Y: 1.5})
	return d, ns, w, agent
}

func TestNavigatorRepathCancelsOutstandingRequest(t *testing.T) {
	finished := map[nav.Ticket]bool{}
	d, ns, w, agent := steppedNavigatorWorld(t, nav.Hooks{
		Finished: func(tk nav.Ticket, res nav.Result) { finished[tk] = res.Success },
	})
	n, _ := ecs.Get(w, agent, component.NavigatorComponent.Kind())
	pf, _ := ecs.Get(w, agent, component.PathfindingComponent.Kind())

	ns.Update(w)
	first := pf.Ticket
	if !pf.Pending || pf.Requests != 1 || !d.Busy() || d.Pending() != 0 {
		t.Fatalf("expected one request in flight, pf=%+v busy=%v queued=%d", pf, d.Busy(), d.Pending())
	}

	// repath before the dispatcher got any budget
	n.SinceRepath = n.RepathTicks
	ns.Update(w)
	second := pf.Ticket
	if second == first || pf.Requests != 2 || !pf.Pending {
		t.Fatalf("expected a second request, pf=%+v", pf)
	}
	if !d.Busy() || d.Pending() != 1 {
		t.Fatalf("the cancelled search still holds the slot until ticked, busy=%v queued=%d", d.Busy(), d.Pending())
	}
	if d.Cancel(first) {
		t.Fatalf("first ticket should already be cancelled")
	}

	// an answer for the superseded request changes nothing
	ns.finish(w, agent, 1, []nav.Vec2{{X: 9, Y: 9}}, true)
	if pf.Successes != 0 || pf.Waypoints != nil || !pf.Pending {
		t.Fatalf("stale answer was applied, pf=%+v", pf)
	}

	d.Flush()
	if d.Busy() || d.Pending() != 0 {
		t.Fatalf("dispatcher should be idle, busy=%v queued=%d", d.Busy(), d.Pending())
	}
	if ok, seen := finished[first]; !seen || ok {
		t.Fatalf("first search should finish aborted, seen=%v ok=%v", seen, ok)
	}
	if ok := finished[second]; !ok {
		t.Fatalf("second search should succeed")
	}
	if pf.Pending || pf.Successes != 1 || pf.Failures != 0 || len(pf.Waypoints) == 0 {
		t.Fatalf("only the second answer should land, pf=%+v", pf)
	}
	if last := pf.Waypoints[len(pf.Waypoints)-1]; last != (nav.Vec2{X: 17.5, Y: 17.5}) {
		t.Fatalf("path should end at the goal, got %v", last)
	}
}

func TestNavigatorIgnoresAnswerForDestroyedAgent(t *testing.T) {
	d, ns, w, agent := steppedNavigatorWorld(t, nav.Hooks{})

	ns.Update(w)
	if !d.Busy() {
		t.Fatalf("expected a request in flight")
	}
	w.Events().Drain()

	if !ecs.DestroyEntity(w, agent) {
		t.Fatalf("destroy failed")
	}
	// a new entity may reuse the slot; it must not receive the old answer
	other := ecs.CreateEntity(w)
	pf := &component.Pathfinding{Requests: 1, Pending: true}
	_ = ecs.Add(w, other, component.PathfindingComponent.Kind(), pf)
	_ = ecs.Add(w, other, component.NavigatorComponent.Kind(), &component.Navigator{MaxFailures: 3, Goal: -1})

	d.Flush()
	if d.Busy() || d.Pending() != 0 {
		t.Fatalf("dispatcher should be idle")
	}
	if pf.Successes != 0 || pf.Waypoints != nil || !pf.Pending {
		t.Fatalf("answer reached the wrong entity, pf=%+v", pf)
	}
	if events := w.Events().Drain(); len(events) != 0 {
		t.Fatalf("expected no events, got %v", events)
	}
}
