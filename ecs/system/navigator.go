package system

import (
	"fmt"
	"math"

	"github.com/milk9111/crowdnav/ecs"
	"github.com/milk9111/crowdnav/ecs/component"
	"github.com/milk9111/crowdnav/nav"
)

// An agent pressed against a wall for this many physics steps asks for a
// fresh path.
const stuckRepathSteps = 30

// NavigatorSystem assigns goals, submits path requests and turns the
// current path into a desired velocity.
type NavigatorSystem struct {
	dispatcher *nav.Dispatcher
	goals      []nav.Vec2
	Debug      bool
}

func NewNavigatorSystem(d *nav.Dispatcher) *NavigatorSystem {
	return &NavigatorSystem{dispatcher: d}
}

func (ns *NavigatorSystem) Update(w *ecs.World) {
	if ns == nil || w == nil || ns.dispatcher == nil {
		return
	}

	ns.goals = ns.goals[:0]
	ecs.ForEach2(w, component.GoalTagComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, _ *component.GoalTag, t *component.Transform) {
		ns.goals = append(ns.goals, nav.Vec2{X: t.X, Y: t.Y})
	})

	index := 0
	ecs.ForEach4(w, component.NavigatorComponent.Kind(), component.PathfindingComponent.Kind(), component.AgentComponent.Kind(), component.TransformComponent.Kind(),
		func(e ecs.Entity, n *component.Navigator, pf *component.Pathfinding, a *component.Agent, t *component.Transform) {
			ns.updateAgent(w, e, index, n, pf, a, t)
			index++
		})
}

func (ns *NavigatorSystem) updateAgent(w *ecs.World, e ecs.Entity, index int, n *component.Navigator, pf *component.Pathfinding, a *component.Agent, t *component.Transform) {
	n.Desired = nav.Vec2{}
	pos := nav.Vec2{X: t.X, Y: t.Y}

	if n.Cooldown > 0 {
		n.Cooldown--
		return
	}
	if len(ns.goals) == 0 {
		return
	}

	if !n.HasGoal {
		ns.assignGoal(w, e, index, n)
		ns.requestPath(w, e, n, pf, a, pos)
		return
	}

	if pos.Dist(n.GoalPos) <= n.ArriveDistance {
		n.Arrivals++
		n.HasGoal = false
		n.Failures = 0
		ns.cancel(pf)
		pf.Waypoints = nil
		pf.Next = 0
		w.Events().Push(ecs.Event{Type: ecs.EventArrived, Entity: e, Data: n.Goal})
		if ns.Debug {
			fmt.Printf("nav: entity=%s arrived goal=%d\n", e, n.Goal)
		}
		return
	}

	n.SinceRepath++
	stuck := false
	if c, ok := ecs.Get(w, e, component.ContactComponent.Kind()); ok && c.Stuck >= stuckRepathSteps {
		stuck = n.SinceRepath >= stuckRepathSteps
	}
	if (n.RepathTicks > 0 && n.SinceRepath >= n.RepathTicks) || stuck {
		ns.requestPath(w, e, n, pf, a, pos)
	}

	// keep following the old path while a repath is in flight
	target, ok := ns.steerTarget(pos, n, pf)
	if !ok {
		return
	}
	dir := target.Sub(pos).Normalize()
	n.Desired = dir.Scale(n.Speed)
	if dir != (nav.Vec2{}) {
		a.Heading = dir
		t.Rotation = math.Atan2(dir.Y, dir.X)
	}
}

// steerTarget advances past reached waypoints and returns the point to
// head for. Once the waypoints run out the goal itself is the target.
func (ns *NavigatorSystem) steerTarget(pos nav.Vec2, n *component.Navigator, pf *component.Pathfinding) (nav.Vec2, bool) {
	for pf.Next < len(pf.Waypoints) && pos.Dist(pf.Waypoints[pf.Next]) <= n.ArriveDistance {
		pf.Next++
	}
	if next := pf.Remaining(); len(next) > 0 {
		return next[0], true
	}
	if pf.Waypoints == nil {
		// no path yet, or the last request failed
		return nav.Vec2{}, false
	}
	return n.GoalPos, true
}

func (ns *NavigatorSystem) assignGoal(w *ecs.World, e ecs.Entity, index int, n *component.Navigator) {
	if n.Goal < 0 {
		n.Goal = index % len(ns.goals)
	} else {
		n.Goal = (n.Goal + 1) % len(ns.goals)
	}
	n.GoalPos = ns.goals[n.Goal]
	n.HasGoal = true
	w.Events().Push(ecs.Event{Type: ecs.EventGoalAssigned, Entity: e, Data: n.Goal})
}

func (ns *NavigatorSystem) cancel(pf *component.Pathfinding) {
	if pf.Pending {
		ns.dispatcher.Cancel(pf.Ticket)
		pf.Pending = false
	}
}

func (ns *NavigatorSystem) requestPath(w *ecs.World, e ecs.Entity, n *component.Navigator, pf *component.Pathfinding, a *component.Agent, pos nav.Vec2) {
	ns.cancel(pf)
	pf.Requests++
	pf.Pending = true
	pf.Target = n.GoalPos
	n.SinceRepath = 0

	seq := pf.Requests
	agent := &nav.Agent{Team: a.Team, Heading: a.Heading}
	ticket := ns.dispatcher.Submit(pos, n.GoalPos, agent, func(waypoints []nav.Vec2, success bool) {
		ns.finish(w, e, seq, waypoints, success)
	})
	// a blocking dispatcher may already have answered
	if pf.Pending && pf.Requests == seq {
		pf.Ticket = ticket
	}
}

func (ns *NavigatorSystem) finish(w *ecs.World, e ecs.Entity, seq int, waypoints []nav.Vec2, success bool) {
	pf, ok := ecs.Get(w, e, component.PathfindingComponent.Kind())
	if !ok || pf.Requests != seq {
		return
	}
	n, ok := ecs.Get(w, e, component.NavigatorComponent.Kind())
	if !ok {
		return
	}
	pf.Pending = false

	if success {
		pf.Successes++
		pf.Waypoints = waypoints
		pf.Next = 0
		if pf.Waypoints == nil {
			pf.Waypoints = []nav.Vec2{}
		}
		n.Failures = 0
		w.Events().Push(ecs.Event{Type: ecs.EventPathFound, Entity: e, Data: len(waypoints)})
		if ns.Debug {
			fmt.Printf("nav: entity=%s path goal=%d waypoints=%d\n", e, n.Goal, len(waypoints))
		}
		return
	}

	pf.Failures++
	pf.Waypoints = nil
	pf.Next = 0
	n.Failures++
	n.HasGoal = false
	w.Events().Push(ecs.Event{Type: ecs.EventPathFailed, Entity: e, Data: n.Goal})
	if ns.Debug {
		fmt.Printf("nav: entity=%s no path goal=%d failures=%d\n", e, n.Goal, n.Failures)
	}
	if n.Failures >= n.MaxFailures {
		n.Failures = 0
		n.Cooldown = n.CooldownTicks
		w.Events().Push(ecs.Event{Type: ecs.EventGaveUp, Entity: e, Data: n.Goal})
		if ns.Debug {
			fmt.Printf("nav: entity=%s giving up for %d ticks\n", e, n.CooldownTicks)
		}
	}
}
