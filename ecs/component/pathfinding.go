package component

import "github.com/milk9111/crowdnav/nav"

// Pathfinding holds the outstanding request and the last path an agent got
// back from the dispatcher.
type Pathfinding struct {
	Ticket  nav.Ticket
	Pending bool

	Waypoints []nav.Vec2
	Next      int
	Target    nav.Vec2

	Requests  int
	Successes int
	Failures  int
}

// Remaining returns the waypoints not yet reached.
func (p *Pathfinding) Remaining() []nav.Vec2 {
	if p == nil || p.Next >= len(p.Waypoints) {
		return nil
	}
	return p.Waypoints[p.Next:]
}

var PathfindingComponent = NewComponent[Pathfinding]()
