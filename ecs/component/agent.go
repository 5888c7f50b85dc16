package component

import "github.com/milk9111/crowdnav/nav"

// Agent is the identity a search sees: its team picks the territory layer,
// its heading feeds the shape score.
type Agent struct {
	Team    string
	Radius  float64
	Heading nav.Vec2
}

var AgentComponent = NewComponent[Agent]()
