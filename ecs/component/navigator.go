package component

import "github.com/milk9111/crowdnav/nav"

// Navigator drives an agent between goals. The first block is tuning from
// the agent prefab, the rest is runtime state.
type Navigator struct {
	Speed          float64
	ArriveDistance float64
	RepathTicks    int
	MaxFailures    int
	CooldownTicks  int

	// Goal indexes the level's goals in creation order; -1 before the
	// first assignment.
	Goal        int
	HasGoal     bool
	GoalPos     nav.Vec2
	SinceRepath int
	Failures    int
	Cooldown    int
	Arrivals    int

	// Desired is the velocity the physics step aims for.
	Desired nav.Vec2
}

var NavigatorComponent = NewComponent[Navigator]()
