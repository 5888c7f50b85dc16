package system

import (
	"github.com/milk9111/crowdnav/ecs"
	"github.com/milk9111/crowdnav/nav"
)

const defaultStepsPerTick = 200

// PathfindingSystem advances the dispatcher's stepped searches by a fixed
// number of expansions per tick. In blocking mode it has nothing to do.
type PathfindingSystem struct {
	dispatcher *nav.Dispatcher
	budget     int
	lastSteps  int
	totalSteps int
}

func NewPathfindingSystem(d *nav.Dispatcher, stepsPerTick int) *PathfindingSystem {
	if stepsPerTick <= 0 {
		stepsPerTick = defaultStepsPerTick
	}
	return &PathfindingSystem{dispatcher: d, budget: stepsPerTick}
}

func (ps *PathfindingSystem) Update(w *ecs.World) {
	if ps == nil || ps.dispatcher == nil {
		return
	}
	ps.lastSteps = ps.dispatcher.Tick(ps.budget)
	ps.totalSteps += ps.lastSteps
}

func (ps *PathfindingSystem) SetBudget(stepsPerTick int) {
	if stepsPerTick > 0 {
		ps.budget = stepsPerTick
	}
}

func (ps *PathfindingSystem) Budget() int {
	return ps.budget
}

// LastSteps is the number of expansions spent in the last update.
func (ps *PathfindingSystem) LastSteps() int {
	return ps.lastSteps
}

func (ps *PathfindingSystem) TotalSteps() int {
	return ps.totalSteps
}
