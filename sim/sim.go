// Package sim assembles a runnable crowd: the level's physics, the nav
// grid and its cost fields, the dispatcher and the systems driving agents.
package sim

import (
	"fmt"
	"log"
	"math"

	"github.com/milk9111/crowdnav/ecs"
	"github.com/milk9111/crowdnav/ecs/component"
	"github.com/milk9111/crowdnav/ecs/entity"
	"github.com/milk9111/crowdnav/ecs/system"
	"github.com/milk9111/crowdnav/levels"
	"github.com/milk9111/crowdnav/nav"
	"github.com/milk9111/crowdnav/nav/field"
	"github.com/milk9111/crowdnav/prefabs"
)

// Options select what New builds.
type Options struct {
	Level string
	// Spec overrides nav.yaml when set.
	Spec *prefabs.NavSpec
	// Blocking forces blocking dispatch whatever nav.yaml says.
	Blocking bool
	Hooks    nav.Hooks
	Debug    bool
}

type Sim struct {
	Spec  *prefabs.NavSpec
	Level *levels.Level

	World     *ecs.World
	Physics   *ecs.PhysicsWorld
	Grid      *nav.Grid
	Obstacle  *field.Obstacle
	Territory *field.Territory

	Dispatcher *nav.Dispatcher
	Scheduler  *ecs.Scheduler

	Pathfinding *system.PathfindingSystem
	Navigator   *system.NavigatorSystem
	Fields      *system.FieldSystem
	Stats       *system.StatsSystem

	blocked int
}

func New(opts Options) (*Sim, error) {
	spec := opts.Spec
	if spec == nil {
		var err error
		spec, err = prefabs.LoadNavSpec()
		if err != nil {
			return nil, err
		}
	}
	if opts.Level == "" {
		opts.Level = "arena"
	}
	lvl, err := levels.Load(opts.Level)
	if err != nil {
		return nil, err
	}

	s := &Sim{Spec: spec, Level: lvl}

	s.Physics = ecs.NewPhysicsWorld(lvl)
	s.World = ecs.NewWorld()
	s.World.SetPhysicsWorld(s.Physics)

	s.Grid = gridForLevel(lvl, spec)
	s.blocked = s.Physics.BakeWalkability(s.Grid, spec.Grid.Clearance)

	s.Obstacle = field.NewObstacle(s.Grid, s.Physics.Space(), spec.Obstacle.Influence, ecs.ObstacleFilter)
	s.Territory = field.NewTerritory(s.Grid)
	for _, team := range spec.TeamNames() {
		s.Territory.AddTeam(team)
	}
	if err := s.loadScript(); err != nil {
		return nil, err
	}

	mode := spec.Mode()
	if opts.Blocking {
		mode = nav.ModeBlocking
	}
	s.Dispatcher = nav.NewDispatcher(s.Grid, s.costModel(), mode, opts.Hooks)

	if err := entity.LoadLevelToWorld(s.World, lvl); err != nil {
		return nil, err
	}
	s.seedTerritory()

	s.Pathfinding = system.NewPathfindingSystem(s.Dispatcher, spec.Dispatcher.StepsPerTick)
	s.Navigator = system.NewNavigatorSystem(s.Dispatcher)
	s.Navigator.Debug = opts.Debug
	s.Fields = system.NewFieldSystem(s.Obstacle, s.Territory, fieldConfig(spec))
	s.Stats = system.NewStatsSystem()
	s.Stats.Log = opts.Debug

	// stats last so it sees every event of the tick
	s.Scheduler = ecs.NewScheduler(
		s.Fields,
		s.Navigator,
		s.Pathfinding,
		system.NewPhysicsSystem(0),
		s.Stats,
	)

	log.Printf("sim: level %s grid %dx%d cell %.1f blocked %d mode %v", lvl.Name, s.Grid.Width, s.Grid.Height, s.Grid.CellSize, s.blocked, modeName(mode))
	return s, nil
}

// Tick advances the world one fixed step.
func (s *Sim) Tick() {
	s.Scheduler.Update(s.World)
}

// Run advances n ticks.
func (s *Sim) Run(n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}

// Blocked is the number of grid cells closed by level walls.
func (s *Sim) Blocked() int {
	return s.blocked
}

// ApplySpec swaps in new tuning. Grid geometry is fixed for the life of a
// Sim; a changed cell size or clearance needs a new Sim.
func (s *Sim) ApplySpec(spec *prefabs.NavSpec) error {
	if spec == nil {
		return fmt.Errorf("sim: nil spec")
	}
	prev := s.Spec
	s.Spec = spec
	if err := s.loadScript(); err != nil {
		s.Spec = prev
		return err
	}
	for _, team := range spec.TeamNames() {
		s.Territory.AddTeam(team)
	}
	s.Dispatcher.SetCostModel(s.costModel())
	s.Pathfinding.SetBudget(spec.Dispatcher.StepsPerTick)
	s.Fields.SetConfig(fieldConfig(spec))
	s.Fields.RebuildTerritory()
	return nil
}

// ReloadScript re-reads the territory script named by the current spec.
func (s *Sim) ReloadScript() error {
	if err := s.loadScript(); err != nil {
		return err
	}
	s.Fields.RebuildTerritory()
	return nil
}

// NeedsRebuild reports whether next changes anything ApplySpec cannot.
func (s *Sim) NeedsRebuild(next *prefabs.NavSpec) bool {
	return next.Grid != s.Spec.Grid
}

func (s *Sim) loadScript() error {
	name := s.Spec.Territory.Script
	if name == "" {
		s.Territory.ClearScript()
		return nil
	}
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return err
	}
	if err := s.Territory.SetScript(src); err != nil {
		return fmt.Errorf("sim: territory script %s: %w", name, err)
	}
	return nil
}

func (s *Sim) costModel() nav.CostModel {
	return nav.CostModel{
		Obstacle:  s.Obstacle,
		Territory: s.Territory,
		Weights:   s.Spec.NavWeights(),
	}
}

func (s *Sim) seedTerritory() {
	ecs.ForEach(s.World, component.ZoneComponent.Kind(), func(_ ecs.Entity, z *component.Zone) {
		s.Territory.Seed(field.Zone{Owner: z.Owner, Min: z.Min, Max: z.Max})
	})
	ecs.ForEach(s.World, component.AgentComponent.Kind(), func(_ ecs.Entity, a *component.Agent) {
		if a.Team != "" {
			s.Territory.AddTeam(a.Team)
		}
	})
}

func gridForLevel(lvl *levels.Level, spec *prefabs.NavSpec) *nav.Grid {
	cell := spec.Grid.CellSize
	if cell <= 0 {
		cell = lvl.TileSize
	}
	worldW, worldH := lvl.WorldSize()
	w := int(math.Ceil(worldW / cell))
	h := int(math.Ceil(worldH / cell))
	return nav.NewGrid(w, h, cell, nav.Vec2{}, spec.Connectivity())
}

func fieldConfig(spec *prefabs.NavSpec) system.FieldConfig {
	return system.FieldConfig{
		Deposit:           spec.Territory.Deposit,
		Decay:             spec.Territory.Decay,
		ObstacleInterval:  spec.Obstacle.RebuildTicks,
		TerritoryInterval: spec.Territory.RebuildTicks,
	}
}

func modeName(m nav.Mode) string {
	if m == nav.ModeBlocking {
		return "blocking"
	}
	return "stepped"
}
