package system

import (
	"log"

	"github.com/milk9111/crowdnav/ecs"
	"github.com/milk9111/crowdnav/ecs/component"
	"github.com/milk9111/crowdnav/nav"
	"github.com/milk9111/crowdnav/nav/field"
)

// FieldConfig sets how agents mark territory and how often the fields are
// rebuilt. Rebuild intervals are in ticks.
type FieldConfig struct {
	Deposit           float64
	Decay             float64
	ObstacleInterval  int
	TerritoryInterval int
}

// FieldSystem keeps the obstacle and territory fields current. Searches
// read the last rebuilt snapshot, so a rebuild mid-search is safe.
type FieldSystem struct {
	obstacle  *field.Obstacle
	territory *field.Territory
	cfg       FieldConfig
	ticks     int

	lastErr error
}

func NewFieldSystem(obstacle *field.Obstacle, territory *field.Territory, cfg FieldConfig) *FieldSystem {
	if cfg.ObstacleInterval <= 0 {
		cfg.ObstacleInterval = 1
	}
	if cfg.TerritoryInterval <= 0 {
		cfg.TerritoryInterval = 1
	}
	return &FieldSystem{obstacle: obstacle, territory: territory, cfg: cfg}
}

func (fs *FieldSystem) SetConfig(cfg FieldConfig) {
	if cfg.ObstacleInterval <= 0 {
		cfg.ObstacleInterval = fs.cfg.ObstacleInterval
	}
	if cfg.TerritoryInterval <= 0 {
		cfg.TerritoryInterval = fs.cfg.TerritoryInterval
	}
	fs.cfg = cfg
}

// Err is the last territory rebuild error, cleared by a good rebuild.
func (fs *FieldSystem) Err() error {
	return fs.lastErr
}

func (fs *FieldSystem) Update(w *ecs.World) {
	if fs == nil || w == nil {
		return
	}

	if fs.territory != nil {
		if fs.cfg.Deposit > 0 {
			ecs.ForEach2(w, component.AgentComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, a *component.Agent, t *component.Transform) {
				fs.territory.Deposit(a.Team, nav.Vec2{X: t.X, Y: t.Y}, fs.cfg.Deposit)
			})
		}
		if fs.cfg.Decay > 0 && fs.cfg.Decay < 1 {
			fs.territory.Decay(fs.cfg.Decay)
		}
	}

	if fs.obstacle != nil && (fs.ticks%fs.cfg.ObstacleInterval == 0 || !fs.obstacle.Initialized()) {
		fs.obstacle.Rebuild()
	}
	if fs.territory != nil && (fs.ticks%fs.cfg.TerritoryInterval == 0 || !fs.territory.Initialized()) {
		fs.RebuildTerritory()
	}
	fs.ticks++
}

// RebuildTerritory rebuilds now. A failing script keeps the previous
// layers and is reported once per distinct error.
func (fs *FieldSystem) RebuildTerritory() {
	err := fs.territory.Rebuild()
	if err != nil && (fs.lastErr == nil || fs.lastErr.Error() != err.Error()) {
		log.Printf("FieldSystem: territory rebuild failed: %v", err)
	}
	fs.lastErr = err
}
