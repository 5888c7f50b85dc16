package entity

import (
	"fmt"
	"strings"

	"github.com/milk9111/crowdnav/ecs"
	"github.com/milk9111/crowdnav/ecs/component"
	"github.com/milk9111/crowdnav/levels"
	"github.com/milk9111/crowdnav/nav"
	"github.com/milk9111/crowdnav/prefabs"
)

const defaultAgentPrefab = "agent.yaml"

// LoadLevelToWorld creates the level bounds, goals, zones and agents of lvl.
// Agents get physics bodies, so the world's physics world has to be set.
func LoadLevelToWorld(world *ecs.World, lvl *levels.Level) error {
	if world == nil || lvl == nil {
		return fmt.Errorf("load level: world and level are required")
	}

	worldW, worldH := lvl.WorldSize()
	boundsEntity := ecs.CreateEntity(world)
	if err := ecs.Add(world, boundsEntity, component.LevelBoundsComponent.Kind(), &component.LevelBounds{
		Width:    worldW,
		Height:   worldH,
		TileSize: lvl.TileSize,
	}); err != nil {
		return err
	}

	prefabCache := make(map[string]entityPrefabSpec)
	for _, ent := range lvl.Entities {
		switch strings.ToLower(ent.Type) {
		case "goal":
			if _, err := NewGoalAt(world, lvl, ent); err != nil {
				return err
			}
		case "zone":
			if _, err := NewZone(world, lvl, ent); err != nil {
				return err
			}
		case "agent":
			path := ent.PropString("prefab", defaultAgentPrefab)
			spec, ok := prefabCache[path]
			if !ok {
				var err error
				spec, err = prefabs.LoadEntityBuildSpec(path)
				if err != nil {
					return fmt.Errorf("load level %s: %w", lvl.Name, err)
				}
				prefabCache[path] = spec
			}
			x, y := lvl.TileCentre(ent.X, ent.Y)
			if _, err := NewAgentAt(world, path, spec, x, y, ent.PropString("team", "")); err != nil {
				return err
			}
		default:
			return fmt.Errorf("load level %s: unknown entity type %q", lvl.Name, ent.Type)
		}
	}
	return nil
}

func NewGoalAt(world *ecs.World, lvl *levels.Level, ent levels.Entity) (ecs.Entity, error) {
	x, y := lvl.TileCentre(ent.X, ent.Y)
	e := ecs.CreateEntity(world)
	if err := ecs.Add(world, e, component.GoalTagComponent.Kind(), &component.GoalTag{}); err != nil {
		return 0, err
	}
	if err := ecs.Add(world, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y}); err != nil {
		return 0, err
	}
	return e, nil
}

// NewZone turns a zone marker into a world-space rectangle. The marker is
// the top-left tile; w and h props give the size in tiles.
func NewZone(world *ecs.World, lvl *levels.Level, ent levels.Entity) (ecs.Entity, error) {
	owner := ent.PropString("owner", "")
	if owner == "" {
		return 0, fmt.Errorf("zone at %d,%d has no owner", ent.X, ent.Y)
	}
	w := ent.PropInt("w", 1)
	h := ent.PropInt("h", 1)
	ts := lvl.TileSize
	zone := &component.Zone{
		Owner: owner,
		Min:   nav.Vec2{X: float64(ent.X) * ts, Y: float64(ent.Y) * ts},
		Max:   nav.Vec2{X: float64(ent.X+w) * ts, Y: float64(ent.Y+h) * ts},
	}
	e := ecs.CreateEntity(world)
	if err := ecs.Add(world, e, component.ZoneComponent.Kind(), zone); err != nil {
		return 0, err
	}
	return e, nil
}

// NewAgentAt builds an agent from spec at x, y. A non-empty team replaces
// the prefab's team.
func NewAgentAt(world *ecs.World, path string, spec entityPrefabSpec, x, y float64, team string) (ecs.Entity, error) {
	overrides := map[string]any{
		"transform": map[string]any{"x": x, "y": y},
	}
	if team != "" {
		agent := map[string]any{}
		if raw, ok := spec.Components["agent"].(map[string]any); ok {
			for k, v := range raw {
				agent[k] = v
			}
		}
		agent["team"] = team
		overrides["agent"] = agent
	}
	return buildFromSpec(world, path, spec, overrides)
}
