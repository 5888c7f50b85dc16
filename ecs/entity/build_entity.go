package entity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/milk9111/crowdnav/ecs"
	"github.com/milk9111/crowdnav/ecs/component"
	"github.com/milk9111/crowdnav/nav"
	"github.com/milk9111/crowdnav/prefabs"
)

var ErrNoPhysicsWorld = errors.New("entity: world has no physics world")

type entityPrefabSpec = prefabs.EntityBuildSpec

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"agent_tag":       addAgentTag,
	"goal_tag":        addGoalTag,
	"transform":       addTransform,
	"agent":           addAgent,
	"navigator":       addNavigator,
	"pathfinding":     addPathfinding,
	"collision_layer": addCollisionLayer,
	"physics_body":    addPhysicsBody,
}

// physics_body reads transform and collision_layer, so it goes last.
var componentBuildOrder = []string{
	"agent_tag",
	"goal_tag",
	"transform",
	"agent",
	"navigator",
	"pathfinding",
	"collision_layer",
	"physics_body",
}

func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	return buildFromSpec(w, prefabPath, spec, nil)
}

// buildFromSpec adds the prefab's components to a new entity. Overrides
// replace the raw spec of a component before it is built.
func buildFromSpec(w *ecs.World, prefabPath string, spec entityPrefabSpec, overrides map[string]any) (ecs.Entity, error) {
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}
	for k, v := range overrides {
		if _, ok := remaining[k]; ok {
			remaining[k] = v
		}
	}

	build := func(name string) error {
		builder, ok := componentRegistry[name]
		if !ok {
			ecs.DestroyEntity(w, e)
			return fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, name)
		}
		if err := builder(w, e, remaining[name], ctx); err != nil {
			releaseBody(w, e)
			ecs.DestroyEntity(w, e)
			return fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
		delete(remaining, name)
		return nil
	}

	for _, name := range componentBuildOrder {
		if _, ok := remaining[name]; !ok {
			continue
		}
		if err := build(name); err != nil {
			return 0, err
		}
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := build(name); err != nil {
				return 0, err
			}
		}
	}

	return e, nil
}

// DestroyAgent removes e and its physics body.
func DestroyAgent(w *ecs.World, e ecs.Entity) bool {
	releaseBody(w, e)
	return ecs.DestroyEntity(w, e)
}

func releaseBody(w *ecs.World, e ecs.Entity) {
	pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok {
		return
	}
	if pw := w.PhysicsWorld(); pw != nil {
		pw.RemoveAgent(e, pb)
	}
}

func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y, rotation float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{}
	}
	t.X = x
	t.Y = y
	t.Rotation = rotation
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addAgentTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.AgentTagComponent.Kind(), &component.AgentTag{})
}

func addGoalTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.GoalTagComponent.Kind(), &component.GoalTag{})
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		X:        spec.X,
		Y:        spec.Y,
		Rotation: spec.Rotation,
	})
}

type agentSpec = prefabs.AgentComponentSpec

func addAgent(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[agentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode agent spec: %w", err)
	}
	if spec.Radius <= 0 {
		spec.Radius = 4
	}
	heading := nav.Vec2{X: spec.HeadingX, Y: spec.HeadingY}.Normalize()
	return ecs.Add(w, e, component.AgentComponent.Kind(), &component.Agent{
		Team:    spec.Team,
		Radius:  spec.Radius,
		Heading: heading,
	})
}

type navigatorSpec = prefabs.NavigatorComponentSpec

func addNavigator(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[navigatorSpec](raw)
	if err != nil {
		return fmt.Errorf("decode navigator spec: %w", err)
	}
	if spec.Speed <= 0 {
		return fmt.Errorf("navigator speed must be positive, got %v", spec.Speed)
	}
	if spec.ArriveDistance <= 0 {
		spec.ArriveDistance = 4
	}
	if spec.MaxFailures <= 0 {
		spec.MaxFailures = 3
	}
	return ecs.Add(w, e, component.NavigatorComponent.Kind(), &component.Navigator{
		Speed:          spec.Speed,
		ArriveDistance: spec.ArriveDistance,
		RepathTicks:    spec.RepathTicks,
		MaxFailures:    spec.MaxFailures,
		CooldownTicks:  spec.CooldownTicks,
		Goal:           -1,
	})
}

func addPathfinding(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PathfindingComponent.Kind(), &component.Pathfinding{})
}

type collisionLayerSpec = prefabs.CollisionLayerComponentSpec

func addCollisionLayer(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[collisionLayerSpec](raw)
	if err != nil {
		return fmt.Errorf("decode collision layer spec: %w", err)
	}
	cat := spec.Category
	mask := spec.Mask
	if cat == 0 {
		cat = uint32(ecs.CategoryAgent)
	}
	if mask == 0 {
		mask = ^uint32(0)
	}
	return ecs.Add(w, e, component.CollisionLayerComponent.Kind(), &component.CollisionLayer{Category: cat, Mask: mask})
}

type physicsBodySpec = prefabs.PhysicsBodyComponentSpec

func addPhysicsBody(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[physicsBodySpec](raw)
	if err != nil {
		return fmt.Errorf("decode physics body spec: %w", err)
	}
	pw := w.PhysicsWorld()
	if pw == nil {
		return ErrNoPhysicsWorld
	}

	radius := spec.Radius
	if radius <= 0 {
		if a, ok := ecs.Get(w, e, component.AgentComponent.Kind()); ok {
			radius = a.Radius
		}
	}
	var pos nav.Vec2
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		pos = nav.Vec2{X: t.X, Y: t.Y}
	}
	var layer component.CollisionLayer
	if l, ok := ecs.Get(w, e, component.CollisionLayerComponent.Kind()); ok {
		layer = *l
	}

	pb := pw.AddAgent(e, pos, radius, layer)
	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), pb); err != nil {
		pw.RemoveAgent(e, pb)
		return err
	}
	// the contact counters live in the physics world and are shared here
	if c, ok := pw.Contact(e); ok {
		return ecs.Add(w, e, component.ContactComponent.Kind(), c)
	}
	return nil
}
