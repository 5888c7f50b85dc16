package entity

import (
	"testing"

	"github.com/milk9111/crowdnav/ecs"
	"github.com/milk9111/crowdnav/ecs/component"
	"github.com/milk9111/crowdnav/levels"
)

func loadCorridorWorld(t *testing.T) (*ecs.World, *levels.Level) {
	t.Helper()
	lvl, err := levels.LoadLevelFromFS("corridor")
	if err != nil {
		t.Fatalf("load corridor: %v", err)
	}
	w := ecs.NewWorld()
	w.SetPhysicsWorld(ecs.NewPhysicsWorld(lvl))
	if err := LoadLevelToWorld(w, lvl); err != nil {
		t.Fatalf("load level to world: %v", err)
	}
	return w, lvl
}

func TestLoadLevelToWorld(t *testing.T) {
	w, lvl := loadCorridorWorld(t)

	be, ok := ecs.First(w, component.LevelBoundsComponent.Kind())
	if !ok {
		t.Fatalf("expected level bounds")
	}
	bounds, _ := ecs.Get(w, be, component.LevelBoundsComponent.Kind())
	if bounds.Width != 192 || bounds.Height != 112 || bounds.TileSize != lvl.TileSize {
		t.Fatalf("unexpected bounds %+v", bounds)
	}

	goals := 0
	ecs.ForEach2(w, component.GoalTagComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, _ *component.GoalTag, tr *component.Transform) {
		goals++
		if tr.X != 168 || tr.Y != 40 {
			t.Fatalf("goal at %v,%v", tr.X, tr.Y)
		}
	})
	if goals != 1 {
		t.Fatalf("expected one goal, got %d", goals)
	}

	zones := 0
	ecs.ForEach(w, component.ZoneComponent.Kind(), func(_ ecs.Entity, z *component.Zone) {
		zones++
		if z.Owner != "blue" || z.Min.X != 128 || z.Min.Y != 16 || z.Max.X != 176 || z.Max.Y != 96 {
			t.Fatalf("unexpected zone %+v", z)
		}
	})
	if zones != 1 {
		t.Fatalf("expected one zone, got %d", zones)
	}

	agents := 0
	ecs.ForEach4(w, component.AgentComponent.Kind(), component.TransformComponent.Kind(), component.PhysicsBodyComponent.Kind(), component.NavigatorComponent.Kind(),
		func(e ecs.Entity, a *component.Agent, tr *component.Transform, pb *component.PhysicsBody, n *component.Navigator) {
			agents++
			if a.Team != "red" {
				t.Fatalf("team override not applied: %+v", a)
			}
			if a.Radius != 5 || a.Heading.X != 1 {
				t.Fatalf("prefab values lost: %+v", a)
			}
			if tr.X != 24 || tr.Y != 40 {
				t.Fatalf("agent at %v,%v", tr.X, tr.Y)
			}
			if p := pb.Body.Position(); p.X != 24 || p.Y != 40 {
				t.Fatalf("body at %v", p)
			}
			if n.Goal != -1 || n.Speed != 60 {
				t.Fatalf("unexpected navigator %+v", n)
			}
			if !ecs.Has(w, e, component.ContactComponent.Kind()) || !ecs.Has(w, e, component.PathfindingComponent.Kind()) {
				t.Fatalf("agent is missing runtime components")
			}
		})
	if agents != 1 {
		t.Fatalf("expected one agent, got %d", agents)
	}
}

func TestBuildEntityNeedsPhysicsWorld(t *testing.T) {
	w := ecs.NewWorld()
	if _, err := BuildEntity(w, "agent.yaml"); err == nil {
		t.Fatalf("expected an error without a physics world")
	}
	if len(ecs.Entities(w)) != 0 {
		t.Fatalf("failed build should not leave entities behind")
	}
}

func TestDestroyAgentRemovesBody(t *testing.T) {
	w, _ := loadCorridorWorld(t)
	e, ok := ecs.First(w, component.AgentTagComponent.Kind())
	if !ok {
		t.Fatalf("expected an agent")
	}
	pb, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !DestroyAgent(w, e) {
		t.Fatalf("destroy failed")
	}
	if _, ok := w.PhysicsWorld().EntityForShape(pb.Shape); ok {
		t.Fatalf("shape still registered")
	}
	if ecs.IsAlive(w, e) {
		t.Fatalf("entity still alive")
	}
}

func TestSetEntityTransform(t *testing.T) {
	w := ecs.NewWorld()
	e := ecs.CreateEntity(w)
	if err := SetEntityTransform(w, e, 3, 4, 0.5); err != nil {
		t.Fatalf("set transform: %v", err)
	}
	tr, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || tr.X != 3 || tr.Y != 4 || tr.Rotation != 0.5 {
		t.Fatalf("unexpected transform %+v", tr)
	}
}
