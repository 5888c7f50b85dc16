package system

import (
	"github.com/milk9111/crowdnav/ecs"
	"github.com/milk9111/crowdnav/ecs/component"
)

const defaultPhysicsStep = 1.0 / 60.0

// PhysicsSystem pushes each navigator's desired velocity into its body,
// steps the space and copies positions back to the transforms.
type PhysicsSystem struct {
	dt float64
}

func NewPhysicsSystem(dt float64) *PhysicsSystem {
	if dt <= 0 {
		dt = defaultPhysicsStep
	}
	return &PhysicsSystem{dt: dt}
}

func (p *PhysicsSystem) Update(w *ecs.World) {
	if p == nil || w == nil {
		return
	}
	pw := w.PhysicsWorld()
	if pw == nil {
		return
	}

	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.NavigatorComponent.Kind(), func(_ ecs.Entity, pb *component.PhysicsBody, n *component.Navigator) {
		pw.SyncAgent(pb, n.Desired)
	})

	pw.Step(p.dt)

	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, pb *component.PhysicsBody, t *component.Transform) {
		if pb.Body == nil {
			return
		}
		pos := pb.Body.Position()
		t.X = pos.X
		t.Y = pos.Y
	})
}
