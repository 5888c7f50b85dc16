package ecs

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/crowdnav/ecs/component"
	"github.com/milk9111/crowdnav/levels"
	"github.com/milk9111/crowdnav/nav"
)

const (
	collisionTypeWall cp.CollisionType = iota + 1
	collisionTypeAgent
)

// Shape filter categories.
const (
	CategoryWall uint = 1 << iota
	CategoryAgent
)

// WallFilter matches level geometry only.
var WallFilter = cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, CategoryWall)

// ObstacleFilter matches walls and agent bodies.
var ObstacleFilter = cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, CategoryWall|CategoryAgent)

// PhysicsWorld owns the Chipmunk space: static boxes for the level walls
// and one dynamic circle per agent.
type PhysicsWorld struct {
	level         *levels.Level
	space         *cp.Space
	handlersReady bool

	walls         []*cp.Shape
	shapeToEntity map[*cp.Shape]Entity
	contacts      map[Entity]*component.Contact
}

// NewPhysicsWorld creates a physics world for a level. A nil level gives an
// empty space.
func NewPhysicsWorld(level *levels.Level) *PhysicsWorld {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{})

	pw := &PhysicsWorld{
		level:         level,
		space:         space,
		shapeToEntity: make(map[*cp.Shape]Entity),
		contacts:      make(map[Entity]*component.Contact),
	}
	pw.buildStaticShapes()
	pw.setupHandlers()
	return pw
}

// Space returns the underlying Chipmunk space.
func (pw *PhysicsWorld) Space() *cp.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

func (pw *PhysicsWorld) Level() *levels.Level {
	return pw.level
}

// Walls returns the static wall shapes in creation order.
func (pw *PhysicsWorld) Walls() []*cp.Shape {
	return pw.walls
}

// AddWall adds a static box covering bb.
func (pw *PhysicsWorld) AddWall(bb cp.BB) *cp.Shape {
	shape := cp.NewBox2(pw.space.StaticBody, bb, 0)
	shape.SetFriction(0)
	shape.SetCollisionType(collisionTypeWall)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, CategoryWall, cp.ALL_CATEGORIES))
	pw.space.AddShape(shape)
	pw.walls = append(pw.walls, shape)
	return shape
}

// AddAgent creates a dynamic circle for e at pos. Rotation is locked so the
// solver only pushes agents around.
func (pw *PhysicsWorld) AddAgent(e Entity, pos nav.Vec2, radius float64, layer component.CollisionLayer) *component.PhysicsBody {
	if radius <= 0 {
		radius = 1
	}
	body := cp.NewBody(1, math.Inf(1))
	body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetFriction(0)
	shape.SetCollisionType(collisionTypeAgent)

	category := uint(layer.Category)
	if category == 0 {
		category = CategoryAgent
	}
	mask := uint(layer.Mask)
	if mask == 0 {
		mask = cp.ALL_CATEGORIES
	}
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, category, mask))

	pw.space.AddBody(body)
	pw.space.AddShape(shape)
	pw.shapeToEntity[shape] = e
	pw.contacts[e] = &component.Contact{}

	return &component.PhysicsBody{Body: body, Shape: shape, Radius: radius}
}

// RemoveAgent takes the body of e out of the space.
func (pw *PhysicsWorld) RemoveAgent(e Entity, pb *component.PhysicsBody) {
	if pb == nil || pb.Body == nil {
		return
	}
	if pb.Shape != nil {
		pw.space.RemoveShape(pb.Shape)
		delete(pw.shapeToEntity, pb.Shape)
	}
	pw.space.RemoveBody(pb.Body)
	delete(pw.contacts, e)
}

// SyncAgent sets the velocity the solver should aim for this step.
func (pw *PhysicsWorld) SyncAgent(pb *component.PhysicsBody, vel nav.Vec2) {
	if pb == nil || pb.Body == nil {
		return
	}
	pb.Body.SetVelocity(vel.X, vel.Y)
}

// Step advances the simulation and refreshes contact counts.
func (pw *PhysicsWorld) Step(dt float64) {
	for _, c := range pw.contacts {
		c.Walls = 0
		c.Agents = 0
	}
	pw.space.Step(dt)
	for _, c := range pw.contacts {
		if c.Walls > 0 {
			c.Stuck++
		} else {
			c.Stuck = 0
		}
	}
}

// Contact returns the live contact counters of e.
func (pw *PhysicsWorld) Contact(e Entity) (*component.Contact, bool) {
	c, ok := pw.contacts[e]
	return c, ok
}

// EntityForShape maps an agent shape back to its entity.
func (pw *PhysicsWorld) EntityForShape(s *cp.Shape) (Entity, bool) {
	e, ok := pw.shapeToEntity[s]
	return e, ok
}

// BakeWalkability marks every cell whose centre is closer than clearance
// to a wall as unwalkable and every other cell as walkable. It returns the
// number of blocked cells.
func (pw *PhysicsWorld) BakeWalkability(grid *nav.Grid, clearance float64) int {
	blocked := 0
	cells := grid.Cells()
	for i := range cells {
		c := &cells[i]
		p := cp.Vector{X: c.World.X, Y: c.World.Y}
		info := pw.space.PointQueryNearest(p, clearance, WallFilter)
		solid := info.Shape != nil
		grid.SetWalkable(c.X, c.Y, !solid)
		if solid {
			blocked++
		}
	}
	return blocked
}

func (pw *PhysicsWorld) buildStaticShapes() {
	if pw == nil || pw.level == nil {
		return
	}
	pw.processWallTiles(pw.level.Solid())

	worldW, worldH := pw.level.WorldSize()
	if worldW > 0 && worldH > 0 {
		thickness := 1.0
		segments := []struct {
			a cp.Vector
			b cp.Vector
		}{
			{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: worldW, Y: 0}},
			{a: cp.Vector{X: 0, Y: worldH}, b: cp.Vector{X: worldW, Y: worldH}},
			{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: worldH}},
			{a: cp.Vector{X: worldW, Y: 0}, b: cp.Vector{X: worldW, Y: worldH}},
		}
		for _, seg := range segments {
			shape := cp.NewSegment(pw.space.StaticBody, seg.a, seg.b, thickness)
			shape.SetFriction(0)
			shape.SetCollisionType(collisionTypeWall)
			shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, CategoryWall, cp.ALL_CATEGORIES))
			pw.space.AddShape(shape)
		}
	}
}

// processWallTiles merges solid tiles into as few boxes as it greedily can:
// grow right along the row, then down while the whole run stays solid.
func (pw *PhysicsWorld) processWallTiles(solid []bool) {
	lw, lh := pw.level.Width, pw.level.Height
	size := pw.level.TileSize
	processed := make([]bool, lw*lh)
	for y := 0; y < lh; y++ {
		for x := 0; x < lw; x++ {
			idx := y*lw + x
			if processed[idx] {
				continue
			}
			if !solid[idx] {
				processed[idx] = true
				continue
			}

			w := 1
			for x+w < lw {
				idx2 := y*lw + (x + w)
				if processed[idx2] || !solid[idx2] {
					break
				}
				w++
			}

			h := 1
		heightLoop:
			for y+h < lh {
				for xi := x; xi < x+w; xi++ {
					idx2 := (y+h)*lw + xi
					if processed[idx2] || !solid[idx2] {
						break heightLoop
					}
				}
				h++
			}

			x0 := float64(x) * size
			y0 := float64(y) * size
			pw.AddWall(cp.BB{L: x0, B: y0, R: x0 + float64(w)*size, T: y0 + float64(h)*size})

			for yy := y; yy < y+h; yy++ {
				for xx := x; xx < x+w; xx++ {
					processed[yy*lw+xx] = true
				}
			}
		}
	}
	log.Printf("PhysicsWorld: level %s merged into %d wall boxes", pw.level.Name, len(pw.walls))
}

func (pw *PhysicsWorld) setupHandlers() {
	if pw == nil || pw.handlersReady || pw.space == nil {
		return
	}

	wallHandler := pw.space.NewCollisionHandler(collisionTypeAgent, collisionTypeWall)
	wallHandler.UserData = pw
	wallHandler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*PhysicsWorld)
		if !ok || world == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		if c := world.contactFor(shapeA, shapeB); c != nil {
			c.Walls++
		}
		return true
	}

	crowdHandler := pw.space.NewCollisionHandler(collisionTypeAgent, collisionTypeAgent)
	crowdHandler.UserData = pw
	crowdHandler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*PhysicsWorld)
		if !ok || world == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		if e, ok := world.shapeToEntity[shapeA]; ok {
			world.contacts[e].Agents++
		}
		if e, ok := world.shapeToEntity[shapeB]; ok {
			world.contacts[e].Agents++
		}
		return true
	}

	pw.handlersReady = true
}

func (pw *PhysicsWorld) contactFor(a, b *cp.Shape) *component.Contact {
	if e, ok := pw.shapeToEntity[a]; ok {
		return pw.contacts[e]
	}
	if e, ok := pw.shapeToEntity[b]; ok {
		return pw.contacts[e]
	}
	return nil
}
