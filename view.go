package main

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/crowdnav/common"
	"github.com/milk9111/crowdnav/ecs"
	"github.com/milk9111/crowdnav/ecs/component"
	"github.com/milk9111/crowdnav/nav"
	"github.com/milk9111/crowdnav/sim"
	"golang.org/x/image/colornames"
)

var (
	floorColor    = colornames.Whitesmoke
	wallColor     = colornames.Dimgray
	blockedColor  = color.NRGBA{R: 40, G: 40, B: 40, A: 60}
	obstacleColor = colornames.Orangered
	goalColor     = colornames.Gold
	neutralColor  = colornames.Lightgray
)

// view maps world units onto the fixed logical screen, letterboxed.
type view struct {
	sim     *sim.Sim
	scale   float32
	offX    float32
	offY    float32
	visible Rect
}

func newView(s *sim.Sim) *view {
	worldW, worldH := s.Level.WorldSize()
	scale := float32(math.Min(common.BaseWidth/worldW, common.BaseHeight/worldH))
	v := &view{
		sim:   s,
		scale: scale,
		offX:  (common.BaseWidth - float32(worldW)*scale) / 2,
		offY:  (common.BaseHeight - float32(worldH)*scale) / 2,
	}
	v.visible = Rect{X: 0, Y: 0, Width: common.BaseWidth, Height: common.BaseHeight}
	return v
}

func (v *view) toScreen(p nav.Vec2) (float32, float32) {
	return v.offX + float32(p.X)*v.scale, v.offY + float32(p.Y)*v.scale
}

func (v *view) toWorld(x, y int) nav.Vec2 {
	return nav.Vec2{X: float64((float32(x) - v.offX) / v.scale), Y: float64((float32(y) - v.offY) / v.scale)}
}

func (v *view) cellRect(c *nav.Cell) Rect {
	half := v.sim.Grid.CellSize / 2
	x, y := v.toScreen(nav.Vec2{X: c.World.X - half, Y: c.World.Y - half})
	size := float32(v.sim.Grid.CellSize) * v.scale
	return Rect{X: x, Y: y, Width: size, Height: size}
}

func (v *view) fill(screen *ebiten.Image, r Rect, clr color.Color) {
	if !r.Intersects(&v.visible) {
		return
	}
	vector.FillRect(screen, r.X, r.Y, r.Width, r.Height, clr, false)
}

func (v *view) drawLevel(screen *ebiten.Image) {
	lvl := v.sim.Level
	worldW, worldH := lvl.WorldSize()
	x, y := v.toScreen(nav.Vec2{})
	vector.FillRect(screen, x, y, float32(worldW)*v.scale, float32(worldH)*v.scale, floorColor, false)

	size := float32(lvl.TileSize) * v.scale
	for i, solid := range lvl.Solid() {
		if !solid {
			continue
		}
		tx, ty := v.toScreen(nav.Vec2{X: float64(i%lvl.Width) * lvl.TileSize, Y: float64(i/lvl.Width) * lvl.TileSize})
		v.fill(screen, Rect{X: tx, Y: ty, Width: size, Height: size}, wallColor)
	}
}

func (v *view) drawBlocked(screen *ebiten.Image) {
	cells := v.sim.Grid.Cells()
	for i := range cells {
		if !cells[i].Walkable {
			v.fill(screen, v.cellRect(&cells[i]), blockedColor)
		}
	}
}

// drawHeat tints each cell by the heat every team has left there.
func (v *view) drawHeat(screen *ebiten.Image) {
	terr := v.sim.Territory
	teams := terr.Teams()
	cells := v.sim.Grid.Cells()
	for i := range cells {
		c := &cells[i]
		for _, team := range teams {
			h := terr.Heat(team, c.World)
			if h <= 0 {
				continue
			}
			base := v.sim.Spec.TeamColor(team, neutralColor)
			clr := common.LerpColor(color.NRGBA{}, base, common.Lerp(0.1, 0.6, float32(h)))
			v.fill(screen, v.cellRect(c), clr)
		}
	}
}

func (v *view) drawObstacle(screen *ebiten.Image) {
	obs := v.sim.Obstacle
	if !obs.Initialized() {
		return
	}
	cells := v.sim.Grid.Cells()
	for i := range cells {
		val := obs.ValueAt(cells[i].World, nil)
		if val <= 0 {
			continue
		}
		clr := common.LerpColor(color.NRGBA{}, obstacleColor, common.Lerp(0, 0.5, float32(val)))
		v.fill(screen, v.cellRect(&cells[i]), clr)
	}
}

func (v *view) zoneRect(z *component.Zone) Rect {
	x0, y0 := v.toScreen(z.Min)
	x1, y1 := v.toScreen(z.Max)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func (v *view) drawZones(screen *ebiten.Image) {
	ecs.ForEach(v.sim.World, component.ZoneComponent.Kind(), func(_ ecs.Entity, z *component.Zone) {
		r := v.zoneRect(z)
		vector.StrokeRect(screen, r.X, r.Y, r.Width, r.Height, 2, v.sim.Spec.TeamColor(z.Owner, neutralColor), false)
	})
}

func (v *view) drawGoals(screen *ebiten.Image) {
	ecs.ForEach2(v.sim.World, component.GoalTagComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, _ *component.GoalTag, t *component.Transform) {
		x, y := v.toScreen(nav.Vec2{X: t.X, Y: t.Y})
		r := 4 * v.scale
		vector.StrokeRect(screen, x-r, y-r, 2*r, 2*r, 2, goalColor, false)
	})
}

func (v *view) drawPaths(screen *ebiten.Image) {
	ecs.ForEach3(v.sim.World, component.PathfindingComponent.Kind(), component.AgentComponent.Kind(), component.TransformComponent.Kind(),
		func(_ ecs.Entity, pf *component.Pathfinding, a *component.Agent, t *component.Transform) {
			clr := common.LerpColor(v.sim.Spec.TeamColor(a.Team, neutralColor), color.Black, 0.3)
			px, py := v.toScreen(nav.Vec2{X: t.X, Y: t.Y})
			for _, wp := range pf.Remaining() {
				x, y := v.toScreen(wp)
				vector.StrokeLine(screen, px, py, x, y, 1.5, clr, true)
				vector.FillCircle(screen, x, y, 2, clr, true)
				px, py = x, y
			}
		})
}

func (v *view) drawAgents(screen *ebiten.Image) {
	ecs.ForEach3(v.sim.World, component.AgentComponent.Kind(), component.TransformComponent.Kind(), component.NavigatorComponent.Kind(),
		func(_ ecs.Entity, a *component.Agent, t *component.Transform, n *component.Navigator) {
			x, y := v.toScreen(nav.Vec2{X: t.X, Y: t.Y})
			r := float32(a.Radius) * v.scale
			clr := v.sim.Spec.TeamColor(a.Team, neutralColor)
			if n.Cooldown > 0 {
				clr = common.LerpColor(clr, neutralColor, 0.7)
			}
			vector.FillCircle(screen, x, y, r, clr, true)
			hx := x + float32(a.Heading.X)*r*1.5
			hy := y + float32(a.Heading.Y)*r*1.5
			vector.StrokeLine(screen, x, y, hx, hy, 1.5, colornames.White, true)
		})
}

// cellInfo describes the cell under the cursor.
func (v *view) cellInfo(cx, cy int) string {
	p := v.toWorld(cx, cy)
	worldW, worldH := v.sim.Level.WorldSize()
	if p.X < 0 || p.Y < 0 || p.X >= worldW || p.Y >= worldH {
		return ""
	}
	c := v.sim.Grid.CellAt(p)
	var b strings.Builder
	fmt.Fprintf(&b, "cell %d,%d walkable=%v obstacle=%.2f", c.X, c.Y, c.Walkable, v.sim.Obstacle.ValueAt(c.World, nil))
	for _, team := range v.sim.Territory.Teams() {
		cost := v.sim.Territory.ValueAt(c.World, &nav.Agent{Team: team})
		fmt.Fprintf(&b, " %s=%.2f", team, cost)
	}
	pen := v.sim.Dispatcher.CostModel()
	for _, team := range v.sim.Territory.Teams() {
		fmt.Fprintf(&b, " pen[%s]=%d", team, pen.Penalty(c.World, &nav.Agent{Team: team}))
	}
	var zone string
	sx, sy := float32(cx), float32(cy)
	ecs.ForEach(v.sim.World, component.ZoneComponent.Kind(), func(_ ecs.Entity, z *component.Zone) {
		r := v.zoneRect(z)
		if r.Contains(sx, sy) {
			zone = z.Owner
		}
	})
	if zone != "" {
		fmt.Fprintf(&b, " zone=%s", zone)
	}
	return b.String()
}
