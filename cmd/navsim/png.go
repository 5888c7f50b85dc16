package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/milk9111/crowdnav/common"
	"github.com/milk9111/crowdnav/ecs"
	"github.com/milk9111/crowdnav/ecs/component"
	"github.com/milk9111/crowdnav/nav"
	"github.com/milk9111/crowdnav/sim"
	"golang.org/x/image/colornames"
)

// renderImage draws one block of scale pixels per grid cell: blocked
// cells, team heat, then every agent's remaining path and position.
func renderImage(s *sim.Sim, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	g := s.Grid
	img := image.NewRGBA(image.Rect(0, 0, g.Width*scale, g.Height*scale))
	draw.Draw(img, img.Bounds(), &image.Uniform{colornames.Whitesmoke}, image.Point{}, draw.Src)

	teams := s.Territory.Teams()
	cells := g.Cells()
	for i := range cells {
		c := &cells[i]
		var clr color.Color = colornames.Whitesmoke
		if !c.Walkable {
			clr = colornames.Dimgray
		} else {
			for _, team := range teams {
				if h := s.Territory.Heat(team, c.World); h > 0 {
					clr = common.LerpColor(clr, s.Spec.TeamColor(team, colornames.Lightgray), common.Lerp(0.15, 0.8, float32(h)))
				}
			}
		}
		r := image.Rect(c.X*scale, c.Y*scale, (c.X+1)*scale, (c.Y+1)*scale)
		draw.Draw(img, r, &image.Uniform{clr}, image.Point{}, draw.Src)
	}

	ecs.ForEach3(s.World, component.AgentComponent.Kind(), component.TransformComponent.Kind(), component.PathfindingComponent.Kind(),
		func(_ ecs.Entity, a *component.Agent, t *component.Transform, pf *component.Pathfinding) {
			clr := common.LerpColor(s.Spec.TeamColor(a.Team, colornames.Black), colornames.Black, 0.4)
			prev := nav.Vec2{X: t.X, Y: t.Y}
			for _, wp := range pf.Remaining() {
				plotLine(img, g, scale, prev, wp, clr)
				prev = wp
			}
			c := g.CellAt(nav.Vec2{X: t.X, Y: t.Y})
			draw.Draw(img, image.Rect(c.X*scale, c.Y*scale, (c.X+1)*scale, (c.Y+1)*scale), &image.Uniform{clr}, image.Point{}, draw.Src)
		})
	return img
}

// plotLine marks the centre pixel of every cell the segment crosses.
func plotLine(img *image.RGBA, g *nav.Grid, scale int, a, b nav.Vec2, clr color.Color) {
	steps := int(a.Dist(b)/(g.CellSize/2)) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := a.Add(b.Sub(a).Scale(t))
		c := g.CellAt(p)
		img.Set(c.X*scale+scale/2, c.Y*scale+scale/2, clr)
	}
}

func writePNG(path string, s *sim.Sim, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("navsim: create %s: %w", path, err)
	}
	if err := png.Encode(f, renderImage(s, scale)); err != nil {
		_ = f.Close()
		return fmt.Errorf("navsim: encode %s: %w", path, err)
	}
	return f.Close()
}
