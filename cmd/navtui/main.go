package main

import (
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/crowdnav/common"
	"github.com/milk9111/crowdnav/ecs"
	"github.com/milk9111/crowdnav/ecs/component"
	"github.com/milk9111/crowdnav/nav"
	"github.com/milk9111/crowdnav/sim"
	"golang.org/x/image/colornames"
)

// viewer draws one terminal cell per level tile.
type viewer struct {
	screen tcell.Screen
	sim    *sim.Sim
	opts   sim.Options

	paused   bool
	showHeat bool
	status   string
}

func newViewer(screen tcell.Screen, opts sim.Options) (*viewer, error) {
	s, err := sim.New(opts)
	if err != nil {
		return nil, err
	}
	return &viewer{screen: screen, sim: s, opts: opts, showHeat: true}, nil
}

func toCell(c color.Color) tcell.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return tcell.NewRGBColor(int32(n.R), int32(n.G), int32(n.B))
}

func (v *viewer) draw() {
	v.screen.Clear()
	lvl := v.sim.Level
	floor := tcell.StyleDefault.Background(toCell(colornames.Black))
	wall := tcell.StyleDefault.Foreground(toCell(colornames.Dimgray)).Background(toCell(colornames.Dimgray))
	solid := lvl.Solid()

	for y := 0; y < lvl.Height; y++ {
		for x := 0; x < lvl.Width; x++ {
			if solid[y*lvl.Width+x] {
				v.screen.SetContent(x, y, '█', nil, wall)
				continue
			}
			style := floor
			if v.showHeat {
				style = style.Background(v.heatColor(x, y))
			}
			v.screen.SetContent(x, y, ' ', nil, style)
		}
	}

	ecs.ForEach2(v.sim.World, component.GoalTagComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, _ *component.GoalTag, t *component.Transform) {
		v.put(t.X, t.Y, '*', tcell.StyleDefault.Foreground(toCell(colornames.Gold)))
	})
	ecs.ForEach3(v.sim.World, component.AgentComponent.Kind(), component.TransformComponent.Kind(), component.PathfindingComponent.Kind(),
		func(_ ecs.Entity, a *component.Agent, t *component.Transform, pf *component.Pathfinding) {
			fg := toCell(v.sim.Spec.TeamColor(a.Team, colornames.White))
			for _, wp := range pf.Remaining() {
				v.put(wp.X, wp.Y, '·', tcell.StyleDefault.Foreground(fg))
			}
			v.put(t.X, t.Y, '@', tcell.StyleDefault.Foreground(fg).Bold(true))
		})

	stats := v.sim.Stats
	line := fmt.Sprintf("%s tick %d queue %d found %d failed %d arrived %d gave up %d",
		lvl.Name, v.sim.Scheduler.Ticks(), v.sim.Dispatcher.Pending(),
		stats.Count(ecs.EventPathFound), stats.Count(ecs.EventPathFailed), stats.Count(ecs.EventArrived), stats.Count(ecs.EventGaveUp))
	if v.paused {
		line += " [paused]"
	}
	v.text(0, lvl.Height, line)
	v.text(0, lvl.Height+1, "space pause  . step  h heat  r restart  q quit")
	if v.status != "" {
		v.text(0, lvl.Height+2, v.status)
	}
	v.screen.Show()
}

// put draws r on the tile holding world position x, y, keeping the
// background already there.
func (v *viewer) put(x, y float64, r rune, style tcell.Style) {
	ts := v.sim.Level.TileSize
	cx, cy := int(x/ts), int(y/ts)
	_, _, old, _ := v.screen.GetContent(cx, cy)
	_, bg, _ := old.Decompose()
	v.screen.SetContent(cx, cy, r, nil, style.Background(bg))
}

func (v *viewer) text(x, y int, s string) {
	for i, r := range s {
		v.screen.SetContent(x+i, y, r, nil, tcell.StyleDefault)
	}
}

// heatColor blends the team colours by the heat at the tile centre.
func (v *viewer) heatColor(x, y int) tcell.Color {
	cx, cy := v.sim.Level.TileCentre(x, y)
	pos := nav.Vec2{X: cx, Y: cy}
	var clr color.Color = colornames.Black
	for _, team := range v.sim.Territory.Teams() {
		if h := v.sim.Territory.Heat(team, pos); h > 0 {
			clr = common.LerpColor(clr, v.sim.Spec.TeamColor(team, colornames.Gray), common.Lerp(0.2, 0.7, float32(h)))
		}
	}
	return toCell(clr)
}

// handle reports false when the viewer should exit.
func (v *viewer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			v.paused = !v.paused
		case '.':
			if v.paused {
				v.sim.Tick()
			}
		case 'h':
			v.showHeat = !v.showHeat
		case 'r':
			s, err := sim.New(v.opts)
			if err != nil {
				v.status = err.Error()
				return true
			}
			v.sim = s
			v.status = "restarted"
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *viewer) run(tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			if !v.handle(ev) {
				return
			}
			v.draw()
		case <-ticker.C:
			if !v.paused {
				v.sim.Tick()
			}
			v.draw()
		}
	}
}

func main() {
	levelName := flag.String("level", "arena", "level name in levels/ (basename, .json optional)")
	fps := flag.Int("fps", 30, "simulation ticks per second")
	flag.Parse()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	// log lines would tear the screen while it is active
	log.SetOutput(io.Discard)

	v, err := newViewer(screen, sim.Options{Level: *levelName})
	if err != nil {
		screen.Fini()
		log.SetOutput(os.Stderr)
		log.Fatal(err)
	}
	if *fps <= 0 {
		*fps = 30
	}
	v.run(time.Second / time.Duration(*fps))
	screen.Fini()
	log.SetOutput(os.Stderr)
}
