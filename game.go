package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/crowdnav/common"
	"github.com/milk9111/crowdnav/ecs"
	"github.com/milk9111/crowdnav/nav"
	"github.com/milk9111/crowdnav/prefabs"
	"github.com/milk9111/crowdnav/sim"
)

type Game struct {
	frames int

	opts    sim.Options
	sim     *sim.Sim
	watcher *prefabs.Watcher
	ui      *ebitenui.UI

	paused   bool
	stepOnce bool
	overlays overlays
	status   string
}

// overlays toggles the optional layers of the view.
type overlays struct {
	heat     bool
	obstacle bool
	blocked  bool
	paths    bool
}

func NewGame(opts sim.Options) (*Game, error) {
	if opts.Debug {
		opts.Hooks = debugHooks()
	}
	s, err := sim.New(opts)
	if err != nil {
		return nil, err
	}

	g := &Game{
		opts:     opts,
		sim:      s,
		overlays: overlays{heat: true, paths: true, blocked: true},
	}
	g.ui = NewPauseUI(g)

	var dirs []string
	for _, dir := range []string{"prefabs", filepath.Join("prefabs", "scripts"), "levels"} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	if !prefabs.OnDisk("nav.yaml") {
		log.Printf("prefabs/nav.yaml not found on disk, using the embedded copy")
	}
	if len(dirs) > 0 {
		w, err := prefabs.NewWatcher(dirs...)
		if err != nil {
			log.Printf("hot reload disabled: %v", err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func debugHooks() nav.Hooks {
	return nav.Hooks{
		Started: func(t nav.Ticket) {
			log.Printf("dispatcher: ticket=%d started", t)
		},
		Finished: func(t nav.Ticket, res nav.Result) {
			log.Printf("dispatcher: ticket=%d success=%v cost=%d expanded=%d waypoints=%d", t, res.Success, res.Cost, res.Expanded, len(res.Waypoints))
		},
	}
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Update() error {
	g.frames++
	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.overlays.heat = !g.overlays.heat
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		g.overlays.obstacle = !g.overlays.obstacle
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		g.overlays.blocked = !g.overlays.blocked
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.overlays.paths = !g.overlays.paths
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.restart(nil)
	}
	if g.paused && inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
		g.stepOnce = true
	}

	if g.paused {
		g.ui.Update()
		if !g.stepOnce {
			return nil
		}
		g.stepOnce = false
	}
	g.sim.Tick()
	return nil
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.handleChange(path)
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("hot reload: %v", err)
			}
		default:
			return
		}
	}
}

func (g *Game) handleChange(path string) {
	base := filepath.Base(path)
	switch prefabs.Classify(path) {
	case prefabs.ChangeSpec:
		if base != "nav.yaml" {
			// entity prefabs only apply to newly built agents
			g.restart(nil)
			return
		}
		spec, err := prefabs.LoadNavSpec()
		if err != nil {
			g.setStatus("nav.yaml: %v", err)
			return
		}
		if g.sim.NeedsRebuild(spec) {
			g.restart(spec)
			return
		}
		if err := g.sim.ApplySpec(spec); err != nil {
			g.setStatus("nav.yaml: %v", err)
			return
		}
		g.setStatus("reloaded %s", base)
	case prefabs.ChangeScript:
		if err := g.sim.ReloadScript(); err != nil {
			g.setStatus("%s: %v", base, err)
			return
		}
		g.setStatus("reloaded %s", base)
	case prefabs.ChangeLevel:
		if strings.TrimSuffix(base, filepath.Ext(base)) == g.sim.Level.Name {
			g.restart(nil)
		}
	}
}

// restart rebuilds the simulation, keeping the current one if the new
// one fails to build.
func (g *Game) restart(spec *prefabs.NavSpec) {
	opts := g.opts
	opts.Spec = spec
	s, err := sim.New(opts)
	if err != nil {
		g.setStatus("restart: %v", err)
		return
	}
	g.sim = s
	g.setStatus("restarted %s", s.Level.Name)
}

func (g *Game) setStatus(format string, args ...any) {
	g.status = fmt.Sprintf(format, args...)
	log.Print(g.status)
}

func (g *Game) Draw(screen *ebiten.Image) {
	v := newView(g.sim)
	v.drawLevel(screen)
	if g.overlays.blocked {
		v.drawBlocked(screen)
	}
	if g.overlays.heat {
		v.drawHeat(screen)
	}
	if g.overlays.obstacle {
		v.drawObstacle(screen)
	}
	v.drawZones(screen)
	v.drawGoals(screen)
	if g.overlays.paths {
		v.drawPaths(screen)
	}
	v.drawAgents(screen)

	stats := g.sim.Stats
	hud := fmt.Sprintf("%s  tick %d  FPS %.0f  queue %d  steps %d\nfound %d  failed %d  arrived %d  gave up %d",
		g.sim.Level.Name, g.sim.Scheduler.Ticks(), ebiten.ActualFPS(), g.sim.Dispatcher.Pending(), g.sim.Pathfinding.LastSteps(),
		stats.Count(ecs.EventPathFound), stats.Count(ecs.EventPathFailed), stats.Count(ecs.EventArrived), stats.Count(ecs.EventGaveUp))
	ebitenutil.DebugPrintAt(screen, hud, 8, 8)
	if info := v.cellInfo(ebiten.CursorPosition()); info != "" {
		ebitenutil.DebugPrintAt(screen, info, 8, common.BaseHeight-40)
	}
	if g.status != "" {
		ebitenutil.DebugPrintAt(screen, g.status, 8, common.BaseHeight-20)
	}

	if g.paused {
		g.ui.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
