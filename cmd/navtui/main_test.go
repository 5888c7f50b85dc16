package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/crowdnav/sim"
)

func newTestViewer(t *testing.T) *viewer {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	v, err := newViewer(screen, sim.Options{Level: "corridor"})
	if err != nil {
		t.Fatalf("new viewer: %v", err)
	}
	return v
}

func TestViewerDraw(t *testing.T) {
	v := newTestViewer(t)
	v.draw()

	cases := []struct {
		name string
		x, y int
		want rune
	}{
		{"wall", 0, 0, '█'},
		{"pillar", 5, 2, '█'},
		{"agent", 1, 2, '@'},
		{"goal", 10, 2, '*'},
		{"floor", 3, 4, ' '},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, _, _, _ := v.screen.GetContent(c.x, c.y)
			if got != c.want {
				t.Fatalf("expected %q at %d,%d, got %q", c.want, c.x, c.y, got)
			}
		})
	}

	status, _, _, _ := v.screen.GetContent(0, v.sim.Level.Height)
	if status != 'c' {
		t.Fatalf("status line should start with the level name, got %q", status)
	}
}

func TestViewerKeys(t *testing.T) {
	v := newTestViewer(t)

	if !v.handle(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)) || !v.paused {
		t.Fatalf("space should pause")
	}
	before := v.sim.Scheduler.Ticks()
	v.handle(tcell.NewEventKey(tcell.KeyRune, '.', tcell.ModNone))
	if v.sim.Scheduler.Ticks() != before+1 {
		t.Fatalf("step should advance one tick while paused")
	}
	v.handle(tcell.NewEventKey(tcell.KeyRune, 'h', tcell.ModNone))
	if v.showHeat {
		t.Fatalf("h should hide the heat")
	}
	old := v.sim
	v.handle(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone))
	if v.sim == old || v.status != "restarted" {
		t.Fatalf("r should rebuild the simulation")
	}
	if v.handle(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatalf("q should quit")
	}
	if v.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Fatalf("escape should quit")
	}
}
