package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/milk9111/crowdnav/sim"
	"golang.org/x/image/colornames"
)

func TestRenderImage(t *testing.T) {
	s, err := sim.New(sim.Options{Level: "corridor", Blocking: true})
	if err != nil {
		t.Fatalf("new sim: %v", err)
	}
	s.Run(30)

	img := renderImage(s, 3)
	if b := img.Bounds(); b.Dx() != s.Grid.Width*3 || b.Dy() != s.Grid.Height*3 {
		t.Fatalf("unexpected image size %v", b)
	}
	// the top-left cell lies inside the border wall
	if got := img.RGBAAt(1, 1); got != colornames.Dimgray {
		t.Fatalf("expected a wall pixel, got %v", got)
	}

	path := filepath.Join(t.TempDir(), "out.png")
	if err := writePNG(path, s, 2); err != nil {
		t.Fatalf("write png: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds().Dx() != s.Grid.Width*2 {
		t.Fatalf("unexpected decoded width %d", decoded.Bounds().Dx())
	}
}

func TestReport(t *testing.T) {
	stats := &requestStats{}
	s, err := sim.New(sim.Options{Level: "open", Blocking: true, Hooks: stats.hooks()})
	if err != nil {
		t.Fatalf("new sim: %v", err)
	}
	s.Run(10)

	var buf bytes.Buffer
	report(&buf, s, stats, 10, time.Second)
	out := buf.String()
	if !strings.Contains(out, "level open: 10 ticks") || !strings.Contains(out, "requests 1") {
		t.Fatalf("unexpected report:\n%s", out)
	}
	if !strings.Contains(out, "red") {
		t.Fatalf("agent table missing:\n%s", out)
	}
}
