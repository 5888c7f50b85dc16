package common

import (
	"image/color"
	"testing"
)

func TestLerpColor(t *testing.T) {
	black := color.NRGBA{A: 255}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	cases := []struct {
		t    float32
		want color.NRGBA
	}{
		{0, black},
		{1, white},
		{0.5, color.NRGBA{R: 128, G: 128, B: 128, A: 255}},
		{-3, black},
		{7, white},
	}
	for _, c := range cases {
		if got := LerpColor(black, white, c.t); got != c.want {
			t.Fatalf("t=%v: expected %v, got %v", c.t, c.want, got)
		}
	}
}
