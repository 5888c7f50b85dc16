package nav

import (
	"math"
	"testing"
)

func TestCostModelPenalty(t *testing.T) {
	ready := func(v float64) *constField { return &constField{ready: true, value: v} }
	cases := []struct {
		name  string
		model CostModel
		want  int
	}{
		{"nil_fields", CostModel{Weights: DefaultWeights()}, 0},
		{"uninitialized", CostModel{Obstacle: &constField{value: 1}, Territory: &constField{value: 1}, Weights: DefaultWeights()}, 0},
		{"obstacle_scaled", CostModel{Obstacle: ready(0.5), Weights: DefaultWeights()}, 150},
		{"territory_scaled", CostModel{Territory: ready(0.5), Weights: DefaultWeights()}, 50},
		{"additive", CostModel{Obstacle: ready(0.5), Territory: ready(0.5), Weights: DefaultWeights()}, 200},
		{"weighted", CostModel{Obstacle: ready(1), Territory: ready(1), Weights: Weights{Collider: 0.5, Heatmap: 2}}, 350},
		{"negative_clamped", CostModel{Obstacle: ready(-3), Weights: DefaultWeights()}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.model.Penalty(Vec2{}, nil); got != c.want {
				t.Fatalf("expected %d, got %d", c.want, got)
			}
		})
	}
}

func TestShapeCost(t *testing.T) {
	start := Vec2{}
	cases := []struct {
		name      string
		waypoints []Vec2
		heading   Vec2
		w         Weights
		want      float64
	}{
		{"zero_weights", []Vec2{{X: 1}, {X: 1, Y: 1}}, Vec2{}, Weights{}, 0},
		{"straight_line", []Vec2{{X: 4}}, Vec2{}, Weights{LineRatio: 1}, 0},
		{"right_angle_turn", []Vec2{{X: 1}, {X: 1, Y: 1}}, Vec2{}, Weights{TurnAngle: 1}, math.Pi / 2},
		{"detour_ratio", []Vec2{{X: 3}, {X: 3, Y: 4}}, Vec2{}, Weights{LineRatio: 1}, 7.0/5.0 - 1},
		{"heading_reversed", []Vec2{{X: -2}}, Vec2{X: 1}, Weights{Heading: 2}, 2 * math.Pi},
		{"no_waypoints", nil, Vec2{X: 1}, Weights{Heading: 1}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ShapeCost(start, c.waypoints, c.heading, c.w)
			if math.Abs(got-c.want) > 1e-9 {
				t.Fatalf("expected %f, got %f", c.want, got)
			}
		})
	}
}
