package nav

import "math"

// Scale factors bringing field values into the integer range of grid steps.
const (
	ColliderScale = 300
	HeatmapScale  = 100
)

// Agent describes the requester. Team selects the territory layer a search
// pays for; Heading feeds the shape score.
type Agent struct {
	Team    string
	Heading Vec2
}

// CostField is a spatial penalty source. A field that is not initialized
// yet contributes nothing.
type CostField interface {
	Initialized() bool
	ValueAt(pos Vec2, agent *Agent) float64
}

// Weights scale each cost term. Collider and Heatmap shape the search; the
// remaining three only feed ShapeCost.
type Weights struct {
	Collider  float64
	Heatmap   float64
	LineRatio float64
	TurnAngle float64
	Heading   float64
}

// DefaultWeights blends both fields at full strength and ignores shape.
func DefaultWeights() Weights {
	return Weights{Collider: 1, Heatmap: 1}
}

// CostModel bundles the fields and weights a search reads.
type CostModel struct {
	Obstacle  CostField
	Territory CostField
	Weights   Weights
}

// Penalty is the additive movement penalty for entering pos.
func (m CostModel) Penalty(pos Vec2, agent *Agent) int {
	p := 0.0
	if m.Obstacle != nil && m.Obstacle.Initialized() {
		p += m.Obstacle.ValueAt(pos, nil) * m.Weights.Collider * ColliderScale
	}
	if m.Territory != nil && m.Territory.Initialized() {
		p += m.Territory.ValueAt(pos, agent) * m.Weights.Heatmap * HeatmapScale
	}
	if p <= 0 || math.IsNaN(p) {
		return 0
	}
	if p > math.MaxInt32/4 {
		return math.MaxInt32 / 4
	}
	return int(p)
}

// ShapeCost scores a waypoint path by its straightness, its turning and how
// far its first leg deviates from the agent's heading.
func ShapeCost(start Vec2, waypoints []Vec2, heading Vec2, w Weights) float64 {
	if len(waypoints) == 0 || (w.LineRatio == 0 && w.TurnAngle == 0 && w.Heading == 0) {
		return 0
	}

	total := 0.0
	if w.LineRatio != 0 {
		straight := start.Dist(waypoints[len(waypoints)-1])
		if straight > 0 {
			length := 0.0
			prev := start
			for _, p := range waypoints {
				length += prev.Dist(p)
				prev = p
			}
			total += w.LineRatio * (length/straight - 1)
		}
	}

	if w.TurnAngle != 0 {
		turn := 0.0
		prev := start
		prevAngle, havePrev := 0.0, false
		for _, p := range waypoints {
			d := p.Sub(prev)
			if d.Len() == 0 {
				continue
			}
			a := math.Atan2(d.Y, d.X)
			if havePrev {
				turn += math.Abs(angleDiff(a, prevAngle))
			}
			prevAngle, havePrev = a, true
			prev = p
		}
		total += w.TurnAngle * turn
	}

	if w.Heading != 0 && heading.Len() > 0 {
		d := waypoints[0].Sub(start)
		if d.Len() > 0 {
			a := math.Atan2(d.Y, d.X)
			h := math.Atan2(heading.Y, heading.X)
			total += w.Heading * math.Abs(angleDiff(a, h))
		}
	}
	return total
}

// angleDiff returns a-b wrapped into (-pi, pi].
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
