package component

// Transform is a world-space position. Rotation is in radians and follows
// the direction of travel for agents.
type Transform struct {
	X        float64
	Y        float64
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()
