package nav

// Simplify collapses a cell path into the cells where the direction of
// travel changes, plus the final cell. path[0] is where the walker stands
// and is never emitted. Running Simplify on its own output (prefixed with
// the same start) returns that output unchanged.
func Simplify(path []Point) []Point {
	if len(path) < 2 {
		return nil
	}
	out := make([]Point, 0, 8)
	prevDir := direction(path[0], path[1])
	for i := 2; i < len(path); i++ {
		dir := direction(path[i-1], path[i])
		if dir != prevDir {
			out = append(out, path[i-1])
			prevDir = dir
		}
	}
	return append(out, path[len(path)-1])
}

func direction(a, b Point) Point {
	return Point{X: sign(b.X - a.X), Y: sign(b.Y - a.Y)}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
