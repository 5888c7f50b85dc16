package component

// Contact counts what an agent body touched during the last physics step.
type Contact struct {
	Walls  int
	Agents int
	// Stuck counts consecutive steps spent pressed against a wall.
	Stuck int
}

var ContactComponent = NewComponent[Contact]()
