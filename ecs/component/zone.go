package component

import "github.com/milk9111/crowdnav/nav"

// Zone is territory a team claims from the start of the level.
type Zone struct {
	Owner    string
	Min, Max nav.Vec2
}

var ZoneComponent = NewComponent[Zone]()
