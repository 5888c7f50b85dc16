package component

// CollisionLayer declares a collision category and mask for an agent body.
type CollisionLayer struct {
	// Category is a bitmask of this entity's collision category. Zero means
	// the agent category.
	Category uint32
	// Mask is a bitmask of categories to collide with. Zero means all.
	Mask uint32
}

var CollisionLayerComponent = NewComponent[CollisionLayer]()
