package ecs

// smallest picks the store with the fewest entries to drive an
// intersection.
func smallest(stores ...componentStore) componentStore {
	best := stores[0]
	for _, s := range stores[1:] {
		if s.size() < best.size() {
			best = s
		}
	}
	return best
}

// snapshot copies the ids of s so callbacks may mutate the store.
func snapshot(s componentStore) []entityID {
	ids := s.ids()
	out := make([]entityID, len(ids))
	copy(out, ids)
	return out
}
