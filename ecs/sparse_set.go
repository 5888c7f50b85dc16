package ecs

// componentStore is the type-erased view the world keeps of each sparse
// set, enough to clean up after a destroyed entity.
type componentStore interface {
	remove(id entityID) bool
	has(id entityID) bool
	size() int
	ids() []entityID
}

// sparseSet stores one component type keyed by entity slot. Values live
// densely so iteration touches contiguous memory.
type sparseSet[T any] struct {
	dense  []entityID
	values []*T
	sparse []int32
}

func newSparseSet[T any]() *sparseSet[T] {
	return &sparseSet[T]{}
}

func (s *sparseSet[T]) has(id entityID) bool {
	if int(id) >= len(s.sparse) {
		return false
	}
	idx := s.sparse[id]
	return idx >= 0 && int(idx) < len(s.dense) && s.dense[idx] == id
}

func (s *sparseSet[T]) get(id entityID) (*T, bool) {
	if !s.has(id) {
		return nil, false
	}
	return s.values[s.sparse[id]], true
}

// set inserts or replaces the value for id.
func (s *sparseSet[T]) set(id entityID, v *T) {
	for int(id) >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if s.has(id) {
		s.values[s.sparse[id]] = v
		return
	}
	s.dense = append(s.dense, id)
	s.values = append(s.values, v)
	s.sparse[id] = int32(len(s.dense) - 1)
}

// remove swaps the last element into the hole.
func (s *sparseSet[T]) remove(id entityID) bool {
	if !s.has(id) {
		return false
	}
	idx := s.sparse[id]
	last := int32(len(s.dense) - 1)
	lastID := s.dense[last]

	s.dense[idx] = lastID
	s.values[idx] = s.values[last]
	s.sparse[lastID] = idx

	s.values[last] = nil
	s.dense = s.dense[:last]
	s.values = s.values[:last]
	s.sparse[id] = -1
	return true
}

func (s *sparseSet[T]) size() int {
	return len(s.dense)
}

func (s *sparseSet[T]) ids() []entityID {
	return s.dense
}
