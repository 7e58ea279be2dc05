package ecs

// store is the type-erased view of a component sparse set used by the world
// for lifecycle bookkeeping.
type store interface {
	has(id entityID) bool
	remove(id entityID) bool
	entities() []Entity
	len() int
}

// sparseSet stores *T components densely, indexed by entity slot id.
type sparseSet[T any] struct {
	dense  []Entity
	values []*T
	sparse []int
}

func newSparseSet[T any]() *sparseSet[T] {
	return &sparseSet[T]{}
}

func (s *sparseSet[T]) index(id entityID) (int, bool) {
	if int(id) >= len(s.sparse) {
		return 0, false
	}
	idx := s.sparse[id]
	if idx < 0 || idx >= len(s.dense) || s.dense[idx].id() != id {
		return 0, false
	}
	return idx, true
}

func (s *sparseSet[T]) has(id entityID) bool {
	_, ok := s.index(id)
	return ok
}

func (s *sparseSet[T]) get(e Entity) (*T, bool) {
	idx, ok := s.index(e.id())
	if !ok || s.dense[idx] != e {
		return nil, false
	}
	return s.values[idx], true
}

func (s *sparseSet[T]) set(e Entity, v *T) {
	id := e.id()
	for int(id) >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if idx, ok := s.index(id); ok {
		s.dense[idx] = e
		s.values[idx] = v
		return
	}
	s.dense = append(s.dense, e)
	s.values = append(s.values, v)
	s.sparse[id] = len(s.dense) - 1
}

func (s *sparseSet[T]) remove(id entityID) bool {
	idx, ok := s.index(id)
	if !ok {
		return false
	}
	last := len(s.dense) - 1
	moved := s.dense[last]
	s.dense[idx] = moved
	s.values[idx] = s.values[last]
	s.sparse[moved.id()] = idx

	s.dense[last] = 0
	s.values[last] = nil
	s.dense = s.dense[:last]
	s.values = s.values[:last]
	s.sparse[id] = -1
	return true
}

func (s *sparseSet[T]) entities() []Entity {
	return s.dense
}

func (s *sparseSet[T]) len() int {
	return len(s.dense)
}
