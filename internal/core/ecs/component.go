package ecs

// Removable is implemented by every component store so the World can drop
// a destroyed actor's data from all of them at once.
type Removable interface {
	Remove(id ActorID)
}

// Store is a typed component map keyed by actor.
type Store[T any] struct {
	data map[ActorID]*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{data: make(map[ActorID]*T, 64)}
}

func (s *Store[T]) Set(id ActorID, c *T) {
	s.data[id] = c
}

func (s *Store[T]) Get(id ActorID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Remove(id ActorID) {
	delete(s.data, id)
}

func (s *Store[T]) Has(id ActorID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.data)
}
