package ecs

// World owns the actor pool, the attached component stores and a deferred
// destruction queue flushed by the cleanup system at tick end.
type World struct {
	pool         *ActorPool
	stores       []Removable
	destroyQueue []ActorID
}

func NewWorld() *World {
	return &World{
		pool:         NewActorPool(),
		destroyQueue: make([]ActorID, 0, 32),
	}
}

func (w *World) Pool() *ActorPool { return w.pool }

// Attach registers component stores whose entries are dropped when an actor
// is destroyed.
func (w *World) Attach(stores ...Removable) {
	w.stores = append(w.stores, stores...)
}

func (w *World) CreateActor() ActorID {
	return w.pool.Create()
}

func (w *World) Alive(id ActorID) bool {
	return w.pool.Alive(id)
}

// MarkForDestruction queues an actor for end-of-tick cleanup. Queuing the same
// actor twice is harmless.
func (w *World) MarkForDestruction(id ActorID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue destroys queued actors and drops their components.
// It returns how many actors were actually destroyed.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for _, id := range w.destroyQueue {
		if !w.pool.Destroy(id) {
			continue
		}
		for _, s := range w.stores {
			s.Remove(id)
		}
		n++
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}
