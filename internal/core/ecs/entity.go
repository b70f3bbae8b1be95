package ecs

// ActorID packs a 32-bit slot index in the low bits and a 32-bit generation in
// the high bits. Destroying an actor bumps the slot generation, so an ID held
// after removal never resolves to the slot's next occupant.
type ActorID uint64

func NewActorID(index uint32, generation uint32) ActorID {
	return ActorID(uint64(generation)<<32 | uint64(index))
}

func (id ActorID) Index() uint32      { return uint32(id) }
func (id ActorID) Generation() uint32 { return uint32(id >> 32) }

// ActorPool hands out actor IDs and recycles destroyed slots.
type ActorPool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
	live        int
}

func NewActorPool() *ActorPool {
	return &ActorPool{
		generations: make([]uint32, 0, 256),
		freeList:    make([]uint32, 0, 64),
	}
}

func (p *ActorPool) Create() ActorID {
	p.live++
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return NewActorID(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	p.generations = append(p.generations, 1)
	return NewActorID(idx, p.generations[idx])
}

// Alive reports whether id still names a live actor. The zero ID is never
// alive since generations start at 1.
func (p *ActorPool) Alive(id ActorID) bool {
	idx := id.Index()
	if idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == id.Generation()
}

func (p *ActorPool) Destroy(id ActorID) bool {
	if !p.Alive(id) {
		return false
	}
	idx := id.Index()
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
	p.live--
	return true
}

// Live returns the number of actors currently alive.
func (p *ActorPool) Live() int { return p.live }
