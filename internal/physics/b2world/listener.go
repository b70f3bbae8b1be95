package b2world

import (
	"github.com/ByteArena/box2d"

	"github.com/woodcut/treehouse/internal/physics"
)

type fixturePair struct {
	a, b *box2d.B2Fixture
}

// listener collects contact callbacks while box2d is stepping. The world is
// locked during callbacks, so it only queues notifications.
type listener struct {
	pending  map[fixturePair]bool // begun, not yet solved
	reported map[fixturePair]bool
	queue    []any
}

func (l *listener) pair(c box2d.B2ContactInterface) (fixturePair, *fixtureData, *fixtureData, bool) {
	fa, fb := c.GetFixtureA(), c.GetFixtureB()
	if fa == nil || fb == nil {
		return fixturePair{}, nil, nil, false
	}
	da, okA := fa.GetUserData().(*fixtureData)
	db, okB := fb.GetUserData().(*fixtureData)
	if !okA || !okB || da.trigger || db.trigger {
		return fixturePair{}, nil, nil, false
	}
	if !physics.NotifyContact(da.filter, db.filter) {
		return fixturePair{}, nil, nil, false
	}
	return fixturePair{fa, fb}, da, db, true
}

func (l *listener) BeginContact(c box2d.B2ContactInterface) {
	p, _, _, ok := l.pair(c)
	if !ok {
		return
	}
	if l.pending == nil {
		l.pending = make(map[fixturePair]bool)
	}
	l.pending[p] = true
}

func (l *listener) EndContact(c box2d.B2ContactInterface) {
	p, da, db, ok := l.pair(c)
	if !ok {
		return
	}
	delete(l.pending, p)
	if !l.reported[p] {
		return
	}
	delete(l.reported, p)
	l.queue = append(l.queue, physics.ContactPair{
		A:      da.body.desc.Name,
		B:      db.body.desc.Name,
		Status: physics.TouchLost,
	})
}

func (l *listener) PreSolve(box2d.B2ContactInterface, box2d.B2Manifold) {}

// PostSolve reports a pair the first time the solver pushes it apart, with
// the largest normal impulse of that step.
func (l *listener) PostSolve(c box2d.B2ContactInterface, impulse *box2d.B2ContactImpulse) {
	p, da, db, ok := l.pair(c)
	if !ok || !l.pending[p] {
		return
	}
	delete(l.pending, p)
	if l.reported == nil {
		l.reported = make(map[fixturePair]bool)
	}
	l.reported[p] = true
	peak := 0.0
	for i := 0; i < impulse.Count; i++ {
		if impulse.NormalImpulses[i] > peak {
			peak = impulse.NormalImpulses[i]
		}
	}
	l.queue = append(l.queue, physics.ContactPair{
		A:          da.body.desc.Name,
		B:          db.body.desc.Name,
		Status:     physics.TouchFound,
		MaxImpulse: peak,
	})
}

func (l *listener) push(n any) {
	l.queue = append(l.queue, n)
}

func (l *listener) drain() []any {
	q := l.queue
	l.queue = nil
	return q
}

var _ box2d.B2ContactListenerInterface = (*listener)(nil)
