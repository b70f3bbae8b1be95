package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorPoolRecyclesSlotsWithNewGeneration(t *testing.T) {
	p := NewActorPool()
	a := p.Create()
	require.True(t, p.Alive(a))
	require.True(t, p.Destroy(a))
	assert.False(t, p.Alive(a))

	b := p.Create()
	assert.Equal(t, a.Index(), b.Index())
	assert.NotEqual(t, a.Generation(), b.Generation())
	assert.False(t, p.Alive(a), "stale id must not alias the new occupant")
	assert.Equal(t, 1, p.Live())
}

func TestActorPoolDestroyTwiceIsNoop(t *testing.T) {
	p := NewActorPool()
	a := p.Create()
	assert.True(t, p.Destroy(a))
	assert.False(t, p.Destroy(a))
	assert.Equal(t, 0, p.Live())
	assert.False(t, p.Alive(ActorID(0)))
}

func TestWorldFlushRemovesComponents(t *testing.T) {
	w := NewWorld()
	names := NewStore[string]()
	w.Attach(names)

	id := w.CreateActor()
	n := "log"
	names.Set(id, &n)

	w.MarkForDestruction(id)
	w.MarkForDestruction(id)
	assert.True(t, names.Has(id), "destruction is deferred")

	assert.Equal(t, 1, w.FlushDestroyQueue())
	assert.False(t, names.Has(id))
	assert.False(t, w.Alive(id))
	assert.Equal(t, 0, w.FlushDestroyQueue())
}
