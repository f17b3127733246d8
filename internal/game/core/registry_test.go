package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateAndRemove(t *testing.T) {
	r := NewRegistry()
	a := r.Create("figure", "a", 0)
	b := r.Create("figure", "b", 1)
	assert.Equal(t, ComponentID(0), a.ID())
	assert.Equal(t, ComponentID(1), b.ID())
	assert.Equal(t, 2, r.Len())

	require.NoError(t, r.Remove(a.ID()))
	assert.False(t, r.Contains(a.ID()))
	assert.ErrorIs(t, r.Remove(a.ID()), ErrUnknownComponent)

	c := r.Create("figure", "c", 0)
	assert.Equal(t, ComponentID(2), c.ID(), "removed IDs are never reused")

	_, err := r.Lookup(a.ID())
	assert.ErrorIs(t, err, ErrUnknownComponent)
	assert.Equal(t, []ComponentID{1, 2}, r.IDs())
}

func TestRegistry_Queries(t *testing.T) {
	r := NewRegistry()
	r.Create("cell", "x", NoOwner)
	f0 := r.Create("figure", "f0", 0)
	r.Create("figure", "f1", 1)
	t0 := r.Create("token", "t0", 0)

	figs := r.ByType("figure")
	require.Len(t, figs, 2)
	assert.Equal(t, "f0", figs[0].Name())

	owned := r.OwnedBy(0, "")
	require.Len(t, owned, 2)
	assert.Equal(t, f0.ID(), owned[0].ID())
	assert.Equal(t, t0.ID(), owned[1].ID())
	assert.Len(t, r.OwnedBy(0, "token"), 1)
	assert.Empty(t, r.OwnedBy(3, ""))
}

func TestRegistry_Properties(t *testing.T) {
	r := NewRegistry()
	c := r.Create("figure", "f", 0)

	require.NoError(t, r.SetProperty(c.ID(), "health", IntValue(4)))
	v, err := r.GetProperty(c.ID(), "health")
	require.NoError(t, err)
	assert.Equal(t, 4, v.Int())

	err = r.SetProperty(c.ID(), "health", BoolValue(true))
	assert.ErrorIs(t, err, ErrPropertyKind)
	assert.Equal(t, 4, c.Int("health"), "a rejected write leaves the value alone")

	_, err = r.GetProperty(c.ID(), "missing")
	assert.Error(t, err)
	assert.ErrorIs(t, r.SetProperty(99, "x", IntValue(1)), ErrUnknownComponent)
}

func TestRegistry_CopyIsDeep(t *testing.T) {
	r := NewRegistry()
	c := r.Create("figure", "f", 0)
	c.SetInt("health", 3)

	cp := r.Copy()
	cc, ok := cp.Get(c.ID())
	require.True(t, ok)
	cc.SetInt("health", 1)
	cc.SetName("renamed")

	assert.Equal(t, 3, c.Int("health"))
	assert.Equal(t, "f", c.Name())

	a, b := r.Create("token", "t", 0), cp.Create("token", "t", 0)
	assert.Equal(t, a.ID(), b.ID(), "forks allocate the same IDs")
}

func TestComponent_Accessors(t *testing.T) {
	c := NewRegistry().Create("figure", "f", 0)

	assert.Equal(t, 0, c.Int("missing"))
	assert.False(t, c.Bool("missing"))
	assert.Equal(t, "", c.Str("missing"))

	c.SetInt("hp", 2)
	assert.Equal(t, 5, c.AddInt("hp", 3))
	c.SetBool("ready", true)
	c.SetStr("tag", "x")
	assert.True(t, c.HasProperty("ready"))
	assert.Equal(t, []string{"hp", "ready", "tag"}, c.Keys())

	c.DeleteProperty("tag")
	assert.False(t, c.HasProperty("tag"))
	assert.Equal(t, "figure#0(f)", c.String())
}
