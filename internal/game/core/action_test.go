package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tick increments the "n" property of a component.
type tick struct {
	ID    ComponentID
	label string
}

func (a *tick) Kind() Kind { return KindAtomic }

func (a *tick) Execute(s *State) error {
	c, err := s.Registry().Lookup(a.ID)
	if err != nil {
		return err
	}
	c.AddInt("n", 1)
	return nil
}

func (a *tick) Copy() Action {
	c := *a
	return &c
}

func (a *tick) Equal(other Action) bool {
	o, ok := other.(*tick)
	return ok && o.ID == a.ID
}

func (a *tick) Hash() uint64   { return NewHasher().String("tick").Int(int(a.ID)).Sum() }
func (a *tick) String() string { return fmt.Sprintf("tick(%d)", a.ID) }

func (a *tick) Describe(s *State) string {
	if a.label == "" {
		if c, ok := s.Registry().Get(a.ID); ok {
			a.label = "tick " + c.Name()
		}
	}
	return a.label
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "Atomic", KindAtomic.String())
	assert.Equal(t, "Sequence", KindSequence.String())
	assert.Equal(t, "Macro", KindMacro.String())
	assert.Equal(t, "Unknown(9)", Kind(9).String())
}

func TestContainsAction(t *testing.T) {
	list := []Action{&tick{ID: 1}, &tick{ID: 2}}

	assert.True(t, ContainsAction(list, &tick{ID: 2}))
	assert.True(t, ContainsAction(list, &tick{ID: 1, label: "cached"}), "cached labels do not affect equality")
	assert.False(t, ContainsAction(list, &tick{ID: 3}))
	assert.False(t, ContainsAction(nil, &tick{ID: 1}))
}

func TestKeyOf_AgreesWithEqual(t *testing.T) {
	a, b := &tick{ID: 5}, &tick{ID: 5, label: "x"}
	require.True(t, a.Equal(b))
	assert.Equal(t, KeyOf(a), KeyOf(b))
	assert.NotEqual(t, KeyOf(a), KeyOf(&tick{ID: 6}))

	seen := map[ActionKey]Action{KeyOf(a): a}
	_, ok := seen[KeyOf(b)]
	assert.True(t, ok)
}

func TestCopyActions_Independent(t *testing.T) {
	s, err := NewState(1, 1)
	require.NoError(t, err)
	c := s.Registry().Create("counter", "c", NoOwner)

	orig := []Action{&tick{ID: c.ID()}}
	copies := CopyActions(orig)
	require.Len(t, copies, 1)
	assert.True(t, copies[0].Equal(orig[0]))

	assert.Equal(t, "tick c", copies[0].Describe(s))
	assert.Empty(t, orig[0].(*tick).label, "describing the copy leaves the original alone")
}
