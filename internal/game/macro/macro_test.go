package macro

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bump adds delta to an integer counter on a component.
type bump struct {
	id    core.ComponentID
	delta int
}

func (b *bump) Kind() core.Kind { return core.KindAtomic }

func (b *bump) Execute(s *core.State) error {
	c, err := s.Registry().Lookup(b.id)
	if err != nil {
		return err
	}
	c.AddInt("count", b.delta)
	return nil
}

func (b *bump) Copy() core.Action {
	c := *b
	return &c
}

func (b *bump) Equal(o core.Action) bool {
	x, ok := o.(*bump)
	return ok && *x == *b
}

func (b *bump) Hash() uint64                  { return core.NewHasher().Int(int(b.id)).Int(b.delta).Sum() }
func (b *bump) String() string                { return fmt.Sprintf("bump(%d,%+d)", b.id, b.delta) }
func (b *bump) Describe(s *core.State) string { return b.String() }

// longBump is a bump declared as an extended sequence.
type longBump struct{ bump }

func (b *longBump) Kind() core.Kind { return core.KindSequence }

func (b *longBump) Copy() core.Action {
	c := *b
	return &c
}

func (b *longBump) Equal(o core.Action) bool {
	x, ok := o.(*longBump)
	return ok && *x == *b
}

func setup(t *testing.T) (*core.State, core.ComponentID) {
	t.Helper()
	s, err := core.NewState(2, 42)
	require.NoError(t, err)
	c := s.Registry().Create("counter", "c", core.NoOwner)
	c.SetInt("count", 0)
	return s, c.ID()
}

func threeSteps(id core.ComponentID) []core.Action {
	return []core.Action{&bump{id, 1}, &bump{id, 2}, &bump{id, 3}}
}

func count(s *core.State, id core.ComponentID) int {
	c, _ := s.Registry().Get(id)
	return c.Int("count")
}

func TestPlan_DoesNotTouchInput(t *testing.T) {
	s, id := setup(t)
	before := s.Hash()

	m, err := Plan(s, threeSteps(id), nil)
	require.NoError(t, err)

	assert.Equal(t, before, s.Hash())
	assert.Equal(t, 3, m.Len())
	exp, ok := m.Expected()
	require.True(t, ok)
	assert.Equal(t, before, exp)
}

func TestExecute_ReplaysMatchingPlan(t *testing.T) {
	s, id := setup(t)
	m, err := Plan(s, threeSteps(id), nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.False(t, m.Complete())
		require.NoError(t, m.Execute(s))
		assert.Equal(t, i+1, m.Next())
	}

	assert.True(t, m.Complete())
	assert.Equal(t, 6, count(s, id))
	_, ok := m.Expected()
	assert.False(t, ok)
	assert.ErrorIs(t, m.Execute(s), ErrComplete)
}

func TestExecute_InterruptBetweenStepsIsRefused(t *testing.T) {
	s, id := setup(t)
	m, err := Plan(s, threeSteps(id), nil)
	require.NoError(t, err)

	require.NoError(t, m.Execute(s))

	// Something else changed the world after planning.
	c, _ := s.Registry().Get(id)
	c.SetBool("stunned", true)
	mutated := s.Hash()

	err = m.Execute(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStaleStep)
	assert.True(t, core.IsRefused(err))
	assert.False(t, core.IsFatal(err))
	assert.Equal(t, 1, m.Next(), "cursor stays on step 2")
	assert.Equal(t, mutated, s.Hash(), "state is unchanged")
	assert.Equal(t, 1, count(s, id))
}

func TestExecute_CorruptedIntermediateState(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(s *core.State, id core.ComponentID)
	}{
		{"property edited", func(s *core.State, id core.ComponentID) {
			c, _ := s.Registry().Get(id)
			c.SetInt("count", 99)
		}},
		{"component added", func(s *core.State, id core.ComponentID) {
			s.Registry().Create("token", "t", 0)
		}},
		{"random source advanced", func(s *core.State, id core.ComponentID) {
			s.Rand().Roll(6)
		}},
		{"turn ended", func(s *core.State, id core.ComponentID) {
			s.EndPlayerTurn()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, id := setup(t)
			m, err := Plan(s, threeSteps(id), nil)
			require.NoError(t, err)

			tt.corrupt(s, id)
			before := s.Hash()

			assert.ErrorIs(t, m.Execute(s), ErrStaleStep)
			assert.Equal(t, 0, m.Next())
			assert.Equal(t, before, s.Hash())
		})
	}
}

func TestExecute_SequenceStepNeedsTheProcessor(t *testing.T) {
	s, id := setup(t)
	m, err := New([]core.Action{&longBump{bump{id, 1}}}, []core.StateHash{s.Hash()})
	require.NoError(t, err)

	err = m.Execute(s)
	assert.True(t, core.IsFatal(err))
	assert.Equal(t, 0, count(s, id))
	assert.Equal(t, 0, m.Next())

	step, err := m.Peek(s)
	require.NoError(t, err)
	assert.Equal(t, core.KindSequence, step.Kind())
}

func TestPeekConsume(t *testing.T) {
	s, id := setup(t)
	m, err := Plan(s, threeSteps(id), nil)
	require.NoError(t, err)

	step, err := m.Peek(s)
	require.NoError(t, err)
	assert.True(t, step.Equal(&bump{id, 1}))
	assert.Equal(t, 0, m.Next(), "peek does not consume")

	require.NoError(t, step.Execute(s))
	require.NoError(t, m.Consume())
	require.NoError(t, m.Execute(s))
	require.NoError(t, m.Execute(s))

	assert.True(t, core.IsFatal(m.Consume()))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyPlan)

	_, err = New([]core.Action{&bump{}}, nil)
	assert.Error(t, err)

	inner, err := New([]core.Action{&bump{}}, []core.StateHash{1})
	require.NoError(t, err)
	_, err = New([]core.Action{inner}, []core.StateHash{1})
	assert.Error(t, err)
}

func TestPlan_StepFailure(t *testing.T) {
	s, _ := setup(t)
	_, err := Plan(s, []core.Action{&bump{id: 404, delta: 1}}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnknownComponent))
}

func TestAction_CopyEqualHash(t *testing.T) {
	s, id := setup(t)
	m, err := Plan(s, threeSteps(id), nil)
	require.NoError(t, err)

	cp := m.Copy().(*Action)
	assert.True(t, m.Equal(cp))
	assert.Equal(t, m.Hash(), cp.Hash())

	require.NoError(t, cp.Execute(s))
	assert.Equal(t, 0, m.Next(), "copies have independent cursors")
	assert.False(t, m.Equal(cp))
	assert.NotEqual(t, m.Hash(), cp.Hash())
}

func TestAction_CopyThenExecuteMatchesExecuteOnCopy(t *testing.T) {
	s, id := setup(t)
	m, err := Plan(s, threeSteps(id), nil)
	require.NoError(t, err)

	s1 := s.Copy()
	require.NoError(t, m.Copy().Execute(s1))

	s2 := s.Copy()
	require.NoError(t, m.Execute(s2))

	assert.Equal(t, s1.Hash(), s2.Hash())
}

func TestAction_Labels(t *testing.T) {
	s, id := setup(t)
	m, err := Plan(s, threeSteps(id), nil)
	require.NoError(t, err)

	assert.Equal(t, "Macro[bump(0,+1), bump(0,+2), bump(0,+3)]", m.String())
	assert.Equal(t, "Macro step 1/3: bump(0,+1)", m.Describe(s))
	assert.Equal(t, core.KindMacro, m.Kind())
}
