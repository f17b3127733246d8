package testutil

import (
	"fmt"
	"testing"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
)

// NewTestState creates a state or fails the test.
func NewTestState(t *testing.T, players int, seed uint64) *core.State {
	t.Helper()
	s, err := core.NewState(players, seed)
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	return s
}

// AddCounter creates an unowned component with a zeroed "count" property.
func AddCounter(s *core.State, name string) core.ComponentID {
	c := s.Registry().Create("counter", name, core.NoOwner)
	c.SetInt("count", 0)
	return c.ID()
}

// Count reads a counter created by AddCounter, or -1 if it is gone.
func Count(s *core.State, id core.ComponentID) int {
	c, ok := s.Registry().Get(id)
	if !ok {
		return -1
	}
	return c.Int("count")
}

// Bump is an atomic action that adds Delta to a counter. It is refused when
// the counter does not exist.
type Bump struct {
	ID    core.ComponentID
	Delta int
}

func (b *Bump) Kind() core.Kind { return core.KindAtomic }

func (b *Bump) CanExecute(s *core.State) bool { return s.Registry().Contains(b.ID) }

func (b *Bump) Execute(s *core.State) error {
	c, err := s.Registry().Lookup(b.ID)
	if err != nil {
		return err
	}
	c.AddInt("count", b.Delta)
	return nil
}

func (b *Bump) Copy() core.Action {
	c := *b
	return &c
}

func (b *Bump) Equal(other core.Action) bool {
	o, ok := other.(*Bump)
	return ok && *o == *b
}

func (b *Bump) Hash() uint64 {
	return core.NewHasher().String("bump").Int(int(b.ID)).Int(b.Delta).Sum()
}

func (b *Bump) String() string                { return fmt.Sprintf("Bump(%d,%+d)", b.ID, b.Delta) }
func (b *Bump) Describe(s *core.State) string { return b.String() }
