package core

import "fmt"

// Kind is the variant tag of an Action. The Forward Model dispatches on it.
type Kind int

const (
	KindAtomic Kind = iota
	KindSequence
	KindMacro
)

func (k Kind) String() string {
	switch k {
	case KindAtomic:
		return "Atomic"
	case KindSequence:
		return "Sequence"
	case KindMacro:
		return "Macro"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Action describes one legal move.
//
// Two actions are Equal iff they would have identical effects on identical
// states, and Hash must agree with Equal: search code uses actions as map keys
// (see ActionKey). Copy returns an independent value, including any execution
// cursor. Describe renders a label against the current state; implementations
// may cache position-relative details the first time they are rendered, but
// such caches never take part in Equal or Hash. String is a state-free label.
type Action interface {
	fmt.Stringer
	Kind() Kind
	Execute(s *State) error
	Copy() Action
	Equal(other Action) bool
	Hash() uint64
	Describe(s *State) string
}

// Conditional is implemented by actions with a precondition. A false result
// makes the Forward Model refuse the action without touching the state.
type Conditional interface {
	CanExecute(s *State) bool
}

// ExtendedAction is an action that needs decisions from several players
// before it completes. While one is on the state's stack it, not turn order,
// decides who acts next and what they may choose.
type ExtendedAction interface {
	Action
	// DecisionMaker returns the player expected to act now.
	DecisionMaker(s *State) int
	// AvailableActions returns the decision maker's current choices.
	AvailableActions(s *State) ([]Action, error)
	// AfterAction resumes the sequence once a choice has been applied.
	AfterAction(s *State, applied Action) error
	// Complete reports whether the sequence has reached its terminal phase.
	Complete() bool
}

// ActionKey is a comparable key for an action, suitable for map lookups
// together with Equal to resolve hash collisions.
type ActionKey uint64

func KeyOf(a Action) ActionKey { return ActionKey(a.Hash()) }

// ContainsAction reports whether list holds an action equal to a.
func ContainsAction(list []Action, a Action) bool {
	for _, b := range list {
		if b.Equal(a) {
			return true
		}
	}
	return false
}

// CopyActions returns independent copies of every action in list.
func CopyActions(list []Action) []Action {
	out := make([]Action, len(list))
	for i, a := range list {
		out[i] = a.Copy()
	}
	return out
}
