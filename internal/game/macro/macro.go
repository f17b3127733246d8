// Package macro implements hash-gated replay of pre-planned action chains.
package macro

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
)

var (
	// ErrStaleStep is returned when the live state no longer matches the plan.
	ErrStaleStep = fmt.Errorf("%w: macro step planned for a different state", core.ErrRefused)

	// ErrComplete is returned when every step has already been consumed.
	ErrComplete = fmt.Errorf("%w: macro already complete", core.ErrRefused)

	ErrEmptyPlan = errors.New("macro plan has no steps")
)

// Action is an ordered list of steps, each bound to the state hash its
// planner observed immediately before applying it. A step runs only against
// that exact state; otherwise the whole plan is stale.
type Action struct {
	steps  []core.Action
	hashes []core.StateHash
	next   int
}

// New builds a macro from steps and their expected hashes.
func New(steps []core.Action, hashes []core.StateHash) (*Action, error) {
	if len(steps) == 0 {
		return nil, ErrEmptyPlan
	}
	if len(steps) != len(hashes) {
		return nil, fmt.Errorf("macro with %d steps and %d hashes", len(steps), len(hashes))
	}
	for i, st := range steps {
		if st.Kind() == core.KindMacro {
			return nil, fmt.Errorf("macro step %d is itself a macro", i)
		}
	}
	return &Action{
		steps:  core.CopyActions(steps),
		hashes: append([]core.StateHash(nil), hashes...),
	}, nil
}

func (m *Action) Kind() core.Kind { return core.KindMacro }

// Len is the number of planned steps.
func (m *Action) Len() int { return len(m.steps) }

// Next is the index of the next unconsumed step.
func (m *Action) Next() int { return m.next }

func (m *Action) Complete() bool { return m.next == len(m.steps) }

// Expected returns the hash the next step requires, or false when complete.
func (m *Action) Expected() (core.StateHash, bool) {
	if m.Complete() {
		return 0, false
	}
	return m.hashes[m.next], true
}

// Peek validates the live state against the next step and returns a copy of
// that step without consuming it.
func (m *Action) Peek(s *core.State) (core.Action, error) {
	if m.Complete() {
		return nil, ErrComplete
	}
	if got := s.Hash(); got != m.hashes[m.next] {
		return nil, fmt.Errorf("step %d expects %016x, state is %016x: %w", m.next, uint64(m.hashes[m.next]), uint64(got), ErrStaleStep)
	}
	return m.steps[m.next].Copy(), nil
}

// Consume advances past the step returned by Peek. Callers use Peek and
// Consume when they need to route the step through their own apply path.
func (m *Action) Consume() error {
	if m.Complete() {
		return core.Invariantf("consume macro step", "all %d steps already consumed", len(m.steps))
	}
	m.next++
	return nil
}

// Execute applies the next step if the live state still matches the plan.
// On a mismatch the state and the cursor are left untouched.
//
// Only atomic steps can run here. A sequence step has to be pushed onto the
// stack when it suspends, so macros holding one must be applied through the
// action processor's Peek and Consume path.
func (m *Action) Execute(s *core.State) error {
	step, err := m.Peek(s)
	if err != nil {
		return err
	}
	if step.Kind() != core.KindAtomic {
		return core.Invariantf("execute macro", "step %d (%s) is a %s action", m.next, step, step.Kind())
	}
	if err := step.Execute(s); err != nil {
		return fmt.Errorf("macro step %d (%s): %w", m.next, step, err)
	}
	m.next++
	return nil
}

func (m *Action) Copy() core.Action {
	return &Action{
		steps:  core.CopyActions(m.steps),
		hashes: append([]core.StateHash(nil), m.hashes...),
		next:   m.next,
	}
}

func (m *Action) Equal(other core.Action) bool {
	o, ok := other.(*Action)
	if !ok || o.next != m.next || len(o.steps) != len(m.steps) {
		return false
	}
	for i := range m.steps {
		if m.hashes[i] != o.hashes[i] || !m.steps[i].Equal(o.steps[i]) {
			return false
		}
	}
	return true
}

func (m *Action) Hash() uint64 {
	h := core.NewHasher().String("macro").Int(m.next).Int(len(m.steps))
	for i, st := range m.steps {
		h.Uint64(uint64(m.hashes[i])).Uint64(st.Hash())
	}
	return h.Sum()
}

func (m *Action) String() string {
	parts := make([]string, len(m.steps))
	for i, st := range m.steps {
		parts[i] = st.String()
	}
	return fmt.Sprintf("Macro[%s]", strings.Join(parts, ", "))
}

// Describe labels the remaining steps; only the next one is rendered against s.
func (m *Action) Describe(s *core.State) string {
	if m.Complete() {
		return fmt.Sprintf("Macro (%d steps, done)", len(m.steps))
	}
	return fmt.Sprintf("Macro step %d/%d: %s", m.next+1, len(m.steps), m.steps[m.next].Describe(s))
}
