package sequence

import "fmt"

// Trigger is an interrupt category. Rule sets define their own values above NoTrigger.
type Trigger int

// NoTrigger marks a phase without an interrupt window.
const NoTrigger Trigger = 0

// Interrupters names the players allowed to act in a phase's interrupt window.
type Interrupters int

const (
	Nobody Interrupters = iota
	Initiator
	Target
	Others
	All
)

func (i Interrupters) String() string {
	switch i {
	case Nobody:
		return "Nobody"
	case Initiator:
		return "Initiator"
	case Target:
		return "Target"
	case Others:
		return "Others"
	case All:
		return "All"
	default:
		return fmt.Sprintf("Unknown(%d)", int(i))
	}
}

// Allows reports whether player belongs to the set for the given initiator and target.
func (i Interrupters) Allows(player, initiator, target int) bool {
	switch i {
	case Initiator:
		return player == initiator
	case Target:
		return player == target
	case Others:
		return player != initiator
	case All:
		return true
	default:
		return false
	}
}

// Phase indexes a Table. Phase 0 is always "not started".
type Phase int

// NotStarted is the phase of a freshly constructed sequence.
const NotStarted Phase = 0

// PhaseSpec describes one entry of a phase enumeration.
type PhaseSpec struct {
	Name         string
	Trigger      Trigger
	Interrupters Interrupters
}

// HasWindow reports whether the phase exposes an interrupt window.
func (p PhaseSpec) HasWindow() bool {
	return p.Trigger != NoTrigger && p.Interrupters != Nobody
}

// Table is a closed, ordered phase enumeration. The first entry is the
// not-started phase and the last entry is terminal. Transitions must move
// forward, except for one optional loop-back edge.
type Table struct {
	phases   []PhaseSpec
	loopFrom Phase
	loopTo   Phase
	hasLoop  bool
}

// NewTable builds a table. It panics on fewer than two phases since tables
// are package-level declarations.
func NewTable(phases ...PhaseSpec) *Table {
	if len(phases) < 2 {
		panic("sequence: a phase table needs a not-started and a terminal phase")
	}
	return &Table{phases: append([]PhaseSpec(nil), phases...)}
}

// WithLoopBack allows the single backwards edge from -> to.
func (t *Table) WithLoopBack(from, to Phase) *Table {
	if from <= to || !t.valid(from) || !t.valid(to) {
		panic(fmt.Sprintf("sequence: invalid loop-back %d -> %d", from, to))
	}
	t.loopFrom, t.loopTo, t.hasLoop = from, to, true
	return t
}

func (t *Table) valid(p Phase) bool { return p >= 0 && int(p) < len(t.phases) }

func (t *Table) Len() int { return len(t.phases) }

// Terminal returns the last phase.
func (t *Table) Terminal() Phase { return Phase(len(t.phases) - 1) }

func (t *Table) IsTerminal(p Phase) bool { return p == t.Terminal() }

// Spec returns the description of p. Out-of-range phases yield an empty spec.
func (t *Table) Spec(p Phase) PhaseSpec {
	if !t.valid(p) {
		return PhaseSpec{}
	}
	return t.phases[p]
}

func (t *Table) Name(p Phase) string {
	if !t.valid(p) {
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
	return t.phases[p].Name
}

// CanTransition reports whether from -> to respects the declared ordering.
func (t *Table) CanTransition(from, to Phase) bool {
	if !t.valid(from) || !t.valid(to) || t.IsTerminal(from) {
		return false
	}
	if to > from {
		return true
	}
	return t.hasLoop && from == t.loopFrom && to == t.loopTo
}
