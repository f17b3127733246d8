package sequence

import (
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
)

// Steps is implemented by concrete extended sequences. The driver functions in
// this package use it to run the shared interrupt-polling loop; the sequence
// only supplies its phase table, its cursor and the per-phase rule effects.
type Steps interface {
	Table() *Table
	Cursor() *Cursor
	// ExecutePhase applies the deterministic effect of the current phase and
	// returns the phase to move to. An error must leave the state untouched.
	ExecutePhase(s *core.State) (Phase, error)
	// InterruptActions lists the raw choices player has for trigger, before
	// one-shot filtering.
	InterruptActions(s *core.State, player int, trigger Trigger) []core.Action
}

// WindowGate is optionally implemented by sequences whose interrupt windows
// can be closed by the sequence's own state, e.g. a surge window with no surges.
type WindowGate interface {
	WindowOpen(s *core.State, p Phase) bool
}

// Start initialises the cursor and runs the sequence until the first
// interrupt window or the terminal phase.
func Start(s *core.State, seq Steps, initiator, target int) error {
	c := seq.Cursor()
	if c.Started() {
		return core.Invariantf("start sequence", "already started at %s", seq.Table().Name(c.phase))
	}
	if initiator < 0 || initiator >= s.Players() {
		return core.Refusedf("initiator %d out of range", initiator)
	}
	t := seq.Table()
	*c = Cursor{phase: 1, initiator: initiator, target: target, interrupter: initiator}
	if t.IsTerminal(c.phase) {
		return nil
	}
	return Advance(s, seq)
}

// Advance moves the sequence forward until some player is eligible to
// interrupt, or the terminal phase is reached.
//
// The polled player moves round the table from the initiator. When the scan
// wraps back to the initiator, or the phase has no window at all, the phase
// effect runs and the next phase is polled starting with the initiator again.
// Each phase therefore takes at most one full rotation.
func Advance(s *core.State, seq Steps) error {
	t, c := seq.Table(), seq.Cursor()
	if !c.Started() {
		return core.Invariantf("advance", "sequence has not been started")
	}
	if t.IsTerminal(c.phase) {
		return core.Invariantf("advance", "sequence is already in terminal phase %s", t.Name(c.phase))
	}
	n := s.Players()
	for !t.IsTerminal(c.phase) {
		if eligible(s, seq) {
			return nil
		}
		prev, declined := c.interrupter, c.declined
		c.declined = false
		c.interrupter = (c.interrupter + 1) % n
		if t.Spec(c.phase).HasWindow() && c.interrupter != c.initiator {
			continue
		}
		next, err := seq.ExecutePhase(s)
		if err != nil {
			c.interrupter, c.declined = prev, declined
			return err
		}
		if !t.CanTransition(c.phase, next) {
			return core.Invariantf("advance", "illegal transition %s -> %s", t.Name(c.phase), t.Name(next))
		}
		c.phase = next
		c.interrupter = c.initiator
	}
	return nil
}

// Available returns the polled player's filtered choices: the raw interrupt
// actions minus consumed one-shots, followed by an EndPhase action when at
// least one real choice remains.
func Available(s *core.State, seq Steps) ([]core.Action, error) {
	t, c := seq.Table(), seq.Cursor()
	spec := t.Spec(c.phase)
	if t.IsTerminal(c.phase) || !spec.HasWindow() {
		return nil, core.Invariantf("available actions", "phase %s has no interrupt window", t.Name(c.phase))
	}
	out := filtered(s, seq, c.interrupter, spec.Trigger)
	if len(out) == 0 {
		return nil, nil
	}
	return append(out, &EndPhase{Phase: c.phase, Player: c.interrupter}), nil
}

// Done reports whether the sequence has reached its terminal phase.
func Done(seq Steps) bool {
	return seq.Table().IsTerminal(seq.Cursor().phase)
}

func eligible(s *core.State, seq Steps) bool {
	t, c := seq.Table(), seq.Cursor()
	spec := t.Spec(c.phase)
	if !spec.HasWindow() || c.declined {
		return false
	}
	if !spec.Interrupters.Allows(c.interrupter, c.initiator, c.target) {
		return false
	}
	if gate, ok := seq.(WindowGate); ok && !gate.WindowOpen(s, c.phase) {
		return false
	}
	return len(filtered(s, seq, c.interrupter, spec.Trigger)) > 0
}

func filtered(s *core.State, seq Steps, player int, trigger Trigger) []core.Action {
	c := seq.Cursor()
	raw := seq.InterruptActions(s, player, trigger)
	out := make([]core.Action, 0, len(raw))
	for _, a := range raw {
		if o, ok := a.(OneShotAction); ok && c.Used(o.OneShot()) {
			continue
		}
		out = append(out, a)
	}
	return out
}
