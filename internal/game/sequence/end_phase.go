package sequence

import (
	"fmt"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
)

// EndPhase is the synthetic "take no (further) interrupt" choice appended to
// every non-empty interrupt menu. It ends the polled player's window.
type EndPhase struct {
	Phase  Phase
	Player int
}

func (e *EndPhase) Kind() core.Kind { return core.KindAtomic }

func (e *EndPhase) Execute(s *core.State) error {
	seq, ok := s.ActiveSequence().(Steps)
	if !ok {
		return core.Refusedf("end phase: no interrupt window is open")
	}
	c := seq.Cursor()
	if c.phase != e.Phase || c.interrupter != e.Player {
		return core.Refusedf("end phase: window for player %d at phase %d is not open", e.Player, e.Phase)
	}
	c.Decline()
	return nil
}

func (e *EndPhase) Copy() core.Action {
	c := *e
	return &c
}

func (e *EndPhase) Equal(other core.Action) bool {
	o, ok := other.(*EndPhase)
	return ok && *o == *e
}

func (e *EndPhase) Hash() uint64 {
	return core.NewHasher().String("end-phase").Int(int(e.Phase)).Int(e.Player).Sum()
}

func (e *EndPhase) String() string {
	return fmt.Sprintf("EndPhase(player %d)", e.Player)
}

func (e *EndPhase) Describe(s *core.State) string {
	if seq, ok := s.ActiveSequence().(Steps); ok {
		return fmt.Sprintf("Player %d passes in %s", e.Player, seq.Table().Name(e.Phase))
	}
	return e.String()
}
