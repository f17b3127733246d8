package skirmish

import (
	"fmt"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
)

// EndTurn passes the remaining actions of the turn. The turn itself is handed
// over in Rules.AfterAction.
type EndTurn struct {
	Player int
}

func (e *EndTurn) Kind() core.Kind { return core.KindAtomic }

func (e *EndTurn) CanExecute(s *core.State) bool { return e.Player == s.CurrentPlayer() }

func (e *EndTurn) Execute(s *core.State) error {
	if !e.CanExecute(s) {
		return core.Refusedf("player %d cannot end player %d's turn", e.Player, s.CurrentPlayer())
	}
	return nil
}

func (e *EndTurn) Copy() core.Action {
	c := *e
	return &c
}

func (e *EndTurn) Equal(other core.Action) bool {
	o, ok := other.(*EndTurn)
	return ok && *o == *e
}

func (e *EndTurn) Hash() uint64 {
	return core.NewHasher().String("end-turn").Int(e.Player).Sum()
}

func (e *EndTurn) String() string { return fmt.Sprintf("EndTurn(player %d)", e.Player) }

func (e *EndTurn) Describe(s *core.State) string {
	return fmt.Sprintf("Player %d ends their turn", e.Player)
}
