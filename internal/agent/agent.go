// Package agent provides simple decision makers and a loop that plays games
// through the forward model.
package agent

import (
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
	"golang.org/x/exp/rand"
)

// Agent picks one of the available actions for player.
type Agent interface {
	Choose(s *core.State, player int, actions []core.Action) core.Action
}

// RandomAgent chooses uniformly among the available actions.
type RandomAgent struct {
	rng *rand.Rand
}

func NewRandomAgent(seed uint64) *RandomAgent {
	return &RandomAgent{rng: rand.New(rand.NewSource(seed))}
}

func (a *RandomAgent) Choose(_ *core.State, _ int, actions []core.Action) core.Action {
	if len(actions) == 0 {
		return nil
	}
	return actions[a.rng.Intn(len(actions))]
}

// FirstAgent always takes the first available action. Useful for
// reproducing a game by hand.
type FirstAgent struct{}

func (FirstAgent) Choose(_ *core.State, _ int, actions []core.Action) core.Action {
	if len(actions) == 0 {
		return nil
	}
	return actions[0]
}
