package skirmish

import (
	"fmt"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/rules"
	"github.com/rs/zerolog"
)

// Rules plugs the skirmish game into the forward model.
type Rules struct {
	params Params
	logger zerolog.Logger
	wc     *rules.WinConditionChecker
}

func NewRules(p Params, logger zerolog.Logger) *Rules {
	logger = logger.With().Str("component", "Skirmish").Logger()
	return &Rules{
		params: p,
		logger: logger,
		wc:     rules.NewWinConditionChecker(logger, TypeFigure),
	}
}

func (r *Rules) Params() Params { return r.params }

// Setup lays out the board and gives every player their figures, a guard
// token per Params.GuardTokens and a shield.
func (r *Rules) Setup(s *core.State) error {
	if err := r.params.Validate(s.Players()); err != nil {
		return err
	}
	reg := s.Registry()
	if reg.Len() != 0 {
		return fmt.Errorf("setup needs an empty registry, found %d components", reg.Len())
	}

	bc := reg.Create(TypeBoard, "board", core.NoOwner)
	bc.SetInt(PropWidth, r.params.Width)
	bc.SetInt(PropHeight, r.params.Height)
	tr := reg.Create(TypeTracker, "turn", core.NoOwner)
	tr.SetInt(PropActions, 0)
	tr.SetInt(PropActionLimit, r.params.ActionsPerTurn)
	for y := 0; y < r.params.Height; y++ {
		for x := 0; x < r.params.Width; x++ {
			c := reg.Create(TypeCell, Pos{x, y}.String(), core.NoOwner)
			c.SetInt(PropX, x)
			c.SetInt(PropY, y)
			c.SetInt(PropOccupant, -1)
		}
	}
	if bc.ID() != boardID || tr.ID() != trackerID {
		return core.Invariantf("setup", "board layout created out of order")
	}

	b, err := boardOf(s)
	if err != nil {
		return err
	}
	for p := 0; p < s.Players(); p++ {
		for i, at := range r.startSquares(p) {
			fig := reg.Create(TypeFigure, fmt.Sprintf("p%d-%c", p, 'a'+i), p)
			fig.SetInt(PropHealth, r.params.Health)
			fig.SetInt(PropMaxHealth, r.params.Health)
			fig.SetInt(PropMove, r.params.MovePoints)
			fig.SetInt(PropAttackDice, r.params.AttackDice)
			fig.SetInt(PropDefenceDice, r.params.DefenceDice)
			if err := b.place(fig, at); err != nil {
				return err
			}
		}
		for i := 0; i < r.params.GuardTokens; i++ {
			reg.Create(TypeToken, guardToken, p)
		}
		if r.params.ShieldValue > 0 {
			it := reg.Create(TypeItem, "shield", p)
			it.SetInt(PropShield, r.params.ShieldValue)
			it.SetBool(PropExhausted, false)
		}
	}

	r.logger.Debug().Int("players", s.Players()).Int("components", reg.Len()).Msg("Skirmish board laid out")
	return s.SetFirstPlayer(0)
}

// startSquares centres a player's figures along their home edge.
func (r *Rules) startSquares(player int) []Pos {
	n := r.params.FiguresPerPlayer
	w, h := r.params.Width, r.params.Height
	out := make([]Pos, n)
	for i := range out {
		switch player {
		case 0:
			out[i] = Pos{(w-n)/2 + i, 0}
		case 1:
			out[i] = Pos{(w-n)/2 + i, h - 1}
		case 2:
			out[i] = Pos{0, (h-n)/2 + i}
		default:
			out[i] = Pos{w - 1, (h-n)/2 + i}
		}
	}
	return out
}

// ComputeLegalActions offers single-square moves, attacks on adjacent
// enemies, a multi-target attack on all of them when cleave is on, and
// ending the turn.
func (r *Rules) ComputeLegalActions(s *core.State) []core.Action {
	player := s.CurrentPlayer()
	actions := []core.Action{}

	b, err := boardOf(s)
	if err != nil {
		r.logger.Error().Err(err).Msg("Board missing")
		return []core.Action{&EndTurn{Player: player}}
	}
	if spendAction(s, false) == nil {
		for _, fig := range s.Registry().OwnedBy(player, TypeFigure) {
			at := positionOf(fig)
			if !fig.Bool(CondImmobilized) {
				for _, d := range neighbours {
					if to := at.Add(d); b.Free(to) {
						actions = append(actions, NewMove(fig.ID(), to))
					}
				}
			}
			if fig.Bool(CondStunned) {
				continue
			}
			var enemies []core.ComponentID
			for _, id := range b.adjacentFigures(at) {
				if c, ok := s.Registry().Get(id); ok && c.Owner() != player {
					enemies = append(enemies, id)
					actions = append(actions, NewMeleeAttack(&r.params, fig.ID(), id))
				}
			}
			if r.params.Cleave && len(enemies) > 1 {
				actions = append(actions, NewMeleeAttack(&r.params, fig.ID(), enemies...))
			}
		}
	}
	return append(actions, &EndTurn{Player: player})
}

// AfterAction ends the game once one side is wiped out, and hands the turn on
// when the player ends it or runs out of actions.
func (r *Rules) AfterAction(s *core.State, settled core.Action) error {
	if over, err := r.wc.EndIfOver(s); over || err != nil {
		return err
	}
	tr, err := tracker(s)
	if err != nil {
		return err
	}
	_, ended := settled.(*EndTurn)
	if !ended && tr.Int(PropActions) < tr.Int(PropActionLimit) {
		return nil
	}

	if err := r.endTurn(s, tr); err != nil {
		return err
	}
	// Poison can finish off the last figure of a side.
	if over, err := r.wc.EndIfOver(s); over || err != nil {
		return err
	}
	if r.params.MaxRounds > 0 && s.Round() >= r.params.MaxRounds {
		return r.endOnTime(s)
	}
	return nil
}

// endTurn resolves the player's end-of-turn conditions and passes play to the
// next player with figures left.
func (r *Rules) endTurn(s *core.State, tr *core.Component) error {
	player := s.CurrentPlayer()
	b, err := boardOf(s)
	if err != nil {
		return err
	}
	for _, fig := range s.Registry().OwnedBy(player, TypeFigure) {
		if fig.Bool(CondPoisoned) {
			if fig.AddInt(PropHealth, -1) <= 0 {
				if err := b.vacate(positionOf(fig)); err != nil {
					return err
				}
				if err := s.Registry().Remove(fig.ID()); err != nil {
					return err
				}
				r.logger.Debug().Str("figure", fig.Name()).Msg("Figure succumbed to poison")
				continue
			}
		}
		clearConditions(fig)
	}
	for _, it := range s.Registry().OwnedBy(player, TypeItem) {
		it.SetBool(PropExhausted, false)
	}
	tr.SetInt(PropActions, 0)

	alive := r.wc.AlivePlayers(s)
	for i := 0; i < s.Players(); i++ {
		r.advanceSeat(s)
		if contains(alive, s.CurrentPlayer()) {
			break
		}
	}
	return nil
}

func (r *Rules) advanceSeat(s *core.State) {
	s.EndPlayerTurn()
	if s.CurrentPlayer() == s.FirstPlayer() {
		s.EndRound()
	}
}

// endOnTime awards the game to the side with the most health left.
func (r *Rules) endOnTime(s *core.State) error {
	best, winner := -1, -1
	for p := 0; p < s.Players(); p++ {
		total := 0
		for _, fig := range s.Registry().OwnedBy(p, TypeFigure) {
			total += fig.Int(PropHealth)
		}
		switch {
		case total > best:
			best, winner = total, p
		case total == best:
			winner = -1
		}
	}
	r.logger.Info().Int("round", s.Round()).Int("winner", winner).Msg("Round limit reached")
	return s.EndGame(rules.Results(s.Players(), winner))
}

func contains(ps []int, p int) bool {
	for _, x := range ps {
		if x == p {
			return true
		}
	}
	return false
}
