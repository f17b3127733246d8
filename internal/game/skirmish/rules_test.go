package skirmish

import (
	"testing"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/events"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/macro"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/sequence"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	rules *Rules
	fm    *game.ForwardModel
	s     *core.State
	seen  map[string]int
}

func newHarness(t *testing.T, p Params, players int) *harness {
	t.Helper()
	h := &harness{rules: NewRules(p, zerolog.Nop()), seen: map[string]int{}}
	bus := events.NewEventBus(zerolog.Nop())
	for _, typ := range []string{
		events.TypeTurnEnded, events.TypeRoundEnded, events.TypeGameEnded,
		events.TypeSequenceStarted, events.TypeSequenceCompleted, events.TypeInterruptOffered,
		events.TypeMacroRefused,
	} {
		typ := typ
		bus.SubscribeFunc(typ, func(events.Event) { h.seen[typ]++ })
	}
	fm, err := game.NewForwardModel(game.GameConfig{Rules: h.rules, Logger: zerolog.Nop(), EventBus: bus, GameID: "skirmish-test"})
	require.NoError(t, err)
	h.fm = fm
	h.s, err = fm.NewGame(players, 11)
	require.NoError(t, err)
	return h
}

func (h *harness) apply(t *testing.T, a core.Action) {
	t.Helper()
	require.NoError(t, h.fm.ApplyAction(h.s, a))
}

func (h *harness) available(t *testing.T) []core.Action {
	t.Helper()
	actions, err := h.fm.ComputeAvailableActions(h.s)
	require.NoError(t, err)
	return actions
}

func TestRules_Setup(t *testing.T) {
	h := newHarness(t, DefaultParams(), 2)
	s := h.s

	// board, tracker, 49 cells, then 2 figures, a guard token and a shield each
	assert.Equal(t, 2+49+2*4, s.Registry().Len())
	assert.Equal(t, 0, s.CurrentPlayer())

	for _, fig := range s.Registry().OwnedBy(0, TypeFigure) {
		assert.Equal(t, 0, fig.Int(PropY))
		assert.Equal(t, 5, fig.Int(PropHealth))
	}
	for _, fig := range s.Registry().OwnedBy(1, TypeFigure) {
		assert.Equal(t, 6, fig.Int(PropY))
	}
	b, err := boardOf(s)
	require.NoError(t, err)
	id, ok := b.Occupant(Pos{2, 0})
	require.True(t, ok)
	assert.Equal(t, s.Registry().OwnedBy(0, TypeFigure)[0].ID(), id)
}

func TestRules_SetupValidation(t *testing.T) {
	tests := []struct {
		name    string
		players int
		tweak   func(p *Params)
	}{
		{"too many players", 5, func(p *Params) {}},
		{"tiny board", 2, func(p *Params) { p.Width = 2 }},
		{"too many figures", 2, func(p *Params) { p.FiguresPerPlayer = 6 }},
		{"blank dice", 2, func(p *Params) { p.AttackDie = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.tweak(&p)
			s, err := core.NewState(tt.players, 1)
			require.NoError(t, err)
			assert.ErrorIs(t, NewRules(p, zerolog.Nop()).Setup(s), errInvalidParams)
		})
	}
}

func TestRules_ComputeLegalActions(t *testing.T) {
	r, s, att, def := duel(t, fixedParams())

	actions := r.ComputeLegalActions(s)
	require.Len(t, actions, 6)
	from := positionOf(att)
	for i, d := range []Pos{{1, 0}, {1, 1}, {-1, 1}, {-1, 0}} {
		assert.True(t, actions[i].Equal(NewMove(att.ID(), from.Add(d))), "move %d", i)
	}
	assert.True(t, actions[4].Equal(NewMeleeAttack(&r.params, att.ID(), def.ID())))
	assert.True(t, actions[5].Equal(&EndTurn{Player: 0}))

	att.SetBool(CondStunned, true)
	att.SetBool(CondImmobilized, true)
	assert.Len(t, r.ComputeLegalActions(s), 1, "only ending the turn is left")
}

func TestRules_ComputeLegalActionsOffersCleave(t *testing.T) {
	p := fixedParams()
	p.FiguresPerPlayer = 2
	r, s := newSkirmish(t, p, 2)
	att := figureOf(t, s, 0, 0)
	d1, d2 := figureOf(t, s, 1, 0), figureOf(t, s, 1, 1)
	relocate(t, s, att, positionOf(d1).Add(Pos{0, -1}))

	multi := NewMeleeAttack(&r.params, att.ID(), d1.ID(), d2.ID())
	assert.True(t, core.ContainsAction(r.ComputeLegalActions(s), multi))

	r.params.Cleave = false
	assert.False(t, core.ContainsAction(r.ComputeLegalActions(s), multi))
}

func TestRules_TurnAndRoundAdvance(t *testing.T) {
	h := newHarness(t, fixedParams(), 2)
	fig := figureOf(t, h.s, 0, 0)
	start := positionOf(fig)

	h.apply(t, NewMove(fig.ID(), start.Add(Pos{0, 1})))
	assert.Equal(t, 0, h.s.CurrentPlayer(), "one action left")
	h.apply(t, NewMove(fig.ID(), start.Add(Pos{0, 2})))
	assert.Equal(t, 1, h.s.CurrentPlayer(), "out of actions")
	assert.Equal(t, 1, h.s.Turn())
	assert.Equal(t, 1, h.seen[events.TypeTurnEnded])

	h.apply(t, &EndTurn{Player: 1})
	assert.Equal(t, 0, h.s.CurrentPlayer())
	assert.Equal(t, 1, h.s.Round())
	assert.Equal(t, 0, h.s.Turn())
	assert.Equal(t, 1, h.seen[events.TypeRoundEnded])

	tr, err := tracker(h.s)
	require.NoError(t, err)
	assert.Equal(t, 0, tr.Int(PropActions))
}

func TestRules_InterruptFlowThroughForwardModel(t *testing.T) {
	p := fixedParams()
	p.Health = 10
	p.Surges, p.Rerolls = true, true
	p.GuardTokens, p.ShieldValue = 1, 1
	p.AttackDie = []Face{{Range: 1, Damage: 2, Surge: 2}}
	h := newHarness(t, p, 2)
	att, def := figureOf(t, h.s, 0, 0), figureOf(t, h.s, 1, 0)
	relocate(t, h.s, def, positionOf(att).Add(Pos{0, 1}))

	h.apply(t, NewMeleeAttack(&h.rules.params, att.ID(), def.ID()))
	require.True(t, h.s.InProgress())
	attack := h.s.ActiveSequence().(*MeleeAttack)

	// The defender may brace before the roll.
	assert.Equal(t, "pre-roll", attack.PhaseName())
	assert.Equal(t, 1, h.fm.CurrentDecisionMaker(h.s))
	menu := h.available(t)
	require.Len(t, menu, 2)
	require.IsType(t, &Guard{}, menu[0])
	require.IsType(t, &sequence.EndPhase{}, menu[1])
	h.apply(t, menu[0])
	assert.Empty(t, h.s.Registry().OwnedBy(1, TypeToken), "guard token spent")

	// The attacker passes on the reroll.
	assert.Equal(t, "post-roll", attack.PhaseName())
	assert.Equal(t, 0, h.fm.CurrentDecisionMaker(h.s))
	menu = h.available(t)
	require.Len(t, menu, 2)
	require.IsType(t, &Reroll{}, menu[0])
	h.apply(t, menu[1])

	// Two surges to spend, one menu entry per effect plus passing.
	assert.Equal(t, "bonus-decision", attack.PhaseName())
	assert.Len(t, h.available(t), len(SurgeKinds)+1)
	h.apply(t, &Surge{Player: 0, Figure: att.ID(), Effect: SurgeDamage})
	assert.Len(t, h.available(t), len(SurgeKinds), "used effect is filtered out")
	h.apply(t, &Surge{Player: 0, Figure: att.ID(), Effect: SurgePierce})

	// Surges are gone, so the window closed and defence was rolled.
	assert.Equal(t, "post-defence-roll", attack.PhaseName())
	assert.Equal(t, 1, h.fm.CurrentDecisionMaker(h.s))
	menu = h.available(t)
	require.Len(t, menu, 2)
	h.apply(t, menu[1])

	// 2 damage + 1 surge against 1 shield + 1 guard - 1 pierce.
	assert.Equal(t, "pre-damage", attack.PhaseName())
	assert.Equal(t, 2, attack.Damage())
	menu = h.available(t)
	require.Len(t, menu, 2)
	require.IsType(t, &UseShield{}, menu[0])
	h.apply(t, menu[0])

	assert.False(t, h.s.InProgress())
	assert.True(t, attack.Complete())
	assert.Equal(t, 9, def.Int(PropHealth))
	shield := h.s.Registry().OwnedBy(1, TypeItem)[0]
	assert.True(t, shield.Bool(PropExhausted))
	assert.Equal(t, 0, h.fm.CurrentDecisionMaker(h.s), "nominal turn order resumes")
	assert.Equal(t, 1, h.seen[events.TypeSequenceStarted])
	assert.Equal(t, 1, h.seen[events.TypeSequenceCompleted])
	assert.Equal(t, 6, h.seen[events.TypeInterruptOffered])
}

func TestRules_InterruptOutOfTurnIsRefused(t *testing.T) {
	p := fixedParams()
	p.GuardTokens = 1
	h := newHarness(t, p, 2)
	att, def := figureOf(t, h.s, 0, 0), figureOf(t, h.s, 1, 0)
	relocate(t, h.s, def, positionOf(att).Add(Pos{0, 1}))
	h.apply(t, NewMeleeAttack(&h.rules.params, att.ID(), def.ID()))
	before := h.s.Hash()

	tests := []struct {
		name   string
		action core.Action
	}{
		{"wrong phase", &Reroll{Player: 1, Phase: PhasePostDefenceRoll}},
		{"wrong player", &sequence.EndPhase{Phase: PhasePreRoll, Player: 0}},
		{"stale surge", &Surge{Player: 1, Figure: def.ID(), Effect: SurgeDamage}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.fm.ApplyAction(h.s, tt.action)
			require.Error(t, err)
			assert.True(t, core.IsRefused(err))
			assert.Equal(t, before, h.s.Hash())
		})
	}
}

func TestRules_AttackerCannotActDuringDefenderWindow(t *testing.T) {
	p := fixedParams()
	p.GuardTokens = 1
	h := newHarness(t, p, 2)
	att, def := figureOf(t, h.s, 0, 0), figureOf(t, h.s, 1, 0)
	relocate(t, h.s, def, positionOf(att).Add(Pos{0, 1}))
	from := positionOf(att)

	h.apply(t, NewMeleeAttack(&h.rules.params, att.ID(), def.ID()))
	require.Equal(t, 1, h.fm.CurrentDecisionMaker(h.s))
	require.Equal(t, 0, h.s.CurrentPlayer())
	before := h.s.Hash()

	move := NewMove(att.ID(), from.Add(Pos{1, 0}))
	require.True(t, move.CanExecute(h.s), "the move is legal for the nominal player")
	err := h.fm.ApplyAction(h.s, move)
	assert.True(t, core.IsRefused(err))
	assert.ErrorIs(t, err, core.ErrNotDecisionMaker)
	assert.Equal(t, from, positionOf(att))
	assert.Equal(t, before, h.s.Hash())

	// The defender passes and the attack lands on the unmoved target.
	h.apply(t, &sequence.EndPhase{Phase: PhasePreRoll, Player: 1})
	assert.False(t, h.s.InProgress())
	assert.False(t, h.s.Registry().Contains(def.ID()))
}

func TestRules_AttackEndsGame(t *testing.T) {
	h := newHarness(t, fixedParams(), 2)
	att, def := figureOf(t, h.s, 0, 0), figureOf(t, h.s, 1, 0)
	relocate(t, h.s, def, positionOf(att).Add(Pos{0, 1}))

	h.apply(t, NewMeleeAttack(&h.rules.params, att.ID(), def.ID()))

	assert.True(t, h.s.IsTerminal())
	assert.Equal(t, 0, h.s.Winner())
	assert.Equal(t, core.ResultLose, h.s.Result(1))
	assert.Equal(t, 1, h.seen[events.TypeGameEnded])

	_, err := h.fm.ComputeAvailableActions(h.s)
	assert.ErrorIs(t, err, core.ErrGameOver)
	assert.ErrorIs(t, h.fm.ApplyAction(h.s, &EndTurn{Player: 0}), core.ErrGameOver)
}

func TestRules_PoisonAtEndOfTurn(t *testing.T) {
	p := fixedParams()
	p.Health = 1
	h := newHarness(t, p, 2)
	figureOf(t, h.s, 0, 0).SetBool(CondPoisoned, true)

	h.apply(t, &EndTurn{Player: 0})

	assert.True(t, h.s.IsTerminal())
	assert.Equal(t, 1, h.s.Winner())
}

func TestRules_RoundLimitIsADrawOnEqualHealth(t *testing.T) {
	p := fixedParams()
	p.MaxRounds = 1
	h := newHarness(t, p, 2)

	h.apply(t, &EndTurn{Player: 0})
	require.False(t, h.s.IsTerminal())
	h.apply(t, &EndTurn{Player: 1})

	require.True(t, h.s.IsTerminal())
	assert.Equal(t, -1, h.s.Winner())
	assert.Equal(t, core.ResultDraw, h.s.Result(0))
	assert.Equal(t, core.ResultDraw, h.s.Result(1))
}

func TestRules_EliminatedPlayersAreSkipped(t *testing.T) {
	h := newHarness(t, fixedParams(), 3)
	gone := figureOf(t, h.s, 1, 0)
	b, err := boardOf(h.s)
	require.NoError(t, err)
	require.NoError(t, b.vacate(positionOf(gone)))
	require.NoError(t, h.s.Registry().Remove(gone.ID()))

	h.apply(t, &EndTurn{Player: 0})

	assert.False(t, h.s.IsTerminal())
	assert.Equal(t, 2, h.s.CurrentPlayer())
}

func TestRules_MacroReplay(t *testing.T) {
	h := newHarness(t, fixedParams(), 2)
	fig := figureOf(t, h.s, 0, 0)
	start := positionOf(fig)
	steps := []core.Action{
		NewMove(fig.ID(), start.Add(Pos{1, 1})),
		&EndTurn{Player: 0},
	}

	t.Run("matching plan", func(t *testing.T) {
		s := h.s.Copy()
		m, err := h.fm.PlanMacro(s, steps)
		require.NoError(t, err)

		n, err := h.fm.RunMacro(s, m)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, 1, s.CurrentPlayer())
	})

	t.Run("state changed after planning", func(t *testing.T) {
		s := h.s.Copy()
		m, err := h.fm.PlanMacro(s, steps)
		require.NoError(t, err)

		require.NoError(t, h.fm.ApplyAction(s, NewMove(fig.ID(), start.Add(Pos{-1, 1}))))
		before := s.Hash()

		n, err := h.fm.RunMacro(s, m)
		require.Error(t, err)
		assert.ErrorIs(t, err, macro.ErrStaleStep)
		assert.Equal(t, 0, n)
		assert.Equal(t, 0, m.Next())
		assert.Equal(t, before, s.Hash())
		assert.Equal(t, 1, h.seen[events.TypeMacroRefused])
	})
}
