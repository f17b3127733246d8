package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/events"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/macro"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/processor"
	"github.com/rs/zerolog"
)

// Rules are the game-specific hooks the forward model drives.
type Rules interface {
	// Setup populates a fresh state: components, first player, round state.
	Setup(s *core.State) error
	// ComputeLegalActions lists the nominal current player's moves. It is only
	// called while no extended sequence is in progress.
	ComputeLegalActions(s *core.State) []core.Action
	// AfterAction runs once the sequence stack is empty after an action: turn
	// and round advancement, scoring, terminal conditions.
	AfterAction(s *core.State, settled core.Action) error
}

// GameConfig holds everything needed to build a ForwardModel.
type GameConfig struct {
	Rules    Rules
	Logger   zerolog.Logger
	EventBus *events.EventBus // optional
	GameID   string           // generated when empty
}

// ForwardModel generates legal actions and applies chosen ones. It owns the
// decision-maker policy: while a sequence is in progress the top of the stack
// decides who acts and what they may choose; otherwise nominal turn order does.
//
// A ForwardModel holds no game state and can drive any number of states,
// including forks created with core.State.Copy.
type ForwardModel struct {
	rules     Rules
	logger    zerolog.Logger
	eventBus  *events.EventBus
	gameID    string
	processor *processor.ActionProcessor
}

// NewForwardModel creates a forward model for the given rules.
func NewForwardModel(cfg GameConfig) (*ForwardModel, error) {
	if cfg.Rules == nil {
		return nil, errors.New("forward model requires rules")
	}
	if cfg.GameID == "" {
		cfg.GameID = uuid.NewString()
	}
	logger := cfg.Logger.With().Str("component", "ForwardModel").Str("game_id", cfg.GameID).Logger()
	return &ForwardModel{
		rules:     cfg.Rules,
		logger:    logger,
		eventBus:  cfg.EventBus,
		gameID:    cfg.GameID,
		processor: processor.NewActionProcessor(logger),
	}, nil
}

func (fm *ForwardModel) GameID() string { return fm.gameID }

// NewGame creates and sets up a state.
func (fm *ForwardModel) NewGame(players int, seed uint64) (*core.State, error) {
	s, err := core.NewState(players, seed)
	if err != nil {
		return nil, err
	}
	if err := fm.rules.Setup(s); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	fm.logger.Info().Int("players", players).Uint64("seed", seed).Int("components", s.Registry().Len()).Msg("Game set up")
	fm.publish(events.NewGameStartedEvent(fm.clock(s), players, seed))
	return s, nil
}

// CurrentDecisionMaker returns the player entitled to act now.
func (fm *ForwardModel) CurrentDecisionMaker(s *core.State) int {
	if seq := s.ActiveSequence(); seq != nil {
		return seq.DecisionMaker(s)
	}
	return s.CurrentPlayer()
}

// ComputeAvailableActions lists the current decision maker's choices.
func (fm *ForwardModel) ComputeAvailableActions(s *core.State) ([]core.Action, error) {
	if s.IsTerminal() {
		return nil, core.WrapGameStateError(s.Turn(), "compute actions", core.ErrGameOver)
	}
	seq := s.ActiveSequence()
	if seq == nil {
		return fm.rules.ComputeLegalActions(s), nil
	}
	actions, err := seq.AvailableActions(s)
	if err != nil {
		return nil, core.WrapGameStateError(s.Turn(), "compute actions", err)
	}
	if len(actions) == 0 {
		return nil, core.Invariantf("compute actions", "%s is suspended but offers player %d no choices", seq, seq.DecisionMaker(s))
	}
	return actions, nil
}

// ApplyAction applies a to s on behalf of the current decision maker.
//
// Extended sequences that need decisions are pushed and drive the loop until
// they complete; macros replay one step per call. Only when the stack is empty
// afterwards do the rules' AfterAction hook and terminal detection run.
// Refused actions wrap core.ErrRefused and leave s untouched. While a
// sequence is suspended only the choices it offers are accepted; anything
// else is refused with core.ErrNotDecisionMaker.
func (fm *ForwardModel) ApplyAction(s *core.State, a core.Action) error {
	if s.IsTerminal() {
		return core.WrapGameStateError(s.Turn(), "apply", core.ErrGameOver)
	}
	if a == nil {
		return core.WrapGameStateError(s.Turn(), "apply", errors.New("nil action"))
	}

	player := fm.CurrentDecisionMaker(s)
	tp := newTurnProcessor(fm, s, player)
	return tp.apply(a)
}

// RunMacro applies m until it completes or a step is refused. It returns the
// number of steps replayed by this call.
func (fm *ForwardModel) RunMacro(s *core.State, m *macro.Action) (int, error) {
	applied := 0
	for !m.Complete() {
		if err := fm.ApplyAction(s, m); err != nil {
			return applied, err
		}
		applied++
		if s.IsTerminal() {
			break
		}
	}
	return applied, nil
}

// PlanMacro builds a macro from steps by simulating them through this forward
// model on a copy of s. No events are published while planning.
func (fm *ForwardModel) PlanMacro(s *core.State, steps []core.Action) (*macro.Action, error) {
	return macro.Plan(s, steps, fm.Quiet().ApplyAction)
}

// Quiet returns a forward model over the same rules that neither logs nor
// publishes events. Use it to simulate on state copies.
func (fm *ForwardModel) Quiet() *ForwardModel {
	quiet := *fm
	quiet.eventBus = nil
	quiet.logger = zerolog.Nop()
	quiet.processor = processor.NewActionProcessor(quiet.logger)
	return &quiet
}

func (fm *ForwardModel) clock(s *core.State) events.Clock {
	return events.Clock{Game: fm.gameID, Turn: s.Turn(), Round: s.Round()}
}

func (fm *ForwardModel) publish(e events.Event) {
	if fm.eventBus != nil {
		fm.eventBus.Publish(e)
	}
}
