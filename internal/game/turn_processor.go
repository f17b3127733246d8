package game

import (
	"errors"
	"fmt"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/events"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/macro"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/processor"
	"github.com/rs/zerolog"
)

// phaseNamer is implemented by sequences that can name their current phase.
type phaseNamer interface {
	PhaseName() string
}

// turnProcessor handles the orchestration of a single ApplyAction call
type turnProcessor struct {
	fm     *ForwardModel
	s      *core.State
	player int
	logger zerolog.Logger

	turn    int
	round   int
	current int
	active  core.ExtendedAction
	phase   string
}

func newTurnProcessor(fm *ForwardModel, s *core.State, player int) *turnProcessor {
	tp := &turnProcessor{
		fm:      fm,
		s:       s,
		player:  player,
		logger:  fm.logger.With().Int("turn", s.Turn()).Int("round", s.Round()).Int("player", player).Logger(),
		turn:    s.Turn(),
		round:   s.Round(),
		current: s.CurrentPlayer(),
		active:  s.ActiveSequence(),
	}
	tp.phase = phaseOf(tp.active)
	return tp
}

func (tp *turnProcessor) apply(a core.Action) error {
	if out, err := tp.checkOffered(a); err != nil {
		return tp.handleError(a, out, err)
	}
	out, err := tp.fm.processor.Process(tp.s, a)
	if err != nil {
		return tp.handleError(a, out, err)
	}

	tp.logger.Debug().Str("action", out.Applied.String()).Int("stack_depth", tp.s.StackDepth()).Msg("Action applied")
	tp.publishApplied(a, out)
	tp.publishSequences(out)

	if out.Settled == nil {
		return nil
	}
	return tp.processEndOfAction(out.Settled)
}

// checkOffered refuses, while a sequence is suspended, any action its decision
// maker was not offered. A macro is judged by its next step.
func (tp *turnProcessor) checkOffered(a core.Action) (processor.Outcome, error) {
	out := processor.Outcome{MacroStep: -1}
	if tp.active == nil {
		return out, nil
	}
	step := a
	if r, ok := a.(processor.Replayer); ok && a.Kind() == core.KindMacro {
		out.MacroStep = r.Next()
		next, err := r.Peek(tp.s)
		if err != nil {
			return out, err
		}
		step = next
	}
	offered, err := tp.active.AvailableActions(tp.s)
	if err != nil {
		return out, core.WrapGameStateError(tp.turn, "apply", err)
	}
	if len(offered) == 0 {
		return out, core.Invariantf("apply", "%s is suspended but offers player %d no choices", tp.active, tp.player)
	}
	if core.ContainsAction(offered, step) {
		return out, nil
	}
	refusal := fmt.Errorf("%w: %w: %s was not offered", core.ErrRefused, core.ErrNotDecisionMaker, step)
	return out, core.WrapPlayerError(tp.player, "deciding in "+tp.active.String(), refusal)
}

// processEndOfAction runs the rules' bookkeeping once the stack is empty.
func (tp *turnProcessor) processEndOfAction(settled core.Action) error {
	if err := tp.fm.rules.AfterAction(tp.s, settled); err != nil {
		tp.logger.Error().Err(err).Str("action", settled.String()).Msg("Post-action bookkeeping failed")
		return core.WrapGameStateError(tp.s.Turn(), "after action", err)
	}

	if tp.s.Turn() != tp.turn || tp.s.Round() != tp.round {
		tp.fm.publish(events.NewTurnEndedEvent(tp.fm.clock(tp.s), tp.current, tp.s.CurrentPlayer()))
	}
	if tp.s.Round() != tp.round {
		tp.fm.publish(events.NewRoundEndedEvent(tp.fm.clock(tp.s), tp.round))
	}

	if tp.s.IsTerminal() {
		results := make([]core.Result, tp.s.Players())
		for p := range results {
			results[p] = tp.s.Result(p)
		}
		tp.logger.Info().Int("winner", tp.s.Winner()).Msg("Game over")
		tp.fm.publish(events.NewGameEndedEvent(tp.fm.clock(tp.s), tp.s.Winner(), results))
	}
	return nil
}

func (tp *turnProcessor) handleError(a core.Action, out processor.Outcome, err error) error {
	wrapped := core.WrapActionError(tp.player, a, err)
	clock := tp.fm.clock(tp.s)

	switch {
	case core.IsFatal(err):
		tp.logger.Error().Err(err).Str("action", a.String()).Msg("Engine invariant violated")
	case out.MacroStep >= 0 && errors.Is(err, macro.ErrStaleStep):
		tp.logger.Debug().Err(err).Int("step", out.MacroStep).Msg("Stale macro step refused")
		tp.fm.publish(events.NewMacroRefusedEvent(clock, tp.player, out.MacroStep, err))
	case core.IsRefused(err):
		tp.logger.Debug().Err(err).Str("action", a.String()).Msg("Action refused")
		tp.fm.publish(events.NewActionRefusedEvent(clock, tp.player, a, err))
	default:
		tp.logger.Warn().Err(err).Str("action", a.String()).Msg("Action failed")
	}
	return wrapped
}

func (tp *turnProcessor) publishApplied(a core.Action, out processor.Outcome) {
	clock := tp.fm.clock(tp.s)
	tp.fm.publish(events.NewActionAppliedEvent(clock, tp.player, out.Applied))
	if r, ok := a.(processor.Replayer); ok && out.MacroStep >= 0 {
		tp.fm.publish(events.NewMacroStepEvent(clock, tp.player, out.MacroStep, r.Len()))
	}
}

func (tp *turnProcessor) publishSequences(out processor.Outcome) {
	clock := tp.fm.clock(tp.s)
	for _, seq := range out.Started {
		tp.fm.publish(events.NewSequenceStartedEvent(clock, tp.player, seq.String(), tp.s.StackDepth()))
	}
	for _, seq := range out.Completed {
		tp.fm.publish(events.NewSequenceCompletedEvent(clock, seq.String(), tp.s.StackDepth()))
	}

	top := tp.s.ActiveSequence()
	if top == nil {
		return
	}
	phase := phaseOf(top)
	if top == tp.active && phase != tp.phase {
		tp.fm.publish(events.NewSequencePhaseEvent(clock, top.String(), tp.phase, phase))
	}
	tp.fm.publish(events.NewInterruptOfferedEvent(clock, top.DecisionMaker(tp.s), top.String(), phase))
}

func phaseOf(seq core.ExtendedAction) string {
	if pn, ok := seq.(phaseNamer); ok {
		return pn.PhaseName()
	}
	return ""
}
