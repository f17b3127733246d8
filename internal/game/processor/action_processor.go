package processor

import (
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
	"github.com/rs/zerolog"
)

// Replayer is implemented by macro actions. The processor routes each replayed
// step through the same path as a directly chosen action.
type Replayer interface {
	Next() int
	Len() int
	Peek(s *core.State) (core.Action, error)
	Consume() error
}

// Outcome reports what applying one action did to the sequence stack.
type Outcome struct {
	// Applied is the action that was executed: the action itself, or the
	// replayed step when a macro was given.
	Applied core.Action
	// MacroStep is the replayed step index, or -1.
	MacroStep int
	// Started lists sequences pushed onto the stack.
	Started []core.ExtendedAction
	// Completed lists sequences that reached their terminal phase, innermost first.
	Completed []core.ExtendedAction
	// Settled is set when the stack is empty afterwards: the outermost action
	// that finished, for the rules' post-action bookkeeping.
	Settled core.Action
}

// ActionProcessor applies actions to a state, dispatching on their kind and
// keeping the in-progress sequence stack consistent.
type ActionProcessor struct {
	logger zerolog.Logger
}

// NewActionProcessor creates a new action processor
func NewActionProcessor(logger zerolog.Logger) *ActionProcessor {
	return &ActionProcessor{
		logger: logger.With().Str("component", "ActionProcessor").Logger(),
	}
}

// Process applies a. Refusals (failed preconditions, stale macro steps) leave
// the state untouched and wrap core.ErrRefused.
func (ap *ActionProcessor) Process(s *core.State, a core.Action) (Outcome, error) {
	out := Outcome{MacroStep: -1}
	step := a
	var replay Replayer

	if a.Kind() == core.KindMacro {
		r, ok := a.(Replayer)
		if !ok {
			return out, core.Invariantf("process action", "%s has kind %s but cannot be replayed", a, a.Kind())
		}
		out.MacroStep = r.Next()
		next, err := r.Peek(s)
		if err != nil {
			ap.logger.Debug().Err(err).Int("step", out.MacroStep).Msg("Macro step refused")
			return out, err
		}
		if next.Kind() == core.KindMacro {
			return out, core.Invariantf("process action", "macro step %d is itself a macro", out.MacroStep)
		}
		step, replay = next, r
	}

	if c, ok := step.(core.Conditional); ok && !c.CanExecute(s) {
		return out, core.Refusedf("%s cannot execute in this state", step)
	}

	if err := ap.execute(s, step, &out); err != nil {
		return out, err
	}
	if replay != nil {
		if err := replay.Consume(); err != nil {
			return out, err
		}
	}
	out.Applied = step
	if !s.InProgress() {
		out.Settled = step
		if n := len(out.Completed); n > 0 {
			out.Settled = out.Completed[n-1]
		}
	}
	return out, nil
}

func (ap *ActionProcessor) execute(s *core.State, step core.Action, out *Outcome) error {
	ap.logger.Debug().Str("action", step.String()).Str("kind", step.Kind().String()).Msg("Applying action")
	if err := step.Execute(s); err != nil {
		return err
	}

	if step.Kind() == core.KindSequence {
		seq, ok := step.(core.ExtendedAction)
		if !ok {
			return core.Invariantf("process action", "%s has kind %s but is not an extended action", step, step.Kind())
		}
		out.Started = append(out.Started, seq)
		if !seq.Complete() {
			s.PushSequence(seq)
			ap.logger.Debug().Str("sequence", seq.String()).Int("depth", s.StackDepth()).Msg("Sequence suspended for a decision")
			return nil
		}
		// Resolved without any interrupt; it never touches the stack.
		out.Completed = append(out.Completed, seq)
	}

	if top := s.ActiveSequence(); top != nil {
		if err := top.AfterAction(s, step); err != nil {
			return err
		}
	}
	return ap.unwind(s, out)
}

// unwind pops completed sequences and resumes each parent with the finished child.
func (ap *ActionProcessor) unwind(s *core.State, out *Outcome) error {
	for top := s.ActiveSequence(); top != nil && top.Complete(); top = s.ActiveSequence() {
		done, err := s.PopSequence()
		if err != nil {
			return err
		}
		out.Completed = append(out.Completed, done)
		ap.logger.Debug().Str("sequence", done.String()).Int("depth", s.StackDepth()).Msg("Sequence completed")
		if parent := s.ActiveSequence(); parent != nil {
			if err := parent.AfterAction(s, done); err != nil {
				return err
			}
		}
	}
	return nil
}
