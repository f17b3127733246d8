package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/common"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/macro"
	"github.com/rs/zerolog"
)

// RunnerConfig controls a Runner.
type RunnerConfig struct {
	// MaxActions caps the number of applied actions per game. Zero means no cap.
	MaxActions int
	// UseMacros makes each player plan up to MacroLength of their own
	// decisions ahead and submit them as one hash-gated macro.
	UseMacros   bool
	MacroLength int
}

// Summary describes a finished or abandoned game.
type Summary struct {
	GameID      string
	Finished    bool
	Winner      int
	Results     []core.Result
	Actions     int
	Rounds      int
	Macros      int
	MacroSteps  int
	StaleMacros int
	Hash        core.StateHash
}

// Runner plays games by asking one agent per seat for decisions.
type Runner struct {
	fm     *game.ForwardModel
	agents []Agent
	cfg    RunnerConfig
	logger zerolog.Logger
}

func NewRunner(fm *game.ForwardModel, agents []Agent, cfg RunnerConfig, logger zerolog.Logger) (*Runner, error) {
	if fm == nil {
		return nil, errors.New("runner requires a forward model")
	}
	if len(agents) == 0 {
		return nil, errors.New("runner requires at least one agent")
	}
	if cfg.UseMacros && cfg.MacroLength < 1 {
		return nil, fmt.Errorf("macro length %d must be positive", cfg.MacroLength)
	}
	return &Runner{
		fm:     fm,
		agents: agents,
		cfg:    cfg,
		logger: logger.With().Str("component", "Runner").Str("game_id", fm.GameID()).Logger(),
	}, nil
}

// Play sets up a new game and plays it until it ends, the action cap is hit
// or ctx is cancelled.
func (r *Runner) Play(ctx context.Context, players int, seed uint64) (Summary, error) {
	if players > len(r.agents) {
		return Summary{}, fmt.Errorf("%d players but only %d agents", players, len(r.agents))
	}
	s, err := r.fm.NewGame(players, seed)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{GameID: r.fm.GameID(), Winner: -1}
	if err = r.run(ctx, s, &sum); err != nil {
		err = core.NewGameError(s.Round(), r.fm.CurrentDecisionMaker(s), "play", err)
	}

	sum.Finished = s.IsTerminal()
	sum.Rounds = s.Round()
	sum.Hash = s.Hash()
	if sum.Finished {
		sum.Winner = s.Winner()
		sum.Results = make([]core.Result, players)
		for p := range sum.Results {
			sum.Results[p] = s.Result(p)
		}
	}
	r.logger.Info().
		Bool("finished", sum.Finished).
		Int("winner", sum.Winner).
		Int("actions", sum.Actions).
		Int("rounds", sum.Rounds).
		Int("macros", sum.Macros).
		Int("stale_macros", sum.StaleMacros).
		Msg("Game finished")
	return sum, err
}

func (r *Runner) run(ctx context.Context, s *core.State, sum *Summary) error {
	for !s.IsTerminal() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.cfg.MaxActions > 0 && sum.Actions >= r.cfg.MaxActions {
			r.logger.Debug().Int("max_actions", r.cfg.MaxActions).Msg("Action cap reached")
			return nil
		}
		if r.cfg.UseMacros && !s.InProgress() {
			replayed, err := r.macroTurn(s, sum)
			if err != nil {
				return err
			}
			if replayed > 0 {
				continue
			}
		}
		if err := r.step(s); err != nil {
			return err
		}
		sum.Actions++
	}
	return nil
}

// step asks the decision maker for one action and applies it. Refused
// choices are dropped and the agent is asked again.
func (r *Runner) step(s *core.State) error {
	player := r.fm.CurrentDecisionMaker(s)
	actions, err := r.fm.ComputeAvailableActions(s)
	if err != nil {
		return err
	}
	for len(actions) > 0 {
		a := r.agents[player].Choose(s, player, actions)
		if a == nil {
			break
		}
		err := r.fm.ApplyAction(s, a)
		if err == nil {
			return nil
		}
		if !core.IsRefused(err) {
			return err
		}
		r.logger.Debug().Err(err).Str("action", a.String()).Msg("Choice refused, asking again")
		actions = without(actions, a)
	}
	return core.Invariantf("runner step", "player %d has no applicable action", player)
}

// macroTurn plans the current player's next decisions on a copy and replays
// them on s. It returns how many steps were applied; a stale plan may apply
// fewer than planned and the caller carries on one step at a time.
func (r *Runner) macroTurn(s *core.State, sum *Summary) (int, error) {
	limit := r.cfg.MacroLength
	if r.cfg.MaxActions > 0 {
		limit = common.Min(limit, r.cfg.MaxActions-sum.Actions)
	}
	steps, err := r.plan(s, limit)
	if err != nil || len(steps) == 0 {
		return 0, err
	}
	if len(steps) == 1 {
		if err := r.fm.ApplyAction(s, steps[0]); err != nil {
			return 0, err
		}
		sum.Actions++
		return 1, nil
	}
	m, err := r.fm.PlanMacro(s, steps)
	if err != nil {
		return 0, err
	}

	sum.Macros++
	n, err := r.fm.RunMacro(s, m)
	sum.Actions += n
	sum.MacroSteps += n
	if errors.Is(err, macro.ErrStaleStep) {
		sum.StaleMacros++
		r.logger.Debug().Int("replayed", n).Int("planned", m.Len()).Msg("Macro went stale")
		return n, nil
	}
	return n, err
}

// plan simulates the current player's own consecutive decisions.
func (r *Runner) plan(s *core.State, limit int) ([]core.Action, error) {
	sim := s.Copy()
	quiet := r.fm.Quiet()
	player := quiet.CurrentDecisionMaker(sim)

	var steps []core.Action
	for len(steps) < limit && !sim.IsTerminal() && quiet.CurrentDecisionMaker(sim) == player {
		actions, err := quiet.ComputeAvailableActions(sim)
		if err != nil {
			return nil, err
		}
		a := r.agents[player].Choose(sim, player, actions)
		if a == nil {
			break
		}
		chosen := a.Copy()
		if err := quiet.ApplyAction(sim, a); err != nil {
			if core.IsRefused(err) {
				break
			}
			return nil, err
		}
		steps = append(steps, chosen)
	}
	return steps, nil
}

func without(actions []core.Action, a core.Action) []core.Action {
	out := make([]core.Action, 0, len(actions))
	for _, b := range actions {
		if !b.Equal(a) {
			out = append(out, b)
		}
	}
	return out
}
