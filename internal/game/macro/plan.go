package macro

import (
	"fmt"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
)

// ApplyFunc applies one step to a state, the way the caller's turn loop would.
type ApplyFunc func(s *core.State, a core.Action) error

// Plan simulates steps on a copy of s and records the hash observed before
// each one. s itself is not modified. A nil apply executes steps directly.
func Plan(s *core.State, steps []core.Action, apply ApplyFunc) (*Action, error) {
	if len(steps) == 0 {
		return nil, ErrEmptyPlan
	}
	if apply == nil {
		apply = func(st *core.State, a core.Action) error { return a.Execute(st) }
	}
	sim := s.Copy()
	hashes := make([]core.StateHash, len(steps))
	for i, st := range steps {
		hashes[i] = sim.Hash()
		if err := apply(sim, st.Copy()); err != nil {
			return nil, fmt.Errorf("plan step %d (%s): %w", i, st, err)
		}
	}
	return New(steps, hashes)
}
