package skirmish

import (
	"fmt"
	"sort"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/common"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
)

// Component types.
const (
	TypeBoard   = "board"
	TypeTracker = "tracker"
	TypeCell    = "cell"
	TypeFigure  = "figure"
	TypeItem    = "item"
	TypeToken   = "token"
)

// Property keys.
const (
	PropWidth       = "width"
	PropHeight      = "height"
	PropX           = "x"
	PropY           = "y"
	PropOccupant    = "occupant"
	PropHealth      = "health"
	PropMaxHealth   = "max_health"
	PropMove        = "move"
	PropAttackDice  = "attack_dice"
	PropDefenceDice = "defence_dice"
	PropActions     = "actions"
	PropActionLimit = "action_limit"
	PropShield      = "shield"
	PropExhausted   = "exhausted"

	CondStunned     = "stunned"
	CondPoisoned    = "poisoned"
	CondImmobilized = "immobilized"
)

// Conditions lists every status condition a figure can carry.
var Conditions = []string{CondStunned, CondPoisoned, CondImmobilized}

const guardToken = "guard"

// Setup creates the board first, so its layout has fixed IDs: the board, the
// turn tracker, then one cell per square in row-major order.
const (
	boardID   core.ComponentID = 0
	trackerID core.ComponentID = 1
	firstCell core.ComponentID = 2
)

// Pos is a board square. Y grows southwards.
type Pos struct {
	X, Y int
}

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }
func (p Pos) Add(d Pos) Pos  { return Pos{p.X + d.X, p.Y + d.Y} }
func (p Pos) Adjacent(o Pos) bool {
	return p != o && common.Chebyshev(p.X, p.Y, o.X, o.Y) == 1
}

// neighbours in clockwise order from north.
var neighbours = []Pos{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}

// compass names the step from a to b, e.g. "NE".
func compass(a, b Pos) string {
	dir := ""
	switch dy := b.Y - a.Y; {
	case dy < 0:
		dir = "N"
	case dy > 0:
		dir = "S"
	}
	switch dx := b.X - a.X; {
	case dx > 0:
		dir += "E"
	case dx < 0:
		dir += "W"
	}
	if dir == "" {
		return "Nowhere"
	}
	return dir
}

// board is a view of the grid stored in a state's registry.
type board struct {
	reg    *core.Registry
	width  int
	height int
}

func boardOf(s *core.State) (board, error) {
	c, ok := s.Registry().Get(boardID)
	if !ok || c.Type() != TypeBoard {
		return board{}, core.Invariantf("board", "component %d is not the board", boardID)
	}
	return board{reg: s.Registry(), width: c.Int(PropWidth), height: c.Int(PropHeight)}, nil
}

func (b board) InBounds(p Pos) bool {
	return common.IsValidCoordinate(p.X, p.Y, b.width, b.height)
}

func (b board) cell(p Pos) (*core.Component, error) {
	if !b.InBounds(p) {
		return nil, core.Refusedf("square %s is off the board", p)
	}
	c, err := b.reg.Lookup(firstCell + core.ComponentID(p.Y*b.width+p.X))
	if err != nil {
		return nil, core.Invariantf("board", "missing cell at %s", p)
	}
	return c, nil
}

// Occupant returns the figure standing on p, or false.
func (b board) Occupant(p Pos) (core.ComponentID, bool) {
	c, err := b.cell(p)
	if err != nil {
		return 0, false
	}
	id := c.Int(PropOccupant)
	return core.ComponentID(id), id >= 0
}

func (b board) Free(p Pos) bool {
	if !b.InBounds(p) {
		return false
	}
	_, taken := b.Occupant(p)
	return !taken
}

func (b board) place(fig *core.Component, p Pos) error {
	c, err := b.cell(p)
	if err != nil {
		return err
	}
	c.SetInt(PropOccupant, int(fig.ID()))
	fig.SetInt(PropX, p.X)
	fig.SetInt(PropY, p.Y)
	return nil
}

func (b board) vacate(p Pos) error {
	c, err := b.cell(p)
	if err != nil {
		return err
	}
	c.SetInt(PropOccupant, -1)
	return nil
}

// adjacentFigures lists the figures next to p, ordered by ID.
func (b board) adjacentFigures(p Pos) []core.ComponentID {
	var ids []core.ComponentID
	for _, d := range neighbours {
		if id, ok := b.Occupant(p.Add(d)); ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func positionOf(fig *core.Component) Pos {
	return Pos{fig.Int(PropX), fig.Int(PropY)}
}

// figure looks up a live figure. A missing figure is refused: it was
// defeated since the action was generated.
func figure(s *core.State, id core.ComponentID) (*core.Component, error) {
	c, ok := s.Registry().Get(id)
	if !ok {
		return nil, core.Refusedf("figure %d is no longer on the board", id)
	}
	if c.Type() != TypeFigure {
		return nil, core.Refusedf("component %s is not a figure", c)
	}
	return c, nil
}

func tracker(s *core.State) (*core.Component, error) {
	c, ok := s.Registry().Get(trackerID)
	if !ok || c.Type() != TypeTracker {
		return nil, core.Invariantf("tracker", "component %d is not the turn tracker", trackerID)
	}
	return c, nil
}

// spendAction refuses once the current player has used up their actions.
func spendAction(s *core.State, commit bool) error {
	tr, err := tracker(s)
	if err != nil {
		return err
	}
	if tr.Int(PropActions) >= tr.Int(PropActionLimit) {
		return core.Refusedf("player %d has no actions left this turn", s.CurrentPlayer())
	}
	if commit {
		tr.AddInt(PropActions, 1)
	}
	return nil
}

func clearConditions(fig *core.Component) {
	for _, cond := range Conditions {
		fig.DeleteProperty(cond)
	}
}
