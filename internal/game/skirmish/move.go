package skirmish

import (
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
)

// Move walks a figure along a path of adjacent free squares.
type Move struct {
	Figure core.ComponentID
	Path   []Pos

	// start is where the figure stood when the move was first rendered or
	// executed. It only feeds Describe and takes no part in Equal or Hash.
	start *Pos
}

func NewMove(fig core.ComponentID, path ...Pos) *Move {
	return &Move{Figure: fig, Path: append([]Pos(nil), path...)}
}

func (m *Move) Kind() core.Kind { return core.KindAtomic }

// Destination is the last square of the path.
func (m *Move) Destination() Pos { return m.Path[len(m.Path)-1] }

func (m *Move) CanExecute(s *core.State) bool { return m.check(s) == nil }

func (m *Move) check(s *core.State) error {
	if len(m.Path) == 0 {
		return core.Refusedf("move of figure %d has an empty path", m.Figure)
	}
	fig, err := figure(s, m.Figure)
	if err != nil {
		return err
	}
	if fig.Owner() != s.CurrentPlayer() {
		return core.Refusedf("figure %d belongs to player %d", m.Figure, fig.Owner())
	}
	if fig.Bool(CondImmobilized) {
		return core.Refusedf("figure %d is immobilized", m.Figure)
	}
	if len(m.Path) > fig.Int(PropMove) {
		return core.Refusedf("path of %d squares exceeds move %d", len(m.Path), fig.Int(PropMove))
	}
	b, err := boardOf(s)
	if err != nil {
		return err
	}
	at := positionOf(fig)
	for _, p := range m.Path {
		if !at.Adjacent(p) {
			return core.Refusedf("%s is not adjacent to %s", p, at)
		}
		if !b.Free(p) {
			return core.Refusedf("square %s is blocked", p)
		}
		at = p
	}
	return spendAction(s, false)
}

func (m *Move) Execute(s *core.State) error {
	if err := m.check(s); err != nil {
		return err
	}
	fig, _ := figure(s, m.Figure)
	b, err := boardOf(s)
	if err != nil {
		return err
	}
	from := positionOf(fig)
	if m.start == nil {
		m.start = &from
	}
	if err := b.vacate(from); err != nil {
		return err
	}
	if err := b.place(fig, m.Destination()); err != nil {
		return err
	}
	return spendAction(s, true)
}

func (m *Move) Copy() core.Action {
	c := &Move{Figure: m.Figure, Path: append([]Pos(nil), m.Path...)}
	if m.start != nil {
		st := *m.start
		c.start = &st
	}
	return c
}

func (m *Move) Equal(other core.Action) bool {
	o, ok := other.(*Move)
	if !ok || o.Figure != m.Figure || len(o.Path) != len(m.Path) {
		return false
	}
	for i := range m.Path {
		if m.Path[i] != o.Path[i] {
			return false
		}
	}
	return true
}

func (m *Move) Hash() uint64 {
	h := core.NewHasher().String("move").Int(int(m.Figure)).Int(len(m.Path))
	for _, p := range m.Path {
		h.Int(p.X).Int(p.Y)
	}
	return h.Sum()
}

func (m *Move) String() string {
	if len(m.Path) == 0 {
		return fmt.Sprintf("Move by %d nowhere", m.Figure)
	}
	return fmt.Sprintf("Move by %d to %s", m.Figure, m.Destination())
}

// Describe renders the compass heading of each step, e.g. "Move: N, NE". The
// start square is captured on the first call so the label stays stable after
// the move has been applied.
func (m *Move) Describe(s *core.State) string {
	if m.start == nil {
		fig, err := figure(s, m.Figure)
		if err != nil {
			return m.String()
		}
		from := positionOf(fig)
		m.start = &from
	}
	if len(m.Path) == 0 {
		return "Move: Nowhere"
	}
	dirs := make([]string, len(m.Path))
	at := *m.start
	for i, p := range m.Path {
		dirs[i] = compass(at, p)
		at = p
	}
	return "Move: " + strings.Join(dirs, ", ")
}
