package skirmish

import (
	"fmt"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/sequence"
)

// attackWindow returns the attack whose window at phase is polling player.
func attackWindow(s *core.State, player int, phase sequence.Phase) (*MeleeAttack, error) {
	m, ok := s.ActiveSequence().(*MeleeAttack)
	if !ok {
		return nil, core.Refusedf("no melee attack is in progress")
	}
	c := m.Cursor()
	if c.Phase() != phase || c.Interrupter() != player {
		return nil, core.Refusedf("player %d has no window at %s", player, attackPhases.Name(phase))
	}
	return m, nil
}

// Guard spends a guard token for +1 defence against the current attack.
type Guard struct {
	Player int
	Phase  sequence.Phase
	Token  core.ComponentID
}

func (g *Guard) Kind() core.Kind           { return core.KindAtomic }
func (g *Guard) OneShot() sequence.OneShot { return "guard" }

func (g *Guard) Execute(s *core.State) error {
	m, err := attackWindow(s, g.Player, g.Phase)
	if err != nil {
		return err
	}
	tok, ok := s.Registry().Get(g.Token)
	if !ok || tok.Type() != TypeToken || tok.Owner() != g.Player {
		return core.Refusedf("player %d holds no guard token %d", g.Player, g.Token)
	}
	if err := m.cursor.Register(g.OneShot()); err != nil {
		return err
	}
	m.bonus.defence++
	return s.Registry().Remove(tok.ID())
}

func (g *Guard) Copy() core.Action {
	c := *g
	return &c
}

func (g *Guard) Equal(other core.Action) bool {
	o, ok := other.(*Guard)
	return ok && *o == *g
}

func (g *Guard) Hash() uint64 {
	return core.NewHasher().String("guard").Int(g.Player).Int(int(g.Phase)).Int(int(g.Token)).Sum()
}

func (g *Guard) String() string {
	return fmt.Sprintf("Guard(player %d, token %d)", g.Player, g.Token)
}

func (g *Guard) Describe(s *core.State) string {
	return fmt.Sprintf("Player %d braces with a guard token", g.Player)
}

// Reroll rolls the attack pool again after post-roll, or the defence pool
// after post-defence-roll.
type Reroll struct {
	Player int
	Phase  sequence.Phase
}

func (r *Reroll) Kind() core.Kind { return core.KindAtomic }

func (r *Reroll) OneShot() sequence.OneShot {
	if r.Phase == PhasePostRoll {
		return "reroll:attack"
	}
	return "reroll:defence"
}

func (r *Reroll) Execute(s *core.State) error {
	m, err := attackWindow(s, r.Player, r.Phase)
	if err != nil {
		return err
	}
	var (
		id   core.ComponentID
		die  []Face
		prop string
	)
	switch r.Phase {
	case PhasePostRoll:
		id, die, prop = m.Attacker, m.params.AttackDie, PropAttackDice
	case PhasePostDefenceRoll:
		id, die, prop = m.Defender(), m.params.DefenceDie, PropDefenceDice
	default:
		return core.Refusedf("nothing to reroll at %s", attackPhases.Name(r.Phase))
	}
	fig, err := figure(s, id)
	if err != nil {
		return err
	}
	if err := m.cursor.Register(r.OneShot()); err != nil {
		return err
	}
	pool := Pool{Rolled: true}
	if n := fig.Int(prop); n > 0 {
		pool = rollPool(s.Rand(), die, n)
	}
	if r.Phase == PhasePostRoll {
		m.attack = pool
	} else {
		m.defence = pool
	}
	return nil
}

func (r *Reroll) Copy() core.Action {
	c := *r
	return &c
}

func (r *Reroll) Equal(other core.Action) bool {
	o, ok := other.(*Reroll)
	return ok && *o == *r
}

func (r *Reroll) Hash() uint64 {
	return core.NewHasher().String("reroll").Int(r.Player).Int(int(r.Phase)).Sum()
}

func (r *Reroll) String() string {
	return fmt.Sprintf("Reroll(%s, player %d)", r.OneShot(), r.Player)
}

func (r *Reroll) Describe(s *core.State) string {
	if r.Phase == PhasePostRoll {
		return fmt.Sprintf("Player %d rerolls the attack dice", r.Player)
	}
	return fmt.Sprintf("Player %d rerolls the defence dice", r.Player)
}

// SurgeEffect is what a spent surge buys.
type SurgeEffect int

const (
	SurgeDamage SurgeEffect = iota
	SurgeRange
	SurgePierce
	SurgeStun
	SurgePoison
	SurgeImmobilize
	SurgeMending
)

// SurgeKinds lists every surge effect in menu order.
var SurgeKinds = []SurgeEffect{SurgeDamage, SurgeRange, SurgePierce, SurgeStun, SurgePoison, SurgeImmobilize, SurgeMending}

func (e SurgeEffect) String() string {
	switch e {
	case SurgeDamage:
		return "+1 Damage"
	case SurgeRange:
		return "+1 Range"
	case SurgePierce:
		return "+1 Pierce"
	case SurgeStun:
		return "Stun"
	case SurgePoison:
		return "Poison"
	case SurgeImmobilize:
		return "Immobilize"
	case SurgeMending:
		return "+1 Mending"
	default:
		return fmt.Sprintf("Unknown(%d)", int(e))
	}
}

// Surge spends one rolled surge on an effect. Each effect can be bought once
// per target.
type Surge struct {
	Player int
	Figure core.ComponentID
	Effect SurgeEffect
}

func (a *Surge) Kind() core.Kind { return core.KindAtomic }

func (a *Surge) OneShot() sequence.OneShot {
	return sequence.OneShot("surge:" + a.Effect.String())
}

// CanExecute requires the surge to come from the attacking figure.
func (a *Surge) CanExecute(s *core.State) bool {
	m, ok := s.ActiveSequence().(*MeleeAttack)
	return ok && m.Attacker == a.Figure
}

func (a *Surge) Execute(s *core.State) error {
	m, err := attackWindow(s, a.Player, PhaseBonusDecision)
	if err != nil {
		return err
	}
	if m.Attacker != a.Figure {
		return core.Refusedf("figure %d is not the attacker", a.Figure)
	}
	if m.bonus.surges <= 0 {
		return core.Refusedf("no surges left to spend")
	}
	if err := m.cursor.Register(a.OneShot()); err != nil {
		return err
	}
	m.bonus.surges--
	switch a.Effect {
	case SurgeDamage:
		m.bonus.damage++
	case SurgeRange:
		m.bonus.rangeBonus++
	case SurgePierce:
		m.bonus.pierce++
	case SurgeStun:
		m.bonus.stun = true
	case SurgePoison:
		m.bonus.poison = true
	case SurgeImmobilize:
		m.bonus.immobilize = true
	case SurgeMending:
		m.bonus.mending++
	default:
		return core.Invariantf("surge", "unknown effect %d", int(a.Effect))
	}
	return nil
}

func (a *Surge) Copy() core.Action {
	c := *a
	return &c
}

func (a *Surge) Equal(other core.Action) bool {
	o, ok := other.(*Surge)
	return ok && o.Figure == a.Figure && o.Effect == a.Effect && o.Player == a.Player
}

func (a *Surge) Hash() uint64 {
	return core.NewHasher().String("surge").Int(a.Player).Int(int(a.Figure)).Int(int(a.Effect)).Sum()
}

func (a *Surge) String() string { return fmt.Sprintf("Surge: %s by %d", a.Effect, a.Figure) }

func (a *Surge) Describe(s *core.State) string {
	if c, ok := s.Registry().Get(a.Figure); ok {
		return fmt.Sprintf("Surge: %s by %s", a.Effect, c.Name())
	}
	return a.String()
}

// UseShield exhausts a shield item to absorb pending damage.
type UseShield struct {
	Player int
	Item   core.ComponentID
}

func (u *UseShield) Kind() core.Kind { return core.KindAtomic }

func (u *UseShield) OneShot() sequence.OneShot {
	return sequence.OneShot(fmt.Sprintf("shield:%d", u.Item))
}

func (u *UseShield) Execute(s *core.State) error {
	m, err := attackWindow(s, u.Player, PhasePreDamage)
	if err != nil {
		return err
	}
	it, ok := s.Registry().Get(u.Item)
	if !ok || it.Type() != TypeItem || it.Owner() != u.Player {
		return core.Refusedf("player %d holds no item %d", u.Player, u.Item)
	}
	if it.Bool(PropExhausted) {
		return core.Refusedf("shield %d is exhausted", u.Item)
	}
	if err := m.cursor.Register(u.OneShot()); err != nil {
		return err
	}
	m.reduceDamage(it.Int(PropShield))
	it.SetBool(PropExhausted, true)
	return nil
}

func (u *UseShield) Copy() core.Action {
	c := *u
	return &c
}

func (u *UseShield) Equal(other core.Action) bool {
	o, ok := other.(*UseShield)
	return ok && *o == *u
}

func (u *UseShield) Hash() uint64 {
	return core.NewHasher().String("shield").Int(u.Player).Int(int(u.Item)).Sum()
}

func (u *UseShield) String() string {
	return fmt.Sprintf("UseShield(player %d, item %d)", u.Player, u.Item)
}

func (u *UseShield) Describe(s *core.State) string {
	if it, ok := s.Registry().Get(u.Item); ok {
		return fmt.Sprintf("Player %d raises %s (-%d damage)", u.Player, it.Name(), it.Int(PropShield))
	}
	return u.String()
}
