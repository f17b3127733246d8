package skirmish

import (
	"fmt"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/common"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/sequence"
)

// Attack phases, in order.
const (
	PhaseNotStarted sequence.Phase = iota
	PhasePreRoll
	PhasePostRoll
	PhaseBonusDecision
	PhasePreDefenceRoll
	PhasePostDefenceRoll
	PhasePreDamage
	PhasePostDamage
	PhaseNextTarget
	PhaseAllDone
)

// Interrupt triggers offered during an attack.
const (
	TriggerStart sequence.Trigger = iota + 1
	TriggerReroll
	TriggerBonus
	TriggerOtherRoll
	TriggerOwnRoll
	TriggerTakeDamage
)

var attackPhases = sequence.NewTable(
	sequence.PhaseSpec{Name: "not-started"},
	sequence.PhaseSpec{Name: "pre-roll", Trigger: TriggerStart, Interrupters: sequence.Target},
	sequence.PhaseSpec{Name: "post-roll", Trigger: TriggerReroll, Interrupters: sequence.Initiator},
	sequence.PhaseSpec{Name: "bonus-decision", Trigger: TriggerBonus, Interrupters: sequence.Initiator},
	sequence.PhaseSpec{Name: "pre-defence-roll", Trigger: TriggerOtherRoll, Interrupters: sequence.Target},
	sequence.PhaseSpec{Name: "post-defence-roll", Trigger: TriggerOwnRoll, Interrupters: sequence.Target},
	sequence.PhaseSpec{Name: "pre-damage", Trigger: TriggerTakeDamage, Interrupters: sequence.Target},
	sequence.PhaseSpec{Name: "post-damage", Trigger: TriggerOwnRoll, Interrupters: sequence.Target},
	sequence.PhaseSpec{Name: "next-target"},
	sequence.PhaseSpec{Name: "all-done"},
).WithLoopBack(PhaseNextTarget, PhasePreRoll)

// AttackTable exposes the attack phase table.
func AttackTable() *sequence.Table { return attackPhases }

// Resolution records how the attack went against one target.
type Resolution struct {
	Target   core.ComponentID
	Damage   int
	Missed   bool
	Defeated bool
}

// bonuses are the totals gathered from interrupts against the current target.
type bonuses struct {
	surges     int
	rangeBonus int
	damage     int
	defence    int
	pierce     int
	mending    int
	stun       bool
	poison     bool
	immobilize bool
}

// MeleeAttack resolves an attack by one figure against one or more adjacent
// enemies, in order. Each target gets the full roll/defend/damage run; the
// next-target phase loops back to pre-roll with fresh totals.
type MeleeAttack struct {
	Attacker core.ComponentID
	Targets  []core.ComponentID

	params  *Params
	cursor  sequence.Cursor
	current int
	attack  Pool
	defence Pool
	bonus   bonuses
	damage  int
	results []Resolution

	// labels caches figure names for Describe once the figures may be gone.
	labels *attackLabels
}

type attackLabels struct {
	attacker string
	targets  []string
}

// NewMeleeAttack builds an attack. More than one target needs Params.Cleave.
func NewMeleeAttack(p *Params, attacker core.ComponentID, targets ...core.ComponentID) *MeleeAttack {
	return &MeleeAttack{
		Attacker: attacker,
		Targets:  append([]core.ComponentID(nil), targets...),
		params:   p,
	}
}

func (m *MeleeAttack) Kind() core.Kind            { return core.KindSequence }
func (m *MeleeAttack) Table() *sequence.Table     { return attackPhases }
func (m *MeleeAttack) Cursor() *sequence.Cursor   { return &m.cursor }
func (m *MeleeAttack) PhaseName() string          { return attackPhases.Name(m.cursor.Phase()) }
func (m *MeleeAttack) Complete() bool             { return sequence.Done(m) }
func (m *MeleeAttack) Results() []Resolution      { return append([]Resolution(nil), m.results...) }
func (m *MeleeAttack) Defender() core.ComponentID { return m.Targets[m.current] }

// Damage is the pending damage against the current target.
func (m *MeleeAttack) Damage() int { return m.damage }

// AttackPool and DefencePool return the current rolls.
func (m *MeleeAttack) AttackPool() Pool  { return m.attack }
func (m *MeleeAttack) DefencePool() Pool { return m.defence }

// Surges is the number of unspent surges.
func (m *MeleeAttack) Surges() int { return m.bonus.surges }

// Missed reports whether the attack roll failed against the current target.
func (m *MeleeAttack) Missed() bool {
	if !m.attack.Rolled {
		return false
	}
	return m.effectiveRange() < 0 || m.attack.Damage == 0
}

func (m *MeleeAttack) effectiveRange() int {
	r := m.attack.EffectiveRange()
	if r < 0 {
		return r
	}
	return r + m.bonus.rangeBonus
}

// reduceDamage lowers pending damage, never below zero.
func (m *MeleeAttack) reduceDamage(n int) {
	m.damage = common.Max(0, m.damage-n)
}

func (m *MeleeAttack) CanExecute(s *core.State) bool { return m.check(s) == nil }

func (m *MeleeAttack) check(s *core.State) error {
	if m.cursor.Started() {
		return core.Refusedf("%s has already been executed", m)
	}
	if len(m.Targets) == 0 {
		return core.Refusedf("%s has no target", m)
	}
	if len(m.Targets) > 1 && !m.params.Cleave {
		return core.Refusedf("%s: multi-target attacks are disabled", m)
	}
	att, err := figure(s, m.Attacker)
	if err != nil {
		return err
	}
	if att.Owner() != s.CurrentPlayer() {
		return core.Refusedf("figure %d belongs to player %d", m.Attacker, att.Owner())
	}
	if att.Bool(CondStunned) {
		return core.Refusedf("figure %d is stunned", m.Attacker)
	}
	seen := make(map[core.ComponentID]bool, len(m.Targets))
	for _, id := range m.Targets {
		if seen[id] {
			return core.Refusedf("%s names target %d twice", m, id)
		}
		seen[id] = true
		def, err := figure(s, id)
		if err != nil {
			return err
		}
		if def.Owner() == att.Owner() {
			return core.Refusedf("figure %d is not an enemy", id)
		}
		if !positionOf(att).Adjacent(positionOf(def)) {
			return core.Refusedf("figure %d is out of reach", id)
		}
	}
	return spendAction(s, false)
}

// Execute spends an action and runs the attack until the first interrupt
// window or its end.
func (m *MeleeAttack) Execute(s *core.State) error {
	if err := m.check(s); err != nil {
		return err
	}
	att, _ := figure(s, m.Attacker)
	def, _ := figure(s, m.Defender())
	m.label(s)
	if err := spendAction(s, true); err != nil {
		return err
	}
	return sequence.Start(s, m, att.Owner(), def.Owner())
}

func (m *MeleeAttack) DecisionMaker(s *core.State) int { return m.cursor.Interrupter() }

func (m *MeleeAttack) AvailableActions(s *core.State) ([]core.Action, error) {
	return sequence.Available(s, m)
}

func (m *MeleeAttack) AfterAction(s *core.State, _ core.Action) error {
	if m.Complete() {
		return nil
	}
	return sequence.Advance(s, m)
}

// WindowOpen closes the bonus window once every surge is spent.
func (m *MeleeAttack) WindowOpen(s *core.State, p sequence.Phase) bool {
	switch p {
	case PhaseBonusDecision:
		return m.bonus.surges > 0
	case PhasePreDamage:
		return m.damage > 0
	}
	return true
}

func (m *MeleeAttack) ExecutePhase(s *core.State) (sequence.Phase, error) {
	switch ph := m.cursor.Phase(); ph {
	case PhasePreRoll:
		att, err := figure(s, m.Attacker)
		if err != nil {
			return ph, core.Invariantf("attack roll", "%v", err)
		}
		m.attack = rollPool(s.Rand(), m.params.AttackDie, att.Int(PropAttackDice))
		return PhasePostRoll, nil

	case PhasePostRoll:
		if m.params.Surges && !m.attack.Missed {
			m.bonus.surges = m.attack.Surge
		}
		if m.bonus.surges > 0 {
			return PhaseBonusDecision, nil
		}
		return PhasePreDefenceRoll, nil

	case PhaseBonusDecision:
		// Unspent surges are lost.
		m.bonus.surges = 0
		return PhasePreDefenceRoll, nil

	case PhasePreDefenceRoll:
		if m.Missed() {
			m.results = append(m.results, Resolution{Target: m.Defender(), Missed: true})
			return m.afterTarget(s), nil
		}
		def, err := figure(s, m.Defender())
		if err != nil {
			return ph, core.Invariantf("defence roll", "%v", err)
		}
		if n := def.Int(PropDefenceDice); n > 0 {
			m.defence = rollPool(s.Rand(), m.params.DefenceDie, n)
		} else {
			m.defence = Pool{Rolled: true}
		}
		return PhasePostDefenceRoll, nil

	case PhasePostDefenceRoll:
		shield := common.Max(0, m.defence.Shield+m.bonus.defence-m.bonus.pierce)
		m.damage = common.Max(m.attack.Damage+m.bonus.damage-shield, 0)
		return PhasePreDamage, nil

	case PhasePreDamage:
		return PhasePostDamage, nil

	case PhasePostDamage:
		if err := m.applyDamage(s); err != nil {
			return ph, err
		}
		return m.afterTarget(s), nil

	case PhaseNextTarget:
		return m.nextTarget(s), nil

	default:
		return ph, core.Invariantf("melee attack", "phase %s has no effect", attackPhases.Name(ph))
	}
}

func (m *MeleeAttack) applyDamage(s *core.State) error {
	def, err := figure(s, m.Defender())
	if err != nil {
		return core.Invariantf("apply damage", "%v", err)
	}
	b, err := boardOf(s)
	if err != nil {
		return err
	}
	res := Resolution{Target: def.ID(), Damage: m.damage}
	if health := def.Int(PropHealth); health-m.damage <= 0 {
		if err := b.vacate(positionOf(def)); err != nil {
			return err
		}
		clearConditions(def)
		if err := s.Registry().Remove(def.ID()); err != nil {
			return core.Invariantf("apply damage", "%v", err)
		}
		res.Defeated = true
	} else {
		if m.damage > 0 {
			if m.bonus.stun {
				def.SetBool(CondStunned, true)
			}
			if m.bonus.poison {
				def.SetBool(CondPoisoned, true)
			}
			if m.bonus.immobilize {
				def.SetBool(CondImmobilized, true)
			}
		}
		def.SetInt(PropHealth, common.Max(health-m.damage, 0))
	}

	if m.bonus.mending > 0 {
		if att, ok := s.Registry().Get(m.Attacker); ok {
			att.SetInt(PropHealth, common.Clamp(att.Int(PropHealth)+m.bonus.mending, 0, att.Int(PropMaxHealth)))
		}
	}
	m.results = append(m.results, res)
	return nil
}

// afterTarget leaves the attack, or moves on when a later target is still standing.
func (m *MeleeAttack) afterTarget(s *core.State) sequence.Phase {
	for _, id := range m.Targets[m.current+1:] {
		if s.Registry().Contains(id) {
			return PhaseNextTarget
		}
	}
	return PhaseAllDone
}

func (m *MeleeAttack) nextTarget(s *core.State) sequence.Phase {
	for i := m.current + 1; i < len(m.Targets); i++ {
		def, ok := s.Registry().Get(m.Targets[i])
		if !ok {
			continue
		}
		m.current = i
		m.attack, m.defence = Pool{}, Pool{}
		m.bonus = bonuses{}
		m.damage = 0
		m.cursor.ResetUsed()
		m.cursor.SetTarget(def.Owner())
		return PhasePreRoll
	}
	return PhaseAllDone
}

func (m *MeleeAttack) InterruptActions(s *core.State, player int, trigger sequence.Trigger) []core.Action {
	ph := m.cursor.Phase()
	var out []core.Action
	switch trigger {
	case TriggerStart, TriggerOtherRoll:
		for _, tok := range s.Registry().OwnedBy(player, TypeToken) {
			if tok.Name() == guardToken {
				out = append(out, &Guard{Player: player, Phase: ph, Token: tok.ID()})
			}
		}
	case TriggerReroll, TriggerOwnRoll:
		if !m.params.Rerolls {
			break
		}
		if ph == PhasePostRoll || ph == PhasePostDefenceRoll {
			out = append(out, &Reroll{Player: player, Phase: ph})
		}
	case TriggerBonus:
		for _, k := range SurgeKinds {
			out = append(out, &Surge{Player: player, Figure: m.Attacker, Effect: k})
		}
	case TriggerTakeDamage:
		for _, it := range s.Registry().OwnedBy(player, TypeItem) {
			if it.Int(PropShield) > 0 && !it.Bool(PropExhausted) {
				out = append(out, &UseShield{Player: player, Item: it.ID()})
			}
		}
	}
	return out
}

func (m *MeleeAttack) Copy() core.Action {
	c := *m
	c.Targets = append([]core.ComponentID(nil), m.Targets...)
	c.cursor = m.cursor.Copy()
	c.results = append([]Resolution(nil), m.results...)
	if m.labels != nil {
		l := *m.labels
		l.targets = append([]string(nil), m.labels.targets...)
		c.labels = &l
	}
	return &c
}

func (m *MeleeAttack) Equal(other core.Action) bool {
	o, ok := other.(*MeleeAttack)
	if !ok || o.Attacker != m.Attacker || len(o.Targets) != len(m.Targets) || len(o.results) != len(m.results) {
		return false
	}
	for i := range m.Targets {
		if o.Targets[i] != m.Targets[i] {
			return false
		}
	}
	for i := range m.results {
		if o.results[i] != m.results[i] {
			return false
		}
	}
	return o.current == m.current && o.attack == m.attack && o.defence == m.defence &&
		o.bonus == m.bonus && o.damage == m.damage && m.cursor.Equal(&o.cursor)
}

func (m *MeleeAttack) Hash() uint64 {
	h := core.NewHasher().String("melee").Int(int(m.Attacker)).Int(len(m.Targets))
	for _, id := range m.Targets {
		h.Int(int(id))
	}
	h.Int(m.current).Int(m.damage)
	m.attack.hashInto(h)
	m.defence.hashInto(h)
	b := m.bonus
	h.Int(b.surges).Int(b.rangeBonus).Int(b.damage).Int(b.defence).Int(b.pierce).Int(b.mending)
	h.Bool(b.stun).Bool(b.poison).Bool(b.immobilize)
	h.Int(len(m.results))
	for _, r := range m.results {
		h.Int(int(r.Target)).Int(r.Damage).Bool(r.Missed).Bool(r.Defeated)
	}
	m.cursor.HashInto(h)
	return h.Sum()
}

func (m *MeleeAttack) String() string {
	return fmt.Sprintf("MeleeAttack(%d -> %v)", m.Attacker, m.Targets)
}

// Describe names the figures involved. Names are captured once, since the
// targets may have been removed by the time the label is read again.
func (m *MeleeAttack) Describe(s *core.State) string {
	m.label(s)
	if len(m.labels.targets) == 1 {
		return fmt.Sprintf("Melee Attack by %s on %s", m.labels.attacker, m.labels.targets[0])
	}
	return fmt.Sprintf("Multi Attack by %s on %v", m.labels.attacker, m.labels.targets)
}

func (m *MeleeAttack) label(s *core.State) {
	if m.labels != nil {
		return
	}
	name := func(id core.ComponentID) string {
		if c, ok := s.Registry().Get(id); ok {
			return c.Name()
		}
		return fmt.Sprintf("figure %d", id)
	}
	l := &attackLabels{attacker: name(m.Attacker)}
	for _, id := range m.Targets {
		l.targets = append(l.targets, name(id))
	}
	m.labels = l
}
