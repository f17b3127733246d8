package skirmish

import (
	"fmt"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
)

// Face is one side of a die.
type Face struct {
	Range  int
	Damage int
	Surge  int
	Shield int
	Miss   bool
}

var (
	// BlueDie is the standard attack die: one miss, range 2 to 6.
	BlueDie = []Face{
		{Miss: true},
		{Range: 2, Damage: 2, Surge: 1},
		{Range: 3, Damage: 2},
		{Range: 4, Damage: 2},
		{Range: 5, Damage: 1},
		{Range: 6, Damage: 1, Surge: 1},
	}

	BrownDie = []Face{{}, {}, {}, {Shield: 1}, {Shield: 1}, {Shield: 2}}
	GreyDie  = []Face{{}, {Shield: 1}, {Shield: 1}, {Shield: 1}, {Shield: 2}, {Shield: 3}}
)

// DieNamed looks a die up by colour: "blue", "brown" or "grey".
func DieNamed(name string) ([]Face, bool) {
	switch name {
	case "blue":
		return BlueDie, true
	case "brown":
		return BrownDie, true
	case "grey":
		return GreyDie, true
	default:
		return nil, false
	}
}

// Pool is the summed result of a roll.
type Pool struct {
	Dice   int
	Range  int
	Damage int
	Surge  int
	Shield int
	Missed bool
	Rolled bool
}

func rollPool(r *core.Random, die []Face, n int) Pool {
	p := Pool{Dice: n, Rolled: true}
	for i := 0; i < n; i++ {
		f := die[r.Roll(len(die))]
		p.Range += f.Range
		p.Damage += f.Damage
		p.Surge += f.Surge
		p.Shield += f.Shield
		p.Missed = p.Missed || f.Miss
	}
	return p
}

// EffectiveRange is -1 once any die shows a miss.
func (p Pool) EffectiveRange() int {
	if p.Missed {
		return -1
	}
	return p.Range
}

func (p Pool) hashInto(h *core.Hasher) {
	h.Int(p.Dice).Int(p.Range).Int(p.Damage).Int(p.Surge).Int(p.Shield).Bool(p.Missed).Bool(p.Rolled)
}

func (p Pool) String() string {
	if !p.Rolled {
		return "unrolled"
	}
	if p.Missed {
		return fmt.Sprintf("%dd: miss", p.Dice)
	}
	return fmt.Sprintf("%dd: range %d, damage %d, surge %d, shield %d", p.Dice, p.Range, p.Damage, p.Surge, p.Shield)
}
