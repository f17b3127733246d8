// Package skirmish is a small dungeon-crawl rule set built on the forward
// model: figures on a grid move and trade melee attacks, and every attack is
// an interruptible sequence with rerolls, surges, guards and shields.
package skirmish

import (
	"errors"
	"fmt"
)

// Params are the tunable rules of a skirmish game. They are fixed for the
// lifetime of a Rules value and shared, read-only, by every action it builds.
type Params struct {
	Width            int
	Height           int
	FiguresPerPlayer int
	Health           int
	MovePoints       int
	AttackDice       int
	DefenceDice      int
	ActionsPerTurn   int
	MaxRounds        int // 0 for no limit
	ShieldValue      int // 0 gives players no shield
	GuardTokens      int
	Rerolls          bool
	Surges           bool
	Cleave           bool
	AttackDie        []Face
	DefenceDie       []Face
}

// DefaultParams returns a 7x7 board with two figures a side.
func DefaultParams() Params {
	return Params{
		Width:            7,
		Height:           7,
		FiguresPerPlayer: 2,
		Health:           5,
		MovePoints:       2,
		AttackDice:       1,
		DefenceDice:      1,
		ActionsPerTurn:   2,
		MaxRounds:        30,
		ShieldValue:      1,
		GuardTokens:      1,
		Rerolls:          true,
		Surges:           true,
		Cleave:           true,
		AttackDie:        BlueDie,
		DefenceDie:       BrownDie,
	}
}

var errInvalidParams = errors.New("invalid skirmish parameters")

// Validate checks p for a given player count.
func (p Params) Validate(players int) error {
	switch {
	case players < 2 || players > 4:
		return fmt.Errorf("%w: %d players, need 2 to 4", errInvalidParams, players)
	case p.Width < 3 || p.Height < 3:
		return fmt.Errorf("%w: board %dx%d is smaller than 3x3", errInvalidParams, p.Width, p.Height)
	case p.FiguresPerPlayer < 1:
		return fmt.Errorf("%w: figures per player must be positive", errInvalidParams)
	case p.Health < 1:
		return fmt.Errorf("%w: health must be positive", errInvalidParams)
	case p.MovePoints < 1 || p.ActionsPerTurn < 1:
		return fmt.Errorf("%w: move points and actions per turn must be positive", errInvalidParams)
	case p.AttackDice < 1 || p.DefenceDice < 0:
		return fmt.Errorf("%w: need at least one attack die", errInvalidParams)
	case len(p.AttackDie) == 0 || len(p.DefenceDie) == 0:
		return fmt.Errorf("%w: dice need at least one face", errInvalidParams)
	case p.MaxRounds < 0 || p.ShieldValue < 0 || p.GuardTokens < 0:
		return fmt.Errorf("%w: negative limit", errInvalidParams)
	}

	// Player 0 and 1 line up along the top and bottom rows, 2 and 3 along the
	// left and right columns, leaving the corners free.
	edge := p.Width - 2
	if players > 2 && p.Height-2 < edge {
		edge = p.Height - 2
	}
	if p.FiguresPerPlayer > edge {
		return fmt.Errorf("%w: %d figures do not fit on an edge of %d cells", errInvalidParams, p.FiguresPerPlayer, edge)
	}
	return nil
}
