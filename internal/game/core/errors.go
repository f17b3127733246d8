package core

import (
	"errors"
	"fmt"
)

var (
	ErrGameOver           = errors.New("game is over")
	ErrInvalidPlayer      = errors.New("invalid player ID")
	ErrUnknownComponent   = errors.New("unknown component")
	ErrNotDecisionMaker   = errors.New("player is not the current decision maker")
	ErrEmptyStack         = errors.New("no extended sequence in progress")
	ErrPropertyKind       = errors.New("property has a different kind")
	ErrInvalidPlayerCount = errors.New("player count must be positive")

	// ErrRefused marks an expected, recoverable refusal. State is left untouched.
	ErrRefused = errors.New("action refused")

	// ErrInvariant marks an engine or rule-logic bug. It is never a player mistake.
	ErrInvariant = errors.New("engine invariant violated")
)

// InvariantError is returned when the engine detects a programming error,
// e.g. a one-shot effect registered twice or a phase that should be unreachable.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvariant, e.Op, e.Detail)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

// Invariantf builds an InvariantError for the given operation.
func Invariantf(op, format string, args ...interface{}) error {
	return &InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// Refusedf builds an error wrapping ErrRefused.
func Refusedf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrRefused, fmt.Sprintf(format, args...))
}

// IsFatal reports whether err signals an engine invariant violation.
func IsFatal(err error) bool { return errors.Is(err, ErrInvariant) }

// IsRefused reports whether err is a recoverable refusal.
func IsRefused(err error) bool { return errors.Is(err, ErrRefused) }

// WrapActionError adds the acting player and a short action label to err.
func WrapActionError(player int, action Action, err error) error {
	if err == nil {
		return nil
	}
	if action == nil {
		return fmt.Errorf("player action: %w", err)
	}
	return fmt.Errorf("player %d: %s: %w", player, action, err)
}

// WrapGameStateError adds turn and phase context to err.
func WrapGameStateError(turn int, phase string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("game turn %d [%s]: %w", turn, phase, err)
}

// WrapPlayerError adds player and operation context to err.
func WrapPlayerError(player int, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("player %d %s: %w", player, operation, err)
}

// GameError is a structured error carrying round, player and operation.
type GameError struct {
	Round     int
	PlayerID  int
	Operation string
	Err       error
}

func (e *GameError) Error() string {
	if e.PlayerID >= 0 {
		return fmt.Sprintf("round %d: player %d %s: %v", e.Round, e.PlayerID, e.Operation, e.Err)
	}
	return fmt.Sprintf("round %d: %s: %v", e.Round, e.Operation, e.Err)
}

func (e *GameError) Unwrap() error { return e.Err }

// NewGameError creates a GameError. Pass a negative player for game-level errors.
func NewGameError(round, playerID int, operation string, err error) *GameError {
	return &GameError{Round: round, PlayerID: playerID, Operation: operation, Err: err}
}
