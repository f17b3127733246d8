package events

import "github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"

// Event type constants
const (
	TypeGameStarted       = "game.started"
	TypeGameEnded         = "game.ended"
	TypeTurnEnded         = "turn.ended"
	TypeRoundEnded        = "round.ended"
	TypeActionApplied     = "action.applied"
	TypeActionRefused     = "action.refused"
	TypeSequenceStarted   = "sequence.started"
	TypeSequencePhase     = "sequence.phase"
	TypeInterruptOffered  = "interrupt.offered"
	TypeSequenceCompleted = "sequence.completed"
	TypeMacroStep         = "macro.step"
	TypeMacroRefused      = "macro.refused"
)

// Clock locates an event in game time.
type Clock struct {
	Game  string
	Turn  int
	Round int
}

func (c Clock) base(eventType string) BaseEvent {
	return BaseEvent{EventType: eventType, Game: c.Game, TurnNum: c.Turn, RoundNum: c.Round}
}

// GameStartedEvent is published when a new game begins
type GameStartedEvent struct {
	BaseEvent
	NumPlayers int
	Seed       uint64
}

func NewGameStartedEvent(c Clock, numPlayers int, seed uint64) *GameStartedEvent {
	return &GameStartedEvent{BaseEvent: c.base(TypeGameStarted), NumPlayers: numPlayers, Seed: seed}
}

// GameEndedEvent is published once when the state becomes terminal
type GameEndedEvent struct {
	BaseEvent
	Winner  int
	Results []core.Result
}

func NewGameEndedEvent(c Clock, winner int, results []core.Result) *GameEndedEvent {
	return &GameEndedEvent{BaseEvent: c.base(TypeGameEnded), Winner: winner, Results: results}
}

// TurnEndedEvent is published when the nominal turn passes to another player
type TurnEndedEvent struct {
	BaseEvent
	PlayerID   int
	NextPlayer int
}

func NewTurnEndedEvent(c Clock, player, next int) *TurnEndedEvent {
	return &TurnEndedEvent{BaseEvent: c.base(TypeTurnEnded), PlayerID: player, NextPlayer: next}
}

// RoundEndedEvent is published when a new round begins
type RoundEndedEvent struct {
	BaseEvent
	Completed int
}

func NewRoundEndedEvent(c Clock, completed int) *RoundEndedEvent {
	return &RoundEndedEvent{BaseEvent: c.base(TypeRoundEnded), Completed: completed}
}

// ActionAppliedEvent is published after an action has been executed
type ActionAppliedEvent struct {
	BaseEvent
	PlayerID int
	Action   string
	Kind     core.Kind
}

func NewActionAppliedEvent(c Clock, player int, action core.Action) *ActionAppliedEvent {
	return &ActionAppliedEvent{
		BaseEvent: c.base(TypeActionApplied),
		PlayerID:  player,
		Action:    action.String(),
		Kind:      action.Kind(),
	}
}

// ActionRefusedEvent is published when an action was refused without effect
type ActionRefusedEvent struct {
	BaseEvent
	PlayerID int
	Action   string
	Reason   string
}

func NewActionRefusedEvent(c Clock, player int, action core.Action, reason error) *ActionRefusedEvent {
	return &ActionRefusedEvent{
		BaseEvent: c.base(TypeActionRefused),
		PlayerID:  player,
		Action:    action.String(),
		Reason:    reason.Error(),
	}
}

// SequenceStartedEvent is published when an extended sequence is pushed
type SequenceStartedEvent struct {
	BaseEvent
	PlayerID int
	Sequence string
	Depth    int
}

func NewSequenceStartedEvent(c Clock, player int, seq string, depth int) *SequenceStartedEvent {
	return &SequenceStartedEvent{BaseEvent: c.base(TypeSequenceStarted), PlayerID: player, Sequence: seq, Depth: depth}
}

// SequencePhaseEvent is published when the active sequence changed phase
type SequencePhaseEvent struct {
	BaseEvent
	Sequence string
	From     string
	To       string
}

func NewSequencePhaseEvent(c Clock, seq, from, to string) *SequencePhaseEvent {
	return &SequencePhaseEvent{BaseEvent: c.base(TypeSequencePhase), Sequence: seq, From: from, To: to}
}

// InterruptOfferedEvent is published when a sequence stops for a player's decision
type InterruptOfferedEvent struct {
	BaseEvent
	PlayerID int
	Sequence string
	Phase    string
}

func NewInterruptOfferedEvent(c Clock, player int, seq, phase string) *InterruptOfferedEvent {
	return &InterruptOfferedEvent{BaseEvent: c.base(TypeInterruptOffered), PlayerID: player, Sequence: seq, Phase: phase}
}

// SequenceCompletedEvent is published when a sequence reached its terminal phase
type SequenceCompletedEvent struct {
	BaseEvent
	Sequence string
	Depth    int
}

func NewSequenceCompletedEvent(c Clock, seq string, depth int) *SequenceCompletedEvent {
	return &SequenceCompletedEvent{BaseEvent: c.base(TypeSequenceCompleted), Sequence: seq, Depth: depth}
}

// MacroStepEvent is published after a macro step has been replayed
type MacroStepEvent struct {
	BaseEvent
	PlayerID int
	Step     int
	Steps    int
}

func NewMacroStepEvent(c Clock, player, step, steps int) *MacroStepEvent {
	return &MacroStepEvent{BaseEvent: c.base(TypeMacroStep), PlayerID: player, Step: step, Steps: steps}
}

// MacroRefusedEvent is published when a macro step no longer matches the state
type MacroRefusedEvent struct {
	BaseEvent
	PlayerID int
	Step     int
	Reason   string
}

func NewMacroRefusedEvent(c Clock, player, step int, reason error) *MacroRefusedEvent {
	return &MacroRefusedEvent{BaseEvent: c.base(TypeMacroRefused), PlayerID: player, Step: step, Reason: reason.Error()}
}
