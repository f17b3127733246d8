package subscribers

import (
	"encoding/json"

	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/events"
	"github.com/rs/zerolog"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Int("turn", event.Turn()).
		Int("round", event.Round()).
		Logger()

	var logEvent *zerolog.Event
	switch ls.logLevel {
	case zerolog.DebugLevel:
		logEvent = eventLogger.Debug()
	case zerolog.InfoLevel:
		logEvent = eventLogger.Info()
	case zerolog.WarnLevel:
		logEvent = eventLogger.Warn()
	case zerolog.ErrorLevel:
		logEvent = eventLogger.Error()
	default:
		logEvent = eventLogger.Info()
	}

	switch e := event.(type) {
	case *events.GameStartedEvent:
		logEvent.
			Int("num_players", e.NumPlayers).
			Uint64("seed", e.Seed)

	case *events.GameEndedEvent:
		results := make([]string, len(e.Results))
		for i, r := range e.Results {
			results[i] = r.String()
		}
		logEvent.
			Int("winner", e.Winner).
			Strs("results", results)

	case *events.TurnEndedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Int("next_player", e.NextPlayer)

	case *events.RoundEndedEvent:
		logEvent.Int("completed_round", e.Completed)

	case *events.ActionAppliedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Str("action", e.Action).
			Str("kind", e.Kind.String())

	case *events.ActionRefusedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Str("action", e.Action).
			Str("reason", e.Reason)

	case *events.SequenceStartedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Str("sequence", e.Sequence).
			Int("depth", e.Depth)

	case *events.SequencePhaseEvent:
		logEvent.
			Str("sequence", e.Sequence).
			Str("from", e.From).
			Str("to", e.To)

	case *events.InterruptOfferedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Str("sequence", e.Sequence).
			Str("phase", e.Phase)

	case *events.SequenceCompletedEvent:
		logEvent.
			Str("sequence", e.Sequence).
			Int("depth", e.Depth)

	case *events.MacroStepEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Int("step", e.Step).
			Int("steps", e.Steps)

	case *events.MacroRefusedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Int("step", e.Step).
			Str("reason", e.Reason)
	}

	// In dev mode, also log the full event as JSON
	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Game event")
}
