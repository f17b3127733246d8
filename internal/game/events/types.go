package events

// Event is the base interface for all game events
type Event interface {
	// Type returns the event type as a string for filtering and logging
	Type() string
	// GameID returns the ID of the game this event belongs to
	GameID() string
	// Turn and Round locate the event in game time. There is no wall clock.
	Turn() int
	Round() int
}

// BaseEvent provides common fields for all events
type BaseEvent struct {
	EventType string `json:"type"`
	Game      string `json:"game_id"`
	TurnNum   int    `json:"turn"`
	RoundNum  int    `json:"round"`
}

func (e BaseEvent) Type() string   { return e.EventType }
func (e BaseEvent) GameID() string { return e.Game }
func (e BaseEvent) Turn() int      { return e.TurnNum }
func (e BaseEvent) Round() int     { return e.RoundNum }

// EventHandler is a function that processes events
type EventHandler func(Event)

// Subscriber represents an entity that can receive events
type Subscriber interface {
	// ID returns a unique identifier for this subscriber
	ID() string
	// HandleEvent processes an event
	HandleEvent(Event)
	// InterestedIn returns true if the subscriber wants to receive this event type
	InterestedIn(eventType string) bool
}

// Publisher is the interface for publishing events
type Publisher interface {
	// Publish sends an event to all interested subscribers
	Publish(Event)
}

// Bus is the main event bus interface
type Bus interface {
	Publisher
	// Subscribe adds a new subscriber to the event bus
	Subscribe(Subscriber)
	// Unsubscribe removes a subscriber from the event bus
	Unsubscribe(subscriberID string)
	// SubscribeFunc adds a function handler for specific event types
	SubscribeFunc(eventType string, handler EventHandler) string
}
