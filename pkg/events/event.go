package events

import "github.com/crystal-mush/mushmatch/pkg/gamedb"

// EventType classifies events for subscriber-specific handling.
type EventType int

const (
	EvText      EventType = iota // Raw text (universal fallback)
	EvNotify                     // Feedback message to a single player
	EvResolve                    // A completed name resolution
	EvRoom                       // Text broadcast within a room
	EvObjUpdate                  // Object changed or persisted
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EvText:
		return "text"
	case EvNotify:
		return "notify"
	case EvResolve:
		return "resolve"
	case EvRoom:
		return "room"
	case EvObjUpdate:
		return "obj_update"
	default:
		return "unknown"
	}
}

// Event is a structured game event that flows through the bus. Console
// subscribers print Text; audit subscribers read the structured fields.
type Event struct {
	Type    EventType
	Player  gamedb.DBRef   // Recipient (Nothing for broadcast)
	Source  gamedb.DBRef   // Who triggered the event
	Room    gamedb.DBRef   // Room context
	Query   string         // Raw name being resolved (EvResolve)
	Outcome string         // Resolution outcome label (EvResolve)
	Ref     gamedb.DBRef   // Resolved object (EvResolve, EvObjUpdate)
	Text    string         // Pre-formatted text
	Data    map[string]any // Structured data for richer subscribers
}
