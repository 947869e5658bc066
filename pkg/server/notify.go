package server

import (
	"github.com/crystal-mush/mushmatch/pkg/events"
	"github.com/crystal-mush/mushmatch/pkg/gamedb"
)

// BusNotifier delivers player messages as events on a bus, so console
// sessions and audit subscribers share one delivery path.
type BusNotifier struct {
	Bus *events.Bus
}

func (n *BusNotifier) SendToPlayer(player gamedb.DBRef, msg string) {
	n.Bus.Emit(events.Event{Type: events.EvNotify, Player: player, Text: msg})
}

// NewBusGame creates a Game wired to an event bus for both player
// notification and resolution auditing.
func NewBusGame(db *gamedb.Database, bus *events.Bus) *Game {
	g := NewGame(db)
	g.Bus = bus
	g.Notifier = &BusNotifier{Bus: bus}
	return g
}
