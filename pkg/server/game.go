// Package server holds the world state the resolver runs against: the
// in-memory object database, permission and lock predicates, player
// lookup, and the attribute-registered proxy registry.
package server

import (
	"fmt"
	"log"
	"strings"

	"github.com/crystal-mush/mushmatch/pkg/boltstore"
	"github.com/crystal-mush/mushmatch/pkg/events"
	"github.com/crystal-mush/mushmatch/pkg/gamedb"
)

// Notifier delivers messages to players. The resolver sends at most one
// failure message per call through this.
type Notifier interface {
	SendToPlayer(player gamedb.DBRef, msg string)
}

// Game is the world state container.
type Game struct {
	DB       *gamedb.Database
	Store    *boltstore.Store
	Notifier Notifier
	Bus      *events.Bus // optional, receives resolution audit events
	Metrics  *Metrics

	God    gamedb.DBRef // the God player
	Master gamedb.DBRef // the master room, searched for global exits

	ZoneNestLimit   int
	ParentNestLimit int
}

// NewGame creates a new Game instance over an in-memory database.
func NewGame(db *gamedb.Database) *Game {
	return &Game{
		DB:              db,
		God:             1,
		Master:          2,
		ZoneNestLimit:   20,
		ParentNestLimit: 10,
	}
}

// GodPlayer returns the dbref of the God player.
func (g *Game) GodPlayer() gamedb.DBRef {
	return g.God
}

// Notify sends a single message to a player through the configured
// notifier, if any.
func (g *Game) Notify(player gamedb.DBRef, msg string) {
	if g.Metrics != nil {
		g.Metrics.notifiesTotal.Inc()
	}
	if g.Notifier != nil {
		g.Notifier.SendToPlayer(player, msg)
	}
}

// GetAttrText returns the text of an attribute on an object, walking the
// parent chain for inherited values. AF_PRIVATE attributes don't inherit.
func (g *Game) GetAttrText(ref gamedb.DBRef, attrNum int) string {
	private := false
	if def, ok := g.DB.AttrNames[attrNum]; ok && def.Flags&gamedb.AFPrivate != 0 {
		private = true
	}
	cur := ref
	for depth := 0; depth <= g.ParentNestLimit; depth++ {
		if private && cur != ref {
			return ""
		}
		obj, ok := g.DB.Objects[cur]
		if !ok {
			return ""
		}
		if v := obj.GetAttr(attrNum); v != "" {
			return v
		}
		cur = obj.Parent
		if cur == gamedb.Nothing {
			return ""
		}
	}
	return ""
}

// PersistObject writes one object to the bolt store if one is attached.
func (g *Game) PersistObject(obj *gamedb.Object) {
	if g.Store == nil || obj == nil {
		return
	}
	if err := g.Store.PutObject(obj); err != nil {
		log.Printf("ERROR: persist object #%d: %v", obj.DBRef, err)
	}
}

// PersistObjects writes multiple objects to the bolt store in one transaction.
func (g *Game) PersistObjects(objs ...*gamedb.Object) {
	if g.Store == nil {
		return
	}
	if err := g.Store.PutObjects(objs...); err != nil {
		log.Printf("ERROR: persist objects: %v", err)
	}
}

// DisplayName returns the display name of an object (before the first
// semicolon). Object names can carry semicolon-separated aliases, as in
// "North;n;out"; only the first segment is the display name.
func DisplayName(name string) string {
	if idx := strings.IndexByte(name, ';'); idx >= 0 {
		return name[:idx]
	}
	return name
}

// SplitAliases splits a semicolon-separated alias list, dropping empty
// segments.
func SplitAliases(list string) []string {
	if list == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(list, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ObjName returns the display name of an object by dbref, or "#n" for a
// dead ref.
func (g *Game) ObjName(ref gamedb.DBRef) string {
	if obj, ok := g.DB.Objects[ref]; ok {
		return DisplayName(obj.Name)
	}
	return fmt.Sprintf("#%d", ref)
}
