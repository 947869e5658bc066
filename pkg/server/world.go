package server

import (
	"github.com/crystal-mush/mushmatch/pkg/events"
	"github.com/crystal-mush/mushmatch/pkg/gamedb"
	"github.com/crystal-mush/mushmatch/pkg/match"
)

// Ensure Game implements match.World.
var _ match.World = (*Game)(nil)

// Valid reports whether ref names a live database object.
func (g *Game) Valid(ref gamedb.DBRef) bool {
	_, ok := g.DB.Objects[ref]
	return ok
}

// Typeof returns the object's type, or TypeGarbage for a dead ref.
func (g *Game) Typeof(ref gamedb.DBRef) gamedb.ObjectType {
	if obj, ok := g.DB.Objects[ref]; ok {
		return obj.ObjType()
	}
	return gamedb.TypeGarbage
}

// Name returns the object's display name.
func (g *Game) Name(ref gamedb.DBRef) string {
	if obj, ok := g.DB.Objects[ref]; ok {
		return DisplayName(obj.Name)
	}
	return ""
}

// Aliases returns the registered alias list: every name segment for an
// exit, the ALIAS attribute entries for a player.
func (g *Game) Aliases(ref gamedb.DBRef) []string {
	obj, ok := g.DB.Objects[ref]
	if !ok {
		return nil
	}
	switch obj.ObjType() {
	case gamedb.TypeExit:
		return SplitAliases(obj.Name)
	case gamedb.TypePlayer:
		return SplitAliases(obj.GetAttr(gamedb.AttrAlias))
	}
	return nil
}

// Location returns the object's location, or Nothing for a dead ref.
func (g *Game) Location(ref gamedb.DBRef) gamedb.DBRef {
	if obj, ok := g.DB.Objects[ref]; ok {
		return obj.Location
	}
	return gamedb.Nothing
}

// ExitSource returns the room an exit leads out of. TinyMUSH stores the
// source room in the exit's Exits field.
func (g *Game) ExitSource(exit gamedb.DBRef) gamedb.DBRef {
	if obj, ok := g.DB.Objects[exit]; ok && obj.ObjType() == gamedb.TypeExit {
		return obj.Exits
	}
	return gamedb.Nothing
}

// Contents returns the object's contents chain in order.
func (g *Game) Contents(ref gamedb.DBRef) []gamedb.DBRef {
	return g.DB.ContentsList(ref)
}

// ExitsOf returns the object's exits chain in order.
func (g *Game) ExitsOf(ref gamedb.DBRef) []gamedb.DBRef {
	return g.DB.ExitsList(ref)
}

// Zone returns the object's zone master object.
func (g *Game) Zone(ref gamedb.DBRef) gamedb.DBRef {
	if obj, ok := g.DB.Objects[ref]; ok {
		return obj.Zone
	}
	return gamedb.Nothing
}

// MasterRoom returns the dbref of the master room.
func (g *Game) MasterRoom() gamedb.DBRef {
	return g.Master
}

// Controls reports whether who administratively controls what.
func (g *Game) Controls(who, what gamedb.DBRef) bool {
	return Controls(g, who, what)
}

// CanInteract reports whether obj is visible to who for matching.
func (g *Game) CanInteract(obj, who gamedb.DBRef) bool {
	return CanInteract(g, obj, who)
}

// PassesLock reports whether who passes thing's Basic lock.
func (g *Game) PassesLock(who, thing gamedb.DBRef) bool {
	return CouldDoIt(g, who, thing, gamedb.AttrLock)
}

// LongFingers reports whether who may reach objects that aren't nearby.
func (g *Game) LongFingers(who gamedb.DBRef) bool {
	return HasLongFingers(g, who)
}

// Nearby reports whether obj is within reach of who.
func (g *Game) Nearby(who, obj gamedb.DBRef) bool {
	return IsNearby(g, who, obj)
}

// ProxyMarked reports whether ref is a thing flagged as a virtual stand-in.
func (g *Game) ProxyMarked(ref gamedb.DBRef) bool {
	obj, ok := g.DB.Objects[ref]
	return ok && obj.ObjType() == gamedb.TypeThing && obj.HasFlag3(gamedb.Flag3Proxy)
}

// ---------- Resolver entry points ----------

// MatchResult resolves name for who relative to who itself.
func (g *Game) MatchResult(who gamedb.DBRef, name string, typ match.TypeMask, flags match.Flags) gamedb.DBRef {
	return g.observe(who, name, match.Result(g, who, name, typ, flags))
}

// MatchRelative resolves name for who relative to where.
func (g *Game) MatchRelative(who, where gamedb.DBRef, name string, typ match.TypeMask, flags match.Flags) gamedb.DBRef {
	return g.observe(who, name, match.Relative(g, who, where, name, typ, flags))
}

// NoisyMatchResult resolves name for who, notifying who on failure.
func (g *Game) NoisyMatchResult(who gamedb.DBRef, name string, typ match.TypeMask, flags match.Flags) gamedb.DBRef {
	return g.observe(who, name, match.NoisyResult(g, who, name, typ, flags))
}

// LastMatchResult resolves name for who, keeping the last match on a tie.
func (g *Game) LastMatchResult(who gamedb.DBRef, name string, typ match.TypeMask, flags match.Flags) gamedb.DBRef {
	return g.observe(who, name, match.LastResult(g, who, name, typ, flags))
}

// MatchControlled resolves name among everything who controls, noisily.
func (g *Game) MatchControlled(who gamedb.DBRef, name string) gamedb.DBRef {
	return g.observe(who, name, match.Controlled(g, who, name))
}

func (g *Game) observe(who gamedb.DBRef, name string, ref gamedb.DBRef) gamedb.DBRef {
	status := match.Classify(ref)
	if g.Metrics != nil {
		g.Metrics.ObserveResolution(status)
	}
	if g.Bus != nil {
		g.Bus.Emit(events.Event{
			Type:    events.EvResolve,
			Player:  who,
			Source:  who,
			Query:   name,
			Outcome: status.String(),
			Ref:     ref,
		})
	}
	return ref
}
