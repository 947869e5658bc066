package match

import "github.com/crystal-mush/mushmatch/pkg/gamedb"

// Proxy is one attribute-registered virtual candidate: a target object and
// the priority its registration carries. Registrations with priority <= 0
// are dead entries and are skipped.
type Proxy struct {
	Ref      gamedb.DBRef
	Priority int
}

// World is the set of collaborators the resolver consults. The resolver
// never mutates the world; implementations must be safe for concurrent
// read access if resolutions run concurrently.
type World interface {
	// Valid reports whether ref names a live database object.
	Valid(ref gamedb.DBRef) bool
	// Typeof returns the object's type, or TypeGarbage for a dead ref.
	Typeof(ref gamedb.DBRef) gamedb.ObjectType
	// Name returns the object's display name (aliases stripped).
	Name(ref gamedb.DBRef) string
	// Aliases returns the registered alias list for players and exits.
	// For an exit this includes every segment of its name.
	Aliases(ref gamedb.DBRef) []string

	Location(ref gamedb.DBRef) gamedb.DBRef
	// ExitSource returns the room an exit leads out of.
	ExitSource(exit gamedb.DBRef) gamedb.DBRef
	Contents(ref gamedb.DBRef) []gamedb.DBRef
	ExitsOf(ref gamedb.DBRef) []gamedb.DBRef
	Zone(ref gamedb.DBRef) gamedb.DBRef
	MasterRoom() gamedb.DBRef

	// Controls reports whether who may administratively control what.
	Controls(who, what gamedb.DBRef) bool
	// CanInteract reports whether obj is visible to who for matching.
	CanInteract(obj, who gamedb.DBRef) bool
	// PassesLock reports whether who passes thing's Basic lock.
	PassesLock(who, thing gamedb.DBRef) bool
	// LongFingers reports whether who may reach objects that aren't nearby.
	LongFingers(who gamedb.DBRef) bool
	// Nearby reports whether obj is in the same location as who, is who's
	// location, or is carried by who.
	Nearby(who, obj gamedb.DBRef) bool

	// ProxyMarked reports whether ref is flagged as a virtual stand-in.
	ProxyMarked(ref gamedb.DBRef) bool
	// Proxies enumerates the attribute-registered virtual candidates of a
	// scope object, at most one entry per target ref, in a stable order.
	Proxies(scope gamedb.DBRef) []Proxy

	// LookupPlayer finds a player by exact registered name or alias.
	LookupPlayer(name string) gamedb.DBRef
	// VisiblePlayerSearch finds a player by partial name among players
	// visible to who. Returns Ambiguous when several qualify.
	VisiblePlayerSearch(who gamedb.DBRef, name string) gamedb.DBRef

	// Notify delivers a single message to who.
	Notify(who gamedb.DBRef, msg string)
}
