// Package match resolves a free-form text token into a reference to
// exactly one object in the database, relative to a viewpoint object.
// These are the re-entrant name-matching routines: all working state lives
// in a per-call record, so concurrent resolutions never interfere.
package match

import "github.com/crystal-mush/mushmatch/pkg/gamedb"

// Flags is the option bitset controlling which candidate pools are
// searched, how strictly names are compared, and what permissions a
// candidate must pass.
type Flags uint32

const (
	CheckKeys      Flags = 1 << iota // prefer objects whose Basic lock the looker passes
	Global                           // match exits in the master room
	Remotes                          // match zone master room exits
	Near                             // restrict player/absolute matches to nearby objects
	Control                          // only match objects the looker controls
	Me                               // match the literal "me"
	Here                             // match the literal "here"
	Absolute                         // match "#dbref"
	PMatch                           // match a player name, bare or with "*"
	Player                           // match "*playername" only
	Neighbor                         // match objects in the viewpoint's location
	Possession                       // match objects the viewpoint is carrying
	Exit                             // match exits in the viewpoint's location
	CarriedExit                      // match exits of the viewpoint itself (a room)
	Container                        // match the viewpoint's surrounding location
	RemoteContents                   // same pool as Possession
	English                          // parse adjectives: "my 2nd flower"
	TypeStrict                       // only match objects of the requested type
	ExactOnly                        // full-name matching only, no partial names
	Noisy                            // notify the looker on failure
	Last                             // on an ambiguous tie, keep the last match found
	Contents                         // only match objects located inside the viewpoint
)

// Composite flag sets for common callers.
const (
	Everything = Me | Here | Absolute | PMatch | Neighbor | Possession | Exit | English
	Nearby     = Everything | Near
	Objects    = Me | Absolute | PMatch | Neighbor | Possession
	NearThings = Objects | Near
	Remote     = Absolute | PMatch | RemoteContents | Exit | Remotes
	Limited    = Absolute | PMatch | Neighbor
)

// TypeMask is a bitset of object types a match may prefer or require.
// The zero mask matches nothing; NoType admits every type.
type TypeMask uint16

const (
	TypeRoom TypeMask = 1 << iota
	TypeThing
	TypeExit
	TypePlayer
	TypeZone

	NoType = TypeRoom | TypeThing | TypeExit | TypePlayer | TypeZone
)

// MaskOf returns the TypeMask bit for an object type. Garbage maps to the
// empty mask and so never satisfies a filter.
func MaskOf(t gamedb.ObjectType) TypeMask {
	if t < gamedb.TypeRoom || t > gamedb.TypeZone {
		return 0
	}
	return 1 << uint(t)
}
