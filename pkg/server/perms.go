package server

import (
	"github.com/crystal-mush/mushmatch/pkg/gamedb"
)

// IsGod returns true if player is the God player.
func IsGod(g *Game, player gamedb.DBRef) bool {
	return player == g.GodPlayer()
}

// Inherits returns true if obj inherits privilege from its owner.
// Players always inherit. Non-players inherit if they have INHERIT set,
// or their owner has INHERIT set, or they are their own owner.
func Inherits(g *Game, obj gamedb.DBRef) bool {
	o, ok := g.DB.Objects[obj]
	if !ok {
		return false
	}
	if o.ObjType() == gamedb.TypePlayer {
		return true
	}
	if o.HasFlag(gamedb.FlagInherit) {
		return true
	}
	if o.Owner == obj {
		return true
	}
	if ownerObj, ok := g.DB.Objects[o.Owner]; ok {
		return ownerObj.HasFlag(gamedb.FlagInherit)
	}
	return false
}

// Wizard returns true if obj is an effective wizard: it has the WIZARD
// flag directly, or its owner has WIZARD and the object Inherits.
func Wizard(g *Game, obj gamedb.DBRef) bool {
	o, ok := g.DB.Objects[obj]
	if !ok {
		return false
	}
	if o.HasFlag(gamedb.FlagWizard) {
		return true
	}
	owner, ownerOK := g.DB.Objects[o.Owner]
	if ownerOK && owner.HasFlag(gamedb.FlagWizard) && Inherits(g, obj) {
		return true
	}
	return false
}

// Royalty returns true if obj has the ROYALTY flag. Unlike Wizard, Royalty
// does NOT require Inherits.
func Royalty(g *Game, obj gamedb.DBRef) bool {
	o, ok := g.DB.Objects[obj]
	if !ok {
		return false
	}
	return o.HasFlag(gamedb.FlagRoyalty)
}

// WizRoy returns true if obj is either an effective wizard or royalty.
func WizRoy(g *Game, obj gamedb.DBRef) bool {
	return Wizard(g, obj) || Royalty(g, obj)
}

// ControlAll returns true if obj has POW_CONTROL_ALL or is an effective wizard.
func ControlAll(g *Game, obj gamedb.DBRef) bool {
	if Wizard(g, obj) {
		return true
	}
	o, ok := g.DB.Objects[obj]
	if !ok {
		return false
	}
	return o.HasPower(0, gamedb.PowControlAll)
}

// SeeAll returns true if obj has POW_EXAM_ALL or is effective WizRoy.
func SeeAll(g *Game, obj gamedb.DBRef) bool {
	if WizRoy(g, obj) {
		return true
	}
	o, ok := g.DB.Objects[obj]
	if !ok {
		return false
	}
	return o.HasPower(0, gamedb.PowExamAll)
}

// HasLongFingers returns true if obj may reach objects that aren't nearby
// (POW_LONGFINGERS or effective wizard).
func HasLongFingers(g *Game, obj gamedb.DBRef) bool {
	if Wizard(g, obj) {
		return true
	}
	o, ok := g.DB.Objects[obj]
	if !ok {
		return false
	}
	return o.HasPower(0, gamedb.PowLongfingers)
}

// PassLocks returns true if player has the POW_PASS_LOCKS power.
func PassLocks(g *Game, player gamedb.DBRef) bool {
	o, ok := g.DB.Objects[player]
	if !ok {
		return false
	}
	return o.HasPower(0, gamedb.PowPassLocks)
}

// CheckZone checks if player passes the zone control lock chain for thing:
// thing must be a non-player with CONTROL_OK, its zone master object must
// carry an LCONTROL lock, and player must pass that lock (recursing on the
// ZMO's own zone up to the nesting limit).
func CheckZone(g *Game, player, thing gamedb.DBRef, depth int) bool {
	if depth > g.ZoneNestLimit {
		return false
	}

	tObj, ok := g.DB.Objects[thing]
	if !ok {
		return false
	}

	// Players can't be zone-controlled
	if tObj.ObjType() == gamedb.TypePlayer {
		return false
	}

	if !tObj.HasFlag2(gamedb.Flag2ControlOK) {
		return false
	}

	if tObj.Zone == gamedb.Nothing {
		return false
	}
	zmo := tObj.Zone

	lockText := g.GetAttrText(zmo, gamedb.AttrLControl)
	if lockText == "" {
		return false
	}

	parsed := ParseBoolExp(g, player, lockText)
	if EvalBoolExp(g, player, zmo, parsed) {
		return true
	}

	// Recurse on ZMO's zone
	zmoObj, ok := g.DB.Objects[zmo]
	if !ok || zmoObj.Zone == gamedb.Nothing {
		return false
	}
	return CheckZone(g, player, zmo, depth+1)
}

// Controls returns true if player controls target:
//  1. Identity always controls
//  2. God protection: nobody controls God except God
//  3. ControlAll (POW_CONTROL_ALL or Wizard)
//  4. Same owner AND (player Inherits OR target doesn't Inherit)
//  5. Zone-based control
func Controls(g *Game, player, target gamedb.DBRef) bool {
	if player == target {
		return true
	}

	if IsGod(g, target) && !IsGod(g, player) {
		return false
	}

	if ControlAll(g, player) {
		return true
	}

	_, ok1 := g.DB.Objects[player]
	tObj, ok2 := g.DB.Objects[target]
	if ok1 && ok2 && tObj.Owner == player {
		if Inherits(g, player) || !Inherits(g, target) {
			return true
		}
	}

	return CheckZone(g, player, target, 0)
}

// IsNearby returns true if obj is in who's location, is who's location,
// is carried by who, or is who itself.
func IsNearby(g *Game, who, obj gamedb.DBRef) bool {
	if who == obj {
		return true
	}
	wObj, ok1 := g.DB.Objects[who]
	oObj, ok2 := g.DB.Objects[obj]
	if !ok1 || !ok2 {
		return false
	}
	if oObj.Location == who {
		return true
	}
	loc := wObj.Location
	if wObj.ObjType() == gamedb.TypeRoom {
		loc = who
	}
	return obj == loc || oObj.Location == loc
}

// CanInteract reports whether who is allowed to notice target when
// matching names. DARK objects are hidden from players who don't control
// them; an LINTERACT lock, if set, must also pass.
func CanInteract(g *Game, target, who gamedb.DBRef) bool {
	tObj, ok := g.DB.Objects[target]
	if !ok {
		return false
	}
	if who == target || SeeAll(g, who) {
		return true
	}
	if tObj.HasFlag(gamedb.FlagDark) && !Controls(g, who, target) {
		return false
	}
	lockText := g.GetAttrText(target, gamedb.AttrLInteract)
	if lockText != "" {
		parsed := ParseBoolExp(g, who, lockText)
		return EvalBoolExp(g, who, target, parsed)
	}
	return true
}
