package match

import (
	"strings"

	"github.com/crystal-mush/mushmatch/pkg/gamedb"
)

// Failure messages sent when Noisy is requested.
const (
	msgAmbiguous = "I don't know which one you mean!"
	msgNoControl = "Permission denied."
	msgNotSeen   = "I can't see that here."
)

// Result resolves name for who, relative to who itself. It returns the
// matched dbref, Ambiguous, or Nothing.
func Result(w World, who gamedb.DBRef, name string, typ TypeMask, flags Flags) gamedb.DBRef {
	return Relative(w, who, who, name, typ, flags)
}

// NoisyResult resolves name for who, notifying who on any failure. The
// Ambiguous sentinel is folded into Nothing.
func NoisyResult(w World, who gamedb.DBRef, name string, typ TypeMask, flags Flags) gamedb.DBRef {
	m := Result(w, who, name, typ, flags|Noisy)
	if !goodRef(w, m) {
		return gamedb.Nothing
	}
	return m
}

// LastResult resolves name for who, returning the last match found in
// ambiguous situations instead of Ambiguous.
func LastResult(w World, who gamedb.DBRef, name string, typ TypeMask, flags Flags) gamedb.DBRef {
	return Result(w, who, name, typ, flags|Last)
}

// Controlled resolves name for who among everything nearby, requiring that
// who controls the result, and notifies who on failure.
func Controlled(w World, who gamedb.DBRef, name string) gamedb.DBRef {
	return NoisyResult(w, who, name, NoType, Everything|Control)
}

// Relative is the full resolver: the object who is trying to find
// something called xname relative to the object where. In most cases who
// and where are the same object.
//
// Resolution order:
//  1. Exact shortcuts, each returning immediately on success:
//     "me", "here", *player (or bare player name), #dbref.
//  2. English adjective parsing, restricting scopes and/or extracting an
//     object count ("my 2nd flower").
//  3. Pool search: possessions, neighbors, proxies, exits, the container.
//     Without a count the exact/partial match tallies and the best match
//     are accumulated; with a count the Nth accepted candidate wins and
//     the tallies stay at 0 or 1.
//  4. Classification of the final state into a ref, Ambiguous or Nothing.
func Relative(w World, who, where gamedb.DBRef, xname string, typ TypeMask, flags Flags) gamedb.DBRef {
	mc := &state{
		w:         w,
		who:       who,
		where:     where,
		typ:       typ,
		flags:     flags,
		bestmatch: gamedb.Nothing,
		abs:       parseObjRef(xname),
	}

	goodwhere := mc.reallyGood(where)
	loc := gamedb.Nothing
	if goodwhere {
		switch w.Typeof(where) {
		case gamedb.TypeRoom:
			loc = where
		case gamedb.TypeExit:
			loc = w.ExitSource(where)
		default:
			loc = w.Location(where)
		}
	}

	if flags&(Near|Contents) != 0 && !goodwhere {
		// It can't be nearby/in where's contents if where is invalid
		if flags&Noisy != 0 && mc.good(who) {
			w.Notify(who, msgNotSeen)
		}
		return gamedb.Nothing
	}

	// match "me"
	mc.match = where
	if goodwhere && mc.typeOK() && flags&Me != 0 && flags&Contents == 0 &&
		strings.EqualFold(xname, "me") {
		if mc.controlsOK(mc.match) {
			return mc.match
		}
		mc.nocontrol = true
	}

	// match "here"
	mc.match = gamedb.Nothing
	if goodwhere && w.Typeof(where) != gamedb.TypeRoom {
		mc.match = w.Location(where)
	}
	if flags&Here != 0 && flags&Contents == 0 && strings.EqualFold(xname, "here") &&
		mc.good(mc.match) && mc.typeOK() {
		if mc.controlsOK(mc.match) {
			return mc.match
		}
		mc.nocontrol = true
	}

	// match *<player>, or <player>
	if (flags&PMatch != 0 || (flags&Player != 0 && strings.HasPrefix(xname, "*"))) &&
		(typ&TypePlayer != 0 || flags&TypeStrict == 0) {
		mc.match = matchPlayer(w, who, xname, flags&ExactOnly == 0)
		if mc.contentsOK(mc.match) {
			if mc.good(mc.match) {
				if flags&Near == 0 || w.LongFingers(who) ||
					w.Nearby(who, mc.match) || w.Controls(who, mc.match) {
					if mc.controlsOK(mc.match) {
						return mc.match
					}
					mc.nocontrol = true
				}
			} else {
				// Keep a specific failure (Ambiguous) from the player lookup
				mc.bestmatch = chooseThing(w, who, typ, flags, mc.bestmatch, mc.match)
			}
		}
	}

	// dbref match
	mc.match = mc.abs
	if mc.reallyGood(mc.match) && flags&Absolute != 0 && mc.typeOK() &&
		mc.contentsOK(mc.match) {
		if flags&Near == 0 || w.LongFingers(who) ||
			w.Nearby(who, mc.match) || w.Controls(who, mc.match) {
			// valid dbref match
			if mc.controlsOK(mc.match) {
				return mc.match
			}
			mc.nocontrol = true
		}
	}

	name := xname
	if flags&English != 0 {
		// English-style matching
		name, flags, mc.final = parseEnglish(xname, flags)
	}
	mc.name = name
	mc.flags = flags

	mc.searchPools(goodwhere, loc)

	if !mc.good(mc.bestmatch) && mc.final != 0 {
		// we never found the Nth item
		mc.bestmatch = gamedb.Nothing
	} else if mc.final == 0 && mc.curr > 1 {
		// If we had a preferred type, and only found 1 of that type, give
		// that, otherwise ambiguous
		if mc.rightType != 1 && flags&Last == 0 {
			mc.bestmatch = gamedb.Ambiguous
		}
	}

	if !mc.good(mc.bestmatch) && flags&Noisy != 0 && mc.good(who) {
		// give error message
		switch {
		case mc.bestmatch == gamedb.Ambiguous:
			w.Notify(who, msgAmbiguous)
		case mc.nocontrol:
			w.Notify(who, msgNoControl)
		default:
			w.Notify(who, msgNotSeen)
		}
	}

	return mc.bestmatch
}

// searchPools visits each enabled candidate pool in fixed priority order.
// Any pool can finish the search early when an ordinal target is hit.
func (mc *state) searchPools(goodwhere bool, loc gamedb.DBRef) {
	w, flags, typ := mc.w, mc.flags, mc.typ

	if goodwhere && flags&(Possession|RemoteContents) != 0 {
		if mc.matchList(w.Contents(mc.where)) {
			return
		}
		if mc.matchProxies(mc.where) {
			return
		}
	}
	if mc.good(loc) && flags&Neighbor != 0 && flags&Contents == 0 && loc != mc.where {
		if mc.matchList(w.Contents(loc)) {
			return
		}
		if mc.matchProxies(loc) {
			return
		}
	}
	if typ&TypeExit != 0 || flags&TypeStrict == 0 {
		if mc.good(loc) && w.Typeof(loc) == gamedb.TypeRoom && flags&Exit != 0 {
			if flags&Remotes != 0 && flags&(Near|Contents) == 0 {
				zone := w.Zone(loc)
				if mc.good(zone) && w.Typeof(zone) == gamedb.TypeRoom {
					if mc.matchList(w.ExitsOf(zone)) {
						return
					}
				}
			}
			if flags&Global != 0 && flags&(Near|Contents) == 0 {
				if mc.matchList(w.ExitsOf(w.MasterRoom())) {
					return
				}
			}
			if mc.matchList(w.ExitsOf(loc)) {
				return
			}
		}
	}
	if flags&Container != 0 && flags&Contents == 0 && goodwhere {
		// The surrounding location itself is a single-candidate pool
		if mc.matchList([]gamedb.DBRef{loc}) {
			return
		}
	}
	if typ&TypeExit != 0 || flags&TypeStrict == 0 {
		if flags&CarriedExit != 0 && goodwhere && w.Typeof(mc.where) == gamedb.TypeRoom &&
			(loc != mc.where || flags&Exit == 0) {
			if mc.matchList(w.ExitsOf(mc.where)) {
				return
			}
		}
	}
}

// matchList feeds each candidate in list to the evaluator. It returns true
// when the search is done and all remaining pools should be skipped.
func (mc *state) matchList(list []gamedb.DBRef) bool {
	if mc.done {
		return true // already found the Nth object we needed
	}
	for _, ref := range list {
		if ref == gamedb.Nothing {
			continue
		}
		mc.match = ref
		if mc.evaluate() {
			return true
		}
	}
	return false
}

// matchProxies feeds the scope's attribute-registered virtual candidates
// to the evaluator. Only live, proxy-marked targets with a positive
// registration priority are considered.
func (mc *state) matchProxies(scope gamedb.DBRef) bool {
	if mc.done {
		return true
	}
	for _, pr := range mc.w.Proxies(scope) {
		if pr.Priority <= 0 {
			continue
		}
		if !mc.reallyGood(pr.Ref) || !mc.w.ProxyMarked(pr.Ref) {
			continue
		}
		mc.match = pr.Ref
		if mc.evaluate() {
			return true
		}
	}
	return false
}

// evaluate applies the per-candidate matching rules to mc.match, in order:
// type filter, absolute-ref equality, interaction permission, exact
// name/alias match, then partial match. It returns true when the whole
// search is finished.
func (mc *state) evaluate() bool {
	if !mc.typeOK() {
		// Exact-type match required, but failed
		return false
	}
	if mc.match == mc.abs {
		// absolute dbref match in list
		return mc.matched(true)
	}
	if !mc.w.CanInteract(mc.match, mc.who) {
		// Not allowed to match this object
		return false
	}
	isExit := mc.w.Typeof(mc.match) == gamedb.TypeExit
	if mc.matchesAliases() ||
		(!isExit && strings.EqualFold(mc.w.Name(mc.match), mc.name)) {
		// exact name match
		return mc.matched(true)
	}
	if mc.flags&ExactOnly == 0 && (!mc.exact || !mc.good(mc.bestmatch)) && !isExit &&
		stringMatchWord(strings.ToLower(mc.w.Name(mc.match)), strings.ToLower(mc.name)) {
		// partial name match
		return mc.matched(false)
	}
	return false
}

// matchPlayer resolves a player name token, stripping any leading "*".
// Exact registered names win; a partial search over visible players is the
// fallback when partial matching is allowed.
func matchPlayer(w World, who gamedb.DBRef, name string, partial bool) gamedb.DBRef {
	name = strings.TrimPrefix(name, "*")
	name = strings.TrimLeft(name, " ")

	if m := w.LookupPlayer(name); m != gamedb.Nothing {
		return m
	}
	if goodRef(w, who) && partial {
		return w.VisiblePlayerSearch(who, name)
	}
	return gamedb.Nothing
}
