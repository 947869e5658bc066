package match

import (
	"strconv"
	"strings"

	"github.com/crystal-mush/mushmatch/pkg/gamedb"
)

// state is the per-call resolution record. The fixed fields (w, who, where,
// typ, abs) are set once; the rest accumulate as candidate pools are walked.
type state struct {
	w     World
	who   gamedb.DBRef // object the match is being done for
	where gamedb.DBRef // object the match is relative to
	typ   TypeMask     // preferred type(s) of match
	flags Flags
	name  string       // name searched for, after adjectives are stripped
	abs   gamedb.DBRef // the name parsed as "#dbref", or Nothing

	match     gamedb.DBRef // candidate currently being checked
	bestmatch gamedb.DBRef // best match found so far
	final     int          // the Nth object wanted, with english matching (5th foo)
	curr      int          // matches found so far, when final is used
	nocontrol bool         // matched an object but lack control over it
	rightType int          // matches of the preferred type, when TypeStrict isn't given
	exact     bool         // an exact match has been found, not just a partial one
	done      bool         // final is in use and the Nth object was found
}

// goodRef reports whether ref names a live object.
func goodRef(w World, ref gamedb.DBRef) bool {
	return ref >= 0 && w.Valid(ref)
}

// reallyGoodRef additionally rejects garbage hulks.
func reallyGoodRef(w World, ref gamedb.DBRef) bool {
	return goodRef(w, ref) && w.Typeof(ref) != gamedb.TypeGarbage
}

func (mc *state) good(ref gamedb.DBRef) bool { return goodRef(mc.w, ref) }

func (mc *state) reallyGood(ref gamedb.DBRef) bool { return reallyGoodRef(mc.w, ref) }

// typeOK reports whether the current candidate may be considered under the
// type filter. A mismatch only rejects when TypeStrict is requested.
func (mc *state) typeOK() bool {
	if mc.typ&MaskOf(mc.w.Typeof(mc.match)) != 0 {
		return true
	}
	return mc.flags&TypeStrict == 0
}

// controlsOK reports whether a control requirement, if any, is satisfied
// for ref.
func (mc *state) controlsOK(ref gamedb.DBRef) bool {
	return mc.flags&Control == 0 || mc.w.Controls(mc.who, ref)
}

// contentsOK reports whether a Contents restriction, if any, is satisfied
// for ref.
func (mc *state) contentsOK(ref gamedb.DBRef) bool {
	return mc.flags&Contents == 0 || mc.w.Location(ref) == mc.where
}

// matched records the current candidate as a full (exact) or partial match.
// It returns true when the whole search is finished: only possible in
// ordinal mode, once the Nth accepted candidate is reached.
func (mc *state) matched(full bool) bool {
	if !mc.controlsOK(mc.match) {
		// Found a match object, but we lack necessary control
		mc.nocontrol = true
		return false
	}
	if mc.final == 0 {
		mc.bestmatch = chooseThing(mc.w, mc.who, mc.typ, mc.flags, mc.bestmatch, mc.match)
		if mc.bestmatch != mc.match {
			// Previously matched item won over due to type, @lock, etc, checks
			return false
		}
		if full {
			if mc.exact {
				// Another exact match
				mc.curr++
			} else {
				// Ignore any previous partial matches now we have an exact match
				mc.exact = true
				mc.curr = 1
				mc.rightType = 0
			}
		} else {
			// Another partial match
			mc.curr++
		}
		if mc.typ != NoType && mc.typ&MaskOf(mc.w.Typeof(mc.bestmatch)) != 0 {
			mc.rightType++
		}
		return false
	}
	mc.curr++
	if mc.curr == mc.final {
		// we've successfully found the Nth item
		mc.bestmatch = mc.match
		mc.done = true
		return true
	}
	return false
}

// chooseThing picks the better of two possible matches. The order is a
// total one: invalid refs lose to valid ones (but a specific failure
// reason is kept over a plain Nothing), then the preferred type wins, then
// a passed Basic lock wins if CheckKeys asks for it, and otherwise the
// newer match wins.
func chooseThing(w World, who gamedb.DBRef, preferred TypeMask, flags Flags, thing1, thing2 gamedb.DBRef) gamedb.DBRef {
	if !goodRef(w, thing1) && !goodRef(w, thing2) {
		// Keep the more informative of two non-matches
		if thing1 == gamedb.Nothing {
			return thing2
		}
		return thing1
	} else if !goodRef(w, thing1) {
		return thing2
	} else if !goodRef(w, thing2) {
		return thing1
	}

	// If a type is given, and only one thing is of that type, return it
	if preferred != NoType {
		if preferred&MaskOf(w.Typeof(thing1)) != 0 {
			if preferred&MaskOf(w.Typeof(thing2)) == 0 {
				return thing1
			}
		} else if preferred&MaskOf(w.Typeof(thing2)) != 0 {
			return thing2
		}
	}

	if flags&CheckKeys != 0 {
		key := w.PassesLock(who, thing1)
		if !key && w.PassesLock(who, thing2) {
			return thing2
		} else if key && !w.PassesLock(who, thing2) {
			return thing1
		}
	}
	// No luck. Return last match
	return thing2
}

// matchesAliases reports whether name exactly matches one of the
// candidate's registered aliases. Only players and exits carry aliases.
func (mc *state) matchesAliases() bool {
	t := mc.w.Typeof(mc.match)
	if t != gamedb.TypePlayer && t != gamedb.TypeExit {
		return false
	}
	for _, alias := range mc.w.Aliases(mc.match) {
		if strings.EqualFold(strings.TrimSpace(alias), mc.name) {
			return true
		}
	}
	return false
}

// stringMatchWord implements C TinyMUSH's string_match: checks if sub is a
// prefix of any word in src (words separated by non-alphanumeric
// characters). Both src and sub should already be lowercased.
func stringMatchWord(src, sub string) bool {
	if sub == "" || src == "" {
		return false
	}
	i := 0
	for i < len(src) {
		if strings.HasPrefix(src[i:], sub) {
			return true
		}
		for i < len(src) && isAlnumByte(src[i]) {
			i++
		}
		for i < len(src) && !isAlnumByte(src[i]) {
			i++
		}
	}
	return false
}

func isAlnumByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// parseObjRef parses a "#dbref" token, returning Nothing for anything else.
func parseObjRef(s string) gamedb.DBRef {
	if len(s) < 2 || s[0] != '#' {
		return gamedb.Nothing
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 {
		return gamedb.Nothing
	}
	return gamedb.DBRef(n)
}
