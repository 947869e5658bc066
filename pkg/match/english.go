package match

import (
	"strconv"
	"strings"
)

// parseEnglish strips an adjective phrase from the front of name:
//
//	adj-phrase --> adj
//	           --> adj count
//	           --> count
//	adj  --> "my", "me" (restrict match to inventory)
//	     --> "here", "this", "this here" (restrict match to neighbor objects)
//	     --> "toward" (restrict match to exits)
//	count --> 1st, 21st, etc.
//	      --> 2nd, 22nd, etc.
//	      --> 3rd, 23rd, etc.
//	      --> 4th, 10th, etc.
//
// It returns the residual name, the flags with competing scopes masked out,
// and the requested ordinal (0 if none). A malformed count adjective such
// as "0th" or "12nd" is not consumed; a restriction word with nothing after
// it resets both name and flags.
func parseEnglish(name string, flags Flags) (string, Flags, int) {
	savedName, savedFlags := name, flags

	// Handle restriction adjectives first
	if flags&Neighbor != 0 {
		switch {
		case hasPrefixFold(name, "this here "):
			name = name[10:]
			flags &^= Possession | Exit
		case hasPrefixFold(name, "here "), hasPrefixFold(name, "this "):
			name = name[5:]
			flags &^= Possession | Exit | RemoteContents | Container
		}
	}
	if flags&Possession != 0 &&
		(hasPrefixFold(name, "my ") || hasPrefixFold(name, "me ")) {
		name = name[3:]
		flags &^= Neighbor | Exit | Container | RemoteContents
	}
	if flags&(Exit|CarriedExit) != 0 && hasPrefixFold(name, "toward ") {
		name = name[7:]
		flags &^= Neighbor | Possession | Container | RemoteContents
	}

	name = strings.TrimLeft(name, " ")

	// If the name was just 'toward' (with no object name), reset
	// everything and press on.
	if name == "" {
		return savedName, savedFlags, 0
	}

	// Handle count adjectives
	if name[0] < '0' || name[0] > '9' {
		return name, flags, 0
	}
	sp := strings.IndexByte(name, ' ')
	if sp < 0 {
		// A count without a noun is not a count adjective
		return name, flags, 0
	}
	count, ok := parseOrdinal(name[:sp])
	if !ok {
		// An error (like '0th' or '12nd') - this wasn't really a count
		// adjective. Press on with the restricted flags.
		return name, flags, 0
	}
	return strings.TrimLeft(name[sp+1:], " "), flags, count
}

// parseOrdinal parses a count adjective ("1st", "22nd", "13th") and checks
// that the English suffix agrees with the number.
func parseOrdinal(word string) (int, bool) {
	i := 0
	for i < len(word) && word[i] >= '0' && word[i] <= '9' {
		i++
	}
	suffix := word[i:]
	if suffix == "" {
		// A bare number ("2 coins") is a noun phrase, not an ordinal
		return 0, false
	}
	count, err := strconv.Atoi(word[:i])
	if err != nil || count < 1 {
		return 0, false
	}
	want := "th"
	if count < 11 || count > 13 {
		switch count % 10 {
		case 1:
			want = "st"
		case 2:
			want = "nd"
		case 3:
			want = "rd"
		}
	}
	if !strings.EqualFold(suffix, want) {
		return 0, false
	}
	return count, true
}

// hasPrefixFold reports whether s begins with prefix, ignoring case.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
