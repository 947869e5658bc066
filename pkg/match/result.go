package match

import "github.com/crystal-mush/mushmatch/pkg/gamedb"

// Status is the tagged classification of a resolver outcome, for callers
// that want to branch on the kind of result rather than compare sentinels.
type Status int

const (
	StatusFound Status = iota
	StatusAmbiguous
	StatusNotFound
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusAmbiguous:
		return "ambiguous"
	default:
		return "notfound"
	}
}

// Classify maps a resolver return value onto its Status.
func Classify(ref gamedb.DBRef) Status {
	switch {
	case ref == gamedb.Ambiguous:
		return StatusAmbiguous
	case ref < 0:
		return StatusNotFound
	default:
		return StatusFound
	}
}
