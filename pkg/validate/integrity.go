package validate

import (
	"fmt"

	"github.com/crystal-mush/mushmatch/pkg/gamedb"
)

// IntegrityChecker performs referential integrity checks on the object graph.
type IntegrityChecker struct{}

func (c *IntegrityChecker) Name() string { return "integrity" }

func (c *IntegrityChecker) Check(db *gamedb.Database) []Finding {
	var findings []Finding
	seq := 0

	mkID := func() string {
		id := fmt.Sprintf("integrity-%d", seq)
		seq++
		return id
	}

	for _, obj := range db.Objects {
		if obj.IsGoing() {
			continue
		}
		ref := obj.DBRef

		// Location should exist (or be a special value)
		if obj.Location != gamedb.Nothing && obj.Location != gamedb.Ambiguous && obj.Location != gamedb.Home {
			if _, ok := db.Objects[obj.Location]; !ok {
				findings = append(findings, Finding{
					ID:          mkID(),
					Category:    CatIntegrityError,
					Severity:    SevError,
					ObjectRef:   ref,
					Description: fmt.Sprintf("#%d location #%d does not exist", ref, obj.Location),
					Fixable:     true,
					fixFunc:     func() { obj.Location = gamedb.Nothing },
				})
			}
		}

		// Contents chain head
		if obj.Contents != gamedb.Nothing {
			if _, ok := db.Objects[obj.Contents]; !ok {
				findings = append(findings, Finding{
					ID:          mkID(),
					Category:    CatIntegrityError,
					Severity:    SevError,
					ObjectRef:   ref,
					Description: fmt.Sprintf("#%d contents head #%d does not exist", ref, obj.Contents),
					Fixable:     true,
					fixFunc:     func() { obj.Contents = gamedb.Nothing },
				})
			}
		}

		// Exits chain head
		if obj.Exits != gamedb.Nothing {
			if _, ok := db.Objects[obj.Exits]; !ok {
				findings = append(findings, Finding{
					ID:          mkID(),
					Category:    CatIntegrityError,
					Severity:    SevError,
					ObjectRef:   ref,
					Description: fmt.Sprintf("#%d exits head #%d does not exist", ref, obj.Exits),
					Fixable:     true,
					fixFunc:     func() { obj.Exits = gamedb.Nothing },
				})
			}
		}

		// Next pointer
		if obj.Next != gamedb.Nothing {
			if _, ok := db.Objects[obj.Next]; !ok {
				findings = append(findings, Finding{
					ID:          mkID(),
					Category:    CatIntegrityError,
					Severity:    SevError,
					ObjectRef:   ref,
					Description: fmt.Sprintf("#%d next #%d does not exist", ref, obj.Next),
					Fixable:     true,
					fixFunc:     func() { obj.Next = gamedb.Nothing },
				})
			}
		}

		// Owner should exist and be a player
		if obj.Owner != gamedb.Nothing {
			if owner, ok := db.Objects[obj.Owner]; !ok {
				findings = append(findings, Finding{
					ID:          mkID(),
					Category:    CatIntegrityError,
					Severity:    SevError,
					ObjectRef:   ref,
					Description: fmt.Sprintf("#%d owner #%d does not exist", ref, obj.Owner),
				})
			} else if owner.ObjType() != gamedb.TypePlayer {
				findings = append(findings, Finding{
					ID:          mkID(),
					Category:    CatIntegrityWarn,
					Severity:    SevWarning,
					ObjectRef:   ref,
					Description: fmt.Sprintf("#%d owner #%d is not a player (type=%s)", ref, obj.Owner, owner.ObjType()),
				})
			}
		}

		// Parent should exist if set
		if obj.Parent != gamedb.Nothing {
			if _, ok := db.Objects[obj.Parent]; !ok {
				findings = append(findings, Finding{
					ID:          mkID(),
					Category:    CatIntegrityError,
					Severity:    SevError,
					ObjectRef:   ref,
					Description: fmt.Sprintf("#%d parent #%d does not exist", ref, obj.Parent),
					Fixable:     true,
					fixFunc:     func() { obj.Parent = gamedb.Nothing },
				})
			}
		}

		// Zone should exist if set
		if obj.Zone != gamedb.Nothing {
			if _, ok := db.Objects[obj.Zone]; !ok {
				findings = append(findings, Finding{
					ID:          mkID(),
					Category:    CatIntegrityError,
					Severity:    SevError,
					ObjectRef:   ref,
					Description: fmt.Sprintf("#%d zone #%d does not exist", ref, obj.Zone),
					Fixable:     true,
					fixFunc:     func() { obj.Zone = gamedb.Nothing },
				})
			}
		}

		// Link should exist if set (for exits, this is the destination)
		if obj.Link != gamedb.Nothing && obj.Link != gamedb.Home {
			if _, ok := db.Objects[obj.Link]; !ok {
				findings = append(findings, Finding{
					ID:          mkID(),
					Category:    CatIntegrityError,
					Severity:    SevError,
					ObjectRef:   ref,
					Description: fmt.Sprintf("#%d link #%d does not exist", ref, obj.Link),
				})
			}
		}
	}

	findings = append(findings, checkChains(db, mkID, "contents", func(o *gamedb.Object) gamedb.DBRef { return o.Contents })...)
	findings = append(findings, checkChains(db, mkID, "exits", func(o *gamedb.Object) gamedb.DBRef { return o.Exits })...)

	return findings
}

// checkChains walks each object's next-linked chain looking for loops.
func checkChains(db *gamedb.Database, mkID func() string, label string, head func(*gamedb.Object) gamedb.DBRef) []Finding {
	var findings []Finding
	for _, obj := range db.Objects {
		if obj.IsGoing() || head(obj) == gamedb.Nothing {
			continue
		}
		visited := make(map[gamedb.DBRef]bool)
		cur := head(obj)
		for cur != gamedb.Nothing {
			if visited[cur] {
				findings = append(findings, Finding{
					ID:          mkID(),
					Category:    CatIntegrityError,
					Severity:    SevError,
					ObjectRef:   obj.DBRef,
					Description: fmt.Sprintf("#%d %s chain has loop at #%d", obj.DBRef, label, cur),
				})
				break
			}
			visited[cur] = true
			o, ok := db.Objects[cur]
			if !ok {
				break
			}
			cur = o.Next
			if len(visited) > 50000 {
				findings = append(findings, Finding{
					ID:          mkID(),
					Category:    CatIntegrityError,
					Severity:    SevError,
					ObjectRef:   obj.DBRef,
					Description: fmt.Sprintf("#%d %s chain exceeds 50000 entries", obj.DBRef, label),
				})
				break
			}
		}
	}
	return findings
}
