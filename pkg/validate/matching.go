package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crystal-mush/mushmatch/pkg/gamedb"
)

// proxyAttrPrefix mirrors the registration convention used by the resolver:
// an attribute "PROXY`<dbref>" on a location names a stand-in candidate,
// with the attribute value holding the priority.
const proxyAttrPrefix = "PROXY`"

// MatchingChecker flags database states that make objects unmatchable or
// that the name resolver would silently skip over: nameless objects,
// malformed alias lists, duplicate player names, dead proxy registrations,
// and locks keyed to recycled objects.
type MatchingChecker struct{}

func (c *MatchingChecker) Name() string { return "matching" }

func (c *MatchingChecker) Check(db *gamedb.Database) []Finding {
	var findings []Finding
	seq := 0

	mkID := func() string {
		id := fmt.Sprintf("matching-%d", seq)
		seq++
		return id
	}

	playerNames := make(map[string][]gamedb.DBRef)

	for _, obj := range db.Objects {
		if obj.IsGoing() {
			continue
		}
		ref := obj.DBRef

		if strings.TrimSpace(obj.Name) == "" {
			findings = append(findings, Finding{
				ID:          mkID(),
				Category:    CatMatching,
				Severity:    SevWarning,
				ObjectRef:   ref,
				Description: fmt.Sprintf("#%d has an empty name and can only be matched by dbref", ref),
			})
		}

		if obj.ObjType() == gamedb.TypePlayer {
			key := strings.ToLower(obj.Name)
			playerNames[key] = append(playerNames[key], ref)
			for _, alias := range strings.Split(obj.GetAttr(gamedb.AttrAlias), ";") {
				if alias = strings.TrimSpace(alias); alias != "" {
					playerNames[strings.ToLower(alias)] = append(playerNames[strings.ToLower(alias)], ref)
				}
			}
		}

		// Exit sources live in the Exits field; a dead source strands
		// the exit outside every candidate pool.
		if obj.ObjType() == gamedb.TypeExit && obj.Exits != gamedb.Nothing {
			if _, ok := db.Objects[obj.Exits]; !ok {
				findings = append(findings, Finding{
					ID:          mkID(),
					Category:    CatMatching,
					Severity:    SevError,
					ObjectRef:   ref,
					Description: fmt.Sprintf("exit #%d source #%d does not exist", ref, obj.Exits),
				})
			}
		}

		findings = append(findings, checkAliasAttr(db, obj, mkID)...)
		findings = append(findings, checkProxyAttrs(db, obj, mkID)...)

		if dead := deadLockRefs(db, obj.Lock, nil); len(dead) > 0 {
			findings = append(findings, Finding{
				ID:          mkID(),
				Category:    CatMatching,
				Severity:    SevWarning,
				ObjectRef:   ref,
				Description: fmt.Sprintf("#%d lock references nonexistent object(s) %v and will never pass those branches", ref, dead),
			})
		}
	}

	for name, refs := range playerNames {
		if len(refs) > 1 {
			findings = append(findings, Finding{
				ID:          mkID(),
				Category:    CatMatching,
				Severity:    SevWarning,
				ObjectRef:   refs[0],
				Description: fmt.Sprintf("player name %q is claimed by %d players %v", name, len(refs), refs),
			})
		}
	}

	return findings
}

// checkAliasAttr flags alias lists with empty segments, which match the
// empty string during exact alias comparison.
func checkAliasAttr(db *gamedb.Database, obj *gamedb.Object, mkID func() string) []Finding {
	raw := obj.GetAttr(gamedb.AttrAlias)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	clean := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			clean = append(clean, p)
		}
	}
	if len(clean) == len(parts) {
		return nil
	}
	fixed := strings.Join(clean, ";")
	return []Finding{{
		ID:          mkID(),
		Category:    CatMatching,
		Severity:    SevWarning,
		ObjectRef:   obj.DBRef,
		AttrNum:     gamedb.AttrAlias,
		AttrName:    "ALIAS",
		Description: fmt.Sprintf("#%d alias list %q contains empty segments", obj.DBRef, raw),
		Fixable:     true,
		fixFunc:     func() { obj.SetAttr(gamedb.AttrAlias, fixed) },
	}}
}

// checkProxyAttrs validates proxy registrations stored on obj: the target
// must exist, must be a thing carrying the proxy flag, and the priority
// must be numeric.
func checkProxyAttrs(db *gamedb.Database, obj *gamedb.Object, mkID func() string) []Finding {
	var findings []Finding
	for i := range obj.Attrs {
		attr := obj.Attrs[i]
		name := db.GetAttrName(attr.Number)
		if !strings.HasPrefix(name, proxyAttrPrefix) {
			continue
		}
		targetNum, err := strconv.Atoi(name[len(proxyAttrPrefix):])
		if err != nil || targetNum < 0 {
			findings = append(findings, Finding{
				ID:          mkID(),
				Category:    CatMatching,
				Severity:    SevWarning,
				ObjectRef:   obj.DBRef,
				AttrNum:     attr.Number,
				AttrName:    name,
				Description: fmt.Sprintf("#%d proxy attribute %q does not name a dbref", obj.DBRef, name),
			})
			continue
		}
		target := gamedb.DBRef(targetNum)
		tobj, ok := db.Objects[target]
		if !ok || tobj.IsGoing() {
			num := attr.Number
			findings = append(findings, Finding{
				ID:          mkID(),
				Category:    CatMatching,
				Severity:    SevError,
				ObjectRef:   obj.DBRef,
				AttrNum:     num,
				AttrName:    name,
				Description: fmt.Sprintf("#%d proxy registration targets dead object #%d", obj.DBRef, target),
				Fixable:     true,
				fixFunc:     func() { obj.SetAttr(num, "") },
			})
			continue
		}
		if tobj.ObjType() != gamedb.TypeThing || !tobj.HasFlag3(gamedb.Flag3Proxy) {
			findings = append(findings, Finding{
				ID:          mkID(),
				Category:    CatMatching,
				Severity:    SevWarning,
				ObjectRef:   obj.DBRef,
				AttrNum:     attr.Number,
				AttrName:    name,
				Description: fmt.Sprintf("#%d proxy registration targets #%d, which is not a proxy-flagged thing", obj.DBRef, target),
			})
		}
		if _, err := strconv.Atoi(strings.TrimSpace(attr.Value)); err != nil {
			findings = append(findings, Finding{
				ID:          mkID(),
				Category:    CatMatching,
				Severity:    SevWarning,
				ObjectRef:   obj.DBRef,
				AttrNum:     attr.Number,
				AttrName:    name,
				Description: fmt.Sprintf("#%d proxy registration priority %q is not numeric", obj.DBRef, attr.Value),
			})
		}
	}
	return findings
}

// deadLockRefs collects object references in a lock tree that no longer
// resolve. Attribute comparisons store an attribute number, not a dbref,
// and are skipped.
func deadLockRefs(db *gamedb.Database, b *gamedb.BoolExp, acc []gamedb.DBRef) []gamedb.DBRef {
	if b == nil {
		return acc
	}
	if b.Type == gamedb.BoolConst {
		ref := gamedb.DBRef(b.Thing)
		if _, ok := db.Objects[ref]; !ok {
			acc = append(acc, ref)
		}
		return acc
	}
	acc = deadLockRefs(db, b.Sub1, acc)
	return deadLockRefs(db, b.Sub2, acc)
}
