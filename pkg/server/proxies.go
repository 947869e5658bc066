package server

import (
	"sort"
	"strconv"
	"strings"

	"github.com/crystal-mush/mushmatch/pkg/gamedb"
	"github.com/crystal-mush/mushmatch/pkg/match"
)

// ProxyAttrPrefix is the naming convention for proxy registrations: an
// attribute "PROXY`<dbref>" on a location, whose value is the registration
// priority. The named object stands in as a matchable candidate at that
// location without being in its contents chain.
const ProxyAttrPrefix = "PROXY`"

// Proxies enumerates the proxy registrations of a scope object, walking
// the parent chain so registrations inherit. The nearest registration per
// target wins; the result is sorted by target ref so traversal order is
// stable for a given database state.
func (g *Game) Proxies(scope gamedb.DBRef) []match.Proxy {
	seen := make(map[gamedb.DBRef]int)
	cur := scope
	for depth := 0; depth <= g.ParentNestLimit; depth++ {
		obj, ok := g.DB.Objects[cur]
		if !ok {
			break
		}
		for i := range obj.Attrs {
			name := g.DB.GetAttrName(obj.Attrs[i].Number)
			if !strings.HasPrefix(name, ProxyAttrPrefix) {
				continue
			}
			target, err := strconv.Atoi(name[len(ProxyAttrPrefix):])
			if err != nil || target < 0 {
				continue
			}
			ref := gamedb.DBRef(target)
			if _, dup := seen[ref]; dup {
				// A child registration already masked this target
				continue
			}
			pri, err := strconv.Atoi(strings.TrimSpace(obj.Attrs[i].Value))
			if err != nil {
				continue
			}
			seen[ref] = pri
		}
		cur = obj.Parent
		if cur == gamedb.Nothing {
			break
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]match.Proxy, 0, len(seen))
	for ref, pri := range seen {
		out = append(out, match.Proxy{Ref: ref, Priority: pri})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out
}

// RegisterProxy stores a proxy registration for target on scope with the
// given priority, creating the attribute definition on first use.
func (g *Game) RegisterProxy(scope, target gamedb.DBRef, priority int) {
	obj, ok := g.DB.Objects[scope]
	if !ok {
		return
	}
	name := ProxyAttrPrefix + strconv.Itoa(int(target))
	def, known := g.DB.AttrByName[name]
	if !known {
		num := g.DB.NextAttr
		if num < gamedb.AttrUserStart {
			num = gamedb.AttrUserStart
		}
		g.DB.NextAttr = num + 1
		g.DB.AddAttrDef(num, name, 0)
		def = g.DB.AttrByName[name]
	}
	obj.SetAttr(def.Number, strconv.Itoa(priority))
	g.PersistObject(obj)
}
