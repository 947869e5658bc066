package server

import (
	"strings"

	"github.com/crystal-mush/mushmatch/pkg/gamedb"
)

// LookupPlayer finds a player by exact registered name or ALIAS entry.
// A leading * is stripped for convenience.
func (g *Game) LookupPlayer(name string) gamedb.DBRef {
	name = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "*"))
	if name == "" {
		return gamedb.Nothing
	}
	for _, obj := range g.DB.Objects {
		if obj.ObjType() != gamedb.TypePlayer || obj.IsGoing() {
			continue
		}
		if strings.EqualFold(DisplayName(obj.Name), name) {
			return obj.DBRef
		}
		for _, alias := range SplitAliases(obj.GetAttr(gamedb.AttrAlias)) {
			if strings.EqualFold(alias, name) {
				return obj.DBRef
			}
		}
	}
	return gamedb.Nothing
}

// VisiblePlayerSearch finds a player by name prefix among players visible
// to viewer. DARK wizards and UNFINDABLE players are hidden from
// non-WizRoy viewers. Returns Ambiguous when several players qualify.
func (g *Game) VisiblePlayerSearch(viewer gamedb.DBRef, name string) gamedb.DBRef {
	name = strings.TrimSpace(name)
	if name == "" {
		return gamedb.Nothing
	}
	nameLower := strings.ToLower(name)
	canSeeHidden := WizRoy(g, viewer)

	found := gamedb.Nothing
	count := 0
	for _, obj := range g.DB.Objects {
		if obj.ObjType() != gamedb.TypePlayer || obj.IsGoing() {
			continue
		}
		if !canSeeHidden {
			if obj.HasFlag(gamedb.FlagDark) && obj.HasFlag(gamedb.FlagWizard) {
				continue
			}
			if obj.HasFlag2(gamedb.Flag2Unfindable) {
				continue
			}
		}
		if strings.HasPrefix(strings.ToLower(DisplayName(obj.Name)), nameLower) {
			found = obj.DBRef
			count++
		}
	}
	if count > 1 {
		return gamedb.Ambiguous
	}
	if count == 1 {
		return found
	}
	return gamedb.Nothing
}
