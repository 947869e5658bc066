package server

import (
	"strconv"
	"strings"

	"github.com/crystal-mush/mushmatch/pkg/gamedb"
)

// ---------- Parser ----------

// boolParser holds the state for parsing a lock string.
type boolParser struct {
	g      *Game
	player gamedb.DBRef
	src    string
	pos    int
}

func (p *boolParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *boolParser) advance() byte {
	ch := p.peek()
	if ch != 0 {
		p.pos++
	}
	return ch
}

func (p *boolParser) skipSpaces() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

// ParseBoolExp parses a lock string into a BoolExp tree.
// Grammar:
//
//	E → T ('|' E)?
//	T → F ('&' T)?
//	F → '!' F | '+' L | '=' L | '$' L | L
//	L → '(' E ')' | '#' number | name ':' pattern | name
func ParseBoolExp(g *Game, player gamedb.DBRef, lockStr string) *gamedb.BoolExp {
	lockStr = strings.TrimSpace(lockStr)
	if lockStr == "" {
		return nil
	}
	p := &boolParser{g: g, player: player, src: lockStr}
	return p.parseE()
}

func (p *boolParser) parseE() *gamedb.BoolExp {
	left := p.parseT()
	p.skipSpaces()
	if p.peek() == '|' {
		p.advance()
		right := p.parseE()
		return &gamedb.BoolExp{Type: gamedb.BoolOr, Sub1: left, Sub2: right}
	}
	return left
}

func (p *boolParser) parseT() *gamedb.BoolExp {
	left := p.parseF()
	p.skipSpaces()
	if p.peek() == '&' {
		p.advance()
		right := p.parseT()
		return &gamedb.BoolExp{Type: gamedb.BoolAnd, Sub1: left, Sub2: right}
	}
	return left
}

func (p *boolParser) parseF() *gamedb.BoolExp {
	p.skipSpaces()
	switch p.peek() {
	case '!':
		p.advance()
		sub := p.parseF()
		if sub == nil {
			return nil
		}
		return &gamedb.BoolExp{Type: gamedb.BoolNot, Sub1: sub}
	case '+':
		p.advance()
		sub := p.parseLiteral()
		if sub == nil || (sub.Type != gamedb.BoolConst && sub.Type != gamedb.BoolAttr) {
			return nil
		}
		return &gamedb.BoolExp{Type: gamedb.BoolCarry, Sub1: sub}
	case '=':
		p.advance()
		sub := p.parseLiteral()
		if sub == nil || (sub.Type != gamedb.BoolConst && sub.Type != gamedb.BoolAttr) {
			return nil
		}
		return &gamedb.BoolExp{Type: gamedb.BoolIs, Sub1: sub}
	case '$':
		p.advance()
		sub := p.parseLiteral()
		if sub == nil || sub.Type != gamedb.BoolConst {
			return nil
		}
		return &gamedb.BoolExp{Type: gamedb.BoolOwner, Sub1: sub}
	default:
		return p.parseLiteral()
	}
}

func (p *boolParser) parseLiteral() *gamedb.BoolExp {
	p.skipSpaces()
	if p.peek() == '(' {
		p.advance()
		sub := p.parseE()
		p.skipSpaces()
		if p.peek() == ')' {
			p.advance()
		}
		return sub
	}

	// Collect a name token: everything up to operator chars or end
	start := p.pos
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		if ch == '&' || ch == '|' || ch == '!' || ch == '(' || ch == ')' {
			break
		}
		// ':' separates an attribute name from its match pattern
		if ch == ':' {
			name := strings.TrimSpace(p.src[start:p.pos])
			p.pos++
			patStart := p.pos
			for p.pos < len(p.src) {
				pc := p.src[p.pos]
				if pc == '&' || pc == '|' || pc == ')' {
					break
				}
				p.pos++
			}
			pattern := strings.TrimSpace(p.src[patStart:p.pos])
			return &gamedb.BoolExp{Type: gamedb.BoolAttr, Thing: p.resolveAttrNum(name), StrVal: pattern}
		}
		p.pos++
	}

	token := strings.TrimSpace(p.src[start:p.pos])
	if token == "" {
		return nil
	}

	ref := lockMatchRef(p.g, p.player, token)
	if ref == gamedb.Nothing || ref == gamedb.Ambiguous {
		return nil
	}
	return &gamedb.BoolExp{Type: gamedb.BoolConst, Thing: int(ref)}
}

// resolveAttrNum maps an attribute name to its number, registering a new
// user attribute definition if the name is unknown.
func (p *boolParser) resolveAttrNum(name string) int {
	name = strings.ToUpper(name)
	if def, ok := p.g.DB.AttrByName[name]; ok {
		return def.Number
	}
	for num, known := range gamedb.WellKnownAttrs {
		if known == name {
			return num
		}
	}
	num := p.g.DB.NextAttr
	if num < gamedb.AttrUserStart {
		num = gamedb.AttrUserStart
	}
	p.g.DB.NextAttr = num + 1
	p.g.DB.AddAttrDef(num, name, 0)
	return num
}

// lockMatchRef resolves an object token inside a lock string. Locks are
// parsed at evaluation time, so this uses a cheap lookup
// (me/here/#dbref/*player/nearby name) rather than the full resolver;
// lock evaluation happening inside a resolution must not recurse into it.
func lockMatchRef(g *Game, player gamedb.DBRef, token string) gamedb.DBRef {
	if strings.EqualFold(token, "me") {
		return player
	}
	pObj, ok := g.DB.Objects[player]
	if strings.EqualFold(token, "here") {
		if !ok {
			return gamedb.Nothing
		}
		return pObj.Location
	}
	if token[0] == '#' {
		n, err := strconv.Atoi(token[1:])
		if err != nil || n < 0 {
			return gamedb.Nothing
		}
		return gamedb.DBRef(n)
	}
	if token[0] == '*' {
		return g.LookupPlayer(token[1:])
	}
	// Exact name among the player's possessions and neighbors
	if ok {
		for _, pool := range [][]gamedb.DBRef{
			g.DB.ContentsList(player),
			g.DB.ContentsList(pObj.Location),
		} {
			for _, ref := range pool {
				if obj, ok := g.DB.Objects[ref]; ok &&
					strings.EqualFold(DisplayName(obj.Name), token) {
					return ref
				}
			}
		}
	}
	return g.LookupPlayer(token)
}

// ---------- Evaluator ----------

// EvalBoolExp evaluates a parsed lock against player. thing is the object
// carrying the lock. A nil expression is an unparseable lock and fails.
func EvalBoolExp(g *Game, player, thing gamedb.DBRef, b *gamedb.BoolExp) bool {
	if b == nil {
		return false
	}
	switch b.Type {
	case gamedb.BoolAnd:
		return EvalBoolExp(g, player, thing, b.Sub1) && EvalBoolExp(g, player, thing, b.Sub2)
	case gamedb.BoolOr:
		return EvalBoolExp(g, player, thing, b.Sub1) || EvalBoolExp(g, player, thing, b.Sub2)
	case gamedb.BoolNot:
		return !EvalBoolExp(g, player, thing, b.Sub1)
	case gamedb.BoolConst:
		// Passes if the player is, or is carrying, the named object
		ref := gamedb.DBRef(b.Thing)
		if ref == player {
			return true
		}
		if obj, ok := g.DB.Objects[ref]; ok {
			return obj.Location == player
		}
		return false
	case gamedb.BoolIs:
		if b.Sub1 != nil && b.Sub1.Type == gamedb.BoolConst {
			return gamedb.DBRef(b.Sub1.Thing) == player
		}
		if b.Sub1 != nil && b.Sub1.Type == gamedb.BoolAttr {
			return evalAttrLock(g, player, b.Sub1)
		}
		return false
	case gamedb.BoolCarry:
		if b.Sub1 != nil && b.Sub1.Type == gamedb.BoolConst {
			if obj, ok := g.DB.Objects[gamedb.DBRef(b.Sub1.Thing)]; ok {
				return obj.Location == player
			}
			return false
		}
		if b.Sub1 != nil && b.Sub1.Type == gamedb.BoolAttr {
			for _, ref := range g.DB.ContentsList(player) {
				if evalAttrLock(g, ref, b.Sub1) {
					return true
				}
			}
		}
		return false
	case gamedb.BoolOwner:
		if b.Sub1 == nil || b.Sub1.Type != gamedb.BoolConst {
			return false
		}
		pObj, ok1 := g.DB.Objects[player]
		tObj, ok2 := g.DB.Objects[gamedb.DBRef(b.Sub1.Thing)]
		return ok1 && ok2 && pObj.Owner == tObj.Owner
	case gamedb.BoolAttr:
		return evalAttrLock(g, player, b)
	}
	return false
}

// evalAttrLock checks an attribute lock (name:pattern) against obj.
func evalAttrLock(g *Game, obj gamedb.DBRef, b *gamedb.BoolExp) bool {
	val := g.GetAttrText(obj, b.Thing)
	if val == "" {
		return false
	}
	return wildMatchCI(b.StrVal, val)
}

// ---------- High-Level Lock Check ----------

// CouldDoIt checks if player passes the lock on thing for the given lock
// attribute. Wizards always pass (except against God); POW_PASS_LOCKS
// bypasses all locks. Empty lock = unlocked (pass).
func CouldDoIt(g *Game, player, thing gamedb.DBRef, lockAttr int) bool {
	if PassLocks(g, player) {
		return true
	}

	if Wizard(g, player) {
		if !IsGod(g, thing) || IsGod(g, player) {
			return true
		}
	}

	lockText := g.GetAttrText(thing, lockAttr)
	if lockText != "" {
		parsed := ParseBoolExp(g, player, lockText)
		return EvalBoolExp(g, player, thing, parsed)
	}

	// For the default lock, also check the header-based lock
	if lockAttr == gamedb.AttrLock {
		if tObj, ok := g.DB.Objects[thing]; ok && tObj.Lock != nil {
			return EvalBoolExp(g, player, thing, tObj.Lock)
		}
	}

	// No lock = unlocked
	return true
}

// wildMatchCI performs case-insensitive wildcard matching with '*' and '?'.
func wildMatchCI(pattern, str string) bool {
	return wildMatchSimple(strings.ToLower(pattern), strings.ToLower(str))
}

func wildMatchSimple(pattern, str string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			pattern = strings.TrimLeft(pattern, "*")
			if pattern == "" {
				return true
			}
			for i := 0; i <= len(str); i++ {
				if wildMatchSimple(pattern, str[i:]) {
					return true
				}
			}
			return false
		case '?':
			if str == "" {
				return false
			}
			pattern, str = pattern[1:], str[1:]
		default:
			if str == "" || pattern[0] != str[0] {
				return false
			}
			pattern, str = pattern[1:], str[1:]
		}
	}
	return str == ""
}
