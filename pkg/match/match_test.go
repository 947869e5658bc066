package match

import (
	"strings"
	"testing"

	"github.com/crystal-mush/mushmatch/pkg/gamedb"
)

// fakeWorld is a minimal World over plain maps, with hooks for the
// permission predicates.
type fakeObj struct {
	name    string
	typ     gamedb.ObjectType
	loc     gamedb.DBRef
	aliases []string
	proxy   bool
}

type fakeWorld struct {
	objs        map[gamedb.DBRef]*fakeObj
	contents    map[gamedb.DBRef][]gamedb.DBRef
	exits       map[gamedb.DBRef][]gamedb.DBRef
	proxies     map[gamedb.DBRef][]Proxy
	zones       map[gamedb.DBRef]gamedb.DBRef
	master      gamedb.DBRef
	longFingers bool
	controlFn   func(who, what gamedb.DBRef) bool
	interactFn  func(obj, who gamedb.DBRef) bool
	lockFn      func(who, thing gamedb.DBRef) bool
	notices     []string
}

var _ World = (*fakeWorld)(nil)

func (f *fakeWorld) Valid(ref gamedb.DBRef) bool {
	_, ok := f.objs[ref]
	return ok
}

func (f *fakeWorld) Typeof(ref gamedb.DBRef) gamedb.ObjectType {
	if o, ok := f.objs[ref]; ok {
		return o.typ
	}
	return gamedb.TypeGarbage
}

func (f *fakeWorld) Name(ref gamedb.DBRef) string {
	o, ok := f.objs[ref]
	if !ok {
		return ""
	}
	if idx := strings.IndexByte(o.name, ';'); idx >= 0 {
		return o.name[:idx]
	}
	return o.name
}

func (f *fakeWorld) Aliases(ref gamedb.DBRef) []string {
	o, ok := f.objs[ref]
	if !ok {
		return nil
	}
	if o.typ == gamedb.TypeExit {
		return strings.Split(o.name, ";")
	}
	return o.aliases
}

func (f *fakeWorld) Location(ref gamedb.DBRef) gamedb.DBRef {
	if o, ok := f.objs[ref]; ok {
		return o.loc
	}
	return gamedb.Nothing
}

func (f *fakeWorld) ExitSource(exit gamedb.DBRef) gamedb.DBRef {
	return f.Location(exit)
}

func (f *fakeWorld) Contents(ref gamedb.DBRef) []gamedb.DBRef {
	return f.contents[ref]
}

func (f *fakeWorld) ExitsOf(ref gamedb.DBRef) []gamedb.DBRef {
	return f.exits[ref]
}

func (f *fakeWorld) Zone(ref gamedb.DBRef) gamedb.DBRef {
	if z, ok := f.zones[ref]; ok {
		return z
	}
	return gamedb.Nothing
}

func (f *fakeWorld) MasterRoom() gamedb.DBRef {
	return f.master
}

func (f *fakeWorld) Controls(who, what gamedb.DBRef) bool {
	if f.controlFn != nil {
		return f.controlFn(who, what)
	}
	return who == what
}

func (f *fakeWorld) CanInteract(obj, who gamedb.DBRef) bool {
	if f.interactFn != nil {
		return f.interactFn(obj, who)
	}
	return true
}

func (f *fakeWorld) PassesLock(who, thing gamedb.DBRef) bool {
	if f.lockFn != nil {
		return f.lockFn(who, thing)
	}
	return true
}

func (f *fakeWorld) LongFingers(who gamedb.DBRef) bool {
	return f.longFingers
}

func (f *fakeWorld) Nearby(who, obj gamedb.DBRef) bool {
	if who == obj {
		return true
	}
	return f.Location(obj) == who || obj == f.Location(who) ||
		f.Location(obj) == f.Location(who)
}

func (f *fakeWorld) ProxyMarked(ref gamedb.DBRef) bool {
	o, ok := f.objs[ref]
	return ok && o.proxy
}

func (f *fakeWorld) Proxies(scope gamedb.DBRef) []Proxy {
	return f.proxies[scope]
}

func (f *fakeWorld) LookupPlayer(name string) gamedb.DBRef {
	for ref, o := range f.objs {
		if o.typ != gamedb.TypePlayer {
			continue
		}
		if strings.EqualFold(o.name, name) {
			return ref
		}
		for _, alias := range o.aliases {
			if strings.EqualFold(alias, name) {
				return ref
			}
		}
	}
	return gamedb.Nothing
}

func (f *fakeWorld) VisiblePlayerSearch(who gamedb.DBRef, name string) gamedb.DBRef {
	found := gamedb.Nothing
	for ref, o := range f.objs {
		if o.typ != gamedb.TypePlayer {
			continue
		}
		if hasPrefixFold(o.name, name) {
			if found != gamedb.Nothing {
				return gamedb.Ambiguous
			}
			found = ref
		}
	}
	return found
}

func (f *fakeWorld) Notify(who gamedb.DBRef, msg string) {
	f.notices = append(f.notices, msg)
}

// newTestWorld builds a foyer holding a wizard, some props, three coins,
// a player/thing name collision, and two exits.
func newTestWorld() *fakeWorld {
	f := &fakeWorld{
		objs:     make(map[gamedb.DBRef]*fakeObj),
		contents: make(map[gamedb.DBRef][]gamedb.DBRef),
		exits:    make(map[gamedb.DBRef][]gamedb.DBRef),
		proxies:  make(map[gamedb.DBRef][]Proxy),
		zones:    make(map[gamedb.DBRef]gamedb.DBRef),
		master:   gamedb.Nothing,
	}
	add := func(ref gamedb.DBRef, name string, typ gamedb.ObjectType, loc gamedb.DBRef) {
		f.objs[ref] = &fakeObj{name: name, typ: typ, loc: loc}
	}
	add(0, "The Crystal Foyer", gamedb.TypeRoom, gamedb.Nothing)
	add(1, "Wizard", gamedb.TypePlayer, 0)
	add(3, "apple", gamedb.TypeThing, 0)
	add(4, "apple pie", gamedb.TypeThing, 0)
	add(5, "brass lantern", gamedb.TypeThing, 1)
	add(6, "North;n;out", gamedb.TypeExit, 0)
	add(7, "South;s", gamedb.TypeExit, 0)
	add(10, "gold coin", gamedb.TypeThing, 0)
	add(11, "gold coin", gamedb.TypeThing, 0)
	add(12, "gold coin", gamedb.TypeThing, 0)
	add(13, "Rose", gamedb.TypePlayer, 0)
	add(14, "rose", gamedb.TypeThing, 0)
	f.contents[0] = []gamedb.DBRef{1, 3, 4, 14, 13, 10, 11, 12}
	f.contents[1] = []gamedb.DBRef{5}
	f.exits[0] = []gamedb.DBRef{6, 7}
	return f
}

func TestMeAndHereShortcuts(t *testing.T) {
	w := newTestWorld()
	if got := Result(w, 1, "me", NoType, Everything); got != 1 {
		t.Errorf(`"me" = %d, want 1`, got)
	}
	if got := Result(w, 1, "here", NoType, Everything); got != 0 {
		t.Errorf(`"here" = %d, want 0`, got)
	}
	// A room has no location, so "here" anchored to a room finds nothing.
	if got := Relative(w, 1, 0, "here", NoType, Everything); got != gamedb.Nothing {
		t.Errorf(`"here" anchored to room = %d, want Nothing`, got)
	}
}

func TestAbsoluteShortcut(t *testing.T) {
	w := newTestWorld()
	if got := Result(w, 1, "#3", NoType, Everything); got != 3 {
		t.Errorf("#3 = %d, want 3", got)
	}
	if got := Result(w, 1, "#99", NoType, Everything); got != gamedb.Nothing {
		t.Errorf("#99 = %d, want Nothing", got)
	}
	// The Near restriction rejects a dbref in another room.
	w.objs[17] = &fakeObj{name: "Vault", typ: gamedb.TypeRoom, loc: gamedb.Nothing}
	w.objs[18] = &fakeObj{name: "ingot", typ: gamedb.TypeThing, loc: 17}
	w.contents[17] = []gamedb.DBRef{18}
	if got := Result(w, 1, "#18", NoType, Nearby); got != gamedb.Nothing {
		t.Errorf("#18 under Near = %d, want Nothing", got)
	}
	w.longFingers = true
	if got := Result(w, 1, "#18", NoType, Nearby); got != 18 {
		t.Errorf("#18 with long fingers = %d, want 18", got)
	}
}

func TestPlayerShortcut(t *testing.T) {
	w := newTestWorld()
	if got := Result(w, 1, "*Rose", NoType, Everything); got != 13 {
		t.Errorf("*Rose = %d, want 13", got)
	}
	// PMatch accepts an unprefixed name too.
	if got := Result(w, 1, "Wizard", NoType, Everything); got != 1 {
		t.Errorf("Wizard = %d, want 1", got)
	}
	// Partial player search kicks in when there is no exact name.
	if got := Result(w, 1, "*Wiz", NoType, Everything); got != 1 {
		t.Errorf("*Wiz = %d, want 1", got)
	}

	// A distant player is out of reach under Near unless who has long
	// fingers.
	w.objs[17] = &fakeObj{name: "Vault", typ: gamedb.TypeRoom, loc: gamedb.Nothing}
	w.objs[16] = &fakeObj{name: "Eve", typ: gamedb.TypePlayer, loc: 17}
	w.contents[17] = []gamedb.DBRef{16}
	if got := Result(w, 1, "*Eve", NoType, Nearby); got != gamedb.Nothing {
		t.Errorf("*Eve under Near = %d, want Nothing", got)
	}
	if got := Result(w, 1, "*Eve", NoType, Everything); got != 16 {
		t.Errorf("*Eve without Near = %d, want 16", got)
	}
	w.longFingers = true
	if got := Result(w, 1, "*Eve", NoType, Nearby); got != 16 {
		t.Errorf("*Eve with long fingers = %d, want 16", got)
	}
}

func TestExactBeatsPartial(t *testing.T) {
	w := newTestWorld()
	if got := Result(w, 1, "apple", NoType, Everything); got != 3 {
		t.Errorf("apple = %d, want 3", got)
	}
	if got := Result(w, 1, "pie", NoType, Everything); got != 4 {
		t.Errorf("pie = %d, want 4", got)
	}
	if got := Result(w, 1, "app", NoType, Everything); got != gamedb.Ambiguous {
		t.Errorf("app = %d, want Ambiguous", got)
	}
	if got := Result(w, 1, "app", NoType, Everything|ExactOnly); got != gamedb.Nothing {
		t.Errorf("app under ExactOnly = %d, want Nothing", got)
	}
}

func TestAmbiguityAndLast(t *testing.T) {
	w := newTestWorld()
	if got := Result(w, 1, "coin", NoType, Everything); got != gamedb.Ambiguous {
		t.Errorf("coin = %d, want Ambiguous", got)
	}
	if got := LastResult(w, 1, "coin", NoType, Everything); got != 12 {
		t.Errorf("coin under Last = %d, want 12", got)
	}

	// Two exits answering to the same alias are ambiguous too.
	w.objs[15] = &fakeObj{name: "north;gate", typ: gamedb.TypeExit, loc: 0}
	w.exits[0] = append(w.exits[0], 15)
	if got := Result(w, 1, "north", NoType, Everything); got != gamedb.Ambiguous {
		t.Errorf("north with two exits = %d, want Ambiguous", got)
	}
	if got := LastResult(w, 1, "north", NoType, Everything); got != 15 {
		t.Errorf("north under Last = %d, want 15", got)
	}
}

func TestTypePreference(t *testing.T) {
	w := newTestWorld()
	// "rose" names both a thing (#14, earlier in the room) and a player
	// (#13). With a preferred type and exactly one candidate of that type,
	// the collision resolves instead of going ambiguous.
	if got := Result(w, 1, "rose", TypePlayer, Neighbor); got != 13 {
		t.Errorf("rose preferring players = %d, want 13", got)
	}
	if got := Result(w, 1, "rose", TypeThing, Neighbor); got != 14 {
		t.Errorf("rose preferring things = %d, want 14", got)
	}
	if got := Result(w, 1, "rose", NoType, Neighbor); got != gamedb.Ambiguous {
		t.Errorf("rose with no preference = %d, want Ambiguous", got)
	}
	// TypeStrict turns the preference into a requirement.
	if got := Result(w, 1, "apple", TypePlayer, Neighbor|TypeStrict); got != gamedb.Nothing {
		t.Errorf("apple as a strict player = %d, want Nothing", got)
	}
}

func TestOrdinals(t *testing.T) {
	w := newTestWorld()
	if got := Result(w, 1, "1st coin", NoType, Everything); got != 10 {
		t.Errorf("1st coin = %d, want 10", got)
	}
	if got := Result(w, 1, "2nd coin", NoType, Everything); got != 11 {
		t.Errorf("2nd coin = %d, want 11", got)
	}
	if got := Result(w, 1, "3rd coin", NoType, Everything); got != 12 {
		t.Errorf("3rd coin = %d, want 12", got)
	}
	if got := Result(w, 1, "5th coin", NoType, Everything); got != gamedb.Nothing {
		t.Errorf("5th coin = %d, want Nothing", got)
	}
	// A malformed count is matched literally, so nothing is found.
	if got := Result(w, 1, "2rd coin", NoType, Everything); got != gamedb.Nothing {
		t.Errorf("2rd coin = %d, want Nothing", got)
	}
}

func TestRestrictionAdjectives(t *testing.T) {
	w := newTestWorld()
	if got := Result(w, 1, "my lantern", NoType, Everything); got != 5 {
		t.Errorf("my lantern = %d, want 5", got)
	}
	// "my" masks the neighbor pool, so a room object is out of reach.
	if got := Result(w, 1, "my apple", NoType, Everything); got != gamedb.Nothing {
		t.Errorf("my apple = %d, want Nothing", got)
	}
	// "toward" masks everything but exits.
	if got := Result(w, 1, "toward north", NoType, Everything); got != 6 {
		t.Errorf("toward north = %d, want 6", got)
	}
	if got := Result(w, 1, "toward apple", NoType, Everything); got != gamedb.Nothing {
		t.Errorf("toward apple = %d, want Nothing", got)
	}
}

func TestContainerPool(t *testing.T) {
	w := newTestWorld()
	if got := Result(w, 1, "crystal", NoType, Container); got != 0 {
		t.Errorf("crystal = %d, want 0", got)
	}
}

func TestCarriedExits(t *testing.T) {
	w := newTestWorld()
	// Anchored to the room itself, its exits are "carried".
	if got := Relative(w, 1, 0, "north", NoType, CarriedExit); got != 6 {
		t.Errorf("carried north = %d, want 6", got)
	}
}

func TestGlobalAndZoneExits(t *testing.T) {
	w := newTestWorld()
	w.objs[20] = &fakeObj{name: "Master Room", typ: gamedb.TypeRoom, loc: gamedb.Nothing}
	w.objs[21] = &fakeObj{name: "emergency;exit", typ: gamedb.TypeExit, loc: 20}
	w.exits[20] = []gamedb.DBRef{21}
	w.master = 20
	if got := Result(w, 1, "emergency", NoType, Everything); got != gamedb.Nothing {
		t.Errorf("emergency without Global = %d, want Nothing", got)
	}
	if got := Result(w, 1, "emergency", NoType, Everything|Global); got != 21 {
		t.Errorf("emergency with Global = %d, want 21", got)
	}

	w.objs[22] = &fakeObj{name: "Zone Hub", typ: gamedb.TypeRoom, loc: gamedb.Nothing}
	w.objs[23] = &fakeObj{name: "warp;w", typ: gamedb.TypeExit, loc: 22}
	w.exits[22] = []gamedb.DBRef{23}
	w.zones[0] = 22
	if got := Result(w, 1, "warp", NoType, Everything|Remotes); got != 23 {
		t.Errorf("warp with Remotes = %d, want 23", got)
	}
}

func TestProxyCandidates(t *testing.T) {
	w := newTestWorld()
	w.objs[8] = &fakeObj{name: "vending machine", typ: gamedb.TypeThing, loc: gamedb.Nothing, proxy: true}
	w.proxies[0] = []Proxy{{Ref: 8, Priority: 1}}
	if got := Result(w, 1, "vending", NoType, Everything); got != 8 {
		t.Errorf("vending = %d, want 8", got)
	}

	w.proxies[0] = []Proxy{{Ref: 8, Priority: 0}}
	if got := Result(w, 1, "vending", NoType, Everything); got != gamedb.Nothing {
		t.Errorf("vending with dead registration = %d, want Nothing", got)
	}

	w.proxies[0] = []Proxy{{Ref: 8, Priority: 1}}
	w.objs[8].proxy = false
	if got := Result(w, 1, "vending", NoType, Everything); got != gamedb.Nothing {
		t.Errorf("vending without proxy mark = %d, want Nothing", got)
	}
}

func TestControlRequirement(t *testing.T) {
	w := newTestWorld()
	got := Result(w, 1, "apple", NoType, Everything|Control|Noisy)
	if got != gamedb.Nothing {
		t.Errorf("uncontrolled apple = %d, want Nothing", got)
	}
	if len(w.notices) != 1 || w.notices[0] != msgNoControl {
		t.Errorf("notices = %v, want [%q]", w.notices, msgNoControl)
	}

	w.controlFn = func(who, what gamedb.DBRef) bool { return true }
	if got := Result(w, 1, "apple", NoType, Everything|Control); got != 3 {
		t.Errorf("controlled apple = %d, want 3", got)
	}
}

func TestNoisyMessages(t *testing.T) {
	w := newTestWorld()
	if got := NoisyResult(w, 1, "xyzzy", NoType, Everything); got != gamedb.Nothing {
		t.Errorf("xyzzy = %d, want Nothing", got)
	}
	if got := NoisyResult(w, 1, "app", NoType, Everything); got != gamedb.Nothing {
		t.Errorf("noisy app = %d, want Nothing", got)
	}
	want := []string{msgNotSeen, msgAmbiguous}
	if len(w.notices) != len(want) {
		t.Fatalf("notices = %v, want %v", w.notices, want)
	}
	for i := range want {
		if w.notices[i] != want[i] {
			t.Errorf("notice %d = %q, want %q", i, w.notices[i], want[i])
		}
	}
}

func TestInvalidAnchor(t *testing.T) {
	w := newTestWorld()
	if got := Relative(w, 1, 99, "apple", NoType, Nearby|Noisy); got != gamedb.Nothing {
		t.Errorf("apple from dead anchor = %d, want Nothing", got)
	}
	if len(w.notices) != 1 || w.notices[0] != msgNotSeen {
		t.Errorf("notices = %v, want [%q]", w.notices, msgNotSeen)
	}
	// Without the Near restriction a dead anchor degrades to whatever the
	// shortcuts can still resolve.
	if got := Relative(w, 1, 99, "#3", NoType, Everything); got != 3 {
		t.Errorf("#3 from dead anchor = %d, want 3", got)
	}
}

func TestInteractionFilter(t *testing.T) {
	w := newTestWorld()
	w.interactFn = func(obj, who gamedb.DBRef) bool { return obj != 3 }
	if got := Result(w, 1, "apple", NoType, Everything); got != 4 {
		t.Errorf("apple with #3 hidden = %d, want 4", got)
	}
}

func TestCheckKeysTieBreak(t *testing.T) {
	w := newTestWorld()
	// All three coins match "gold coin" exactly; only #10 passes its
	// lock, so CheckKeys keeps it over the later matches.
	w.lockFn = func(who, thing gamedb.DBRef) bool { return thing == 10 }
	got := Result(w, 1, "gold coin", NoType, Everything|CheckKeys)
	if got != 10 {
		t.Errorf("gold coin under CheckKeys = %d, want 10", got)
	}
}

func TestControlledEntryPoint(t *testing.T) {
	w := newTestWorld()
	w.controlFn = func(who, what gamedb.DBRef) bool { return who == 1 }
	if got := Controlled(w, 1, "apple"); got != 3 {
		t.Errorf("Controlled apple = %d, want 3", got)
	}
	w.controlFn = func(who, what gamedb.DBRef) bool { return false }
	if got := Controlled(w, 1, "apple"); got != gamedb.Nothing {
		t.Errorf("Controlled apple without control = %d, want Nothing", got)
	}
}
