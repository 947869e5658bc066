package validate

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/crystal-mush/mushmatch/pkg/gamedb"
)

func newObj(ref gamedb.DBRef, name string, typ gamedb.ObjectType, owner gamedb.DBRef) *gamedb.Object {
	return &gamedb.Object{
		DBRef:    ref,
		Name:     name,
		Location: gamedb.Nothing,
		Zone:     gamedb.Nothing,
		Contents: gamedb.Nothing,
		Exits:    gamedb.Nothing,
		Link:     gamedb.Nothing,
		Next:     gamedb.Nothing,
		Owner:    owner,
		Parent:   gamedb.Nothing,
		Flags:    [3]int{int(typ), 0, 0},
	}
}

func cleanDB() *gamedb.Database {
	db := gamedb.NewDatabase()
	room := newObj(0, "Hall", gamedb.TypeRoom, 1)
	room.Contents = 1
	wiz := newObj(1, "Wizard", gamedb.TypePlayer, 1)
	wiz.Location = 0
	db.Objects[0] = room
	db.Objects[1] = wiz
	db.Size = 2
	return db
}

func hasFinding(findings []Finding, cat Category, substr string) bool {
	for _, f := range findings {
		if f.Category == cat && strings.Contains(f.Description, substr) {
			return true
		}
	}
	return false
}

func TestCleanDatabase(t *testing.T) {
	v := New(cleanDB())
	if findings := v.Run(); len(findings) != 0 {
		t.Errorf("clean database produced findings: %+v", findings)
	}
}

func TestIntegrityFindings(t *testing.T) {
	db := cleanDB()
	stray := newObj(3, "apple", gamedb.TypeThing, 1)
	stray.Location = 99
	stray.Parent = 98
	db.Objects[3] = stray
	selfOwned := newObj(4, "idol", gamedb.TypeThing, 4)
	selfOwned.Location = 0
	db.Objects[4] = selfOwned

	v := New(db)
	findings := v.Run()

	if !hasFinding(findings, CatIntegrityError, "location #99 does not exist") {
		t.Error("dangling location not reported")
	}
	if !hasFinding(findings, CatIntegrityError, "parent #98 does not exist") {
		t.Error("dangling parent not reported")
	}
	if !hasFinding(findings, CatIntegrityWarn, "owner #4 is not a player") {
		t.Error("non-player owner not reported")
	}
}

func TestChainLoopDetected(t *testing.T) {
	db := cleanDB()
	a := newObj(5, "a", gamedb.TypeThing, 1)
	b := newObj(6, "b", gamedb.TypeThing, 1)
	a.Location, b.Location = 0, 0
	a.Next, b.Next = 6, 5
	db.Objects[0].Contents = 5
	db.Objects[5] = a
	db.Objects[6] = b

	v := New(db)
	if !hasFinding(v.Run(), CatIntegrityError, "contents chain has loop") {
		t.Error("contents loop not reported")
	}
}

func TestApplyFixDanglingLocation(t *testing.T) {
	db := cleanDB()
	stray := newObj(3, "apple", gamedb.TypeThing, 1)
	stray.Location = 99
	db.Objects[3] = stray

	v := New(db)
	var id string
	for _, f := range v.Run() {
		if f.Category == CatIntegrityError && f.Fixable {
			id = f.ID
			break
		}
	}
	if id == "" {
		t.Fatal("no fixable integrity finding")
	}
	if err := v.ApplyFix(id); err != nil {
		t.Fatalf("ApplyFix: %v", err)
	}
	if stray.Location != gamedb.Nothing {
		t.Errorf("location after fix = %d, want NOTHING", stray.Location)
	}
	if err := v.ApplyFix(id); err == nil {
		t.Error("second ApplyFix on same finding succeeded")
	}
	if v2 := New(db); hasFinding(v2.Run(), CatIntegrityError, "location #99") {
		t.Error("finding persists after fix")
	}
}

func TestMatchingFindings(t *testing.T) {
	db := cleanDB()

	rose := newObj(7, "Rose", gamedb.TypePlayer, 7)
	rose.Location = 0
	db.Objects[7] = rose
	rosie := newObj(8, "Rosie", gamedb.TypePlayer, 8)
	rosie.Location = 0
	rosie.SetAttr(gamedb.AttrAlias, "Rose;;R")
	db.Objects[8] = rosie

	ghost := newObj(9, "", gamedb.TypeThing, 1)
	ghost.Location = 0
	db.Objects[9] = ghost

	lost := newObj(10, "east", gamedb.TypeExit, 1)
	lost.Exits = 77
	db.Objects[10] = lost

	locked := newObj(11, "chest", gamedb.TypeThing, 1)
	locked.Location = 0
	locked.Lock = &gamedb.BoolExp{
		Type: gamedb.BoolOr,
		Sub1: &gamedb.BoolExp{Type: gamedb.BoolConst, Thing: 1},
		Sub2: &gamedb.BoolExp{
			Type: gamedb.BoolCarry,
			Sub1: &gamedb.BoolExp{Type: gamedb.BoolConst, Thing: 55},
		},
	}
	db.Objects[11] = locked

	v := New(db)
	findings := v.Run()

	if !hasFinding(findings, CatMatching, `player name "rose" is claimed by 2`) {
		t.Error("duplicate player name not reported")
	}
	if !hasFinding(findings, CatMatching, "empty name") {
		t.Error("nameless object not reported")
	}
	if !hasFinding(findings, CatMatching, "contains empty segments") {
		t.Error("malformed alias list not reported")
	}
	if !hasFinding(findings, CatMatching, "source #77 does not exist") {
		t.Error("dead exit source not reported")
	}
	if !hasFinding(findings, CatMatching, "nonexistent object(s) [55]") {
		t.Error("dead lock reference not reported")
	}

	if n := v.ApplyAll(CatMatching); n != 1 {
		t.Errorf("ApplyAll fixed %d findings, want 1", n)
	}
	if got := rosie.GetAttr(gamedb.AttrAlias); got != "Rose;R" {
		t.Errorf("alias after fix = %q, want %q", got, "Rose;R")
	}
}

func TestProxyRegistrationChecks(t *testing.T) {
	db := cleanDB()
	room := db.Objects[0]

	marked := newObj(12, "vendor", gamedb.TypeThing, 1)
	marked.Location = 0
	marked.Flags[2] |= gamedb.Flag3Proxy
	db.Objects[12] = marked
	plain := newObj(13, "crate", gamedb.TypeThing, 1)
	plain.Location = 0
	db.Objects[13] = plain

	db.AddAttrDef(256, "PROXY`12", 0)
	db.AddAttrDef(257, "PROXY`13", 0)
	db.AddAttrDef(258, "PROXY`99", 0)
	room.SetAttr(256, "not-a-number")
	room.SetAttr(257, "1")
	room.SetAttr(258, "2")

	v := New(db)
	findings := v.Run()

	if !hasFinding(findings, CatMatching, "targets dead object #99") {
		t.Error("dead proxy target not reported")
	}
	if !hasFinding(findings, CatMatching, "targets #13, which is not a proxy-flagged thing") {
		t.Error("unmarked proxy target not reported")
	}
	if !hasFinding(findings, CatMatching, `priority "not-a-number" is not numeric`) {
		t.Error("bad priority not reported")
	}

	if n := v.ApplyAll(CatMatching); n != 1 {
		t.Errorf("ApplyAll fixed %d findings, want 1", n)
	}
	if room.GetAttr(258) != "" {
		t.Error("dead proxy registration not cleared by fix")
	}
}

func TestGenerateReport(t *testing.T) {
	db := cleanDB()
	stray := newObj(3, "apple", gamedb.TypeThing, 1)
	stray.Location = 99
	db.Objects[3] = stray

	v := New(db)
	v.Run()
	r := GenerateReport(v)

	if r.TotalFindings != len(v.Findings()) {
		t.Errorf("TotalFindings = %d, want %d", r.TotalFindings, len(v.Findings()))
	}
	sum, ok := r.Categories[CatIntegrityError.String()]
	if !ok || sum.Total == 0 || sum.Fixable == 0 {
		t.Errorf("integrity-error summary = %+v", sum)
	}
	if sum.Label != "Referential Integrity Errors" {
		t.Errorf("label = %q", sum.Label)
	}

	var buf bytes.Buffer
	if err := r.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report JSON does not decode: %v", err)
	}
	if decoded.TotalFindings != r.TotalFindings {
		t.Error("report mangled in JSON roundtrip")
	}
}
