package flatfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/crystal-mush/mushmatch/pkg/gamedb"
)

// A minimal TinyMUSH 3 dump: a room, a wizard with a lock and an alias,
// and an exit.
const sampleDump = `+T1024769
+S3
+N257
+A256
"0:SECTOR"
!0
"The Crystal Foyer"
-1
-1
1
2
-1
-1

1
-1
0
0
0
0
0
>6
"You stand in a glittering foyer."
<
!1
"Wizard"
0
-1
-1
-1
0
-1
(1|(+1))
1
-1
19
0
0
0
0
>58
"Wiz;W"
<
!2
"North;n;out"
-1
-1
-1
0
0
-1

1
-1
2
0
0
0
0
<
***END OF DUMP***
`

func TestParseSampleDump(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleDump))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(db.Objects) != 3 || db.Size != 3 {
		t.Fatalf("parsed %d objects (size %d), want 3", len(db.Objects), db.Size)
	}
	if db.NextAttr != 257 {
		t.Errorf("NextAttr = %d, want 257", db.NextAttr)
	}
	if def, ok := db.AttrByName["SECTOR"]; !ok || def.Number != 256 {
		t.Error("SECTOR attr definition missing")
	}

	room := db.Objects[0]
	if room.Name != "The Crystal Foyer" || room.ObjType() != gamedb.TypeRoom {
		t.Errorf("room = %q (%v)", room.Name, room.ObjType())
	}
	if room.Contents != 1 || room.Exits != 2 {
		t.Errorf("room chains = contents %d exits %d", room.Contents, room.Exits)
	}
	if room.GetAttr(gamedb.AttrDesc) != "You stand in a glittering foyer." {
		t.Error("room description lost")
	}

	wiz := db.Objects[1]
	if wiz.ObjType() != gamedb.TypePlayer || !wiz.HasFlag(gamedb.FlagWizard) {
		t.Errorf("wizard flags = %#x", wiz.Flags[0])
	}
	if wiz.Location != 0 || wiz.Owner != 1 {
		t.Errorf("wizard location %d owner %d", wiz.Location, wiz.Owner)
	}
	if wiz.GetAttr(gamedb.AttrAlias) != "Wiz;W" {
		t.Error("wizard alias lost")
	}
	lock := wiz.Lock
	if lock == nil || lock.Type != gamedb.BoolOr {
		t.Fatalf("wizard lock = %+v", lock)
	}
	if lock.Sub1 == nil || lock.Sub1.Type != gamedb.BoolConst || lock.Sub1.Thing != 1 {
		t.Errorf("lock left = %+v", lock.Sub1)
	}
	if lock.Sub2 == nil || lock.Sub2.Type != gamedb.BoolCarry {
		t.Errorf("lock right = %+v", lock.Sub2)
	}

	exit := db.Objects[2]
	if exit.ObjType() != gamedb.TypeExit || exit.Exits != 0 {
		t.Errorf("exit = type %v source %d", exit.ObjType(), exit.Exits)
	}
	if room.Lock != nil {
		t.Errorf("room lock = %+v, want nil", room.Lock)
	}
}

func TestWriteParseRoundtrip(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleDump))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, db); err != nil {
		t.Fatalf("Write: %v", err)
	}
	again, err := Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}

	if len(again.Objects) != len(db.Objects) {
		t.Fatalf("roundtrip object count = %d, want %d", len(again.Objects), len(db.Objects))
	}
	wiz := again.Objects[1]
	if wiz.Name != "Wizard" || !wiz.HasFlag(gamedb.FlagWizard) {
		t.Error("wizard mangled in roundtrip")
	}
	if wiz.GetAttr(gamedb.AttrAlias) != "Wiz;W" {
		t.Error("alias mangled in roundtrip")
	}
	if wiz.Lock == nil || wiz.Lock.Type != gamedb.BoolOr {
		t.Errorf("lock mangled in roundtrip: %+v", wiz.Lock)
	}
	if def, ok := again.AttrByName["SECTOR"]; !ok || def.Number != 256 {
		t.Error("attr definition mangled in roundtrip")
	}
}

func TestParseRejectsTruncatedDump(t *testing.T) {
	trunc := strings.TrimSuffix(sampleDump, "***END OF DUMP***\n")
	if _, err := Parse(strings.NewReader(trunc)); err == nil {
		t.Error("truncated dump parsed without error")
	}
}

func TestParseIndirectLockDropped(t *testing.T) {
	dump := strings.Replace(sampleDump, "(1|(+1))", "(@2)", 1)
	db, err := Parse(strings.NewReader(dump))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if db.Objects[1].Lock != nil {
		t.Errorf("indirect lock kept: %+v", db.Objects[1].Lock)
	}
}
