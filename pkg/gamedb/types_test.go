package gamedb

import "testing"

func TestObjectTypeString(t *testing.T) {
	tests := []struct {
		typ  ObjectType
		want string
	}{
		{TypeRoom, "ROOM"},
		{TypeThing, "THING"},
		{TypeExit, "EXIT"},
		{TypePlayer, "PLAYER"},
		{TypeZone, "ZONE"},
		{TypeGarbage, "GARBAGE"},
		{ObjectType(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestObjTypeAndFlags(t *testing.T) {
	obj := &Object{Flags: [3]int{int(TypePlayer) | FlagWizard | FlagDark, Flag2Unfindable, Flag3Proxy}}
	if obj.ObjType() != TypePlayer {
		t.Errorf("ObjType = %v, want Player", obj.ObjType())
	}
	if !obj.HasFlag(FlagWizard) || !obj.HasFlag(FlagDark) {
		t.Error("first-word flags not detected")
	}
	if obj.HasFlag(FlagInherit) {
		t.Error("unset flag detected")
	}
	if !obj.HasFlag2(Flag2Unfindable) || !obj.HasFlag3(Flag3Proxy) {
		t.Error("extension-word flags not detected")
	}
	if obj.IsGoing() {
		t.Error("live object reported as going")
	}
	obj.Flags[0] |= FlagGoing
	if !obj.IsGoing() {
		t.Error("going object not reported")
	}
}

func TestContentsListStopsOnCycle(t *testing.T) {
	db := NewDatabase()
	db.Objects[0] = &Object{DBRef: 0, Contents: 1, Exits: Nothing, Next: Nothing}
	db.Objects[1] = &Object{DBRef: 1, Next: 2, Contents: Nothing, Exits: Nothing}
	db.Objects[2] = &Object{DBRef: 2, Next: 1, Contents: Nothing, Exits: Nothing}

	// The walk must terminate; the cutoff is the database size plus one.
	got := db.ContentsList(0)
	if len(got) > len(db.Objects)+1 {
		t.Errorf("ContentsList walked %d entries on a cyclic chain", len(got))
	}
	if len(got) < 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("ContentsList = %v, want prefix [1 2]", got)
	}
}

func TestContentsListDeadRef(t *testing.T) {
	db := NewDatabase()
	if got := db.ContentsList(99); got != nil {
		t.Errorf("ContentsList(99) = %v, want nil", got)
	}
}

func TestAttrRoundtrip(t *testing.T) {
	obj := &Object{}
	obj.SetAttr(AttrDesc, "A red apple.")
	if got := obj.GetAttr(AttrDesc); got != "A red apple." {
		t.Errorf("GetAttr = %q", got)
	}
	obj.SetAttr(AttrDesc, "A green apple.")
	if got := obj.GetAttr(AttrDesc); got != "A green apple." {
		t.Errorf("GetAttr after overwrite = %q", got)
	}
	if len(obj.Attrs) != 1 {
		t.Errorf("Attrs length = %d, want 1", len(obj.Attrs))
	}
	obj.SetAttr(AttrDesc, "")
	if got := obj.GetAttr(AttrDesc); got != "" {
		t.Errorf("GetAttr after clear = %q", got)
	}
	if len(obj.Attrs) != 0 {
		t.Errorf("Attrs length after clear = %d, want 0", len(obj.Attrs))
	}
}

func TestGetAttrName(t *testing.T) {
	db := NewDatabase()
	if got := db.GetAttrName(AttrDesc); got != "DESC" {
		t.Errorf("GetAttrName(DESC) = %q", got)
	}
	db.AddAttrDef(AttrUserStart, "SECTOR", 0)
	if got := db.GetAttrName(AttrUserStart); got != "SECTOR" {
		t.Errorf("GetAttrName(user) = %q", got)
	}
	if got := db.GetAttrName(9999); got != "" {
		t.Errorf("GetAttrName(unknown) = %q", got)
	}
}
