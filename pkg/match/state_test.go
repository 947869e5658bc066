package match

import (
	"testing"

	"github.com/crystal-mush/mushmatch/pkg/gamedb"
)

func TestStringMatchWord(t *testing.T) {
	tests := []struct {
		src, sub string
		want     bool
	}{
		{"apple pie", "apple", true},
		{"apple pie", "app", true},
		{"apple pie", "pie", true},
		{"apple pie", "ppl", false},
		{"brass lantern", "lan", true},
		{"semi-precious stone", "prec", true},
		{"gold coin", "coin", true},
		{"gold coin", "gold coin", true},
		{"gold coin", "silver", false},
		{"", "x", false},
		{"x", "", false},
	}
	for _, tt := range tests {
		if got := stringMatchWord(tt.src, tt.sub); got != tt.want {
			t.Errorf("stringMatchWord(%q, %q) = %v, want %v", tt.src, tt.sub, got, tt.want)
		}
	}
}

func TestParseObjRef(t *testing.T) {
	tests := []struct {
		in   string
		want gamedb.DBRef
	}{
		{"#12", 12},
		{"#0", 0},
		{"#-5", gamedb.Nothing},
		{"#x", gamedb.Nothing},
		{"#", gamedb.Nothing},
		{"12", gamedb.Nothing},
		{"apple", gamedb.Nothing},
		{"", gamedb.Nothing},
	}
	for _, tt := range tests {
		if got := parseObjRef(tt.in); got != tt.want {
			t.Errorf("parseObjRef(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		ref  gamedb.DBRef
		want Status
	}{
		{0, StatusFound},
		{42, StatusFound},
		{gamedb.Nothing, StatusNotFound},
		{gamedb.NoPerm, StatusNotFound},
		{gamedb.Home, StatusNotFound},
		{gamedb.Ambiguous, StatusAmbiguous},
	}
	for _, tt := range tests {
		if got := Classify(tt.ref); got != tt.want {
			t.Errorf("Classify(%d) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}

func TestStatusString(t *testing.T) {
	if StatusFound.String() != "found" ||
		StatusAmbiguous.String() != "ambiguous" ||
		StatusNotFound.String() != "notfound" {
		t.Error("Status.String returned unexpected labels")
	}
}
