package match

import "testing"

func TestParseEnglish(t *testing.T) {
	const all = Everything
	tests := []struct {
		name      string
		in        string
		flags     Flags
		wantName  string
		wantFlags Flags
		wantCount int
	}{
		{"plain noun", "apple", all, "apple", all, 0},
		{"my restricts to inventory", "my sword", all,
			"sword", all &^ (Neighbor | Exit | Container | RemoteContents), 0},
		{"me restricts to inventory", "me sword", all,
			"sword", all &^ (Neighbor | Exit | Container | RemoteContents), 0},
		{"this restricts to neighbors", "this rock", all,
			"rock", all &^ (Possession | Exit | RemoteContents | Container), 0},
		{"here restricts to neighbors", "here lamp", all,
			"lamp", all &^ (Possession | Exit | RemoteContents | Container), 0},
		{"this here restricts to neighbors", "this here rock", all,
			"rock", all &^ (Possession | Exit), 0},
		{"toward restricts to exits", "toward north", all,
			"north", all &^ (Neighbor | Possession | Container | RemoteContents), 0},
		{"bare restriction word resets", "toward ", all, "toward ", all, 0},
		{"no inventory scope leaves my alone", "my sword", Neighbor,
			"my sword", Neighbor, 0},
		{"count adjective", "2nd coin", all, "coin", all, 2},
		{"count after restriction", "my 3rd dagger", all,
			"dagger", all &^ (Neighbor | Exit | Container | RemoteContents), 3},
		{"teens take th", "12th gem", all, "gem", all, 12},
		{"twenty-first", "21st key", all, "key", all, 21},
		{"suffix disagreement is a literal", "12nd gem", all, "12nd gem", all, 0},
		{"zero is a literal", "0th box", all, "0th box", all, 0},
		{"bare number is a noun", "2 coins", all, "2 coins", all, 0},
		{"count without noun is a literal", "5th", all, "5th", all, 0},
		{"adjectives fold case", "MY Sword", all,
			"Sword", all &^ (Neighbor | Exit | Container | RemoteContents), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotName, gotFlags, gotCount := parseEnglish(tt.in, tt.flags)
			if gotName != tt.wantName {
				t.Errorf("parseEnglish(%q) name = %q, want %q", tt.in, gotName, tt.wantName)
			}
			if gotFlags != tt.wantFlags {
				t.Errorf("parseEnglish(%q) flags = %#x, want %#x", tt.in, gotFlags, tt.wantFlags)
			}
			if gotCount != tt.wantCount {
				t.Errorf("parseEnglish(%q) count = %d, want %d", tt.in, gotCount, tt.wantCount)
			}
		})
	}
}

func TestParseOrdinal(t *testing.T) {
	tests := []struct {
		in    string
		count int
		ok    bool
	}{
		{"1st", 1, true},
		{"2nd", 2, true},
		{"3rd", 3, true},
		{"4th", 4, true},
		{"11th", 11, true},
		{"12th", 12, true},
		{"13th", 13, true},
		{"21st", 21, true},
		{"22nd", 22, true},
		{"23rd", 23, true},
		{"101st", 101, true},
		{"2ND", 2, true},
		{"11st", 0, false},
		{"12nd", 0, false},
		{"13rd", 0, false},
		{"1th", 0, false},
		{"4st", 0, false},
		{"0th", 0, false},
		{"2", 0, false},
		{"th", 0, false},
		{"2xx", 0, false},
	}
	for _, tt := range tests {
		count, ok := parseOrdinal(tt.in)
		if count != tt.count || ok != tt.ok {
			t.Errorf("parseOrdinal(%q) = (%d, %v), want (%d, %v)",
				tt.in, count, ok, tt.count, tt.ok)
		}
	}
}
