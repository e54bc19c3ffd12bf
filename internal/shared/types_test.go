package shared

import (
	"errors"
	"testing"
)

func TestNewLocationBounds(t *testing.T) {
	tests := []struct {
		row, col int
		ok       bool
	}{
		{0, 0, true},
		{7, 7, true},
		{-1, 0, false},
		{0, 8, false},
		{8, 3, false},
	}
	for _, tt := range tests {
		_, err := NewLocation(tt.row, tt.col)
		if tt.ok && err != nil {
			t.Fatalf("NewLocation(%d,%d): %v", tt.row, tt.col, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidLocation) {
			t.Fatalf("NewLocation(%d,%d): err = %v, want ErrInvalidLocation", tt.row, tt.col, err)
		}
	}
}

func TestParseLocationRoundTrip(t *testing.T) {
	for _, coord := range []string{"a1", "e4", "h8", "c7"} {
		loc, err := ParseLocation(coord)
		if err != nil {
			t.Fatalf("ParseLocation(%q): %v", coord, err)
		}
		if loc.String() != coord {
			t.Fatalf("round trip %q -> %q", coord, loc.String())
		}
	}
	for _, bad := range []string{"", "i1", "a9", "e44", "4e"} {
		if _, err := ParseLocation(bad); !errors.Is(err, ErrInvalidLocation) {
			t.Fatalf("ParseLocation(%q): err = %v, want ErrInvalidLocation", bad, err)
		}
	}
}

func TestOffsetStaysOnBoard(t *testing.T) {
	loc := MustLocation(0, 7)
	if _, ok := loc.Offset(0, 1); ok {
		t.Fatalf("h1 + one column should fall off the board")
	}
	next, ok := loc.Offset(1, -1)
	if !ok || next.String() != "g2" {
		t.Fatalf("h1 offset (1,-1) = %s %v, want g2", next, ok)
	}
}

func TestLineBetween(t *testing.T) {
	tests := []struct {
		from, to string
		want     []string
	}{
		{"a1", "a4", []string{"a2", "a3"}},
		{"e1", "h1", []string{"f1", "g1"}},
		{"e1", "a1", []string{"d1", "c1", "b1"}},
		{"c1", "f4", []string{"d2", "e3"}},
		{"a1", "b3", nil},
		{"a1", "a2", nil},
	}
	for _, tt := range tests {
		got := Line(mustParse(t, tt.from), mustParse(t, tt.to))
		if len(got) != len(tt.want) {
			t.Fatalf("Line(%s,%s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
		for i := range got {
			if got[i].String() != tt.want[i] {
				t.Fatalf("Line(%s,%s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		}
	}
}

func TestAdjacentAtCorner(t *testing.T) {
	if n := len(Adjacent(MustLocation(0, 0))); n != 3 {
		t.Fatalf("a1 neighbours = %d, want 3", n)
	}
	if n := len(Adjacent(MustLocation(3, 3))); n != 8 {
		t.Fatalf("d4 neighbours = %d, want 8", n)
	}
}

func TestColorHelpers(t *testing.T) {
	if White.Opposite() != Black || Black.Opposite() != White || Other.Opposite() != Other {
		t.Fatalf("unexpected Opposite results")
	}
	if White.Forward() != 1 || Black.Forward() != -1 {
		t.Fatalf("unexpected Forward results")
	}
	if White.BackRank() != 0 || Black.BackRank() != 7 {
		t.Fatalf("unexpected BackRank results")
	}
	if c, ok := ParseColor("B"); !ok || c != Black {
		t.Fatalf("ParseColor(B) = %s %v", c, ok)
	}
}

func mustParse(t *testing.T, coord string) Location {
	t.Helper()
	loc, err := ParseLocation(coord)
	if err != nil {
		t.Fatalf("invalid coordinate %s", coord)
	}
	return loc
}
