package shared

import (
	"errors"
	"fmt"
	"strings"
)

// BoardSize is the number of rows and columns on the board.
const BoardSize = 8

// ErrInvalidLocation is returned when a coordinate falls outside the board.
var ErrInvalidLocation = errors.New("invalid location")

type Color uint8

const (
	White Color = iota
	Black
	// Other is a placeholder that never owns pieces.
	Other
)

func (c Color) Opposite() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return Other
	}
}

func (c Color) Index() int { return int(c) }

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "other"
	}
}

// Forward is the row delta a pawn of this color advances by.
func (c Color) Forward() int {
	if c == Black {
		return -1
	}
	return 1
}

// BackRank is the row the color's major pieces start on.
func (c Color) BackRank() int {
	if c == Black {
		return BoardSize - 1
	}
	return 0
}

// PawnRank is the row the color's pawns start on.
func (c Color) PawnRank() int {
	if c == Black {
		return BoardSize - 2
	}
	return 1
}

func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	default:
		return Other, false
	}
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(text []byte) error {
	parsed, ok := ParseColor(string(text))
	if !ok {
		return fmt.Errorf("invalid color %q", string(text))
	}
	*c = parsed
	return nil
}

// Location is an immutable board coordinate. The zero value is a1.
type Location struct {
	row int8
	col int8
}

func NewLocation(row, col int) (Location, error) {
	if !InBounds(row, col) {
		return Location{}, fmt.Errorf("%w: (%d, %d)", ErrInvalidLocation, row, col)
	}
	return Location{row: int8(row), col: int8(col)}, nil
}

// MustLocation is NewLocation for constant coordinates; it panics off-board.
func MustLocation(row, col int) Location {
	loc, err := NewLocation(row, col)
	if err != nil {
		panic(err)
	}
	return loc
}

func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

func (l Location) Row() int { return int(l.row) }
func (l Location) Col() int { return int(l.col) }

// Index maps the location onto 0..63, row-major from a1.
func (l Location) Index() int { return int(l.row)*BoardSize + int(l.col) }

func LocationFromIndex(idx int) (Location, bool) {
	if idx < 0 || idx >= BoardSize*BoardSize {
		return Location{}, false
	}
	return Location{row: int8(idx / BoardSize), col: int8(idx % BoardSize)}, true
}

// Offset returns the location dr rows and dc columns away, or false when that
// falls off the board.
func (l Location) Offset(dr, dc int) (Location, bool) {
	row, col := l.Row()+dr, l.Col()+dc
	if !InBounds(row, col) {
		return Location{}, false
	}
	return Location{row: int8(row), col: int8(col)}, true
}

func (l Location) String() string {
	return string([]byte{byte('a' + l.col), byte('1' + l.row)})
}

// ParseLocation reads algebraic coordinates such as "e4".
func ParseLocation(coord string) (Location, error) {
	coord = strings.ToLower(strings.TrimSpace(coord))
	if len(coord) != 2 {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidLocation, coord)
	}
	file, rank := coord[0], coord[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidLocation, coord)
	}
	return Location{row: int8(rank - '1'), col: int8(file - 'a')}, nil
}

func (l Location) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Location) UnmarshalText(text []byte) error {
	parsed, err := ParseLocation(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// AllLocations lists every square, a1 first.
func AllLocations() []Location {
	out := make([]Location, 0, BoardSize*BoardSize)
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			out = append(out, Location{row: int8(row), col: int8(col)})
		}
	}
	return out
}
