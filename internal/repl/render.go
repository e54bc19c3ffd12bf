package repl

import (
	"strings"

	"power_chess/internal/game"
	"power_chess/internal/shared"
)

const (
	emptyChar   = 'x'
	powerUpChar = 'W'
)

// RenderBoard draws the board from rank 8 down to rank 1. White pieces are
// lowercase, black pieces uppercase.
func RenderBoard(g *game.Game) string {
	var b strings.Builder
	for row := shared.BoardSize - 1; row >= 0; row-- {
		b.WriteByte(byte('1' + row))
		b.WriteString(" |")
		for col := 0; col < shared.BoardSize; col++ {
			b.WriteRune(squareChar(g.OccupantsAt(shared.MustLocation(row, col))))
		}
		b.WriteByte('\n')
	}
	b.WriteString("   ________\n")
	b.WriteString("   abcdefgh\n")
	return b.String()
}

func squareChar(occs []game.Occupant) rune {
	var power bool
	for _, occ := range occs {
		switch occ.Kind {
		case game.OccupantPiece:
			return pieceChar(occ.Piece)
		case game.OccupantPowerObject, game.OccupantPowerUp:
			power = true
		}
	}
	if power {
		return powerUpChar
	}
	return emptyChar
}

func pieceChar(pc *game.Piece) rune {
	c := rune(pc.Type.String()[0])
	if pc.Color == game.White {
		return c + ('a' - 'A')
	}
	return c
}
