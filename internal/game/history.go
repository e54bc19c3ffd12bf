package game

import "power_chess/internal/shared"

// HistoryEntry is one executed move, in play order.
type HistoryEntry struct {
	Move     Move
	Color    Color
	Piece    PieceType
	Kind     MoveKind
	Captured []OccupantKind
	// ByAction is set when a power action made the move rather than a turn.
	ByAction bool
	Action   ActionKind
}

func (g *Game) recordHistory(out MoveOutcome, color Color) *HistoryEntry {
	entry := HistoryEntry{Move: out.Move, Color: color, Kind: out.Kind}
	if out.Piece != nil {
		entry.Piece = out.Piece.Type
	}
	for _, occ := range out.Captured {
		entry.Captured = append(entry.Captured, occ.Kind)
	}
	g.history = append(g.history, entry)
	return &g.history[len(g.history)-1]
}

// occupantView is the comparable value form of an occupant, used to detect
// which squares a mutation touched.
type occupantView struct {
	kind      OccupantKind
	pieceType PieceType
	color     Color
	moved     bool
	rarity    Rarity
	powerUp   PowerUpKind
	turns     int
}

type boardSnapshot [shared.BoardSize * shared.BoardSize][2]occupantView

func viewOf(o Occupant) occupantView {
	v := occupantView{kind: o.Kind, color: o.Color, rarity: o.Rarity}
	if o.Piece != nil {
		v.pieceType = o.Piece.Type
		v.moved = o.Piece.Moved
	}
	if o.PowerUp != nil {
		v.powerUp = o.PowerUp.Kind
		v.turns = o.PowerUp.TurnsRemaining
	}
	return v
}

func (b *Board) snapshot() boardSnapshot {
	var snap boardSnapshot
	for idx := range b.squares {
		snap[idx] = [2]occupantView{viewOf(b.squares[idx].primary), viewOf(b.squares[idx].attached)}
	}
	return snap
}

// SquareChange lists the full occupant set of a square after a mutation.
type SquareChange struct {
	Location  Location        `json:"square"`
	Occupants []OccupantState `json:"occupants"`
}

func (b *Board) changesSince(before boardSnapshot) []SquareChange {
	after := b.snapshot()
	var out []SquareChange
	for idx := range after {
		if after[idx] == before[idx] {
			continue
		}
		loc, _ := shared.LocationFromIndex(idx)
		out = append(out, SquareChange{Location: loc, Occupants: occupantStates(b.OccupantsAt(loc))})
	}
	return out
}
