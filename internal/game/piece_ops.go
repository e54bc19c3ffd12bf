package game

// CastleRookMove records the rook leg of a castling move.
type CastleRookMove struct {
	From Location
	To   Location
}

// MoveOutcome describes what executing a move did to the board.
type MoveOutcome struct {
	Move     Move
	Kind     MoveKind
	Piece    *Piece
	Captured []Occupant
	Castle   *CastleRookMove
	// EnPassant is the square of the pawn removed by an en passant capture.
	EnPassant *Location
	// Ghost is where a double step left its ghost.
	Ghost *Location
	// Changed lists every square the move touched.
	Changed []Location
}

// CapturedPiece returns the first captured piece, if any.
func (o MoveOutcome) CapturedPiece() *Piece {
	for _, occ := range o.Captured {
		if occ.Kind == OccupantPiece {
			return occ.Piece
		}
	}
	return nil
}

// CapturedPowerObject reports the rarity of a captured pickup.
func (o MoveOutcome) CapturedPowerObject() (Rarity, bool) {
	for _, occ := range o.Captured {
		if occ.Kind == OccupantPowerObject {
			return occ.Rarity, true
		}
	}
	return Common, false
}

// Apply executes a move that Legal already classified as kind. The moving
// piece is flagged as moved and everything on the destination is returned as
// captured.
func (b *Board) Apply(m Move, kind MoveKind) MoveOutcome {
	out := MoveOutcome{Move: m, Kind: kind}
	pc := b.PieceAt(m.Start)
	if pc == nil {
		return out
	}
	out.Piece = pc
	pc.Moved = true
	out.Changed = []Location{m.Start, m.End}

	switch kind {
	case MoveCastleKingside, MoveCastleQueenside:
		out.Captured = b.relocate(m.Start, m.End)
		if rook, ok := castleRookMove(m, kind); ok {
			if rookPc := b.PieceAt(rook.From); rookPc != nil {
				rookPc.Moved = true
			}
			b.relocate(rook.From, rook.To)
			out.Castle = &rook
			out.Changed = append(out.Changed, rook.From, rook.To)
		}
	case MoveEnPassant:
		out.Captured = b.relocate(m.Start, m.End)
		if victim, ok := m.End.Offset(-pc.Color.Forward(), 0); ok {
			if target := b.PieceAt(victim); target != nil && target.Color != pc.Color && target.Type == Pawn {
				b.RemovePieceAt(victim)
				out.Captured = append(out.Captured, pieceOccupant(target))
				out.EnPassant = &victim
				out.Changed = append(out.Changed, victim)
			}
		}
	default:
		out.Captured = b.relocate(m.Start, m.End)
		if kind == MoveDoubleStep {
			// A black hole on the skipped square takes no ghost.
			if skipped, ok := m.Start.Offset(pc.Color.Forward(), 0); ok && b.at(skipped).primary.Kind == OccupantEmpty {
				b.SetGhost(skipped, pc.Color)
				out.Ghost = &skipped
				out.Changed = append(out.Changed, skipped)
			}
		}
	}
	return out
}

func castleRookMove(m Move, kind MoveKind) (CastleRookMove, bool) {
	var from, to Location
	var okFrom, okTo bool
	if kind == MoveCastleKingside {
		from, okFrom = m.End.Offset(0, 1)
		to, okTo = m.End.Offset(0, -1)
	} else {
		from, okFrom = m.End.Offset(0, -2)
		to, okTo = m.End.Offset(0, 1)
	}
	return CastleRookMove{From: from, To: to}, okFrom && okTo
}
