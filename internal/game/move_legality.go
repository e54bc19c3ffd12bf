package game

import "power_chess/internal/shared"

// Legal decides whether m is a legal move on b and, if so, which kind. It
// never mutates the board. There is no check detection; kings are captured.
func Legal(b *Board, m Move) (MoveKind, bool) {
	if m.Start == m.End {
		return MoveNormal, false
	}
	pc := b.PieceAt(m.Start)
	if pc == nil {
		return MoveNormal, false
	}
	switch pc.Type {
	case Pawn:
		return legalPawn(b, pc, m)
	case Knight:
		return MoveNormal, legalKnight(b, m)
	case Bishop:
		return MoveNormal, legalBishop(b, m)
	case Rook:
		return MoveNormal, legalRook(b, m)
	case Queen:
		return MoveNormal, legalBishop(b, m) || legalRook(b, m)
	case King:
		return legalKing(b, pc, m)
	default:
		return MoveNormal, false
	}
}

// isValidEnd reports whether the mover may land on end: the square is either
// empty or holds a capturable enemy piece, and carries no power-up.
func isValidEnd(b *Board, start, end Location) bool {
	if b.IsInvulnerable(end) {
		return false
	}
	if b.IsEmpty(end) {
		return true
	}
	target := b.PieceAt(end)
	if target == nil {
		// Power objects are picked up by landing on them.
		_, ok := b.PowerObjectAt(end)
		return ok
	}
	mover := b.PieceAt(start)
	return mover != nil && target.Color != mover.Color
}

// checkInLine walks from start in unit steps toward end; every square strictly
// between must be empty.
func checkInLine(b *Board, start, end Location, dr, dc int) bool {
	if dr == 0 && dc == 0 {
		return false
	}
	cur := start
	for {
		next, ok := cur.Offset(dr, dc)
		if !ok {
			return false
		}
		if next == end {
			return isValidEnd(b, start, end)
		}
		if !b.IsEmpty(next) {
			return false
		}
		cur = next
	}
}

func legalRook(b *Board, m Move) bool {
	dr, dc := shared.Delta(m.Start, m.End)
	if dr != 0 && dc != 0 {
		return false
	}
	return checkInLine(b, m.Start, m.End, shared.Signum(dr), shared.Signum(dc))
}

func legalBishop(b *Board, m Move) bool {
	dr, dc := shared.Delta(m.Start, m.End)
	if shared.Abs(dr) != shared.Abs(dc) {
		return false
	}
	return checkInLine(b, m.Start, m.End, shared.Signum(dr), shared.Signum(dc))
}

// legalKnight accepts an L-shape when either two-square path to the
// destination is jumpable: the long leg first, or the short leg first.
func legalKnight(b *Board, m Move) bool {
	dr, dc := shared.Delta(m.Start, m.End)
	ar, ac := shared.Abs(dr), shared.Abs(dc)
	if !(ar == 2 && ac == 1) && !(ar == 1 && ac == 2) {
		return false
	}
	if !isValidEnd(b, m.Start, m.End) {
		return false
	}
	rowFirst := knightPathJumpable(b, m.Start, dr, dc, true)
	colFirst := knightPathJumpable(b, m.Start, dr, dc, false)
	return rowFirst || colFirst
}

// knightPathJumpable checks the two intermediate squares of one path. When
// rowFirst is set the path moves along the rows before turning.
func knightPathJumpable(b *Board, start Location, dr, dc int, rowFirst bool) bool {
	sr, sc := shared.Signum(dr), shared.Signum(dc)
	var steps [2][2]int
	if rowFirst {
		if shared.Abs(dr) == 2 {
			steps = [2][2]int{{sr, 0}, {2 * sr, 0}}
		} else {
			steps = [2][2]int{{sr, 0}, {sr, sc}}
		}
	} else {
		if shared.Abs(dc) == 2 {
			steps = [2][2]int{{0, sc}, {0, 2 * sc}}
		} else {
			steps = [2][2]int{{0, sc}, {sr, sc}}
		}
	}
	for _, step := range steps {
		loc, ok := start.Offset(step[0], step[1])
		if !ok || !b.IsJumpable(loc) {
			return false
		}
	}
	return true
}

func legalPawn(b *Board, pc *Piece, m Move) (MoveKind, bool) {
	dir := pc.Color.Forward()
	dr, dc := shared.Delta(m.Start, m.End)
	switch {
	case dc == 0 && dr == dir:
		return MoveNormal, pawnCanAdvanceTo(b, m.End)
	case dc == 0 && dr == 2*dir:
		if pc.Moved || m.Start.Row() != pc.Color.PawnRank() {
			return MoveNormal, false
		}
		skipped, ok := m.Start.Offset(dir, 0)
		if !ok || !b.IsEmpty(skipped) {
			return MoveNormal, false
		}
		return MoveDoubleStep, pawnCanAdvanceTo(b, m.End)
	case shared.Abs(dc) == 1 && dr == dir:
		if b.IsInvulnerable(m.End) {
			return MoveNormal, false
		}
		if target := b.PieceAt(m.End); target != nil {
			return MoveNormal, target.Color != pc.Color
		}
		if owner, ok := b.GhostAt(m.End); ok && owner != pc.Color {
			victim, onBoard := m.End.Offset(-dir, 0)
			return MoveEnPassant, onBoard && !b.IsInvulnerable(victim)
		}
		return MoveNormal, false
	default:
		return MoveNormal, false
	}
}

// pawnCanAdvanceTo is the straight-ahead destination rule: no piece, no ghost
// and no power-up. A power object may be collected this way.
func pawnCanAdvanceTo(b *Board, end Location) bool {
	if b.PieceAt(end) != nil || b.IsInvulnerable(end) {
		return false
	}
	_, ghost := b.GhostAt(end)
	return !ghost
}

func legalKing(b *Board, pc *Piece, m Move) (MoveKind, bool) {
	dr, dc := shared.Delta(m.Start, m.End)
	if shared.Abs(dr) <= 1 && shared.Abs(dc) <= 1 {
		return MoveNormal, isValidEnd(b, m.Start, m.End)
	}
	if dr != 0 || pc.Moved {
		return MoveNormal, false
	}
	switch dc {
	case 2:
		return MoveCastleKingside, canCastle(b, pc, m, MoveCastleKingside)
	case -2:
		return MoveCastleQueenside, canCastle(b, pc, m, MoveCastleQueenside)
	default:
		return MoveNormal, false
	}
}

// canCastle requires an unmoved friendly rook at the corner and every square
// between king and rook to be empty and free of power-ups.
func canCastle(b *Board, king *Piece, m Move, kind MoveKind) bool {
	rookLeg, ok := castleRookMove(m, kind)
	if !ok {
		return false
	}
	rook := b.PieceAt(rookLeg.From)
	if rook == nil || rook.Type != Rook || rook.Color != king.Color || rook.Moved {
		return false
	}
	for _, loc := range shared.Line(m.Start, rookLeg.From) {
		if !b.IsEmpty(loc) || b.IsInvulnerable(loc) {
			return false
		}
	}
	return true
}
