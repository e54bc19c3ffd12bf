package game

import (
	"fmt"

	"power_chess/internal/shared"
)

// square holds everything on one board cell. The primary slot is never
// OccupantNone; it is Empty, a Piece, a PowerObject or a BlackHole. The
// attached slot is either unused, a Ghost or an Invulnerability power-up.
type square struct {
	primary  Occupant
	attached Occupant
}

// Board is the multi-occupant 8x8 grid.
type Board struct {
	squares [shared.BoardSize * shared.BoardSize]square
}

var backRankLayout = [shared.BoardSize]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewEmptyBoard returns a board where every square holds only the Empty marker.
func NewEmptyBoard() *Board {
	b := &Board{}
	for i := range b.squares {
		b.squares[i] = square{primary: emptyOccupant()}
	}
	return b
}

// NewBoard returns the standard starting position.
func NewBoard() *Board {
	b := NewEmptyBoard()
	for _, color := range []Color{White, Black} {
		for col, pt := range backRankLayout {
			b.squares[shared.MustLocation(color.BackRank(), col).Index()].primary = pieceOccupant(NewPiece(color, pt))
			b.squares[shared.MustLocation(color.PawnRank(), col).Index()].primary = pieceOccupant(NewPiece(color, Pawn))
		}
	}
	return b
}

func (b *Board) at(loc Location) *square { return &b.squares[loc.Index()] }

// PieceAt returns the piece on loc, or nil.
func (b *Board) PieceAt(loc Location) *Piece {
	sq := b.at(loc)
	if sq.primary.Kind == OccupantPiece {
		return sq.primary.Piece
	}
	return nil
}

// PowerObjectAt reports the rarity of the power object on loc.
func (b *Board) PowerObjectAt(loc Location) (Rarity, bool) {
	sq := b.at(loc)
	if sq.primary.Kind == OccupantPowerObject {
		return sq.primary.Rarity, true
	}
	return Common, false
}

// PowerUpAt returns the power-up bound to loc, or nil.
func (b *Board) PowerUpAt(loc Location) *PowerUp {
	sq := b.at(loc)
	if sq.primary.Kind == OccupantPowerUp {
		return sq.primary.PowerUp
	}
	if sq.attached.Kind == OccupantPowerUp {
		return sq.attached.PowerUp
	}
	return nil
}

// GhostAt reports the owner of a ghost on loc.
func (b *Board) GhostAt(loc Location) (Color, bool) {
	sq := b.at(loc)
	if sq.attached.Kind == OccupantGhost {
		return sq.attached.Color, true
	}
	return Other, false
}

// OccupantsAt lists the occupants of loc, primary first.
func (b *Board) OccupantsAt(loc Location) []Occupant {
	sq := b.at(loc)
	out := []Occupant{sq.primary}
	if sq.attached.Kind != OccupantNone {
		out = append(out, sq.attached)
	}
	return out
}

// IsEmpty reports whether nothing blocks or can be captured on loc. Ghosts and
// black holes count as empty for movement purposes.
func (b *Board) IsEmpty(loc Location) bool {
	switch b.at(loc).primary.Kind {
	case OccupantEmpty:
		return true
	case OccupantPowerUp:
		return true
	default:
		return false
	}
}

// IsVacant reports whether loc holds only the Empty marker.
func (b *Board) IsVacant(loc Location) bool {
	sq := b.at(loc)
	return sq.primary.Kind == OccupantEmpty && sq.attached.Kind == OccupantNone
}

// IsJumpable reports whether every occupant of loc may be jumped over.
func (b *Board) IsJumpable(loc Location) bool {
	for _, occ := range b.OccupantsAt(loc) {
		if !occ.Jumpable() {
			return false
		}
	}
	return true
}

// IsInvulnerable reports whether loc carries any power-up. Nothing may land on
// such a square.
func (b *Board) IsInvulnerable(loc Location) bool {
	return b.PowerUpAt(loc) != nil
}

// Locations returns every square whose primary piece satisfies keep.
func (b *Board) Locations(keep func(*Piece) bool) []Location {
	var out []Location
	for idx := range b.squares {
		sq := &b.squares[idx]
		if sq.primary.Kind != OccupantPiece || !keep(sq.primary.Piece) {
			continue
		}
		loc, _ := shared.LocationFromIndex(idx)
		out = append(out, loc)
	}
	return out
}

func (b *Board) HasKing(color Color) bool {
	return len(b.Locations(func(p *Piece) bool { return p.Type == King && p.Color == color })) > 0
}

// PowerUps lists every bound power-up with its square.
func (b *Board) PowerUps() []PowerUpAtSquare {
	var out []PowerUpAtSquare
	for _, loc := range shared.AllLocations() {
		if pu := b.PowerUpAt(loc); pu != nil {
			out = append(out, PowerUpAtSquare{Location: loc, PowerUp: pu})
		}
	}
	return out
}

type PowerUpAtSquare struct {
	Location Location
	PowerUp  *PowerUp
}

// Swap exchanges the full contents of two squares.
func (b *Board) Swap(a, c Location) {
	b.squares[a.Index()], b.squares[c.Index()] = b.squares[c.Index()], b.squares[a.Index()]
}

// relocate moves the contents of from onto to, returning whatever to held.
// from is left holding only the Empty marker.
func (b *Board) relocate(from, to Location) []Occupant {
	captured := b.nonEmptyAt(to)
	*b.at(to) = *b.at(from)
	*b.at(from) = square{primary: emptyOccupant()}
	return captured
}

func (b *Board) nonEmptyAt(loc Location) []Occupant {
	var out []Occupant
	for _, occ := range b.OccupantsAt(loc) {
		if occ.Kind != OccupantEmpty {
			out = append(out, occ)
		}
	}
	return out
}

// SetGhost leaves a ghost of color on loc.
func (b *Board) SetGhost(loc Location, color Color) {
	b.at(loc).attached = ghostOccupant(color)
}

// ResetGhost removes every ghost owned by color and returns where they were.
func (b *Board) ResetGhost(color Color) []Location {
	var cleared []Location
	for idx := range b.squares {
		sq := &b.squares[idx]
		if sq.attached.Kind == OccupantGhost && sq.attached.Color == color {
			sq.attached = Occupant{}
			loc, _ := shared.LocationFromIndex(idx)
			cleared = append(cleared, loc)
		}
	}
	return cleared
}

// AddPowerObject places a pickup on a vacant square.
func (b *Board) AddPowerObject(loc Location, rarity Rarity) error {
	if !b.IsVacant(loc) {
		return fmt.Errorf("%w: %s", ErrSquareOccupied, loc)
	}
	b.at(loc).primary = powerObjectOccupant(rarity)
	return nil
}

// AddPowerUp binds an effect to loc. Invulnerability attaches to whatever is
// there; a black hole replaces the Empty marker.
func (b *Board) AddPowerUp(loc Location, pu *PowerUp) error {
	sq := b.at(loc)
	switch pu.Kind {
	case BlackHole:
		if sq.primary.Kind != OccupantEmpty {
			return fmt.Errorf("%w: %s", ErrSquareOccupied, loc)
		}
		sq.primary = powerUpOccupant(pu)
		if sq.attached.Kind == OccupantPowerUp {
			sq.attached = Occupant{}
		}
	default:
		if sq.primary.Kind == OccupantPowerUp {
			return fmt.Errorf("%w: %s", ErrSquareOccupied, loc)
		}
		sq.attached = powerUpOccupant(pu)
	}
	return nil
}

// RemovePowerUp unbinds whatever power-up sits on loc.
func (b *Board) RemovePowerUp(loc Location) *PowerUp {
	sq := b.at(loc)
	if sq.primary.Kind == OccupantPowerUp {
		pu := sq.primary.PowerUp
		sq.primary = emptyOccupant()
		return pu
	}
	if sq.attached.Kind == OccupantPowerUp {
		pu := sq.attached.PowerUp
		sq.attached = Occupant{}
		return pu
	}
	return nil
}

// RemovePieceAt takes the piece off loc together with any protection bound
// to it and restores the Empty marker.
func (b *Board) RemovePieceAt(loc Location) *Piece {
	sq := b.at(loc)
	if sq.primary.Kind != OccupantPiece {
		return nil
	}
	pc := sq.primary.Piece
	sq.primary = emptyOccupant()
	if sq.attached.Kind == OccupantPowerUp {
		sq.attached = Occupant{}
	}
	return pc
}

// PlacePiece removes whatever piece is on loc and puts pc there.
func (b *Board) PlacePiece(loc Location, pc *Piece) {
	b.RemovePieceAt(loc)
	b.ReplacePiece(loc, pc)
}

// ReplacePiece puts pc on loc, keeping any bound power-up.
func (b *Board) ReplacePiece(loc Location, pc *Piece) {
	sq := b.at(loc)
	sq.primary = pieceOccupant(pc)
	if sq.attached.Kind == OccupantGhost {
		sq.attached = Occupant{}
	}
}

// Validate checks the per-square container rules.
func (b *Board) Validate() error {
	for idx := range b.squares {
		sq := &b.squares[idx]
		loc, _ := shared.LocationFromIndex(idx)
		switch sq.primary.Kind {
		case OccupantEmpty, OccupantPiece, OccupantPowerObject:
		case OccupantPowerUp:
			if sq.primary.PowerUp == nil || sq.primary.PowerUp.Kind != BlackHole {
				return fmt.Errorf("square %s: only a black hole may fill the primary slot", loc)
			}
		default:
			return fmt.Errorf("square %s: missing primary occupant", loc)
		}
		if sq.primary.Kind == OccupantPiece && sq.primary.Piece == nil {
			return fmt.Errorf("square %s: nil piece", loc)
		}
		switch sq.attached.Kind {
		case OccupantNone:
		case OccupantGhost:
			if sq.primary.Kind != OccupantEmpty {
				return fmt.Errorf("square %s: ghost shares the square with %s", loc, sq.primary)
			}
		case OccupantPowerUp:
			if sq.attached.PowerUp == nil || sq.attached.PowerUp.Kind != Invulnerability {
				return fmt.Errorf("square %s: only invulnerability may be attached", loc)
			}
			if sq.primary.Kind == OccupantPowerUp || sq.primary.Kind == OccupantPowerObject {
				return fmt.Errorf("square %s: invulnerability cannot share with %s", loc, sq.primary)
			}
		default:
			return fmt.Errorf("square %s: %s cannot be attached", loc, sq.attached.Kind)
		}
	}
	return nil
}
