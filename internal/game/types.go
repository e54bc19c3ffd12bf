package game

import (
	"fmt"
	"strings"

	"power_chess/internal/shared"
)

type (
	Color    = shared.Color
	Location = shared.Location
)

const (
	White = shared.White
	Black = shared.Black
	Other = shared.Other
)

func NewLocation(row, col int) (Location, error) { return shared.NewLocation(row, col) }

func ParseLocation(coord string) (Location, error) { return shared.ParseLocation(coord) }

func ParseColor(s string) (Color, bool) { return shared.ParseColor(s) }

type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

func (p PieceType) String() string {
	switch p {
	case Pawn:
		return "P"
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return fmt.Sprintf("piece(%d)", p)
	}
}

func (p PieceType) Name() string {
	switch p {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "?"
	}
}

// Promotable reports whether a pawn may turn into this piece type.
func (p PieceType) Promotable() bool {
	switch p {
	case Knight, Bishop, Rook, Queen:
		return true
	default:
		return false
	}
}

func ParsePieceType(s string) (PieceType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p", "pawn":
		return Pawn, true
	case "n", "knight":
		return Knight, true
	case "b", "bishop":
		return Bishop, true
	case "r", "rook":
		return Rook, true
	case "q", "queen":
		return Queen, true
	case "k", "king":
		return King, true
	default:
		return 0, false
	}
}

func (p PieceType) MarshalText() ([]byte, error) { return []byte(p.Name()), nil }

func (p *PieceType) UnmarshalText(text []byte) error {
	parsed, ok := ParsePieceType(string(text))
	if !ok {
		return fmt.Errorf("invalid piece type %q", string(text))
	}
	*p = parsed
	return nil
}

// RankOrder is the material value used when comparing pieces.
var RankOrder = map[PieceType]int{Pawn: 1, Knight: 3, Bishop: 3, Rook: 5, Queen: 9, King: 10}

// Piece is a single chess piece. Moves relocate the pointer; they never copy it.
type Piece struct {
	Type  PieceType
	Color Color
	Moved bool
}

func NewPiece(color Color, pt PieceType) *Piece {
	return &Piece{Type: pt, Color: color}
}

func (p *Piece) Rank() int { return RankOrder[p.Type] }

func (p *Piece) String() string {
	if p == nil {
		return "-"
	}
	return p.Color.String() + " " + p.Type.Name()
}

type Rarity uint8

const (
	Common Rarity = iota
	Rare
	Legendary
)

func (r Rarity) String() string {
	switch r {
	case Common:
		return "common"
	case Rare:
		return "rare"
	case Legendary:
		return "legendary"
	default:
		return "?"
	}
}

var AllRarities = []Rarity{Common, Rare, Legendary}

func ParseRarity(s string) (Rarity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "common", "c":
		return Common, true
	case "rare", "r":
		return Rare, true
	case "legendary", "l":
		return Legendary, true
	default:
		return Common, false
	}
}

func (r Rarity) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Rarity) UnmarshalText(text []byte) error {
	parsed, ok := ParseRarity(string(text))
	if !ok {
		return fmt.Errorf("invalid rarity %q", string(text))
	}
	*r = parsed
	return nil
}

type PowerUpKind uint8

const (
	Invulnerability PowerUpKind = iota
	BlackHole
)

func (k PowerUpKind) String() string {
	switch k {
	case Invulnerability:
		return "invulnerability"
	case BlackHole:
		return "black_hole"
	default:
		return "?"
	}
}

func (k PowerUpKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *PowerUpKind) UnmarshalText(text []byte) error {
	parsed, err := parseEnum(text, BlackHole, "power-up kind")
	*k = parsed
	return err
}

// Forever marks a power-up that never expires.
const Forever = -1

// PowerUp is an effect bound to a square with a remaining-turn counter.
type PowerUp struct {
	Kind           PowerUpKind
	TurnsRemaining int
}

func NewPowerUp(kind PowerUpKind, turns int) *PowerUp {
	return &PowerUp{Kind: kind, TurnsRemaining: turns}
}

func (p *PowerUp) decrement() {
	if p.TurnsRemaining != Forever && p.TurnsRemaining > 0 {
		p.TurnsRemaining--
	}
}

func (p *PowerUp) Expired() bool {
	return p.TurnsRemaining != Forever && p.TurnsRemaining <= 0
}

type OccupantKind uint8

const (
	// OccupantNone marks an unused attached slot; it is never reported.
	OccupantNone OccupantKind = iota
	OccupantEmpty
	OccupantPiece
	OccupantGhost
	OccupantPowerObject
	OccupantPowerUp
)

func (k OccupantKind) String() string {
	switch k {
	case OccupantEmpty:
		return "empty"
	case OccupantPiece:
		return "piece"
	case OccupantGhost:
		return "ghost"
	case OccupantPowerObject:
		return "power_object"
	case OccupantPowerUp:
		return "power_up"
	default:
		return "none"
	}
}

func (k OccupantKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *OccupantKind) UnmarshalText(text []byte) error {
	parsed, err := parseEnum(text, OccupantPowerUp, "occupant kind")
	*k = parsed
	return err
}

// Occupant is one entity sitting on a square. Only the fields matching Kind
// are meaningful.
type Occupant struct {
	Kind    OccupantKind
	Piece   *Piece
	Color   Color
	Rarity  Rarity
	PowerUp *PowerUp
}

func emptyOccupant() Occupant { return Occupant{Kind: OccupantEmpty} }

func pieceOccupant(p *Piece) Occupant { return Occupant{Kind: OccupantPiece, Piece: p, Color: p.Color} }

func ghostOccupant(c Color) Occupant { return Occupant{Kind: OccupantGhost, Color: c} }

func powerObjectOccupant(r Rarity) Occupant { return Occupant{Kind: OccupantPowerObject, Rarity: r} }

func powerUpOccupant(p *PowerUp) Occupant { return Occupant{Kind: OccupantPowerUp, PowerUp: p} }

// Jumpable reports whether a piece may pass over this occupant.
func (o Occupant) Jumpable() bool {
	switch o.Kind {
	case OccupantPowerObject:
		return false
	default:
		return true
	}
}

func (o Occupant) String() string {
	switch o.Kind {
	case OccupantPiece:
		return o.Piece.String()
	case OccupantGhost:
		return o.Color.String() + " ghost"
	case OccupantPowerObject:
		return o.Rarity.String() + " power object"
	case OccupantPowerUp:
		return o.PowerUp.Kind.String()
	default:
		return o.Kind.String()
	}
}

// Move is the sole move submission shape.
type Move struct {
	Start Location `json:"from"`
	End   Location `json:"to"`
}

func (m Move) String() string { return m.Start.String() + m.End.String() }

// ParseMove reads coordinate pairs such as "e2e4" or "e2 e4".
func ParseMove(s string) (Move, error) {
	compact := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if len(compact) != 4 {
		return Move{}, fmt.Errorf("%w: move %q", ErrInvalidLocation, s)
	}
	start, err := shared.ParseLocation(compact[:2])
	if err != nil {
		return Move{}, err
	}
	end, err := shared.ParseLocation(compact[2:])
	if err != nil {
		return Move{}, err
	}
	return Move{Start: start, End: end}, nil
}

// MoveKind classifies a legal move so execution knows its side effects.
type MoveKind uint8

const (
	MoveNormal MoveKind = iota
	MoveDoubleStep
	MoveEnPassant
	MoveCastleKingside
	MoveCastleQueenside
)

func (k MoveKind) String() string {
	switch k {
	case MoveNormal:
		return "normal"
	case MoveDoubleStep:
		return "double_step"
	case MoveEnPassant:
		return "en_passant"
	case MoveCastleKingside:
		return "castle_kingside"
	case MoveCastleQueenside:
		return "castle_queenside"
	default:
		return "?"
	}
}

func (k MoveKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *MoveKind) UnmarshalText(text []byte) error {
	parsed, err := parseEnum(text, MoveCastleQueenside, "move kind")
	*k = parsed
	return err
}

func (k MoveKind) isCastle() bool { return k == MoveCastleKingside || k == MoveCastleQueenside }

type Phase uint8

const (
	WaitingForMove Phase = iota
	WaitingForPromote
	WaitingForPowerupChoice
	WaitingForPowerupExec
	GameOver
)

func (p Phase) String() string {
	switch p {
	case WaitingForMove:
		return "waiting_for_move"
	case WaitingForPromote:
		return "waiting_for_promote"
	case WaitingForPowerupChoice:
		return "waiting_for_powerup_choice"
	case WaitingForPowerupExec:
		return "waiting_for_powerup_exec"
	case GameOver:
		return "game_over"
	default:
		return "?"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := parseEnum(text, GameOver, "phase")
	*p = parsed
	return err
}

// parseEnum finds the value in [0, last] whose String form is text.
func parseEnum[T interface {
	~uint8
	String() string
}](text []byte, last T, what string) (T, error) {
	for v := T(0); v <= last; v++ {
		if v.String() == string(text) {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", what, string(text))
}
