// Package game implements the power chess rules engine: the multi-occupant
// board, move legality, the turn state machine and the power action catalog.
package game

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Player is bound to a color and holds the submissions the game consumes.
type Player struct {
	color     Color
	move      *Move
	promotion *PieceType
}

func (p *Player) Color() Color { return p.color }

// SetMove stores the move the next Turn call will play.
func (p *Player) SetMove(m Move) { p.move = &m }

// SetPromotion stores the piece the next ExecutePromotion call will use.
func (p *Player) SetPromotion(pt PieceType) { p.promotion = &pt }

func (p *Player) takeMove() (Move, error) {
	if p.move == nil {
		return Move{}, fmt.Errorf("%w: %s has no pending move", ErrPrecondition, p.color)
	}
	m := *p.move
	p.move = nil
	return m, nil
}

func (p *Player) takePromotion() (PieceType, error) {
	if p.promotion == nil {
		return 0, fmt.Errorf("%w: %s has not chosen a promotion piece", ErrPrecondition, p.color)
	}
	pt := *p.promotion
	p.promotion = nil
	return pt, nil
}

// Options configures a new Game. The zero value is a standard game with a
// time-seeded source and a silent logger.
type Options struct {
	Rand   Rand
	Logger logrus.FieldLogger
	// Board replaces the starting position.
	Board *Board
	// FirstToMove defaults to White.
	FirstToMove Color
	// DisableSpawning stops power objects from appearing on their own.
	DisableSpawning bool
}

// Game owns the board and every other piece of match state. It is not safe
// for concurrent use.
type Game struct {
	board     *Board
	players   [2]*Player
	active    Color
	phase     Phase
	history   []HistoryEntry
	countdown int
	spawning  bool
	promotion *Location
	offers    []PowerAction
	chosen    *PowerAction
	hasWinner bool
	winner    Color
	status    string
	lastNote  string
	turns     int

	rng      Rand
	rarities *Selector[Rarity]
	log      logrus.FieldLogger
}

func NewGame(opts Options) *Game {
	rng := opts.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	logger := opts.Logger
	if logger == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		logger = silent
	}
	board := opts.Board
	if board == nil {
		board = NewBoard()
	}
	first := opts.FirstToMove
	if first != Black {
		first = White
	}
	g := &Game{
		board:    board,
		players:  [2]*Player{{color: White}, {color: Black}},
		active:   first,
		phase:    WaitingForMove,
		spawning: !opts.DisableSpawning,
		status:   "in progress",
		rng:      rng,
		rarities: newRaritySelector(rng),
		log:      logger,
	}
	g.resetCountdown()
	return g
}

// Player returns the player bound to color.
func (g *Game) Player(color Color) *Player {
	if color == Black {
		return g.players[1]
	}
	return g.players[0]
}

func (g *Game) activePlayer() *Player { return g.Player(g.active) }

func (g *Game) ActiveColor() Color { return g.active }

func (g *Game) Phase() Phase { return g.phase }

// OccupantsAt returns a copy of what sits on loc.
func (g *Game) OccupantsAt(loc Location) []Occupant {
	occs := g.board.OccupantsAt(loc)
	for i := range occs {
		if occs[i].Piece != nil {
			pc := *occs[i].Piece
			occs[i].Piece = &pc
		}
		if occs[i].PowerUp != nil {
			pu := *occs[i].PowerUp
			occs[i].PowerUp = &pu
		}
	}
	return occs
}

// PieceAt returns a copy of the piece on loc.
func (g *Game) PieceAt(loc Location) (Piece, bool) {
	pc := g.board.PieceAt(loc)
	if pc == nil {
		return Piece{}, false
	}
	return *pc, true
}

func (g *Game) Offers() []PowerAction {
	return append([]PowerAction(nil), g.offers...)
}

// ChosenAction is the offer picked and awaiting execution.
func (g *Game) ChosenAction() (PowerAction, bool) {
	if g.chosen == nil {
		return PowerAction{}, false
	}
	return *g.chosen, true
}

func (g *Game) History() []HistoryEntry {
	return append([]HistoryEntry(nil), g.history...)
}

// PowerUps returns every active power-up keyed by square.
func (g *Game) PowerUps() map[Location]PowerUp {
	out := make(map[Location]PowerUp)
	for _, entry := range g.board.PowerUps() {
		out[entry.Location] = *entry.PowerUp
	}
	return out
}

func (g *Game) PendingPromotion() (Location, bool) {
	if g.promotion == nil {
		return Location{}, false
	}
	return *g.promotion, true
}

func (g *Game) Winner() (Color, bool) { return g.winner, g.hasWinner }

func (g *Game) Status() string { return g.status }

func (g *Game) LastNote() string { return g.lastNote }

// SpawnCountdown is the number of turns until the next power object appears.
func (g *Game) SpawnCountdown() int { return g.countdown }

// Turns counts completed turns.
func (g *Game) Turns() int { return g.turns }

// Validate checks the board occupancy rules.
func (g *Game) Validate() error { return g.board.Validate() }

// note appends a human-readable line to the note of the current mutation.
func (g *Game) note(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if strings.TrimSpace(line) == "" {
		return
	}
	if g.lastNote == "" {
		g.lastNote = line
		return
	}
	g.lastNote += "; " + line
}
