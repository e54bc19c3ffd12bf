package game

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// SpawnedObject is a power object that appeared during a mutation.
type SpawnedObject struct {
	Location Location
	Rarity   Rarity
}

// ExpiredPowerUp is a power-up removed because its counter ran out.
type ExpiredPowerUp struct {
	Location Location
	Kind     PowerUpKind
}

// Result is what every mutating call reports back.
type Result struct {
	Phase   Phase
	Active  Color
	Outcome *MoveOutcome
	Spawned *SpawnedObject
	Expired []ExpiredPowerUp
	Offers  []PowerAction
	Changes []SquareChange
	Note    string
}

func (g *Game) begin() boardSnapshot {
	g.lastNote = ""
	return g.board.snapshot()
}

func (g *Game) result(before boardSnapshot, res Result) Result {
	res.Phase = g.phase
	res.Active = g.active
	res.Offers = g.Offers()
	res.Changes = g.board.changesSince(before)
	res.Note = g.lastNote
	return res
}

// SubmitMove stores m for the active player and plays it.
func (g *Game) SubmitMove(m Move) (Result, error) {
	if err := g.requireOpen(); err != nil {
		return Result{}, err
	}
	g.activePlayer().SetMove(m)
	return g.Turn()
}

// Turn plays the active player's pending move.
func (g *Game) Turn() (Result, error) {
	m, err := g.activePlayer().takeMove()
	if err != nil {
		return Result{}, err
	}
	if err := g.requireOpen(); err != nil {
		return Result{}, err
	}
	if g.phase != WaitingForMove {
		return Result{}, fmt.Errorf("%w: game is %s", ErrIllegalMove, g.phase)
	}
	mover := g.active
	pc := g.board.PieceAt(m.Start)
	if pc == nil {
		return Result{}, fmt.Errorf("%w: no piece on %s", ErrIllegalMove, m.Start)
	}
	if pc.Color != mover {
		return Result{}, fmt.Errorf("%w: the piece on %s belongs to %s", ErrIllegalMove, m.Start, pc.Color)
	}
	kind, ok := Legal(g.board, m)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s cannot play %s", ErrIllegalMove, pc.Type.Name(), m)
	}

	before := g.begin()
	out := g.board.Apply(m, kind)
	g.recordHistory(out, mover)
	g.turns++
	g.consumeShield(out)
	g.log.WithFields(logrus.Fields{
		"color": mover.String(),
		"from":  m.Start.String(),
		"to":    m.End.String(),
		"kind":  kind.String(),
	}).Debug("move played")
	g.note("%s %s %s", mover, pc.Type.Name(), m)
	res := Result{Outcome: &out}

	if captured := out.CapturedPiece(); captured != nil && captured.Type == King {
		g.finish(mover, fmt.Sprintf("%s captured the %s king", mover, captured.Color))
		return g.result(before, res), nil
	}

	offered := false
	if rarity, ok := out.CapturedPowerObject(); ok {
		g.offers = g.offerActions(rarity, m.End, mover)
		offered = len(g.offers) > 0
		g.log.WithFields(logrus.Fields{"color": mover.String(), "rarity": rarity.String()}).Debug("power object collected")
		g.note("%s collected a %s power object", mover, rarity)
	}

	g.tickSpawn(&res)
	g.passTurn()

	promote := pc.Type == Pawn && m.End.Row() == mover.Opposite().BackRank()
	switch {
	case promote:
		loc := m.End
		g.promotion = &loc
		g.phase = WaitingForPromote
	case offered:
		g.phase = WaitingForPowerupChoice
	}
	if promote || offered {
		g.active = mover
	}
	g.tickPowerUps(&res)
	return g.result(before, res), nil
}

// Promote stores pt for the active player and executes the pending promotion.
func (g *Game) Promote(pt PieceType) (Result, error) {
	if err := g.requirePromotion(); err != nil {
		return Result{}, err
	}
	g.activePlayer().SetPromotion(pt)
	return g.ExecutePromotion()
}

// ExecutePromotion replaces the pending pawn with the active player's choice.
func (g *Game) ExecutePromotion() (Result, error) {
	if err := g.requirePromotion(); err != nil {
		return Result{}, err
	}
	pt, err := g.activePlayer().takePromotion()
	if err != nil {
		return Result{}, err
	}
	if !pt.Promotable() {
		return Result{}, fmt.Errorf("%w: cannot promote to %s", ErrIllegalPromotion, pt.Name())
	}
	loc := *g.promotion
	pawn := g.board.PieceAt(loc)
	if pawn == nil {
		return Result{}, fmt.Errorf("%w: no pawn on %s", ErrIllegalPromotion, loc)
	}

	before := g.begin()
	g.board.ReplacePiece(loc, &Piece{Type: pt, Color: pawn.Color, Moved: true})
	g.promotion = nil
	g.note("%s promoted on %s to %s", pawn.Color, loc, pt.Name())
	if len(g.offers) > 0 {
		g.phase = WaitingForPowerupChoice
	} else {
		g.phase = WaitingForMove
		g.passTurn()
	}
	return g.result(before, Result{}), nil
}

func (g *Game) requirePromotion() error {
	if err := g.requireOpen(); err != nil {
		return err
	}
	if g.phase != WaitingForPromote || g.promotion == nil {
		return fmt.Errorf("%w: no promotion pending", ErrIllegalPromotion)
	}
	return nil
}

// ChoosePowerAction picks one of the offers by id or name.
func (g *Game) ChoosePowerAction(id string) (Result, error) {
	if err := g.requireOpen(); err != nil {
		return Result{}, err
	}
	if g.phase != WaitingForPowerupChoice {
		return Result{}, fmt.Errorf("%w: no power action is on offer", ErrPrecondition)
	}
	kind, ok := ParseActionKind(id)
	if ok {
		for i := range g.offers {
			if g.offers[i].Kind != kind {
				continue
			}
			before := g.begin()
			chosen := g.offers[i]
			g.chosen = &chosen
			g.phase = WaitingForPowerupExec
			g.note("%s chose %s", g.active, chosen.Name())
			return g.result(before, Result{}), nil
		}
	}
	return Result{}, fmt.Errorf("%w: %q is not on offer", ErrInvalidActionInput, id)
}

// ExecutePowerAction runs the chosen action with in. Invalid input leaves the
// game untouched.
func (g *Game) ExecutePowerAction(in ActionInput) (Result, error) {
	if err := g.requireOpen(); err != nil {
		return Result{}, err
	}
	if g.phase != WaitingForPowerupExec || g.chosen == nil {
		return Result{}, fmt.Errorf("%w: no power action chosen", ErrPrecondition)
	}
	action := *g.chosen
	if !action.ValidInput(g, in) {
		return Result{}, fmt.Errorf("%w: %s needs %s, got %s", ErrInvalidActionInput, action.Name(), action.InputFormat().Kind, in)
	}

	before := g.begin()
	mover := g.active
	effect := action.act(g, in)
	g.offers = nil
	g.chosen = nil
	g.log.WithFields(logrus.Fields{"color": mover.String(), "action": action.ID(), "input": in.String()}).Debug("power action executed")
	res := Result{Outcome: effect.outcome}

	if g.resolveMissingKings() {
		return g.result(before, res), nil
	}
	for _, loc := range effect.moved {
		pc := g.board.PieceAt(loc)
		if pc != nil && pc.Type == Pawn && pc.Color == mover && loc.Row() == mover.Opposite().BackRank() {
			promo := loc
			g.promotion = &promo
			g.phase = WaitingForPromote
			return g.result(before, res), nil
		}
	}
	g.phase = WaitingForMove
	g.passTurn()
	return g.result(before, res), nil
}

// SpawnPowerObject places a power object explicitly.
func (g *Game) SpawnPowerObject(loc Location, rarity Rarity) (Result, error) {
	if err := g.requireOpen(); err != nil {
		return Result{}, err
	}
	before := g.begin()
	if err := g.board.AddPowerObject(loc, rarity); err != nil {
		return Result{}, err
	}
	g.note("%s power object placed on %s", rarity, loc)
	return g.result(before, Result{Spawned: &SpawnedObject{Location: loc, Rarity: rarity}}), nil
}

// Resign ends the game in favour of color's opponent.
func (g *Game) Resign(color Color) (Result, error) {
	if err := g.requireOpen(); err != nil {
		return Result{}, err
	}
	if color != White && color != Black {
		return Result{}, fmt.Errorf("%w: %s cannot resign", ErrPrecondition, color)
	}
	before := g.begin()
	g.finish(color.Opposite(), fmt.Sprintf("%s resigned", color))
	return g.result(before, Result{}), nil
}
