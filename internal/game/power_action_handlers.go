package game

import (
	"slices"

	"power_chess/internal/shared"
)

// capturer returns the piece that earned the offer, if it is still in place.
func (g *Game) capturer(ctx actionContext) *Piece {
	pc := g.board.PieceAt(ctx.where)
	if pc == nil || pc.Color != ctx.color {
		return nil
	}
	return pc
}

func validAdjust(g *Game, ctx actionContext, in ActionInput) bool {
	if g.capturer(ctx) == nil {
		return false
	}
	return slices.Contains(shared.Adjacent(ctx.where), in.Square) && g.board.IsVacant(in.Square)
}

func actAdjust(g *Game, ctx actionContext, in ActionInput) actionEffect {
	g.board.relocate(ctx.where, in.Square)
	g.note("%s adjusted %s to %s", ctx.color, ctx.where, in.Square)
	return actionEffect{moved: []Location{in.Square}}
}

func validSecondEffort(g *Game, ctx actionContext, in ActionInput) bool {
	if in.Move.Start != ctx.where || g.capturer(ctx) == nil {
		return false
	}
	_, ok := Legal(g.board, in.Move)
	return ok
}

func actSecondEffort(g *Game, ctx actionContext, in ActionInput) actionEffect {
	kind, _ := Legal(g.board, in.Move)
	out := g.board.Apply(in.Move, kind)
	entry := g.recordHistory(out, ctx.color)
	entry.ByAction = true
	entry.Action = ActionSecondEffort
	g.consumeShield(out)
	if rarity, ok := out.CapturedPowerObject(); ok {
		g.note("%s power object destroyed by %s", rarity, ActionSecondEffort)
	}
	return actionEffect{moved: []Location{in.Move.End}, outcome: &out}
}

func actShield(g *Game, ctx actionContext, _ ActionInput) actionEffect {
	if g.capturer(ctx) == nil {
		return actionEffect{}
	}
	if err := g.board.AddPowerUp(ctx.where, NewPowerUp(Invulnerability, shieldTurns)); err != nil {
		g.log.WithError(err).Debug("shield not applied")
		return actionEffect{}
	}
	g.note("%s shielded %s", ctx.color, ctx.where)
	return actionEffect{}
}

func validSwap(g *Game, ctx actionContext, in ActionInput) bool {
	if in.Square == ctx.where || g.capturer(ctx) == nil {
		return false
	}
	pc := g.board.PieceAt(in.Square)
	return pc != nil && pc.Color == ctx.color
}

func actSwap(g *Game, ctx actionContext, in ActionInput) actionEffect {
	g.board.Swap(ctx.where, in.Square)
	g.note("%s swapped %s with %s", ctx.color, ctx.where, in.Square)
	return actionEffect{moved: []Location{ctx.where, in.Square}}
}

// actRewind moves the opponent's latest piece back to where it came from,
// provided that square is still open.
func actRewind(g *Game, ctx actionContext, _ ActionInput) actionEffect {
	opponent := ctx.color.Opposite()
	for i := len(g.history) - 1; i >= 0; i-- {
		entry := g.history[i]
		if entry.Color != opponent {
			continue
		}
		pc := g.board.PieceAt(entry.Move.End)
		if pc == nil || pc.Color != opponent || !g.board.IsVacant(entry.Move.Start) {
			g.note("%s rewind found nothing to undo", ctx.color)
			return actionEffect{}
		}
		g.board.relocate(entry.Move.End, entry.Move.Start)
		g.note("%s rewound %s", ctx.color, entry.Move)
		return actionEffect{}
	}
	g.note("%s rewind found nothing to undo", ctx.color)
	return actionEffect{}
}

func validBlackHole(g *Game, _ actionContext, in ActionInput) bool {
	return g.board.IsVacant(in.Square)
}

func actBlackHole(g *Game, ctx actionContext, in ActionInput) actionEffect {
	if err := g.board.AddPowerUp(in.Square, NewPowerUp(BlackHole, blackHoleTurns)); err != nil {
		g.log.WithError(err).Debug("black hole not placed")
		return actionEffect{}
	}
	g.note("%s opened a black hole on %s", ctx.color, in.Square)
	return actionEffect{}
}

func validEyeForEye(g *Game, ctx actionContext, in ActionInput) bool {
	own := g.capturer(ctx)
	target := g.board.PieceAt(in.Square)
	if own == nil || target == nil {
		return false
	}
	if target.Color == ctx.color || target.Type == King || g.board.IsInvulnerable(in.Square) {
		return false
	}
	return target.Rank() <= own.Rank()
}

func actEyeForEye(g *Game, ctx actionContext, in ActionInput) actionEffect {
	target := g.board.RemovePieceAt(in.Square)
	own := g.board.RemovePieceAt(ctx.where)
	g.note("%s traded %s for %s", ctx.color, own, target)
	return actionEffect{}
}

func validSendAway(g *Game, _ actionContext, in ActionInput) bool {
	return g.board.PieceAt(in.Square) != nil
}

func actSendAway(g *Game, ctx actionContext, in ActionInput) actionEffect {
	pc := g.board.PieceAt(in.Square)
	dest, ok := g.randomVacantOnRank(pc.Color.BackRank())
	if !ok {
		g.note("%s send away: no free square on the back rank", ctx.color)
		return actionEffect{}
	}
	g.board.relocate(in.Square, dest)
	pc.Moved = true
	g.note("%s sent %s from %s to %s", ctx.color, pc, in.Square, dest)
	return actionEffect{}
}

func actArmageddon(g *Game, ctx actionContext, _ ActionInput) actionEffect {
	for _, loc := range g.board.Locations(func(p *Piece) bool { return p.Type == Pawn }) {
		g.board.RemovePieceAt(loc)
	}
	for _, loc := range g.board.Locations(func(p *Piece) bool { return p.Type == King }) {
		if err := g.board.AddPowerUp(loc, NewPowerUp(Invulnerability, armageddonTurns)); err != nil {
			g.log.WithError(err).WithField("square", loc.String()).Debug("king left unprotected")
		}
	}
	g.note("%s called armageddon", ctx.color)
	return actionEffect{}
}

func actClone(g *Game, ctx actionContext, _ ActionInput) actionEffect {
	pc := g.capturer(ctx)
	if pc == nil {
		return actionEffect{}
	}
	dest, ok := g.randomVacantOnRank(ctx.color.BackRank())
	if !ok {
		g.note("%s clone: no free square on the back rank", ctx.color)
		return actionEffect{}
	}
	g.board.ReplacePiece(dest, &Piece{Type: pc.Type, Color: pc.Color, Moved: true})
	g.note("%s cloned %s onto %s", ctx.color, pc.Type.Name(), dest)
	return actionEffect{}
}

// randomVacantOnRank picks a uniformly random vacant square on row.
func (g *Game) randomVacantOnRank(row int) (Location, bool) {
	var free []Location
	for col := 0; col < shared.BoardSize; col++ {
		loc := shared.MustLocation(row, col)
		if g.board.IsVacant(loc) {
			free = append(free, loc)
		}
	}
	if len(free) == 0 {
		return Location{}, false
	}
	return free[g.rng.IntN(len(free))], true
}
