package game

import "github.com/sirupsen/logrus"

func (g *Game) requireOpen() error {
	if g.phase == GameOver {
		return ErrGameOver
	}
	return nil
}

// passTurn hands the move to the other color and clears that color's ghosts.
func (g *Game) passTurn() {
	g.active = g.active.Opposite()
	g.board.ResetGhost(g.active)
}

func (g *Game) finish(winner Color, status string) {
	g.phase = GameOver
	g.hasWinner = true
	g.winner = winner
	g.status = status
	g.offers = nil
	g.chosen = nil
	g.promotion = nil
	g.note("%s", status)
	g.log.WithFields(logrus.Fields{"winner": winner.String(), "status": status}).Info("game over")
}

// resolveMissingKings ends the game when a king has left the board.
func (g *Game) resolveMissingKings() bool {
	white, black := g.board.HasKing(White), g.board.HasKing(Black)
	switch {
	case white && black:
		return false
	case white:
		g.finish(White, "black king destroyed")
	case black:
		g.finish(Black, "white king destroyed")
	default:
		g.finish(g.active, "both kings destroyed")
	}
	return true
}

// consumeShield drops the invulnerability a capturing piece carried.
func (g *Game) consumeShield(out MoveOutcome) {
	if out.CapturedPiece() == nil {
		return
	}
	if pu := g.board.PowerUpAt(out.Move.End); pu != nil && pu.Kind == Invulnerability {
		g.board.RemovePowerUp(out.Move.End)
		g.note("shield on %s spent", out.Move.End)
	}
}

// tickPowerUps counts down every power-up and removes the expired ones.
func (g *Game) tickPowerUps(res *Result) {
	for _, entry := range g.board.PowerUps() {
		entry.PowerUp.decrement()
		if !entry.PowerUp.Expired() {
			continue
		}
		g.board.RemovePowerUp(entry.Location)
		res.Expired = append(res.Expired, ExpiredPowerUp{Location: entry.Location, Kind: entry.PowerUp.Kind})
		g.note("%s on %s expired", entry.PowerUp.Kind, entry.Location)
	}
}
