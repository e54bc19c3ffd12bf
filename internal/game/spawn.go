package game

import (
	"github.com/sirupsen/logrus"

	"power_chess/internal/shared"
)

var rarityWeights = []struct {
	rarity Rarity
	weight float64
}{
	{Common, 73},
	{Rare, 25},
	{Legendary, 2},
}

// Power objects spawn in the middle four rows, favouring the centre.
var (
	spawnRows       = []int{2, 3, 4, 5}
	spawnRowWeights = map[int]float64{2: 1, 3: 2, 4: 2, 5: 1}
	spawnColWeights = [shared.BoardSize]float64{1, 2, 3, 4, 4, 3, 2, 1}
)

func newRaritySelector(rng Rand) *Selector[Rarity] {
	sel := NewSelector[Rarity](rng)
	for _, rw := range rarityWeights {
		sel.Add(rw.weight, rw.rarity)
	}
	return sel
}

func (g *Game) resetCountdown() {
	g.countdown = 2 + g.rng.IntN(3)
}

// randomSpawnSquare draws a vacant square of the spawn zone weighted by
// row times column weight. Drawing only among vacant squares gives the same
// distribution as redrawing until a vacant one comes up.
func (g *Game) randomSpawnSquare() (Location, bool) {
	sel := NewSelector[Location](g.rng)
	for _, row := range spawnRows {
		for col := 0; col < shared.BoardSize; col++ {
			loc := shared.MustLocation(row, col)
			if g.board.IsVacant(loc) {
				sel.Add(spawnRowWeights[row]*spawnColWeights[col], loc)
			}
		}
	}
	return sel.Next()
}

func (g *Game) tickSpawn(res *Result) {
	if !g.spawning {
		return
	}
	g.countdown--
	if g.countdown > 0 {
		return
	}
	g.resetCountdown()
	loc, ok := g.randomSpawnSquare()
	if !ok {
		g.note("no room for a power object")
		return
	}
	rarity, _ := g.rarities.Next()
	if err := g.board.AddPowerObject(loc, rarity); err != nil {
		g.log.WithError(err).Warn("power object spawn failed")
		return
	}
	res.Spawned = &SpawnedObject{Location: loc, Rarity: rarity}
	g.log.WithFields(logrus.Fields{"square": loc.String(), "rarity": rarity.String()}).Debug("power object spawned")
	g.note("a %s power object appeared on %s", rarity, loc)
}
