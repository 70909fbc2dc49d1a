package rules

import "github.com/lukev/elpres/internal/model"

// RemovePlayerFromGame ejects a seated player mid-game: the
// player's hand vanishes (it is not placed on the pile), every stored
// index is remapped to the post-removal numbering, and the game ends if
// fewer than two players remain. Reports whether the game ended.
func (e *Engine) RemovePlayerFromGame(g *model.Game, playerIdx int) bool {
	n := len(g.Players)
	if playerIdx < 0 || playerIdx >= n {
		return false
	}
	removedID := g.Players[playerIdx].ID
	g.Players = append(g.Players[:playerIdx], g.Players[playerIdx+1:]...)

	shift := func(i int) int {
		if i == playerIdx {
			return -1
		}
		if i > playerIdx {
			return i - 1
		}
		return i
	}

	nn := len(g.Players)
	if nn == 0 {
		return true
	}

	g.CurrentPlayerIdx = shift(g.CurrentPlayerIdx)
	if g.CurrentPlayerIdx == -1 || g.CurrentPlayerIdx >= nn {
		nextOld := (playerIdx + 1) % n
		newIdx := nextOld
		if nextOld > playerIdx {
			newIdx = nextOld - 1
		}
		if newIdx >= nn {
			newIdx = 0
		}
		g.CurrentPlayerIdx = newIdx
	}

	g.DealerIdx = shift(g.DealerIdx)
	if g.DealerIdx < 0 {
		g.DealerIdx = 0
	}
	g.Round.StartingPlayerIdx = shift(g.Round.StartingPlayerIdx)
	if g.Round.StartingPlayerIdx < 0 {
		g.Round.StartingPlayerIdx = 0
	}

	results := g.Results[:0]
	for _, id := range g.Results {
		if id != removedID {
			results = append(results, id)
		}
	}
	g.Results = results

	shiftedPassed := make(map[int]bool, len(g.PassedThisRound))
	for i := range g.PassedThisRound {
		if s := shift(i); s >= 0 {
			shiftedPassed[s] = true
		}
	}
	g.PassedThisRound = shiftedPassed

	if g.Round.LastPlayPlayerIdx == playerIdx {
		g.Round.LastPlayPlayerIdx = -1
	} else {
		g.Round.LastPlayPlayerIdx = shift(g.Round.LastPlayPlayerIdx)
	}

	if len(g.Players) < 2 {
		if len(g.Players) == 1 {
			g.Results = append(g.Results, g.Players[0].ID)
		}
		e.AssignAccolades(g)
		return true
	}
	return false
}
