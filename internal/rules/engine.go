// Package rules implements the El Presidente rules engine: dealing,
// legal-play derivation, play/pass resolution, round and game
// termination, accolade assignment, trade claims, and mid-game ejection.
// Every entry point is pure on the Game it is handed plus the injected
// randomness used for dealing; none of it talks to the network or disk.
package rules

import (
	"math/rand"

	"github.com/lukev/elpres/internal/cards"
	"github.com/lukev/elpres/internal/model"
)

// Engine applies rule-derived consequences to a Game. It holds nothing
// but an injectable source of randomness, so it is safe to share across
// rooms.
type Engine struct {
	shuffler Shuffler
}

// New returns an Engine that shuffles with math/rand's default source.
// Pass a seeded *rand.Rand (it satisfies Shuffler directly) for
// deterministic deals under test.
func New() *Engine {
	return &Engine{shuffler: rand.New(rand.NewSource(rand.Int63()))}
}

// NewWithShuffler returns an Engine using the given shuffler.
func NewWithShuffler(s Shuffler) *Engine {
	return &Engine{shuffler: s}
}

func currentRequirement(g *model.Game, playerIdx int) requirement {
	current := g.Round.Pile.Current()
	req := requirement{current: current}
	if len(current.Cards) == 0 {
		req.mustInclude3C = g.Round.StartingPlayerIdx == playerIdx && g.RoundsCompleted == 0
	}
	return req
}

// LegalPlays enumerates every legal combination of cards the player at
// playerIdx may lay down right now. The view projector includes this
// enumeration for the acting player only.
func (e *Engine) LegalPlays(g *model.Game, playerIdx int) [][]cards.Card {
	if playerIdx < 0 || playerIdx >= len(g.Players) {
		return nil
	}
	req := currentRequirement(g, playerIdx)
	return legalPlays(g.Players[playerIdx].Hand, req)
}

// ApplyPlay validates and applies a play by the player at playerIdx. A
// successful play reopens the trick: every recorded pass is cleared.
func (e *Engine) ApplyPlay(g *model.Game, playerIdx int, play cards.Play) error {
	if g.Phase != model.PhasePlaying {
		return ErrNotPlayingPhase
	}
	if g.CurrentPlayerIdx != playerIdx {
		return ErrNotYourTurn
	}

	req := currentRequirement(g, playerIdx)
	unconstrained := req
	unconstrained.mustInclude3C = false
	if !isValidPlay(play, unconstrained) {
		return ErrInvalidPlay
	}
	if req.mustInclude3C && !play.Has3Clubs() {
		return ErrMust3Clubs
	}

	// Verify ownership (rejecting the same card named twice) before any
	// removal, so a failed play leaves the hand untouched.
	player := g.Players[playerIdx]
	counts := make(map[cards.Card]int, len(play.Cards))
	for _, c := range play.Cards {
		counts[c]++
		if counts[c] > 1 {
			return ErrInvalidPlay
		}
	}
	for c := range counts {
		held := false
		for _, h := range player.Hand {
			if h == c {
				held = true
				break
			}
		}
		if !held {
			return ErrCardNotInHand
		}
	}
	for _, c := range play.Cards {
		player.RemoveCard(c)
	}

	g.Round.Pile.Add(play)
	g.Round.LastPlayPlayerIdx = playerIdx
	g.PassedThisRound = make(map[int]bool)

	if len(player.Hand) == 0 {
		g.Results = append(g.Results, player.ID)
	}

	e.advanceOrEndRound(g, playerIdx)
	return nil
}

// ApplyPass records a pass by the player at playerIdx and advances the
// turn, ending the round if nobody may act anymore.
func (e *Engine) ApplyPass(g *model.Game, playerIdx int) error {
	if g.Phase != model.PhasePlaying {
		return ErrNotPlayingPhase
	}
	if g.CurrentPlayerIdx != playerIdx {
		return ErrNotYourTurn
	}

	g.PassedThisRound[playerIdx] = true
	e.advanceOrEndRound(g, playerIdx)
	return nil
}

// mayAct reports whether the player at idx still has cards and has not
// passed this trick.
func mayAct(g *model.Game, idx int) bool {
	return len(g.Players[idx].Hand) > 0 && !g.PassedThisRound[idx]
}

// advanceOrEndRound walks the turn forward from playerIdx, skipping
// players who passed or hold no cards, bounded by a single lap so the
// "nobody can act" termination is obvious.
func (e *Engine) advanceOrEndRound(g *model.Game, playerIdx int) {
	n := len(g.Players)
	next := -1
	for step := 1; step <= n; step++ {
		idx := (playerIdx + step) % n
		if idx == playerIdx {
			break
		}
		if mayAct(g, idx) {
			next = idx
			break
		}
	}

	if next == -1 {
		e.endRound(g, winnerIdx(g, playerIdx))
		return
	}
	g.CurrentPlayerIdx = next
}

func winnerIdx(g *model.Game, fallback int) int {
	if g.Round.LastPlayPlayerIdx >= 0 {
		return g.Round.LastPlayPlayerIdx
	}
	return fallback
}

// endRound closes the current trick: the pile clears and the winner
// leads the next round, or the next holder of cards after them if the
// winner went out on their final play.
func (e *Engine) endRound(g *model.Game, winner int) {
	g.RoundsCompleted++
	g.Round.Pile.Clear()
	g.Round.LastPlayPlayerIdx = -1
	g.PassedThisRound = make(map[int]bool)

	n := len(g.Players)
	start := winner
	if len(g.Players[winner].Hand) == 0 {
		start = -1
		for step := 1; step <= n; step++ {
			idx := (winner + step) % n
			if idx == winner {
				break
			}
			if len(g.Players[idx].Hand) > 0 {
				start = idx
				break
			}
		}
		if start == -1 {
			start = (winner + 1) % n
		}
	}
	g.Round.StartingPlayerIdx = start
	g.CurrentPlayerIdx = start
}

// IsGameOver reports whether at most one player still holds cards, the
// condition the coordinator checks after every successful ApplyPlay.
func IsGameOver(g *model.Game) bool {
	return len(g.PlayersWithCards()) <= 1
}

// FinishGame appends the sole remaining holdout (if any) to Results and
// assigns accolades. Call once IsGameOver reports true.
func (e *Engine) FinishGame(g *model.Game) {
	for _, p := range g.Players {
		if len(p.Hand) > 0 && !g.InResults(p.ID) {
			g.Results = append(g.Results, p.ID)
		}
	}
	e.AssignAccolades(g)
}

// AssignAccolades labels the finish order: winner is El
// Presidente, runner-up is VP, the last finisher is Shithead, everyone
// else is Pleb. Anyone missing from results (shouldn't happen outside
// ejection) is treated as Shithead.
func (e *Engine) AssignAccolades(g *model.Game) {
	n := len(g.Players)
	for i, id := range g.Results {
		p := g.Players[g.PlayerIndex(id)]
		switch {
		case i == 0:
			p.Accolade = model.ElPresidente
		case i == n-1:
			p.Accolade = model.Shithead
		case i == 1:
			p.Accolade = model.VP
		default:
			p.Accolade = model.Pleb
		}
	}
	for _, p := range g.Players {
		if !g.InResults(p.ID) {
			p.Accolade = model.Shithead
		}
	}
}
