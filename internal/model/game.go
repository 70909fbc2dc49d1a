package model

import (
	"github.com/lukev/elpres/internal/cards"
)

// Round is the current trick: who led it and the pile of plays so far.
type Round struct {
	StartingPlayerIdx int        `json:"starting_player_idx"`
	Pile              cards.Pile `json:"pile"`
	LastPlayPlayerIdx int        `json:"last_play_player_idx"`
}

// NewRound starts an empty round led by startingPlayerIdx.
func NewRound(startingPlayerIdx int) Round {
	return Round{StartingPlayerIdx: startingPlayerIdx, LastPlayPlayerIdx: -1}
}

// Game is one deal from start to finish: deal, trading (if any), play to
// empty hands, and the resulting ranking.
type Game struct {
	DealerIdx        int       `json:"dealer_idx"`
	CurrentPlayerIdx int       `json:"current_player_idx"`
	Players          []*Player `json:"players"`
	Round            Round     `json:"round"`
	Phase            GamePhase `json:"phase"`
	Results          []string  `json:"results"`
	// PassedThisRound holds the indices of players who have passed since
	// the last play landed; a played card reopens the trick and clears it.
	PassedThisRound map[int]bool `json:"passed_this_round"`
	RoundsCompleted int          `json:"rounds_completed"`

	TradeHighCard  *cards.Card `json:"trade_high_card,omitempty"`
	TradeLowCard   *cards.Card `json:"trade_low_card,omitempty"`
	TradeEPClaimed bool        `json:"trade_ep_claimed"`
	TradeSHClaimed bool        `json:"trade_sh_claimed"`
}

// PlayerIndex returns the index of the player with the given id, or -1.
func (g *Game) PlayerIndex(id string) int {
	for i, p := range g.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// InResults reports whether a player id already has a finish position.
func (g *Game) InResults(id string) bool {
	for _, r := range g.Results {
		if r == id {
			return true
		}
	}
	return false
}

// PassedSlice returns PassedThisRound as a sorted-free slice, for
// serialization convenience in outbound views.
func (g *Game) PassedSlice() []int {
	out := make([]int, 0, len(g.PassedThisRound))
	for i := range g.PassedThisRound {
		out = append(out, i)
	}
	return out
}

// PlayersWithCards returns the indices of players whose hand is non-empty.
func (g *Game) PlayersWithCards() []int {
	out := make([]int, 0, len(g.Players))
	for i, p := range g.Players {
		if len(p.Hand) > 0 {
			out = append(out, i)
		}
	}
	return out
}
