package rules

import (
	"github.com/lukev/elpres/internal/cards"
	"github.com/lukev/elpres/internal/model"
)

// Shuffler is an injectable source of randomness so deals are
// deterministic under test.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// StartOptions configures a new deal.
type StartOptions struct {
	// PrevDealerIdx is the previous game's dealer index, or nil to deal
	// from seat 0 (a room's very first game or restart).
	PrevDealerIdx *int
	// PrevElPresidenteID and PrevShitheadID identify the incoming Trading
	// phase's privileged roles. Trading only happens when both resolve to
	// a player in this deal.
	PrevElPresidenteID string
	PrevShitheadID     string
}

// StartNewGame deals a new Game from the given room players.
func (e *Engine) StartNewGame(roomPlayers []*model.Player, opts StartOptions) (*model.Game, error) {
	n := len(roomPlayers)
	if n < 2 || n > 7 {
		return nil, ErrInvalidPlayerCnt
	}

	players := make([]*model.Player, n)
	for i, rp := range roomPlayers {
		players[i] = &model.Player{
			ID:           rp.ID,
			Name:         rp.Name,
			PastAccolade: rp.PastAccolade,
			Accolade:     model.Pleb,
		}
	}

	dealerIdx := 0
	if opts.PrevDealerIdx != nil {
		dealerIdx = (*opts.PrevDealerIdx + 1) % n
	}

	deal(players, n, e.shuffler)

	game := &model.Game{
		DealerIdx:       dealerIdx,
		Players:         players,
		PassedThisRound: make(map[int]bool),
		Round:           model.NewRound(0),
	}

	epIdx, shIdx := -1, -1
	if opts.PrevElPresidenteID != "" && opts.PrevShitheadID != "" {
		for i, p := range players {
			if p.ID == opts.PrevElPresidenteID {
				epIdx = i
			}
			if p.ID == opts.PrevShitheadID {
				shIdx = i
			}
		}
	}

	if epIdx >= 0 && shIdx >= 0 {
		game.Phase = model.PhaseTrading
		game.CurrentPlayerIdx = 0
		beginTrade(game, epIdx, shIdx)
	} else {
		game.Phase = model.PhasePlaying
		game.Round.StartingPlayerIdx = holderOf3Clubs(players)
		game.CurrentPlayerIdx = game.Round.StartingPlayerIdx
	}

	return game, nil
}

// deal fills each player's hand and sorts it. For n >= 3 it's a plain
// round robin. For n == 2, every third card is withheld from play so 17
// cards sit out of the game — unless that withheld slot would be the 3
// of clubs, which must always be in play to anchor the opening lead.
func deal(players []*model.Player, n int, shuffler Shuffler) {
	deck := cards.NewDeck()
	if shuffler != nil {
		shuffler.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	}

	if n == 2 {
		playerIdx := 0
		for cardIdx, c := range deck {
			skipSlot := cardIdx%3 == 2
			if skipSlot && !c.Is3Clubs() {
				continue
			}
			players[playerIdx%2].Hand = append(players[playerIdx%2].Hand, c)
			playerIdx++
		}
	} else {
		for i, c := range deck {
			players[i%n].Hand = append(players[i%n].Hand, c)
		}
	}

	for _, p := range players {
		p.SortHand()
	}
}

func holderOf3Clubs(players []*model.Player) int {
	for i, p := range players {
		for _, c := range p.Hand {
			if c.Is3Clubs() {
				return i
			}
		}
	}
	return 0
}

func beginTrade(game *model.Game, epIdx, shIdx int) {
	ep, sh := game.Players[epIdx], game.Players[shIdx]
	if high, ok := sh.HighestCard(); ok {
		sh.RemoveCard(high)
		game.TradeHighCard = &high
	}
	if low, ok := ep.LowestCard(true); ok {
		ep.RemoveCard(low)
		game.TradeLowCard = &low
	}
}
