// Package view projects a Room into the per-recipient filtered state a
// client is allowed to see: every other player's hand is hidden, trade
// cards are face-up only to their claimant, and the acting player's
// legal plays are enumerated only for them.
package view

import (
	"time"

	"github.com/lukev/elpres/internal/cards"
	"github.com/lukev/elpres/internal/model"
	"github.com/lukev/elpres/internal/rules"
)

// PlayerView is one seat as seen by a particular recipient.
type PlayerView struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	PastAccolade   model.Accolade `json:"past_accolade"`
	Accolade       model.Accolade `json:"accolade"`
	CardCount      int            `json:"card_count"`
	Hand           []cards.Card   `json:"hand,omitempty"`
	ResultPosition int            `json:"result_position,omitempty"`
	Disconnected   bool           `json:"disconnected"`
}

// TradeView describes the in-flight Trading-phase parked cards. Count
// is how many cards are still parked; every viewer sees it, while the
// card values themselves stay role-gated.
type TradeView struct {
	Count     int         `json:"count"`
	HighCard  *cards.Card `json:"high_card,omitempty"`
	LowCard   *cards.Card `json:"low_card,omitempty"`
	EPClaimed bool        `json:"ep_claimed"`
	SHClaimed bool        `json:"sh_claimed"`
	FaceDown  bool        `json:"face_down"`
}

// WaitingView reports a disconnected acting player's grace countdown, so
// everyone else can see who the game is waiting on.
type WaitingView struct {
	PlayerName       string `json:"player_name"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

// RoundView is the current trick.
type RoundView struct {
	StartingPlayerIdx int        `json:"starting_player_idx"`
	Pile              cards.Pile `json:"pile"`
}

// State is the full filtered view sent to one recipient.
type State struct {
	Phase            string         `json:"phase"`
	Room             string         `json:"room"`
	DealerIdx        int            `json:"dealer_idx"`
	CurrentPlayerIdx int            `json:"current_player_idx"`
	Players          []PlayerView   `json:"players"`
	Round            *RoundView     `json:"round,omitempty"`
	Results          []string       `json:"results,omitempty"`
	PassedThisRound  []int          `json:"passed_this_round,omitempty"`
	ValidPlays       [][]cards.Card `json:"valid_plays,omitempty"`
	Trading          *TradeView     `json:"trading,omitempty"`
	Spectator        bool           `json:"spectator,omitempty"`
	WantsToPlay      *bool          `json:"wants_to_play,omitempty"`
	Waiting          *WaitingView   `json:"waiting,omitempty"`
	DickTagHolderID  string         `json:"dick_tag_holder_id,omitempty"`
}

// Disconnects maps a player id to the time remaining on their grace
// timer, for every player currently in that state.
type Disconnects map[string]time.Duration

// Project builds the state recipientID is allowed to see. live holds the
// ids of lobby members with an open connection, used only when no game is
// in progress.
func Project(room *model.Room, recipientID string, live map[string]bool, disconnects Disconnects, engine *rules.Engine) *State {
	g := room.CurrentGame
	if g == nil {
		var players []PlayerView
		for _, p := range room.Players {
			if !live[p.ID] {
				continue
			}
			players = append(players, PlayerView{
				ID: p.ID, Name: p.Name, PastAccolade: p.PastAccolade, Accolade: p.Accolade,
			})
		}
		return &State{Phase: "no_game", Room: room.Name, Players: players, DickTagHolderID: room.DickTagHolderID}
	}

	playerIdx := g.PlayerIndex(recipientID)

	players := make([]PlayerView, len(g.Players))
	for i, p := range g.Players {
		pv := PlayerView{
			ID: p.ID, Name: p.Name, PastAccolade: p.PastAccolade, Accolade: p.Accolade,
			CardCount:    len(p.Hand),
			Disconnected: disconnects[p.ID] > 0,
		}
		for pos, id := range g.Results {
			if id == p.ID {
				pv.ResultPosition = pos + 1
				break
			}
		}
		if playerIdx >= 0 && i == playerIdx {
			pv.Hand = p.HandSorted()
		}
		players[i] = pv
	}

	var validPlays [][]cards.Card
	if playerIdx >= 0 && g.CurrentPlayerIdx == playerIdx && g.Phase == model.PhasePlaying {
		validPlays = engine.LegalPlays(g, playerIdx)
	}

	s := &State{
		Phase:            string(g.Phase),
		Room:             room.Name,
		DealerIdx:        g.DealerIdx,
		CurrentPlayerIdx: g.CurrentPlayerIdx,
		Players:          players,
		Round: &RoundView{
			StartingPlayerIdx: g.Round.StartingPlayerIdx,
			Pile:              g.Round.Pile,
		},
		Results:         g.Results,
		PassedThisRound: g.PassedSlice(),
		ValidPlays:      validPlays,
		DickTagHolderID: room.DickTagHolderID,
	}

	if g.Phase == model.PhaseTrading {
		s.Trading = tradingInfo(g, recipientID)
	}

	if acting := g.CurrentPlayerIdx; acting >= 0 && acting < len(g.Players) {
		if remaining, ok := disconnects[g.Players[acting].ID]; ok && remaining > 0 {
			s.Waiting = &WaitingView{
				PlayerName:       g.Players[acting].Name,
				RemainingSeconds: int(remaining / time.Second),
			}
		}
	}

	if room.IsSpectator(recipientID) {
		s.Spectator = true
		wants := room.WantsToPlay(recipientID)
		s.WantsToPlay = &wants
	}

	return s
}

// tradingInfo implements the face-up-only-to-the-claimant rule. It
// returns nil once both sides have claimed: at that point there is
// nothing left to show.
func tradingInfo(g *model.Game, recipientID string) *TradeView {
	if g.TradeHighCard == nil && g.TradeLowCard == nil && g.TradeEPClaimed && g.TradeSHClaimed {
		return nil
	}

	isEP, isSH := false, false
	if idx := g.PlayerIndex(recipientID); idx >= 0 {
		p := g.Players[idx]
		isEP = p.PastAccolade == model.ElPresidente
		isSH = p.PastAccolade == model.Shithead
	}

	count := 0
	if g.TradeHighCard != nil {
		count++
	}
	if g.TradeLowCard != nil {
		count++
	}

	tv := &TradeView{
		Count:     count,
		EPClaimed: g.TradeEPClaimed,
		SHClaimed: g.TradeSHClaimed,
		FaceDown:  !isEP && !isSH,
	}
	// The high card (Shithead's forfeit) is incoming to El Presidente;
	// the low card (El Presidente's forfeit) is incoming to Shithead.
	// Each recipient sees only the card heading to their own seat.
	if isEP {
		tv.HighCard = g.TradeHighCard
	}
	if isSH {
		tv.LowCard = g.TradeLowCard
	}
	return tv
}
