package rules

import "github.com/lukev/elpres/internal/model"

// TradeRole identifies which side of a trade claim a command names.
type TradeRole string

const (
	RolePresidente TradeRole = "presidente"
	RoleShithead   TradeRole = "shithead"
)

// ApplyClaimTrade lets the incoming El Presidente or Shithead
// explicitly claim their parked card. Once both have claimed, the phase
// transitions to Playing and the 3-of-clubs holder opens.
func (e *Engine) ApplyClaimTrade(g *model.Game, playerID string, role TradeRole) error {
	if g.Phase != model.PhaseTrading {
		return ErrNotTradingPhase
	}

	epIdx, shIdx := -1, -1
	for i, p := range g.Players {
		if p.PastAccolade == model.ElPresidente {
			epIdx = i
		}
		if p.PastAccolade == model.Shithead {
			shIdx = i
		}
	}
	if epIdx == -1 || shIdx == -1 {
		return ErrNoTradeInFlight
	}

	playerIdx := g.PlayerIndex(playerID)
	if playerIdx == -1 {
		return ErrPlayerNotInGame
	}

	switch role {
	case RolePresidente:
		if playerIdx != epIdx {
			return ErrNotYourCard
		}
		if g.TradeEPClaimed {
			return ErrAlreadyClaimed
		}
		if g.TradeHighCard == nil {
			return ErrNoCardToClaim
		}
		ep := g.Players[epIdx]
		ep.Hand = append(ep.Hand, *g.TradeHighCard)
		ep.SortHand()
		g.TradeHighCard = nil
		g.TradeEPClaimed = true
	case RoleShithead:
		if playerIdx != shIdx {
			return ErrNotYourCard
		}
		if g.TradeSHClaimed {
			return ErrAlreadyClaimed
		}
		if g.TradeLowCard == nil {
			return ErrNoCardToClaim
		}
		sh := g.Players[shIdx]
		sh.Hand = append(sh.Hand, *g.TradeLowCard)
		sh.SortHand()
		g.TradeLowCard = nil
		g.TradeSHClaimed = true
	default:
		return ErrInvalidRole
	}

	if g.TradeEPClaimed && g.TradeSHClaimed {
		g.Phase = model.PhasePlaying
		g.Round.StartingPlayerIdx = holderOf3Clubs(g.Players)
		g.CurrentPlayerIdx = g.Round.StartingPlayerIdx
	}
	return nil
}
