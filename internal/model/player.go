package model

import (
	"sort"

	"github.com/lukev/elpres/internal/cards"
)

// Player is one seat at the table: a lobby member, or the in-game record
// of the same person once a Game has been dealt.
type Player struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	PastAccolade Accolade     `json:"past_accolade"`
	Accolade     Accolade     `json:"accolade"`
	Hand         []cards.Card `json:"hand"`
}

// NewPlayer creates a lobby player with no hand and the default Pleb
// accolades.
func NewPlayer(id, name string) *Player {
	return &Player{ID: id, Name: name, PastAccolade: Pleb, Accolade: Pleb}
}

// HandSorted returns a copy of the hand in ascending card-value order.
func (p *Player) HandSorted() []cards.Card {
	out := make([]cards.Card, len(p.Hand))
	copy(out, p.Hand)
	sort.Slice(out, func(i, j int) bool { return out[i].Value() < out[j].Value() })
	return out
}

// SortHand sorts the player's hand in place.
func (p *Player) SortHand() {
	sort.Slice(p.Hand, func(i, j int) bool { return p.Hand[i].Value() < p.Hand[j].Value() })
}

// RemoveCard removes one card matching rank and suit from the hand,
// tolerant of the caller's Card not being the same slice element (e.g. a
// card reconstructed from a wire message). Reports whether a card was
// removed.
func (p *Player) RemoveCard(c cards.Card) bool {
	for i, h := range p.Hand {
		if h == c {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// HighestCard returns the highest-value card in hand, or false if empty.
func (p *Player) HighestCard() (cards.Card, bool) {
	if len(p.Hand) == 0 {
		return cards.Card{}, false
	}
	best := p.Hand[0]
	for _, c := range p.Hand[1:] {
		if c.Value() > best.Value() {
			best = c
		}
	}
	return best, true
}

// LowestCard returns the lowest-value card in hand, optionally excluding
// the 3 of clubs (it anchors the opening lead and is never traded away).
func (p *Player) LowestCard(exclude3Clubs bool) (cards.Card, bool) {
	var best cards.Card
	found := false
	for _, c := range p.Hand {
		if exclude3Clubs && c.Is3Clubs() {
			continue
		}
		if !found || c.Value() < best.Value() {
			best = c
			found = true
		}
	}
	return best, found
}
