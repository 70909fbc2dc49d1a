package rules

import (
	"sort"

	"github.com/lukev/elpres/internal/cards"
)

// requirement describes what a candidate play must satisfy to land on the
// current pile.
type requirement struct {
	current       cards.Play // zero value means the pile is empty
	numRequired   int        // 0 means "no constraint" (only possible when current is empty)
	mustInclude3C bool
}

// isValidPlay reports whether a candidate play satisfies req: same-rank
// cards, matching the current play's size and beating it when one is on
// the pile, and covering the 3 of clubs on the opening lead.
func isValidPlay(play cards.Play, req requirement) bool {
	if len(play.Cards) == 0 || !play.SameRank() {
		return false
	}
	if len(req.current.Cards) > 0 {
		if len(play.Cards) != len(req.current.Cards) {
			return false
		}
		if !play.Beats(req.current) {
			return false
		}
	} else if req.numRequired > 0 && len(play.Cards) != req.numRequired {
		return false
	}
	if req.mustInclude3C && !play.Has3Clubs() {
		return false
	}
	return true
}

// legalPlays enumerates every legal combination of cards in hand against
// req, grouping by rank and generating combinations of the required size.
func legalPlays(hand []cards.Card, req requirement) [][]cards.Card {
	if len(hand) == 0 {
		return nil
	}

	byRank := make(map[cards.Rank][]cards.Card)
	for _, c := range hand {
		byRank[c.Rank] = append(byRank[c.Rank], c)
	}
	for r := range byRank {
		sort.Slice(byRank[r], func(i, j int) bool { return byRank[r][i].Value() < byRank[r][j].Value() })
	}

	n := 0
	if len(req.current.Cards) > 0 {
		n = len(req.current.Cards)
	} else {
		n = req.numRequired
	}

	var result [][]cards.Card
	for _, group := range byRank {
		if n > 0 {
			if len(group) < n {
				continue
			}
			for _, combo := range combinations(group, n) {
				if isValidPlay(cards.Play{Cards: combo}, req) {
					result = append(result, combo)
				}
			}
		} else {
			for k := 1; k <= len(group); k++ {
				for _, combo := range combinations(group, k) {
					if isValidPlay(cards.Play{Cards: combo}, req) {
						result = append(result, combo)
					}
				}
			}
		}
	}

	pileEmpty := len(req.current.Cards) == 0
	if pileEmpty && len(result) == 0 {
		// Fallback for the pathological case (e.g. an opening-3C constraint
		// nobody's groups can satisfy as combos): allow any same-rank combo.
		for _, group := range byRank {
			for k := 1; k <= len(group); k++ {
				result = append(result, combinations(group, k)...)
			}
		}
	}
	return result
}

// combinations returns every k-element combination of arr, preserving
// arr's relative order within each combination.
func combinations(arr []cards.Card, k int) [][]cards.Card {
	if k == 0 {
		return [][]cards.Card{{}}
	}
	if k > len(arr) {
		return nil
	}
	var result [][]cards.Card
	for i := range arr {
		for _, rest := range combinations(arr[i+1:], k-1) {
			combo := make([]cards.Card, 0, k)
			combo = append(combo, arr[i])
			combo = append(combo, rest...)
			result = append(result, combo)
		}
	}
	return result
}
