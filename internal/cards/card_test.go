package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardValueOrdering(t *testing.T) {
	threeClubs := Card{Rank: Rank3, Suit: Clubs}
	twoSpades := Card{Rank: Rank2, Suit: Spades}
	assert.Less(t, threeClubs.Value(), twoSpades.Value())
	assert.Equal(t, 0, threeClubs.Value())
	assert.Equal(t, 51, twoSpades.Value())
}

func TestCardValueSuitBreaksRankTie(t *testing.T) {
	fourClubs := Card{Rank: Rank4, Suit: Clubs}
	fourSpades := Card{Rank: Rank4, Suit: Spades}
	assert.Less(t, fourClubs.Value(), fourSpades.Value())
}

func TestParseCardRoundTrip(t *testing.T) {
	for _, s := range []string{"3C", "10S", "JD", "2H", "AH"} {
		c, err := ParseCard(s)
		require.NoError(t, err)
		assert.Equal(t, s, c.String())
	}
}

func TestCardJSONRoundTrip(t *testing.T) {
	c := Card{Rank: Rank10, Suit: Hearts}
	data, err := c.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"10H"`, string(data))

	var out Card
	require.NoError(t, out.UnmarshalJSON(data))
	assert.Equal(t, c, out)
}

func TestNewDeckHas52UniqueCards(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, 52)
	seen := make(map[Card]bool, 52)
	for _, c := range deck {
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
}

func TestIs3Clubs(t *testing.T) {
	assert.True(t, Card{Rank: Rank3, Suit: Clubs}.Is3Clubs())
	assert.False(t, Card{Rank: Rank3, Suit: Diamonds}.Is3Clubs())
}
