package handeval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nix24/ChipMinigameParlor/internal/deck"
)

func hand(t *testing.T, cards [5]deck.Card) Hand {
	t.Helper()
	h, err := Evaluate(cards)
	require.NoError(t, err)
	return h
}

func TestCategoryNames(t *testing.T) {
	tests := []struct {
		name  string
		cards [5]deck.Card
	}{
		{
			name: "Royal Flush",
			cards: [5]deck.Card{
				{Suit: deck.Spades, Rank: deck.Ace}, {Suit: deck.Spades, Rank: deck.King}, {Suit: deck.Spades, Rank: deck.Queen},
				{Suit: deck.Spades, Rank: deck.Jack}, {Suit: deck.Spades, Rank: deck.Ten},
			},
		},
		{
			name: "Straight Flush",
			cards: [5]deck.Card{
				{Suit: deck.Hearts, Rank: deck.Nine}, {Suit: deck.Hearts, Rank: deck.Eight}, {Suit: deck.Hearts, Rank: deck.Seven},
				{Suit: deck.Hearts, Rank: deck.Six}, {Suit: deck.Hearts, Rank: deck.Five},
			},
		},
		{
			name: "Four of a Kind",
			cards: [5]deck.Card{
				{Suit: deck.Spades, Rank: deck.Nine}, {Suit: deck.Hearts, Rank: deck.Nine}, {Suit: deck.Diamonds, Rank: deck.Nine},
				{Suit: deck.Clubs, Rank: deck.Nine}, {Suit: deck.Spades, Rank: deck.Two},
			},
		},
		{
			name: "Full House",
			cards: [5]deck.Card{
				{Suit: deck.Spades, Rank: deck.King}, {Suit: deck.Hearts, Rank: deck.King}, {Suit: deck.Diamonds, Rank: deck.King},
				{Suit: deck.Clubs, Rank: deck.Four}, {Suit: deck.Spades, Rank: deck.Four},
			},
		},
		{
			name: "Flush",
			cards: [5]deck.Card{
				{Suit: deck.Clubs, Rank: deck.King}, {Suit: deck.Clubs, Rank: deck.Ten}, {Suit: deck.Clubs, Rank: deck.Seven},
				{Suit: deck.Clubs, Rank: deck.Five}, {Suit: deck.Clubs, Rank: deck.Two},
			},
		},
		{
			name: "Straight",
			cards: [5]deck.Card{
				{Suit: deck.Spades, Rank: deck.Eight}, {Suit: deck.Hearts, Rank: deck.Seven}, {Suit: deck.Diamonds, Rank: deck.Six},
				{Suit: deck.Clubs, Rank: deck.Five}, {Suit: deck.Spades, Rank: deck.Four},
			},
		},
		{
			name: "Three of a Kind",
			cards: [5]deck.Card{
				{Suit: deck.Spades, Rank: deck.Six}, {Suit: deck.Hearts, Rank: deck.Six}, {Suit: deck.Diamonds, Rank: deck.Six},
				{Suit: deck.Clubs, Rank: deck.King}, {Suit: deck.Spades, Rank: deck.Two},
			},
		},
		{
			name: "Two Pair",
			cards: [5]deck.Card{
				{Suit: deck.Spades, Rank: deck.Jack}, {Suit: deck.Hearts, Rank: deck.Jack}, {Suit: deck.Diamonds, Rank: deck.Three},
				{Suit: deck.Clubs, Rank: deck.Three}, {Suit: deck.Spades, Rank: deck.Nine},
			},
		},
		{
			name: "One Pair",
			cards: [5]deck.Card{
				{Suit: deck.Spades, Rank: deck.Ten}, {Suit: deck.Hearts, Rank: deck.Ten}, {Suit: deck.Diamonds, Rank: deck.Eight},
				{Suit: deck.Clubs, Rank: deck.Five}, {Suit: deck.Spades, Rank: deck.Two},
			},
		},
		{
			name: "High Card",
			cards: [5]deck.Card{
				{Suit: deck.Spades, Rank: deck.King}, {Suit: deck.Hearts, Rank: deck.Jack}, {Suit: deck.Diamonds, Rank: deck.Eight},
				{Suit: deck.Clubs, Rank: deck.Five}, {Suit: deck.Spades, Rank: deck.Two},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, hand(t, tt.cards).Name)
		})
	}
}

func TestWheelStraight(t *testing.T) {
	h := hand(t, [5]deck.Card{
		{Suit: deck.Spades, Rank: deck.Ace}, {Suit: deck.Hearts, Rank: deck.Two}, {Suit: deck.Diamonds, Rank: deck.Three},
		{Suit: deck.Clubs, Rank: deck.Four}, {Suit: deck.Spades, Rank: deck.Five},
	})
	assert.Equal(t, "Straight", h.Name)
}

func TestRankingOrder(t *testing.T) {
	straightFlush := hand(t, [5]deck.Card{
		{Suit: deck.Hearts, Rank: deck.Nine}, {Suit: deck.Hearts, Rank: deck.Eight}, {Suit: deck.Hearts, Rank: deck.Seven},
		{Suit: deck.Hearts, Rank: deck.Six}, {Suit: deck.Hearts, Rank: deck.Five},
	})
	quads := hand(t, [5]deck.Card{
		{Suit: deck.Spades, Rank: deck.Ace}, {Suit: deck.Hearts, Rank: deck.Ace}, {Suit: deck.Diamonds, Rank: deck.Ace},
		{Suit: deck.Clubs, Rank: deck.Ace}, {Suit: deck.Spades, Rank: deck.King},
	})
	fullHouse := hand(t, [5]deck.Card{
		{Suit: deck.Spades, Rank: deck.Ace}, {Suit: deck.Hearts, Rank: deck.Ace}, {Suit: deck.Diamonds, Rank: deck.Ace},
		{Suit: deck.Clubs, Rank: deck.King}, {Suit: deck.Spades, Rank: deck.King},
	})

	assert.Equal(t, 1, Compare(straightFlush, quads), "straight flush beats four of a kind")
	assert.Equal(t, 1, Compare(quads, fullHouse), "four of a kind beats full house")
	assert.Equal(t, -1, Compare(fullHouse, straightFlush))
}

func TestEqualHandsTie(t *testing.T) {
	// Same ranks, different suits: identical strength, not an error.
	a := hand(t, [5]deck.Card{
		{Suit: deck.Spades, Rank: deck.Ten}, {Suit: deck.Hearts, Rank: deck.Ten}, {Suit: deck.Diamonds, Rank: deck.Eight},
		{Suit: deck.Clubs, Rank: deck.Five}, {Suit: deck.Spades, Rank: deck.Two},
	})
	b := hand(t, [5]deck.Card{
		{Suit: deck.Clubs, Rank: deck.Ten}, {Suit: deck.Diamonds, Rank: deck.Ten}, {Suit: deck.Hearts, Rank: deck.Eight},
		{Suit: deck.Spades, Rank: deck.Five}, {Suit: deck.Hearts, Rank: deck.Two},
	})
	assert.Equal(t, 0, Compare(a, b))
}

func TestKickerBreaksTie(t *testing.T) {
	high := hand(t, [5]deck.Card{
		{Suit: deck.Spades, Rank: deck.Ten}, {Suit: deck.Hearts, Rank: deck.Ten}, {Suit: deck.Diamonds, Rank: deck.Ace},
		{Suit: deck.Clubs, Rank: deck.Five}, {Suit: deck.Spades, Rank: deck.Two},
	})
	low := hand(t, [5]deck.Card{
		{Suit: deck.Clubs, Rank: deck.Ten}, {Suit: deck.Diamonds, Rank: deck.Ten}, {Suit: deck.Hearts, Rank: deck.King},
		{Suit: deck.Spades, Rank: deck.Five}, {Suit: deck.Hearts, Rank: deck.Two},
	})
	assert.Equal(t, 1, Compare(high, low))
}
