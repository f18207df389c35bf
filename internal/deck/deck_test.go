package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nix24/ChipMinigameParlor/internal/randutil"
)

func TestNewDeckHas52UniqueCards(t *testing.T) {
	d := New(randutil.New(1))
	require.Equal(t, 52, d.Remaining())

	seen := make(map[Card]bool)
	for {
		card, ok := d.Deal()
		if !ok {
			break
		}
		assert.False(t, seen[card], "duplicate card %s", card)
		seen[card] = true
	}
	assert.Len(t, seen, 52)
}

func TestShufflePreservesCards(t *testing.T) {
	d := New(randutil.New(42))
	d.Shuffle()

	seen := make(map[Card]int)
	for {
		card, ok := d.Deal()
		if !ok {
			break
		}
		seen[card]++
	}
	require.Len(t, seen, 52)
	for card, n := range seen {
		assert.Equal(t, 1, n, "card %s dealt %d times", card, n)
	}
}

func TestShuffleChangesOrder(t *testing.T) {
	a := New(randutil.New(7))
	b := New(randutil.New(7))
	b.Shuffle()

	same := true
	for {
		ca, oka := a.Deal()
		cb, okb := b.Deal()
		require.Equal(t, oka, okb)
		if !oka {
			break
		}
		if ca != cb {
			same = false
		}
	}
	assert.False(t, same, "shuffled deck matched unshuffled order")
}

func TestDealExhaustion(t *testing.T) {
	d := New(randutil.New(1))
	for i := 0; i < 52; i++ {
		_, ok := d.Deal()
		require.True(t, ok)
	}
	_, ok := d.Deal()
	assert.False(t, ok)
	assert.Empty(t, d.DealN(3))
}

func TestCardValues(t *testing.T) {
	tests := []struct {
		card Card
		want int
	}{
		{NewCard(Spades, Two), 2},
		{NewCard(Hearts, Nine), 9},
		{NewCard(Diamonds, Ten), 10},
		{NewCard(Clubs, Jack), 10},
		{NewCard(Spades, Queen), 10},
		{NewCard(Hearts, King), 10},
		{NewCard(Diamonds, Ace), 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.card.Value(), "value of %s", tt.card)
	}
}

func TestHandValue(t *testing.T) {
	tests := []struct {
		name  string
		cards []Card
		total int
		soft  bool
	}{
		{
			name:  "ace king is soft 21",
			cards: []Card{{Spades, Ace}, {Hearts, King}},
			total: 21,
			soft:  true,
		},
		{
			name:  "ace ace nine reduces one ace",
			cards: []Card{{Spades, Ace}, {Hearts, Ace}, {Clubs, Nine}},
			total: 21,
			soft:  true,
		},
		{
			name:  "hard sixteen",
			cards: []Card{{Spades, Ten}, {Hearts, Six}},
			total: 16,
			soft:  false,
		},
		{
			name:  "ace forced hard",
			cards: []Card{{Spades, Ace}, {Hearts, Nine}, {Clubs, Five}},
			total: 15,
			soft:  false,
		},
		{
			name:  "bust",
			cards: []Card{{Spades, King}, {Hearts, Queen}, {Clubs, Five}},
			total: 25,
			soft:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, soft := HandValue(tt.cards)
			assert.Equal(t, tt.total, total)
			assert.Equal(t, tt.soft, soft)
		})
	}
}

func TestIsBlackjack(t *testing.T) {
	assert.True(t, IsBlackjack([]Card{{Spades, Ace}, {Hearts, Queen}}))
	assert.False(t, IsBlackjack([]Card{{Spades, Ace}, {Hearts, Five}, {Clubs, Five}}), "21 with three cards is not a natural")
	assert.False(t, IsBlackjack([]Card{{Spades, Ten}, {Hearts, Nine}}))
}
