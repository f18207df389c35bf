// Package handeval ranks 5-card poker hands for the poker duel. Strength
// comparison is delegated to github.com/paulhankin/poker; the category
// name shown to players is derived locally.
package handeval

import (
	"fmt"
	"sort"

	"github.com/paulhankin/poker"

	"github.com/nix24/ChipMinigameParlor/internal/deck"
)

// Hand is an evaluated 5-card hand. Higher Strength wins; equal Strength
// is a genuine tie.
type Hand struct {
	Cards    [5]deck.Card
	Strength int16
	Name     string
}

// String returns the cards plus the category name, e.g. "A♠ K♠ Q♠ J♠ 10♠ (Royal Flush)".
func (h Hand) String() string {
	s := ""
	for i, c := range h.Cards {
		if i > 0 {
			s += " "
		}
		s += c.String()
	}
	return fmt.Sprintf("%s (%s)", s, h.Name)
}

// Evaluate ranks a 5-card hand. An error indicates a malformed card and is
// unreachable for cards dealt from a deck.Deck.
func Evaluate(cards [5]deck.Card) (Hand, error) {
	var converted [5]poker.Card
	for i, c := range cards {
		pc, err := poker.MakeCard(pokerSuit(c.Suit), pokerRank(c.Rank))
		if err != nil {
			return Hand{}, fmt.Errorf("convert card %s: %w", c, err)
		}
		converted[i] = pc
	}
	return Hand{
		Cards:    cards,
		Strength: poker.Eval5(&converted),
		Name:     categorize(cards),
	}, nil
}

// Compare returns 1 if a beats b, -1 if b beats a, and 0 on a tie.
func Compare(a, b Hand) int {
	switch {
	case a.Strength > b.Strength:
		return 1
	case a.Strength < b.Strength:
		return -1
	default:
		return 0
	}
}

func pokerSuit(s deck.Suit) poker.Suit {
	switch s {
	case deck.Clubs:
		return poker.Club
	case deck.Diamonds:
		return poker.Diamond
	case deck.Hearts:
		return poker.Heart
	default:
		return poker.Spade
	}
}

func pokerRank(r deck.Rank) poker.Rank {
	if r == deck.Ace {
		return 1
	}
	return poker.Rank(r)
}

// categorize names the hand category for display. Ordering agrees with
// the Eval5 strength so the name never contradicts the comparison result.
func categorize(cards [5]deck.Card) string {
	ranks := make([]int, 5)
	flush := true
	for i, c := range cards {
		ranks[i] = int(c.Rank)
		if c.Suit != cards[0].Suit {
			flush = false
		}
	}
	sort.Ints(ranks)

	straight, high := isStraight(ranks)
	counts := make(map[int]int)
	for _, r := range ranks {
		counts[r]++
	}
	pairs, trips, quads := 0, 0, 0
	for _, n := range counts {
		switch n {
		case 2:
			pairs++
		case 3:
			trips++
		case 4:
			quads++
		}
	}

	switch {
	case straight && flush && high == int(deck.Ace):
		return "Royal Flush"
	case straight && flush:
		return "Straight Flush"
	case quads == 1:
		return "Four of a Kind"
	case trips == 1 && pairs == 1:
		return "Full House"
	case flush:
		return "Flush"
	case straight:
		return "Straight"
	case trips == 1:
		return "Three of a Kind"
	case pairs == 2:
		return "Two Pair"
	case pairs == 1:
		return "One Pair"
	default:
		return "High Card"
	}
}

// isStraight expects sorted ranks and handles the wheel (A-2-3-4-5),
// where the ace plays low and the straight's high card is the five.
func isStraight(ranks []int) (bool, int) {
	run := true
	for i := 1; i < 5; i++ {
		if ranks[i] != ranks[i-1]+1 {
			run = false
			break
		}
	}
	if run {
		return true, ranks[4]
	}
	if ranks[0] == 2 && ranks[1] == 3 && ranks[2] == 4 && ranks[3] == 5 && ranks[4] == int(deck.Ace) {
		return true, 5
	}
	return false, 0
}
