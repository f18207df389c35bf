package deck

// HandValue computes the blackjack total for a hand. Aces count eleven
// until the total would bust, then drop to one each, lowest-impact first.
// soft reports whether the final total still counts an ace as eleven,
// which UIs display as e.g. "Soft 17".
func HandValue(cards []Card) (total int, soft bool) {
	acesHigh := 0
	for _, c := range cards {
		total += c.Value()
		if c.IsAce() {
			acesHigh++
		}
	}
	for total > 21 && acesHigh > 0 {
		total -= 10
		acesHigh--
	}
	return total, acesHigh > 0
}

// IsBlackjack reports whether the hand is a natural: exactly two cards
// totalling twenty-one.
func IsBlackjack(cards []Card) bool {
	if len(cards) != 2 {
		return false
	}
	total, _ := HandValue(cards)
	return total == 21
}

// IsBust reports whether the hand total exceeds twenty-one.
func IsBust(cards []Card) bool {
	total, _ := HandValue(cards)
	return total > 21
}
