package pokerduel

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nix24/ChipMinigameParlor/internal/deck"
	"github.com/nix24/ChipMinigameParlor/internal/session"
)

func testConfig() Config {
	return Config{
		SessionID:    "duel-test",
		GuildID:      "guild",
		PlayerID:     "alice",
		PlayerName:   "Alice",
		Wager:        100,
		RoundTimeout: time.Minute,
		LobbyTimeout: time.Minute,
		Logger:       log.New(io.Discard),
	}
}

func royal(suit deck.Suit) []deck.Card {
	return []deck.Card{
		{Suit: suit, Rank: deck.Ace},
		{Suit: suit, Rank: deck.King},
		{Suit: suit, Rank: deck.Queen},
		{Suit: suit, Rank: deck.Jack},
		{Suit: suit, Rank: deck.Ten},
	}
}

// junk is an unconnected high-card hand.
func junk() []deck.Card {
	return []deck.Card{
		{Suit: deck.Clubs, Rank: deck.Two},
		{Suit: deck.Diamonds, Rank: deck.Four},
		{Suit: deck.Hearts, Rank: deck.Six},
		{Suit: deck.Spades, Rank: deck.Eight},
		{Suit: deck.Clubs, Rank: deck.Ten},
	}
}

// roundDeck stacks one round's worth of cards: the player's five, then
// the dealer's five.
func roundDeck(player, cpu []deck.Card) *deck.Deck {
	return deck.Stacked(append(append([]deck.Card{}, player...), cpu...)...)
}

// scriptDecks feeds pre-stacked decks to the session, one per deal.
func scriptDecks(s *Session, decks ...*deck.Deck) {
	i := 0
	s.newDeck = func() *deck.Deck {
		d := decks[i]
		i++
		return d
	}
}

func TestConfirmComputesQuarterStake(t *testing.T) {
	s, upd := New(testConfig())
	require.Equal(t, session.StatusWaiting, s.Status())
	require.NotNil(t, upd.Timer)

	scriptDecks(s, roundDeck(royal(deck.Spades), junk()))
	res, err := s.ConfirmStart("alice", 1003)
	require.NoError(t, err)
	assert.False(t, res.Terminal)
	require.NotNil(t, res.Timer)

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Equal(t, int64(250), s.potentialLoss, "quarter of balance, truncated")
	assert.Equal(t, 1, s.round)
}

func TestRevealBeforeConfirmRejected(t *testing.T) {
	s, _ := New(testConfig())
	_, err := s.Submit("alice", ActionReveal)
	assert.ErrorIs(t, err, session.ErrGameNotStarted)

	_, err = s.ConfirmStart("mallory", 1000)
	assert.ErrorIs(t, err, session.ErrNotInGame)
}

func TestTwoZeroSweepPaysDouble(t *testing.T) {
	s, _ := New(testConfig())
	scriptDecks(s,
		roundDeck(royal(deck.Spades), junk()),
		roundDeck(royal(deck.Hearts), junk()),
	)
	_, err := s.ConfirmStart("alice", 1000)
	require.NoError(t, err)

	r1, err := s.Submit("alice", ActionReveal)
	require.NoError(t, err)
	assert.False(t, r1.Terminal)
	assert.Contains(t, r1.StatusText, "On to round 2")

	r2, err := s.Submit("alice", ActionReveal)
	require.NoError(t, err)
	require.True(t, r2.Terminal)
	assert.Equal(t, "win", r2.Outcome)

	require.Len(t, r2.Settlement, 1)
	assert.Equal(t, int64(200), r2.Settlement[0].Delta, "2x the wager")
}

func TestMatchLossCostsQuarterNotWager(t *testing.T) {
	s, _ := New(testConfig())
	scriptDecks(s,
		roundDeck(junk(), royal(deck.Spades)),
		roundDeck(junk(), royal(deck.Hearts)),
	)
	_, err := s.ConfirmStart("alice", 2000)
	require.NoError(t, err)

	_, err = s.Submit("alice", ActionReveal)
	require.NoError(t, err)
	res, err := s.Submit("alice", ActionReveal)
	require.NoError(t, err)

	require.True(t, res.Terminal)
	assert.Equal(t, "loss", res.Outcome)
	require.Len(t, res.Settlement, 1)
	assert.Equal(t, int64(-500), res.Settlement[0].Delta, "quarter of 2000, not the 100 wager")
}

func TestBestOfThreeGoesToThirdRound(t *testing.T) {
	s, _ := New(testConfig())
	scriptDecks(s,
		roundDeck(royal(deck.Spades), junk()),
		roundDeck(junk(), royal(deck.Hearts)),
		roundDeck(royal(deck.Diamonds), junk()),
	)
	_, err := s.ConfirmStart("alice", 1000)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		upd, err := s.Submit("alice", ActionReveal)
		require.NoError(t, err)
		assert.False(t, upd.Terminal)
	}

	s.mu.Lock()
	assert.Equal(t, 3, s.round)
	assert.Equal(t, 1, s.playerWins)
	assert.Equal(t, 1, s.cpuWins)
	s.mu.Unlock()

	res, err := s.Submit("alice", ActionReveal)
	require.NoError(t, err)
	require.True(t, res.Terminal)
	assert.Equal(t, "win", res.Outcome)
}

func TestTieRedealsSameRound(t *testing.T) {
	straightA := []deck.Card{
		{Suit: deck.Spades, Rank: deck.Nine},
		{Suit: deck.Spades, Rank: deck.Eight},
		{Suit: deck.Diamonds, Rank: deck.Seven},
		{Suit: deck.Clubs, Rank: deck.Six},
		{Suit: deck.Hearts, Rank: deck.Five},
	}
	straightB := []deck.Card{
		{Suit: deck.Hearts, Rank: deck.Nine},
		{Suit: deck.Hearts, Rank: deck.Eight},
		{Suit: deck.Clubs, Rank: deck.Seven},
		{Suit: deck.Diamonds, Rank: deck.Six},
		{Suit: deck.Diamonds, Rank: deck.Five},
	}

	s, _ := New(testConfig())
	scriptDecks(s,
		roundDeck(straightA, straightB),
		roundDeck(royal(deck.Spades), junk()),
	)
	_, err := s.ConfirmStart("alice", 1000)
	require.NoError(t, err)

	tied, err := s.Submit("alice", ActionReveal)
	require.NoError(t, err)
	assert.False(t, tied.Terminal)
	assert.Contains(t, tied.StatusText, "again")

	s.mu.Lock()
	assert.Equal(t, 1, s.round, "round counter must not advance on a tie")
	assert.Equal(t, 0, s.playerWins)
	assert.Equal(t, 0, s.cpuWins)
	s.mu.Unlock()

	won, err := s.Submit("alice", ActionReveal)
	require.NoError(t, err)
	assert.False(t, won.Terminal)
	s.mu.Lock()
	assert.Equal(t, 1, s.playerWins)
	s.mu.Unlock()
}

func TestRoundTimeoutForfeitsMatch(t *testing.T) {
	s, _ := New(testConfig())
	scriptDecks(s, roundDeck(royal(deck.Spades), junk()))
	res, err := s.ConfirmStart("alice", 1200)
	require.NoError(t, err)

	out := s.Timeout(res.Timer.Epoch)
	require.NotNil(t, out)
	require.True(t, out.Terminal)
	assert.Equal(t, "loss", out.Outcome)
	require.Len(t, out.Settlement, 1)
	assert.Equal(t, int64(-300), out.Settlement[0].Delta)
}

func TestUnconfirmedTimeoutExpiresQuietly(t *testing.T) {
	s, upd := New(testConfig())
	out := s.Timeout(upd.Timer.Epoch)
	require.NotNil(t, out)
	assert.Equal(t, "expired", out.Outcome)
	assert.Empty(t, out.Settlement)
}

func TestStaleTimeoutIsNoOp(t *testing.T) {
	s, _ := New(testConfig())
	scriptDecks(s,
		roundDeck(royal(deck.Spades), junk()),
		roundDeck(royal(deck.Hearts), junk()),
	)
	first, err := s.ConfirmStart("alice", 1000)
	require.NoError(t, err)

	_, err = s.Submit("alice", ActionReveal)
	require.NoError(t, err)

	assert.Nil(t, s.Timeout(first.Timer.Epoch))
	assert.Equal(t, session.StatusPlaying, s.Status())
}

func TestDescribeHidesDealerHand(t *testing.T) {
	s, _ := New(testConfig())
	scriptDecks(s, roundDeck(royal(deck.Spades), junk()))
	_, err := s.ConfirmStart("alice", 1000)
	require.NoError(t, err)

	state := s.Describe()
	assert.Contains(t, state.Body, "A♠")
	assert.Contains(t, state.Body, "?????")
	require.Len(t, state.Actions, 1)
	assert.Equal(t, ActionReveal, state.Actions[0].ID)
}
