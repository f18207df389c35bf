package economy

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerUpdateBalance(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	ledger.Seed("alice", "guild1", 100)

	balance, err := ledger.UpdateBalance(ctx, "alice", "guild1", -40)
	require.NoError(t, err)
	assert.Equal(t, int64(60), balance)

	balance, err = ledger.UpdateBalance(ctx, "alice", "guild1", 15)
	require.NoError(t, err)
	assert.Equal(t, int64(75), balance)
}

func TestMemoryLedgerInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	ledger.Seed("bob", "guild1", 30)

	_, err := ledger.UpdateBalance(ctx, "bob", "guild1", -31)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// Balance untouched after the failed debit.
	balance, err := ledger.GetBalance(ctx, "bob", "guild1")
	require.NoError(t, err)
	assert.Equal(t, int64(30), balance)
}

func TestMemoryLedgerGuildScoping(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	ledger.Seed("alice", "guild1", 100)
	ledger.Seed("alice", "guild2", 5)

	_, err := ledger.UpdateBalance(ctx, "alice", "guild1", -50)
	require.NoError(t, err)

	balance, err := ledger.GetBalance(ctx, "alice", "guild2")
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance)
}

func TestApplyContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	ledger.Seed("winner", "g", 0)
	ledger.Seed("loser", "g", 10)

	legs := []Update{
		{PlayerID: "loser", GuildID: "g", Delta: -100, Reason: "wager"},
		{PlayerID: "winner", GuildID: "g", Delta: 100, Reason: "payout"},
		{PlayerID: "winner", GuildID: "g", Delta: 0, Reason: "noop"},
	}
	failed := Apply(ctx, ledger, log.New(io.Discard), legs)
	assert.Equal(t, 1, failed)

	// The payout leg still landed even though the debit failed.
	balance, err := ledger.GetBalance(ctx, "winner", "g")
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)
}
