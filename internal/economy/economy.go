// Package economy defines the ledger port the parlor settles wagers
// through. The real bot backs it with persistent storage; MemoryLedger
// backs the demo driver and tests.
package economy

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
)

// ErrInsufficientFunds is returned when a debit would take a balance
// below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Ledger is the narrow interface over the bot's currency store. Balances
// are scoped per guild so the same player can hold separate chip stacks
// in different servers.
type Ledger interface {
	// GetBalance retrieves the current chip balance for a player.
	GetBalance(ctx context.Context, playerID, guildID string) (int64, error)

	// UpdateBalance applies a signed delta and returns the new balance.
	// A debit below zero fails with ErrInsufficientFunds and leaves the
	// balance unchanged.
	UpdateBalance(ctx context.Context, playerID, guildID string, delta int64) (int64, error)
}

// Update is one settlement leg: a signed chip movement for one player.
type Update struct {
	PlayerID string
	GuildID  string
	Delta    int64
	Reason   string
}

// Apply settles a batch of legs against the ledger. Failures are logged
// and do not stop the remaining legs: settlement problems degrade the
// final message but never re-open a finished game.
func Apply(ctx context.Context, ledger Ledger, logger *log.Logger, legs []Update) (failed int) {
	for _, leg := range legs {
		if leg.Delta == 0 {
			continue
		}
		newBalance, err := ledger.UpdateBalance(ctx, leg.PlayerID, leg.GuildID, leg.Delta)
		if err != nil {
			failed++
			logger.Warn("settlement leg failed",
				"player", leg.PlayerID,
				"delta", leg.Delta,
				"reason", leg.Reason,
				"error", err)
			continue
		}
		logger.Debug("settled",
			"player", leg.PlayerID,
			"delta", leg.Delta,
			"balance", newBalance,
			"reason", leg.Reason)
	}
	return failed
}
