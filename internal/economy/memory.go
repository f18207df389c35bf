package economy

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLedger is a mutex-guarded in-memory Ledger. Check-and-set happens
// under one lock so concurrent settlements cannot overdraw a balance.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]int64
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]int64)}
}

func key(playerID, guildID string) string {
	return fmt.Sprintf("%s/%s", guildID, playerID)
}

// Seed sets a player's balance directly, for demo and test setup.
func (m *MemoryLedger) Seed(playerID, guildID string, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[key(playerID, guildID)] = balance
}

// GetBalance implements Ledger.
func (m *MemoryLedger) GetBalance(_ context.Context, playerID, guildID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[key(playerID, guildID)], nil
}

// UpdateBalance implements Ledger.
func (m *MemoryLedger) UpdateBalance(_ context.Context, playerID, guildID string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(playerID, guildID)
	next := m.balances[k] + delta
	if next < 0 {
		return m.balances[k], fmt.Errorf("debit %d from %d: %w", -delta, m.balances[k], ErrInsufficientFunds)
	}
	m.balances[k] = next
	return next, nil
}
