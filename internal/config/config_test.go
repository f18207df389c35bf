package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Parlor.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.TurnTimeout())
	assert.Equal(t, int64(1000), cfg.Parlor.StartingBalance)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parlor.hcl")
	content := `
parlor {
  log_level            = "debug"
  turn_timeout_seconds = 45
}

game "blackjack" {
  enabled   = true
  min_wager = 25
  max_wager = 250
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Parlor.LogLevel)
	assert.Equal(t, 45*time.Second, cfg.TurnTimeout())
	assert.Equal(t, 60*time.Second, cfg.LobbyTimeout(), "unset values take defaults")

	bj := cfg.GetGame("blackjack")
	require.NotNil(t, bj)
	assert.Equal(t, int64(25), bj.MinWager)
	assert.Nil(t, cfg.GetGame("fourtress"), "partial game lists configure only what they name")
}

func TestInvalidHCL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.hcl")
	require.NoError(t, os.WriteFile(path, []byte("parlor {"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsBadVariant(t *testing.T) {
	cfg := Default()
	cfg.Games = append(cfg.Games, GameConfig{Variant: "roulette"})
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsInvertedWagers(t *testing.T) {
	cfg := Default()
	cfg.Games[0].MinWager = 5000
	assert.Error(t, cfg.Validate())
}
