// Package config loads the parlor's HCL configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete parlor configuration
type Config struct {
	Parlor ParlorSettings `hcl:"parlor,block"`
	Games  []GameConfig   `hcl:"game,block"`
}

// ParlorSettings contains process-level configuration
type ParlorSettings struct {
	LogLevel            string `hcl:"log_level,optional"`
	TurnTimeoutSeconds  int    `hcl:"turn_timeout_seconds,optional"`
	LobbyTimeoutSeconds int    `hcl:"lobby_timeout_seconds,optional"`
	RoundTimeoutSeconds int    `hcl:"round_timeout_seconds,optional"`
	StartingBalance     int64  `hcl:"starting_balance,optional"`
}

// GameConfig defines per-variant wager limits
type GameConfig struct {
	Variant  string `hcl:"variant,label"`
	Enabled  bool   `hcl:"enabled,optional"`
	MinWager int64  `hcl:"min_wager,optional"`
	MaxWager int64  `hcl:"max_wager,optional"`
}

var knownVariants = map[string]bool{
	"switches":  true,
	"fourtress": true,
	"blackjack": true,
	"pokerduel": true,
}

// Default returns the default parlor configuration
func Default() *Config {
	return &Config{
		Parlor: ParlorSettings{
			LogLevel:            "info",
			TurnTimeoutSeconds:  30,
			LobbyTimeoutSeconds: 60,
			RoundTimeoutSeconds: 60,
			StartingBalance:     1000,
		},
		Games: []GameConfig{
			{Variant: "switches", Enabled: true, MinWager: 10, MaxWager: 1000},
			{Variant: "fourtress", Enabled: true, MinWager: 10, MaxWager: 1000},
			{Variant: "blackjack", Enabled: true, MinWager: 10, MaxWager: 500},
			{Variant: "pokerduel", Enabled: true, MinWager: 10, MaxWager: 500},
		},
	}
}

// Load loads parlor configuration from an HCL file. A missing file is
// not an error: the defaults apply.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Parlor.LogLevel == "" {
		config.Parlor.LogLevel = "info"
	}
	if config.Parlor.TurnTimeoutSeconds == 0 {
		config.Parlor.TurnTimeoutSeconds = 30
	}
	if config.Parlor.LobbyTimeoutSeconds == 0 {
		config.Parlor.LobbyTimeoutSeconds = 60
	}
	if config.Parlor.RoundTimeoutSeconds == 0 {
		config.Parlor.RoundTimeoutSeconds = 60
	}
	if config.Parlor.StartingBalance == 0 {
		config.Parlor.StartingBalance = 1000
	}

	// Games omitted entirely fall back to the default set; a partial
	// list only configures the variants it names.
	if len(config.Games) == 0 {
		config.Games = Default().Games
	}
	for i := range config.Games {
		if config.Games[i].MaxWager == 0 {
			config.Games[i].MaxWager = 1000
		}
	}

	return &config, nil
}

// Validate validates the parlor configuration
func (c *Config) Validate() error {
	if c.Parlor.TurnTimeoutSeconds <= 0 {
		return fmt.Errorf("turn timeout must be positive")
	}
	if c.Parlor.LobbyTimeoutSeconds <= 0 {
		return fmt.Errorf("lobby timeout must be positive")
	}
	if c.Parlor.StartingBalance < 0 {
		return fmt.Errorf("starting balance must not be negative")
	}

	for _, game := range c.Games {
		if !knownVariants[game.Variant] {
			return fmt.Errorf("game %s: unknown variant", game.Variant)
		}
		if game.MinWager < 0 {
			return fmt.Errorf("game %s: min wager must not be negative", game.Variant)
		}
		if game.MinWager > game.MaxWager {
			return fmt.Errorf("game %s: min wager exceeds max wager", game.Variant)
		}
	}
	return nil
}

// TurnTimeout returns the per-turn window as a duration.
func (c *Config) TurnTimeout() time.Duration {
	return time.Duration(c.Parlor.TurnTimeoutSeconds) * time.Second
}

// LobbyTimeout returns the lobby window as a duration.
func (c *Config) LobbyTimeout() time.Duration {
	return time.Duration(c.Parlor.LobbyTimeoutSeconds) * time.Second
}

// RoundTimeout returns the poker-duel round window as a duration.
func (c *Config) RoundTimeout() time.Duration {
	return time.Duration(c.Parlor.RoundTimeoutSeconds) * time.Second
}

// GetGame returns the wager limits for a variant, or nil when the
// variant is not configured.
func (c *Config) GetGame(variant string) *GameConfig {
	for i := range c.Games {
		if c.Games[i].Variant == variant {
			return &c.Games[i]
		}
	}
	return nil
}
