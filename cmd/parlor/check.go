package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nix24/ChipMinigameParlor/internal/config"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

// CheckCmd loads and validates a configuration file.
type CheckCmd struct {
	Config string `short:"c" default:"parlor.hcl" help:"Path to HCL configuration file"`
}

func (c *CheckCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return fmt.Errorf("loading %s: %w", c.Config, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Println(headerStyle.Render("Configuration OK"))
	fmt.Printf("  log level        %s\n", cfg.Parlor.LogLevel)
	fmt.Printf("  turn timeout     %s\n", cfg.TurnTimeout())
	fmt.Printf("  lobby timeout    %s\n", cfg.LobbyTimeout())
	fmt.Printf("  round timeout    %s\n", cfg.RoundTimeout())
	fmt.Printf("  starting balance %d chips\n", cfg.Parlor.StartingBalance)
	fmt.Println()
	for _, game := range cfg.Games {
		status := okStyle.Render("enabled")
		if !game.Enabled {
			status = dimStyle.Render("disabled")
		}
		fmt.Printf("  %-10s %s  wagers %d-%d\n", game.Variant, status, game.MinWager, game.MaxWager)
	}
	return nil
}
