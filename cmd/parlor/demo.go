package main

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/nix24/ChipMinigameParlor/internal/config"
	"github.com/nix24/ChipMinigameParlor/internal/economy"
	"github.com/nix24/ChipMinigameParlor/internal/parlor"
	"github.com/nix24/ChipMinigameParlor/internal/randutil"
	"github.com/nix24/ChipMinigameParlor/internal/session"
)

// DemoCmd drives concurrent games to completion against an in-memory
// ledger, with a random-policy player in each seat. Useful for eyeballing
// game flow and settlement without a chat platform attached.
type DemoCmd struct {
	Config   string `short:"c" default:"parlor.hcl" help:"Path to HCL configuration file"`
	Games    int    `short:"n" default:"8" help:"Number of games to run"`
	Wager    int64  `short:"w" default:"50" help:"Wager per game"`
	Seed     int64  `short:"s" default:"0" help:"Random seed (0 picks one)"`
	LogLevel string `short:"l" default:"warn" help:"Log level"`
}

const maxDemoActions = 500

var demoVariants = []session.Variant{
	session.VariantSwitches,
	session.VariantFourtress,
	session.VariantBlackjack,
	session.VariantPokerDuel,
}

func (c *DemoCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.New(os.Stderr)
	switch c.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}

	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	rng := randutil.New(c.Seed)

	var outMu sync.Mutex
	notify := func(state session.RenderState, text string) {
		if state.Status != session.StatusFinished || text == "" {
			return
		}
		outMu.Lock()
		defer outMu.Unlock()
		fmt.Printf("%s %s\n", dimStyle.Render("["+string(state.Variant)+"]"), text)
	}

	limits := make(map[session.Variant]parlor.VariantLimits, len(cfg.Games))
	for _, game := range cfg.Games {
		limits[session.Variant(game.Variant)] = parlor.VariantLimits{
			Enabled:  game.Enabled,
			MinWager: game.MinWager,
			MaxWager: game.MaxWager,
		}
	}
	variants := make([]session.Variant, 0, len(demoVariants))
	for _, v := range demoVariants {
		if lim, ok := limits[v]; !ok || lim.Enabled {
			variants = append(variants, v)
		}
	}
	if len(variants) == 0 {
		return fmt.Errorf("no variants enabled in %s", c.Config)
	}

	ledger := economy.NewMemoryLedger()
	controller := parlor.NewController(parlor.Options{
		Clock:  quartz.NewReal(),
		Ledger: ledger,
		Logger: logger,
		Rand:   randutil.New(rng.Int64()),
		Notify: notify,
		Timeouts: parlor.Timeouts{
			Turn:  cfg.TurnTimeout(),
			Lobby: cfg.LobbyTimeout(),
			Round: cfg.RoundTimeout(),
		},
		Limits: limits,
	})
	defer controller.Shutdown()

	fmt.Println(headerStyle.Render(fmt.Sprintf("Running %d demo games (seed %d)", c.Games, c.Seed)))

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < c.Games; i++ {
		playerID := fmt.Sprintf("demo-%d", i+1)
		variant := variants[i%len(variants)]
		seed := rng.Int64()
		ledger.Seed(playerID, "demo", cfg.Parlor.StartingBalance)

		g.Go(func() error {
			return runDemoGame(ctx, controller, variant, playerID, c.Wager, randutil.New(seed))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Results"))
	for variant, n := range controller.Stats() {
		fmt.Printf("  %-10s %d finished\n", variant, n)
	}
	for i := 0; i < c.Games; i++ {
		playerID := fmt.Sprintf("demo-%d", i+1)
		balance, _ := ledger.GetBalance(context.Background(), playerID, "demo")
		delta := balance - cfg.Parlor.StartingBalance
		style := okStyle
		if delta < 0 {
			style = dimStyle
		}
		fmt.Printf("  %-8s %5d chips (%s)\n", playerID, balance, style.Render(fmt.Sprintf("%+d", delta)))
	}
	return nil
}

// runDemoGame creates one session and plays random valid actions until
// the session leaves the registry.
func runDemoGame(ctx context.Context, controller *parlor.Controller, variant session.Variant, playerID string, wager int64, rng *rand.Rand) error {
	id, err := controller.Create(ctx, parlor.CreateRequest{
		Variant:     variant,
		GuildID:     "demo",
		CreatorID:   playerID,
		CreatorName: playerID,
		Wager:       wager,
	})
	if err != nil {
		return fmt.Errorf("%s create %s: %w", playerID, variant, err)
	}

	for i := 0; i < maxDemoActions; i++ {
		state, err := controller.Describe(id)
		if errors.Is(err, session.ErrUnknownSession) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(state.Actions) == 0 {
			return nil
		}

		action := state.Actions[rng.IntN(len(state.Actions))]
		err = controller.Submit(ctx, id, playerID, action.ID)
		switch {
		case errors.Is(err, session.ErrUnknownSession), errors.Is(err, session.ErrGameFinished):
			return nil
		case err != nil:
			return fmt.Errorf("%s submit %s: %w", playerID, action.ID, err)
		}
	}
	return fmt.Errorf("%s: %s did not finish within %d actions", playerID, variant, maxDemoActions)
}
