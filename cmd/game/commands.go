package main

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
	"github.com/tatianab/integrity-trail/internal/config"
	"github.com/tatianab/integrity-trail/internal/content"
	"github.com/tatianab/integrity-trail/internal/engine"
	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/report"
	"github.com/tatianab/integrity-trail/internal/simulate"
	"github.com/tatianab/integrity-trail/internal/store"
	"github.com/tatianab/integrity-trail/internal/tui"
)

func init() {
	simulateCmd.Flags().String("strategy", simulate.StrategyEthical, "how the simulated player decides: ethical, corrupt, compromise, random or llm")
	simulateCmd.Flags().Uint64("seed", 0, "random seed, 0 picks one from the clock")
	reportCmd.Flags().String("out", "integrity-trail.pdf", "path to the generated PDF")
	validateCmd.Flags().String("dir", "", "directory with content YAML files, defaults to the built-in content")
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play, resuming the saved game if there is one",
	RunE:  runPlay,
}

func runPlay(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer a.Close()
	return tui.Run(a.engine)
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play a whole game with a scripted or LLM player",
	Long:  `Plays a game from the start without touching the saved game and prints every turn.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		strategy, _ := cmd.Flags().GetString("strategy")
		seed, _ := cmd.Flags().GetUint64("seed")
		if seed == 0 {
			seed = rand.Uint64()
		}
		r := rand.New(rand.NewPCG(seed, seed))

		ctx := cmd.Context()
		a, err := openApp(ctx, store.NewMemoryStore(), engine.WithRand(r))
		if err != nil {
			return err
		}
		defer a.Close()

		var player simulate.Player
		if strategy == simulate.StrategyLLM {
			if a.cfg.GeminiAPIKey == "" {
				return errors.New("the llm strategy needs GEMINI_API_KEY")
			}
			g, err := simulate.NewGeminiPlayer(ctx, a.cfg.GeminiAPIKey, a.cfg.GeminiModel, a.logger)
			if err != nil {
				return err
			}
			defer g.Close()
			player = g
		} else {
			player, err = simulate.NewStrategy(strategy, r)
			if err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Simulating a %s player (seed %d)\n\n", strategy, seed)
		_, err = simulate.Run(ctx, a.engine, player, cmd.OutOrStdout())
		return err
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the saved game in the configured slot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.engine.Restart(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Slot %q reset.\n", a.cfg.SaveSlot)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the saved game as a PDF report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, _ := cmd.Flags().GetString("out")
		a, err := openApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := os.Create(out)
		if err != nil {
			return errors.Wrap(err, "create report file")
		}
		if err := report.Write(f, a.engine.Result(cmd.Context())); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return errors.Wrap(err, "close report file")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", out)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check game content and list consequence diagnostics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		var (
			lib *content.Library
			err error
		)
		if dir == "" {
			lib, err = content.Load()
		} else {
			lib, err = content.LoadFS(os.DirFS(dir))
		}
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%d scenarios, %d consequences\n", len(lib.Scenarios()), lib.Catalog().Len())
		for _, d := range lib.Diagnostics() {
			fmt.Fprintf(w, "warning: %s\n", d)
		}
		return nil
	},
}

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "List the saved games in the save directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		slots, err := store.ListSlots(cfg.SaveDir)
		if err != nil {
			return err
		}
		for _, s := range slots {
			marker := " "
			if s == cfg.SaveSlot {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, s)
		}
		return nil
	},
}
