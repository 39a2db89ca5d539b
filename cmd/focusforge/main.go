package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"focusforge/internal/bootstrap"
	battledto "focusforge/internal/modules/battle/dto"
	"focusforge/internal/platform/config"
	apperrors "focusforge/internal/platform/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir, observerBin string
	var verbose bool

	root := &cobra.Command{
		Use:           "focusforge",
		Short:         "Fight procrastination monsters with focus sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data", defaultDataDir(), "data directory")
	root.PersistentFlags().StringVar(&observerBin, "observer", "", "activity observer plugin binary")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose logging")

	load := func() (*bootstrap.App, error) {
		cfg, err := config.New(dataDir)
		if err != nil {
			return nil, err
		}
		cfg.ObserverBin = observerBin
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelInfo
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		return bootstrap.New(cfg, logger)
	}

	root.AddCommand(newTUICmd(load))
	root.AddCommand(newMonstersCmd(load))
	root.AddCommand(newStartCmd(load))
	root.AddCommand(newEndCmd(load))
	root.AddCommand(newStatusCmd(load))
	root.AddCommand(newStatsCmd(load))
	root.AddCommand(newCleanupCmd(load))
	return root
}

type appLoader func() (*bootstrap.App, error)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".focusforge"
	}
	return filepath.Join(home, ".focusforge")
}

func newTUICmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the focusforge terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunTUI(app)
		},
	}
}

func newMonstersCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "monsters",
		Short: "List the bestiary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			monsters, err := app.BestiaryCLI.ListMonsters(context.Background())
			if err != nil {
				return err
			}
			for _, m := range monsters {
				feeds := "tab switches"
				if len(m.TriggerSites) > 0 {
					feeds = strings.Join(m.TriggerSites, ", ")
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s %s\t%d HP\tfeeds on %s\n", m.ID, m.Icon, m.Name, m.HP, feeds)
			}
			return nil
		},
	}
}

func newStartCmd(load appLoader) *cobra.Command {
	var monsterID string
	var minutes int

	start := &cobra.Command{
		Use:   "start --monster <id>",
		Short: "Start a battle and fight it in the foreground",
		Long:  "Starts a focus session against a monster and keeps fighting until it resolves. Ctrl+C abandons the battle (the monster survives, no reward).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(monsterID) == "" {
				return fmt.Errorf("--monster is required")
			}
			app, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx := context.Background()

			if err := app.BattleCLI.Recover(ctx); err != nil {
				return err
			}
			state, err := app.BattleCLI.StartSession(ctx, monsterID, minutes*60)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s engaged: %d HP, %s on the clock\n",
				state.MonsterIcon, state.MonsterName, state.MaxHP, formatClock(state.DurationSeconds))

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(interrupt)

			lastPrinted := time.Now()
			for {
				select {
				case <-interrupt:
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "fleeing the battle…")
					if _, err := app.BattleCLI.EndSessionEarly(ctx); err != nil && !errors.Is(err, apperrors.ErrNoActiveSession) {
						return err
					}
				case event := <-app.Events:
					switch {
					case event.State != nil:
						if time.Since(lastPrinted) >= 30*time.Second {
							s := event.State
							_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d HP, %s left\n",
								s.MonsterName, s.CurrentHP, s.MaxHP, formatClock(s.RemainingSeconds))
							lastPrinted = time.Now()
						}
					case event.Outcome != nil:
						printOutcome(cmd, *event.Outcome)
						return nil
					}
				}
			}
		},
	}
	start.Flags().StringVar(&monsterID, "monster", "", "monster id (see `focusforge monsters`)")
	start.Flags().IntVar(&minutes, "duration", 0, "session length in minutes (0 fights at the monster's pace, one second per HP)")
	return start
}

func newEndCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "end",
		Short: "Abandon the active battle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx := context.Background()

			if err := app.BattleCLI.Recover(ctx); err != nil {
				return err
			}
			outcome, err := app.BattleCLI.EndSessionEarly(ctx)
			if errors.Is(err, apperrors.ErrNoActiveSession) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active battle")
				return nil
			}
			if err != nil {
				return err
			}
			printOutcome(cmd, outcome)
			return nil
		},
	}
}

func newStatusCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active battle, catching up on offline time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx := context.Background()

			if err := app.BattleCLI.Recover(ctx); err != nil {
				return err
			}
			state, err := app.BattleCLI.GetState(ctx)
			if errors.Is(err, apperrors.ErrNoActiveSession) {
				if outcome, outErr := app.BattleCLI.LastOutcome(ctx); outErr == nil {
					printOutcome(cmd, outcome)
					return nil
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active battle")
				return nil
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d/%d HP, %s left\n",
				state.MonsterIcon, state.MonsterName, state.CurrentHP, state.MaxHP, formatClock(state.RemainingSeconds))
			for _, line := range tail(state.BattleLog, 5) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", line)
			}
			return nil
		},
	}
}

func newStatsCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show warrior progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			stats, err := app.ProgressCLI.Overview(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "level %d — %s\n", stats.Level, stats.Title)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "xp: %d (%d/%d into level)\n", stats.CurrentXP, stats.XPIntoLevel, stats.XPForNextLevel)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pomodoros: %d  streak: %d day(s)\n", stats.TotalPomodoros, stats.CurrentStreak)
			for id, count := range stats.MonstersDefeated {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "defeated %s x%d\n", id, count)
			}
			return nil
		},
	}
}

func newCleanupCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Wipe stuck battle state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			if err := app.BattleCLI.ForceCleanup(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "battle state cleared")
			return nil
		},
	}
}

func printOutcome(cmd *cobra.Command, outcome battledto.BattleOutcome) {
	switch outcome.Result {
	case "victory":
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "VICTORY — %s %s defeated after %s\n",
			outcome.MonsterIcon, outcome.MonsterName, formatClock(outcome.ElapsedSeconds))
	case "defeat":
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "DEFEAT — %s %s survives with %d HP\n",
			outcome.MonsterIcon, outcome.MonsterName, outcome.FinalHP)
	default:
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ABANDONED — %s %s lives on\n",
			outcome.MonsterIcon, outcome.MonsterName)
	}
	if outcome.XPEarned > 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "+%d XP\n", outcome.XPEarned)
	}
	for _, msg := range outcome.XPMessages {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", msg)
	}
	if outcome.PomodoroCredit {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "pomodoro counted")
	}
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func tail(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
