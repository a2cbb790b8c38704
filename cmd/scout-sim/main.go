// Command scout-sim floods a scouting server with a simulated event's
// observations and checks the resulting rankings.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/scout/internal/simulator"
	"github.com/okian/scout/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := simulator.DefaultConfig()
	cfg.Workers = runtime.NumCPU() * 2
	var (
		logFormat  string
		verbose    bool
		runTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "scout-sim",
		Short: "Simulate an FRC event against a scouting server",
		Long: "Generate seeded scouting submissions for a simulated event, post them concurrently\n" +
			"to a running server and verify its rankings against a local computation.\n" +
			"Point it at a server with an empty store.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithFormat(logFormat), logger.WithOutput(cmd.ErrOrStderr())); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()
			if verbose {
				_ = logger.SetLevelString("debug")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
			defer cancel()

			stats, err := simulator.Run(ctx, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seed %d: %d created, %d duplicate, %d invalid, %d failed; %d teams verified\n",
				cfg.Seed, stats.Created, stats.Duplicates, stats.Invalid, stats.Failed, stats.RankingsChecked)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the service")
	f.IntVar(&cfg.Matches, "matches", cfg.Matches, "number of matches to simulate")
	f.IntVar(&cfg.Teams, "teams", cfg.Teams, "number of teams at the event")
	f.Float64Var(&cfg.DuplicateRate, "dup-rate", cfg.DuplicateRate, "share of observations a second scout also submits")
	f.Float64Var(&cfg.InvalidRate, "invalid-rate", cfg.InvalidRate, "share of observations missing a scout name")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "payload generator seed (default: current time)")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of concurrent submitters")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	f.IntVar(&cfg.TopN, "top", cfg.TopN, "ranking rows to fetch and verify")
	f.StringVar(&cfg.OutputFile, "output", "", "write generated payloads to this JSON file")
	f.StringVar(&logFormat, "log-format", logger.FormatText, "log format: text or json")
	f.BoolVarP(&verbose, "verbose", "v", false, "log submission progress")
	f.DurationVar(&runTimeout, "run-timeout", defaultRunTimeout, "overall time limit for the run")
	return cmd
}
