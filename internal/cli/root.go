// Package cli implements scoutctl, the operator command line for a scouting
// database. Commands work on the SQLite file directly, without a server.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/config"
	"github.com/okian/scout/pkg/logger"
)

// env carries the flags shared by every command.
type env struct {
	dbPath  string
	verbose bool
	cfg     *config.Config
}

// NewRootCmd builds the scoutctl command tree.
func NewRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:   "scoutctl",
		Short: "FRC scouting data tool",
		Long: "Import scanned scouting payloads, rank teams and export the data set.\n" +
			"Settings come from SCOUT_* environment variables and the SCOUT_CONFIG file; --db overrides db_path.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&e.dbPath, "db", "", "path to SQLite database (default from config)")
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "log service activity to stderr")

	root.AddCommand(
		newImportCmd(e),
		newRankCmd(e),
		newChartCmd(e),
		newReportCmd(e),
		newTeamCmd(e),
		newMatchesCmd(e),
		newStatsCmd(e),
		newDeleteCmd(e),
		newExportCmd(e),
	)
	return root
}

// Execute runs scoutctl with ctx and returns the error to report.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (e *env) setup(cmd *cobra.Command) error {
	if err := logger.Init(logger.WithOutput(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	level := "warn"
	if e.verbose {
		level = "info"
	}
	_ = logger.SetLevelString(level)

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if e.dbPath != "" {
		cfg.DBPath = e.dbPath
	}
	e.cfg = cfg
	return nil
}

// withService starts a service on the configured database, runs fn and
// stops the service again.
func (e *env) withService(ctx context.Context, fn func(*service.Service) error) error {
	svc := service.New(
		service.WithLogger(logger.Named("scoutctl")),
		service.WithDBPath(e.cfg.DBPath),
		service.WithWorkerCount(e.cfg.ImportWorkers),
		service.WithQueueSize(e.cfg.ImportQueueSize),
		service.WithDedupeSize(e.cfg.DedupeSize),
		service.WithMaxImportItems(e.cfg.ImportMaxItems),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("open %s: %w", e.cfg.DBPath, err)
	}
	defer svc.Stop()
	return fn(svc)
}
