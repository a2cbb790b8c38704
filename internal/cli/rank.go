package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/aggregate"
	"github.com/okian/scout/internal/domain/scoring"
	"github.com/okian/scout/internal/report"
)

const chartFilePermission = 0o644

// filterFlags binds --base and --sub on cmd.
type filterFlags struct {
	base, sub string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.base, "base", "All", "score base: All, Autonomous, Teleop, Climb or Shoot")
	cmd.Flags().StringVar(&f.sub, "sub", "", "sub-filter: Balls/Climb for Autonomous and Teleop, Auto/Teleop for Climb and Shoot")
}

func (f *filterFlags) filter() (scoring.Filter, error) {
	return scoring.ParseFilter(f.base, f.sub)
}

func newRankCmd(e *env) *cobra.Command {
	var (
		ff    filterFlags
		limit int
	)
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank teams by mean score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := ff.filter()
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = e.cfg.DefaultRankingsLimit
			}
			return e.withService(cmd.Context(), func(svc *service.Service) error {
				rankings, err := svc.Rankings(cmd.Context(), f, limit)
				if err != nil {
					return fmt.Errorf("rankings: %w", err)
				}
				if len(rankings) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No scouting data yet. Run 'scoutctl import <file.json>' to add some.")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rankings (%s)\n", f)
				return report.RenderRankings(cmd.OutOrStdout(), rankings)
			})
		},
	}
	ff.bind(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of teams to show (default from config)")
	return cmd
}

func newChartCmd(e *env) *cobra.Command {
	var (
		ff  filterFlags
		out string
		top int
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the top teams as a PNG bar chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := ff.filter()
			if err != nil {
				return err
			}
			if top <= 0 {
				top = e.cfg.ChartTopN
			}
			return e.withService(cmd.Context(), func(svc *service.Service) error {
				rankings, err := svc.Rankings(cmd.Context(), f, top)
				if err != nil {
					return fmt.Errorf("rankings: %w", err)
				}
				var buf bytes.Buffer
				title := fmt.Sprintf("Top %d teams (%s)", top, f)
				if err := report.TopTeamsChart(&buf, rankings, top, title); err != nil {
					return err
				}
				if err := os.WriteFile(out, buf.Bytes(), chartFilePermission); err != nil {
					return fmt.Errorf("write chart: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
				return nil
			})
		},
	}
	ff.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "rankings.png", "output PNG file")
	cmd.Flags().IntVar(&top, "top", 0, "number of teams to chart (default from config)")
	return cmd
}

// newReportCmd prints the event overview and full rankings from one snapshot.
func newReportCmd(e *env) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the event overview and rankings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := ff.filter()
			if err != nil {
				return err
			}
			return e.withService(cmd.Context(), func(svc *service.Service) error {
				rep, err := svc.Report(cmd.Context(), f)
				if err != nil {
					return fmt.Errorf("report: %w", err)
				}
				w := cmd.OutOrStdout()
				if err := report.RenderOverview(w, rep.Overview); err != nil {
					return err
				}
				fmt.Fprintf(w, "\nRankings (%s)\n", rep.Filter)
				if err := report.RenderRankings(w, rep.Rankings); err != nil {
					return err
				}
				if best := aggregate.Top(rep.Rankings, 1); len(best) == 1 {
					s := rep.Teams[best[0].TeamNumber]
					fmt.Fprintf(w, "\nLeader: team %d, %d-%d over %d matches\n", s.TeamNumber, s.Wins, s.Losses, s.MatchesPlayed)
				}
				return nil
			})
		},
	}
	ff.bind(cmd)
	return cmd
}
