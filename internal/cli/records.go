package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/report"
)

func newTeamCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "team <number>",
		Short: "Show a team's statistics and matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			team, err := strconv.Atoi(args[0])
			if err != nil || team < 1 {
				return fmt.Errorf("invalid team number %q", args[0])
			}
			return e.withService(cmd.Context(), func(svc *service.Service) error {
				detail, err := svc.Team(cmd.Context(), team)
				if errors.Is(err, model.ErrNotFound) {
					fmt.Fprintf(cmd.OutOrStdout(), "No data for team %d.\n", team)
					return nil
				}
				if err != nil {
					return err
				}
				return report.RenderTeam(cmd.OutOrStdout(), detail)
			})
		},
	}
}

func newMatchesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "matches",
		Short: "List every record, latest match first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withService(cmd.Context(), func(svc *service.Service) error {
				recs, err := svc.Matches(cmd.Context())
				if err != nil {
					return err
				}
				if len(recs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No scouting data yet. Run 'scoutctl import <file.json>' to add some.")
					return nil
				}
				return report.RenderMatches(cmd.OutOrStdout(), recs)
			})
		},
	}
}

func newStatsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show event-wide totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withService(cmd.Context(), func(svc *service.Service) error {
				ov, err := svc.Overview(cmd.Context())
				if err != nil {
					return err
				}
				return report.RenderOverview(cmd.OutOrStdout(), ov)
			})
		},
	}
}

// newDeleteCmd removes one record by id, or by match/team when the argument
// has that form.
func newDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id | match/team>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withService(cmd.Context(), func(svc *service.Service) error {
				var (
					rec model.MatchRecord
					err error
				)
				if key, ok := parseKey(args[0]); ok {
					rec, err = svc.DeleteByKey(cmd.Context(), key)
				} else {
					rec, err = svc.Delete(cmd.Context(), args[0])
				}
				if err != nil {
					return fmt.Errorf("delete %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (match %d, team %d)\n", rec.ID, rec.MatchNumber, rec.TeamNumber)
				return nil
			})
		},
	}
}

func parseKey(s string) (model.NaturalKey, bool) {
	m, t, ok := strings.Cut(s, "/")
	if !ok {
		return model.NaturalKey{}, false
	}
	match, err := strconv.Atoi(m)
	if err != nil {
		return model.NaturalKey{}, false
	}
	team, err := strconv.Atoi(t)
	if err != nil {
		return model.NaturalKey{}, false
	}
	return model.NaturalKey{Match: match, Team: team}, true
}
