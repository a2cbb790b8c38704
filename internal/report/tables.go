package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/types"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func renderTable(t *tablewriter.Table, header []any, rows [][]string) error {
	t.Header(header...)
	if err := t.Bulk(rows); err != nil {
		return fmt.Errorf("append rows: %w", err)
	}
	if err := t.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

// RenderRankings writes one row per ranked team.
func RenderRankings(w io.Writer, rankings []types.TeamRanking) error {
	rows := make([][]string, 0, len(rankings))
	for _, r := range rankings {
		rows = append(rows, []string{
			strconv.Itoa(r.Rank),
			strconv.Itoa(r.TeamNumber),
			fmt.Sprintf("%.2f", r.MeanScore),
			strconv.Itoa(r.Matches),
		})
	}
	return renderTable(newTable(w), []any{"RANK", "TEAM", "MEAN", "MATCHES"}, rows)
}

// RenderTeam writes a team's summary followed by its matches.
func RenderTeam(w io.Writer, d types.TeamDetail) error {
	summary := [][]string{
		{"Matches", strconv.Itoa(d.MatchesPlayed)},
		{"Wins / Losses", fmt.Sprintf("%d / %d", d.Wins, d.Losses)},
		{"Win rate", percent(d.WinRate)},
		{"Defense rate", percent(d.DefenseRate)},
		{"Breakdown rate", percent(d.BreakdownRate)},
		{"Avg auto balls", fmt.Sprintf("%.2f", d.AvgAutoBalls)},
		{"Avg teleop balls", fmt.Sprintf("%.2f", d.AvgTeleopBalls)},
	}
	for _, l := range model.ClimbLevels {
		summary = append(summary, []string{
			"Auto / endgame " + l.String(),
			fmt.Sprintf("%d / %d", d.AutoClimbCounts[l], d.EndgameClimbCounts[l]),
		})
	}
	if _, err := fmt.Fprintf(w, "Team %d\n", d.TeamNumber); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	if err := renderTable(newTable(w), []any{"STAT", "VALUE"}, summary); err != nil {
		return err
	}
	return RenderMatches(w, d.Matches)
}

// RenderMatches writes one row per record in the order given.
func RenderMatches(w io.Writer, records []model.MatchRecord) error {
	rows := make([][]string, 0, len(records))
	for i := range records {
		r := &records[i]
		rows = append(rows, []string{
			r.ID,
			strconv.Itoa(r.MatchNumber),
			strconv.Itoa(r.TeamNumber),
			r.ScoutName,
			strconv.Itoa(r.AutoBalls),
			r.AutoClimb.String(),
			strconv.Itoa(r.TeleopBalls),
			r.EndgameClimb.String(),
			r.MatchOutcome,
			yesNo(r.PlayedDefense),
			yesNo(r.RobotBroke),
		})
	}
	return renderTable(newTable(w),
		[]any{"ID", "MATCH", "TEAM", "SCOUT", "AUTO", "AUTO CLIMB", "TELEOP", "ENDGAME", "OUTCOME", "DEF", "BROKE"},
		rows)
}

// RenderOverview writes event-wide totals.
func RenderOverview(w io.Writer, o types.Overview) error {
	return renderTable(newTable(w), []any{"STAT", "VALUE"}, [][]string{
		{"Total matches", strconv.Itoa(o.TotalMatches)},
		{"Unique teams", strconv.Itoa(o.UniqueTeams)},
		{"Avg auto balls", fmt.Sprintf("%.2f", o.AvgAutoBalls)},
		{"Avg teleop balls", fmt.Sprintf("%.2f", o.AvgTeleopBalls)},
	})
}

func percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
