// Package export renders match records as a flat table for CSV and XLSX
// downloads.
package export

import (
	"sort"
	"strconv"
	"time"

	"github.com/okian/scout/internal/domain/model"
)

// Columns is the fixed export header.
var Columns = []string{
	"Match", "Team", "Scout", "Auto Balls", "Auto Climb", "Teleop Balls",
	"Endgame Climb", "Match Outcome", "Played Defense", "Robot Broke", "Notes", "Timestamp",
}

// numericColumns are written as numbers in spreadsheet formats.
var numericColumns = map[int]bool{0: true, 1: true, 3: true, 5: true}

// Table is a header plus rows of display strings.
type Table struct {
	Header []string
	Rows   [][]string
}

// ToTable orders records by (match, team) and renders each as one row.
// The input slice is not reordered.
func ToTable(records []model.MatchRecord) Table {
	sorted := make([]*model.MatchRecord, len(records))
	for i := range records {
		sorted[i] = &records[i]
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].MatchNumber != sorted[j].MatchNumber {
			return sorted[i].MatchNumber < sorted[j].MatchNumber
		}
		return sorted[i].TeamNumber < sorted[j].TeamNumber
	})

	t := Table{Header: Columns, Rows: make([][]string, 0, len(sorted))}
	for _, r := range sorted {
		t.Rows = append(t.Rows, row(r))
	}
	return t
}

func row(r *model.MatchRecord) []string {
	return []string{
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
		r.Notes,
		timestamp(r.Timestamp),
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// FileName returns the download name for an export taken at now, e.g.
// frc_scouting_data_20260314_090000.csv.
func FileName(ext string, now time.Time) string {
	return "frc_scouting_data_" + now.Format("20060102_150405") + "." + ext
}
