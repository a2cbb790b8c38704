package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/scout/internal/domain/export"
	"github.com/okian/scout/internal/domain/model"
	"github.com/xuri/excelize/v2"
	. "github.com/smartystreets/goconvey/convey"
)

func records() []model.MatchRecord {
	ts := time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC)
	return []model.MatchRecord{
		{MatchNumber: 2, TeamNumber: 118, ScoutName: "Kai", AutoBalls: 1, TeleopBalls: 4,
			EndgameClimb: model.ClimbLevel3, MatchOutcome: "Lost", Timestamp: ts},
		{MatchNumber: 1, TeamNumber: 254, ScoutName: "Ada", AutoBalls: 3, TeleopBalls: 5,
			AutoClimb: model.ClimbLevel1, EndgameClimb: model.ClimbLevel2, MatchOutcome: "Won",
			PlayedDefense: true, Notes: "fast, \"clean\"\nsecond line", Timestamp: ts},
		{MatchNumber: 1, TeamNumber: 118, ScoutName: "Lin", MatchOutcome: "Tie"},
	}
}

func TestToTable(t *testing.T) {
	Convey("Given unordered records", t, func() {
		in := records()
		table := export.ToTable(in)

		Convey("Then the header has the fixed column order", func() {
			So(table.Header, ShouldResemble, []string{
				"Match", "Team", "Scout", "Auto Balls", "Auto Climb", "Teleop Balls",
				"Endgame Climb", "Match Outcome", "Played Defense", "Robot Broke", "Notes", "Timestamp",
			})
		})

		Convey("Then rows are ordered by match then team", func() {
			So(table.Rows, ShouldHaveLength, 3)
			So(table.Rows[0][:2], ShouldResemble, []string{"1", "118"})
			So(table.Rows[1][:2], ShouldResemble, []string{"1", "254"})
			So(table.Rows[2][:2], ShouldResemble, []string{"2", "118"})
		})

		Convey("Then enums and flags use display strings", func() {
			So(table.Rows[1], ShouldResemble, []string{
				"1", "254", "Ada", "3", "Level 1", "5", "Level 2", "Won", "Yes", "No",
				"fast, \"clean\"\nsecond line", "2026-03-14T08:30:00Z",
			})
			So(table.Rows[0][4], ShouldEqual, "None")
			So(table.Rows[0][11], ShouldEqual, "")
		})

		Convey("Then the input order is preserved", func() {
			So(in[0].MatchNumber, ShouldEqual, 2)
		})
	})
}

func TestWriteCSV(t *testing.T) {
	Convey("Given a table with awkward notes", t, func() {
		table := export.ToTable(records())
		var buf bytes.Buffer

		So(export.WriteCSV(&buf, table), ShouldBeNil)

		Convey("Then reading it back yields the same cells", func() {
			got, err := csv.NewReader(&buf).ReadAll()
			So(err, ShouldBeNil)
			want := append([][]string{table.Header}, table.Rows...)
			So(cmp.Diff(want, got), ShouldBeEmpty)
		})
	})

	Convey("Given no records", t, func() {
		var buf bytes.Buffer
		So(export.WriteCSV(&buf, export.ToTable(nil)), ShouldBeNil)
		So(buf.String(), ShouldStartWith, "Match,Team,Scout,")
	})
}

func TestWriteXLSX(t *testing.T) {
	Convey("Given a table", t, func() {
		table := export.ToTable(records())
		var buf bytes.Buffer

		So(export.WriteXLSX(&buf, table), ShouldBeNil)

		Convey("Then the workbook holds the header and rows", func() {
			f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
			So(err, ShouldBeNil)
			defer f.Close()

			rows, err := f.GetRows(export.SheetName)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 4)
			So(rows[0], ShouldResemble, table.Header)
			So(rows[2][2], ShouldEqual, "Ada")
			So(rows[2][6], ShouldEqual, "Level 2")

			v, err := f.GetCellValue(export.SheetName, "B3")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "254")
		})
	})
}

func TestFileName(t *testing.T) {
	Convey("Given an export time", t, func() {
		now := time.Date(2026, 3, 14, 9, 5, 7, 0, time.UTC)
		So(export.FileName("csv", now), ShouldEqual, "frc_scouting_data_20260314_090507.csv")
		So(export.FileName("xlsx", now), ShouldEqual, "frc_scouting_data_20260314_090507.xlsx")
	})
}
