package aggregate_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/scout/internal/domain/aggregate"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/scoring"
	"github.com/okian/scout/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(match, team, auto, tele int, ac, ec model.ClimbLevel, outcome string) model.MatchRecord {
	return model.MatchRecord{
		MatchNumber: match, TeamNumber: team, ScoutName: "s",
		AutoBalls: auto, TeleopBalls: tele, AutoClimb: ac, EndgameClimb: ec,
		MatchOutcome: outcome, OutcomeKey: outcome,
	}
}

func fixture() []model.MatchRecord {
	return []model.MatchRecord{
		rec(1, 100, 3, 5, model.ClimbNone, model.ClimbLevel2, "won"),
		rec(1, 200, 1, 1, model.ClimbNone, model.ClimbNone, "lost"),
		rec(2, 200, 4, 10, model.ClimbLevel1, model.ClimbLevel3, "won"),
		rec(2, 300, 2, 2, model.ClimbNone, model.ClimbLevel1, "tie"),
		rec(3, 300, 6, 8, model.ClimbNone, model.ClimbLevel1, "won"),
		rec(3, 400, 0, 0, model.ClimbNone, model.ClimbNone, ""),
	}
}

func TestRank(t *testing.T) {
	Convey("Given the worked example alone", t, func() {
		records := fixture()[:1]
		got := aggregate.Rank(records, scoring.Filter{})

		Convey("Then team 100 is first with mean 28", func() {
			So(got, ShouldHaveLength, 1)
			So(got[0], ShouldResemble, types.TeamRanking{Rank: 1, TeamNumber: 100, MeanScore: 28, Matches: 1})
		})
	})

	Convey("Given several teams", t, func() {
		records := fixture()

		Convey("When ranking by everything", func() {
			got := aggregate.Rank(records, scoring.Filter{})
			want := []types.TeamRanking{
				// 200: (2 + 4+10+15+30) / 2 = 30.5
				{Rank: 1, TeamNumber: 200, MeanScore: 30.5, Matches: 2},
				{Rank: 2, TeamNumber: 100, MeanScore: 28, Matches: 1},
				// 300: (14 + 24) / 2 = 19
				{Rank: 3, TeamNumber: 300, MeanScore: 19, Matches: 2},
				{Rank: 4, TeamNumber: 400, MeanScore: 0, Matches: 1},
			}

			Convey("Then means are ordered descending", func() {
				So(cmp.Diff(want, got), ShouldBeEmpty)
			})

			Convey("Then ranking again yields the same output", func() {
				So(cmp.Diff(got, aggregate.Rank(records, scoring.Filter{})), ShouldBeEmpty)
			})

			Convey("Then the input snapshot is untouched", func() {
				So(cmp.Diff(fixture(), records), ShouldBeEmpty)
			})
		})

		Convey("When teams tie", func() {
			tied := []model.MatchRecord{
				rec(1, 900, 2, 0, model.ClimbNone, model.ClimbNone, ""),
				rec(1, 50, 2, 0, model.ClimbNone, model.ClimbNone, ""),
				rec(1, 300, 2, 0, model.ClimbNone, model.ClimbNone, ""),
			}
			got := aggregate.Rank(tied, scoring.Filter{Base: scoring.BaseShoot})

			Convey("Then lower team numbers come first", func() {
				So(got[0].TeamNumber, ShouldEqual, 50)
				So(got[1].TeamNumber, ShouldEqual, 300)
				So(got[2].TeamNumber, ShouldEqual, 900)
				So(got[2].Rank, ShouldEqual, 3)
			})
		})

		Convey("When ranking many generated records under every filter", func() {
			var many []model.MatchRecord
			for i := 0; i < 120; i++ {
				many = append(many, rec(i/6+1, 1000+i%17, i%5, (i*7)%11, model.ClimbLevel(i%4), model.ClimbLevel((i/3)%4), ""))
			}
			for _, f := range []scoring.Filter{{}, {Base: scoring.BaseClimb}, {Base: scoring.BaseTeleop, Sub: scoring.SubBalls}} {
				got := aggregate.Rank(many, f)
				for i := 1; i < len(got); i++ {
					So(got[i-1].MeanScore, ShouldBeGreaterThanOrEqualTo, got[i].MeanScore)
					if got[i-1].MeanScore == got[i].MeanScore {
						So(got[i-1].TeamNumber, ShouldBeLessThan, got[i].TeamNumber)
					}
					So(got[i].Rank, ShouldEqual, i+1)
				}
			}
		})

		Convey("When no records exist", func() {
			So(aggregate.Rank(nil, scoring.Filter{}), ShouldBeEmpty)
		})
	})
}

func TestTop(t *testing.T) {
	Convey("Given rankings", t, func() {
		r := aggregate.Rank(fixture(), scoring.Filter{})
		So(aggregate.Top(r, 2), ShouldHaveLength, 2)
		So(aggregate.Top(r, 0), ShouldHaveLength, 4)
		So(aggregate.Top(r, 99), ShouldHaveLength, 4)
	})
}

func TestTeamStats(t *testing.T) {
	Convey("Given the worked example", t, func() {
		s := aggregate.TeamStats(100, fixture())

		So(s.MatchesPlayed, ShouldEqual, 1)
		So(s.Wins, ShouldEqual, 1)
		So(s.WinRate, ShouldEqual, 1.0)
	})

	Convey("Given a team with a tie", t, func() {
		s := aggregate.TeamStats(300, fixture())

		Convey("Then the tie counts as played but neither won nor lost", func() {
			So(s.MatchesPlayed, ShouldEqual, 2)
			So(s.Wins, ShouldEqual, 1)
			So(s.Losses, ShouldEqual, 0)
			So(s.WinRate, ShouldEqual, 0.5)
		})

		Convey("Then climb histograms cover all four levels", func() {
			So(s.EndgameClimbCounts, ShouldResemble, types.ClimbCounts{
				model.ClimbNone: 0, model.ClimbLevel1: 2, model.ClimbLevel2: 0, model.ClimbLevel3: 0,
			})
			So(s.AutoClimbCounts[model.ClimbNone], ShouldEqual, 2)
		})

		Convey("Then ball means are averaged", func() {
			So(s.AvgAutoBalls, ShouldEqual, 4.0)
			So(s.AvgTeleopBalls, ShouldEqual, 5.0)
		})
	})

	Convey("Given a team with no records", t, func() {
		s := aggregate.TeamStats(9999, fixture())

		Convey("Then rates are zero rather than NaN", func() {
			So(s.MatchesPlayed, ShouldEqual, 0)
			So(s.WinRate, ShouldEqual, 0.0)
			So(s.DefenseRate, ShouldEqual, 0.0)
			So(s.AutoClimbCounts, ShouldHaveLength, 4)
		})
	})

	Convey("Given defense and breakdown flags", t, func() {
		records := fixture()
		records[1].PlayedDefense = true
		records[2].RobotBroke = true
		s := aggregate.TeamStats(200, records)

		So(s.DefenseRate, ShouldEqual, 0.5)
		So(s.BreakdownRate, ShouldEqual, 0.5)
		So(s.Losses, ShouldEqual, 1)
	})

	Convey("Given every team", t, func() {
		all := aggregate.Stats(fixture())
		So(all, ShouldHaveLength, 4)
		for team, s := range all {
			So(s.TeamNumber, ShouldEqual, team)
			So(s.WinRate, ShouldBeBetweenOrEqual, 0.0, 1.0)
		}
	})
}

func TestTeamDetailAndOverview(t *testing.T) {
	Convey("Given records out of match order", t, func() {
		records := fixture()
		records[0], records[2] = records[2], records[0]

		d := aggregate.TeamDetail(200, records)
		So(d.Matches, ShouldHaveLength, 2)
		So(d.Matches[0].MatchNumber, ShouldEqual, 1)
		So(d.Matches[1].MatchNumber, ShouldEqual, 2)
		So(d.TeamNumber, ShouldEqual, 200)
	})

	Convey("Given the fixture overview", t, func() {
		ov := aggregate.Overview(fixture())
		So(ov.TotalMatches, ShouldEqual, 6)
		So(ov.UniqueTeams, ShouldEqual, 4)
		So(ov.AvgAutoBalls, ShouldAlmostEqual, 16.0/6.0)
		So(ov.AvgTeleopBalls, ShouldAlmostEqual, 26.0/6.0)
		So(aggregate.Overview(nil), ShouldResemble, types.Overview{})
	})
}

func TestBuild(t *testing.T) {
	Convey("Given a larger snapshot", t, func() {
		var records []model.MatchRecord
		for i := 0; i < 500; i++ {
			records = append(records, rec(i/10+1, 2000+i%37, i%7, i%13, model.ClimbLevel(i%4), model.ClimbLevel((i+1)%4), fmt.Sprintf("%c", "wlt"[i%3])))
		}
		f := scoring.Filter{Base: scoring.BaseClimb}

		Convey("When building a report", func() {
			rep, err := aggregate.Build(context.Background(), records, f)

			Convey("Then it agrees with the sequential helpers", func() {
				So(err, ShouldBeNil)
				So(cmp.Diff(aggregate.Rank(records, f), rep.Rankings), ShouldBeEmpty)
				So(cmp.Diff(aggregate.Stats(records), rep.Teams), ShouldBeEmpty)
				So(rep.Overview, ShouldResemble, aggregate.Overview(records))
				So(rep.Filter, ShouldResemble, f)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := aggregate.Build(ctx, records, f)

			Convey("Then the cancellation is returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
