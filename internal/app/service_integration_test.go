package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

var clock = func() time.Time { return time.Date(2024, 4, 6, 10, 0, 0, 0, time.UTC) }

func started(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	opts = append([]service.Option{service.WithWorkerCount(4), service.WithClock(clock)}, opts...)
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func compact(match, team, ab, tb, ac, ec int, outcome string) model.RawSubmission {
	return model.RawSubmission{
		"m": match, "t": team, "s": "Scout", "ab": ab, "tb": tb, "ac": ac, "ec": ec, "o": outcome,
	}
}

func TestServiceSubmit(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running service", t, func() {
		svc := started(t)

		Convey("A compact payload is stored with an id", func() {
			rec, err := svc.Submit(ctx, compact(12, 254, 3, 10, 1, 3, "Won"))
			So(err, ShouldBeNil)
			So(rec.ID, ShouldNotBeEmpty)
			So(rec.Key(), ShouldEqual, model.NaturalKey{Match: 12, Team: 254})
			So(rec.Timestamp.Equal(clock()), ShouldBeTrue)
		})

		Convey("An expanded payload is accepted", func() {
			raw := model.RawSubmission{
				"matchNumber": 3, "teamNumber": 1678, "scoutName": "Lee",
				"autonomous":  map[string]any{"ballsScored": 2, "climbLevel": "Level 1"},
				"teleop":      map[string]any{"ballsScored": 7},
				"endgame":     map[string]any{"climbLevel": "Level 2"},
				"robotStatus": map[string]any{"playedDefense": true},
			}
			rec, err := svc.Submit(ctx, raw)
			So(err, ShouldBeNil)
			So(rec.AutoClimb, ShouldEqual, model.ClimbLevel1)
			So(rec.PlayedDefense, ShouldBeTrue)
		})

		Convey("A repeated match/team is rejected and stored once", func() {
			_, err := svc.Submit(ctx, compact(12, 254, 3, 10, 1, 3, "Won"))
			So(err, ShouldBeNil)
			_, err = svc.Submit(ctx, compact(12, 254, 9, 9, 0, 0, "Lost"))
			So(errors.Is(err, model.ErrDuplicate), ShouldBeTrue)

			all, err := svc.Matches(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 1)
			So(all[0].AutoBalls, ShouldEqual, 3)
		})

		Convey("Missing identifiers are listed", func() {
			_, err := svc.Submit(ctx, model.RawSubmission{"ab": 3})
			var verr *model.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Fields, ShouldContain, "matchNumber")
			So(verr.Fields, ShouldContain, "teamNumber")
		})

		Convey("Concurrent submissions of one key store exactly one record", func() {
			var (
				wg sync.WaitGroup
				ok atomic.Int32
			)
			for range 20 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := svc.Submit(ctx, compact(40, 971, 1, 1, 0, 0, "")); err == nil {
						ok.Add(1)
					}
				}()
			}
			wg.Wait()
			So(ok.Load(), ShouldEqual, 1)
		})

		Convey("Delete frees the key for resubmission", func() {
			rec, err := svc.Submit(ctx, compact(5, 118, 0, 0, 0, 0, ""))
			So(err, ShouldBeNil)

			_, err = svc.Delete(ctx, rec.ID)
			So(err, ShouldBeNil)
			_, err = svc.Delete(ctx, rec.ID)
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)

			_, err = svc.Submit(ctx, compact(5, 118, 0, 0, 0, 0, ""))
			So(err, ShouldBeNil)
			_, err = svc.DeleteByKey(ctx, model.NaturalKey{Match: 5, Team: 118})
			So(err, ShouldBeNil)
		})
	})
}

func TestServiceQueries(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service holding three teams", t, func() {
		svc := started(t)
		for _, raw := range []model.RawSubmission{
			compact(1, 100, 3, 5, 0, 2, "won"),
			compact(1, 200, 1, 1, 0, 0, "lost"),
			compact(2, 200, 4, 10, 1, 3, "won"),
			compact(2, 300, 2, 2, 0, 1, "tie"),
		} {
			_, err := svc.Submit(ctx, raw)
			So(err, ShouldBeNil)
		}

		Convey("Matches lists latest match first then team ascending", func() {
			all, err := svc.Matches(ctx)
			So(err, ShouldBeNil)
			var keys []string
			for i := range all {
				keys = append(keys, all[i].Key().String())
			}
			So(keys, ShouldResemble, []string{"2/200", "2/300", "1/100", "1/200"})
		})

		Convey("Rankings order by mean score and honor the limit", func() {
			// 100: 3+5+20 = 28; 200: (2 + 59) / 2 = 30.5; 300: 2+2+10 = 14
			ranked, err := svc.Rankings(ctx, scoring.Filter{}, 0)
			So(err, ShouldBeNil)
			So(ranked, ShouldHaveLength, 3)
			So(ranked[0].TeamNumber, ShouldEqual, 200)
			So(ranked[0].MeanScore, ShouldEqual, 30.5)
			So(ranked[1].TeamNumber, ShouldEqual, 100)
			So(ranked[2].Rank, ShouldEqual, 3)

			top, err := svc.Rankings(ctx, scoring.Filter{}, 1)
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 1)
		})

		Convey("Team returns stats and matches in match order", func() {
			detail, err := svc.Team(ctx, 200)
			So(err, ShouldBeNil)
			So(detail.MatchesPlayed, ShouldEqual, 2)
			So(detail.Wins, ShouldEqual, 1)
			So(detail.Matches[0].MatchNumber, ShouldEqual, 1)

			_, err = svc.Team(ctx, 9999)
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
		})

		Convey("Overview and Report summarize the data set", func() {
			ov, err := svc.Overview(ctx)
			So(err, ShouldBeNil)
			So(ov.TotalMatches, ShouldEqual, 4)
			So(ov.UniqueTeams, ShouldEqual, 3)

			rep, err := svc.Report(ctx, scoring.Filter{Base: scoring.BaseTeleop})
			So(err, ShouldBeNil)
			So(rep.Teams, ShouldHaveLength, 3)
			So(rep.Rankings[0].TeamNumber, ShouldEqual, 200)
		})

		Convey("Export writes CSV and XLSX and rejects other formats", func() {
			var buf bytes.Buffer
			So(svc.Export(ctx, &buf, service.FormatCSV), ShouldBeNil)
			rows, err := csv.NewReader(&buf).ReadAll()
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 5)
			So(rows[1][:2], ShouldResemble, []string{"1", "100"})

			buf.Reset()
			So(svc.Export(ctx, &buf, service.FormatXLSX), ShouldBeNil)
			f, err := excelize.OpenReader(&buf)
			So(err, ShouldBeNil)
			defer f.Close()
			xrows, err := f.GetRows("Scouting")
			So(err, ShouldBeNil)
			So(xrows, ShouldHaveLength, 5)

			So(errors.Is(svc.Export(ctx, &buf, "pdf"), service.ErrUnknownFormat), ShouldBeTrue)
		})
	})
}

func TestServiceImport(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running service", t, func() {
		svc := started(t, service.WithMaxImportItems(10))

		Convey("Each item is classified in input order", func() {
			results, err := svc.Import(ctx, []model.RawSubmission{
				compact(1, 254, 1, 1, 0, 0, ""),
				{"t": 254},
				compact(2, 254, 1, 1, 0, 0, ""),
			})
			So(err, ShouldBeNil)
			So(results, ShouldHaveLength, 3)
			So(results[0].Status, ShouldEqual, model.ImportCreated)
			So(results[1].Status, ShouldEqual, model.ImportInvalid)
			So(results[2].Status, ShouldEqual, model.ImportCreated)

			again, err := svc.Import(ctx, []model.RawSubmission{compact(1, 254, 9, 9, 0, 0, "")})
			So(err, ShouldBeNil)
			So(again[0].Status, ShouldEqual, model.ImportDuplicate)
		})

		Convey("Oversized batches are refused", func() {
			batch := make([]model.RawSubmission, 11)
			for i := range batch {
				batch[i] = compact(i+1, 1, 0, 0, 0, 0, "")
			}
			_, err := svc.Import(ctx, batch)
			So(errors.Is(err, service.ErrTooManyItems), ShouldBeTrue)
		})
	})

	Convey("Given a queue smaller than the batch", t, func() {
		svc := started(t, service.WithQueueSize(1), service.WithWorkerCount(1))
		batch := make([]model.RawSubmission, 50)
		for i := range batch {
			batch[i] = compact(i+1, 1, 0, 0, 0, 0, "")
		}

		results, err := svc.Import(ctx, batch)
		So(err, ShouldBeNil)

		counts := map[model.ImportStatus]int{}
		for _, r := range results {
			counts[r.Status]++
		}
		So(counts[model.ImportCreated]+counts[model.ImportBackpressure], ShouldEqual, 50)
		So(counts[model.ImportCreated], ShouldBeGreaterThan, 0)
	})
}

func TestServicePersistence(t *testing.T) {
	ctx := context.Background()

	Convey("Given a database file shared by two service runs", t, func() {
		path := filepath.Join(t.TempDir(), "event.db")

		first := service.New(service.WithDBPath(path), service.WithWorkerCount(1))
		So(first.Start(ctx), ShouldBeNil)
		for i := 1; i <= 3; i++ {
			_, err := first.Submit(ctx, compact(i, 254, 1, 1, 0, 0, ""))
			So(err, ShouldBeNil)
		}
		first.Stop()

		second := service.New(service.WithDBPath(path), service.WithWorkerCount(1))
		So(second.Start(ctx), ShouldBeNil)
		defer second.Stop()

		Convey("The second run sees the records and rejects their keys", func() {
			all, err := second.Matches(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 3)
			So(second.GetStats()["claims"], ShouldEqual, int64(3))

			_, err = second.Submit(ctx, compact(2, 254, 0, 0, 0, 0, ""))
			So(errors.Is(err, model.ErrDuplicate), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, fmt.Sprintf("%d/%d", 2, 254))
		})
	})
}

func TestServiceSharedDatabase(t *testing.T) {
	ctx := context.Background()

	Convey("Given two services on one database file", t, func() {
		path := filepath.Join(t.TempDir(), "shared.db")
		server := started(t, service.WithDBPath(path))
		operator := started(t, service.WithDBPath(path))
		key := model.NaturalKey{Match: 12, Team: 254}

		_, err := server.Submit(ctx, compact(12, 254, 3, 10, 0, 0, "Win"))
		So(err, ShouldBeNil)

		Convey("A record deleted by the other service can be submitted again", func() {
			_, err := operator.DeleteByKey(ctx, key)
			So(err, ShouldBeNil)

			all, err := server.Matches(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldBeEmpty)

			rec, err := server.Submit(ctx, compact(12, 254, 4, 11, 0, 0, "Win"))
			So(err, ShouldBeNil)
			So(rec.TeleopBalls, ShouldEqual, 11)

			Convey("And the stored pair is a duplicate again", func() {
				_, err := server.Submit(ctx, compact(12, 254, 0, 0, 0, 0, ""))
				So(errors.Is(err, model.ErrDuplicate), ShouldBeTrue)
			})
		})

		Convey("A record inserted by the other service is a duplicate without a local claim", func() {
			_, err := operator.Submit(ctx, compact(13, 254, 1, 1, 0, 0, ""))
			So(err, ShouldBeNil)
			_, err = server.Submit(ctx, compact(13, 254, 1, 1, 0, 0, ""))
			So(errors.Is(err, model.ErrDuplicate), ShouldBeTrue)
		})
	})
}
