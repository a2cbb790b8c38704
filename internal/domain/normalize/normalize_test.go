package normalize_test

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func mustDecode(s string) model.RawSubmission {
	raw, err := normalize.Decode(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return raw
}

func TestParseClimb(t *testing.T) {
	Convey("Given climb indicators", t, func() {
		Convey("Then any text containing 3 is Level 3", func() {
			for _, s := range []string{"3", "Level 3", "L3 (tried 1)", "123", "level 2 or 3"} {
				So(normalize.ParseClimb(s), ShouldEqual, model.ClimbLevel3)
			}
		})

		Convey("Then 2 outranks 1", func() {
			So(normalize.ParseClimb("Level 2"), ShouldEqual, model.ClimbLevel2)
			So(normalize.ParseClimb("1 then 2"), ShouldEqual, model.ClimbLevel2)
			So(normalize.ParseClimb("Level 1"), ShouldEqual, model.ClimbLevel1)
		})

		Convey("Then keywords and booleans mean Level 1", func() {
			So(normalize.ParseClimb("yes"), ShouldEqual, model.ClimbLevel1)
			So(normalize.ParseClimb(" TRUE "), ShouldEqual, model.ClimbLevel1)
			So(normalize.ParseClimb(true), ShouldEqual, model.ClimbLevel1)
			So(normalize.ParseClimb(false), ShouldEqual, model.ClimbNone)
			So(normalize.ParseClimb("false"), ShouldEqual, model.ClimbNone)
		})

		Convey("Then numbers are read as text", func() {
			So(normalize.ParseClimb(json.Number("2")), ShouldEqual, model.ClimbLevel2)
			So(normalize.ParseClimb(3.0), ShouldEqual, model.ClimbLevel3)
			So(normalize.ParseClimb(0), ShouldEqual, model.ClimbNone)
		})

		Convey("Then empty and unparseable input is None", func() {
			So(normalize.ParseClimb(""), ShouldEqual, model.ClimbNone)
			So(normalize.ParseClimb("NaN"), ShouldEqual, model.ClimbNone)
			So(normalize.ParseClimb(math.NaN()), ShouldEqual, model.ClimbNone)
			So(normalize.ParseClimb(nil), ShouldEqual, model.ClimbNone)
			So(normalize.ParseClimb("None"), ShouldEqual, model.ClimbNone)
			So(normalize.ParseClimb([]any{3}), ShouldEqual, model.ClimbNone)
		})
	})
}

func TestParseCount(t *testing.T) {
	Convey("Given ball count inputs", t, func() {
		So(normalize.ParseCount(json.Number("7")), ShouldEqual, 7)
		So(normalize.ParseCount("12"), ShouldEqual, 12)
		So(normalize.ParseCount(" 4 "), ShouldEqual, 4)
		So(normalize.ParseCount(3.9), ShouldEqual, 3)
		So(normalize.ParseCount("abc"), ShouldEqual, 0)
		So(normalize.ParseCount(""), ShouldEqual, 0)
		So(normalize.ParseCount(nil), ShouldEqual, 0)
		So(normalize.ParseCount(-5), ShouldEqual, 0)
		So(normalize.ParseCount("NaN"), ShouldEqual, 0)
		So(normalize.ParseCount(math.Inf(1)), ShouldEqual, 0)
		So(normalize.ParseCount(1e300), ShouldEqual, 0)
		So(normalize.ParseCount(model.MaxBallCount), ShouldEqual, model.MaxBallCount)
		So(normalize.ParseCount(model.MaxBallCount+1), ShouldEqual, 0)
		So(normalize.ParseCount(json.Number("9000000000000000000")), ShouldEqual, 0)
	})
}

func TestParseBoolAndOutcome(t *testing.T) {
	Convey("Given flag inputs", t, func() {
		So(normalize.ParseBool(json.Number("1")), ShouldBeTrue)
		So(normalize.ParseBool(json.Number("0")), ShouldBeFalse)
		So(normalize.ParseBool(true), ShouldBeTrue)
		So(normalize.ParseBool("Yes"), ShouldBeTrue)
		So(normalize.ParseBool("no"), ShouldBeFalse)
		So(normalize.ParseBool(nil), ShouldBeFalse)
	})

	Convey("Given outcome inputs", t, func() {
		display, canonical := normalize.ParseOutcome("  Won ")
		So(display, ShouldEqual, "  Won ")
		So(canonical, ShouldEqual, "won")
		So(model.ClassifyOutcome(canonical), ShouldEqual, model.OutcomeWin)

		display, canonical = normalize.ParseOutcome(nil)
		So(display, ShouldEqual, "Unknown")
		So(model.ClassifyOutcome(canonical), ShouldEqual, model.OutcomeUnclassified)
	})
}

func TestNormalize(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	n := normalize.New(normalize.WithClock(func() time.Time { return fixed }))

	Convey("Given an expanded nested payload", t, func() {
		raw := mustDecode(`{
			"matchNumber": 12, "teamNumber": 254, "scoutName": " Ada ",
			"autonomous": {"ballsScored": 3, "climbLevel": "None"},
			"teleop": {"ballsScored": "5"},
			"endgame": {"climbLevel": "Level 2"},
			"matchOutcome": "Won",
			"robotStatus": {"playedDefense": true, "robotBroke": false},
			"notes": "quick, \"clean\" cycles",
			"timestamp": "2026-03-14T08:30:00.000Z"
		}`)

		rec, err := n.Normalize(raw)

		Convey("Then every field is canonical", func() {
			So(err, ShouldBeNil)
			So(rec.MatchNumber, ShouldEqual, 12)
			So(rec.TeamNumber, ShouldEqual, 254)
			So(rec.ScoutName, ShouldEqual, "Ada")
			So(rec.AutoBalls, ShouldEqual, 3)
			So(rec.AutoClimb, ShouldEqual, model.ClimbNone)
			So(rec.TeleopBalls, ShouldEqual, 5)
			So(rec.EndgameClimb, ShouldEqual, model.ClimbLevel2)
			So(rec.MatchOutcome, ShouldEqual, "Won")
			So(rec.OutcomeKey, ShouldEqual, "won")
			So(rec.PlayedDefense, ShouldBeTrue)
			So(rec.RobotBroke, ShouldBeFalse)
			So(rec.Notes, ShouldEqual, `quick, "clean" cycles`)
			So(rec.Timestamp, ShouldEqual, time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC))
		})
	})

	Convey("Given a compact QR payload", t, func() {
		raw := mustDecode(`{"m":7,"t":1678,"s":"Lin","ab":2,"ac":"Level 1","tb":9,"ec":"3","o":"Lost","df":1,"br":0,"n":""}`)

		rec, err := n.Normalize(raw)

		Convey("Then the compact keys map onto the same record", func() {
			So(err, ShouldBeNil)
			So(rec.Key(), ShouldResemble, model.NaturalKey{Match: 7, Team: 1678})
			So(rec.AutoBalls, ShouldEqual, 2)
			So(rec.AutoClimb, ShouldEqual, model.ClimbLevel1)
			So(rec.TeleopBalls, ShouldEqual, 9)
			So(rec.EndgameClimb, ShouldEqual, model.ClimbLevel3)
			So(rec.Result(), ShouldEqual, model.OutcomeLoss)
			So(rec.PlayedDefense, ShouldBeTrue)
			So(rec.RobotBroke, ShouldBeFalse)
		})

		Convey("Then a missing timestamp falls back to the clock", func() {
			So(rec.Timestamp, ShouldEqual, fixed)
		})
	})

	Convey("Given lenient field values", t, func() {
		raw := mustDecode(`{"m":"3","t":"118","s":"Kai","ab":"lots","tb":-2,"ec":true,"timestamp":1773477000000}`)

		rec, err := n.Normalize(raw)

		Convey("Then bad counts become zero instead of failing", func() {
			So(err, ShouldBeNil)
			So(rec.MatchNumber, ShouldEqual, 3)
			So(rec.AutoBalls, ShouldEqual, 0)
			So(rec.TeleopBalls, ShouldEqual, 0)
			So(rec.EndgameClimb, ShouldEqual, model.ClimbLevel1)
			So(rec.Timestamp, ShouldEqual, time.UnixMilli(1773477000000).UTC())
		})
	})

	Convey("Given extreme numeric values", t, func() {
		raw := mustDecode(`{"m":1,"t":100,"s":"x","ab":9000000000000000000,"tb":9000000000000000000,"ts":1e300}`)

		rec, err := n.Normalize(raw)

		Convey("Then counts fall back to zero and the timestamp to the clock", func() {
			So(err, ShouldBeNil)
			So(rec.AutoBalls, ShouldEqual, 0)
			So(rec.TeleopBalls, ShouldEqual, 0)
			So(rec.Timestamp, ShouldEqual, fixed)
		})
	})

	Convey("Given payloads missing identifiers", t, func() {
		Convey("When everything required is absent", func() {
			_, err := n.Normalize(mustDecode(`{"ab":3}`))

			Convey("Then a ValidationError names all three fields", func() {
				var verr *model.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Fields, ShouldResemble, []string{"matchNumber", "teamNumber", "scoutName"})
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When the scout name is blank and the team is not a number", func() {
			_, err := n.Normalize(mustDecode(`{"m":1,"t":"abc","s":"   "}`))

			Convey("Then only those fields are reported", func() {
				var verr *model.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Fields, ShouldResemble, []string{"teamNumber", "scoutName"})
			})
		})

		Convey("When the match number is negative", func() {
			_, err := n.Normalize(mustDecode(`{"m":-4,"t":254,"s":"Ada"}`))
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})
	})

	Convey("Given the package level helper", t, func() {
		rec, err := normalize.Normalize(mustDecode(`{"m":1,"t":2,"s":"x"}`))
		So(err, ShouldBeNil)
		So(rec.MatchOutcome, ShouldEqual, "Unknown")
		So(rec.Timestamp.IsZero(), ShouldBeFalse)
	})
}

func TestDecode(t *testing.T) {
	Convey("Given raw payload bytes", t, func() {
		Convey("When the body is empty", func() {
			_, err := normalize.Decode(strings.NewReader(""))
			So(errors.Is(err, normalize.ErrEmptyPayload), ShouldBeTrue)
		})

		Convey("When the body is not an object", func() {
			_, err := normalize.Decode(strings.NewReader(`[1,2]`))
			So(errors.Is(err, normalize.ErrMalformedPayload), ShouldBeTrue)
		})

		Convey("When the body is null", func() {
			_, err := normalize.Decode(strings.NewReader(`null`))
			So(errors.Is(err, normalize.ErrEmptyPayload), ShouldBeTrue)
		})
	})

	Convey("Given a batch mixing objects and QR strings", t, func() {
		body := `[{"m":1,"t":2,"s":"a"}, "{\"m\":3,\"t\":4,\"s\":\"b\"}"]`
		items, err := normalize.DecodeBatch(strings.NewReader(body))

		Convey("Then both decode", func() {
			So(err, ShouldBeNil)
			So(items, ShouldHaveLength, 2)
			So(items[1]["m"], ShouldEqual, json.Number("3"))
		})

		Convey("When an element is broken", func() {
			_, err := normalize.DecodeBatch(strings.NewReader(`[{"m":1}, "not json"]`))
			So(errors.Is(err, normalize.ErrMalformedPayload), ShouldBeTrue)
			So(err.Error(), ShouldStartWith, "item 1:")
		})
	})
}
