// Package normalize turns raw scouting payloads into canonical match records.
//
// Both payload shapes produced by the capture UI are accepted: the compact QR
// keys (m, t, s, ab, ac, tb, ec, o, df, br, n) and the expanded nested object
// (matchNumber, autonomous.ballsScored, robotStatus.playedDefense, ...).
// Only the identifiers are strict; every other field degrades to a default.
package normalize

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/scout/internal/domain/model"
)

const defaultOutcome = "Unknown"

// Source paths per field, compact key first. Flat aliases come from the
// older JSON-blob capture format.
var (
	matchPaths    = []string{"m", "matchNumber", "match"}
	teamPaths     = []string{"t", "teamNumber", "team"}
	scoutPaths    = []string{"s", "scoutName", "scout"}
	autoBallPaths = []string{"ab", "autonomous.ballsScored", "autoBalls"}
	autoClimbPath = []string{"ac", "autonomous.climbLevel", "autoClimb"}
	teleBallPaths = []string{"tb", "teleop.ballsScored", "teleopBalls", "teleBalls"}
	endClimbPaths = []string{"ec", "endgame.climbLevel", "endgameClimb", "endClimb"}
	outcomePaths  = []string{"o", "matchOutcome", "outcome"}
	defensePaths  = []string{"df", "robotStatus.playedDefense", "playedDefense", "defense"}
	brokePaths    = []string{"br", "robotStatus.robotBroke", "robotBroke", "broken"}
	notesPaths    = []string{"n", "notes"}
	timePaths     = []string{"ts", "timestamp"}
)

// identity holds the fields a submission cannot do without.
type identity struct {
	MatchNumber int    `json:"matchNumber" validate:"required,min=1"`
	TeamNumber  int    `json:"teamNumber" validate:"required,min=1"`
	ScoutName   string `json:"scoutName" validate:"required"`
}

// Normalizer converts RawSubmissions to MatchRecords. It is safe for
// concurrent use.
type Normalizer struct {
	validate *validator.Validate
	now      func() time.Time
}

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithClock sets the time source used when a payload carries no usable timestamp.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	n := &Normalizer{validate: v, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

var defaultNormalizer = sync.OnceValue(func() *Normalizer { return New() })

// Normalize converts raw with a shared default Normalizer.
func Normalize(raw model.RawSubmission) (model.MatchRecord, error) {
	return defaultNormalizer().Normalize(raw)
}

// Normalize validates the identifiers of raw and parses every other field
// leniently. A *model.ValidationError names each missing or unusable identifier.
func (n *Normalizer) Normalize(raw model.RawSubmission) (model.MatchRecord, error) {
	id, err := n.identify(raw)
	if err != nil {
		return model.MatchRecord{}, err
	}

	rec := model.MatchRecord{
		MatchNumber:   id.MatchNumber,
		TeamNumber:    id.TeamNumber,
		ScoutName:     id.ScoutName,
		AutoBalls:     ParseCount(lookup(raw, autoBallPaths)),
		AutoClimb:     ParseClimb(lookup(raw, autoClimbPath)),
		TeleopBalls:   ParseCount(lookup(raw, teleBallPaths)),
		EndgameClimb:  ParseClimb(lookup(raw, endClimbPaths)),
		PlayedDefense: ParseBool(lookup(raw, defensePaths)),
		RobotBroke:    ParseBool(lookup(raw, brokePaths)),
		Notes:         strings.TrimSpace(stringValue(lookup(raw, notesPaths))),
	}
	rec.MatchOutcome, rec.OutcomeKey = ParseOutcome(lookup(raw, outcomePaths))

	ts, ok := parseTimestamp(lookup(raw, timePaths))
	if !ok {
		ts = n.now().UTC()
	}
	rec.Timestamp = ts

	return rec, nil
}

func (n *Normalizer) identify(raw model.RawSubmission) (identity, error) {
	var id identity
	if v, ok := raw.Lookup(matchPaths...); ok {
		id.MatchNumber, _ = toInt(v)
	}
	if v, ok := raw.Lookup(teamPaths...); ok {
		id.TeamNumber, _ = toInt(v)
	}
	if v, ok := raw.Lookup(scoutPaths...); ok {
		id.ScoutName = strings.TrimSpace(stringValue(v))
	}

	err := n.validate.Struct(id)
	if err == nil {
		return id, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return identity{}, err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return identity{}, &model.ValidationError{Fields: fields}
}

func lookup(raw model.RawSubmission, paths []string) any {
	v, _ := raw.Lookup(paths...)
	return v
}
