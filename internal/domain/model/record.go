// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClimbLevel is the graded climb a robot achieved in a match period.
type ClimbLevel int

// Climb levels. The zero value is ClimbNone.
const (
	ClimbNone ClimbLevel = iota
	ClimbLevel1
	ClimbLevel2
	ClimbLevel3
)

// ClimbLevels lists every level in ascending order.
var ClimbLevels = []ClimbLevel{ClimbNone, ClimbLevel1, ClimbLevel2, ClimbLevel3}

// String returns the display form used in exports and team views.
func (c ClimbLevel) String() string {
	switch c {
	case ClimbLevel1:
		return "Level 1"
	case ClimbLevel2:
		return "Level 2"
	case ClimbLevel3:
		return "Level 3"
	default:
		return "None"
	}
}

// MarshalText encodes the level as its display form.
func (c ClimbLevel) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts only the display forms produced by MarshalText.
// Lenient parsing of scout input lives in the normalize package.
func (c *ClimbLevel) UnmarshalText(b []byte) error {
	for _, l := range ClimbLevels {
		if l.String() == string(b) {
			*c = l
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownClimb, string(b))
}

// Valid reports whether c is one of the four known levels.
func (c ClimbLevel) Valid() bool {
	return c >= ClimbNone && c <= ClimbLevel3
}

// Outcome classifies a match result from the scout's point of view.
type Outcome int

const (
	OutcomeUnclassified Outcome = iota
	OutcomeWin
	OutcomeLoss
)

// String returns a lowercase label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	default:
		return "unclassified"
	}
}

// ClassifyOutcome maps a canonical (lowercase, trimmed) outcome string to an Outcome.
func ClassifyOutcome(canonical string) Outcome {
	switch {
	case strings.HasPrefix(canonical, "w"):
		return OutcomeWin
	case strings.HasPrefix(canonical, "l"):
		return OutcomeLoss
	default:
		return OutcomeUnclassified
	}
}

// NaturalKey identifies one observation: a team in a match.
type NaturalKey struct {
	Match int
	Team  int
}

// String renders the key as "match/team".
func (k NaturalKey) String() string {
	return strconv.Itoa(k.Match) + "/" + strconv.Itoa(k.Team)
}

// MaxBallCount bounds a per-period ball count. No robot scores this many in
// a match, and sums of bounded counts cannot overflow.
const MaxBallCount = 10_000

// MatchRecord is one scouted observation of a team in a match.
type MatchRecord struct {
	ID        string    `json:"id,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`

	MatchNumber int    `json:"matchNumber"`
	TeamNumber  int    `json:"teamNumber"`
	ScoutName   string `json:"scoutName"`

	AutoBalls    int        `json:"autoBalls"`
	AutoClimb    ClimbLevel `json:"autoClimb"`
	TeleopBalls  int        `json:"teleopBalls"`
	EndgameClimb ClimbLevel `json:"endgameClimb"`

	// MatchOutcome is the outcome as the scout typed it; OutcomeKey is its
	// lowercase trimmed form used for classification.
	MatchOutcome string `json:"matchOutcome"`
	OutcomeKey   string `json:"-"`

	PlayedDefense bool      `json:"playedDefense"`
	RobotBroke    bool      `json:"robotBroke"`
	Notes         string    `json:"notes"`
	Timestamp     time.Time `json:"timestamp"`
}

// Key returns the record's natural key.
func (r *MatchRecord) Key() NaturalKey {
	return NaturalKey{Match: r.MatchNumber, Team: r.TeamNumber}
}

// Result classifies the record's outcome.
func (r *MatchRecord) Result() Outcome {
	return ClassifyOutcome(r.OutcomeKey)
}
