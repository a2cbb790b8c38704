// Package simulator drives a running scouting server with synthetic match
// observations and checks that its rankings agree with a local computation
// over the records it accepted.
package simulator

import (
	"errors"
	"fmt"
	"time"
)

// RobotsPerMatch is the number of teams on the field in one match.
const RobotsPerMatch = 6

// Default configuration values.
const (
	DefaultBaseURL       = "http://localhost:9080"
	DefaultMatches       = 60
	DefaultTeams         = 36
	DefaultDuplicateRate = 0.05
	DefaultInvalidRate   = 0.02
	DefaultWorkers       = 8
	DefaultTimeout       = 10 * time.Second
	DefaultTopN          = 50

	// MaxTopN matches the server's default rankings cap.
	MaxTopN = 200
)

// ErrInvalidConfig is returned by Run when the configuration cannot produce a schedule.
var ErrInvalidConfig = errors.New("invalid simulator config")

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL       string        // Base URL of the service
	Matches       int           // Qualification matches to simulate
	Teams         int           // Distinct teams at the event
	DuplicateRate float64       // Share of observations submitted twice by different scouts
	InvalidRate   float64       // Share of observations sent without a scout name
	Seed          uint64        // Faker seed; equal seeds give equal payloads
	Workers       int           // Concurrent submitters
	Timeout       time.Duration // HTTP request timeout
	TopN          int           // Ranking rows fetched and compared
	OutputFile    string        // Optional JSON dump of the generated payloads
}

// DefaultConfig returns a configuration for a mid-sized regional event.
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		Matches:       DefaultMatches,
		Teams:         DefaultTeams,
		DuplicateRate: DefaultDuplicateRate,
		InvalidRate:   DefaultInvalidRate,
		Seed:          uint64(time.Now().UnixNano()),
		Workers:       DefaultWorkers,
		Timeout:       DefaultTimeout,
		TopN:          DefaultTopN,
	}
}

func (c Config) validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	case c.Matches < 1:
		return fmt.Errorf("%w: matches must be positive, got %d", ErrInvalidConfig, c.Matches)
	case c.Teams < RobotsPerMatch || c.Teams > maxTeamNumber:
		return fmt.Errorf("%w: teams must be within [%d,%d], got %d", ErrInvalidConfig, RobotsPerMatch, maxTeamNumber, c.Teams)
	case c.DuplicateRate < 0 || c.DuplicateRate > 1:
		return fmt.Errorf("%w: duplicate rate %.2f outside [0,1]", ErrInvalidConfig, c.DuplicateRate)
	case c.InvalidRate < 0 || c.InvalidRate > 1:
		return fmt.Errorf("%w: invalid rate %.2f outside [0,1]", ErrInvalidConfig, c.InvalidRate)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case c.TopN < 1 || c.TopN > MaxTopN:
		return fmt.Errorf("%w: top must be within [1,%d], got %d", ErrInvalidConfig, MaxTopN, c.TopN)
	}
	return nil
}

// Shape names the payload layout a capture device produced.
type Shape string

const (
	ShapeCompact  Shape = "compact"
	ShapeExpanded Shape = "expanded"
)

// Payload is one generated submission.
type Payload struct {
	Shape     Shape          `json:"shape"`
	Body      map[string]any `json:"body"`
	Duplicate bool           `json:"duplicate,omitempty"`
	Invalid   bool           `json:"invalid,omitempty"`
}

// Result is how the server answered one submission.
type Result string

const (
	ResultCreated   Result = "created"
	ResultDuplicate Result = "duplicate"
	ResultInvalid   Result = "invalid"
	ResultFailed    Result = "failed"
)

// Stats holds run statistics.
type Stats struct {
	Generated       int
	Compact         int
	Expanded        int
	Submitted       int
	Created         int
	Duplicates      int
	Invalid         int
	Failed          int
	Teams           int
	RankingsChecked int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
