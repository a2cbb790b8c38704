package simulator

import (
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/okian/scout/internal/domain/model"
)

const (
	maxTeamNumber   = 9999
	maxAutoBalls    = 6
	ballsPerSkill   = 3
	maxSkill        = 10
	matchCycle      = 8 * time.Minute
	tieChance       = 0.05
	scoutPoolSize   = 12
	noteWordsChance = 0.3
)

// Generator builds a seeded event schedule and the observations scouts would
// submit for it.
type Generator struct {
	faker *gofakeit.Faker
	seed  uint64
	start time.Time
}

// NewGenerator creates a generator. Equal seeds produce equal payloads.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		faker: gofakeit.New(seed),
		seed:  seed,
		start: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
	}
}

// Seed returns the seed the generator was built with.
func (g *Generator) Seed() uint64 { return g.seed }

type team struct {
	number int
	skill  int
}

// Generate returns the payloads for cfg.Matches matches. Duplicates are a
// second scout's copy of an observation and directly follow the original.
func (g *Generator) Generate(cfg Config) []Payload {
	teams := g.teams(cfg.Teams)
	scouts := g.scouts()
	payloads := make([]Payload, 0, cfg.Matches*RobotsPerMatch)

	order := make([]int, len(teams))
	for i := range order {
		order[i] = i
	}

	for match := 1; match <= cfg.Matches; match++ {
		g.faker.ShuffleInts(order)
		red, blue := g.allianceOutcomes()
		at := g.start.Add(time.Duration(match) * matchCycle)

		for slot := 0; slot < RobotsPerMatch; slot++ {
			outcome := red
			if slot >= RobotsPerMatch/2 {
				outcome = blue
			}
			t := teams[order[slot]]
			obs := g.observation(match, t, scouts[g.faker.Number(0, len(scouts)-1)], outcome, at)

			shape := ShapeCompact
			if g.faker.Bool() {
				shape = ShapeExpanded
			}

			if g.faker.Float64Range(0, 1) < cfg.InvalidRate {
				obs.ScoutName = ""
				payloads = append(payloads, Payload{Shape: shape, Body: encode(obs, shape), Invalid: true})
				continue
			}
			payloads = append(payloads, Payload{Shape: shape, Body: encode(obs, shape)})

			if g.faker.Float64Range(0, 1) < cfg.DuplicateRate {
				dup := obs
				dup.ScoutName = g.faker.FirstName()
				payloads = append(payloads, Payload{Shape: shape, Body: encode(dup, shape), Duplicate: true})
			}
		}
	}
	return payloads
}

// teams draws n distinct team numbers, each with a hidden skill that scales
// its ball counts so rankings have a spread.
func (g *Generator) teams(n int) []team {
	seen := make(map[int]struct{}, n)
	out := make([]team, 0, n)
	for len(out) < n {
		num := g.faker.Number(1, maxTeamNumber)
		if _, ok := seen[num]; ok {
			continue
		}
		seen[num] = struct{}{}
		out = append(out, team{number: num, skill: g.faker.Number(1, maxSkill)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].number < out[j].number })
	return out
}

func (g *Generator) scouts() []string {
	out := make([]string, scoutPoolSize)
	for i := range out {
		out[i] = g.faker.FirstName()
	}
	return out
}

func (g *Generator) allianceOutcomes() (red, blue string) {
	if g.faker.Float64Range(0, 1) < tieChance {
		return "Tie", "Tie"
	}
	if g.faker.Bool() {
		return "Win", "Loss"
	}
	return "Loss", "Win"
}

func (g *Generator) observation(match int, t team, scout, outcome string, at time.Time) model.MatchRecord {
	rec := model.MatchRecord{
		MatchNumber:  match,
		TeamNumber:   t.number,
		ScoutName:    scout,
		AutoBalls:    g.faker.Number(0, maxAutoBalls),
		AutoClimb:    model.ClimbLevel(g.faker.Number(0, 1)),
		TeleopBalls:  g.faker.Number(0, ballsPerSkill*t.skill),
		EndgameClimb: model.ClimbLevel(g.faker.Number(0, min(3, 1+t.skill/3))),
		MatchOutcome: outcome,
		RobotBroke:   g.faker.Number(1, maxSkill) > t.skill+6,
		Timestamp:    at,
	}
	// A broken robot does not defend.
	rec.PlayedDefense = !rec.RobotBroke && g.faker.Number(1, maxSkill) <= 3
	if g.faker.Float64Range(0, 1) < noteWordsChance {
		rec.Notes = g.faker.Word() + " " + g.faker.Word()
	}
	return rec
}

// encode lays an observation out the way the capture UI would: the compact
// QR keys with numeric flags, or the nested expanded object.
func encode(r model.MatchRecord, shape Shape) map[string]any {
	if shape == ShapeCompact {
		body := map[string]any{
			"m":  r.MatchNumber,
			"t":  r.TeamNumber,
			"s":  r.ScoutName,
			"ab": r.AutoBalls,
			"ac": int(r.AutoClimb),
			"tb": r.TeleopBalls,
			"ec": int(r.EndgameClimb),
			"o":  r.MatchOutcome,
			"df": boolFlag(r.PlayedDefense),
			"br": boolFlag(r.RobotBroke),
			"ts": r.Timestamp.UnixMilli(),
		}
		if r.Notes != "" {
			body["n"] = r.Notes
		}
		return body
	}
	return map[string]any{
		"matchNumber": r.MatchNumber,
		"teamNumber":  r.TeamNumber,
		"scoutName":   r.ScoutName,
		"autonomous": map[string]any{
			"ballsScored": r.AutoBalls,
			"climbLevel":  r.AutoClimb.String(),
		},
		"teleop":       map[string]any{"ballsScored": r.TeleopBalls},
		"endgame":      map[string]any{"climbLevel": r.EndgameClimb.String()},
		"matchOutcome": r.MatchOutcome,
		"robotStatus": map[string]any{
			"playedDefense": r.PlayedDefense,
			"robotBroke":    r.RobotBroke,
		},
		"notes":     r.Notes,
		"timestamp": r.Timestamp.Format(time.RFC3339),
	}
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}
