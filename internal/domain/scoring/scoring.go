// Package scoring computes per-match point totals under a selectable filter.
package scoring

import (
	"github.com/okian/scout/internal/domain/model"
)

// Point values.
const (
	PointsPerBall     = 1
	PointsAutoClimb   = 15
	PointsEndgameL1   = 10
	PointsEndgameL2   = 20
	PointsEndgameL3   = 30
	PointsEndgameNone = 0
)

// AutoClimbPoints is the flat bonus for any autonomous climb.
func AutoClimbPoints(l model.ClimbLevel) int {
	if l == model.ClimbNone || !l.Valid() {
		return 0
	}
	return PointsAutoClimb
}

// EndgameClimbPoints grades the endgame climb by level.
func EndgameClimbPoints(l model.ClimbLevel) int {
	switch l {
	case model.ClimbLevel1:
		return PointsEndgameL1
	case model.ClimbLevel2:
		return PointsEndgameL2
	case model.ClimbLevel3:
		return PointsEndgameL3
	default:
		return PointsEndgameNone
	}
}

// ballPoints clamps n to [0, model.MaxBallCount] before scoring it.
func ballPoints(n int) int {
	return min(max(n, 0), model.MaxBallCount) * PointsPerBall
}

// Score returns rec's points under f. It is pure and never negative, even for
// records built outside normalization with out-of-range counts.
func Score(rec *model.MatchRecord, f Filter) int {
	autoBalls := ballPoints(rec.AutoBalls)
	teleBalls := ballPoints(rec.TeleopBalls)
	autoClimb := AutoClimbPoints(rec.AutoClimb)
	endClimb := EndgameClimbPoints(rec.EndgameClimb)

	switch f.Base {
	case BaseAutonomous:
		switch f.Sub {
		case SubBalls:
			return autoBalls
		case SubClimb:
			return autoClimb
		default:
			return autoBalls + autoClimb
		}
	case BaseTeleop:
		switch f.Sub {
		case SubBalls:
			return teleBalls
		case SubClimb:
			return endClimb
		default:
			return teleBalls + endClimb
		}
	case BaseClimb:
		switch f.Sub {
		case SubAuto:
			return autoClimb
		case SubTeleop:
			return endClimb
		default:
			return autoClimb + endClimb
		}
	case BaseShoot:
		switch f.Sub {
		case SubAuto:
			return autoBalls
		case SubTeleop:
			return teleBalls
		default:
			return autoBalls + teleBalls
		}
	default:
		return autoBalls + teleBalls + autoClimb + endClimb
	}
}
