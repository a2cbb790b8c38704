package scoring

import (
	"fmt"
	"strings"
)

// Base selects the score category.
type Base int

const (
	BaseAll Base = iota
	BaseAutonomous
	BaseTeleop
	BaseClimb
	BaseShoot
)

var baseNames = map[Base]string{
	BaseAll:        "All",
	BaseAutonomous: "Autonomous",
	BaseTeleop:     "Teleop",
	BaseClimb:      "Climb",
	BaseShoot:      "Shoot",
}

func (b Base) String() string {
	if s, ok := baseNames[b]; ok {
		return s
	}
	return "All"
}

// Sub narrows a Base to one component. SubNone sums every component of the base.
type Sub int

const (
	SubNone Sub = iota
	SubBalls
	SubClimb
	SubAuto
	SubTeleop
)

var subNames = map[Sub]string{
	SubNone:   "",
	SubBalls:  "Balls",
	SubClimb:  "Climb",
	SubAuto:   "Auto",
	SubTeleop: "Teleop",
}

func (s Sub) String() string {
	return subNames[s]
}

// Filter is a (Base, Sub) pair. The zero value scores everything.
type Filter struct {
	Base Base
	Sub  Sub
}

// String renders the filter as "Base" or "Base/Sub".
func (f Filter) String() string {
	if f.Sub == SubNone {
		return f.Base.String()
	}
	return f.Base.String() + "/" + f.Sub.String()
}

// allowedSubs lists the subs each base understands. Anything else resolves to SubNone.
var allowedSubs = map[Base][]Sub{
	BaseAutonomous: {SubBalls, SubClimb},
	BaseTeleop:     {SubBalls, SubClimb},
	BaseClimb:      {SubAuto, SubTeleop},
	BaseShoot:      {SubAuto, SubTeleop},
}

// ParseFilter resolves query strings to a Filter, case-insensitively. An empty
// base means All. An unknown base is an error; an unknown or inapplicable sub
// falls back to SubNone.
func ParseFilter(base, sub string) (Filter, error) {
	b, err := ParseBase(base)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Base: b, Sub: resolveSub(b, sub)}, nil
}

// ParseBase resolves a base name. Empty means All.
func ParseBase(s string) (Base, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BaseAll, nil
	}
	for b, name := range baseNames {
		if strings.EqualFold(name, s) {
			return b, nil
		}
	}
	if strings.EqualFold(s, "auto") {
		return BaseAutonomous, nil
	}
	return BaseAll, fmt.Errorf("%w: %q", ErrUnknownBase, s)
}

func resolveSub(b Base, s string) Sub {
	s = strings.TrimSpace(s)
	for _, sub := range allowedSubs[b] {
		if strings.EqualFold(sub.String(), s) {
			return sub
		}
	}
	return SubNone
}
