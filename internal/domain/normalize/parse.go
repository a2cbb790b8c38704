package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"fortio.org/safecast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/okian/scout/internal/domain/model"
)

const (
	// Epoch values above this are taken as milliseconds (browser Date.now()).
	epochMillisThreshold = 1e12
	// 9999-12-31T23:59:59.999Z in milliseconds.
	maxEpochMillis = 253402300799999
)

// ParseClimb maps a free-text, numeric or boolean climb indicator to a level.
// Digits win over keywords and are checked from the highest level down, so any
// text containing "3" is Level 3. "yes"/"true" and boolean true mean Level 1.
// Everything else, including nil, NaN and "", is None.
func ParseClimb(v any) model.ClimbLevel {
	var text string
	switch x := v.(type) {
	case nil:
		return model.ClimbNone
	case bool:
		if x {
			return model.ClimbLevel1
		}
		return model.ClimbNone
	case string:
		text = x
	case json.Number:
		text = x.String()
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return model.ClimbNone
		}
		text = strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		text = strconv.Itoa(x)
	case int64:
		text = strconv.FormatInt(x, 10)
	default:
		return model.ClimbNone
	}

	text = strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.Contains(text, "3"):
		return model.ClimbLevel3
	case strings.Contains(text, "2"):
		return model.ClimbLevel2
	case strings.Contains(text, "1"):
		return model.ClimbLevel1
	case text == "yes" || text == "true":
		return model.ClimbLevel1
	default:
		return model.ClimbNone
	}
}

// ParseCount coerces a ball count. Anything unparseable, negative or above
// model.MaxBallCount is 0.
func ParseCount(v any) int {
	n, ok := toInt(v)
	if !ok || n < 0 || n > model.MaxBallCount {
		return 0
	}
	return n
}

// ParseBool reads 0/1 flags, JSON booleans and yes/no style strings.
func ParseBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "yes", "y", "on":
			return true
		}
		return false
	default:
		n, ok := toInt(v)
		return ok && n != 0
	}
}

// ParseOutcome returns the outcome for display and its canonical lowercase,
// trimmed form used for classification.
func ParseOutcome(v any) (display, canonical string) {
	display = stringValue(v)
	if strings.TrimSpace(display) == "" {
		display = defaultOutcome
	}
	canonical = cases.Lower(language.Und).String(strings.TrimSpace(display))
	return display, canonical
}

// parseTimestamp accepts RFC 3339 strings and epoch seconds or milliseconds.
// Epoch values past the year 9999 are rejected.
func parseTimestamp(v any) (time.Time, bool) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false
	case json.Number, float64, int, int64:
		f, ok := toFloat(x)
		if !ok || f <= 0 || f > maxEpochMillis {
			return time.Time{}, false
		}
		if f > epochMillisThreshold {
			return time.UnixMilli(int64(f)).UTC(), true
		}
		return time.Unix(int64(f), 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

// toInt converts JSON-ish numbers and numeric strings to int, truncating
// fractions. It fails on NaN, infinities and values outside the int range.
func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return 0, false
	}
	n, err := safecast.Conv[int](int64(t))
	if err != nil {
		return 0, false
	}
	return n, true
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return float64(i), true
		}
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func stringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
