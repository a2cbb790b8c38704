package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrUnknownBase = errors.New("unknown score base")
)
