package normalize

import "errors"

// Sentinel kinds for payload decoding errors.
var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrEmptyPayload     = errors.New("empty payload")
)
