package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrTooManyItems  = errors.New("too many import items")
	ErrUnknownFormat = errors.New("unknown export format")
	ErrStopped       = errors.New("service stopped")
)
