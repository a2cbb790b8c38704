package model

import (
	"errors"
	"strings"
)

// Sentinel kinds for domain errors.
var (
	ErrValidation   = errors.New("validation failed")
	ErrDuplicate    = errors.New("duplicate match record")
	ErrNotFound     = errors.New("not found")
	ErrUnknownClimb = errors.New("unknown climb level")
)

// ValidationError reports required submission fields that were absent or unusable.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Is lets callers match any ValidationError with errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DuplicateError reports that a record with the same natural key already exists.
// It matches ErrDuplicate under errors.Is.
type DuplicateError struct {
	Key NaturalKey
}

func (e *DuplicateError) Error() string {
	return "duplicate entry for match/team " + e.Key.String()
}

// Is lets callers match any DuplicateError with errors.Is(err, ErrDuplicate).
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}
