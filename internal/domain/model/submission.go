package model

import (
	"errors"
	"strings"
)

// RawSubmission is a decoded scouting payload before normalization. It holds
// either the compact QR shape ({"m":12,"t":254,...}) or the expanded nested
// shape ({"matchNumber":12,"autonomous":{"ballsScored":3},...}).
type RawSubmission map[string]any

// Lookup returns the first present, non-null value among the given paths.
// A path addresses nested objects with dots, e.g. "autonomous.ballsScored".
func (r RawSubmission) Lookup(paths ...string) (any, bool) {
	for _, p := range paths {
		if v, ok := lookupPath(r, p); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func lookupPath(m map[string]any, path string) (any, bool) {
	head, rest, nested := strings.Cut(path, ".")
	v, ok := m[head]
	if !ok {
		return nil, false
	}
	if !nested {
		return v, true
	}
	child, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return lookupPath(child, rest)
}

// ImportStatus is the per-item outcome of a bulk import.
type ImportStatus string

const (
	ImportCreated      ImportStatus = "created"
	ImportDuplicate    ImportStatus = "duplicate"
	ImportInvalid      ImportStatus = "invalid"
	ImportFailed       ImportStatus = "failed"
	ImportBackpressure ImportStatus = "backpressure"
)

// ImportJob is one payload of a bulk import travelling through the import queue.
type ImportJob struct {
	Index int
	Raw   RawSubmission
	Reply chan<- ImportResult
}

// ImportResult reports what happened to the payload at Index.
type ImportResult struct {
	Index  int          `json:"index"`
	Status ImportStatus `json:"status"`
	Record *MatchRecord `json:"record,omitempty"`
	Err    error        `json:"-"`
	Error  string       `json:"error,omitempty"`
}

// NewImportResult classifies the outcome of storing the payload at index.
// rec is only kept when err is nil.
func NewImportResult(index int, rec *MatchRecord, err error) ImportResult {
	res := ImportResult{Index: index}
	switch {
	case err == nil:
		res.Status, res.Record = ImportCreated, rec
		return res
	case errors.Is(err, ErrDuplicate):
		res.Status = ImportDuplicate
	case errors.Is(err, ErrValidation):
		res.Status = ImportInvalid
	default:
		res.Status = ImportFailed
	}
	res.Err, res.Error = err, err.Error()
	return res
}
