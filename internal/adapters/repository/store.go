// Package repository persists match records.
package repository

import (
	"context"

	"github.com/okian/scout/internal/domain/model"
)

// MatchStore provides durable access to match records keyed by
// (match number, team number).
type MatchStore interface {
	// Insert stores rec, assigning its ID and CreatedAt. A record with the same
	// natural key already present yields a *model.DuplicateError and leaves
	// the store unchanged. Concurrent inserts of one key admit exactly one.
	Insert(ctx context.Context, rec *model.MatchRecord) error

	// Get returns the record with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (model.MatchRecord, error)

	// Delete removes the record with the given id and returns it.
	// Returns ErrNotFound if no such record exists.
	Delete(ctx context.Context, id string) (model.MatchRecord, error)

	// DeleteByKey removes the record with the given natural key and returns it.
	DeleteByKey(ctx context.Context, key model.NaturalKey) (model.MatchRecord, error)

	// List returns a snapshot of all records ordered by match then team.
	List(ctx context.Context) ([]model.MatchRecord, error)

	// ListByTeam returns one team's records ordered by match.
	ListByTeam(ctx context.Context, team int) ([]model.MatchRecord, error)

	// Exists reports whether a record with the given natural key is stored.
	Exists(ctx context.Context, key model.NaturalKey) (bool, error)

	// Keys returns the natural keys of all stored records.
	Keys(ctx context.Context) ([]model.NaturalKey, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	Close() error
}
