package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const defaultBusyTimeout = 5 * time.Second

const selectColumns = `id, match_number, team_number, scout_name,
	auto_balls, auto_climb, teleop_balls, endgame_climb,
	match_outcome, outcome_key, played_defense, robot_broke,
	notes, timestamp, created_at`

// SQLiteStore implements MatchStore on a single SQLite database file.
//
// The pool holds one connection, so statements run one at a time. That is
// what makes the duplicate check and the insert atomic per key, and it keeps
// a ":memory:" database alive for the lifetime of the store.
type SQLiteStore struct {
	db          *sql.DB
	now         func() time.Time
	newID       func() string
	busyTimeout time.Duration
	logger      logger.Logger
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		now:         time.Now,
		newID:       uuid.NewString,
		busyTimeout: defaultBusyTimeout,
		logger:      logger.Get().Named("store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite", s.dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}
	s.db = db

	s.logger.Info(ctx, "match store opened", logger.String("path", path))
	return s, nil
}

func (s *SQLiteStore) dsn(path string) string {
	name := "file:" + path
	if path == MemoryPath || path == "" {
		name = "file::memory:"
	}
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		name, s.busyTimeout.Milliseconds())
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Insert stores rec after checking its natural key inside one transaction.
func (s *SQLiteStore) Insert(ctx context.Context, rec *model.MatchRecord) (err error) {
	defer observe("insert", time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE match_number = ? AND team_number = ?`,
		rec.MatchNumber, rec.TeamNumber).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check duplicate: %w", err)
	}
	if exists > 0 {
		return &model.DuplicateError{Key: rec.Key()}
	}

	id := s.newID()
	created := s.now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO matches (
			id, match_number, team_number, scout_name,
			auto_balls, auto_climb, teleop_balls, endgame_climb,
			match_outcome, outcome_key, played_defense, robot_broke,
			notes, timestamp, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.MatchNumber, rec.TeamNumber, rec.ScoutName,
		rec.AutoBalls, int(rec.AutoClimb), rec.TeleopBalls, int(rec.EndgameClimb),
		rec.MatchOutcome, rec.OutcomeKey, boolInt(rec.PlayedDefense), boolInt(rec.RobotBroke),
		rec.Notes, formatTime(rec.Timestamp), formatTime(created),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &model.DuplicateError{Key: rec.Key()}
		}
		return fmt.Errorf("insert match %s: %w", rec.Key(), err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}

	rec.ID = id
	rec.CreatedAt = created
	return nil
}

// Get returns the record with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (model.MatchRecord, error) {
	defer observe("get", time.Now())

	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM matches WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MatchRecord{}, ErrNotFound
	}
	return rec, err
}

// Delete removes the record with the given id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) (model.MatchRecord, error) {
	defer observe("delete", time.Now())
	return s.deleteWhere(ctx, `id = ?`, id)
}

// DeleteByKey removes the record with the given natural key.
func (s *SQLiteStore) DeleteByKey(ctx context.Context, key model.NaturalKey) (model.MatchRecord, error) {
	defer observe("delete", time.Now())
	return s.deleteWhere(ctx, `match_number = ? AND team_number = ?`, key.Match, key.Team)
}

func (s *SQLiteStore) deleteWhere(ctx context.Context, where string, args ...any) (rec model.MatchRecord, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.MatchRecord{}, fmt.Errorf("begin delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rec, err = scanRecord(tx.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM matches WHERE `+where, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.MatchRecord{}, ErrNotFound
	}
	if err != nil {
		return model.MatchRecord{}, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, rec.ID); err != nil {
		return model.MatchRecord{}, fmt.Errorf("delete match %s: %w", rec.ID, err)
	}
	if err = tx.Commit(); err != nil {
		return model.MatchRecord{}, fmt.Errorf("commit delete: %w", err)
	}
	return rec, nil
}

// List returns all records ordered by match then team.
func (s *SQLiteStore) List(ctx context.Context) ([]model.MatchRecord, error) {
	defer observe("list", time.Now())
	return s.query(ctx, `SELECT `+selectColumns+` FROM matches ORDER BY match_number, team_number`)
}

// ListByTeam returns one team's records ordered by match.
func (s *SQLiteStore) ListByTeam(ctx context.Context, team int) ([]model.MatchRecord, error) {
	defer observe("list_team", time.Now())
	return s.query(ctx, `SELECT `+selectColumns+` FROM matches WHERE team_number = ? ORDER BY match_number`, team)
}

// Keys returns every stored natural key.
func (s *SQLiteStore) Keys(ctx context.Context) ([]model.NaturalKey, error) {
	defer observe("keys", time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT match_number, team_number FROM matches`)
	if err != nil {
		return nil, fmt.Errorf("query keys: %w", err)
	}
	defer rows.Close()

	var keys []model.NaturalKey
	for rows.Next() {
		var k model.NaturalKey
		if err := rows.Scan(&k.Match, &k.Team); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Exists reports whether key is stored. Other processes sharing the file see
// the same answer, unlike an in-memory claim.
func (s *SQLiteStore) Exists(ctx context.Context, key model.NaturalKey) (bool, error) {
	defer observe("exists", time.Now())

	var found int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM matches WHERE match_number = ? AND team_number = ?`, key.Match, key.Team,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check key %s: %w", key, err)
	}
	return true, nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]model.MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []model.MatchRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (model.MatchRecord, error) {
	var (
		rec                 model.MatchRecord
		autoClimb, endClimb int
		defense, broke      int
		ts, created         string
	)
	err := sc.Scan(
		&rec.ID, &rec.MatchNumber, &rec.TeamNumber, &rec.ScoutName,
		&rec.AutoBalls, &autoClimb, &rec.TeleopBalls, &endClimb,
		&rec.MatchOutcome, &rec.OutcomeKey, &defense, &broke,
		&rec.Notes, &ts, &created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MatchRecord{}, err
		}
		return model.MatchRecord{}, fmt.Errorf("scan match: %w", err)
	}
	rec.AutoClimb = model.ClimbLevel(autoClimb)
	rec.EndgameClimb = model.ClimbLevel(endClimb)
	rec.PlayedDefense = defense != 0
	rec.RobotBroke = broke != 0
	rec.Timestamp = parseTime(ts)
	rec.CreatedAt = parseTime(created)
	return rec, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	if se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
