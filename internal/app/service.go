// Package service wires the scouting domain to storage, the import queue and
// the worker pool. It implements the dependencies of the HTTP API and scoutctl.
package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/okian/scout/internal/adapters/mq/queue"
	"github.com/okian/scout/internal/adapters/mq/worker"
	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/domain/aggregate"
	"github.com/okian/scout/internal/domain/dedupe"
	"github.com/okian/scout/internal/domain/export"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/internal/domain/scoring"
	"github.com/okian/scout/internal/domain/types"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// Export formats accepted by Export.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const stopTimeout = 10 * time.Second

// Service implements match intake, queries and exports.
type Service struct {
	mu sync.RWMutex

	store      repository.MatchStore
	deduper    dedupe.Deduper
	importQ    *queue.InMemoryQueue
	pool       *worker.Pool
	normalizer *normalize.Normalizer

	dbPath         string
	workerCount    int
	queueSize      int
	dedupeSize     int
	maxImportItems int

	started   bool
	stopped   bool
	startedAt time.Time
	stopCh    chan struct{}

	logger logger.Logger
}

// New constructs a Service. Nothing is opened until Start.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:         repository.MemoryPath,
		workerCount:    runtime.NumCPU(),
		queueSize:      1024,
		dedupeSize:     50_000,
		maxImportItems: 500,
		normalizer:     normalize.New(),
		stopCh:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store, warms the claim cache from stored keys and starts
// the import workers. The workers run until ctx is done or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.stopped {
		return ErrStopped
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	opened := false
	if s.store == nil {
		store, err := repository.Open(ctx, s.dbPath)
		if err != nil {
			return fmt.Errorf("start service: %w", err)
		}
		s.store = store
		opened = true
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	keys, err := s.store.Keys(ctx)
	if err != nil {
		if cerr := s.store.Close(); cerr != nil {
			s.logger.Error(ctx, "close store", logger.Error(cerr))
		}
		if opened {
			s.store = nil
		} else {
			// A supplied store is closed now and cannot serve a retry.
			s.stopped = true
		}
		return fmt.Errorf("warm claims: %w", err)
	}
	for _, k := range keys {
		s.deduper.SeenAndRecord(ctx, k.String())
	}
	metrics.UpdateRecordsTotal(len(keys))

	s.importQ = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.importQ, importRecorder{s})
	s.pool.Start(ctx)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "scouting service started",
		logger.String("db", s.dbPath),
		logger.Int("records", len(keys)),
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains the workers and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping scouting service...")
	close(s.stopCh)

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "close store", logger.Error(err))
	}

	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "scouting service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Submit normalizes raw and stores it. A match/team pair already present
// yields a *model.DuplicateError; missing identifiers yield a
// *model.ValidationError.
func (s *Service) Submit(ctx context.Context, raw model.RawSubmission) (model.MatchRecord, error) {
	if err := s.ready(); err != nil {
		return model.MatchRecord{}, err
	}
	return s.submit(ctx, raw)
}

// importRecorder lets workers store payloads while Stop holds the service
// lock and waits for them.
type importRecorder struct{ s *Service }

func (r importRecorder) Submit(ctx context.Context, raw model.RawSubmission) (model.MatchRecord, error) {
	return r.s.submit(ctx, raw)
}

func (s *Service) submit(ctx context.Context, raw model.RawSubmission) (model.MatchRecord, error) {
	rec, err := s.normalizer.Normalize(raw)
	if err != nil {
		metrics.RecordSubmission(metrics.ResultInvalid)
		return model.MatchRecord{}, err
	}

	key := rec.Key()
	if s.deduper.SeenAndRecord(ctx, key.String()) && s.storedElsewhere(ctx, key) {
		metrics.RecordSubmission(metrics.ResultDuplicate)
		s.logger.Debug(ctx, "duplicate submission", logger.String("key", key.String()))
		return model.MatchRecord{}, &model.DuplicateError{Key: key}
	}

	if err := s.store.Insert(ctx, &rec); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			// The claim cache had evicted this key; the store still holds it.
			metrics.RecordSubmission(metrics.ResultDuplicate)
			return model.MatchRecord{}, err
		}
		s.deduper.Unrecord(ctx, key.String())
		metrics.RecordSubmission(metrics.ResultFailed)
		metrics.RecordErrorByComponent("service", "store_insert")
		s.logger.Error(ctx, "store insert failed", logger.String("key", key.String()), logger.Error(err))
		return model.MatchRecord{}, fmt.Errorf("store match %s: %w", key, err)
	}

	metrics.RecordSubmission(metrics.ResultCreated)
	s.refreshGauges(ctx)
	s.logger.Info(ctx, "match recorded",
		logger.String("id", rec.ID),
		logger.Int("match", rec.MatchNumber),
		logger.Int("team", rec.TeamNumber),
		logger.String("scout", rec.ScoutName),
	)
	return rec, nil
}

// storedElsewhere confirms a cached claim against the store. Another process
// sharing the database may have deleted the record since it was claimed; a
// failed lookup defers to the unique constraint on insert.
func (s *Service) storedElsewhere(ctx context.Context, key model.NaturalKey) bool {
	found, err := s.store.Exists(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "claim check failed", logger.String("key", key.String()), logger.Error(err))
		return false
	}
	if !found {
		s.logger.Debug(ctx, "stale claim released", logger.String("key", key.String()))
	}
	return found
}

// Import runs every payload through the import queue and returns one result
// per payload, in input order. Payloads that do not fit in the queue are
// reported with status backpressure.
func (s *Service) Import(ctx context.Context, raws []model.RawSubmission) ([]model.ImportResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if len(raws) > s.maxImportItems {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyItems, len(raws), s.maxImportItems)
	}

	results := make([]model.ImportResult, len(raws))
	replies := make(chan model.ImportResult, len(raws))
	pending := 0
	for i, raw := range raws {
		if s.importQ.Enqueue(ctx, queue.Job{Index: i, Raw: raw, Reply: replies}) {
			pending++
			continue
		}
		metrics.RecordSubmission(metrics.ResultBackpressure)
		results[i] = model.ImportResult{Index: i, Status: model.ImportBackpressure, Error: "import queue full"}
	}

	for ; pending > 0; pending-- {
		select {
		case r := <-replies:
			results[r.Index] = r
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.stopCh:
			return nil, ErrStopped
		}
	}

	s.logger.Info(ctx, "import finished", logger.Int("items", len(raws)))
	return results, nil
}

// Delete removes the record with the given id and releases its claim.
func (s *Service) Delete(ctx context.Context, id string) (model.MatchRecord, error) {
	if err := s.ready(); err != nil {
		return model.MatchRecord{}, err
	}
	rec, err := s.store.Delete(ctx, id)
	return s.afterDelete(ctx, rec, err)
}

// DeleteByKey removes the record for one match/team pair.
func (s *Service) DeleteByKey(ctx context.Context, key model.NaturalKey) (model.MatchRecord, error) {
	if err := s.ready(); err != nil {
		return model.MatchRecord{}, err
	}
	rec, err := s.store.DeleteByKey(ctx, key)
	return s.afterDelete(ctx, rec, err)
}

func (s *Service) afterDelete(ctx context.Context, rec model.MatchRecord, err error) (model.MatchRecord, error) {
	if err != nil {
		return model.MatchRecord{}, err
	}
	s.deduper.Unrecord(ctx, rec.Key().String())
	s.refreshGauges(ctx)
	s.logger.Info(ctx, "match deleted", logger.String("id", rec.ID), logger.String("key", rec.Key().String()))
	return rec, nil
}

// Matches returns every record, latest match first and teams ascending within a match.
func (s *Service) Matches(ctx context.Context) ([]model.MatchRecord, error) {
	recs, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(recs, func(a, b model.MatchRecord) int {
		if c := cmp.Compare(b.MatchNumber, a.MatchNumber); c != 0 {
			return c
		}
		return cmp.Compare(a.TeamNumber, b.TeamNumber)
	})
	return recs, nil
}

// Rankings ranks all teams by mean filtered score. A limit <= 0 returns every team.
func (s *Service) Rankings(ctx context.Context, f scoring.Filter, limit int) ([]types.TeamRanking, error) {
	recs, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	ranked := aggregate.Rank(recs, f)
	metrics.RecordRankingLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.UpdateTeamsTotal(len(ranked))

	if limit > 0 {
		ranked = aggregate.Top(ranked, limit)
	}
	return ranked, nil
}

// Team returns one team's statistics and matches. Unknown teams yield model.ErrNotFound.
func (s *Service) Team(ctx context.Context, team int) (types.TeamDetail, error) {
	if err := s.ready(); err != nil {
		return types.TeamDetail{}, err
	}
	recs, err := s.store.ListByTeam(ctx, team)
	if err != nil {
		return types.TeamDetail{}, err
	}
	if len(recs) == 0 {
		return types.TeamDetail{}, fmt.Errorf("team %d: %w", team, model.ErrNotFound)
	}
	return aggregate.TeamDetail(team, recs), nil
}

// Overview summarizes the whole data set.
func (s *Service) Overview(ctx context.Context) (types.Overview, error) {
	recs, err := s.snapshot(ctx)
	if err != nil {
		return types.Overview{}, err
	}
	ov := aggregate.Overview(recs)
	metrics.UpdateTeamsTotal(ov.UniqueTeams)
	return ov, nil
}

// Report computes rankings, per-team stats and the overview from one snapshot.
func (s *Service) Report(ctx context.Context, f scoring.Filter) (aggregate.Report, error) {
	recs, err := s.snapshot(ctx)
	if err != nil {
		return aggregate.Report{}, err
	}
	return aggregate.Build(ctx, recs, f)
}

// Export writes every record to w as CSV or XLSX.
func (s *Service) Export(ctx context.Context, w io.Writer, format string) error {
	recs, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	table := export.ToTable(recs)

	switch format {
	case FormatCSV:
		err = export.WriteCSV(w, table)
	case FormatXLSX:
		err = export.WriteXLSX(w, table)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		metrics.RecordErrorByComponent("export", format)
		return fmt.Errorf("export %s: %w", format, err)
	}
	metrics.RecordExport(format)
	return nil
}

func (s *Service) snapshot(ctx context.Context) ([]model.MatchRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.List(ctx)
}

func (s *Service) refreshGauges(ctx context.Context) {
	if n, err := s.store.Count(ctx); err == nil {
		metrics.UpdateRecordsTotal(n)
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"dedupeSize":     s.dedupeSize,
		"maxImportItems": s.maxImportItems,
	}
	if !s.started {
		return stats
	}

	ctx := context.Background()
	stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	stats["queueLength"] = s.importQ.Len()
	stats["importsProcessed"] = s.pool.Processed()
	stats["claims"] = s.deduper.Size()
	if n, err := s.store.Count(ctx); err == nil {
		stats["records"] = n
		metrics.UpdateRecordsTotal(n)
	}
	return stats
}
