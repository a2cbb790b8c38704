package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/scout/pkg/logger"
)

const (
	directoryPermission  = 0750
	percentageMultiplier = 100
)

// Run generates an event's worth of scouting payloads, submits them to the
// server at cfg.BaseURL and verifies its rankings. The server is expected to
// start with an empty store.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting scouting simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("matches", cfg.Matches),
		logger.Int("teams", cfg.Teams),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Int("topN", cfg.TopN))

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	payloads := NewGenerator(cfg.Seed).Generate(cfg)
	stats.Generated = len(payloads)
	for _, p := range payloads {
		if p.Shape == ShapeCompact {
			stats.Compact++
		} else {
			stats.Expanded++
		}
	}
	log.Info(ctx, "payloads generated",
		logger.Int("payloads", stats.Generated),
		logger.Int("compact", stats.Compact),
		logger.Int("expanded", stats.Expanded))

	if cfg.OutputFile != "" {
		if err := savePayloads(ctx, cfg.OutputFile, payloads); err != nil {
			log.Warn(ctx, "failed to save payloads to file", logger.Error(err))
		}
	}

	results := submitPayloads(ctx, cfg, payloads, stats)
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("submission interrupted: %w", err)
	}

	verifyErr := verifyRankings(ctx, cfg, payloads, results, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if verifyErr != nil {
		return stats, fmt.Errorf("ranking verification failed: %w", verifyErr)
	}
	log.Info(ctx, "simulation completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, cfg Config) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := newHTTPClient(cfg.Timeout).get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// savePayloads writes the generated payloads as an indented JSON array.
func savePayloads(ctx context.Context, filename string, payloads []Payload) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close file", logger.Error(err))
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payloads); err != nil {
		return fmt.Errorf("failed to write payloads: %w", err)
	}

	logger.Get().Info(ctx, "payloads saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, perSecond float64
	if stats.Submitted > 0 {
		acceptRate = float64(stats.Created) / float64(stats.Submitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("created", stats.Created),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("invalid", stats.Invalid),
		logger.Int("failed", stats.Failed),
		logger.Int("teams", stats.Teams),
		logger.Int("rankingsChecked", stats.RankingsChecked),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("submissionsPerSecond", perSecond))
}
