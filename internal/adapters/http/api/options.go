package api

import (
	"time"

	"github.com/okian/scout/pkg/logger"
)

// Option configures a Server.
type Option func(*settings)

// WithRankingsLimits sets the limit used when a rankings request has none and
// the largest limit a request may ask for.
func WithRankingsLimits(defaultLimit, maxLimit int) Option {
	return func(s *settings) {
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
		if defaultLimit > 0 {
			s.defaultLimit = min(defaultLimit, s.maxLimit)
		}
	}
}

// WithChartTopN sets how many teams the ranking chart shows by default.
func WithChartTopN(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.chartTopN = n
		}
	}
}

// WithMaxBodyBytes caps request bodies for submit and import.
func WithMaxBodyBytes(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithClock sets the clock used to name export downloads.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
