package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/finanza/ledger/internal/usecase"
)

// SweepFunc re-evaluates all held operations once.
type SweepFunc func(ctx context.Context) (*usecase.SweepReport, error)

// Sweeper periodically re-runs the transaction gate over held
// operations. KYC decisions trigger an immediate sweep for the
// affected user; this worker is the safety net that catches
// operations those event-driven sweeps missed.
type Sweeper struct {
	sweep    SweepFunc
	logger   *slog.Logger
	interval time.Duration
}

// Config for Sweeper.
type Config struct {
	Sweep    SweepFunc
	Logger   *slog.Logger
	Interval time.Duration
}

// New creates a new Sweeper.
func New(cfg Config) *Sweeper {
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Sweeper{
		sweep:    cfg.Sweep,
		logger:   cfg.Logger,
		interval: cfg.Interval,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info("held operation sweeper started",
		slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("held operation sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	report, err := s.sweep(ctx)
	if err != nil {
		s.logger.Error("sweep failed", slog.String("error", err.Error()))
		return
	}

	if report.Evaluated == 0 {
		return
	}

	s.logger.Info("sweep completed",
		slog.Int("evaluated", report.Evaluated),
		slog.Int("promoted", report.Promoted),
		slog.Int("voided", report.Voided),
		slog.Int("still_held", report.StillHeld))
}
