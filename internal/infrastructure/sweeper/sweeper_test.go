package sweeper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/finanza/ledger/internal/usecase"
)

func TestStartSweepsOnInterval(t *testing.T) {
	var sweeps atomic.Int32

	s := newTestSweeper(func(ctx context.Context) (*usecase.SweepReport, error) {
		sweeps.Add(1)
		return &usecase.SweepReport{Evaluated: 1, Promoted: 1}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}

	if sweeps.Load() == 0 {
		t.Fatal("expected at least one sweep")
	}
}

func TestStartKeepsRunningAfterSweepError(t *testing.T) {
	var sweeps atomic.Int32

	s := newTestSweeper(func(ctx context.Context) (*usecase.SweepReport, error) {
		if sweeps.Add(1) == 1 {
			return nil, errors.New("transient failure")
		}
		return &usecase.SweepReport{}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if sweeps.Load() < 2 {
		t.Fatalf("expected sweeper to keep running after an error, got %d sweeps", sweeps.Load())
	}
}

func newTestSweeper(sweep SweepFunc) *Sweeper {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return New(Config{
		Sweep:    sweep,
		Logger:   logger,
		Interval: 5 * time.Millisecond,
	})
}
