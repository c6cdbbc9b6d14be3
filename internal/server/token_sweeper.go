package server

import (
	"context"
	"log/slog"
	"time"

	"taccd/internal/config"
	"taccd/internal/store"
)

// TokenSweeper periodically deletes ledger entries older than the
// validity window, regardless of status. Deletions are idempotent, so
// it shares the ledger with request handling without any lock: a
// concurrent consume of a just-swept token simply misses.
type TokenSweeper struct {
	ledger   store.TokenLedger
	validity time.Duration
	interval time.Duration
	logger   *slog.Logger
}

// NewTokenSweeper creates a sweeper from the token configuration.
func NewTokenSweeper(ledger store.TokenLedger, cfg config.TokenConfig, logger *slog.Logger) *TokenSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenSweeper{
		ledger:   ledger,
		validity: time.Duration(cfg.ValidityHours) * time.Hour,
		interval: time.Duration(cfg.SweepIntervalHours) * time.Hour,
		logger:   logger,
	}
}

// Start launches the sweep goroutine and returns a stop function. The
// goroutine also exits when ctx is cancelled.
func (t *TokenSweeper) Start(ctx context.Context) func() {
	done := make(chan struct{})
	go t.run(ctx, done)
	return func() { close(done) }
}

func (t *TokenSweeper) run(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			t.sweep(ctx)
		}
	}
}

func (t *TokenSweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-t.validity)
	swept, err := t.ledger.SweepTokens(ctx, cutoff)
	if err != nil {
		t.logger.Error("token sweep failed", "error", err)
		return
	}
	if swept > 0 {
		t.logger.Info("token sweep complete", "deleted", swept)
	}
}
