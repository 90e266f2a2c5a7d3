package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"moonwatch/internal/config"
	"moonwatch/internal/logger"
	"moonwatch/internal/market"
	"moonwatch/internal/pkg/fanout"
)

// Snapshot is one complete pass over the account.
type Snapshot struct {
	ID      string
	TakenAt time.Time
	Wallet  market.Wallet
	Rows    []Row
	Skipped []Skip
}

// LookupFailures counts rows whose stop lookup failed.
func (s *Snapshot) LookupFailures() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, r := range s.Rows {
		if r.Stop.Status == StopLookupFailed {
			n++
		}
	}
	return n
}

// Engine produces risk snapshots from a gateway.
type Engine struct {
	gw      market.Gateway
	workers int
	now     func() time.Time
}

// NewEngine builds an engine; workers <= 0 selects half the CPUs.
func NewEngine(gw market.Gateway, workers int) *Engine {
	if workers <= 0 {
		workers = fanout.DefaultWorkers()
	}
	return &Engine{gw: gw, workers: workers, now: time.Now}
}

// Snapshot fetches the wallet and positions concurrently, then the stop
// orders of every open configured symbol on a bounded pool, and joins them.
// Only wallet or position failures are returned; stop lookups degrade per row.
func (e *Engine) Snapshot(ctx context.Context, coins *config.Coins) (*Snapshot, error) {
	if e == nil || e.gw == nil {
		return nil, fmt.Errorf("risk engine not initialised")
	}
	id := uuid.NewString()
	log := logger.With("run_id", id)
	start := e.now()

	var (
		wallet    market.Wallet
		positions []market.Position
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, err := e.gw.WalletBalance(gctx)
		if err != nil {
			return fmt.Errorf("wallet balance: %w", err)
		}
		wallet = w
		return nil
	})
	g.Go(func() error {
		p, err := e.gw.OpenPositions(gctx)
		if err != nil {
			return fmt.Errorf("open positions: %w", err)
		}
		positions = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	open, skipped := Select(positions, coins)
	symbols := make([]string, 0, len(open))
	for _, pos := range open {
		symbols = append(symbols, pos.Symbol)
	}
	stops := FetchStops(ctx, e.gw, symbols, e.workers)
	rows := Join(open, stops, wallet)

	snap := &Snapshot{
		ID:      id,
		TakenAt: start,
		Wallet:  wallet,
		Rows:    rows,
		Skipped: skipped,
	}
	log.Debug("risk snapshot complete",
		"open", len(rows),
		"skipped", len(skipped),
		"stop_lookup_failures", snap.LookupFailures(),
		"elapsed", e.now().Sub(start).String(),
	)
	return snap, nil
}
