package fetcher

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/optrader/optrader/internal/action"
	"github.com/optrader/optrader/internal/chain"
	"github.com/optrader/optrader/internal/ledger"
	"github.com/optrader/optrader/internal/observ"
	"github.com/optrader/optrader/internal/portfolio"
	"github.com/optrader/optrader/internal/provider"
)

// LiveConfig tunes one live fetch cycle.
type LiveConfig struct {
	BatchTimeout        time.Duration
	StrikeCount         int
	DaysToExpirationMax int
}

// Live fetches fresh chains from the provider, batch by batch, and enqueues
// the per-chain action sequence. The per-day sequence counter is persisted
// alongside the recorded chains so a replay can reconstruct the day.
type Live struct {
	provider  provider.Provider
	queue     *action.Queue
	batches   [][]string
	managers  []*portfolio.Manager
	store     ledger.Store
	cfg       LiveConfig
	rebalance bool
	seq       int
}

func NewLive(p provider.Provider, q *action.Queue, tickers []string, batchSize int,
	managers []*portfolio.Manager, store ledger.Store, cfg LiveConfig, rebalance bool) *Live {

	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 20 * time.Second
	}
	if cfg.StrikeCount <= 0 {
		cfg.StrikeCount = 20
	}
	if cfg.DaysToExpirationMax <= 0 {
		cfg.DaysToExpirationMax = 100
	}
	return &Live{
		provider:  p,
		queue:     q,
		batches:   chain.Batch(tickers, batchSize),
		managers:  managers,
		store:     store,
		cfg:       cfg,
		rebalance: rebalance,
		seq:       1,
	}
}

type fetchResult struct {
	ticker string
	chain  *chain.Chain
	err    error
}

// Run executes one full fetch cycle over all batches, then advances and
// persists the sequence counter. The counter document is keyed per trading
// day; a restart mid-day adopts the stored counter instead of overwriting
// the morning's recordings.
func (f *Live) Run(ctx context.Context) error {
	collection := "data_" + chain.Date(0, false)

	stored, ok, err := f.store.Sequence(ctx, collection)
	if err != nil {
		return err
	}
	if !ok {
		if err := f.store.SetSequence(ctx, collection, f.seq); err != nil {
			return err
		}
	} else if f.seq == 1 && stored != 1 {
		f.seq = stored
		observ.Log("sequence_resumed", map[string]any{
			"collection": collection, "seq": stored,
		})
	}

	cycle := uuid.NewString()
	observ.Log("fetch_cycle_start", map[string]any{
		"cycle": cycle, "collection": collection, "seq": f.seq, "batches": len(f.batches),
	})

	maxExpiration := chain.MaxExpirationDate(f.cfg.DaysToExpirationMax)

	for _, batch := range f.batches {
		f.runBatch(ctx, batch, maxExpiration, collection, cycle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	f.seq++
	if err := f.store.SetSequence(ctx, collection, f.seq); err != nil {
		return err
	}
	observ.Log("fetch_cycle_complete", map[string]any{"cycle": cycle, "next_seq": f.seq})
	return nil
}

// runBatch fetches one batch of tickers in parallel under a shared deadline.
// Nothing is enqueued until every request has answered: a deadline hit
// discards the whole batch, results that already arrived included. A single
// ticker's fetch error only skips that ticker.
func (f *Live) runBatch(ctx context.Context, batch []string, maxExpiration, collection, cycle string) {
	observ.FetchBatches.Inc()

	bctx, cancel := context.WithTimeout(ctx, f.cfg.BatchTimeout)
	defer cancel()

	results := make(chan fetchResult, len(batch))
	for _, ticker := range batch {
		go func(ticker string) {
			ch, err := f.provider.OptionChain(bctx, ticker, maxExpiration, f.cfg.StrikeCount)
			results <- fetchResult{ticker: ticker, chain: ch, err: err}
		}(ticker)
	}

	chains := make([]*chain.Chain, 0, len(batch))
	for range batch {
		select {
		case <-bctx.Done():
			observ.FetchBatchTimeouts.Inc()
			observ.Log("fetch_batch_timeout", map[string]any{
				"cycle": cycle, "tickers": batch,
			})
			return
		case res := <-results:
			if res.err != nil {
				observ.LogError("fetch_ticker_failed", res.err, map[string]any{
					"cycle": cycle, "ticker": res.ticker,
				})
				continue
			}
			chains = append(chains, res.chain)
		}
	}

	for _, ch := range chains {
		f.enqueueChain(ch, collection)
	}
}

// enqueueChain emits the fixed action sequence for one snapshot. The
// recording action captures the sequence number now, not at process time.
func (f *Live) enqueueChain(ch *chain.Chain, collection string) {
	f.queue.Enqueue(&action.UpdatePositions{Managers: f.managers, Chain: ch})
	f.queue.Enqueue(&action.Trading{Managers: f.managers, Chain: ch})
	if f.rebalance {
		f.queue.Enqueue(&action.Rebalance{Managers: f.managers, Chain: ch})
	}
	f.queue.Enqueue(&action.RecordChain{
		Store:      f.store,
		Collection: collection,
		Chain:      ch,
		Seq:        f.seq,
	})
}
