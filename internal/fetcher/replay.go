package fetcher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/optrader/optrader/internal/action"
	"github.com/optrader/optrader/internal/chain"
	"github.com/optrader/optrader/internal/ledger"
	"github.com/optrader/optrader/internal/observ"
	"github.com/optrader/optrader/internal/portfolio"
)

// Replay re-enqueues a recorded trading day sequence number by sequence
// number. Chains are replayed in ticker order within each sequence, and only
// the update and trading actions are emitted: nothing is re-recorded and no
// hedging runs against historical prices.
type Replay struct {
	date     string
	queue    *action.Queue
	tickers  []string
	managers []*portfolio.Manager
	store    ledger.Store
}

func NewReplay(date string, q *action.Queue, tickers []string,
	managers []*portfolio.Manager, store ledger.Store) *Replay {

	return &Replay{
		date:     date,
		queue:    q,
		tickers:  tickers,
		managers: managers,
		store:    store,
	}
}

// Run enqueues every recorded snapshot for the replay date. A missing
// sequence counter means the day was never recorded and is a hard error; a
// missing or corrupt individual snapshot is skipped with a diagnostic.
func (r *Replay) Run(ctx context.Context) error {
	collection := "data_" + r.date

	seq, ok, err := r.store.Sequence(ctx, collection)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no recorded data for %s", r.date)
	}

	observ.Log("replay_start", map[string]any{
		"date": r.date, "sequences": seq - 1, "tickers": len(r.tickers),
	})

	for n := 1; n < seq; n++ {
		for _, ticker := range r.tickers {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			doc, err := r.store.GetChain(ctx, collection, ticker, n)
			if err != nil {
				return err
			}
			if doc == nil {
				observ.Log("replay_chain_missing", map[string]any{
					"date": r.date, "ticker": ticker, "seq": n,
				})
				continue
			}
			var ch chain.Chain
			if err := json.Unmarshal(doc, &ch); err != nil {
				observ.LogError("replay_chain_corrupt", err, map[string]any{
					"date": r.date, "ticker": ticker, "seq": n,
				})
				continue
			}
			r.queue.Enqueue(&action.UpdatePositions{Managers: r.managers, Chain: &ch})
			r.queue.Enqueue(&action.Trading{Managers: r.managers, Chain: &ch})
			observ.ChainsReplayed.Inc()
		}
	}

	observ.Log("replay_enqueue_complete", map[string]any{"date": r.date})
	return nil
}
