// Package action defines the units of work the trading loop produces and the
// queue and processor that consume them. Fetchers enqueue; a single processor
// goroutine dequeues and executes in FIFO order, so ledger mutations for one
// snapshot always land in enqueue order.
package action

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/optrader/optrader/internal/chain"
	"github.com/optrader/optrader/internal/ledger"
	"github.com/optrader/optrader/internal/observ"
	"github.com/optrader/optrader/internal/portfolio"
)

// Action is one unit of work against portfolio or ledger state.
type Action interface {
	Name() string
	Process(ctx context.Context) error
}

// UpdatePositions refreshes stored positions from the chain snapshot's
// quotes. Positions whose symbol is absent from the snapshot keep their
// stale values.
type UpdatePositions struct {
	Managers []*portfolio.Manager
	Chain    *chain.Chain
}

func (a *UpdatePositions) Name() string { return "update_positions" }

func (a *UpdatePositions) Process(ctx context.Context) error {
	quotes := a.Chain.Flatten()
	var errs []error
	for _, m := range a.Managers {
		positions, err := m.Store().Positions(ctx, m.Collection())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, pos := range positions {
			if pos.Status != ledger.StatusOpen {
				continue
			}
			q, ok := quotes[pos.Symbol]
			if !ok {
				continue
			}
			pos.ApplyQuote(q)
			if err := m.Store().PutPosition(ctx, m.Collection(), pos); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Trading runs every manager's strategy against the chain snapshot. One
// manager's failure does not stop the others.
type Trading struct {
	Managers []*portfolio.Manager
	Chain    *chain.Chain
}

func (a *Trading) Name() string { return "trading" }

func (a *Trading) Process(ctx context.Context) error {
	var errs []error
	for _, m := range a.Managers {
		if err := m.RunStrategy(ctx, a.Chain); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Rebalance re-hedges every manager against the chain snapshot.
type Rebalance struct {
	Managers []*portfolio.Manager
	Chain    *chain.Chain
}

func (a *Rebalance) Name() string { return "rebalance" }

func (a *Rebalance) Process(ctx context.Context) error {
	var errs []error
	for _, m := range a.Managers {
		if err := m.Rebalance(ctx, a.Chain); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordChain persists the chain snapshot under the ticker and sequence
// number captured at enqueue time, for later replay.
type RecordChain struct {
	Store      ledger.Store
	Collection string
	Chain      *chain.Chain
	Seq        int
}

func (a *RecordChain) Name() string { return "record_chain" }

func (a *RecordChain) Process(ctx context.Context) error {
	doc, err := json.Marshal(a.Chain)
	if err != nil {
		return err
	}
	if err := a.Store.PutChain(ctx, a.Collection, a.Chain.Symbol, a.Seq, doc); err != nil {
		return err
	}
	observ.ChainsRecorded.Inc()
	return nil
}
