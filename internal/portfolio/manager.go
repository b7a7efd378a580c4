package portfolio

import (
	"context"

	"github.com/optrader/optrader/internal/chain"
	"github.com/optrader/optrader/internal/hedge"
	"github.com/optrader/optrader/internal/ledger"
)

// Strategy is the slice of strategy behavior a manager drives directly.
type Strategy interface {
	Run(ctx context.Context, ch *chain.Chain) error
}

// Manager pairs one strategy with the ledger collection it trades into, plus
// an optional delta hedger for the rebalance path.
type Manager struct {
	name       string
	strategy   Strategy
	store      ledger.Store
	collection string
	hedger     hedge.Hedger
	tickers    []string
	hedgeSkew  float64
}

func NewManager(name string, strat Strategy, store ledger.Store, collection string) *Manager {
	return &Manager{
		name:       name,
		strategy:   strat,
		store:      store,
		collection: collection,
	}
}

// WithHedger enables rebalancing over the given tickers at the given skew.
func (m *Manager) WithHedger(h hedge.Hedger, tickers []string, skew float64) *Manager {
	m.hedger = h
	m.tickers = tickers
	m.hedgeSkew = skew
	return m
}

func (m *Manager) Name() string { return m.name }

func (m *Manager) Collection() string { return m.collection }

func (m *Manager) Store() ledger.Store { return m.store }

// RunStrategy evaluates the manager's strategy against one chain snapshot.
func (m *Manager) RunStrategy(ctx context.Context, ch *chain.Chain) error {
	return m.strategy.Run(ctx, ch)
}

// Rebalance adjusts the equity hedge against the manager's open option
// positions. Managers without a hedger treat this as a no-op.
func (m *Manager) Rebalance(ctx context.Context, ch *chain.Chain) error {
	if m.hedger == nil {
		return nil
	}
	positions, err := m.store.Positions(ctx, m.collection)
	if err != nil {
		return err
	}
	return m.hedger.Hedge(ctx, m.store, m.collection, ch, m.tickers, positions, m.hedgeSkew)
}
