// Package strategy runs core trading logic against chain snapshots and
// mutates positions through the ledger.
package strategy

import (
	"context"

	"github.com/optrader/optrader/internal/chain"
	"github.com/optrader/optrader/internal/ledger"
)

// Strategy is the capability surface a portfolio manager drives. Run is the
// only operation every strategy must implement meaningfully; the enter and
// exit hooks have no-op defaults available via NopHooks.
type Strategy interface {
	Run(ctx context.Context, ch *chain.Chain) error
	EnterOption(ctx context.Context, q *chain.Quote, qty int) error
	EnterEquity(ctx context.Context, symbol string, price float64, qty int) error
	Exit(ctx context.Context, pos *ledger.Position, q *chain.Quote, qty int) error
}

// NopHooks supplies no-op implementations of the optional Strategy hooks.
// Embed it in strategies that only need a subset.
type NopHooks struct{}

func (NopHooks) EnterOption(context.Context, *chain.Quote, int) error { return nil }

func (NopHooks) EnterEquity(context.Context, string, float64, int) error { return nil }

func (NopHooks) Exit(context.Context, *ledger.Position, *chain.Quote, int) error { return nil }
