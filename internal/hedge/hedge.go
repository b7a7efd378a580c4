// Package hedge adjusts equity positions to offset the aggregate delta of a
// portfolio's open option positions.
package hedge

import (
	"context"

	"github.com/optrader/optrader/internal/chain"
	"github.com/optrader/optrader/internal/ledger"
)

// Hedger sizes and maintains the offsetting equity position for each hedged
// ticker given the current option book.
type Hedger interface {
	Hedge(ctx context.Context, store ledger.Store, collection string, ch *chain.Chain,
		tickers []string, positions []*ledger.Position, skew float64) error
}
