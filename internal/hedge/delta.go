package hedge

import (
	"context"

	"github.com/optrader/optrader/internal/chain"
	"github.com/optrader/optrader/internal/ledger"
	"github.com/optrader/optrader/internal/observ"
)

// Delta maintains one equity position per hedged ticker, sized from the
// average per-contract delta of the ticker's open option positions. A skew of
// 1 targets a full offset; fractional skews under-hedge on purpose.
type Delta struct{}

func NewDelta() *Delta { return &Delta{} }

// Hedge resizes the equity position for the chain's ticker. Tickers other
// than the chain's underlying are skipped because only the snapshot's
// underlying price is available for sizing.
func (d *Delta) Hedge(ctx context.Context, store ledger.Store, collection string, ch *chain.Chain,
	tickers []string, positions []*ledger.Position, skew float64) error {

	chainTicker := chain.NormalizeTicker(ch.Symbol)

	for _, ticker := range tickers {
		if ticker != chainTicker {
			continue
		}

		var qtySum int
		var deltaSum float64
		for _, pos := range positions {
			if !pos.IsOption() || pos.Status != ledger.StatusOpen || pos.Ticker() != ticker {
				continue
			}
			qtySum += pos.Quantity
			deltaSum += pos.Delta
		}
		if qtySum == 0 {
			continue
		}

		avg := deltaSum / float64(qtySum)
		target := int(chain.Round2(avg) * (-100 * skew))

		if err := d.resize(ctx, store, collection, ticker, ch.UnderlyingPrice, target); err != nil {
			return err
		}
	}
	return nil
}

// resize moves the ticker's equity position to the target share count,
// averaging in added shares at the current underlying price and realizing
// P&L on removed shares.
func (d *Delta) resize(ctx context.Context, store ledger.Store, collection, ticker string,
	price float64, target int) error {

	cur, err := store.GetPosition(ctx, collection, ticker)
	if err != nil {
		return err
	}

	if cur == nil || cur.Status != ledger.StatusOpen {
		if target == 0 {
			return nil
		}
		pos := ledger.NewEquityPosition(ticker, price, target)
		if err := store.PutPosition(ctx, collection, pos); err != nil {
			return err
		}
		observ.Log("hedge_opened", map[string]any{
			"ticker": ticker, "qty": target, "price": price,
		})
		return nil
	}

	if target == cur.Quantity {
		return nil
	}

	if abs(target) > abs(cur.Quantity) {
		added := abs(target - cur.Quantity)
		avg := ledger.AveragePrice(cur.Quantity, cur.BuyPrice, added, price)
		cur.BuyPrice = avg
		cur.LastPrice = avg
		cur.Quantity = target
		cur.BuyNotional = ledger.ShareNotional(avg, target)
	} else {
		removed := cur.Quantity - target
		cur.RealizedPnL += (price - cur.BuyPrice) * float64(removed)
		cur.Quantity = target
		cur.BuyNotional = ledger.ShareNotional(cur.BuyPrice, target)
		if target == 0 {
			cur.Status = ledger.StatusClosed
			cur.ClosePrice = price
		}
	}

	if err := store.PutPosition(ctx, collection, cur); err != nil {
		return err
	}
	observ.Log("hedge_resized", map[string]any{
		"ticker": ticker, "qty": target, "price": price,
	})
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
