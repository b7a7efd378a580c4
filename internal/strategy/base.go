package strategy

import (
	"context"
	"fmt"

	"github.com/optrader/optrader/internal/chain"
	"github.com/optrader/optrader/internal/ledger"
	"github.com/optrader/optrader/internal/observ"
	"github.com/optrader/optrader/internal/portfolio"
)

// BaseStrategy carries the boilerplate entry and exit bookkeeping against a
// ledger collection. Concrete strategies embed it and supply Run; they can
// override the hooks when they need different mechanics.
type BaseStrategy struct {
	NopHooks

	Store      ledger.Store
	Collection string
	Params     portfolio.Params
}

// EnterOption opens a new position for the quote's symbol, or re-averages
// an existing one. The symbol is the document key, so repeated scans mutate
// one position instead of stacking new documents.
func (b *BaseStrategy) EnterOption(ctx context.Context, q *chain.Quote, qty int) error {
	cur, err := b.Store.GetPosition(ctx, b.Collection, q.Symbol)
	if err != nil {
		return err
	}

	if cur == nil {
		pos := ledger.NewOptionPosition(q, qty, b.Params.CommissionPerContract)
		if err := b.Store.PutPosition(ctx, b.Collection, pos); err != nil {
			return err
		}
		observ.PositionsEntered.Inc()
		observ.Log("position_entered", map[string]any{
			"symbol": q.Symbol, "qty": qty, "price": q.Last,
		})
		return nil
	}

	totalQty := cur.Quantity + qty
	avgPrice := ledger.AveragePrice(cur.Quantity, cur.LastPrice, qty, q.Last)
	cur.Increase(q, avgPrice, totalQty, b.Params.CommissionPerContract)
	if err := b.Store.PutPosition(ctx, b.Collection, cur); err != nil {
		return err
	}
	observ.PositionsEntered.Inc()
	observ.Log("position_increased", map[string]any{
		"symbol": q.Symbol, "qty": qty, "price": q.Last,
		"avg_price": avgPrice, "total_qty": totalQty,
	})
	return nil
}

// Exit reduces or closes the ledger position for pos.Symbol. Only open
// positions are touched. The full-exit branch books mark-to-market P&L
// since the last close-price update; the partial branch books the exited
// lot's price-minus-buy-price P&L. The two definitions are intentionally
// different.
func (b *BaseStrategy) Exit(ctx context.Context, pos *ledger.Position, q *chain.Quote, qty int) error {
	cur, err := b.Store.GetPosition(ctx, b.Collection, pos.Symbol)
	if err != nil {
		return err
	}
	if cur == nil || cur.Status != ledger.StatusOpen {
		return nil
	}
	if qty > cur.Quantity {
		return fmt.Errorf("exit qty %d exceeds held qty %d for %s", qty, cur.Quantity, pos.Symbol)
	}

	markPnL := ledger.Notional(pos.LastPrice, cur.Quantity) - ledger.Notional(cur.ClosePrice, cur.Quantity)

	if qty == cur.Quantity {
		cur.CloseFull(q, markPnL, b.Params.CommissionPerContract)
		if err := b.Store.PutPosition(ctx, b.Collection, cur); err != nil {
			return err
		}
		observ.PositionsExited.Inc()
		observ.Log("position_closed", map[string]any{
			"symbol": pos.Symbol, "qty": qty, "price": q.Last, "realized_pnl": cur.RealizedPnL,
		})
		return nil
	}

	cur.Reduce(q, qty, b.Params.CommissionPerContract)
	if err := b.Store.PutPosition(ctx, b.Collection, cur); err != nil {
		return err
	}
	observ.PositionsExited.Inc()
	observ.Log("position_reduced", map[string]any{
		"symbol": pos.Symbol, "qty": qty, "price": q.Last,
		"remaining": cur.Quantity, "realized_pnl": cur.RealizedPnL,
	})
	return nil
}
