// Package ledger holds position state and the document store it lives in.
// The store is the single source of truth for positions; all mutation flows
// through it one document at a time.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/optrader/optrader/internal/chain"
)

// Open/close indicators persisted on a position document.
const (
	StatusOpen   = "open"
	StatusClosed = "close"
)

// OptionMultiplier converts a per-contract option price into notional.
const OptionMultiplier = 100

// Position is the ledger record of held quantity and economics for one
// symbol. Quantity never goes negative; a fully exited position is marked
// closed with quantity zero and kept for audit.
type Position struct {
	Symbol          string  `json:"symbol"`
	LastPrice       float64 `json:"lastPrice"`
	BuyPrice        float64 `json:"buyPrice"`
	ClosePrice      float64 `json:"closePrice"`
	Quantity        int     `json:"qty"`
	EntryDate       string  `json:"datePulled"`
	Delta           float64 `json:"delta"`
	Gamma           float64 `json:"gamma"`
	Theta           float64 `json:"theta"`
	Vega            float64 `json:"vega"`
	Volatility      float64 `json:"volatility"`
	Commission      float64 `json:"commission"`
	BuyNotional     float64 `json:"buyNotional"`
	CurrentNotional float64 `json:"currentNotional"`
	UnrealizedPnL   float64 `json:"unrealizedPnL"`
	RealizedPnL     float64 `json:"realizedPnL"`
	Status          string  `json:"openClose"`
}

// IsOption reports whether the position is an option contract, derived from
// the symbol containing the contract delimiter.
func (p *Position) IsOption() bool {
	return chain.IsOptionSymbol(p.Symbol)
}

// Ticker returns the underlying ticker for the position's symbol.
func (p *Position) Ticker() string {
	return chain.TickerFromSymbol(p.Symbol)
}

// Notional computes price x quantity x 100 exactly.
func Notional(price float64, qty int) float64 {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(qty))).
		Mul(decimal.NewFromInt(OptionMultiplier)).
		InexactFloat64()
}

// ShareNotional computes price x quantity without the option multiplier.
func ShareNotional(price float64, qty int) float64 {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(qty))).
		InexactFloat64()
}

// CommissionFor computes the flat per-contract commission for qty contracts.
func CommissionFor(perContract float64, qty int) float64 {
	return decimal.NewFromFloat(perContract).
		Mul(decimal.NewFromInt(int64(qty))).
		InexactFloat64()
}

// AveragePrice computes the weighted average entry price after adding newQty
// lots at newPrice to an existing abs(origQty) lots at origPrice.
func AveragePrice(origQty int, origPrice float64, newQty int, newPrice float64) float64 {
	abs := origQty
	if abs < 0 {
		abs = -abs
	}
	held := decimal.NewFromInt(int64(abs))
	added := decimal.NewFromInt(int64(newQty))
	cost := held.Mul(decimal.NewFromFloat(origPrice)).
		Add(added.Mul(decimal.NewFromFloat(newPrice)))
	return cost.Div(held.Add(added)).InexactFloat64()
}

// NewOptionPosition opens a fresh option position at the quote's last price.
func NewOptionPosition(q *chain.Quote, qty int, commissionPerContract float64) *Position {
	notional := Notional(q.Last, qty)
	return &Position{
		Symbol:          q.Symbol,
		LastPrice:       q.Last,
		BuyPrice:        q.Last,
		Quantity:        qty,
		EntryDate:       chain.Date(0, false),
		Delta:           q.Delta * float64(qty),
		Gamma:           q.Gamma * float64(qty),
		Theta:           q.Theta * float64(qty),
		Vega:            q.Vega * float64(qty),
		Volatility:      q.Volatility,
		Commission:      CommissionFor(commissionPerContract, qty),
		BuyNotional:     notional,
		CurrentNotional: notional,
		Status:          StatusOpen,
	}
}

// NewEquityPosition opens a fresh equity (hedge) position.
func NewEquityPosition(symbol string, price float64, qty int) *Position {
	return &Position{
		Symbol:      symbol,
		LastPrice:   price,
		BuyPrice:    price,
		Quantity:    qty,
		EntryDate:   chain.Date(0, false),
		BuyNotional: ShareNotional(price, qty),
		Status:      StatusOpen,
	}
}

// Increase re-averages the position after adding lots. The average becomes
// the new buy and last price, the commission is recomputed flat for the
// total size, and each aggregated greek is rebuilt from its own per-unit
// value.
func (p *Position) Increase(q *chain.Quote, avgPrice float64, totalQty int, commissionPerContract float64) {
	p.LastPrice = avgPrice
	p.BuyPrice = avgPrice
	p.Quantity = totalQty
	p.CurrentNotional = Notional(avgPrice, totalQty)
	p.Commission = CommissionFor(commissionPerContract, totalQty)
	p.Delta = q.Delta * float64(totalQty)
	p.Gamma = q.Gamma * float64(totalQty)
	p.Theta = q.Theta * float64(totalQty)
	p.Vega = q.Vega * float64(totalQty)
}

// CloseFull flattens the position entirely: quantity and greeks zeroed, the
// quote's price recorded as close price, round-trip commission charged on
// the original size, and the given realized P&L booked.
func (p *Position) CloseFull(q *chain.Quote, realizedPnL float64, commissionPerContract float64) {
	origQty := p.Quantity
	p.Status = StatusClosed
	p.Quantity = 0
	p.ClosePrice = q.Last
	p.Delta = 0
	p.Gamma = 0
	p.Theta = 0
	p.Vega = 0
	p.CurrentNotional = 0
	p.Commission = CommissionFor(commissionPerContract*2, origQty)
	p.RealizedPnL = realizedPnL
}

// Reduce exits exitQty lots and keeps the position open. The exited lots
// book price-minus-buy-price P&L and round-trip commission; the remaining
// lots keep entry commission only.
func (p *Position) Reduce(q *chain.Quote, exitQty int, commissionPerContract float64) {
	remaining := p.Quantity - exitQty
	p.Quantity = remaining
	p.Delta = q.Delta * float64(remaining)
	p.Gamma = q.Gamma * float64(remaining)
	p.Theta = q.Theta * float64(remaining)
	p.Vega = q.Vega * float64(remaining)
	p.BuyNotional = ShareNotional(p.BuyPrice, remaining)
	p.RealizedPnL = decimal.NewFromFloat(q.Last).Sub(decimal.NewFromFloat(p.BuyPrice)).
		Mul(decimal.NewFromInt(int64(exitQty))).InexactFloat64()
	p.Commission = decimal.NewFromFloat(CommissionFor(commissionPerContract*2, exitQty)).
		Add(decimal.NewFromFloat(CommissionFor(commissionPerContract, remaining))).
		InexactFloat64()
}

// ApplyQuote refreshes the ticking fields from the latest quote: last price,
// per-unit greeks scaled by current quantity, and volatility.
func (p *Position) ApplyQuote(q *chain.Quote) {
	p.LastPrice = q.Last
	p.Delta = q.Delta * float64(p.Quantity)
	p.Gamma = q.Gamma * float64(p.Quantity)
	p.Theta = q.Theta * float64(p.Quantity)
	p.Vega = q.Vega * float64(p.Quantity)
	p.Volatility = q.Volatility
}
