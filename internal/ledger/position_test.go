package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optrader/optrader/internal/chain"
)

const commission = 0.65

func quoteAt(last float64) *chain.Quote {
	return &chain.Quote{
		Symbol:           "SPY_061926C450",
		Last:             last,
		Delta:            0.4,
		Gamma:            0.02,
		Theta:            -0.05,
		Vega:             0.11,
		Volatility:       28.5,
		DaysToExpiration: 30,
	}
}

func TestNewOptionPosition(t *testing.T) {
	p := NewOptionPosition(quoteAt(10.00), 5, commission)

	assert.Equal(t, "SPY_061926C450", p.Symbol)
	assert.Equal(t, 5, p.Quantity)
	assert.Equal(t, 10.00, p.BuyPrice)
	assert.Equal(t, 10.00, p.LastPrice)
	assert.InDelta(t, 5000.00, p.BuyNotional, 1e-9)
	assert.InDelta(t, 5000.00, p.CurrentNotional, 1e-9)
	assert.InDelta(t, 3.25, p.Commission, 1e-9)
	assert.InDelta(t, 2.0, p.Delta, 1e-9)
	assert.Equal(t, StatusOpen, p.Status)
}

func TestIncrease_ReAverages(t *testing.T) {
	p := NewOptionPosition(quoteAt(10.00), 5, commission)

	q := quoteAt(12.00)
	avg := AveragePrice(p.Quantity, p.LastPrice, 2, q.Last)
	require.InDelta(t, 74.0/7.0, avg, 1e-12)

	p.Increase(q, avg, 7, commission)

	assert.Equal(t, 7, p.Quantity)
	assert.InDelta(t, 74.0/7.0, p.BuyPrice, 1e-12)
	assert.InDelta(t, 74.0/7.0, p.LastPrice, 1e-12)
	assert.InDelta(t, 7400.00, p.CurrentNotional, 1e-6)
	assert.InDelta(t, 4.55, p.Commission, 1e-9)
	assert.InDelta(t, 0.4*7, p.Delta, 1e-9)
	assert.InDelta(t, 0.02*7, p.Gamma, 1e-9)
	assert.InDelta(t, -0.05*7, p.Theta, 1e-9)
	assert.InDelta(t, 0.11*7, p.Vega, 1e-9)
}

func TestReduce_PartialExit(t *testing.T) {
	p := NewOptionPosition(quoteAt(10.00), 5, commission)
	avg := AveragePrice(5, 10.00, 2, 12.00)
	p.Increase(quoteAt(12.00), avg, 7, commission)

	p.Reduce(quoteAt(11.00), 1, commission)

	assert.Equal(t, 6, p.Quantity)
	assert.Equal(t, StatusOpen, p.Status)
	// remaining lots at the average, no option multiplier on this field
	assert.InDelta(t, (74.0/7.0)*6, p.BuyNotional, 1e-6)
	assert.InDelta(t, 11.00-74.0/7.0, p.RealizedPnL, 1e-9)
	// round trip on the exited lot plus entry-only on the remainder
	assert.InDelta(t, 1*commission*2+6*commission, p.Commission, 1e-9)
	assert.InDelta(t, 0.4*6, p.Delta, 1e-9)
}

func TestCloseFull(t *testing.T) {
	p := NewOptionPosition(quoteAt(10.00), 5, commission)

	p.CloseFull(quoteAt(11.00), 500.0, commission)

	assert.Equal(t, StatusClosed, p.Status)
	assert.Equal(t, 0, p.Quantity)
	assert.Equal(t, 11.00, p.ClosePrice)
	assert.Zero(t, p.Delta)
	assert.Zero(t, p.Gamma)
	assert.Zero(t, p.Theta)
	assert.Zero(t, p.Vega)
	assert.Zero(t, p.CurrentNotional)
	assert.InDelta(t, 500.0, p.RealizedPnL, 1e-9)
	assert.InDelta(t, commission*2*5, p.Commission, 1e-9)
}

func TestApplyQuote(t *testing.T) {
	p := NewOptionPosition(quoteAt(10.00), 3, commission)

	q := quoteAt(10.50)
	q.Delta = 0.45
	q.Volatility = 31.0
	p.ApplyQuote(q)

	assert.Equal(t, 10.50, p.LastPrice)
	assert.InDelta(t, 0.45*3, p.Delta, 1e-9)
	assert.Equal(t, 31.0, p.Volatility)
	// entry economics untouched
	assert.Equal(t, 10.00, p.BuyPrice)
	assert.InDelta(t, 3000.00, p.BuyNotional, 1e-9)
}

func TestNotionalExactness(t *testing.T) {
	// 0.1*3 style float drift must not leak into notionals
	assert.Equal(t, 30.0, Notional(0.1, 3))
	assert.Equal(t, 0.3, ShareNotional(0.1, 3))
}

func TestAveragePrice_NegativeQuantity(t *testing.T) {
	// short positions average on absolute size
	assert.InDelta(t, 74.0/7.0, AveragePrice(-5, 10.00, 2, 12.00), 1e-12)
}

func TestNewEquityPosition(t *testing.T) {
	p := NewEquityPosition("SPY", 450.25, -60)

	assert.Equal(t, "SPY", p.Symbol)
	assert.False(t, p.IsOption())
	assert.Equal(t, -60, p.Quantity)
	assert.InDelta(t, 450.25*-60, p.BuyNotional, 1e-6)
	assert.Equal(t, StatusOpen, p.Status)
}
