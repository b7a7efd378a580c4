package signal

import (
	"github.com/optrader/optrader/internal/portfolio"
	"github.com/optrader/optrader/internal/pricing"
)

// BSMPrice is an entry gate that only passes when the market price of the
// candidate call sits below a Monte Carlo Black-Scholes estimate and the
// quote's implied volatility clears the portfolio's floor.
type BSMPrice struct {
	BaseEntry
	Params portfolio.Params
}

func (s *BSMPrice) Trigger() bool {
	if s.Quote == nil || s.Chain == nil {
		return false
	}
	if s.Quote.DaysToExpiration <= 1 {
		return false
	}
	expiry := float64(s.Quote.DaysToExpiration) / 365
	volatility := s.Quote.Volatility / 100

	estimate := pricing.MonteCarloEstimate(
		s.Chain.UnderlyingPrice, s.Quote.StrikePrice, expiry, s.Params.RiskFreeRate, volatility)
	if s.Quote.Last >= estimate {
		return false
	}
	return s.Quote.Volatility > s.Params.MinVolatility
}
