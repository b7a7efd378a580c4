// Package pricing estimates option values with the Black-Scholes model,
// both in closed form and by Monte Carlo simulation.
package pricing

import (
	"math"
	"math/rand"
)

const monteCarloPaths = 10000

// CallPrice returns the closed-form Black-Scholes price of a European call.
func CallPrice(spot, strike, timeToMaturity, riskFreeRate, volatility float64) float64 {
	d1 := (math.Log(spot/strike) + (riskFreeRate+volatility*volatility/2)*timeToMaturity) /
		(volatility * math.Sqrt(timeToMaturity))
	d2 := d1 - volatility*math.Sqrt(timeToMaturity)
	return spot*normCDF(d1) - strike*math.Exp(-riskFreeRate*timeToMaturity)*normCDF(d2)
}

// MonteCarloEstimate prices a European call by simulating terminal spot
// prices under the risk-neutral drift and discounting the mean payoff.
func MonteCarloEstimate(spot, strike, timeToMaturity, riskFreeRate, volatility float64) float64 {
	drift := (riskFreeRate - 0.5*volatility*volatility) * timeToMaturity
	diffusion := volatility * math.Sqrt(timeToMaturity)

	var sum float64
	for i := 0; i < monteCarloPaths; i++ {
		price := spot * math.Exp(drift+diffusion*rand.NormFloat64())
		sum += math.Max(price-strike, 0)
	}
	return math.Exp(-riskFreeRate*timeToMaturity) * sum / monteCarloPaths
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
