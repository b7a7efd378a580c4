package portfolio

// Params are the risk and cost parameters one portfolio trades under.
// They are constructed once at startup and passed by value into whatever
// needs them; there is no ambient global copy.
type Params struct {
	MaxVolatility         float64
	MinVolatility         float64
	BaseLiquidity         float64
	RiskFreeRate          float64
	CommissionPerContract float64
}

// DefaultParams returns the stock parameter set.
func DefaultParams() Params {
	return Params{
		MaxVolatility:         0.50,
		MinVolatility:         0.20,
		BaseLiquidity:         10000.00,
		RiskFreeRate:          0.005,
		CommissionPerContract: 0.65,
	}
}
