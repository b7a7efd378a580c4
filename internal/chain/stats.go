package chain

import "math"

// Round2 rounds a value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MeanVolume returns the mean total volume over the quotes, rounded to two
// decimal places. An empty set yields 0.
func MeanVolume(quotes map[string]Quote) float64 {
	if len(quotes) == 0 {
		return 0
	}
	var total int64
	for _, q := range quotes {
		total += q.TotalVolume
	}
	return Round2(float64(total) / float64(len(quotes)))
}

// StdDevVolume returns the population standard deviation of total volume
// around the given mean, rounded to two decimal places. An empty set yields 0.
func StdDevVolume(quotes map[string]Quote, mean float64) float64 {
	if len(quotes) == 0 {
		return 0
	}
	var variance float64
	for _, q := range quotes {
		diff := mean - float64(q.TotalVolume)
		variance += diff * diff
	}
	return Round2(math.Sqrt(variance / float64(len(quotes))))
}
