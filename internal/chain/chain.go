// Package chain models a point-in-time options chain snapshot for one ticker.
package chain

import (
	"sort"

	"github.com/optrader/optrader/internal/observ"
)

// Quote is one instrument's market data and greeks at fetch time. A quote is
// never mutated after it is parsed from the provider response.
type Quote struct {
	Symbol           string  `json:"symbol"`
	Description      string  `json:"description,omitempty"`
	Last             float64 `json:"last"`
	Bid              float64 `json:"bid"`
	Ask              float64 `json:"ask"`
	StrikePrice      float64 `json:"strikePrice"`
	TotalVolume      int64   `json:"totalVolume"`
	OpenInterest     int64   `json:"openInterest"`
	Volatility       float64 `json:"volatility"`
	Delta            float64 `json:"delta"`
	Gamma            float64 `json:"gamma"`
	Theta            float64 `json:"theta"`
	Vega             float64 `json:"vega"`
	DaysToExpiration int     `json:"daysToExpiration"`
}

// ExpDateMap groups quotes by expiration date, then by strike. A strike key
// can theoretically hold more than one quote; only the first is consumed
// downstream.
type ExpDateMap map[string]map[string][]Quote

// SortedDates returns the expiration keys in lexical order so both live and
// replay runs walk the groups identically.
func (m ExpDateMap) SortedDates() []string {
	dates := make([]string, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// SortedStrikes returns the strike keys of one expiration group in lexical
// order.
func SortedStrikes(strikes map[string][]Quote) []string {
	keys := make([]string, 0, len(strikes))
	for k := range strikes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Chain is a snapshot of the options market for one ticker: calls and puts
// keyed by expiration date and strike. Chains are immutable once fetched.
type Chain struct {
	Symbol          string     `json:"symbol"`
	UnderlyingPrice float64    `json:"underlyingPrice"`
	Calls           ExpDateMap `json:"callExpDateMap"`
	Puts            ExpDateMap `json:"putExpDateMap"`
}

// Flatten indexes every quote in the chain by its symbol, calls and puts
// alike. The first quote per strike wins; extras are dropped with a
// diagnostic so the provider's one-contract-per-strike guarantee can be
// audited.
func (c *Chain) Flatten() map[string]*Quote {
	quotes := make(map[string]*Quote)
	flattenSide(c.Calls, quotes)
	flattenSide(c.Puts, quotes)
	return quotes
}

func flattenSide(side ExpDateMap, out map[string]*Quote) {
	for _, strikes := range side {
		for strike, qs := range strikes {
			if len(qs) == 0 {
				continue
			}
			if len(qs) > 1 {
				observ.Log("chain_duplicate_strike", map[string]any{
					"strike": strike, "symbol": qs[0].Symbol, "dropped": len(qs) - 1,
				})
			}
			q := qs[0]
			out[q.Symbol] = &q
		}
	}
}
