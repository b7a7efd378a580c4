package chain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Delimiter separates the ticker from the contract details in an option
// symbol, e.g. "SPY_061926C450".
const Delimiter = "_"

// Contract sides parsed out of an option symbol.
const (
	ContractCall = "CALL"
	ContractPut  = "PUT"
)

// Tranche labels for days-to-expiration buckets.
const (
	TrancheShort   = "SHORT"
	TrancheLong    = "LONG"
	TrancheMonthly = "MONTHLY"

	shortThresholdDays = 14
	longThresholdDays  = 50
)

var nonAlpha = regexp.MustCompile(`[^a-zA-Z ]`)

// IsOptionSymbol reports whether the symbol names an option contract rather
// than an underlying.
func IsOptionSymbol(symbol string) bool {
	return strings.Contains(symbol, Delimiter)
}

// TickerFromSymbol extracts the underlying ticker from an option symbol.
// Plain tickers are returned unchanged.
func TickerFromSymbol(symbol string) string {
	if !strings.Contains(symbol, Delimiter) {
		return symbol
	}
	return strings.SplitN(symbol, Delimiter, 2)[0]
}

// NormalizeTicker strips index decorations ("$SPX.X" -> "SPX") so tickers
// are safe to embed in store keys.
func NormalizeTicker(ticker string) string {
	if strings.HasPrefix(ticker, "$") && strings.HasSuffix(ticker, ".X") {
		trimmed := ticker[:len(ticker)-1]
		return nonAlpha.ReplaceAllString(trimmed, "")
	}
	return ticker
}

// ParseOptionSymbol splits an option symbol of the form TICKER_MMDDYY[C|P]STRIKE
// into its strike, expiration date (yyyy-mm-dd), and contract side.
func ParseOptionSymbol(symbol string) (strike, expiration, contract string, err error) {
	parts := strings.SplitN(symbol, Delimiter, 2)
	if len(parts) != 2 {
		return "", "", "", fmt.Errorf("symbol %q has no contract part", symbol)
	}
	detail := parts[1]
	sep := "C"
	contract = ContractCall
	if !strings.Contains(detail, "C") {
		sep = "P"
		contract = ContractPut
	}
	fields := strings.SplitN(detail, sep, 2)
	if len(fields) != 2 || len(fields[0]) < 6 {
		return "", "", "", fmt.Errorf("symbol %q has malformed contract part", symbol)
	}
	date := fields[0]
	strike = fields[1]
	expiration = "20" + date[4:6] + "-" + date[0:2] + "-" + date[2:4]
	return strike, expiration, contract, nil
}

// Tranche buckets a quote by how many days it has left to expiration.
func Tranche(q Quote) string {
	switch {
	case q.DaysToExpiration <= shortThresholdDays:
		return TrancheShort
	case q.DaysToExpiration < longThresholdDays:
		return TrancheLong
	default:
		return TrancheMonthly
	}
}

// Batch splits tickers into groups of at most size, preserving order.
func Batch(tickers []string, size int) [][]string {
	if size <= 0 || len(tickers) <= size {
		return [][]string{tickers}
	}
	var batches [][]string
	for i := 0; i < len(tickers); i += size {
		end := i + size
		if end > len(tickers) {
			end = len(tickers)
		}
		batches = append(batches, tickers[i:end])
	}
	return batches
}

// Date formats the date dayCount days in the past, with or without dashes.
func Date(dayCount int, dashes bool) string {
	layout := "20060102"
	if dashes {
		layout = "2006-01-02"
	}
	return time.Now().AddDate(0, 0, -dayCount).Format(layout)
}

// MaxExpirationDate returns the furthest expiration date worth requesting,
// formatted yyyy-mm-dd.
func MaxExpirationDate(daysToExpiration int) string {
	return time.Now().AddDate(0, 0, daysToExpiration).Format("2006-01-02")
}
