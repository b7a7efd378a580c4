// Package provider fetches option chain snapshots from the market data
// vendor.
package provider

import (
	"context"
	"fmt"

	"github.com/optrader/optrader/internal/chain"
)

// Provider returns one chain snapshot per call. Implementations must be safe
// for concurrent use; the live fetcher issues one call per ticker in
// parallel within a batch.
type Provider interface {
	OptionChain(ctx context.Context, ticker, maxExpiration string, strikeCount int) (*chain.Chain, error)
}

// RequestError wraps a per-ticker fetch failure so callers can skip the
// ticker without losing the cause.
type RequestError struct {
	Ticker  string
	Message string
	Cause   error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Ticker, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.Ticker, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Cause }
