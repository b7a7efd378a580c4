package provider

import (
	"context"
	"sync"
	"time"

	"github.com/optrader/optrader/internal/chain"
)

// Mock is a canned Provider for tests. Each call records the requested
// ticker; responses come from Chains with Errs taking precedence. Delays
// stalls individual tickers, Delay stalls every call.
type Mock struct {
	mu     sync.Mutex
	Chains map[string]*chain.Chain
	Errs   map[string]error
	Delay  time.Duration
	Delays map[string]time.Duration
	Calls  []string
}

func NewMock() *Mock {
	return &Mock{
		Chains: make(map[string]*chain.Chain),
		Errs:   make(map[string]error),
		Delays: make(map[string]time.Duration),
	}
}

func (m *Mock) OptionChain(ctx context.Context, ticker, maxExpiration string, strikeCount int) (*chain.Chain, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, ticker)
	err := m.Errs[ticker]
	ch := m.Chains[ticker]
	delay := m.Delay
	if d, ok := m.Delays[ticker]; ok {
		delay = d
	}
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, &RequestError{Ticker: ticker, Message: "mock error", Cause: err}
	}
	if ch == nil {
		return nil, &RequestError{Ticker: ticker, Message: "no chain configured"}
	}
	return ch, nil
}

// CallCount returns how many fetches have been issued.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
