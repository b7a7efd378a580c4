// Package signal provides composable boolean gates evaluated before a
// position is entered or exited. A chain of signals is evaluated in fixed
// order with AND short-circuit semantics; the context fields a signal reads
// are set immediately before each evaluation.
package signal

import (
	"github.com/optrader/optrader/internal/chain"
	"github.com/optrader/optrader/internal/ledger"
)

// Signal is a boolean gate.
type Signal interface {
	Trigger() bool
}

// Entry is a gate on entering a position. At minimum it sees the candidate
// quote and the chain it came from.
type Entry interface {
	Signal
	SetContext(q *chain.Quote, ch *chain.Chain)
}

// Exit is a gate on exiting a position. At minimum it sees the candidate
// position and its current matching quote.
type Exit interface {
	Signal
	SetContext(pos *ledger.Position, q *chain.Quote)
}

// BaseEntry holds the minimum entry context and triggers unconditionally.
// Concrete entry signals embed it and override Trigger.
type BaseEntry struct {
	Quote *chain.Quote
	Chain *chain.Chain
}

func (s *BaseEntry) SetContext(q *chain.Quote, ch *chain.Chain) {
	s.Quote = q
	s.Chain = ch
}

func (s *BaseEntry) Trigger() bool { return true }

// BaseExit holds the minimum exit context and triggers unconditionally.
// Concrete exit signals embed it and override Trigger.
type BaseExit struct {
	Position *ledger.Position
	Quote    *chain.Quote
}

func (s *BaseExit) SetContext(pos *ledger.Position, q *chain.Quote) {
	s.Position = pos
	s.Quote = q
}

func (s *BaseExit) Trigger() bool { return true }
