package ledger

import (
	"context"
	"strconv"
)

// sequenceDocID is the sentinel document key holding a collection's
// monotonic recording sequence number.
const sequenceDocID = "sequenceNum"

// ChainKey builds the document key a recorded chain snapshot is stored
// under: ticker_sequence.
func ChainKey(ticker string, seq int) string {
	return ticker + "_" + strconv.Itoa(seq)
}

// Store is a document-oriented key/value ledger. Positions are keyed by
// symbol, recorded chains by ticker_sequence, and the per-day sequence
// counter by a sentinel key. Absent documents are reported as explicit
// not-found values, never as errors.
type Store interface {
	// GetPosition returns the position for symbol, or (nil, nil) when absent.
	GetPosition(ctx context.Context, collection, symbol string) (*Position, error)

	// PutPosition inserts or replaces the position document for p.Symbol.
	PutPosition(ctx context.Context, collection string, p *Position) error

	// Positions returns every position in the collection.
	Positions(ctx context.Context, collection string) ([]*Position, error)

	// PutChain records a serialized chain snapshot under ticker_seq.
	PutChain(ctx context.Context, collection, ticker string, seq int, doc []byte) error

	// GetChain returns the snapshot recorded under ticker_seq, or (nil, nil)
	// when absent.
	GetChain(ctx context.Context, collection, ticker string, seq int) ([]byte, error)

	// Sequence returns the collection's sequence counter and whether the
	// counter document exists.
	Sequence(ctx context.Context, collection string) (int, bool, error)

	// SetSequence inserts or replaces the collection's sequence counter.
	SetSequence(ctx context.Context, collection string, n int) error

	Close() error
}
