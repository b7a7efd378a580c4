package strategy

import (
	"context"

	"github.com/optrader/optrader/internal/chain"
	"github.com/optrader/optrader/internal/ledger"
	"github.com/optrader/optrader/internal/observ"
	"github.com/optrader/optrader/internal/signal"
)

// volumeDeviations is the number of standard deviations above the mean a
// contract's volume must sit to count as unusual.
const volumeDeviations = 4

// UnusualVolume scans the call side of a chain for contracts trading at
// anomalously high volume relative to their expiration group, then walks
// existing positions through the exit signal chain.
type UnusualVolume struct {
	*BaseStrategy

	entrySignals []signal.Entry
	exitSignals  []signal.Exit

	latestChain  *chain.Chain
	latestQuotes map[string]*chain.Quote
}

func NewUnusualVolume(base *BaseStrategy, entries []signal.Entry, exits []signal.Exit) *UnusualVolume {
	return &UnusualVolume{
		BaseStrategy: base,
		entrySignals: entries,
		exitSignals:  exits,
	}
}

// Run evaluates one chain snapshot: entry scan over every call expiration
// group, then exit evaluation for every stored position. The snapshot's
// flattened quote map is held for the duration so exits always see the same
// prices the entry scan saw.
func (s *UnusualVolume) Run(ctx context.Context, ch *chain.Chain) error {
	s.latestChain = ch
	s.latestQuotes = ch.Flatten()

	for _, date := range ch.Calls.SortedDates() {
		s.markHighVolume(ctx, ch.Calls[date])
	}

	positions, err := s.Store.Positions(ctx, s.Collection)
	if err != nil {
		return err
	}
	for _, pos := range positions {
		s.checkExitSignals(ctx, pos, 1)
	}
	return nil
}

// markHighVolume computes the volume mean and standard deviation over the
// liquid contracts in one expiration group and enters any contract whose
// volume clears mean plus volumeDeviations sigma.
func (s *UnusualVolume) markHighVolume(ctx context.Context, strikes map[string][]chain.Quote) {
	filtered := make(map[string]chain.Quote)
	for _, strike := range chain.SortedStrikes(strikes) {
		quotes := strikes[strike]
		if len(quotes) == 0 {
			continue
		}
		q := quotes[0]
		if q.TotalVolume > 10 && q.Ask > 0.10 && q.Bid > 0.10 {
			filtered[strike] = q
		}
	}

	mean := chain.MeanVolume(filtered)
	sigma := chain.StdDevVolume(filtered, mean)
	threshold := mean + volumeDeviations*sigma

	for _, strike := range chain.SortedStrikes(strikes) {
		q, ok := filtered[strike]
		if !ok {
			continue
		}
		if float64(q.TotalVolume) > threshold {
			s.checkEntrySignals(ctx, &q, 1)
		}
	}
}

// checkEntrySignals runs the entry chain in order with AND semantics; the
// first signal that declines aborts the entry. Entry failures are logged and
// do not stop the scan.
func (s *UnusualVolume) checkEntrySignals(ctx context.Context, q *chain.Quote, qty int) {
	for _, sig := range s.entrySignals {
		sig.SetContext(q, s.latestChain)
		if !sig.Trigger() {
			return
		}
	}
	if err := s.EnterOption(ctx, q, qty); err != nil {
		observ.LogError("entry_failed", err, map[string]any{"symbol": q.Symbol})
	}
}

// checkExitSignals runs the exit chain in order with AND semantics against
// the position's quote from the current snapshot. A position whose symbol is
// absent from the snapshot cannot be priced and is left alone.
func (s *UnusualVolume) checkExitSignals(ctx context.Context, pos *ledger.Position, qty int) {
	q, ok := s.latestQuotes[pos.Symbol]
	if !ok {
		observ.Log("exit_aborted_no_quote", map[string]any{"symbol": pos.Symbol})
		return
	}
	for _, sig := range s.exitSignals {
		sig.SetContext(pos, q)
		if !sig.Trigger() {
			return
		}
	}
	if err := s.Exit(ctx, pos, q, qty); err != nil {
		observ.LogError("exit_failed", err, map[string]any{"symbol": pos.Symbol})
	}
}
