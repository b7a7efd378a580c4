// Package trader wires the fetch loop, action processor, and reporting into
// one runnable unit.
package trader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/optrader/optrader/internal/action"
	"github.com/optrader/optrader/internal/alerts"
	"github.com/optrader/optrader/internal/chain"
	"github.com/optrader/optrader/internal/config"
	"github.com/optrader/optrader/internal/fetcher"
	"github.com/optrader/optrader/internal/ledger"
	"github.com/optrader/optrader/internal/observ"
	"github.com/optrader/optrader/internal/portfolio"
)

// Trader owns the production and consumption sides of the action queue and
// runs one of two modes: a live scan loop on a fixed frequency, or a one-shot
// replay of a recorded day.
type Trader struct {
	cfg       *config.Config
	queue     *action.Queue
	processor *action.Processor
	managers  []*portfolio.Manager
	live      fetcher.DataFetcher
	replay    fetcher.DataFetcher
	alerter   alerts.Alerter
}

func New(cfg *config.Config, q *action.Queue, p *action.Processor,
	managers []*portfolio.Manager, live, replay fetcher.DataFetcher, alerter alerts.Alerter) *Trader {

	return &Trader{
		cfg:       cfg,
		queue:     q,
		processor: p,
		managers:  managers,
		live:      live,
		replay:    replay,
		alerter:   alerter,
	}
}

// Start runs until the context ends (live mode) or the replayed day has been
// fully processed (replay mode). The processor goroutine it spawns exits
// with the context.
func (t *Trader) Start(ctx context.Context) error {
	go t.processor.Run(ctx)

	if t.cfg.Scanner.EnableReplay {
		return t.runReplay(ctx)
	}
	return t.runLive(ctx)
}

func (t *Trader) runReplay(ctx context.Context) error {
	if err := t.replay.Run(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		if t.queue.Len() == 0 {
			observ.Log("replay_complete", map[string]any{"date": t.cfg.Scanner.ReplayDate})
			t.sendEODReport(ctx)
			return nil
		}
		observ.Log("replay_draining", map[string]any{"remaining": t.queue.Len()})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (t *Trader) runLive(ctx context.Context) error {
	t.scheduleEOD(ctx)

	frequency := time.Duration(t.cfg.Scanner.ScanFrequencySeconds) * time.Second
	ticker := time.NewTicker(frequency)
	defer ticker.Stop()

	for {
		if err := t.live.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			observ.LogError("scan_cycle_failed", err, nil)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// scheduleEOD arms a timer for today's report time. A start after that time
// means no report today.
func (t *Trader) scheduleEOD(ctx context.Context) {
	if t.alerter == nil || !t.cfg.Alerts.Enabled {
		return
	}
	at, err := time.ParseInLocation("15:04:05", t.cfg.Alerts.EODReportTime, time.Local)
	if err != nil {
		observ.LogError("eod_schedule_failed", err, map[string]any{
			"time": t.cfg.Alerts.EODReportTime,
		})
		return
	}
	now := time.Now()
	target := time.Date(now.Year(), now.Month(), now.Day(),
		at.Hour(), at.Minute(), at.Second(), 0, time.Local)
	if !target.After(now) {
		observ.Log("eod_report_skipped", map[string]any{"target": target.Format(time.RFC3339)})
		return
	}

	timer := time.AfterFunc(target.Sub(now), func() { t.sendEODReport(ctx) })
	context.AfterFunc(ctx, func() { timer.Stop() })
}

// sendEODReport summarizes every manager's book and delivers it through the
// alerter. Delivery failures are logged, never fatal.
func (t *Trader) sendEODReport(ctx context.Context) {
	if t.alerter == nil {
		return
	}

	var b strings.Builder
	for _, m := range t.managers {
		positions, err := m.Store().Positions(ctx, m.Collection())
		if err != nil {
			observ.LogError("eod_report_failed", err, map[string]any{"manager": m.Name()})
			return
		}
		var open, closed int
		var realized, unrealized float64
		for _, pos := range positions {
			if pos.Status == ledger.StatusOpen {
				open++
				unrealized += ledger.Notional(pos.LastPrice, pos.Quantity) - pos.BuyNotional
			} else {
				closed++
			}
			realized += pos.RealizedPnL
		}
		fmt.Fprintf(&b, "%s: %d open, %d closed, realized %.2f, unrealized %.2f\n",
			m.Name(), open, closed, realized, unrealized)
		for _, pos := range positions {
			if pos.Status != ledger.StatusOpen {
				continue
			}
			b.WriteString(describePosition(pos))
		}
	}

	subject := "EOD report " + time.Now().Format("2006-01-02")
	if err := t.alerter.Send(ctx, subject, b.String()); err != nil {
		observ.LogError("eod_report_send_failed", err, nil)
		return
	}
	observ.Log("eod_report_sent", nil)
}

// describePosition renders one open position as a report detail line. Option
// symbols are broken out into contract, strike, expiration, and expiry
// tranche; symbols that do not parse fall back to the bare summary.
func describePosition(pos *ledger.Position) string {
	if !pos.IsOption() {
		return fmt.Sprintf("  %s: %d shares @ %.2f\n", pos.Symbol, pos.Quantity, pos.BuyPrice)
	}
	strike, expiration, contract, err := chain.ParseOptionSymbol(pos.Symbol)
	if err != nil {
		return fmt.Sprintf("  %s: qty %d @ %.2f\n", pos.Symbol, pos.Quantity, pos.BuyPrice)
	}
	tranche := chain.TrancheShort
	if expiry, perr := time.ParseInLocation("2006-01-02", expiration, time.Local); perr == nil {
		dte := int(time.Until(expiry).Hours() / 24)
		tranche = chain.Tranche(chain.Quote{DaysToExpiration: dte})
	}
	return fmt.Sprintf("  %s: %d %s @ strike %s, expires %s (%s)\n",
		pos.Symbol, pos.Quantity, contract, strike, expiration, tranche)
}
