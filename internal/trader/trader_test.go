package trader

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/optrader/optrader/internal/action"
	"github.com/optrader/optrader/internal/chain"
	"github.com/optrader/optrader/internal/config"
	"github.com/optrader/optrader/internal/ledger"
	"github.com/optrader/optrader/internal/portfolio"
)

type nopStrategy struct{}

func (nopStrategy) Run(context.Context, *chain.Chain) error { return nil }

type fakeFetcher struct {
	actions []action.Action
	queue   *action.Queue
	runs    int
}

func (f *fakeFetcher) Run(ctx context.Context) error {
	f.runs++
	for _, a := range f.actions {
		f.queue.Enqueue(a)
	}
	return nil
}

type fakeAlerter struct {
	subject string
	body    string
	sends   int
}

func (a *fakeAlerter) Send(_ context.Context, subject, body string) error {
	a.sends++
	a.subject = subject
	a.body = body
	return nil
}

type nopAction struct{}

func (nopAction) Name() string { return "nop" }

func (nopAction) Process(context.Context) error { return nil }

func replayConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Scanner.EnableReplay = true
	cfg.Scanner.ReplayDate = "20260115"
	cfg.Alerts.Enabled = true
	return cfg
}

func TestStart_ReplayDrainsQueueThenReturns(t *testing.T) {
	q := action.NewQueue()
	p := action.NewProcessor(q)
	store := ledger.NewMemoryStore()
	managers := []*portfolio.Manager{
		portfolio.NewManager("uv", nopStrategy{}, store, "positions"),
	}
	replay := &fakeFetcher{queue: q, actions: []action.Action{nopAction{}, nopAction{}}}
	alerter := &fakeAlerter{}

	tr := New(replayConfig(), q, p, managers, nil, replay, alerter)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tr.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	if replay.runs != 1 {
		t.Fatalf("replay fetcher ran %d times", replay.runs)
	}
	if q.Len() != 0 {
		t.Fatalf("queue not drained: %d", q.Len())
	}
	if alerter.sends != 1 {
		t.Fatalf("replay must finish with a report, sends=%d", alerter.sends)
	}
}

func TestEODReport_SummarizesBook(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()

	open := &ledger.Position{
		Symbol: "SPY_061926C450", Quantity: 2, LastPrice: 4.00,
		BuyNotional: 600.00, Status: ledger.StatusOpen,
	}
	closed := &ledger.Position{
		Symbol: "SPY_061926C455", RealizedPnL: 120.50, Status: ledger.StatusClosed,
	}
	for _, pos := range []*ledger.Position{open, closed} {
		if err := store.PutPosition(ctx, "positions", pos); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	managers := []*portfolio.Manager{
		portfolio.NewManager("unusual_volume", nopStrategy{}, store, "positions"),
	}
	alerter := &fakeAlerter{}
	tr := New(replayConfig(), action.NewQueue(), nil, managers, nil, nil, alerter)

	tr.sendEODReport(ctx)

	if alerter.sends != 1 {
		t.Fatalf("report not sent")
	}
	if !strings.HasPrefix(alerter.subject, "EOD report ") {
		t.Fatalf("subject wrong: %q", alerter.subject)
	}
	// 2 contracts marked at 4.00 against 600 of cost: 800-600 unrealized
	if !strings.Contains(alerter.body, "unusual_volume: 1 open, 1 closed, realized 120.50, unrealized 200.00") {
		t.Fatalf("body wrong: %q", alerter.body)
	}
}

func TestEODReport_BreaksOutOpenContracts(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()

	// a contract 30 days out lands in the LONG tranche
	expiry := time.Now().AddDate(0, 0, 30)
	symbol := "SPY_" + expiry.Format("010206") + "C450"
	option := &ledger.Position{
		Symbol: symbol, Quantity: 2, LastPrice: 4.00,
		BuyNotional: 600.00, Status: ledger.StatusOpen,
	}
	equity := &ledger.Position{
		Symbol: "SPY", Quantity: -60, BuyPrice: 450.00, Status: ledger.StatusOpen,
	}
	for _, pos := range []*ledger.Position{option, equity} {
		if err := store.PutPosition(ctx, "positions", pos); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	managers := []*portfolio.Manager{
		portfolio.NewManager("unusual_volume", nopStrategy{}, store, "positions"),
	}
	alerter := &fakeAlerter{}
	tr := New(replayConfig(), action.NewQueue(), nil, managers, nil, nil, alerter)

	tr.sendEODReport(ctx)

	wantLine := "  " + symbol + ": 2 CALL @ strike 450, expires " +
		expiry.Format("2006-01-02") + " (LONG)"
	if !strings.Contains(alerter.body, wantLine) {
		t.Fatalf("option detail missing from body %q", alerter.body)
	}
	if !strings.Contains(alerter.body, "  SPY: -60 shares @ 450.00") {
		t.Fatalf("equity detail missing from body %q", alerter.body)
	}
}

func TestEODReport_NilAlerterIsSafe(t *testing.T) {
	tr := New(replayConfig(), action.NewQueue(), nil, nil, nil, nil, nil)
	tr.sendEODReport(context.Background())
}
