package hedge

import (
	"context"
	"testing"

	"github.com/optrader/optrader/internal/chain"
	"github.com/optrader/optrader/internal/ledger"
)

func openOption(symbol string, qty int, delta float64) *ledger.Position {
	return &ledger.Position{
		Symbol:   symbol,
		Quantity: qty,
		Delta:    delta,
		Status:   ledger.StatusOpen,
	}
}

func TestHedge_OpensShortEquityAgainstLongCalls(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	ch := &chain.Chain{Symbol: "SPY", UnderlyingPrice: 450}

	positions := []*ledger.Position{
		openOption("SPY_061926C450", 2, 1.2), // 0.6 per contract
	}

	h := NewDelta()
	if err := h.Hedge(ctx, store, "positions", ch, []string{"SPY"}, positions, 1.0); err != nil {
		t.Fatalf("hedge: %v", err)
	}

	pos, err := store.GetPosition(ctx, "positions", "SPY")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if pos == nil {
		t.Fatalf("no equity hedge opened")
	}
	// avg delta 0.6 -> -60 shares at skew 1
	if pos.Quantity != -60 {
		t.Fatalf("want -60 shares, got %d", pos.Quantity)
	}
	if pos.BuyPrice != 450 {
		t.Fatalf("hedge priced off underlying: %v", pos.BuyPrice)
	}
}

func TestHedge_SkewScalesTheHedge(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	ch := &chain.Chain{Symbol: "SPY", UnderlyingPrice: 450}

	positions := []*ledger.Position{openOption("SPY_061926C450", 2, 1.2)}

	h := NewDelta()
	if err := h.Hedge(ctx, store, "positions", ch, []string{"SPY"}, positions, 0.5); err != nil {
		t.Fatalf("hedge: %v", err)
	}

	pos, _ := store.GetPosition(ctx, "positions", "SPY")
	if pos == nil || pos.Quantity != -30 {
		t.Fatalf("want -30 shares at half skew, got %+v", pos)
	}
}

func TestHedge_ResizeRealizesPnLOnUnwind(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	h := NewDelta()

	ch := &chain.Chain{Symbol: "SPY", UnderlyingPrice: 450}
	positions := []*ledger.Position{openOption("SPY_061926C450", 2, 1.2)}
	if err := h.Hedge(ctx, store, "positions", ch, []string{"SPY"}, positions, 1.0); err != nil {
		t.Fatalf("hedge: %v", err)
	}

	// delta decayed, underlying dropped: unwind part of the short
	ch2 := &chain.Chain{Symbol: "SPY", UnderlyingPrice: 440}
	positions2 := []*ledger.Position{openOption("SPY_061926C450", 2, 0.8)} // 0.4 avg
	if err := h.Hedge(ctx, store, "positions", ch2, []string{"SPY"}, positions2, 1.0); err != nil {
		t.Fatalf("rehedge: %v", err)
	}

	pos, _ := store.GetPosition(ctx, "positions", "SPY")
	if pos.Quantity != -40 {
		t.Fatalf("want -40 shares, got %d", pos.Quantity)
	}
	// bought back 20 short shares sold at 450, covered at 440
	want := (440.0 - 450.0) * -20.0
	if pos.RealizedPnL != want {
		t.Fatalf("want realized %v, got %v", want, pos.RealizedPnL)
	}
}

func TestHedge_NoOptionsNoHedge(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	ch := &chain.Chain{Symbol: "SPY", UnderlyingPrice: 450}

	h := NewDelta()
	if err := h.Hedge(ctx, store, "positions", ch, []string{"SPY"}, nil, 1.0); err != nil {
		t.Fatalf("hedge: %v", err)
	}
	pos, _ := store.GetPosition(ctx, "positions", "SPY")
	if pos != nil {
		t.Fatalf("no options held, no hedge expected: %+v", pos)
	}
}

func TestHedge_OtherTickersIgnored(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewMemoryStore()
	ch := &chain.Chain{Symbol: "SPY", UnderlyingPrice: 450}

	positions := []*ledger.Position{openOption("QQQ_061926C380", 2, 1.2)}

	h := NewDelta()
	if err := h.Hedge(ctx, store, "positions", ch, []string{"SPY", "QQQ"}, positions, 1.0); err != nil {
		t.Fatalf("hedge: %v", err)
	}
	if pos, _ := store.GetPosition(ctx, "positions", "QQQ"); pos != nil {
		t.Fatalf("cannot hedge a ticker without its chain: %+v", pos)
	}
}
