package ledger

import "testing"

func TestValidateSchema(t *testing.T) {
	if err := ValidateSchema(); err != nil {
		t.Fatalf("schema out of sync with Position: %v", err)
	}
}

func TestChainKey(t *testing.T) {
	if got := ChainKey("SPY", 12); got != "SPY_12" {
		t.Fatalf("want SPY_12, got %q", got)
	}
}
