package ledger

import (
	"testing"

	"github.com/iotmesh/datasink/orgcache"
)

func TestDebitIfSufficient(t *testing.T) {
	b := NewBalances()
	b.Set("acme", 100)

	if !b.DebitIfSufficient("acme", 100) {
		t.Fatal("expected balance exactly equal to amount to be sufficient")
	}
	if b.DebitIfSufficient("acme", 101) {
		t.Fatal("expected balance less than amount to be insufficient")
	}
	if got, _ := b.Get("acme"); got != 100 {
		t.Fatalf("DebitIfSufficient must not mutate the balance, got %d", got)
	}
}

func TestDebitIfSufficientUnknownPayer(t *testing.T) {
	b := NewBalances()
	if b.DebitIfSufficient(orgcache.Payer("ghost"), 1) {
		t.Fatal("expected unknown payer to be insufficient")
	}
}

func TestApplyBurnDecrements(t *testing.T) {
	b := NewBalances()
	b.Set("acme", 10_000)
	b.ApplyBurn("acme", 10_000)
	if got, _ := b.Get("acme"); got != 0 {
		t.Fatalf("got balance %d, want 0 after full burn", got)
	}
}
