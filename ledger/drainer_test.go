package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iotmesh/datasink/orgcache"
)

type fakeStore struct {
	mu   sync.Mutex
	rows map[orgcache.Payer]int64
}

func newFakeStore() *fakeStore { return &fakeStore{rows: make(map[orgcache.Payer]int64)} }

func (f *fakeStore) OldestAboveThreshold(_ context.Context, threshold int64) (Row, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for payer, amt := range f.rows {
		if amt >= threshold {
			return Row{Payer: payer, Amount: amt}, true, nil
		}
	}
	return Row{}, false, nil
}

func (f *fakeStore) Settle(_ context.Context, payer orgcache.Payer, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[payer] -= amount
	if f.rows[payer] <= 0 {
		delete(f.rows, payer)
	}
	return nil
}

type countingBurner struct {
	mu    sync.Mutex
	calls int
}

func (c *countingBurner) Burn(context.Context, orgcache.Payer, int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

// S6 — below threshold: drainer must not transact.
func TestBurnDrainerBelowThresholdDoesNotTransact(t *testing.T) {
	store := newFakeStore()
	store.rows["acme"] = BurnThreshold - 1

	balances := NewBalances()
	balances.Set("acme", 1_000_000)
	burner := &countingBurner{}
	d := newBurnDrainer(store, balances, burner, time.Hour)

	d.tick()

	if burner.calls != 0 {
		t.Fatalf("expected no burn transaction below threshold, got %d", burner.calls)
	}
	if store.rows["acme"] != BurnThreshold-1 {
		t.Fatalf("row must be untouched below threshold, got %d", store.rows["acme"])
	}
}

// S6 — at threshold: exactly one transaction, row and balance both
// decremented atomically (from the caller's view — tick runs to
// completion before returning).
func TestBurnDrainerAtThresholdTransactsOnce(t *testing.T) {
	store := newFakeStore()
	store.rows["acme"] = BurnThreshold

	balances := NewBalances()
	balances.Set("acme", 1_000_000)
	burner := &countingBurner{}
	d := newBurnDrainer(store, balances, burner, time.Hour)

	d.tick()

	if burner.calls != 1 {
		t.Fatalf("expected exactly 1 burn transaction at threshold, got %d", burner.calls)
	}
	if _, present := store.rows["acme"]; present {
		t.Fatalf("expected row fully settled and removed, got %d", store.rows["acme"])
	}
	if got, _ := balances.Get("acme"); got != 1_000_000-BurnThreshold {
		t.Fatalf("got balance %d, want %d", got, 1_000_000-BurnThreshold)
	}
}

func TestBurnDrainerDrainsMultipleQualifyingRowsInOneTick(t *testing.T) {
	store := newFakeStore()
	store.rows["acme"] = BurnThreshold
	store.rows["globex"] = BurnThreshold * 2

	balances := NewBalances()
	balances.Set("acme", 50_000)
	balances.Set("globex", 50_000)
	burner := &countingBurner{}
	d := newBurnDrainer(store, balances, burner, time.Hour)

	d.tick()

	if burner.calls != 2 {
		t.Fatalf("expected both qualifying rows drained in one tick, got %d calls", burner.calls)
	}
}
