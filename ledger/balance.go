// Package ledger implements the debit/burn ledger interface (spec §4.F):
// a read-only "debit if sufficient" balance check, an upsert-based
// pending-burns accumulator backed by Postgres, and a background worker
// that drains accumulated burns past a fixed threshold.
package ledger

import (
	"sync"

	"github.com/iotmesh/datasink/orgcache"
)

// BurnThreshold is the fixed pending-amount at or above which the drain
// worker executes a burn transaction for a payer (spec §4.F).
const BurnThreshold = 10_000

// Balances is the in-memory, per-payer available-credit map consulted by
// DebitIfSufficient. Production never decrements it directly on debit; the
// burn worker decrements it only on confirmed on-chain burn (spec §4.F /
// §9 Open Questions: "avoid double-accounting").
type Balances struct {
	mu  sync.Mutex
	bal map[orgcache.Payer]*int64
}

func NewBalances() *Balances {
	return &Balances{bal: make(map[orgcache.Payer]*int64)}
}

// Set seeds a payer's available balance, as a test fixture or an initial
// load from an external accounting system would.
func (b *Balances) Set(payer orgcache.Payer, amount int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v := amount
	b.bal[payer] = &v
}

// DebitIfSufficient reports whether payer's available balance is >=
// amount. It never mutates the balance: spec §4.F defers the actual debit
// to the burn worker, and the pending-burns accumulator absorbs the
// decrement once a burn transaction confirms.
func (b *Balances) DebitIfSufficient(payer orgcache.Payer, amount int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.bal[payer]
	if !ok {
		return false
	}
	return *v >= amount
}

// ApplyBurn decrements the in-memory balance by amount once a burn
// transaction has confirmed on-chain; called only by BurnDrainer.
func (b *Balances) ApplyBurn(payer orgcache.Payer, amount int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.bal[payer]; ok {
		*v -= amount
	}
}

// Get returns a payer's current available balance, for tests.
func (b *Balances) Get(payer orgcache.Payer) (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.bal[payer]
	if !ok {
		return 0, false
	}
	return *v, true
}
