package ledger

import (
	"context"
	"time"

	"github.com/iotmesh/datasink/cmn/nlog"
	"github.com/iotmesh/datasink/hk"
	"github.com/iotmesh/datasink/orgcache"
)

// ChainBurner submits a confirmed on-chain burn transaction for amount
// credits against payer. Production chain wiring (Solana in
// original_source/) is out of scope (spec §1); this interface is the
// reference stub the drainer depends on.
type ChainBurner interface {
	Burn(ctx context.Context, payer orgcache.Payer, amount int64) error
}

// NoopChainBurner is a reference ChainBurner that always confirms
// immediately, for tests and for running the drainer without a live
// chain connection.
type NoopChainBurner struct{}

func (NoopChainBurner) Burn(context.Context, orgcache.Payer, int64) error { return nil }

// drainStore is the subset of *Store the drainer depends on, so tests can
// substitute an in-memory fake instead of a live Postgres connection.
type drainStore interface {
	OldestAboveThreshold(ctx context.Context, threshold int64) (Row, bool, error)
	Settle(ctx context.Context, payer orgcache.Payer, amount int64) error
}

// BurnDrainer polls pending_burns for the oldest row at or above
// BurnThreshold and, on confirmation from the ChainBurner, settles the row
// and the in-memory balance (spec §4.F, supplemented from
// original_source/iot_packet_verifier/src/burner.rs).
type BurnDrainer struct {
	store     drainStore
	balances  *Balances
	chain     ChainBurner
	threshold int64
	interval  time.Duration
}

func NewBurnDrainer(store *Store, balances *Balances, chain ChainBurner, interval time.Duration) *BurnDrainer {
	return newBurnDrainer(store, balances, chain, interval)
}

func newBurnDrainer(store drainStore, balances *Balances, chain ChainBurner, interval time.Duration) *BurnDrainer {
	return &BurnDrainer{store: store, balances: balances, chain: chain, threshold: BurnThreshold, interval: interval}
}

// Start registers the drainer with hk so it runs on the shared background
// timer goroutine rather than spawning one of its own.
func (d *BurnDrainer) Start(name string) {
	hk.Reg(name, d.tick, d.interval)
}

func (d *BurnDrainer) tick() time.Duration {
	ctx := context.Background()
	for {
		row, ok, err := d.store.OldestAboveThreshold(ctx, d.threshold)
		if err != nil {
			nlog.Errorf("ledger: drain query failed: %v", err)
			return 0
		}
		if !ok {
			return 0
		}
		if err := d.chain.Burn(ctx, row.Payer, row.Amount); err != nil {
			nlog.Errorf("ledger: burn transaction failed for %s: %v", row.Payer, err)
			return 0
		}
		if err := d.store.Settle(ctx, row.Payer, row.Amount); err != nil {
			nlog.Errorf("ledger: settle failed for %s: %v", row.Payer, err)
			return 0
		}
		d.balances.ApplyBurn(row.Payer, row.Amount)
		nlog.Infof("ledger: burned %d for %s", row.Amount, row.Payer)
	}
}
