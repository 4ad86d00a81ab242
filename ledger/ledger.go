package ledger

import (
	"context"

	"github.com/iotmesh/datasink/orgcache"
)

// Ledger composes the in-memory balance check with the durable burn
// accumulator, presenting the single collaborator surface the verifier
// pipeline drives (spec §4.F / §6 "Ledger store").
type Ledger struct {
	Balances *Balances
	Store    *Store
}

func New(balances *Balances, store *Store) *Ledger {
	return &Ledger{Balances: balances, Store: store}
}

// DebitIfSufficient is a read-only check; production never decrements the
// balance here (spec §9 Open Questions).
func (l *Ledger) DebitIfSufficient(payer orgcache.Payer, amount int64) bool {
	return l.Balances.DebitIfSufficient(payer, amount)
}

// Burn upserts into pending_burns; the in-memory balance is only
// decremented later, by BurnDrainer, once the burn transaction confirms.
func (l *Ledger) Burn(ctx context.Context, payer orgcache.Payer, amount int64) error {
	return l.Store.Burn(ctx, payer, amount)
}
