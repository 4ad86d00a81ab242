// Package verifier implements the packet verification pipeline (spec
// §4.G): per-report debit accounting against (E)/(F), per-pass
// deduplication, and classification into valid/invalid output streams.
package verifier

import (
	"context"

	"github.com/iotmesh/datasink/cmn/cos"
	"github.com/iotmesh/datasink/orgcache"
)

// debitQuantum is the fixed unit of billable payload; undersize payloads
// still cost one unit (spec §4.G step 1).
const debitQuantum = 24

// Report is one packet report consumed by a pass.
type Report struct {
	GatewayTimestampMs uint64
	OUI                uint64
	PayloadHash        string
	PayloadSize        int64
	Gateway            string
}

// ValidPacket and InvalidPacket are the two classification outputs.
type (
	ValidPacket struct {
		PayloadSize int64
		Gateway     string
		PayloadHash string
	}
	InvalidPacket struct {
		PayloadSize int64
		Gateway     string
		PayloadHash string
	}
)

// PacketWriter generalizes the valid/invalid output sinks so tests can
// substitute an in-memory slice writer in place of a filesink-backed one.
type PacketWriter[T any] interface {
	Write(ctx context.Context, p T) error
}

// SliceWriter is a PacketWriter that appends to an in-memory slice,
// mirroring the Rust test suite's &mut Vec<T> collaborator.
type SliceWriter[T any] struct {
	Items []T
}

func (w *SliceWriter[T]) Write(_ context.Context, p T) error {
	w.Items = append(w.Items, p)
	return nil
}

// Ledger is the subset of the ledger package's surface the verifier
// drives (spec §4.F).
type Ledger interface {
	DebitIfSufficient(payer orgcache.Payer, amount int64) bool
	Burn(ctx context.Context, payer orgcache.Payer, amount int64) error
}

// ConfigServer is the subset of orgcache's surface the verifier drives
// (spec §4.E).
type ConfigServer interface {
	FetchOrg(ctx context.Context, oui uint64) (orgcache.Payer, error)
	EnableOrg(ctx context.Context, oui uint64) error
	DisableOrg(ctx context.Context, oui uint64) error
}

// packetID is the pass-local dedup key (spec §3/§4.G step 2).
type packetID struct {
	gatewayTimestampMs uint64
	oui                uint64
	payloadHash        string
}

// Verifier runs one pass over a report stream. It holds no state between
// passes beyond what its collaborators persist; the seen-set below is
// reset on every call to Run.
type Verifier struct {
	Config  ConfigServer
	Ledger  Ledger
	Valid   PacketWriter[ValidPacket]
	Invalid PacketWriter[InvalidPacket]
}

func debitAmount(payloadSize int64) int64 {
	size := payloadSize
	if size < debitQuantum {
		size = debitQuantum
	}
	return size / debitQuantum
}

// Run consumes reports from a lazy, possibly-infinite stream (spec §4.G
// "Input"), classifying each into the valid or invalid stream in order.
// It returns once reports is closed, ctx is cancelled, or the pass
// fails fast on the first collaborator error, tagged with its origin.
// Mirrors filesink.Sink.Run's own "drain a channel until closed or
// cancelled" shape (spec §4.C), the idiomatic Go rendition of a lazy
// stream.
func (v *Verifier) Run(ctx context.Context, reports <-chan Report) error {
	seen := make(map[packetID]struct{})

	for {
		var r Report
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rr, ok := <-reports:
			if !ok {
				return nil
			}
			r = rr
		}

		amount := debitAmount(r.PayloadSize)

		id := packetID{r.GatewayTimestampMs, r.OUI, r.PayloadHash}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		payer, err := v.Config.FetchOrg(ctx, r.OUI)
		if err != nil {
			return cos.NewErrConfig("fetch_org", err)
		}

		if v.Ledger.DebitIfSufficient(payer, amount) {
			if err := v.Ledger.Burn(ctx, payer, amount); err != nil {
				return cos.NewErrBurn(string(payer), err)
			}
			if err := v.Valid.Write(ctx, ValidPacket{r.PayloadSize, r.Gateway, r.PayloadHash}); err != nil {
				return cos.NewErrWriter("valid", err)
			}
			if err := v.Config.EnableOrg(ctx, r.OUI); err != nil {
				return cos.NewErrConfig("enable_org", err)
			}
		} else {
			if err := v.Invalid.Write(ctx, InvalidPacket{r.PayloadSize, r.Gateway, r.PayloadHash}); err != nil {
				return cos.NewErrWriter("invalid", err)
			}
			if err := v.Config.DisableOrg(ctx, r.OUI); err != nil {
				return cos.NewErrConfig("disable_org", err)
			}
		}
	}
}

// reportChan is a small test/wiring helper that feeds a finite, already
// materialized slice through a closed channel, the shape a real caller
// gets for free from any upstream producer (e.g. filesink/mchan, or a
// decoded awriter frame stream).
func reportChan(reports []Report) <-chan Report {
	ch := make(chan Report, len(reports))
	for _, r := range reports {
		ch <- r
	}
	close(ch)
	return ch
}
