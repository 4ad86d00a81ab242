package orgcache

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/iotmesh/datasink/rpcx"
)

type fakeRPC struct {
	getCalls     int32
	enableCalls  int32
	disableCalls int32
	payer        string
}

func (f *fakeRPC) GetOrg(_ context.Context, _ uint64) (rpcx.OrgGetResponse, error) {
	atomic.AddInt32(&f.getCalls, 1)
	return rpcx.OrgGetResponse{Payer: f.payer}, nil
}

func (f *fakeRPC) Enable(_ context.Context, _ *rpcx.SignedOrgRequest) error {
	atomic.AddInt32(&f.enableCalls, 1)
	return nil
}

func (f *fakeRPC) Disable(_ context.Context, _ *rpcx.SignedOrgRequest) error {
	atomic.AddInt32(&f.disableCalls, 1)
	return nil
}

func TestFetchOrgCachesAfterFirstCall(t *testing.T) {
	rpc := &fakeRPC{payer: "acme"}
	cs := newRPCConfigServer(rpc, NewEd25519Signer(testKey(t)))

	for i := 0; i < 5; i++ {
		p, err := cs.FetchOrg(context.Background(), 42)
		if err != nil {
			t.Fatal(err)
		}
		if p != "acme" {
			t.Fatalf("got payer %q, want acme", p)
		}
	}
	if rpc.getCalls != 1 {
		t.Fatalf("expected exactly one GetOrg RPC, got %d", rpc.getCalls)
	}
}

func TestFetchOrgDistinctOUIsEachFetchOnce(t *testing.T) {
	rpc := &fakeRPC{payer: "acme"}
	cs := newRPCConfigServer(rpc, NewEd25519Signer(testKey(t)))

	for _, oui := range []uint64{1, 2, 3, 1, 2, 3} {
		if _, err := cs.FetchOrg(context.Background(), oui); err != nil {
			t.Fatal(err)
		}
	}
	if rpc.getCalls != 3 {
		t.Fatalf("expected 3 GetOrg RPCs (one per distinct oui), got %d", rpc.getCalls)
	}
}

// Property: a run of enable/disable calls fires an RPC only on a local
// state transition, never once per call.
func TestEnableDisableEdgeTriggered(t *testing.T) {
	rpc := &fakeRPC{}
	cs := newRPCConfigServer(rpc, NewEd25519Signer(testKey(t)))
	ctx := context.Background()

	if err := cs.EnableOrg(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if err := cs.EnableOrg(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if err := cs.EnableOrg(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if rpc.enableCalls != 1 {
		t.Fatalf("expected 1 Enable RPC across 3 redundant calls, got %d", rpc.enableCalls)
	}

	if err := cs.DisableOrg(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if err := cs.DisableOrg(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if rpc.disableCalls != 1 {
		t.Fatalf("expected 1 Disable RPC across 2 redundant calls, got %d", rpc.disableCalls)
	}

	if err := cs.EnableOrg(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if rpc.enableCalls != 2 {
		t.Fatalf("expected a second Enable RPC after a disable->enable transition, got %d", rpc.enableCalls)
	}
}

func TestEnableDisableIndependentPerOUI(t *testing.T) {
	rpc := &fakeRPC{}
	cs := newRPCConfigServer(rpc, NewEd25519Signer(testKey(t)))
	ctx := context.Background()

	if err := cs.EnableOrg(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if err := cs.EnableOrg(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if rpc.enableCalls != 2 {
		t.Fatalf("expected one Enable RPC per distinct oui, got %d", rpc.enableCalls)
	}
}
