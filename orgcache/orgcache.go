package orgcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iotmesh/datasink/cmn/cos"
	"github.com/iotmesh/datasink/rpcx"
)

// Payer is the payer identity a given OUI's traffic is billed against.
type Payer string

// ConfigServer is the collaborator interface the verifier pipeline consumes
// (spec §4.E/§4.G): fetch_org plus edge-triggered enable/disable.
type ConfigServer interface {
	FetchOrg(ctx context.Context, oui uint64) (Payer, error)
	EnableOrg(ctx context.Context, oui uint64) error
	DisableOrg(ctx context.Context, oui uint64) error
}

// orgRPC is the subset of *rpcx.OrgServiceClient this package depends on;
// declared here so tests can substitute a fake without a live gRPC server.
type orgRPC interface {
	GetOrg(ctx context.Context, oui uint64) (rpcx.OrgGetResponse, error)
	Enable(ctx context.Context, req *rpcx.SignedOrgRequest) error
	Disable(ctx context.Context, req *rpcx.SignedOrgRequest) error
}

// RPCConfigServer is the production ConfigServer: an unbounded, never-
// evicted OUI->Payer cache (spec §3 "Org cache") plus a single shared
// enabled/disabled flag per OUI (default false for a newly-seen OUI, spec
// §9 Open Questions) that gates whether enable_org/disable_org actually
// issue the signed RPC.
type RPCConfigServer struct {
	client orgRPC
	signer Signer

	mu      sync.RWMutex
	cache   map[uint64]Payer
	enabled map[uint64]bool
}

func NewRPCConfigServer(client *rpcx.OrgServiceClient, signer Signer) *RPCConfigServer {
	return newRPCConfigServer(client, signer)
}

func newRPCConfigServer(client orgRPC, signer Signer) *RPCConfigServer {
	return &RPCConfigServer{
		client:  client,
		signer:  signer,
		cache:   make(map[uint64]Payer),
		enabled: make(map[uint64]bool),
	}
}

// FetchOrg implements spec §4.E "fetch_org": cache hit returns immediately;
// a miss round-trips to the config service and populates the cache.
func (s *RPCConfigServer) FetchOrg(ctx context.Context, oui uint64) (Payer, error) {
	s.mu.RLock()
	if p, ok := s.cache[oui]; ok {
		s.mu.RUnlock()
		return p, nil
	}
	s.mu.RUnlock()

	resp, err := s.client.GetOrg(ctx, oui)
	if err != nil {
		return "", cos.NewErrConfig("get_org", err)
	}
	payer := Payer(resp.Payer)

	s.mu.Lock()
	s.cache[oui] = payer
	s.mu.Unlock()
	return payer, nil
}

// EnableOrg implements spec §4.E "enable_org": RPC only on a false->true
// transition of the local flag.
func (s *RPCConfigServer) EnableOrg(ctx context.Context, oui uint64) error {
	s.mu.Lock()
	was := s.enabled[oui]
	s.enabled[oui] = true
	s.mu.Unlock()
	if was {
		return nil
	}
	req, err := s.signedRequest(oui)
	if err != nil {
		return cos.NewErrConfig("enable", err)
	}
	if err := s.client.Enable(ctx, req); err != nil {
		return cos.NewErrConfig("enable", err)
	}
	return nil
}

// DisableOrg implements spec §4.E "disable_org": RPC only on a
// true->false transition of the local flag.
func (s *RPCConfigServer) DisableOrg(ctx context.Context, oui uint64) error {
	s.mu.Lock()
	was := s.enabled[oui]
	s.enabled[oui] = false
	s.mu.Unlock()
	if !was {
		return nil
	}
	req, err := s.signedRequest(oui)
	if err != nil {
		return cos.NewErrConfig("disable", err)
	}
	if err := s.client.Disable(ctx, req); err != nil {
		return cos.NewErrConfig("disable", err)
	}
	return nil
}

// signedRequest builds the unsigned encoding (oui + millisecond timestamp),
// signs it, and attaches the signature and public key.
func (s *RPCConfigServer) signedRequest(oui uint64) (*rpcx.SignedOrgRequest, error) {
	req := &rpcx.SignedOrgRequest{
		OUI:         oui,
		TimestampMs: time.Now().UnixMilli(),
		Signer:      s.signer.PublicKey(),
	}
	unsigned := unsignedBytes(req)
	sig, err := s.signer.Sign(unsigned)
	if err != nil {
		return nil, err
	}
	req.Signature = sig
	return req, nil
}

// unsignedBytes is the canonical encoding signed over: deterministic given
// OUI, timestamp, and signer public key, with signature always absent.
func unsignedBytes(req *rpcx.SignedOrgRequest) []byte {
	return []byte(fmt.Sprintf("oui=%d;ts=%d;signer=%x", req.OUI, req.TimestampMs, req.Signer))
}
