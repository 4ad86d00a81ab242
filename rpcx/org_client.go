package rpcx

import (
	"context"

	"google.golang.org/grpc"
)

// Wire messages for the org/config service (spec §4.E/§6). Field names
// mirror the RPCs' on-the-wire shape; the JSON codec (codec.go) uses these
// struct tags directly, so there is no separate marshaling layer to keep in
// sync.
type (
	OrgGetRequest struct {
		OUI uint64 `json:"oui"`
	}
	OrgGetResponse struct {
		Payer string `json:"payer"`
	}

	// SignedOrgRequest is the enable/disable RPC payload: "oui, a
	// millisecond timestamp, and a signature computed over the unsigned
	// request encoding" (spec §4.E). The signed bytes cover OUI,
	// TimestampMs and Signer, never Signature (see orgcache.unsignedBytes).
	SignedOrgRequest struct {
		OUI         uint64 `json:"oui"`
		TimestampMs int64  `json:"timestamp_ms"`
		Signer      []byte `json:"signer"`
		Signature   []byte `json:"signature,omitempty"`
	}

	OrgEnableResponse  struct{}
	OrgDisableResponse struct{}
)

const (
	methodGetOrg  = "/iotconfig.OrgService/Get"
	methodEnable  = "/iotconfig.OrgService/Enable"
	methodDisable = "/iotconfig.OrgService/Disable"
)

// OrgServiceClient is a thin wrapper over a *grpc.ClientConn; every call it
// makes selects the json codec via grpc.CallContentSubtype.
type OrgServiceClient struct {
	conn *grpc.ClientConn
	opts []grpc.CallOption
}

func NewOrgServiceClient(conn *grpc.ClientConn) *OrgServiceClient {
	return &OrgServiceClient{conn: conn, opts: []grpc.CallOption{grpc.CallContentSubtype(CodecName)}}
}

func (c *OrgServiceClient) GetOrg(ctx context.Context, oui uint64) (OrgGetResponse, error) {
	var resp OrgGetResponse
	err := c.conn.Invoke(ctx, methodGetOrg, &OrgGetRequest{OUI: oui}, &resp, c.opts...)
	return resp, err
}

func (c *OrgServiceClient) Enable(ctx context.Context, req *SignedOrgRequest) error {
	var resp OrgEnableResponse
	return c.conn.Invoke(ctx, methodEnable, req, &resp, c.opts...)
}

func (c *OrgServiceClient) Disable(ctx context.Context, req *SignedOrgRequest) error {
	var resp OrgDisableResponse
	return c.conn.Invoke(ctx, methodDisable, req, &resp, c.opts...)
}
