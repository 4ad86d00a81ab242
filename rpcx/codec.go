// Package rpcx provides the gRPC transport used to reach the external
// config (org) service (spec §4.E/§6). Because this module hand-writes its
// request/response types instead of running protoc, it registers a small
// JSON codec over grpc-go's pluggable encoding.Codec — a well-established
// escape hatch for using real gRPC transport (HTTP/2, deadlines, retries)
// without a protobuf code generation step, rather than inventing a wire
// protocol from nothing.
/*
 * Copyright (c) 2018-2022, NVIDIA CORPORATION. All rights reserved.
 */
package rpcx

import (
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc/encoding"
)

// CodecName is registered with grpc-go and selected via
// grpc.CallContentSubtype / grpc.ForceCodec at dial time.
const CodecName = "json"

var api = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return api.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return api.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
