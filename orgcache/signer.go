// Package orgcache implements the org/payer cache and edge-triggered
// enable/disable control plane (spec §4.E): fetch_org caches OUI -> payer
// lookups against the external config service, and enable_org/disable_org
// emit a signed RPC only on a local state transition so that a stream of
// thousands of packets per org never floods the control plane.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package orgcache

import "golang.org/x/crypto/ed25519"

// Signer signs the unsigned-request encoding for enable/disable RPCs and
// exposes the public key carried alongside each signed request (spec
// §4.E/§6 "Signer: sign(bytes) -> signature and public_key() -> bytes").
type Signer interface {
	Sign(unsigned []byte) ([]byte, error)
	PublicKey() []byte
}

// Ed25519Signer is the production Signer, grounded on the teacher's
// golang.org/x/crypto dependency (promoted here from indirect to direct).
type Ed25519Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

func NewEd25519Signer(priv ed25519.PrivateKey) *Ed25519Signer {
	return &Ed25519Signer{priv: priv, pub: priv.Public().(ed25519.PublicKey)}
}

func (s *Ed25519Signer) Sign(unsigned []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, unsigned), nil
}

func (s *Ed25519Signer) PublicKey() []byte { return append([]byte(nil), s.pub...) }
