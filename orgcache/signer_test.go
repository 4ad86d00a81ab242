package orgcache

import (
	"bytes"
	"crypto/rand"
	"testing"

	"golang.org/x/crypto/ed25519"
)

func testKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return priv
}

func TestEd25519SignerRoundTrip(t *testing.T) {
	priv := testKey(t)
	signer := NewEd25519Signer(priv)

	msg := []byte("oui=7;ts=123;signer=abcd")
	sig, err := signer.Sign(msg)
	if err != nil {
		t.Fatal(err)
	}
	if !ed25519.Verify(ed25519.PublicKey(signer.PublicKey()), msg, sig) {
		t.Fatal("signature did not verify against the signer's own public key")
	}
}

func TestEd25519SignerPublicKeyIsDefensiveCopy(t *testing.T) {
	priv := testKey(t)
	signer := NewEd25519Signer(priv)

	pub := signer.PublicKey()
	pub[0] ^= 0xff
	if bytes.Equal(pub, signer.PublicKey()) {
		t.Fatal("mutating the returned public key must not affect the signer")
	}
}
