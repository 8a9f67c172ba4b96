package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newPublicKey(t *testing.T) ed25519.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub
}

func TestJWKPublicKey(t *testing.T) {
	t.Parallel()

	pub := newPublicKey(t)
	got, err := NewEd25519JWK("k", "sig", AlgorithmEdDSA, pub).PublicKey()
	require.NoError(t, err)
	require.Equal(t, pub, got)

	tests := []struct {
		name string
		jwk  JWK
		want string
	}{
		{"unsupported kty", JWK{Kty: "RSA", Kid: "k"}, "unsupported kty"},
		{"unsupported curve", JWK{Kty: "OKP", Crv: "X25519", Kid: "k"}, "unsupported OKP curve"},
		{"invalid base64", JWK{Kty: "OKP", Crv: "Ed25519", X: "!!!"}, `key ""`},
		{"short key", JWK{Kty: "OKP", Crv: "Ed25519", X: "AAAA"}, "is 3 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.jwk.PublicKey()
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestKeySet(t *testing.T) {
	t.Parallel()

	pub1, pub2 := newPublicKey(t), newPublicKey(t)

	ks := NewKeySet()
	require.False(t, ks.IsReady())

	require.NoError(t, ks.AddJWK(NewEd25519JWK("k1", "sig", AlgorithmEdDSA, pub1)))
	require.NoError(t, ks.AddJWK(NewEd25519JWK("k2", "sig", AlgorithmEdDSA, pub2)))
	require.NoError(t, ks.AddJWK(NewEd25519JWK("k1", "sig", AlgorithmEdDSA, pub1)))
	require.True(t, ks.IsReady())

	jwks := ks.PublicJWKS()
	require.Len(t, jwks.Keys, 2, "re-adding a kid must not duplicate it")
	require.Equal(t, "k1", jwks.Keys[0].Kid, "publication order is kept")

	_, err := ks.Get("k3")
	require.ErrorIs(t, err, ErrNoKey)

	other := NewKeySet()
	require.NoError(t, other.ResetFromJWKS(jwks))
	got, err := other.Get("k2")
	require.NoError(t, err)
	require.Equal(t, pub2, got)

	bad := JWKS{Keys: []JWK{{Kty: "OKP", Crv: "Ed25519", Kid: "k9", X: "AAAA"}}}
	require.Error(t, other.ResetFromJWKS(bad))
	require.Len(t, other.PublicJWKS().Keys, 2, "a failed reset leaves the set alone")
}
