package jwtx

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

// JWK is an RFC 7517 public key. Only the OKP members Ed25519 needs are
// modelled.
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use,omitempty"`
	Alg string `json:"alg,omitempty"`
	Kid string `json:"kid,omitempty"`
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
}

// JWKS is the document served at /.well-known/jwks.json.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

func NewEd25519JWK(kid, use, alg string, pub ed25519.PublicKey) JWK {
	return JWK{
		Kty: "OKP",
		Use: use,
		Alg: alg,
		Kid: kid,
		Crv: "Ed25519",
		X:   base64.RawURLEncoding.EncodeToString(pub),
	}
}

// PublicKey decodes an OKP Ed25519 key.
func (j JWK) PublicKey() (ed25519.PublicKey, error) {
	switch {
	case j.Kty != "OKP":
		return nil, fmt.Errorf("jwtx: unsupported kty %q", j.Kty)
	case j.Crv != "Ed25519":
		return nil, fmt.Errorf("jwtx: unsupported OKP curve %q", j.Crv)
	}
	x, err := base64.RawURLEncoding.DecodeString(j.X)
	if err != nil {
		return nil, fmt.Errorf("jwtx: key %q: %w", j.Kid, err)
	}
	if len(x) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("jwtx: key %q: Ed25519 public key is %d bytes", j.Kid, len(x))
	}
	return ed25519.PublicKey(x), nil
}

// KeySet is the set of public keys tokens are verified against. The
// emulator serves it as its JWKS; clients load a fetched JWKS into one
// with ResetFromJWKS.
type KeySet struct {
	mu   sync.RWMutex
	kids []string // publication order
	keys map[string]keySetEntry
}

type keySetEntry struct {
	jwk JWK
	pub ed25519.PublicKey
}

func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]keySetEntry)}
}

func (k *KeySet) AddSigner(s Signer) error {
	return k.AddJWK(s.PublicJWK())
}

// AddJWK publishes j. A kid that is already present is replaced in place.
func (k *KeySet) AddJWK(j JWK) error {
	pub, err := j.PublicKey()
	if err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.keys[j.Kid]; !ok {
		k.kids = append(k.kids, j.Kid)
	}
	k.keys[j.Kid] = keySetEntry{jwk: j, pub: pub}
	return nil
}

func (k *KeySet) Get(kid string) (ed25519.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	e, ok := k.keys[kid]
	if !ok {
		return nil, ErrNoKey
	}
	return e.pub, nil
}

// PublicJWKS returns a copy safe to encode while keys rotate.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := JWKS{Keys: make([]JWK, 0, len(k.kids))}
	for _, kid := range k.kids {
		out.Keys = append(out.Keys, k.keys[kid].jwk)
	}
	return out
}

func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys) > 0
}

// ResetFromJWKS replaces the whole set. Nothing changes if any key is
// invalid.
func (k *KeySet) ResetFromJWKS(jwks JWKS) error {
	kids := make([]string, 0, len(jwks.Keys))
	keys := make(map[string]keySetEntry, len(jwks.Keys))
	for _, j := range jwks.Keys {
		pub, err := j.PublicKey()
		if err != nil {
			return err
		}
		if _, dup := keys[j.Kid]; !dup {
			kids = append(kids, j.Kid)
		}
		keys[j.Kid] = keySetEntry{jwk: j, pub: pub}
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.kids, k.keys = kids, keys
	return nil
}
