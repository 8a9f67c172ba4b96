package jwtx

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/fedauth/pkg/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

// AlgorithmEdDSA is the only signing algorithm issued by this module.
const AlgorithmEdDSA = "EdDSA"

// Signer signs claims under a single kid.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
	PublicJWK() JWK
	Validate() error
}

type ed25519Signer struct {
	kid string
	key ed25519.PrivateKey
}

// NewSignerEdDSA loads a PKCS8 PEM encoded Ed25519 key.
func NewSignerEdDSA(kid string, pemKey []byte) (Signer, error) {
	key, err := cryptox.ParseEd25519Key(pemKey)
	if err != nil {
		return nil, fmt.Errorf("jwtx: %w", err)
	}
	s := &ed25519Signer{kid: kid, key: key}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ed25519Signer) Alg() string { return AlgorithmEdDSA }
func (s *ed25519Signer) KID() string { return s.kid }

// Sign always sets the kid header; verifiers pick the key by it.
func (s *ed25519Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

func (s *ed25519Signer) PublicJWK() JWK {
	return NewEd25519JWK(s.kid, "sig", AlgorithmEdDSA, s.key.Public().(ed25519.PublicKey))
}

func (s *ed25519Signer) Validate() error {
	switch {
	case s.kid == "":
		return errors.New("jwtx: signer has no kid")
	case len(s.key) != ed25519.PrivateKeySize:
		return fmt.Errorf("jwtx: Ed25519 private key is %d bytes", len(s.key))
	}
	return nil
}
