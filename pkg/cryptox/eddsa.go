package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

const pkcs8BlockType = "PRIVATE KEY"

// GenerateEd25519Key returns a new signing key as PKCS8 PEM, the form
// SealPrivateKey stores.
func GenerateEd25519Key() ([]byte, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cryptox: generate Ed25519 key: %w", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: marshal PKCS8: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: pkcs8BlockType, Bytes: der}), nil
}

// ParseEd25519Key is the inverse of GenerateEd25519Key.
func ParseEd25519Key(pemKey []byte) (ed25519.PrivateKey, error) {
	block, _ := pem.Decode(pemKey)
	switch {
	case block == nil:
		return nil, errors.New("cryptox: invalid PEM for Ed25519 key")
	case block.Type != pkcs8BlockType:
		return nil, fmt.Errorf("cryptox: expected %s block, got %q", pkcs8BlockType, block.Type)
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("cryptox: parse PKCS8: %w", err)
	}
	if key, ok := parsed.(ed25519.PrivateKey); ok {
		return key, nil
	}
	return nil, fmt.Errorf("cryptox: PKCS8 key is %T, not Ed25519", parsed)
}
