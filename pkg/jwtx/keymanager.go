package jwtx

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/aussiebroadwan/fedauth/pkg/cryptox"
)

// KeyIDPrefix prefixes every generated kid.
const KeyIDPrefix = "fedauth-"

var (
	ErrLastSigner    = errors.New("jwtx: cannot retire the last signing key")
	ErrNotPersistent = errors.New("jwtx: key manager does not persist keys")
)

// KeyManager owns the EdDSA signing keys of an issuer together with the
// KeySet and Verifier built from them. Signing picks a random active key;
// retired keys stay in the KeySet so tokens they signed keep verifying.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	// sealer is nil for ephemeral managers.
	sealer *cryptox.KeySealer

	mu      sync.RWMutex
	signers []Signer
}

// Bounds for the number of active signing keys.
const (
	DefaultNumKeys = 3
	MaxNumKeys     = 10
)

type KeyManagerOptions struct {
	// Issuer is required and enforced on verification.
	Issuer string
	// Audience is enforced on verification when non-empty.
	Audience []string
	// NumKeys defaults to DefaultNumKeys and is capped at MaxNumKeys.
	NumKeys int
}

func clampNumKeys(n int) int {
	if n <= 0 {
		return DefaultNumKeys
	}
	return min(n, MaxNumKeys)
}

// NewEphemeralKeyManager creates a KeyManager whose keys only live in
// memory. Every token it issued becomes unverifiable on restart.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	km := newKeyManager(opts.Issuer, opts.Audience)
	for i := range clampNumKeys(opts.NumKeys) {
		_, signer, err := GenerateSigner()
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate signer %d: %w", i+1, err)
		}
		if err := km.AddSigner(signer); err != nil {
			return nil, err
		}
	}
	return km, nil
}

func newKeyManager(issuer string, audience []string) *KeyManager {
	keyset := NewKeySet()
	return &KeyManager{
		Verifier: NewVerifierEdDSA(keyset, issuer, audience),
		KeySet:   keyset,
	}
}

// GenerateSigner creates an Ed25519 key under a fresh kid and returns its
// PKCS#8 PEM alongside the signer.
func GenerateSigner() ([]byte, Signer, error) {
	suffix, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, nil, fmt.Errorf("jwtx: generate kid: %w", err)
	}
	kid := KeyIDPrefix + suffix

	pemData, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, nil, err
	}
	signer, err := NewSignerEdDSA(kid, pemData)
	if err != nil {
		return nil, nil, err
	}
	return pemData, signer, nil
}

// IsReady reports whether km can both sign and verify.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady() && km.NumSigners() > 0
}

// GetSigner picks an active signer at random, spreading tokens across
// keys. It returns nil when none is left.
func (km *KeyManager) GetSigner() Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()
	if len(km.signers) == 0 {
		return nil
	}
	return km.signers[rand.IntN(len(km.signers))]
}

// Persistent reports whether km seals and stores its keys.
func (km *KeyManager) Persistent() bool { return km.sealer != nil }

// Sign signs claims with a random active key.
func (km *KeyManager) Sign(claims Claims) (string, error) {
	signer := km.GetSigner()
	if signer == nil {
		return "", ErrNoKey
	}
	return signer.Sign(claims)
}

// NumSigners returns the number of active signing keys.
func (km *KeyManager) NumSigners() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.signers)
}

// AddSigner makes signer available for signing and verification.
func (km *KeyManager) AddSigner(signer Signer) error {
	if signer == nil {
		return fmt.Errorf("jwtx: signer cannot be nil")
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	if err := km.KeySet.AddSigner(signer); err != nil {
		return fmt.Errorf("jwtx: failed to add signer to keyset: %w", err)
	}
	km.signers = append(km.signers, signer)
	return nil
}

// RetireSignerByKid stops signing with kid. The key stays in the KeySet.
func (km *KeyManager) RetireSignerByKid(kid string) error {
	km.mu.Lock()
	defer km.mu.Unlock()

	if len(km.signers) <= 1 {
		return ErrLastSigner
	}

	for i, signer := range km.signers {
		if signer.KID() == kid {
			km.signers = append(km.signers[:i:i], km.signers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w %q", ErrUnknownKID, kid)
}

// GetSigners returns a copy of the active signers.
func (km *KeyManager) GetSigners() []Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return slices.Clone(km.signers)
}
