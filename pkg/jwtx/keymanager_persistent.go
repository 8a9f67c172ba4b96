package jwtx

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/fedauth/pkg/cryptox"
	"github.com/aussiebroadwan/fedauth/pkg/idx"
)

// DefaultKeyGracePeriod is how long a retired key keeps verifying tokens.
const DefaultKeyGracePeriod = 30 * 24 * time.Hour

// SigningKeyRecord is a signing key as persisted by a KeyStore. The private
// key is sealed with a cryptox.KeySealer under its kid.
type SigningKeyRecord struct {
	ID               string
	Kid              string
	Algorithm        string
	PrivateKeySealed []byte
	CreatedAt        time.Time
	RetiredAt        *time.Time
	ExpiresAt        time.Time
}

// KeyStore is the persistence a KeyManager needs. Keeping it here avoids an
// import of the emulator's store package.
type KeyStore interface {
	// ListAllSigningKeys returns every unexpired key, retired or not.
	ListAllSigningKeys(ctx context.Context) ([]SigningKeyRecord, error)

	// ListActiveSigningKeys returns keys that may still sign.
	ListActiveSigningKeys(ctx context.Context) ([]SigningKeyRecord, error)

	CreateSigningKey(ctx context.Context, key SigningKeyRecord) error
}

// PersistentKeyManagerOptions configures NewPersistentKeyManager.
type PersistentKeyManagerOptions struct {
	Store    KeyStore
	Sealer   *cryptox.KeySealer
	Issuer   string
	Audience []string

	// NumKeys is the target number of active keys. Missing keys are
	// generated and stored. Defaults to 3.
	NumKeys int

	// GracePeriod defaults to DefaultKeyGracePeriod.
	GracePeriod time.Duration
}

// NewPersistentKeyManager loads every stored key into the KeySet, signs with
// the active ones and tops them up to NumKeys.
func NewPersistentKeyManager(ctx context.Context, opts PersistentKeyManagerOptions) (*KeyManager, error) {
	if opts.Store == nil || opts.Sealer == nil {
		return nil, fmt.Errorf("jwtx: Store and Sealer are required for persistent key manager")
	}
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}
	numKeys := clampNumKeys(opts.NumKeys)
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultKeyGracePeriod
	}

	allKeys, err := opts.Store.ListAllSigningKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to load keys from database: %w", err)
	}
	activeKeys, err := opts.Store.ListActiveSigningKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to load active keys: %w", err)
	}

	km := newKeyManager(opts.Issuer, opts.Audience)
	km.sealer = opts.Sealer

	for _, rec := range allKeys {
		signer, err := km.openSigningKey(rec)
		if err != nil {
			return nil, err
		}
		if err := km.KeySet.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add key %s to keyset: %w", rec.Kid, err)
		}
	}

	for _, rec := range activeKeys {
		signer, err := km.openSigningKey(rec)
		if err != nil {
			return nil, err
		}
		if err := km.AddSigner(signer); err != nil {
			return nil, err
		}
	}

	for km.NumSigners() < numKeys {
		rec, signer, err := km.NewSigningKeyRecord(time.Now(), opts.GracePeriod)
		if err != nil {
			return nil, err
		}
		if err := opts.Store.CreateSigningKey(ctx, rec); err != nil {
			return nil, fmt.Errorf("jwtx: failed to store new key: %w", err)
		}
		if err := km.AddSigner(signer); err != nil {
			return nil, err
		}
	}

	return km, nil
}

// NewSigningKeyRecord generates a key and seals it for storage. The signer
// is not added to km. Only persistent managers can seal.
func (km *KeyManager) NewSigningKeyRecord(now time.Time, gracePeriod time.Duration) (SigningKeyRecord, Signer, error) {
	if km.sealer == nil {
		return SigningKeyRecord{}, nil, ErrNotPersistent
	}
	pemData, signer, err := GenerateSigner()
	if err != nil {
		return SigningKeyRecord{}, nil, fmt.Errorf("jwtx: generate key: %w", err)
	}
	sealed, err := km.sealer.Seal(signer.KID(), pemData)
	if err != nil {
		return SigningKeyRecord{}, nil, fmt.Errorf("jwtx: seal key %s: %w", signer.KID(), err)
	}

	return SigningKeyRecord{
		ID:               idx.NewAt(now).String(),
		Kid:              signer.KID(),
		Algorithm:        AlgorithmEdDSA,
		PrivateKeySealed: sealed,
		CreatedAt:        now,
		ExpiresAt:        now.Add(gracePeriod),
	}, signer, nil
}

func (km *KeyManager) openSigningKey(rec SigningKeyRecord) (Signer, error) {
	if rec.Algorithm != AlgorithmEdDSA {
		return nil, fmt.Errorf("jwtx: key %s uses unsupported algorithm %q", rec.Kid, rec.Algorithm)
	}
	pemData, err := km.sealer.Open(rec.Kid, rec.PrivateKeySealed)
	if err != nil {
		return nil, fmt.Errorf("jwtx: open key %s: %w", rec.Kid, err)
	}
	return NewSignerEdDSA(rec.Kid, pemData)
}
