package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/fedauth/internal/emulator/domain"
	"github.com/aussiebroadwan/fedauth/internal/emulator/store"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
	"github.com/aussiebroadwan/fedauth/pkg/slogx"
)

var (
	ErrKeyAlreadyRetired = errors.New("key already retired")
	errNoKeyManager      = errors.New("KeyManager is required")
)

// KeyRotationService adds and retires signing keys at runtime.
//
// With a nil Store keys live in the KeyManager only and retired keys verify
// until restart. With a Store the KeyManager must be persistent: new keys
// are sealed and stored, and retired keys verify until their grace period
// ends.
type KeyRotationService struct {
	Store       store.Store
	KeyManager  *jwtx.KeyManager
	GracePeriod time.Duration
}

type RotateKeyResult struct {
	NewKey      domain.SigningKey
	RetiredKeys []domain.SigningKey
	ActiveKeys  int
}

// RotateKey generates a new signing key and, with retireExisting, retires
// every other active key. The new key signs before any old one stops.
func (s *KeyRotationService) RotateKey(ctx context.Context, retireExisting bool) (*RotateKeyResult, error) {
	if s.KeyManager == nil {
		return nil, errNoKeyManager
	}
	now := time.Now()

	rotate := s.rotateInMemory
	if s.Store != nil {
		rotate = s.rotateStored
	}
	signer, newKey, retired, err := rotate(ctx, now, retireExisting)
	if err != nil {
		return nil, err
	}

	if err := s.KeyManager.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("add signer: %w", err)
	}
	l := slogx.FromContext(ctx)
	for _, key := range retired {
		if err := s.KeyManager.RetireSignerByKid(key.Kid); err != nil {
			l.Warn("retired key was not an active signer", "kid", key.Kid, "err", err)
		}
	}

	l.Info("signing key rotated", "kid", newKey.Kid, "retired", len(retired))
	return &RotateKeyResult{
		NewKey:      newKey,
		RetiredKeys: retired,
		ActiveKeys:  s.KeyManager.NumSigners(),
	}, nil
}

func (s *KeyRotationService) gracePeriod() time.Duration {
	if s.GracePeriod > 0 {
		return s.GracePeriod
	}
	return jwtx.DefaultKeyGracePeriod
}

// rotateStored inserts the new key and retires the old ones in a single
// transaction.
func (s *KeyRotationService) rotateStored(
	ctx context.Context,
	now time.Time,
	retireExisting bool,
) (jwtx.Signer, domain.SigningKey, []domain.SigningKey, error) {
	rec, signer, err := s.KeyManager.NewSigningKeyRecord(now, s.gracePeriod())
	if err != nil {
		return nil, domain.SigningKey{}, nil, err
	}
	newKey := store.FromRecord(rec)

	var retired []domain.SigningKey
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		keys := tx.SigningKeys()
		if err := keys.CreateSigningKey(ctx, newKey); err != nil {
			return fmt.Errorf("create signing key: %w", err)
		}
		if !retireExisting {
			return nil
		}

		active, err := keys.ListActiveSigningKeys(ctx)
		if err != nil {
			return fmt.Errorf("list active keys: %w", err)
		}
		for _, key := range active {
			if key.Kid == newKey.Kid {
				continue
			}
			if err := keys.RetireSigningKey(ctx, key.Kid); err != nil {
				return fmt.Errorf("retire key %s: %w", key.Kid, err)
			}
			key.RetiredAt = &now
			retired = append(retired, key)
		}
		return nil
	})
	if err != nil {
		return nil, domain.SigningKey{}, nil, err
	}
	return signer, newKey, retired, nil
}

func (s *KeyRotationService) rotateInMemory(
	_ context.Context,
	now time.Time,
	retireExisting bool,
) (jwtx.Signer, domain.SigningKey, []domain.SigningKey, error) {
	_, signer, err := jwtx.GenerateSigner()
	if err != nil {
		return nil, domain.SigningKey{}, nil, err
	}

	var retired []domain.SigningKey
	if retireExisting {
		for _, current := range s.KeyManager.GetSigners() {
			retired = append(retired, signingKeyOf(current, &now))
		}
	}
	newKey := signingKeyOf(signer, nil)
	newKey.CreatedAt = now
	return signer, newKey, retired, nil
}

func signingKeyOf(s jwtx.Signer, retiredAt *time.Time) domain.SigningKey {
	return domain.SigningKey{Kid: s.KID(), Algorithm: s.Alg(), RetiredAt: retiredAt}
}

// ListSigningKeys returns stored keys, or the manager's active signers when
// there is no Store.
func (s *KeyRotationService) ListSigningKeys(ctx context.Context) ([]domain.SigningKey, error) {
	if s.Store != nil {
		return s.Store.SigningKeys().ListAllSigningKeys(ctx)
	}
	if s.KeyManager == nil {
		return nil, errNoKeyManager
	}

	signers := s.KeyManager.GetSigners()
	keys := make([]domain.SigningKey, 0, len(signers))
	for _, signer := range signers {
		keys = append(keys, signingKeyOf(signer, nil))
	}
	return keys, nil
}

// RetireKey stops signing with kid. It keeps verifying.
func (s *KeyRotationService) RetireKey(ctx context.Context, kid string) error {
	if s.KeyManager == nil {
		return errNoKeyManager
	}

	if s.Store != nil {
		key, err := s.Store.SigningKeys().GetSigningKeyByKid(ctx, kid)
		if err != nil {
			return err
		}
		if key.RetiredAt != nil {
			return ErrKeyAlreadyRetired
		}
	}

	// In memory first: it refuses to drop the last signer.
	if err := s.KeyManager.RetireSignerByKid(kid); err != nil {
		return err
	}
	if s.Store != nil {
		return s.Store.SigningKeys().RetireSigningKey(ctx, kid)
	}
	return nil
}
