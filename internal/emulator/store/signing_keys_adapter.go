package store

import (
	"context"

	"github.com/aussiebroadwan/fedauth/internal/emulator/domain"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
)

// KeyStoreAdapter implements jwtx.KeyStore on top of a Store so jwtx never
// imports the domain package.
type KeyStoreAdapter struct {
	store Store
}

func NewKeyStoreAdapter(store Store) *KeyStoreAdapter {
	return &KeyStoreAdapter{store: store}
}

func (a *KeyStoreAdapter) ListAllSigningKeys(ctx context.Context) ([]jwtx.SigningKeyRecord, error) {
	keys, err := a.store.SigningKeys().ListAllSigningKeys(ctx)
	if err != nil {
		return nil, err
	}
	return toRecords(keys), nil
}

func (a *KeyStoreAdapter) ListActiveSigningKeys(ctx context.Context) ([]jwtx.SigningKeyRecord, error) {
	keys, err := a.store.SigningKeys().ListActiveSigningKeys(ctx)
	if err != nil {
		return nil, err
	}
	return toRecords(keys), nil
}

func (a *KeyStoreAdapter) CreateSigningKey(ctx context.Context, key jwtx.SigningKeyRecord) error {
	return a.store.SigningKeys().CreateSigningKey(ctx, FromRecord(key))
}

func toRecords(keys []domain.SigningKey) []jwtx.SigningKeyRecord {
	records := make([]jwtx.SigningKeyRecord, len(keys))
	for i, key := range keys {
		records[i] = jwtx.SigningKeyRecord{
			ID:               key.ID,
			Kid:              key.Kid,
			Algorithm:        key.Algorithm,
			PrivateKeySealed: key.PrivateKeySealed,
			CreatedAt:        key.CreatedAt,
			RetiredAt:        key.RetiredAt,
			ExpiresAt:        key.ExpiresAt,
		}
	}
	return records
}

// FromRecord converts a jwtx record into its stored form.
func FromRecord(record jwtx.SigningKeyRecord) domain.SigningKey {
	return domain.SigningKey{
		ID:               record.ID,
		Kid:              record.Kid,
		Algorithm:        record.Algorithm,
		PrivateKeySealed: record.PrivateKeySealed,
		CreatedAt:        record.CreatedAt,
		RetiredAt:        record.RetiredAt,
		ExpiresAt:        record.ExpiresAt,
	}
}
