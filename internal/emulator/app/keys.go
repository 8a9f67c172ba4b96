package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/fedauth/internal/emulator/store"
	"github.com/aussiebroadwan/fedauth/pkg/cryptox"
	"github.com/aussiebroadwan/fedauth/pkg/jwtx"
)

// InitKeys builds the KeyManager for cfg.KeyStorageMode.
//
// Ephemeral keys live in memory and every token dies with the process.
// Persistent keys are sealed with the master key and stored in db, so
// tokens survive restarts as long as the master key does.
//
// Only the issuer is enforced on verification: ID tokens and backend access
// tokens carry different audiences and their consumers check those.
func InitKeys(ctx context.Context, cfg Config, db store.Store, logger *slog.Logger) (*jwtx.KeyManager, error) {
	if cfg.KeyStorageMode != KeyStoragePersistent {
		km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: cfg.Issuer, NumKeys: cfg.NumKeys})
		if err != nil {
			return nil, fmt.Errorf("ephemeral keys: %w", err)
		}
		logger.Warn("signing keys are ephemeral; tokens do not survive a restart",
			"num_keys", km.NumSigners(),
			"issuer", cfg.Issuer,
		)
		return km, nil
	}

	sealer, err := cryptox.LoadKeySealer(cfg.MasterKeyPath)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}
	if sealer.Ephemeral() {
		logger.Warn("no master key configured; stored signing keys will not open after a restart",
			"env", cryptox.MasterKeyEnv,
		)
	}

	km, err := jwtx.NewPersistentKeyManager(ctx, jwtx.PersistentKeyManagerOptions{
		Store:       store.NewKeyStoreAdapter(db),
		Sealer:      sealer,
		Issuer:      cfg.Issuer,
		NumKeys:     cfg.NumKeys,
		GracePeriod: cfg.KeyGracePeriod,
	})
	if err != nil {
		return nil, fmt.Errorf("persistent keys: %w", err)
	}
	logger.Info("signing keys loaded",
		"num_keys", km.NumSigners(),
		"grace_period", cfg.KeyGracePeriod,
		"issuer", cfg.Issuer,
	)
	return km, nil
}
