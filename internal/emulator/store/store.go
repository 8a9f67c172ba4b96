package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/fedauth/internal/emulator/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (only sqlite for
// now) implement it and expose sub-repositories per table, which keeps
// transactions from being nested by accident.
type Store interface {
	Accounts() Accounts
	ProviderLinks() ProviderLinks
	PhoneSessions() PhoneSessions
	RefreshTokens() RefreshTokens
	SigningKeys() SigningKeys

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// CreateAccount inserts a new account. A taken email or phone number
	// yields ErrAlreadyExists.
	CreateAccount(ctx context.Context, a domain.Account) error

	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail matches case-insensitively.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	GetAccountByPhone(ctx context.Context, phone string) (domain.Account, error)

	// UpdateProfile overwrites display name and email verification.
	UpdateProfile(ctx context.Context, id, displayName string, emailVerified bool) error

	UpdatePasswordHash(ctx context.Context, id, hash string) error

	// DeleteAllAccounts wipes every account and, by cascade, everything
	// that hangs off them.
	DeleteAllAccounts(ctx context.Context) error
}

type ProviderLinks interface {
	// CreateProviderLink fails with ErrAlreadyExists when the federated id
	// is already linked.
	CreateProviderLink(ctx context.Context, l domain.ProviderLink) error

	GetProviderLink(ctx context.Context, providerID, federatedID string) (domain.ProviderLink, error)

	ListAccountLinks(ctx context.Context, accountID string) ([]domain.ProviderLink, error)
}

type PhoneSessions interface {
	CreatePhoneSession(ctx context.Context, s domain.PhoneSession) error

	// GetPhoneSessionByHash returns the session for a token fingerprint.
	GetPhoneSessionByHash(ctx context.Context, hash string) (domain.PhoneSession, error)

	// ListPhoneSessions returns unexpired sessions, newest first.
	ListPhoneSessions(ctx context.Context) ([]domain.PhoneSession, error)

	// IncrementPhoneSessionAttempts bumps the failed attempt counter and
	// returns the updated session.
	IncrementPhoneSessionAttempts(ctx context.Context, id string) (domain.PhoneSession, error)

	DeletePhoneSession(ctx context.Context, id string) error

	// DeleteExpiredPhoneSessions is housekeeping.
	DeleteExpiredPhoneSessions(ctx context.Context) error
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked=1, sets updated_at.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type SigningKeys interface {
	CreateSigningKey(ctx context.Context, key domain.SigningKey) error

	GetSigningKeyByKid(ctx context.Context, kid string) (domain.SigningKey, error)

	// ListActiveSigningKeys returns non-retired, unexpired keys, newest first.
	ListActiveSigningKeys(ctx context.Context) ([]domain.SigningKey, error)

	// ListAllSigningKeys returns every unexpired key, retired or not, newest
	// first. Retired keys still verify during their grace period.
	ListAllSigningKeys(ctx context.Context) ([]domain.SigningKey, error)

	// RetireSigningKey sets retired_at. Retired keys verify but never sign.
	RetireSigningKey(ctx context.Context, kid string) error

	// DeleteExpiredSigningKeys is housekeeping.
	DeleteExpiredSigningKeys(ctx context.Context) error
}
